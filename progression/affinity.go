package progression

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lac-hong-legacy/ven_companion/model"
)

// PointsForMessage scores a user message by its trimmed length in runes.
func PointsForMessage(text string) float64 {
	n := utf8.RuneCountInString(strings.TrimSpace(text))
	switch {
	case n < 10:
		return 0.5
	case n < 30:
		return 1.0
	case n < 100:
		return 1.5
	case n < 200:
		return 2.0
	default:
		return 2.5
	}
}

// RecencyWeight discounts older messages during a full recompute. A zero
// timestamp counts at full weight.
func RecencyWeight(sent, now time.Time) float64 {
	if sent.IsZero() {
		return 1.0
	}
	age := now.Sub(sent)
	switch {
	case age < time.Hour:
		return 1.0
	case age < 24*time.Hour:
		return 0.9
	case age < 7*24*time.Hour:
		return 0.7
	default:
		return 0.5
	}
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// AddPoints is the live incremental update applied per counted message.
func AddPoints(current float64, text string) float64 {
	return Round1(current + PointsForMessage(text))
}

// Recalculate replays a conversation from scratch with recency weighting.
// The result may be lower than the live score; both are kept as they are.
func Recalculate(history []model.ChatMessage, now time.Time) float64 {
	total := 0.0
	for _, m := range history {
		if m.Sender != model.SenderUser || IsPhotoRequest(m.Text) {
			continue
		}
		total += PointsForMessage(m.Text) * RecencyWeight(m.Timestamp, now)
	}
	return Round1(total)
}

// AffinityTier buckets a sympathy score into the four relationship tiers
// used for prompt framing and photo gates.
func AffinityTier(sympathy float64) int {
	switch {
	case sympathy < 20:
		return 1
	case sympathy < 50:
		return 2
	case sympathy < 80:
		return 3
	default:
		return 4
	}
}
