package progression_test

import (
	"strings"
	"testing"
	"time"

	"github.com/lac-hong-legacy/ven_companion/model"
	"github.com/lac-hong-legacy/ven_companion/progression"
	"github.com/lac-hong-legacy/ven_companion/shared"
	"github.com/stretchr/testify/assert"
)

func TestLimitsFor(t *testing.T) {
	tests := []struct {
		tier     string
		messages int
		photos   int
	}{
		{shared.TierFree, 50, 2},
		{shared.TierPro, 200, 14},
		{shared.TierGold, 500, 28},
		{shared.TierPremium, 1000, 50},
		{"platinum", 50, 2},
		{"", 50, 2},
	}

	for _, tt := range tests {
		t.Run(tt.tier, func(t *testing.T) {
			l := progression.LimitsFor(tt.tier)
			assert.Equal(t, tt.messages, l.Messages)
			assert.Equal(t, tt.photos, l.Photos)
		})
	}
}

func TestEnsureDailyUsage(t *testing.T) {
	t.Run("ResetsOnNewDay", func(t *testing.T) {
		u := model.NewUser(1)
		u.DailyUsageDate = "2026-10-16"
		u.MessagesSentToday = 50
		u.PhotosRequestedToday = 2

		reset := progression.EnsureDailyUsage(u, "2026-10-17")
		assert.True(t, reset)
		assert.Equal(t, "2026-10-17", u.DailyUsageDate)
		assert.Zero(t, u.MessagesSentToday)
		assert.Zero(t, u.PhotosRequestedToday)
	})

	t.Run("SameDayIsNoop", func(t *testing.T) {
		u := model.NewUser(1)
		u.DailyUsageDate = "2026-10-17"
		u.MessagesSentToday = 7

		reset := progression.EnsureDailyUsage(u, "2026-10-17")
		assert.False(t, reset)
		assert.Equal(t, 7, u.MessagesSentToday)
	})
}

func TestToday(t *testing.T) {
	now := time.Date(2026, 10, 17, 23, 59, 0, 0, time.Local)
	assert.Equal(t, "2026-10-17", progression.Today(now))
	assert.Equal(t, "2026-10-18", progression.Today(now.Add(2*time.Minute)))
}

func TestRemaining(t *testing.T) {
	u := model.NewUser(1)
	u.SubscriptionLevel = shared.TierPro
	u.MessagesSentToday = 150
	u.PhotosRequestedToday = 20

	r := progression.Remaining(u)
	assert.Equal(t, 50, r.Messages)
	assert.Equal(t, 0, r.Photos)
}

func TestPointsForMessage(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		points float64
	}{
		{"Empty", "", 0.5},
		{"Short", "ok", 0.5},
		{"NineChars", strings.Repeat("a", 9), 0.5},
		{"TenChars", strings.Repeat("a", 10), 1.0},
		{"TrimmedBeforeCounting", "   " + strings.Repeat("a", 9) + "   ", 0.5},
		{"TwentyNine", strings.Repeat("a", 29), 1.0},
		{"Thirty", strings.Repeat("a", 30), 1.5},
		{"NinetyNine", strings.Repeat("a", 99), 1.5},
		{"Hundred", strings.Repeat("a", 100), 2.0},
		{"OneNinetyNine", strings.Repeat("a", 199), 2.0},
		{"TwoHundred", strings.Repeat("a", 200), 2.5},
		{"MultibyteCountsRunes", strings.Repeat("я", 9), 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.points, progression.PointsForMessage(tt.text))
		})
	}
}

func TestPointsForMessage_Monotonic(t *testing.T) {
	prev := 0.0
	for n := 0; n <= 250; n++ {
		p := progression.PointsForMessage(strings.Repeat("x", n))
		assert.GreaterOrEqual(t, p, prev, "length %d", n)
		prev = p
	}
}

func TestAddPoints(t *testing.T) {
	assert.Equal(t, 0.5, progression.AddPoints(0, "ok"))
	assert.Equal(t, 3.0, progression.AddPoints(0.5, strings.Repeat("a", 250)))
	total := 0.0
	for i := 0; i < 30; i++ {
		total = progression.AddPoints(total, "hello there")
	}
	assert.Equal(t, 30.0, total)
}

func TestRecalculate(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	t.Run("EmptyHistory", func(t *testing.T) {
		assert.Zero(t, progression.Recalculate(nil, now))
	})

	t.Run("OnlyCharacterMessages", func(t *testing.T) {
		history := []model.ChatMessage{
			{Text: "hello there, how are you doing", Sender: model.SenderCharacter, Timestamp: now},
			{Text: "hi", Sender: model.SenderCharacter, Timestamp: now},
		}
		assert.Zero(t, progression.Recalculate(history, now))
	})

	t.Run("RecencyWeighting", func(t *testing.T) {
		// 0.5*1.0 + 1.0*0.9 + 1.0*0.7 + 2.0*0.5
		history := []model.ChatMessage{
			{Text: "ok", Sender: model.SenderUser, Timestamp: now.Add(-30 * time.Minute)},
			{Text: strings.Repeat("a", 10), Sender: model.SenderUser, Timestamp: now.Add(-2 * time.Hour)},
			{Text: strings.Repeat("b", 10), Sender: model.SenderUser, Timestamp: now.Add(-48 * time.Hour)},
			{Text: strings.Repeat("c", 100), Sender: model.SenderUser, Timestamp: now.Add(-30 * 24 * time.Hour)},
			{Text: "reply", Sender: model.SenderCharacter, Timestamp: now},
		}
		assert.Equal(t, 3.1, progression.Recalculate(history, now))
	})

	t.Run("MissingTimestampIsFullWeight", func(t *testing.T) {
		history := []model.ChatMessage{
			{Text: strings.Repeat("a", 200), Sender: model.SenderUser},
		}
		assert.Equal(t, 2.5, progression.Recalculate(history, now))
	})

	t.Run("PhotoRequestMarkerIgnored", func(t *testing.T) {
		history := []model.ChatMessage{
			{Text: shared.PhotoRequestMarker, Sender: model.SenderUser, Timestamp: now},
		}
		assert.Zero(t, progression.Recalculate(history, now))
	})
}

func TestAffinityTier(t *testing.T) {
	assert.Equal(t, 1, progression.AffinityTier(0))
	assert.Equal(t, 1, progression.AffinityTier(19.9))
	assert.Equal(t, 2, progression.AffinityTier(20))
	assert.Equal(t, 2, progression.AffinityTier(49.9))
	assert.Equal(t, 3, progression.AffinityTier(50))
	assert.Equal(t, 3, progression.AffinityTier(79.9))
	assert.Equal(t, 4, progression.AffinityTier(80))
	assert.Equal(t, 4, progression.AffinityTier(1000))
}

func TestAdvanceLevel(t *testing.T) {
	t.Run("LevelsEveryTenMessages", func(t *testing.T) {
		level, progress := 0, 0
		ups := 0
		for k := 1; k <= progression.MaxLevel; k++ {
			for i := 0; i < progression.MessagesPerLevel; i++ {
				var up bool
				level, progress, up = progression.AdvanceLevel(level, progress)
				if up {
					ups++
				}
			}
			assert.Equal(t, k, level)
			assert.Equal(t, 0, progress)
		}
		assert.Equal(t, progression.MaxLevel, ups)
	})

	t.Run("ClampedAtMaxLevel", func(t *testing.T) {
		level, progress := progression.MaxLevel, 0
		for i := 0; i < 25; i++ {
			var up bool
			level, progress, up = progression.AdvanceLevel(level, progress)
			assert.False(t, up)
			assert.Equal(t, progression.MaxLevel, level)
			assert.Less(t, progress, progression.MessagesPerLevel)
		}
		assert.Equal(t, progression.MessagesPerLevel-1, progress)
	})
}

func TestRaisePhotoChance(t *testing.T) {
	p := 0
	for n := 1; n <= 15; n++ {
		p = progression.RaisePhotoChance(p)
		assert.Equal(t, min(100, 10*n), p)
	}
}
