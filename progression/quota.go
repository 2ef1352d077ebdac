package progression

import (
	"time"

	"github.com/lac-hong-legacy/ven_companion/model"
	"github.com/lac-hong-legacy/ven_companion/shared"
)

const dateLayout = "2006-01-02"

type Limits struct {
	Messages int `json:"messages"`
	Photos   int `json:"photos"`
}

var tierLimits = map[string]Limits{
	shared.TierFree:    {Messages: 50, Photos: 2},
	shared.TierPro:     {Messages: 200, Photos: 14},
	shared.TierGold:    {Messages: 500, Photos: 28},
	shared.TierPremium: {Messages: 1000, Photos: 50},
}

// LimitsFor returns the daily allowance of a subscription tier. Unknown
// tiers get the free allowance.
func LimitsFor(tier string) Limits {
	if l, ok := tierLimits[tier]; ok {
		return l
	}
	return tierLimits[shared.TierFree]
}

// Today formats the server-local calendar date used as the usage window key.
func Today(now time.Time) string {
	return now.Local().Format(dateLayout)
}

// EnsureDailyUsage resets the daily counters when the stored usage date is
// not today. It reports whether a reset happened.
func EnsureDailyUsage(u *model.User, today string) bool {
	if u.DailyUsageDate == today {
		return false
	}
	u.DailyUsageDate = today
	u.MessagesSentToday = 0
	u.PhotosRequestedToday = 0
	return true
}

// Remaining returns the allowance left for the current day. Callers must run
// EnsureDailyUsage first.
func Remaining(u *model.User) Limits {
	l := LimitsFor(u.SubscriptionLevel)
	return Limits{
		Messages: max(0, l.Messages-u.MessagesSentToday),
		Photos:   max(0, l.Photos-u.PhotosRequestedToday),
	}
}
