package shared

const (
	UserID = "user_id"

	TierFree    = "free"
	TierPro     = "pro"
	TierGold    = "gold"
	TierPremium = "premium"

	ActionLike = "like"
	ActionPass = "pass"

	// PhotoRequestMarker is the reserved chat text clients send to ask the
	// character for a photo. It is stored but never scored.
	PhotoRequestMarker = "__photo_request__"

	PhotoUnlockCost = 10

	DailyLimitMessages = "messages"
	DailyLimitPhotos   = "photos"
)

var SubscriptionTiers = []string{TierFree, TierPro, TierGold, TierPremium}

func IsValidTier(tier string) bool {
	for _, t := range SubscriptionTiers {
		if t == tier {
			return true
		}
	}
	return false
}
