package dto

import (
	"github.com/lac-hong-legacy/ven_companion/model"
	"github.com/lac-hong-legacy/ven_companion/progression"
)

type UserResponse struct {
	TelegramID          int64    `json:"telegramId"`
	Username            string   `json:"username,omitempty"`
	FirstName           string   `json:"firstName,omitempty"`
	SelectedCharacterID string   `json:"selectedCharacterId,omitempty"`
	Likes               []string `json:"likes"`
	Passes              []string `json:"passes"`
	SubscriptionLevel   string   `json:"subscriptionLevel"`
	Credits             int      `json:"credits"`

	Sympathy               map[string]float64 `json:"sympathy"`
	CharacterLevel         map[string]int     `json:"characterLevel"`
	CharacterLevelProgress map[string]int     `json:"characterLevelProgress"`
	PhotoRequestPercent    map[string]int     `json:"photoRequestPercent"`

	DailyMissions model.DailyMissions `json:"dailyMissions"`
}

func NewUserResponse(u *model.User) UserResponse {
	return UserResponse{
		TelegramID:             u.TelegramID,
		Username:               u.Username,
		FirstName:              u.FirstName,
		SelectedCharacterID:    u.SelectedCharacterID,
		Likes:                  u.Likes,
		Passes:                 u.Passes,
		SubscriptionLevel:      u.SubscriptionLevel,
		Credits:                u.Credits,
		Sympathy:               u.Sympathy,
		CharacterLevel:         u.CharacterLevel,
		CharacterLevelProgress: u.CharacterLevelProgress,
		PhotoRequestPercent:    u.PhotoRequestPercent,
		DailyMissions:          u.DailyMissions,
	}
}

type EntitlementsResponse struct {
	SubscriptionLevel      string             `json:"subscriptionLevel"`
	Credits                int                `json:"credits"`
	UnlockedPhotos         map[string][]Photo `json:"unlockedPhotos"`
	Sympathy               map[string]float64 `json:"sympathy"`
	AffinityTier           map[string]int     `json:"affinityTier"`
	CharacterLevel         map[string]int     `json:"characterLevel"`
	CharacterLevelProgress map[string]int     `json:"characterLevelProgress"`
	PhotoRequestPercent    map[string]int     `json:"photoRequestPercent"`
	DailyUsageDate         string             `json:"dailyUsageDate"`
	DailyLimits            progression.Limits `json:"dailyLimits"`
	DailyLimitsRemaining   progression.Limits `json:"dailyLimitsRemaining"`
}

type SelectCharacterRequest struct {
	CharacterID string `json:"characterId" validate:"required,max=64"`
}

type MatchActionRequest struct {
	CharacterID string `json:"characterId" validate:"required,max=64"`
	Action      string `json:"action" validate:"required,oneof=like pass"`
}

type AddCreditsRequest struct {
	Amount int `json:"amount" validate:"required,gt=0,lte=100000"`
}

type SubscriptionRequest struct {
	Tier string `json:"tier" validate:"required,subscription_tier"`
}

type ClaimMissionsRequest struct {
	MissionIDs  []string `json:"missionIds" validate:"required,min=1,dive,required,max=64"`
	TotalReward int      `json:"totalReward" validate:"gte=0,lte=10000"`
}

type MissionClaimResponse struct {
	Credits       int                 `json:"credits"`
	DailyMissions model.DailyMissions `json:"dailyMissions"`
}
