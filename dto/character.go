package dto

// Photo pairs the stored reference of a photo with a URL the client can
// load. Clients send Key back when unlocking.
type Photo struct {
	Key           string `json:"key"`
	URL           string `json:"url"`
	RequiredLevel int    `json:"requiredLevel,omitempty"`
}

type CharacterResponse struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Age            int     `json:"age"`
	Personality    string  `json:"personality"`
	WelcomeMessage string  `json:"welcomeMessage"`
	Bio            string  `json:"bio"`
	Photos         []Photo `json:"photos"`
}

type MatchSummary struct {
	CharacterID     string  `json:"characterId"`
	Name            string  `json:"name"`
	Avatar          *Photo  `json:"avatar,omitempty"`
	LastMessage     string  `json:"lastMessage"`
	LastMessageTime int64   `json:"lastMessageTime"`
	Sympathy        float64 `json:"sympathy"`
	Level           int     `json:"level"`
}

type PhotoChanceResponse struct {
	Granted       bool    `json:"granted"`
	Photo         *Photo  `json:"photo,omitempty"`
	ChancePercent float64 `json:"chancePercent"`
}

type UnlockPhotoRequest struct {
	Photo string `json:"photo" validate:"required,max=512"`
}

type UnlockPhotoResponse struct {
	Unlocked         bool   `json:"unlocked"`
	AlreadyUnlocked  bool   `json:"alreadyUnlocked"`
	Photo            *Photo `json:"photo,omitempty"`
	RemainingCredits int    `json:"remainingCredits"`
}
