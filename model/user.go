package model

import "time"

const (
	SenderUser      = "user"
	SenderCharacter = "character"
)

// ChatMessage is one entry of a per-character conversation. Entries are
// append-only; a conversation is only ever cleared as a whole.
type ChatMessage struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
	PhotoURL  string    `json:"photoUrl,omitempty"`
}

type DailyMissions struct {
	LastReset string         `json:"lastReset"`
	Completed []string       `json:"completed"`
	Progress  map[string]int `json:"progress"`
}

// User is the progression record of one end-user. Every per-character map
// is keyed by the character id string.
type User struct {
	TelegramID int64  `json:"telegramId"`
	Username   string `json:"username,omitempty"`
	FirstName  string `json:"firstName,omitempty"`

	Likes               []string `json:"likes"`
	Passes              []string `json:"passes"`
	SelectedCharacterID string   `json:"selectedCharacterId,omitempty"`

	ChatHistory            map[string][]ChatMessage `json:"chatHistory"`
	Sympathy               map[string]float64       `json:"sympathy"`
	CharacterLevel         map[string]int           `json:"characterLevel"`
	CharacterLevelProgress map[string]int           `json:"characterLevelProgress"`
	PhotoRequestPercent    map[string]int           `json:"photoRequestPercent"`
	UnlockedPhotos         map[string][]string      `json:"unlockedPhotos"`

	SubscriptionLevel string `json:"subscriptionLevel"`
	Credits           int    `json:"credits"`

	DailyUsageDate       string `json:"dailyUsageDate"`
	MessagesSentToday    int    `json:"messagesSentToday"`
	PhotosRequestedToday int    `json:"photosRequestedToday"`

	DailyMissions DailyMissions `json:"dailyMissions"`

	// Version is bumped by the store on every successful save.
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewUser(telegramID int64) *User {
	u := &User{
		TelegramID:        telegramID,
		SubscriptionLevel: "free",
	}
	u.Normalize()
	return u
}

// Normalize replaces nil collections with empty ones so callers can write
// into any map without checking.
func (u *User) Normalize() {
	if u.Likes == nil {
		u.Likes = []string{}
	}
	if u.Passes == nil {
		u.Passes = []string{}
	}
	if u.ChatHistory == nil {
		u.ChatHistory = map[string][]ChatMessage{}
	}
	if u.Sympathy == nil {
		u.Sympathy = map[string]float64{}
	}
	if u.CharacterLevel == nil {
		u.CharacterLevel = map[string]int{}
	}
	if u.CharacterLevelProgress == nil {
		u.CharacterLevelProgress = map[string]int{}
	}
	if u.PhotoRequestPercent == nil {
		u.PhotoRequestPercent = map[string]int{}
	}
	if u.UnlockedPhotos == nil {
		u.UnlockedPhotos = map[string][]string{}
	}
	if u.DailyMissions.Completed == nil {
		u.DailyMissions.Completed = []string{}
	}
	if u.DailyMissions.Progress == nil {
		u.DailyMissions.Progress = map[string]int{}
	}
	if u.SubscriptionLevel == "" {
		u.SubscriptionLevel = "free"
	}
}

func (u *User) HasLiked(characterID string) bool {
	return contains(u.Likes, characterID)
}

func (u *User) HasPassed(characterID string) bool {
	return contains(u.Passes, characterID)
}

func (u *User) HasUnlocked(characterID, photoURL string) bool {
	return contains(u.UnlockedPhotos[characterID], photoURL)
}

// Unlock adds the photo to the character's unlocked set. It reports false
// when the photo was already there.
func (u *User) Unlock(characterID, photoURL string) bool {
	if u.HasUnlocked(characterID, photoURL) {
		return false
	}
	u.UnlockedPhotos[characterID] = append(u.UnlockedPhotos[characterID], photoURL)
	return true
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
