package dto

import "github.com/lac-hong-legacy/ven_companion/progression"

type ChatMessageResponse struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Sender    string `json:"sender"`
	Timestamp int64  `json:"timestamp"`
	Photo     *Photo `json:"photo,omitempty"`
}

// ProgressStats is the per-character progression snapshot returned after a
// message is recorded.
type ProgressStats struct {
	Sympathy             float64            `json:"sympathy"`
	Level                int                `json:"level"`
	LevelProgress        int                `json:"levelProgress"`
	LeveledUp            bool               `json:"leveledUp"`
	PhotoRequestPercent  int                `json:"photoRequestPercent"`
	DailyLimitsRemaining progression.Limits `json:"dailyLimitsRemaining"`
}

type RecordMessageResponse struct {
	Message ChatMessageResponse `json:"message"`
	ProgressStats
}

type SendMessageRequest struct {
	Text string `json:"text" validate:"required,max=4000"`
}

// SendMessageResponse is returned by the conversation flow. Success is false
// when the reply could not be generated; Reply then carries a fallback text
// that was not stored.
type SendMessageResponse struct {
	Success     bool                `json:"success"`
	Error       string              `json:"error,omitempty"`
	UserMessage ChatMessageResponse `json:"userMessage"`
	Reply       ChatMessageResponse `json:"reply"`
	Stats       ProgressStats       `json:"stats"`
}

type RecalculateResponse struct {
	CharacterID string  `json:"characterId"`
	Sympathy    float64 `json:"sympathy"`
}
