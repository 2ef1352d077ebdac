package dto

// TelegramAuthRequest carries the raw initData string the Telegram Web App
// hands to the page.
type TelegramAuthRequest struct {
	InitData string `json:"initData" validate:"required"`
}

type TelegramUser struct {
	ID           int64  `json:"id"`
	Username     string `json:"username,omitempty"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
}

type AuthResponse struct {
	TokenPair
	User UserResponse `json:"user"`
}
