package model

import "time"

// CharacterPhoto is gated by the affinity tier (1-4) the user must reach.
type CharacterPhoto struct {
	URL           string `json:"url"`
	RequiredLevel int    `json:"requiredLevel"`
}

// Character is the companion persona reference data
type Character struct {
	ID             string           `json:"id" gorm:"primaryKey"`
	Name           string           `json:"name" gorm:"not null"`
	Age            int              `json:"age"`
	Personality    string           `json:"personality" gorm:"type:text"`
	WelcomeMessage string           `json:"welcomeMessage" gorm:"type:text"`
	Bio            string           `json:"bio" gorm:"type:text"`
	Photos         []CharacterPhoto `json:"photos" gorm:"serializer:json;type:jsonb"`
	IsActive       bool             `json:"isActive" gorm:"index"`
	SortOrder      int              `json:"-" gorm:"default:0"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

func (c *Character) PhotoURLs() []string {
	urls := make([]string, 0, len(c.Photos))
	for _, p := range c.Photos {
		urls = append(urls, p.URL)
	}
	return urls
}

func (c *Character) HasPhoto(url string) bool {
	for _, p := range c.Photos {
		if p.URL == url {
			return true
		}
	}
	return false
}
