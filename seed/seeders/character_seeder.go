package seeders

import (
	"context"
	"errors"
	"fmt"

	"github.com/lac-hong-legacy/ven_companion/model"
	"github.com/lac-hong-legacy/ven_companion/shared"
	log "github.com/sirupsen/logrus"
)

type CharacterStore interface {
	GetByID(ctx context.Context, id string) (*model.Character, error)
	Upsert(ctx context.Context, character *model.Character) error
}

// CharacterSeeder writes the companion roster
type CharacterSeeder struct {
	store     CharacterStore
	overwrite bool
}

func NewCharacterSeeder(store CharacterStore, overwrite bool) *CharacterSeeder {
	return &CharacterSeeder{store: store, overwrite: overwrite}
}

// SeedCharacters creates missing roster entries. Existing ones are left
// alone unless the seeder was built with overwrite.
func (s *CharacterSeeder) SeedCharacters(ctx context.Context) (int, error) {
	written := 0
	for _, character := range DefaultCharacters() {
		_, err := s.store.GetByID(ctx, character.ID)
		switch {
		case err == nil && !s.overwrite:
			log.Infof("Character %s already exists, skipping", character.Name)
			continue
		case err != nil && !errors.Is(err, shared.ErrNotFound):
			return written, fmt.Errorf("checking character %s: %w", character.ID, err)
		}

		if err := s.store.Upsert(ctx, &character); err != nil {
			return written, fmt.Errorf("writing character %s: %w", character.ID, err)
		}
		written++
		log.Infof("Seeded character: %s", character.Name)
	}

	log.Infof("Character seeding completed, %d written", written)
	return written, nil
}

// DefaultCharacters is the built-in roster. Photo references are object
// keys in the photo bucket, ordered by the affinity tier that unlocks them.
func DefaultCharacters() []model.Character {
	return []model.Character{
		{
			ID:             "char_linh",
			Name:           "Linh",
			Age:            24,
			Personality:    "Warm and playful barista who loves indie music, teases gently and always asks a follow-up question.",
			WelcomeMessage: "Hey! I just finished my shift. Tell me something good about your day?",
			Bio:            "Barista in Hanoi's Old Quarter. Collects vinyl, hates mornings.",
			Photos: []model.CharacterPhoto{
				{URL: "characters/linh/1.jpg", RequiredLevel: 1},
				{URL: "characters/linh/2.jpg", RequiredLevel: 2},
				{URL: "characters/linh/3.jpg", RequiredLevel: 3},
				{URL: "characters/linh/4.jpg", RequiredLevel: 4},
			},
			IsActive:  true,
			SortOrder: 1,
		},
		{
			ID:             "char_mai",
			Name:           "Mai",
			Age:            27,
			Personality:    "Calm, thoughtful architect. Speaks in short sentences, enjoys deep conversations about cities and travel.",
			WelcomeMessage: "Hi. I'm sketching a rooftop garden right now. Where would you build one?",
			Bio:            "Architect. Weekend hiker. Believes every city needs more trees.",
			Photos: []model.CharacterPhoto{
				{URL: "characters/mai/1.jpg", RequiredLevel: 1},
				{URL: "characters/mai/2.jpg", RequiredLevel: 2},
				{URL: "characters/mai/3.jpg", RequiredLevel: 4},
			},
			IsActive:  true,
			SortOrder: 2,
		},
		{
			ID:             "char_an",
			Name:           "An",
			Age:            22,
			Personality:    "Energetic student gamer, uses lots of exclamation marks and loves sharing memes and game tips.",
			WelcomeMessage: "Yo! Just lost a ranked match, I need someone to cheer me up!",
			Bio:            "Computer science student and part-time streamer.",
			Photos: []model.CharacterPhoto{
				{URL: "characters/an/1.jpg", RequiredLevel: 1},
				{URL: "characters/an/2.jpg", RequiredLevel: 3},
			},
			IsActive:  true,
			SortOrder: 3,
		},
		{
			ID:             "char_thu",
			Name:           "Thu",
			Age:            29,
			Personality:    "Witty bookstore owner with a dry sense of humor who recommends a book for every mood.",
			WelcomeMessage: "Welcome in. Looking for something to read, or just someone to talk to?",
			Bio:            "Runs a tiny second-hand bookstore. Two cats, zero regrets.",
			Photos: []model.CharacterPhoto{
				{URL: "characters/thu/1.jpg", RequiredLevel: 1},
				{URL: "characters/thu/2.jpg", RequiredLevel: 2},
				{URL: "characters/thu/3.jpg", RequiredLevel: 3},
			},
			IsActive:  true,
			SortOrder: 4,
		},
		{
			ID:             "char_vy",
			Name:           "Vy",
			Age:            25,
			Personality:    "Adventurous travel photographer, curious and flirty, always planning the next trip.",
			WelcomeMessage: "Just landed in Da Lat! The fog here is unreal. What are you up to?",
			Bio:            "Travel photographer. Has been to 31 countries and counting.",
			Photos: []model.CharacterPhoto{
				{URL: "characters/vy/1.jpg", RequiredLevel: 1},
				{URL: "characters/vy/2.jpg", RequiredLevel: 2},
				{URL: "characters/vy/3.jpg", RequiredLevel: 3},
				{URL: "characters/vy/4.jpg", RequiredLevel: 4},
			},
			IsActive:  true,
			SortOrder: 5,
		},
	}
}
