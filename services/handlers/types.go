package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/ven_companion/dto"
	"github.com/lac-hong-legacy/ven_companion/shared"
)

type AuthServiceInterface interface {
	AuthenticateTelegram(ctx context.Context, initData string) (*dto.AuthResponse, error)
	RequiredAuth() fiber.Handler
}

type CatalogServiceInterface interface {
	ListCharacters(ctx context.Context) ([]dto.CharacterResponse, error)
	GetCharacter(ctx context.Context, id string) (*dto.CharacterResponse, error)
}

type ProgressionServiceInterface interface {
	GetOrCreateUser(ctx context.Context, userID int64, username, firstName string) (*dto.UserResponse, error)
	SelectCharacter(ctx context.Context, userID int64, characterID string) (*dto.UserResponse, error)
	AddCredits(ctx context.Context, userID int64, amount int) (int, error)
	SetSubscriptionLevel(ctx context.Context, userID int64, tier string) (*dto.EntitlementsResponse, error)
	GetEntitlements(ctx context.Context, userID int64) (*dto.EntitlementsResponse, error)
	RecordMatchAction(ctx context.Context, userID int64, characterID, action string) error
	ListCandidates(ctx context.Context, userID int64) ([]dto.CharacterResponse, error)
	ListMatches(ctx context.Context, userID int64) ([]dto.MatchSummary, error)
	GetHistory(ctx context.Context, userID int64, characterID string) ([]dto.ChatMessageResponse, error)
	ClearHistory(ctx context.Context, userID int64, characterID string) error
	RecalculateSympathy(ctx context.Context, userID int64, characterID string) (float64, error)
	RequestPhotoByChance(ctx context.Context, userID int64, characterID string) (*dto.PhotoChanceResponse, error)
	UnlockPhotoWithCredits(ctx context.Context, userID int64, characterID, photoKey string) (*dto.UnlockPhotoResponse, error)
	ClaimMissionRewards(ctx context.Context, userID int64, missionIDs []string, totalReward int) (*dto.MissionClaimResponse, error)
}

type ChatServiceInterface interface {
	SendMessage(ctx context.Context, userID int64, characterID, text string) (*dto.SendMessageResponse, error)
}

// currentUser reads the telegram id stored by the auth middleware
func currentUser(c *fiber.Ctx) (int64, error) {
	userID, ok := c.Locals(shared.UserID).(int64)
	if !ok || userID <= 0 {
		return 0, shared.NewUnauthorizedError(nil, "Unauthorized")
	}
	return userID, nil
}

func parseBody(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}
	return dto.Validate(req)
}
