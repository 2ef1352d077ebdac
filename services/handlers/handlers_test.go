package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/ven_companion/dto"
	"github.com/lac-hong-legacy/ven_companion/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct{}

func (fakeAuth) AuthenticateTelegram(_ context.Context, initData string) (*dto.AuthResponse, error) {
	if initData != "valid" {
		return nil, shared.NewUnauthorizedError(nil, "Invalid Telegram init data")
	}
	return &dto.AuthResponse{TokenPair: dto.TokenPair{AccessToken: "token", TokenType: "Bearer"}, User: dto.UserResponse{TelegramID: 7}}, nil
}

func (fakeAuth) RequiredAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseInt(c.Get("X-Test-User"), 10, 64)
		if err != nil {
			return shared.NewUnauthorizedError(err, "Unauthorized")
		}
		c.Locals(shared.UserID, id)
		return c.Next()
	}
}

type fakeCatalog struct{}

func (fakeCatalog) ListCharacters(context.Context) ([]dto.CharacterResponse, error) {
	return []dto.CharacterResponse{{ID: "a", Name: "Alice"}}, nil
}

func (fakeCatalog) GetCharacter(_ context.Context, id string) (*dto.CharacterResponse, error) {
	if id != "a" {
		return nil, shared.NewNotFoundError(nil, "Character not found")
	}
	return &dto.CharacterResponse{ID: "a", Name: "Alice"}, nil
}

// fakeProgression answers every call with the configured error, or an
// empty success, and remembers the last user and character it saw.
type fakeProgression struct {
	err         error
	userID      int64
	characterID string
	photoKey    string
	missions    []string
}

func (f *fakeProgression) seen(userID int64, characterID string) {
	f.userID, f.characterID = userID, characterID
}

func (f *fakeProgression) GetOrCreateUser(_ context.Context, userID int64, _, _ string) (*dto.UserResponse, error) {
	f.seen(userID, "")
	return &dto.UserResponse{TelegramID: userID}, f.err
}

func (f *fakeProgression) SelectCharacter(_ context.Context, userID int64, characterID string) (*dto.UserResponse, error) {
	f.seen(userID, characterID)
	return &dto.UserResponse{TelegramID: userID, SelectedCharacterID: characterID}, f.err
}

func (f *fakeProgression) AddCredits(_ context.Context, userID int64, amount int) (int, error) {
	f.seen(userID, "")
	return amount, f.err
}

func (f *fakeProgression) SetSubscriptionLevel(_ context.Context, userID int64, tier string) (*dto.EntitlementsResponse, error) {
	f.seen(userID, "")
	return &dto.EntitlementsResponse{SubscriptionLevel: tier}, f.err
}

func (f *fakeProgression) GetEntitlements(_ context.Context, userID int64) (*dto.EntitlementsResponse, error) {
	f.seen(userID, "")
	return &dto.EntitlementsResponse{SubscriptionLevel: shared.TierFree}, f.err
}

func (f *fakeProgression) RecordMatchAction(_ context.Context, userID int64, characterID, _ string) error {
	f.seen(userID, characterID)
	return f.err
}

func (f *fakeProgression) ListCandidates(_ context.Context, userID int64) ([]dto.CharacterResponse, error) {
	f.seen(userID, "")
	return []dto.CharacterResponse{}, f.err
}

func (f *fakeProgression) ListMatches(_ context.Context, userID int64) ([]dto.MatchSummary, error) {
	f.seen(userID, "")
	return []dto.MatchSummary{}, f.err
}

func (f *fakeProgression) GetHistory(_ context.Context, userID int64, characterID string) ([]dto.ChatMessageResponse, error) {
	f.seen(userID, characterID)
	return []dto.ChatMessageResponse{}, f.err
}

func (f *fakeProgression) ClearHistory(_ context.Context, userID int64, characterID string) error {
	f.seen(userID, characterID)
	return f.err
}

func (f *fakeProgression) RecalculateSympathy(_ context.Context, userID int64, characterID string) (float64, error) {
	f.seen(userID, characterID)
	return 4.5, f.err
}

func (f *fakeProgression) RequestPhotoByChance(_ context.Context, userID int64, characterID string) (*dto.PhotoChanceResponse, error) {
	f.seen(userID, characterID)
	return &dto.PhotoChanceResponse{}, f.err
}

func (f *fakeProgression) UnlockPhotoWithCredits(_ context.Context, userID int64, characterID, photoKey string) (*dto.UnlockPhotoResponse, error) {
	f.seen(userID, characterID)
	f.photoKey = photoKey
	if f.err != nil {
		return nil, f.err
	}
	return &dto.UnlockPhotoResponse{Unlocked: true}, nil
}

func (f *fakeProgression) ClaimMissionRewards(_ context.Context, userID int64, missionIDs []string, totalReward int) (*dto.MissionClaimResponse, error) {
	f.seen(userID, "")
	f.missions = missionIDs
	return &dto.MissionClaimResponse{Credits: totalReward}, f.err
}

type fakeChat struct {
	err  error
	text string
}

func (f *fakeChat) SendMessage(_ context.Context, _ int64, _ string, text string) (*dto.SendMessageResponse, error) {
	f.text = text
	if f.err != nil {
		return nil, f.err
	}
	return &dto.SendMessageResponse{Success: true, Reply: dto.ChatMessageResponse{Text: "hey"}}, nil
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func newTestApp(progression *fakeProgression, chat *fakeChat, demo bool) *fiber.App {
	app := fiber.New(fiber.Config{
		JSONEncoder:  shared.JSONMarshal,
		JSONDecoder:  shared.JSONUnmarshal,
		ErrorHandler: shared.ErrorHandler,
	})
	Register(app.Group("/api/v1"), Services{
		Auth:        fakeAuth{},
		Catalog:     fakeCatalog{},
		Progression: progression,
		Chat:        chat,
	}, Limiters{}, demo)
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string, userID int64) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID > 0 {
		req.Header.Set("X-Test-User", strconv.FormatInt(userID, 10))
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return resp.StatusCode, env
}

func TestCharacterRoutes(t *testing.T) {
	app := newTestApp(&fakeProgression{}, &fakeChat{}, false)

	t.Run("ListIsPublic", func(t *testing.T) {
		status, env := do(t, app, http.MethodGet, "/api/v1/characters", "", 0)
		assert.Equal(t, http.StatusOK, status)

		var characters []dto.CharacterResponse
		require.NoError(t, json.Unmarshal(env.Data, &characters))
		require.Len(t, characters, 1)
		assert.Equal(t, "Alice", characters[0].Name)
	})

	t.Run("UnknownCharacter", func(t *testing.T) {
		status, env := do(t, app, http.MethodGet, "/api/v1/characters/zzz", "", 0)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, shared.CodeNotFound, env.Error)
	})
}

func TestTelegramLogin(t *testing.T) {
	app := newTestApp(&fakeProgression{}, &fakeChat{}, false)

	status, env := do(t, app, http.MethodPost, "/api/v1/auth/telegram", `{"initData":"valid"}`, 0)
	assert.Equal(t, http.StatusOK, status)
	var auth dto.AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &auth))
	assert.Equal(t, "token", auth.AccessToken)
	assert.Equal(t, int64(7), auth.User.TelegramID)

	status, env = do(t, app, http.MethodPost, "/api/v1/auth/telegram", `{}`, 0)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, shared.CodeValidation, env.Error)

	status, _ = do(t, app, http.MethodPost, "/api/v1/auth/telegram", `{"initData":"forged"}`, 0)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAuthenticatedRoutesRequireUser(t *testing.T) {
	app := newTestApp(&fakeProgression{}, &fakeChat{}, false)

	for _, path := range []string{"/api/v1/user", "/api/v1/user/entitlements", "/api/v1/chat/a/history"} {
		status, env := do(t, app, http.MethodGet, path, "", 0)
		assert.Equal(t, http.StatusUnauthorized, status, path)
		assert.Equal(t, shared.CodeUnauthorized, env.Error, path)
	}
}

func TestUserRoutes(t *testing.T) {
	progression := &fakeProgression{}
	app := newTestApp(progression, &fakeChat{}, false)

	status, env := do(t, app, http.MethodGet, "/api/v1/user", "", 42)
	assert.Equal(t, http.StatusOK, status)
	var user dto.UserResponse
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.Equal(t, int64(42), user.TelegramID)

	status, _ = do(t, app, http.MethodPost, "/api/v1/user/select", `{"characterId":"b"}`, 42)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "b", progression.characterID)

	status, env = do(t, app, http.MethodPost, "/api/v1/user/matches", `{"characterId":"b","action":"maybe"}`, 42)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, shared.CodeValidation, env.Error)

	status, _ = do(t, app, http.MethodPost, "/api/v1/user/matches", `{"characterId":"b","action":"like"}`, 42)
	assert.Equal(t, http.StatusOK, status)

	status, _ = do(t, app, http.MethodPost, "/api/v1/missions/claim", `{"missionIds":["m1","m2"],"totalReward":5}`, 42)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"m1", "m2"}, progression.missions)
}

func TestDemoRoutes(t *testing.T) {
	t.Run("HiddenOutsideDemo", func(t *testing.T) {
		app := newTestApp(&fakeProgression{}, &fakeChat{}, false)
		status, _ := do(t, app, http.MethodPost, "/api/v1/user/credits", `{"amount":10}`, 42)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("MountedInDemo", func(t *testing.T) {
		app := newTestApp(&fakeProgression{}, &fakeChat{}, true)

		status, _ := do(t, app, http.MethodPost, "/api/v1/user/credits", `{"amount":10}`, 42)
		assert.Equal(t, http.StatusOK, status)

		status, env := do(t, app, http.MethodPost, "/api/v1/user/subscription", `{"tier":"platinum"}`, 42)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, shared.CodeValidation, env.Error)

		status, _ = do(t, app, http.MethodPost, "/api/v1/user/subscription", `{"tier":"gold"}`, 42)
		assert.Equal(t, http.StatusOK, status)
	})
}

func TestChatRoutes(t *testing.T) {
	t.Run("SendMessage", func(t *testing.T) {
		chat := &fakeChat{}
		app := newTestApp(&fakeProgression{}, chat, false)

		status, env := do(t, app, http.MethodPost, "/api/v1/chat/a/messages", `{"text":"hello"}`, 42)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "hello", chat.text)

		var resp dto.SendMessageResponse
		require.NoError(t, json.Unmarshal(env.Data, &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "hey", resp.Reply.Text)
	})

	t.Run("EmptyText", func(t *testing.T) {
		app := newTestApp(&fakeProgression{}, &fakeChat{}, false)
		status, env := do(t, app, http.MethodPost, "/api/v1/chat/a/messages", `{"text":""}`, 42)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, shared.CodeValidation, env.Error)
	})

	t.Run("DailyLimit", func(t *testing.T) {
		chat := &fakeChat{err: shared.NewDailyLimitError(shared.DailyLimitMessages, 50)}
		app := newTestApp(&fakeProgression{}, chat, false)

		status, env := do(t, app, http.MethodPost, "/api/v1/chat/a/messages", `{"text":"hello"}`, 42)
		assert.Equal(t, http.StatusTooManyRequests, status)
		assert.Equal(t, shared.CodeDailyLimitExceeded, env.Error)

		var details shared.DailyLimitDetails
		require.NoError(t, json.Unmarshal(env.Data, &details))
		assert.Equal(t, shared.DailyLimitMessages, details.Kind)
		assert.Equal(t, 50, details.Limit)
	})

	t.Run("Recalculate", func(t *testing.T) {
		progression := &fakeProgression{}
		app := newTestApp(progression, &fakeChat{}, false)

		status, env := do(t, app, http.MethodPost, "/api/v1/chat/a/recalculate", "", 42)
		assert.Equal(t, http.StatusOK, status)
		var resp dto.RecalculateResponse
		require.NoError(t, json.Unmarshal(env.Data, &resp))
		assert.Equal(t, "a", resp.CharacterID)
		assert.Equal(t, 4.5, resp.Sympathy)
	})
}

func TestPhotoRoutes(t *testing.T) {
	t.Run("UnlockPassesTheKey", func(t *testing.T) {
		progression := &fakeProgression{}
		app := newTestApp(progression, &fakeChat{}, false)

		status, _ := do(t, app, http.MethodPost, "/api/v1/photos/a/unlock", `{"photo":"a/2.jpg"}`, 42)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "a", progression.characterID)
		assert.Equal(t, "a/2.jpg", progression.photoKey)
	})

	t.Run("InsufficientFunds", func(t *testing.T) {
		progression := &fakeProgression{err: shared.NewInsufficientFundsError(10, 3)}
		app := newTestApp(progression, &fakeChat{}, false)

		status, env := do(t, app, http.MethodPost, "/api/v1/photos/a/unlock", `{"photo":"a/2.jpg"}`, 42)
		assert.Equal(t, http.StatusPaymentRequired, status)
		assert.Equal(t, shared.CodeInsufficientFunds, env.Error)

		var details shared.InsufficientFundsDetails
		require.NoError(t, json.Unmarshal(env.Data, &details))
		assert.Equal(t, 10, details.CreditsNeeded)
		assert.Equal(t, 3, details.CurrentCredits)
	})
}
