package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/ven_companion/dto"
	"github.com/lac-hong-legacy/ven_companion/shared"
	log "github.com/sirupsen/logrus"
)

const AUTH_SVC = "auth_svc"

const (
	initDataMaxAge = 24 * time.Hour
	demoUserHeader = "X-User-Id"
)

var (
	errInitDataHash  = errors.New("init data hash mismatch")
	errInitDataStale = errors.New("init data expired")
)

type userRegistrar interface {
	GetOrCreateUser(ctx context.Context, userID int64, username, firstName string) (*dto.UserResponse, error)
}

// AuthService verifies Telegram Web App launches and guards the API with
// the issued session tokens.
type AuthService struct {
	appContext.DefaultService

	botToken string
	jwtSvc   *JWTService
	users    userRegistrar
	now      func() time.Time
}

func NewAuthService(botToken string, jwtSvc *JWTService, users userRegistrar) *AuthService {
	return &AuthService{botToken: botToken, jwtSvc: jwtSvc, users: users, now: time.Now}
}

func (svc AuthService) Id() string {
	return AUTH_SVC
}

func (svc *AuthService) Configure(ctx *appContext.Context) error {
	cfg, err := shared.LoadConfig()
	if err != nil {
		return err
	}
	svc.botToken = cfg.TelegramBotToken
	svc.now = time.Now
	return svc.DefaultService.Configure(ctx)
}

func (svc *AuthService) Start() error {
	svc.jwtSvc = svc.Service(JWT_SVC).(*JWTService)
	svc.users = svc.Service(PROGRESSION_SVC).(*ProgressionService)
	if svc.DemoAuth() {
		log.Warnf("TELEGRAM_BOT_TOKEN not set, accepting %s header", demoUserHeader)
	}
	return nil
}

// DemoAuth reports whether callers may identify themselves by header
func (svc *AuthService) DemoAuth() bool {
	return svc.botToken == ""
}

// AuthenticateTelegram checks the signed launch payload, registers the user
// and issues a session token.
func (svc *AuthService) AuthenticateTelegram(ctx context.Context, initData string) (*dto.AuthResponse, error) {
	if svc.DemoAuth() {
		return nil, shared.NewForbiddenError(nil, "Telegram login is not configured")
	}

	tgUser, err := svc.VerifyInitData(initData)
	if err != nil {
		log.WithError(err).Warn("Rejected Telegram init data")
		return nil, shared.NewUnauthorizedError(err, "Invalid Telegram init data")
	}

	user, err := svc.users.GetOrCreateUser(ctx, tgUser.ID, tgUser.Username, tgUser.FirstName)
	if err != nil {
		return nil, err
	}

	tokens, err := svc.jwtSvc.GenerateTokenPair(tgUser.ID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to issue token")
	}

	return &dto.AuthResponse{TokenPair: *tokens, User: *user}, nil
}

// VerifyInitData validates the Web App signature: the secret is
// HMAC_SHA256("WebAppData", botToken) and the hash covers the sorted
// key=value pairs other than hash, joined by newlines.
func (svc *AuthService) VerifyInitData(initData string) (*dto.TelegramUser, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, err
	}

	hash := values.Get("hash")
	if hash == "" {
		return nil, errInitDataHash
	}

	pairs := make([]string, 0, len(values))
	for key := range values {
		if key == "hash" {
			continue
		}
		pairs = append(pairs, key+"="+values.Get(key))
	}
	sort.Strings(pairs)

	expected := signInitData(svc.botToken, strings.Join(pairs, "\n"))
	got, err := hex.DecodeString(hash)
	if err != nil || !hmac.Equal(got, expected) {
		return nil, errInitDataHash
	}

	authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil {
		return nil, errInitDataStale
	}
	if svc.now().Sub(time.Unix(authDate, 0)) > initDataMaxAge {
		return nil, errInitDataStale
	}

	var tgUser dto.TelegramUser
	if err := sonic.UnmarshalString(values.Get("user"), &tgUser); err != nil {
		return nil, err
	}
	if tgUser.ID <= 0 {
		return nil, errors.New("init data has no user")
	}
	return &tgUser, nil
}

func signInitData(botToken, dataCheckString string) []byte {
	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(dataCheckString))
	return mac.Sum(nil)
}

// RequiredAuth resolves the caller and stores the telegram id in
// c.Locals(shared.UserID).
func (svc *AuthService) RequiredAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" && svc.DemoAuth() {
			userID, err := strconv.ParseInt(c.Get(demoUserHeader), 10, 64)
			if err != nil || userID <= 0 {
				return shared.NewUnauthorizedError(err, "Missing user id")
			}
			c.Locals(shared.UserID, userID)
			return c.Next()
		}

		token, err := svc.jwtSvc.ExtractTokenFromHeader(authHeader)
		if err != nil {
			return shared.NewUnauthorizedError(err, "Unauthorized")
		}

		userID, err := svc.jwtSvc.VerifyJWTToken(token)
		if err != nil {
			return shared.NewUnauthorizedError(err, "Invalid JWT token")
		}

		c.Locals(shared.UserID, userID)
		return c.Next()
	}
}
