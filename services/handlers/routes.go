package handlers

import (
	"github.com/gofiber/fiber/v2"
)

type Services struct {
	Auth        AuthServiceInterface
	Catalog     CatalogServiceInterface
	Progression ProgressionServiceInterface
	Chat        ChatServiceInterface
}

// Limiters are optional per-endpoint throttles, keyed by route group
type Limiters struct {
	Auth  fiber.Handler
	Chat  fiber.Handler
	Photo fiber.Handler
}

// Register mounts the API on router. Demo routes that hand out credits and
// subscriptions are only mounted when demo is true.
func Register(router fiber.Router, svcs Services, limits Limiters, demo bool) {
	authHandler := NewAuthHandler(svcs.Auth)
	characterHandler := NewCharacterHandler(svcs.Catalog)
	userHandler := NewUserHandler(svcs.Progression)
	chatHandler := NewChatHandler(svcs.Chat, svcs.Progression)
	photoHandler := NewPhotoHandler(svcs.Progression)

	router.Post("/auth/telegram", orNext(limits.Auth), authHandler.TelegramLogin)

	router.Get("/characters", characterHandler.ListCharacters)
	router.Get("/characters/:id", characterHandler.GetCharacter)

	requiredAuth := svcs.Auth.RequiredAuth()

	user := router.Group("/user", requiredAuth)
	user.Get("/", userHandler.GetUser)
	user.Get("/entitlements", userHandler.GetEntitlements)
	user.Get("/candidates", userHandler.ListCandidates)
	user.Get("/matches", userHandler.ListMatches)
	user.Post("/matches", userHandler.RecordMatchAction)
	user.Post("/select", userHandler.SelectCharacter)
	if demo {
		user.Post("/credits", userHandler.AddCredits)
		user.Post("/subscription", userHandler.SetSubscription)
	}

	chat := router.Group("/chat", requiredAuth)
	chat.Get("/:characterId/history", chatHandler.GetHistory)
	chat.Delete("/:characterId/history", chatHandler.ClearHistory)
	chat.Post("/:characterId/messages", orNext(limits.Chat), chatHandler.SendMessage)
	chat.Post("/:characterId/recalculate", chatHandler.RecalculateSympathy)

	photos := router.Group("/photos", requiredAuth, orNext(limits.Photo))
	photos.Post("/:characterId/chance", photoHandler.RequestByChance)
	photos.Post("/:characterId/unlock", photoHandler.Unlock)

	router.Post("/missions/claim", requiredAuth, userHandler.ClaimMissions)
}

func orNext(h fiber.Handler) fiber.Handler {
	if h != nil {
		return h
	}
	return func(c *fiber.Ctx) error {
		return c.Next()
	}
}
