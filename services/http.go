package services

import (
	"fmt"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/lac-hong-legacy/ven_companion/docs"
	"github.com/lac-hong-legacy/ven_companion/services/handlers"
	"github.com/lac-hong-legacy/ven_companion/shared"
	log "github.com/sirupsen/logrus"
)

const HTTP_SVC = "http_svc"

type HttpService struct {
	appContext.DefaultService

	port     int
	logLevel string
	webApp   string
	demo     bool

	app *fiber.App
}

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *appContext.Context) error {
	cfg, err := shared.LoadConfig()
	if err != nil {
		return err
	}
	svc.port = cfg.HTTPPort
	svc.logLevel = cfg.LogLevel
	svc.webApp = cfg.WebAppURL
	svc.demo = cfg.AllowDemoCredits || cfg.DemoMode()
	return svc.DefaultService.Configure(ctx)
}

// Start blocks serving HTTP, so the service is registered last
func (svc *HttpService) Start() error {
	monitoringSvc := svc.Service(MONITORING_SVC).(*MonitoringService)
	authSvc := svc.Service(AUTH_SVC).(*AuthService)
	rateLimitSvc := svc.Service(RATE_LIMIT_SVC).(*RateLimitService)

	svc.app = NewFiberApp()
	svc.app.Use(recover.New())
	if svc.logLevel == "TRACE" {
		svc.app.Use(logger.New())
	}
	svc.app.Use(svc.corsMiddleware())
	svc.app.Use(MonitoringMiddleware(monitoringSvc))

	docs.SwaggerInfo.BasePath = "/"
	svc.app.Get("/swagger/*", swagger.HandlerDefault)
	svc.app.Get("/ping", svc.ping)

	v1 := svc.app.Group("/api/v1")
	v1.Get("/ping", svc.ping)

	handlers.Register(v1, handlers.Services{
		Auth:        authSvc,
		Catalog:     svc.Service(CATALOG_SVC).(*CatalogService),
		Progression: svc.Service(PROGRESSION_SVC).(*ProgressionService),
		Chat:        svc.Service(CHAT_SVC).(*ChatService),
	}, handlers.Limiters{
		Auth:  rateLimitSvc.Limit(RateLimitAuth),
		Chat:  rateLimitSvc.Limit(RateLimitChat),
		Photo: rateLimitSvc.Limit(RateLimitPhoto),
	}, svc.demo)

	svc.app.Use(func(c *fiber.Ctx) error {
		return shared.NewNotFoundError(nil, "Page not found")
	})

	if svc.demo {
		log.Warn("Demo routes for credits and subscriptions are enabled")
	}
	log.Infof("HTTP server listening on :%d", svc.port)
	return svc.app.Listen(fmt.Sprintf(":%d", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.app != nil {
		_ = svc.app.ShutdownWithTimeout(10 * time.Second)
	}
}

// NewFiberApp builds the app with the shared JSON codec and error envelope
func NewFiberApp() *fiber.App {
	return fiber.New(fiber.Config{
		DisableStartupMessage: true,
		JSONEncoder:           shared.JSONMarshal,
		JSONDecoder:           shared.JSONUnmarshal,
		ErrorHandler:          shared.ErrorHandler,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          60 * time.Second,
	})
}

func (svc *HttpService) corsMiddleware() fiber.Handler {
	cfg := cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-User-Id",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
	}
	if svc.webApp != "" {
		cfg.AllowOrigins = svc.webApp
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "max-age=10")
	return shared.ResponseJSON(c, fiber.StatusOK, "Success", "pong")
}
