package main

import (
	"github.com/alphabatem/common/context"
	"github.com/joho/godotenv"
	"github.com/lac-hong-legacy/ven_companion/services"
	"github.com/lac-hong-legacy/ven_companion/shared"
	"github.com/rs/zerolog/log"
	"github.com/sirupsen/logrus"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Warn().Err(err).Msg("No .env file loaded, using process environment")
	}

	if cfg, err := shared.LoadConfig(); err == nil {
		if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
			logrus.SetLevel(level)
		}
	}

	ctx, err := context.NewCtx(
		&services.MonitoringService{},

		&services.PostgresService{},
		&services.RedisService{},
		&services.MinIOService{},

		&services.CatalogService{},
		&services.ProgressionService{},

		&services.JWTService{},
		&services.AuthService{},
		&services.RateLimitService{},
		&services.ChatService{},

		&services.HttpService{},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build service context")
		return
	}

	err = ctx.Run()
	if err != nil {
		log.Fatal().Err(err).Msg("Service context stopped")
		return
	}
}
