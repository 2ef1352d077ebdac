package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/lac-hong-legacy/ven_companion/model"
	"github.com/lac-hong-legacy/ven_companion/seed/seeders"
	"github.com/lac-hong-legacy/ven_companion/services"
	"github.com/lac-hong-legacy/ven_companion/services/repositories"
	"github.com/lac-hong-legacy/ven_companion/shared"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using system environment variables")
	}

	var (
		seedType  = flag.String("type", "all", "Type of seeding: all, characters, photos")
		dsn       = flag.String("db", "", "Postgres DSN (overrides DATABASE_URL)")
		photoDir  = flag.String("photos", "", "Directory holding roster photos to upload to MinIO")
		overwrite = flag.Bool("overwrite", false, "Overwrite characters that already exist")
		help      = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	cfg, err := shared.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	databaseURL := *dsn
	if databaseURL == "" {
		databaseURL = cfg.DatabaseURL
	}
	if databaseURL == "" && cfg.DBHost != "" {
		databaseURL = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode, cfg.DBTimezone)
	}
	if databaseURL == "" {
		log.Fatal("No database configured. Set DATABASE_URL, DB_HOST or -db")
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(&model.Character{}); err != nil {
		log.Fatalf("Failed to migrate characters: %v", err)
	}
	log.Info("Connected to database")

	ctx := context.Background()
	mainSeeder := seeders.NewMainSeeder(repositories.NewCharacterRepository(db), *overwrite)

	if *photoDir != "" {
		minioSvc, err := services.NewMinIOService(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to MinIO: %v", err)
		}
		if !minioSvc.Enabled() {
			log.Fatal("-photos needs MINIO_ENDPOINT to be set")
		}
		mainSeeder.WithPhotos(minioSvc, *photoDir)
	}

	switch *seedType {
	case "all":
		log.Info("Running complete seeding...")
		err = mainSeeder.SeedAll(ctx)
	case "characters":
		log.Info("Seeding characters only...")
		err = mainSeeder.SeedCharactersOnly(ctx)
	case "photos":
		log.Info("Uploading photos only...")
		_, err = mainSeeder.SeedPhotos(ctx)
	default:
		log.Fatalf("Unknown seed type: %s. Use 'all', 'characters' or 'photos'", *seedType)
	}
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err := rdb.Del(ctx, services.CatalogCacheKey).Err(); err != nil {
			log.WithError(err).Warn("Failed to invalidate the catalog cache")
		}
		_ = rdb.Close()
	}

	log.Info("Seeding operation completed successfully!")
}

func showHelp() {
	fmt.Println(`
Seeding tool for the companion roster

Usage: go run ./seed [flags]

Flags:
  -type string
        all, characters or photos (default "all")
  -db string
        Postgres DSN (overrides DATABASE_URL)
  -photos string
        Local directory with roster photos, laid out as their object keys
        (for example characters/linh/1.jpg). Requires MINIO_* settings.
  -overwrite
        Replace characters that already exist
  -help
        Show this help message

Examples:
  go run ./seed
  go run ./seed -type=characters -overwrite
  go run ./seed -type=photos -photos=./assets`)
}
