package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/lac-hong-legacy/ven_companion/model"
	"github.com/lac-hong-legacy/ven_companion/services/repositories"
	"github.com/lac-hong-legacy/ven_companion/shared"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const POSTGRES_SVC = "postgres_svc"

// PostgresService owns the storage handle. Without a configured database
// it falls back to in-process repositories so the app runs in demo mode.
type PostgresService struct {
	appContext.DefaultService
	db *gorm.DB

	dsn  string
	demo bool

	users      UserStore
	characters *repositories.CharacterRepository
}

func (ds PostgresService) Id() string {
	return POSTGRES_SVC
}

func (ds PostgresService) Db() *gorm.DB {
	return ds.db
}

func (ds *PostgresService) Configure(ctx *appContext.Context) error {
	cfg, err := shared.LoadConfig()
	if err != nil {
		return err
	}

	ds.demo = cfg.DemoMode()
	ds.dsn = cfg.DatabaseURL
	if ds.dsn == "" && !ds.demo {
		ds.dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode, cfg.DBTimezone)
	}

	return ds.DefaultService.Configure(ctx)
}

func (ds *PostgresService) Start() (err error) {
	if ds.demo {
		log.Warn("No database configured, progress is kept in memory")
		ds.users = repositories.NewMemoryUserRepository()
		return nil
	}

	maxRetries := 10
	retryDelay := time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		log.Infof("Attempting to connect to database (attempt %d/%d)...", attempt, maxRetries)

		ds.db, err = gorm.Open(postgres.Open(ds.dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Error),
		})
		if err == nil {
			err = ds.ping()
			if err == nil {
				log.Info("Successfully connected to database")
				break
			}
		}

		if attempt == maxRetries {
			log.WithError(err).Errorf("Failed to connect to database after %d attempts", maxRetries)
			return err
		}

		log.WithError(err).Warnf("Database connection failed, retrying in %v", retryDelay)
		time.Sleep(retryDelay)

		retryDelay *= 2
		if retryDelay > 10*time.Second {
			retryDelay = 10 * time.Second
		}
	}

	if err = ds.db.AutoMigrate(&repositories.UserProgress{}, &model.Character{}); err != nil {
		log.WithError(err).Error("Failed to migrate database")
		return err
	}

	ds.users = repositories.NewUserRepository(ds.db)
	ds.characters = repositories.NewCharacterRepository(ds.db)

	log.Info("Database connected and migrated successfully")
	return nil
}

func (ds *PostgresService) ping() error {
	sqlDB, err := ds.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (ds *PostgresService) Shutdown() {
	if ds.db == nil {
		return
	}
	sqlDB, err := ds.db.DB()
	if err == nil {
		sqlDB.Close()
	}
}

// Demo reports whether storage lives in process memory
func (ds *PostgresService) Demo() bool {
	return ds.demo
}

func (ds *PostgresService) UserStore() UserStore {
	return ds.users
}

// CharacterRepository is nil in demo mode
func (ds *PostgresService) CharacterRepository() *repositories.CharacterRepository {
	return ds.characters
}

// HandleError classifies a gorm error, logs it and wraps it with its class
func (ds *PostgresService) HandleError(err error) error {
	if err == nil {
		return nil
	}

	var statusCode int
	var errorType string

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, shared.ErrNotFound):
		statusCode = http.StatusNotFound
		errorType = "NOT_FOUND"
	case errors.Is(err, shared.ErrVersionConflict):
		statusCode = http.StatusConflict
		errorType = "VERSION_CONFLICT"
	case errors.Is(err, gorm.ErrDuplicatedKey):
		statusCode = http.StatusConflict
		errorType = "CONFLICT"
	case errors.Is(err, gorm.ErrInvalidTransaction):
		statusCode = http.StatusInternalServerError
		errorType = "TRANSACTION_ERROR"
	default:
		msg := err.Error()
		if strings.Contains(msg, "duplicate key value violates unique constraint") {
			statusCode = http.StatusConflict
			errorType = "UNIQUE_CONSTRAINT"
		} else if strings.Contains(msg, "relation") && strings.Contains(msg, "does not exist") {
			statusCode = http.StatusInternalServerError
			errorType = "SCHEMA_ERROR"
		} else if strings.Contains(msg, "connection refused") {
			statusCode = http.StatusServiceUnavailable
			errorType = "DATABASE_CONNECTION_ERROR"
		} else {
			statusCode = http.StatusInternalServerError
			errorType = "INTERNAL_ERROR"
		}
	}

	logEntry := log.WithFields(log.Fields{
		"status_code": statusCode,
		"error_type":  errorType,
		"error":       err.Error(),
	})

	if statusCode >= 500 {
		logEntry.Error("Database error occurred")
	} else {
		logEntry.Warn("Database operation failed")
	}

	return fmt.Errorf("%s: %w", errorType, err)
}
