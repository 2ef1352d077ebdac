package shared

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPPort int    `env:"HTTP_PORT" envDefault:"8000"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"INFO"`

	DatabaseURL string `env:"DATABASE_URL"`
	DBHost      string `env:"DB_HOST"`
	DBPort      string `env:"DB_PORT" envDefault:"5432"`
	DBUser      string `env:"DB_USER" envDefault:"postgres"`
	DBPassword  string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName      string `env:"DB_NAME" envDefault:"ven_companion"`
	DBSSLMode   string `env:"DB_SSLMODE" envDefault:"disable"`
	DBTimezone  string `env:"DB_TIMEZONE" envDefault:"UTC"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	TelegramBotToken string        `env:"TELEGRAM_BOT_TOKEN"`
	JWTSecret        string        `env:"JWT_SECRET"`
	TokenDuration    time.Duration `env:"JWT_TOKEN_DURATION" envDefault:"24h"`
	WebAppURL        string        `env:"WEBAPP_URL"`

	AIBaseURL string        `env:"AI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	AIAPIKey  string        `env:"AI_API_KEY"`
	AIModel   string        `env:"AI_MODEL" envDefault:"gpt-4o-mini"`
	AITimeout time.Duration `env:"AI_TIMEOUT" envDefault:"25s"`

	MinIOEndpoint  string `env:"MINIO_ENDPOINT"`
	MinIOAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinIOSecretKey string `env:"MINIO_SECRET_KEY"`
	MinIOUseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`
	MinIOBucket    string `env:"MINIO_BUCKET_NAME" envDefault:"companion-photos"`

	PhotoURLExpiry time.Duration `env:"PHOTO_URL_EXPIRY" envDefault:"1h"`

	PrometheusPort int `env:"PROMETHEUS_PORT" envDefault:"2112"`

	AllowDemoCredits bool `env:"ALLOW_DEMO_CREDITS" envDefault:"false"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DemoMode reports whether no storage connection was configured.
func (c *Config) DemoMode() bool {
	return c.DatabaseURL == "" && c.DBHost == ""
}
