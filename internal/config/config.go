package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Auth     AuthConfig
	Mollie   MollieConfig
	PDOK     PDOKConfig
}

type AppConfig struct {
	Name string `envconfig:"APP_NAME" default:"shop-api"`
	Port string `envconfig:"APP_PORT" default:"8080"`
	Env  string `envconfig:"APP_ENV" default:"development"`
}

type PostgresConfig struct {
	Host            string        `envconfig:"DB_HOST" default:"localhost"`
	Port            string        `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER" default:"postgres"`
	Password        string        `envconfig:"DB_PASSWORD" required:"true"`
	DBName          string        `envconfig:"DB_NAME" default:"healclinics"`
	SSLMode         string        `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns        int32         `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns        int32         `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MigrationsPath  string        `envconfig:"DB_MIGRATIONS_PATH" default:"migrations"`
}

type AuthConfig struct {
	JWTSecret       string        `envconfig:"JWT_SECRET" required:"true"`
	AccessTokenTTL  time.Duration `envconfig:"JWT_ACCESS_TTL" default:"15m"`
	RefreshTokenTTL time.Duration `envconfig:"JWT_REFRESH_TTL" default:"168h"`
}

type MollieConfig struct {
	APIKey      string        `envconfig:"MOLLIE_API_KEY"`
	BaseURL     string        `envconfig:"MOLLIE_BASE_URL" default:"https://api.mollie.com/v2"`
	WebhookURL  string        `envconfig:"MOLLIE_WEBHOOK_URL"`
	RedirectURL string        `envconfig:"MOLLIE_REDIRECT_URL" default:"http://localhost:3000/checkout/return"`
	Timeout     time.Duration `envconfig:"MOLLIE_TIMEOUT" default:"5s"`
}

type PDOKConfig struct {
	BaseURL    string        `envconfig:"PDOK_BASE_URL" default:"https://api.pdok.nl/bzk/locatieserver/search/v3_1/free"`
	SuggestURL string        `envconfig:"PDOK_SUGGEST_URL" default:"https://api.pdok.nl/bzk/locatieserver/suggest/v3_1/free"`
	Timeout    time.Duration `envconfig:"PDOK_TIMEOUT" default:"5s"`
}

// NewConfig loads .env when present, then parses the environment.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to process environment: %w", err)
	}

	return &cfg, nil
}
