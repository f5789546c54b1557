package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every runtime setting, loaded from CATALOG_* environment
// variables with a .env file as local fallback.
type Config struct {
	Addr            string        `envconfig:"ADDR" default:":8000"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `envconfig:"IDLE_TIMEOUT" default:"120s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`

	DBDSN        string        `envconfig:"DB_DSN" required:"true"`
	QueryTimeout time.Duration `envconfig:"QUERY_TIMEOUT" default:"5s"`

	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"336h"`

	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
	LogProduction bool   `envconfig:"LOG_PRODUCTION" default:"false"`

	RateLimitRPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"10"`
	RateLimitBurst int     `envconfig:"RATE_LIMIT_BURST" default:"20"`

	CORSOrigins  []string `envconfig:"CORS_ORIGINS" default:"*"`
	MaxBodyBytes int64    `envconfig:"MAX_BODY_BYTES" default:"1048576"`
}

// Load reads a .env file if one is present, then the environment. The
// environment always wins over the file.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("catalog", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
