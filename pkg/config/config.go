package config

import (
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env  string `env:"APP_ENV" env-default:"local"`
	Port string `env:"PORT" env-default:"3000"`

	DatabaseURL string `env:"DATABASE_URL"`

	// Shared key gating the automation endpoints (repricing runs, sync,
	// manual price updates). Empty means the gate is permissive; this
	// mirrors the marketplace setup flow where the key arrives later.
	AutomationAPIKey string `env:"AUTOMATION_API_KEY"`

	Takealot  Takealot
	AI        AI
	Webhook   Webhook
	Repricing Repricing
}

type Takealot struct {
	APIKey       string        `env:"TAKEALOT_API_KEY"`
	BaseURL      string        `env:"TAKEALOT_API_URL" env-default:"https://seller-api.takealot.com"`
	HealthURL    string        `env:"TAKEALOT_HEALTH_URL" env-default:"https://api.takealot.com/seller/v1/offers"`
	MaxRetries   int           `env:"TAKEALOT_MAX_RETRIES" env-default:"3"`
	RetryBackoff time.Duration `env:"TAKEALOT_RETRY_BACKOFF" env-default:"500ms"`
}

type AI struct {
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiURL    string `env:"GEMINI_API_URL" env-default:"https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent"`
}

type Webhook struct {
	Secret     string        `env:"TAKEALOT_WEBHOOK_SECRET"`
	RateLimit  int           `env:"WEBHOOK_RATE_LIMIT" env-default:"30"`
	RateWindow time.Duration `env:"WEBHOOK_RATE_WINDOW" env-default:"1m"`
}

type Repricing struct {
	BatchTimeout time.Duration `env:"REPRICING_BATCH_TIMEOUT" env-default:"2m"`
}

// MustLoad reads configuration from the environment (with .env preload)
// and exits on failure.
func MustLoad() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}

	return &cfg
}
