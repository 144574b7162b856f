package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Stripe
	StripeSecretKey     string `envconfig:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET"`

	// Supabase
	SupabaseURL            string `envconfig:"SUPABASE_URL"`
	SupabasePublishableKey string `envconfig:"SUPABASE_PUBLISHABLE_KEY"`
	SupabaseServiceRoleKey string `envconfig:"SUPABASE_SERVICE_ROLE_KEY"`
	SupabaseJWTSecret      string `envconfig:"SUPABASE_JWT_SECRET"`
	ReferencesBucket       string `envconfig:"REFERENCES_BUCKET" default:"order-references"`
	DeliverablesBucket     string `envconfig:"DELIVERABLES_BUCKET" default:"order-deliverables"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// Draft sessions
	RedisAddr        string        `envconfig:"REDIS_ADDR"`
	DraftTTL         time.Duration `envconfig:"DRAFT_TTL" default:"168h"`
	DraftIdleTimeout time.Duration `envconfig:"DRAFT_IDLE_TIMEOUT" default:"30m"`

	// Email
	ResendAPIKey  string `envconfig:"RESEND_API_KEY"`
	ResendBaseURL string `envconfig:"RESEND_BASE_URL" default:"https://api.resend.com"`
	EmailFrom     string `envconfig:"EMAIL_FROM" default:"Infinity Creative <orders@infinitycreative.com>"`

	// Server
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	AppURL      string `envconfig:"APP_URL" default:"http://localhost:3000"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads an optional .env file and then the environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.StripeSecretKey == "" {
		return fmt.Errorf("STRIPE_SECRET_KEY is required")
	}
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabasePublishableKey == "" {
		return fmt.Errorf("SUPABASE_PUBLISHABLE_KEY is required")
	}
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// StorageKey is the key used for storage writes. Uploads to private buckets
// need the service role key; the publishable key is the fallback.
func (c *Config) StorageKey() string {
	if c.SupabaseServiceRoleKey != "" {
		return c.SupabaseServiceRoleKey
	}
	return c.SupabasePublishableKey
}
