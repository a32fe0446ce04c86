package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	// Supabase
	SupabaseURL            string
	SupabasePublishableKey string
	SupabaseJWTSecret      string

	// Stripe
	StripeSecretKey     string
	StripeWebhookSecret string
	StripeAPIURL        string
	PaymentCurrency     string
	PaymentTimeout      time.Duration

	// Database. Empty means the in-memory store.
	DatabaseURL string

	// Redis intent lock. Empty disables it.
	RedisURL      string
	IntentLockTTL time.Duration

	// Server
	Port        string
	Environment string
	BaseURL     string

	// Observability
	LogLevel     string
	LogFormat    string
	OTELEndpoint string
}

// Load reads configuration from the environment, after loading an optional
// .env file from the working directory.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PAYMENT_CURRENCY", "usd")
	v.SetDefault("PAYMENT_TIMEOUT", "10s")
	v.SetDefault("INTENT_LOCK_TTL", "30s")
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("BASE_URL", "http://localhost:8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		SupabaseURL:            v.GetString("SUPABASE_URL"),
		SupabasePublishableKey: v.GetString("SUPABASE_PUBLISHABLE_KEY"),
		SupabaseJWTSecret:      v.GetString("SUPABASE_JWT_SECRET"),

		StripeSecretKey:     v.GetString("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: v.GetString("STRIPE_WEBHOOK_SECRET"),
		StripeAPIURL:        v.GetString("STRIPE_API_URL"),
		PaymentCurrency:     v.GetString("PAYMENT_CURRENCY"),
		PaymentTimeout:      v.GetDuration("PAYMENT_TIMEOUT"),

		DatabaseURL: v.GetString("DATABASE_URL"),

		RedisURL:      v.GetString("REDIS_URL"),
		IntentLockTTL: v.GetDuration("INTENT_LOCK_TTL"),

		Port:        v.GetString("PORT"),
		Environment: v.GetString("ENVIRONMENT"),
		BaseURL:     v.GetString("BASE_URL"),

		LogLevel:     v.GetString("LOG_LEVEL"),
		LogFormat:    v.GetString("LOG_FORMAT"),
		OTELEndpoint: v.GetString("OTEL_ENDPOINT"),
	}
}

func (c *Config) Validate() error {
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	if c.StripeSecretKey == "" {
		return fmt.Errorf("STRIPE_SECRET_KEY is required")
	}
	if c.SupabaseURL != "" && c.SupabasePublishableKey == "" {
		return fmt.Errorf("SUPABASE_PUBLISHABLE_KEY is required when SUPABASE_URL is set")
	}
	if c.PaymentTimeout <= 0 {
		return fmt.Errorf("PAYMENT_TIMEOUT must be positive")
	}
	if len(c.PaymentCurrency) != 3 {
		return fmt.Errorf("PAYMENT_CURRENCY must be a three-letter ISO code")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
