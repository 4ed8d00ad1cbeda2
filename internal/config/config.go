package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// TokenDelivery selects what the relay does with tokens after a code exchange.
type TokenDelivery string

const (
	// DeliveryDirect returns the bearer token JSON to the caller.
	DeliveryDirect TokenDelivery = "direct"
	// DeliveryStore persists tokens server-side keyed by the caller's user id.
	DeliveryStore TokenDelivery = "store"
)

// Config holds all process configuration. Anything required by an enabled
// feature is validated at load time so a misconfigured deployment dies at
// startup, not on the first request.
type Config struct {
	Port      string
	DBPath    string
	LogLevel  string
	LogFormat string

	GoogleClientID     string
	GoogleClientSecret string
	// RedirectURI is the caller's redirect_uri; /oauth/authorize rejects any
	// other value.
	RedirectURI string
	// CallerCallbackURL, when set, is where /oauth/callback re-dispatches the
	// authorization code. Without it the endpoint rejects all requests.
	CallerCallbackURL string

	TokenDelivery       TokenDelivery
	FreeQuota           int64
	DescriptionInCreate bool

	StripeSecretKey     string
	StripeWebhookSecret string
	StripePriceID       string
}

// BillingEnabled reports whether Stripe checkout and webhook handling are on.
func (c *Config) BillingEnabled() bool {
	return c.StripeSecretKey != ""
}

// Load reads configuration from the environment, after a best-effort .env
// load, and validates it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                envDefault("FORMRELAY_PORT", "8080"),
		DBPath:              envDefault("FORMRELAY_DB_PATH", "formrelay.db"),
		LogLevel:            os.Getenv("FORMRELAY_LOG_LEVEL"),
		LogFormat:           os.Getenv("FORMRELAY_LOG_FORMAT"),
		GoogleClientID:      os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:  os.Getenv("GOOGLE_CLIENT_SECRET"),
		RedirectURI:         os.Getenv("FORMRELAY_REDIRECT_URI"),
		CallerCallbackURL:   os.Getenv("FORMRELAY_CALLER_CALLBACK_URL"),
		TokenDelivery:       TokenDelivery(envDefault("FORMRELAY_TOKEN_DELIVERY", string(DeliveryDirect))),
		FreeQuota:           5,
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		StripePriceID:       os.Getenv("STRIPE_PRICE_ID"),
	}

	if raw := os.Getenv("FORMRELAY_FREE_QUOTA"); raw != "" {
		quota, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || quota < 0 {
			return nil, fmt.Errorf("FORMRELAY_FREE_QUOTA: invalid value %q", raw)
		}
		cfg.FreeQuota = quota
	}
	if raw := os.Getenv("FORMRELAY_DESCRIPTION_IN_CREATE"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("FORMRELAY_DESCRIPTION_IN_CREATE: invalid value %q", raw)
		}
		cfg.DescriptionInCreate = v
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.GoogleClientID == "" {
		return fmt.Errorf("GOOGLE_CLIENT_ID is required")
	}
	if c.GoogleClientSecret == "" {
		return fmt.Errorf("GOOGLE_CLIENT_SECRET is required")
	}
	if c.RedirectURI == "" {
		return fmt.Errorf("FORMRELAY_REDIRECT_URI is required")
	}
	switch c.TokenDelivery {
	case DeliveryDirect, DeliveryStore:
	default:
		return fmt.Errorf("FORMRELAY_TOKEN_DELIVERY: must be %q or %q, got %q",
			DeliveryDirect, DeliveryStore, c.TokenDelivery)
	}
	if c.BillingEnabled() {
		if c.StripeWebhookSecret == "" {
			return fmt.Errorf("STRIPE_WEBHOOK_SECRET is required when STRIPE_SECRET_KEY is set")
		}
		if c.StripePriceID == "" {
			return fmt.Errorf("STRIPE_PRICE_ID is required when STRIPE_SECRET_KEY is set")
		}
	}
	return nil
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
