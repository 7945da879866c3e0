package config

import (
	"fmt"
	"os"
)

// Order API modes.
const (
	OrderModeREST    = "rest"
	OrderModeGraphQL = "graphql"
)

// Config holds the runtime configuration, read from the environment.
type Config struct {
	Port   string
	AppURL string

	MongoURI      string
	MongoDatabase string
	RedisAddr     string

	ShopifyAPIKey     string
	ShopifyAPISecret  string
	ShopifyScopes     string
	ShopifyAPIVersion string
	OrderAPIMode      string

	ShopCountry         string
	FallbackEmailDomain string

	LocationIQAPIKey      string
	AddressAPIAccessToken string
}

// Load reads configuration from environment variables, applying defaults
// where the variable is unset. SHOPIFY_API_KEY, SHOPIFY_API_SECRET and
// MONGODB_URI are required.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                  getEnv("PORT", "8080"),
		AppURL:                getEnv("APP_URL", "http://localhost:8080"),
		MongoURI:              os.Getenv("MONGODB_URI"),
		MongoDatabase:         getEnv("MONGODB_DATABASE", "shopify_app"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		ShopifyAPIKey:         os.Getenv("SHOPIFY_API_KEY"),
		ShopifyAPISecret:      os.Getenv("SHOPIFY_API_SECRET"),
		ShopifyScopes:         getEnv("SHOPIFY_SCOPES", "read_orders,write_orders,read_customers,write_customers,write_draft_orders"),
		ShopifyAPIVersion:     getEnv("SHOPIFY_API_VERSION", "2024-04"),
		OrderAPIMode:          getEnv("ORDER_API_MODE", OrderModeREST),
		ShopCountry:           getEnv("SHOP_COUNTRY", "India"),
		FallbackEmailDomain:   getEnv("FALLBACK_EMAIL_DOMAIN", "trazoonow.in"),
		LocationIQAPIKey:      os.Getenv("LOCATIONIQ_API_KEY"),
		AddressAPIAccessToken: os.Getenv("ADDRESS_API_ACCESS_TOKEN"),
	}

	if cfg.ShopifyAPIKey == "" || cfg.ShopifyAPISecret == "" {
		return nil, fmt.Errorf("SHOPIFY_API_KEY and SHOPIFY_API_SECRET are required")
	}
	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGODB_URI is required")
	}
	if cfg.OrderAPIMode != OrderModeREST && cfg.OrderAPIMode != OrderModeGraphQL {
		return nil, fmt.Errorf("ORDER_API_MODE must be %q or %q, got %q", OrderModeREST, OrderModeGraphQL, cfg.OrderAPIMode)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
