package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SHOPIFY_API_KEY", "key")
	t.Setenv("SHOPIFY_API_SECRET", "secret")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "shopify_app", cfg.MongoDatabase)
	assert.Equal(t, "2024-04", cfg.ShopifyAPIVersion)
	assert.Equal(t, OrderModeREST, cfg.OrderAPIMode)
	assert.Equal(t, "India", cfg.ShopCountry)
	assert.Equal(t, "trazoonow.in", cfg.FallbackEmailDomain)
}

func TestLoad_MissingAPICredentials(t *testing.T) {
	t.Setenv("SHOPIFY_API_KEY", "")
	t.Setenv("SHOPIFY_API_SECRET", "")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHOPIFY_API_KEY")
}

func TestLoad_MissingMongoURI(t *testing.T) {
	t.Setenv("SHOPIFY_API_KEY", "key")
	t.Setenv("SHOPIFY_API_SECRET", "secret")
	t.Setenv("MONGODB_URI", "")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGODB_URI")
}

func TestLoad_OrderAPIMode(t *testing.T) {
	setRequired(t)

	t.Setenv("ORDER_API_MODE", "graphql")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, OrderModeGraphQL, cfg.OrderAPIMode)

	t.Setenv("ORDER_API_MODE", "soap")
	_, err = Load()
	require.Error(t, err)
}
