package repository

import (
	"context"
	"time"

	"trazoo-cod-gateway/internal/ports"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const credentialKeyPrefix = "shop_token:"

// CachedCredentialStore is a read-through Redis cache in front of another
// credential store. Cache failures degrade to the inner store; they never
// fail a lookup.
type CachedCredentialStore struct {
	inner  ports.CredentialStore
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedCredentialStore wraps inner with a Redis cache.
func NewCachedCredentialStore(inner ports.CredentialStore, client *redis.Client, ttl time.Duration, logger zerolog.Logger) ports.CredentialStore {
	return &CachedCredentialStore{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Get returns the cached token when present, falling back to the inner
// store and populating the cache on a hit. Absence is not cached.
func (s *CachedCredentialStore) Get(ctx context.Context, shop string) (string, error) {
	key := credentialKeyPrefix + shop

	token, err := s.client.Get(ctx, key).Result()
	if err == nil && token != "" {
		return token, nil
	}
	if err != nil && err != redis.Nil {
		s.logger.Warn().Err(err).Str("shop", shop).Msg("Credential cache read failed")
	}

	token, err = s.inner.Get(ctx, shop)
	if err != nil {
		return "", err
	}

	if token != "" {
		if err := s.client.Set(ctx, key, token, s.ttl).Err(); err != nil {
			s.logger.Warn().Err(err).Str("shop", shop).Msg("Credential cache write failed")
		}
	}
	return token, nil
}

// Put writes through to the inner store and drops the cached entry so the
// next read observes the new token.
func (s *CachedCredentialStore) Put(ctx context.Context, shop string, accessToken string) error {
	if err := s.inner.Put(ctx, shop, accessToken); err != nil {
		return err
	}
	if err := s.client.Del(ctx, credentialKeyPrefix+shop).Err(); err != nil {
		s.logger.Warn().Err(err).Str("shop", shop).Msg("Credential cache invalidation failed")
	}
	return nil
}
