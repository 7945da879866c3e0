package application

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"

	"trazoo-cod-gateway/internal/ports"

	"github.com/rs/zerolog"
)

// InstallService handles the OAuth install flow: redirecting the merchant to
// the authorization page and storing the access token the callback yields.
type InstallService struct {
	oauth       ports.OAuthProvider
	credentials ports.CredentialStore
	appURL      string
	scopes      string
	logger      zerolog.Logger
}

// NewInstallService creates the install service.
func NewInstallService(
	oauth ports.OAuthProvider,
	credentials ports.CredentialStore,
	appURL string,
	scopes string,
	logger zerolog.Logger,
) *InstallService {
	return &InstallService{
		oauth:       oauth,
		credentials: credentials,
		appURL:      appURL,
		scopes:      scopes,
		logger:      logger,
	}
}

// InstallURL builds the authorization URL for a shop with a fresh random
// state.
func (s *InstallService) InstallURL(shop string) (string, error) {
	stateBytes := make([]byte, 16)
	if _, err := rand.Read(stateBytes); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	state := hex.EncodeToString(stateBytes)

	redirectURI := s.appURL + "/auth/callback"
	return s.oauth.AuthorizeURL(shop, s.scopes, redirectURI, state), nil
}

// CompleteInstall verifies the signed callback, exchanges the grant code for
// an access token and upserts the shop's credential.
func (s *InstallService) CompleteInstall(ctx context.Context, callbackURL *url.URL, shop, code string) error {
	if !s.oauth.VerifyCallback(callbackURL) {
		return fmt.Errorf("callback signature verification failed for shop %s", shop)
	}

	token, err := s.oauth.ExchangeToken(ctx, shop, code)
	if err != nil {
		return err
	}

	if err := s.credentials.Put(ctx, shop, token); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}

	s.logger.Info().Str("shop", shop).Msg("App installed and credential stored")
	return nil
}
