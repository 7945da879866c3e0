package ports

import (
	"context"
	"net/url"
)

// OAuthProvider performs the commerce platform's app-install handshake.
type OAuthProvider interface {
	AuthorizeURL(shop, scopes, redirectURI, state string) string
	VerifyCallback(u *url.URL) bool
	ExchangeToken(ctx context.Context, shop, code string) (string, error)
}
