package ports

import "context"

// CredentialStore maps a shop domain to its current access token.
//
// Get returns ("", nil) when no credential is stored: a shop that never
// installed, or had its token revoked, is a normal condition the caller maps
// to an authorization failure. Put is an upsert keyed by shop domain; the
// last write wins.
type CredentialStore interface {
	Get(ctx context.Context, shop string) (string, error)
	Put(ctx context.Context, shop string, accessToken string) error
}
