package domain

import (
	"fmt"
	"strings"
)

// ValidationError is returned when the inbound request is missing required
// fields. No upstream call has been made when this is returned.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "missing required fields"
	}
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// AuthorizationError is returned when no credential is stored for the shop.
type AuthorizationError struct {
	Shop string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("no access token stored for shop %s", e.Shop)
}

// OrderCreationError is returned when the draft-order step fails. Nothing is
// committed upstream beyond possibly an orphaned draft.
type OrderCreationError struct {
	Err error
}

func (e *OrderCreationError) Error() string {
	return fmt.Sprintf("draft order creation failed: %v", e.Err)
}

func (e *OrderCreationError) Unwrap() error { return e.Err }

// UpstreamError wraps any non-2xx response from the commerce platform,
// carrying status and body for diagnostics.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
}
