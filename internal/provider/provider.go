// file: internal/provider/provider.go
// version: 1.0.0
// guid: a1b2c3d4-e5f6-7a8b-9c0d-e1f2a3b4c5d6

package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/jdfalk/audiobook-curator/internal/models"
)

// Provider is a pluggable external catalog. The resolver treats providers
// as an ordered list and is otherwise provider-agnostic.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string) ([]models.Record, error)
	GetByID(ctx context.Context, id string) (*models.Record, error)
}

// ErrUnavailable marks transport-level provider failures: timeouts,
// connection errors, 5xx responses. The resolver treats these as "zero
// candidates from that provider" and moves on; it never retries the same
// provider within one resolution.
var ErrUnavailable = errors.New("provider unavailable")

// ErrNotFound is returned by GetByID when the catalog has no such record.
var ErrNotFound = errors.New("record not found")

// AuthError marks credential or quota failures. Unlike ErrUnavailable it is
// surfaced to the caller so the UI layer can prompt for reconfiguration,
// but it still never blocks the remaining providers.
type AuthError struct {
	Provider   string
	StatusCode int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: authentication/quota error (status %d)", e.Provider, e.StatusCode)
}

// statusError classifies a non-200 response. 401/403/429 are auth/quota
// problems; everything else is a transport-class failure.
func statusError(providerName string, code int) error {
	switch code {
	case 401, 403, 429:
		return &AuthError{Provider: providerName, StatusCode: code}
	default:
		return fmt.Errorf("%s returned status %d: %w", providerName, code, ErrUnavailable)
	}
}
