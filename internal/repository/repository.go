package repository

import (
	"context"

	"github.com/arca-mz/storefront/internal/domain"
)

// CartRepository defines the interface for cart persistence. Persistence is
// best-effort backing for the in-memory cart: a failed Save degrades
// durability, never correctness.
type CartRepository interface {
	// Get retrieves a cart by session ID. Carts persisted under a stale
	// schema version are reported as not found.
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)

	// Save persists a cart, overwriting any existing cart for the session.
	Save(ctx context.Context, cart *domain.Cart) error

	// Delete removes a cart by session ID.
	Delete(ctx context.Context, sessionID string) error
}

// TokenRepository defines the interface for session token persistence.
type TokenRepository interface {
	// Get retrieves the bearer token for a session.
	Get(ctx context.Context, sessionID string) (string, error)

	// Save stores the bearer token for a session.
	Save(ctx context.Context, sessionID, token string) error

	// Delete removes the token for a session.
	Delete(ctx context.Context, sessionID string) error
}
