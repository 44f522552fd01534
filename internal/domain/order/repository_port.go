package order

import "context"

// Repository is the primary persistence port for orders (Firestore).
type Repository interface {
	// Create persists a new order. Fails if the id already exists.
	Create(ctx context.Context, o *Order) error

	// GetByID returns ErrNotFound when absent.
	GetByID(ctx context.Context, id string) (*Order, error)

	// ListByUserID returns the user's orders, newest first.
	ListByUserID(ctx context.Context, userID string) ([]Order, error)
}

// Mirror is a secondary, best-effort copy of orders for reporting
// (PostgreSQL). Mirror failures must never fail the checkout.
type Mirror interface {
	MirrorOrder(ctx context.Context, o *Order) error
}
