package category

import "context"

// Repository is a persistence port for categories.
type Repository interface {
	// ListActive returns active categories ordered by sortOrder.
	ListActive(ctx context.Context) ([]Category, error)

	// GetBySlug returns ErrNotFound when absent or inactive.
	GetBySlug(ctx context.Context, slug string) (Category, error)
}
