package product

import "context"

// Repository is a persistence port for the product catalogue.
//
// Storage recommendation (Firestore):
// - collection: products
// - docId: decimal string of Product.ID
// - "search" is a normalized name prefix match (nameLower), since the backing
//   store has no full-text operator.
type Repository interface {
	// GetByID returns ErrNotFound when absent.
	GetByID(ctx context.Context, id int64) (Product, error)

	// GetBySlug returns ErrNotFound when absent or inactive.
	GetBySlug(ctx context.Context, slug string) (Product, error)

	// ListFeatured returns active featured products, best rated first.
	ListFeatured(ctx context.Context, limit int) ([]Product, error)

	// ListByCategory returns active products for a category, by name.
	ListByCategory(ctx context.Context, categoryID string) ([]Product, error)

	// Search returns active products whose normalized name starts with query.
	Search(ctx context.Context, query string) ([]Product, error)

	// Save creates or overwrites a product (admin write path).
	Save(ctx context.Context, p Product) error
}
