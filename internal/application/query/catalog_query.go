package query

import (
	"context"
	"errors"
	"log"
	"strings"

	categorydom "storefront/internal/domain/category"
	productdom "storefront/internal/domain/product"
)

// DefaultFeaturedLimit caps the homepage featured strip.
const DefaultFeaturedLimit = 6

// CatalogQuery is the storefront read model over the catalogue repositories.
type CatalogQuery struct {
	Categories categorydom.Repository
	Products   productdom.Repository
}

func NewCatalogQuery(categories categorydom.Repository, products productdom.Repository) *CatalogQuery {
	return &CatalogQuery{Categories: categories, Products: products}
}

// ListCategories returns active categories in sort order.
func (q *CatalogQuery) ListCategories(ctx context.Context) ([]categorydom.Category, error) {
	if q == nil || q.Categories == nil {
		return nil, errors.New("catalog query: category repo is nil")
	}
	return q.Categories.ListActive(ctx)
}

// ListFeatured returns active featured products, best rated first.
// limit <= 0 falls back to DefaultFeaturedLimit.
func (q *CatalogQuery) ListFeatured(ctx context.Context, limit int) ([]productdom.Product, error) {
	if q == nil || q.Products == nil {
		return nil, errors.New("catalog query: product repo is nil")
	}
	if limit <= 0 {
		limit = DefaultFeaturedLimit
	}
	return q.Products.ListFeatured(ctx, limit)
}

// ListByCategorySlug resolves the category first, then lists its products.
func (q *CatalogQuery) ListByCategorySlug(ctx context.Context, slug string) ([]productdom.Product, error) {
	if q == nil || q.Categories == nil || q.Products == nil {
		return nil, errors.New("catalog query: repos are nil")
	}

	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, categorydom.ErrNotFound
	}

	cat, err := q.Categories.GetBySlug(ctx, slug)
	if err != nil {
		log.Printf("[catalog] category lookup failed slug=%q err=%v", slug, err)
		return nil, err
	}
	return q.Products.ListByCategory(ctx, cat.ID)
}

// Search returns active products matching the normalized query.
// An empty query yields an empty result, not an error.
func (q *CatalogQuery) Search(ctx context.Context, raw string) ([]productdom.Product, error) {
	if q == nil || q.Products == nil {
		return nil, errors.New("catalog query: product repo is nil")
	}
	needle := strings.ToLower(strings.TrimSpace(raw))
	if needle == "" {
		return []productdom.Product{}, nil
	}
	return q.Products.Search(ctx, needle)
}

// GetProductBySlug returns one active product.
func (q *CatalogQuery) GetProductBySlug(ctx context.Context, slug string) (productdom.Product, error) {
	if q == nil || q.Products == nil {
		return productdom.Product{}, errors.New("catalog query: product repo is nil")
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return productdom.Product{}, productdom.ErrNotFound
	}
	return q.Products.GetBySlug(ctx, slug)
}
