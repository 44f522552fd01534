package firestore

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	productdom "storefront/internal/domain/product"
)

// ProductRepositoryFS implements product.Repository using Firestore.
//
// Collection design:
// - collection: products
// - docId: decimal string of the numeric product id
// - extra field nameLower supports prefix search (Firestore has no full-text
//   operator); it is written on every Save and never read back into the
//   entity.
type ProductRepositoryFS struct {
	Client *firestore.Client
}

func NewProductRepositoryFS(client *firestore.Client) *ProductRepositoryFS {
	return &ProductRepositoryFS{Client: client}
}

func (r *ProductRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("products")
}

func (r *ProductRepositoryFS) GetByID(ctx context.Context, id int64) (productdom.Product, error) {
	if r == nil || r.Client == nil {
		return productdom.Product{}, errors.New("product_repository_fs: firestore client is nil")
	}
	if id <= 0 {
		return productdom.Product{}, productdom.ErrNotFound
	}

	snap, err := r.col().Doc(strconv.FormatInt(id, 10)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return productdom.Product{}, productdom.ErrNotFound
		}
		return productdom.Product{}, err
	}

	var p productdom.Product
	if err := snap.DataTo(&p); err != nil {
		return productdom.Product{}, err
	}
	return p, nil
}

func (r *ProductRepositoryFS) GetBySlug(ctx context.Context, slug string) (productdom.Product, error) {
	if r == nil || r.Client == nil {
		return productdom.Product{}, errors.New("product_repository_fs: firestore client is nil")
	}

	slug = strings.TrimSpace(slug)
	if slug == "" {
		return productdom.Product{}, productdom.ErrNotFound
	}

	q := r.col().
		Where("slug", "==", slug).
		Where("isActive", "==", true).
		Limit(1)

	out, err := r.queryProducts(ctx, q)
	if err != nil {
		return productdom.Product{}, err
	}
	if len(out) == 0 {
		return productdom.Product{}, productdom.ErrNotFound
	}
	return out[0], nil
}

func (r *ProductRepositoryFS) ListFeatured(ctx context.Context, limit int) ([]productdom.Product, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("product_repository_fs: firestore client is nil")
	}
	if limit <= 0 {
		limit = 6
	}

	q := r.col().
		Where("isFeatured", "==", true).
		Where("isActive", "==", true).
		OrderBy("rating", firestore.Desc).
		Limit(limit)

	return r.queryProducts(ctx, q)
}

func (r *ProductRepositoryFS) ListByCategory(ctx context.Context, categoryID string) ([]productdom.Product, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("product_repository_fs: firestore client is nil")
	}

	cid := strings.TrimSpace(categoryID)
	if cid == "" {
		return []productdom.Product{}, nil
	}

	q := r.col().
		Where("categoryId", "==", cid).
		Where("isActive", "==", true).
		OrderBy("name", firestore.Asc)

	return r.queryProducts(ctx, q)
}

// Search matches on the nameLower prefix range [query, query+).
func (r *ProductRepositoryFS) Search(ctx context.Context, query string) ([]productdom.Product, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("product_repository_fs: firestore client is nil")
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return []productdom.Product{}, nil
	}

	q := r.col().
		Where("isActive", "==", true).
		Where("nameLower", ">=", needle).
		Where("nameLower", "<", needle+"").
		OrderBy("nameLower", firestore.Asc)

	return r.queryProducts(ctx, q)
}

func (r *ProductRepositoryFS) Save(ctx context.Context, p productdom.Product) error {
	if r == nil || r.Client == nil {
		return errors.New("product_repository_fs: firestore client is nil")
	}
	if err := p.Validate(); err != nil {
		return err
	}

	doc := map[string]any{
		"id":           p.ID,
		"categoryId":   p.CategoryID,
		"name":         p.Name,
		"nameLower":    strings.ToLower(p.Name),
		"slug":         p.Slug,
		"description":  p.Description,
		"price":        p.Price,
		"comparePrice": p.ComparePrice,
		"stock":        p.Stock,
		"sku":          p.SKU,
		"imageUrl":     p.ImageURL,
		"galleryUrls":  p.GalleryURLs,
		"tags":         p.Tags,
		"isFeatured":   p.IsFeatured,
		"isActive":     p.IsActive,
		"rating":       p.Rating,
		"reviewCount":  p.ReviewCount,
		"createdAt":    p.CreatedAt,
		"updatedAt":    p.UpdatedAt,
	}

	_, err := r.col().Doc(strconv.FormatInt(p.ID, 10)).Set(ctx, doc)
	return err
}

func (r *ProductRepositoryFS) queryProducts(ctx context.Context, q firestore.Query) ([]productdom.Product, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	out := []productdom.Product{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var p productdom.Product
		if err := snap.DataTo(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
