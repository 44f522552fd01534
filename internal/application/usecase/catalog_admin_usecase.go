package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"strings"

	categorydom "storefront/internal/domain/category"
	productdom "storefront/internal/domain/product"
)

var ErrUnknownCategory = errors.New("catalog_admin: unknown category")

// CatalogAdminUsecase is the admin-side write path for the catalogue.
type CatalogAdminUsecase struct {
	products   productdom.Repository
	categories categorydom.Repository
	images     ImageStore
	clock      Clock
}

func NewCatalogAdminUsecase(products productdom.Repository, categories categorydom.Repository) *CatalogAdminUsecase {
	return &CatalogAdminUsecase{products: products, categories: categories, clock: systemClock{}}
}

func (uc *CatalogAdminUsecase) WithImages(images ImageStore) *CatalogAdminUsecase {
	uc.images = images
	return uc
}

func (uc *CatalogAdminUsecase) WithClock(clock Clock) *CatalogAdminUsecase {
	uc.clock = clock
	return uc
}

// CreateProductInput carries the admin form. Image is optional; when set it
// is uploaded and the product stores the resulting public URL.
type CreateProductInput struct {
	CategorySlug string
	Name         string
	Slug         string
	Description  string
	Price        float64
	ComparePrice *float64
	Stock        int
	SKU          string
	IsFeatured   bool

	Image            io.Reader
	ImageFileName    string
	ImageContentType string
}

func (uc *CatalogAdminUsecase) CreateProduct(ctx context.Context, in CreateProductInput) (productdom.Product, error) {
	cat, err := uc.categories.GetBySlug(ctx, strings.TrimSpace(in.CategorySlug))
	if err != nil {
		if errors.Is(err, categorydom.ErrNotFound) {
			return productdom.Product{}, ErrUnknownCategory
		}
		return productdom.Product{}, err
	}

	now := uc.clock.Now()
	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		slug = Slugify(in.Name)
	}

	p := productdom.Product{
		// Millisecond ids are unique enough for a single admin console and
		// keep the cart's numeric product reference simple.
		ID:           now.UnixMilli(),
		CategoryID:   cat.ID,
		Name:         strings.TrimSpace(in.Name),
		Slug:         slug,
		Description:  strings.TrimSpace(in.Description),
		Price:        in.Price,
		ComparePrice: in.ComparePrice,
		Stock:        in.Stock,
		SKU:          strings.TrimSpace(in.SKU),
		IsFeatured:   in.IsFeatured,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := p.Validate(); err != nil {
		return productdom.Product{}, err
	}

	if in.Image != nil {
		if uc.images == nil {
			return productdom.Product{}, errors.New("catalog_admin: image store not configured")
		}
		name := path.Base(strings.TrimSpace(in.ImageFileName))
		if name == "" || name == "." || name == "/" {
			name = "image"
		}
		objectName := fmt.Sprintf("products/%s/%s", slug, name)
		url, err := uc.images.Upload(ctx, objectName, in.ImageContentType, in.Image)
		if err != nil {
			return productdom.Product{}, fmt.Errorf("catalog_admin: image upload: %w", err)
		}
		p.ImageURL = url
	}

	if err := uc.products.Save(ctx, p); err != nil {
		return productdom.Product{}, err
	}
	log.Printf("[catalog_admin] product created id=%d slug=%s category=%s", p.ID, p.Slug, p.CategoryID)
	return p, nil
}

// Slugify lowers a name into a URL slug: "Wireless Mouse" -> "wireless-mouse".
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
