package product

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound = errors.New("product: not found")
	ErrInvalid  = errors.New("product: invalid")
)

// Product is one catalogue entry. Numeric ID is what carts reference; Slug is
// the public URL key.
type Product struct {
	ID           int64     `json:"id" firestore:"id"`
	CategoryID   string    `json:"categoryId" firestore:"categoryId"`
	Name         string    `json:"name" firestore:"name"`
	Slug         string    `json:"slug" firestore:"slug"`
	Description  string    `json:"description" firestore:"description"`
	Price        float64   `json:"price" firestore:"price"`
	ComparePrice *float64  `json:"comparePrice,omitempty" firestore:"comparePrice"`
	Stock        int       `json:"stock" firestore:"stock"`
	SKU          string    `json:"sku" firestore:"sku"`
	ImageURL     string    `json:"imageUrl" firestore:"imageUrl"`
	GalleryURLs  []string  `json:"galleryUrls,omitempty" firestore:"galleryUrls"`
	Tags         []string  `json:"tags,omitempty" firestore:"tags"`
	IsFeatured   bool      `json:"isFeatured" firestore:"isFeatured"`
	IsActive     bool      `json:"isActive" firestore:"isActive"`
	Rating       float64   `json:"rating" firestore:"rating"`
	ReviewCount  int       `json:"reviewCount" firestore:"reviewCount"`
	CreatedAt    time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// Validate checks the writable invariants before persisting.
func (p *Product) Validate() error {
	if p == nil {
		return ErrInvalid
	}
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Slug) == "" {
		return ErrInvalid
	}
	if p.ID <= 0 || p.Price < 0 {
		return ErrInvalid
	}
	return nil
}
