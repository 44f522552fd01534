package firestore

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	categorydom "storefront/internal/domain/category"
)

// CategoryRepositoryFS implements category.Repository using Firestore.
// - collection: categories
// - docId: category id
type CategoryRepositoryFS struct {
	Client *firestore.Client
}

func NewCategoryRepositoryFS(client *firestore.Client) *CategoryRepositoryFS {
	return &CategoryRepositoryFS{Client: client}
}

func (r *CategoryRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("categories")
}

func (r *CategoryRepositoryFS) ListActive(ctx context.Context) ([]categorydom.Category, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("category_repository_fs: firestore client is nil")
	}

	iter := r.col().
		Where("isActive", "==", true).
		OrderBy("sortOrder", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	out := []categorydom.Category{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var c categorydom.Category
		if err := snap.DataTo(&c); err != nil {
			return nil, err
		}
		if c.ID == "" {
			c.ID = snap.Ref.ID
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *CategoryRepositoryFS) GetBySlug(ctx context.Context, slug string) (categorydom.Category, error) {
	if r == nil || r.Client == nil {
		return categorydom.Category{}, errors.New("category_repository_fs: firestore client is nil")
	}

	slug = strings.TrimSpace(slug)
	if slug == "" {
		return categorydom.Category{}, categorydom.ErrNotFound
	}

	iter := r.col().
		Where("slug", "==", slug).
		Where("isActive", "==", true).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return categorydom.Category{}, categorydom.ErrNotFound
	}
	if err != nil {
		return categorydom.Category{}, err
	}

	var c categorydom.Category
	if err := snap.DataTo(&c); err != nil {
		return categorydom.Category{}, err
	}
	if c.ID == "" {
		c.ID = snap.Ref.ID
	}
	return c, nil
}
