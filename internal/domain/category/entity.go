package category

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("category: not found")

// Category groups catalogue products; Slug is the public URL key.
type Category struct {
	ID          string    `json:"id" firestore:"id"`
	Name        string    `json:"name" firestore:"name"`
	Slug        string    `json:"slug" firestore:"slug"`
	Description string    `json:"description" firestore:"description"`
	ImageURL    string    `json:"imageUrl" firestore:"imageUrl"`
	SortOrder   int       `json:"sortOrder" firestore:"sortOrder"`
	IsActive    bool      `json:"isActive" firestore:"isActive"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" firestore:"updatedAt"`
}
