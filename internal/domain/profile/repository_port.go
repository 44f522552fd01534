package profile

import "context"

// Repository is a persistence port for profiles.
type Repository interface {
	// GetByID returns ErrNotFound when absent.
	GetByID(ctx context.Context, id string) (Profile, error)

	// Save creates or overwrites the profile (docId = id).
	Save(ctx context.Context, p Profile) error
}
