package firestore

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	profiledom "storefront/internal/domain/profile"
)

// ProfileRepositoryFS implements profile.Repository using Firestore.
// - collection: profiles
// - docId: auth uid
type ProfileRepositoryFS struct {
	Client *firestore.Client
}

func NewProfileRepositoryFS(client *firestore.Client) *ProfileRepositoryFS {
	return &ProfileRepositoryFS{Client: client}
}

func (r *ProfileRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("profiles")
}

func (r *ProfileRepositoryFS) GetByID(ctx context.Context, id string) (profiledom.Profile, error) {
	if r == nil || r.Client == nil {
		return profiledom.Profile{}, errors.New("profile_repository_fs: firestore client is nil")
	}

	uid := strings.TrimSpace(id)
	if uid == "" {
		return profiledom.Profile{}, profiledom.ErrNotFound
	}

	snap, err := r.col().Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return profiledom.Profile{}, profiledom.ErrNotFound
		}
		return profiledom.Profile{}, err
	}

	var p profiledom.Profile
	if err := snap.DataTo(&p); err != nil {
		return profiledom.Profile{}, err
	}
	p.ID = uid
	return p, nil
}

func (r *ProfileRepositoryFS) Save(ctx context.Context, p profiledom.Profile) error {
	if r == nil || r.Client == nil {
		return errors.New("profile_repository_fs: firestore client is nil")
	}

	uid := strings.TrimSpace(p.ID)
	if uid == "" {
		return errors.New("profile_repository_fs: profile id is empty")
	}

	_, err := r.col().Doc(uid).Set(ctx, p)
	return err
}
