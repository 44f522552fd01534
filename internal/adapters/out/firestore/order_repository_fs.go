package firestore

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	orderdom "storefront/internal/domain/order"
)

// OrderRepositoryFS implements order.Repository using Firestore.
// - collection: orders
// - docId: order id (uuid)
// - items are embedded snapshots, not a subcollection: an order is read and
//   written as one unit.
type OrderRepositoryFS struct {
	Client *firestore.Client
}

func NewOrderRepositoryFS(client *firestore.Client) *OrderRepositoryFS {
	return &OrderRepositoryFS{Client: client}
}

func (r *OrderRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("orders")
}

// Create fails when the docId already exists (orders are immutable).
func (r *OrderRepositoryFS) Create(ctx context.Context, o *orderdom.Order) error {
	if r == nil || r.Client == nil {
		return errors.New("order_repository_fs: firestore client is nil")
	}
	if o == nil {
		return errors.New("order_repository_fs: order is nil")
	}
	if err := o.Validate(); err != nil {
		return err
	}

	_, err := r.col().Doc(o.ID).Create(ctx, o)
	return err
}

func (r *OrderRepositoryFS) GetByID(ctx context.Context, id string) (*orderdom.Order, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("order_repository_fs: firestore client is nil")
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, orderdom.ErrNotFound
	}

	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, orderdom.ErrNotFound
		}
		return nil, err
	}

	var o orderdom.Order
	if err := snap.DataTo(&o); err != nil {
		return nil, err
	}
	o.ID = snap.Ref.ID
	return &o, nil
}

func (r *OrderRepositoryFS) ListByUserID(ctx context.Context, userID string) ([]orderdom.Order, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("order_repository_fs: firestore client is nil")
	}

	uid := strings.TrimSpace(userID)
	if uid == "" {
		return []orderdom.Order{}, nil
	}

	iter := r.col().
		Where("userId", "==", uid).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	out := []orderdom.Order{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var o orderdom.Order
		if err := snap.DataTo(&o); err != nil {
			return nil, err
		}
		o.ID = snap.Ref.ID
		out = append(out, o)
	}
	return out, nil
}
