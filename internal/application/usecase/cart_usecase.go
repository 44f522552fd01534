package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	cartdom "storefront/internal/domain/cart"
)

var ErrCartInvalidArgument = errors.New("cart_usecase: invalid argument")

// Clock provides current time (for testability).
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// CartUsecase coordinates cart operations against the persistence port.
// Missing-line semantics are the domain's: unknown product ids are silently
// ignored, never an error.
type CartUsecase struct {
	repo  cartdom.Repository
	clock Clock
}

func NewCartUsecase(repo cartdom.Repository) *CartUsecase {
	return &CartUsecase{repo: repo, clock: systemClock{}}
}

// NewCartUsecaseWithClock is useful for tests.
func NewCartUsecaseWithClock(repo cartdom.Repository, clock Clock) *CartUsecase {
	if clock == nil {
		clock = systemClock{}
	}
	return &CartUsecase{repo: repo, clock: clock}
}

// Get returns the cart for userID. An absent cart is returned as a fresh
// empty one (created at session start, not persisted until first mutation).
func (uc *CartUsecase) Get(ctx context.Context, userID string) (*cartdom.Cart, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, ErrCartInvalidArgument
	}

	c, err := uc.repo.GetByUserID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return cartdom.NewCart(uid, nil, uc.clock.Now())
	}
	return c, nil
}

// AddItem adds one unit of the product line to the user's cart.
func (uc *CartUsecase) AddItem(ctx context.Context, userID string, l cartdom.Line) (*cartdom.Cart, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" || l.ProductID <= 0 || l.UnitPrice < 0 {
		return nil, ErrCartInvalidArgument
	}

	c, err := uc.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	c.AddItem(l, uc.clock.Now())
	if err := uc.repo.Upsert(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// SetQuantity sets the quantity for productID (absolute). qty <= 0 removes
// the line; an unknown productID leaves the cart untouched.
func (uc *CartUsecase) SetQuantity(ctx context.Context, userID string, productID int64, qty int) (*cartdom.Cart, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, ErrCartInvalidArgument
	}

	c, err := uc.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	c.SetQuantity(productID, qty, uc.clock.Now())
	if err := uc.repo.Upsert(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// RemoveItem removes the line for productID (no-op when absent).
func (uc *CartUsecase) RemoveItem(ctx context.Context, userID string, productID int64) (*cartdom.Cart, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, ErrCartInvalidArgument
	}

	c, err := uc.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	c.RemoveItem(productID, uc.clock.Now())
	if err := uc.repo.Upsert(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Clear empties the user's cart.
func (uc *CartUsecase) Clear(ctx context.Context, userID string) (*cartdom.Cart, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, ErrCartInvalidArgument
	}

	c, err := uc.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	c.Clear(uc.clock.Now())
	if err := uc.repo.Upsert(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
