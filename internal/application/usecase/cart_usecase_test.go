package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdom "storefront/internal/domain/cart"
)

var cartT0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestCartGetReturnsEmptyCartWhenAbsent(t *testing.T) {
	repo := newMemCartRepo()
	uc := NewCartUsecaseWithClock(repo, fixedClock{t: cartT0})

	c, err := uc.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", c.ID)
	assert.Empty(t, c.Lines)

	// not persisted until first mutation
	stored, err := repo.GetByUserID(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestCartAddItemPersists(t *testing.T) {
	repo := newMemCartRepo()
	uc := NewCartUsecaseWithClock(repo, fixedClock{t: cartT0})

	_, err := uc.AddItem(context.Background(), "user-1", cartdom.Line{ProductID: 1, Name: "Grinder", UnitPrice: 249})
	require.NoError(t, err)
	c, err := uc.AddItem(context.Background(), "user-1", cartdom.Line{ProductID: 1, Name: "Grinder", UnitPrice: 249})
	require.NoError(t, err)

	require.Len(t, c.Lines, 1)
	assert.Equal(t, 2, c.Lines[0].Qty)

	stored, err := repo.GetByUserID(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 2, stored.Lines[0].Qty)
}

func TestCartSetQuantityRemovesAtZero(t *testing.T) {
	repo := newMemCartRepo()
	uc := NewCartUsecaseWithClock(repo, fixedClock{t: cartT0})

	_, err := uc.AddItem(context.Background(), "user-1", cartdom.Line{ProductID: 1, UnitPrice: 10})
	require.NoError(t, err)

	c, err := uc.SetQuantity(context.Background(), "user-1", 1, 0)
	require.NoError(t, err)
	assert.Empty(t, c.Lines)
}

func TestCartOpsOnUnknownIDAreNoops(t *testing.T) {
	repo := newMemCartRepo()
	uc := NewCartUsecaseWithClock(repo, fixedClock{t: cartT0})

	_, err := uc.AddItem(context.Background(), "user-1", cartdom.Line{ProductID: 1, UnitPrice: 10})
	require.NoError(t, err)

	c1, err := uc.RemoveItem(context.Background(), "user-1", 404)
	require.NoError(t, err)
	c2, err := uc.SetQuantity(context.Background(), "user-1", 404, 9)
	require.NoError(t, err)

	assert.Equal(t, c1.Lines, c2.Lines)
	require.Len(t, c2.Lines, 1)
	assert.Equal(t, int64(1), c2.Lines[0].ProductID)
}

func TestCartClear(t *testing.T) {
	repo := newMemCartRepo()
	uc := NewCartUsecaseWithClock(repo, fixedClock{t: cartT0})

	_, err := uc.AddItem(context.Background(), "user-1", cartdom.Line{ProductID: 1, UnitPrice: 10})
	require.NoError(t, err)
	_, err = uc.AddItem(context.Background(), "user-1", cartdom.Line{ProductID: 2, UnitPrice: 20})
	require.NoError(t, err)

	c, err := uc.Clear(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, c.Lines)
	assert.Zero(t, c.Totals().ItemCount)
}

func TestCartInvalidArguments(t *testing.T) {
	uc := NewCartUsecase(newMemCartRepo())

	_, err := uc.Get(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrCartInvalidArgument)

	_, err = uc.AddItem(context.Background(), "user-1", cartdom.Line{ProductID: 0})
	assert.ErrorIs(t, err, ErrCartInvalidArgument)

	_, err = uc.AddItem(context.Background(), "user-1", cartdom.Line{ProductID: 1, UnitPrice: -1})
	assert.ErrorIs(t, err, ErrCartInvalidArgument)
}
