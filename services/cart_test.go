package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"food-delivery/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartAddSameItemMerges(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()
	carts := e.roles.Carts

	_, err := carts.Add(ctx, 1, e.itemA.ID, 2)
	require.NoError(t, err)
	c, err := carts.Add(ctx, 1, e.itemA.ID, 3)
	require.NoError(t, err)

	require.Len(t, c.Entries, 1)
	assert.Equal(t, 5, c.Entries[0].Quantity)

	stored, err := carts.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, c.Entries, stored.Entries)
}

func TestCalculateTotalGold(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()

	_, err := e.roles.Carts.Add(ctx, 1, e.itemA.ID, 2)
	require.NoError(t, err)
	c, err := e.roles.Carts.Add(ctx, 1, e.itemB.ID, 1)
	require.NoError(t, err)

	total, err := e.roles.Carts.CalculateTotal(ctx, c, models.TierGold)
	require.NoError(t, err)
	assert.Equal(t, 225.0, total)

	total, err = e.roles.Carts.CalculateTotal(ctx, c, models.TierNone)
	require.NoError(t, err)
	assert.Equal(t, 250.0, total)

	_, err = e.roles.Carts.CalculateTotal(ctx, c, "Diamond")
	assert.True(t, errors.Is(err, models.ErrUnknownTier))
}

func TestCartQuoteMissingItemContributesZero(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()

	_, _ = e.roles.Carts.Add(ctx, 1, e.itemA.ID, 1)
	c, err := e.roles.Carts.Add(ctx, 1, e.itemB.ID, 2)
	require.NoError(t, err)
	require.NoError(t, e.mem.DeleteMenuItem(ctx, e.restaurant.ID, e.itemB.ID))

	q, err := e.roles.Carts.Quote(ctx, c, 1)
	require.NoError(t, err)
	require.Len(t, q.Lines, 2)
	assert.True(t, q.Lines[1].Missing)
	assert.Equal(t, 100.0, q.Subtotal)
	assert.Equal(t, 100.0, q.Total)
}

func TestCartRemoveAbsentIsNoop(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()

	before, err := e.roles.Carts.Add(ctx, 1, e.itemA.ID, 1)
	require.NoError(t, err)
	after, err := e.roles.Carts.Remove(ctx, 1, 999)
	require.NoError(t, err)
	assert.Equal(t, before.Entries, after.Entries)
}

func TestCartUpdateQuantityZeroEqualsRemove(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()

	c, _ := e.roles.Carts.Add(ctx, 1, e.itemA.ID, 2)
	entry := c.Entries[0].ID
	_, _ = e.roles.Carts.Add(ctx, 1, e.itemB.ID, 1)

	updated, err := e.roles.Carts.UpdateQuantity(ctx, 1, entry, 0)
	require.NoError(t, err)
	require.Len(t, updated.Entries, 1)
	assert.Equal(t, e.itemB.ID, updated.Entries[0].MenuItemID)

	_, err = e.roles.Carts.UpdateQuantity(ctx, 1, updated.Entries[0].ID, -1)
	assert.True(t, models.IsValidation(err))
}

func TestCartClear(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()

	_, _ = e.roles.Carts.Add(ctx, 1, e.itemA.ID, 2)
	require.NoError(t, e.roles.Carts.Clear(ctx, 1))

	c, err := e.roles.Carts.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestCartConcurrentAddsAllCount(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.roles.Carts.Add(ctx, 1, e.itemA.ID, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	c, err := e.roles.Carts.Get(ctx, 1)
	require.NoError(t, err)
	require.Len(t, c.Entries, 1)
	assert.Equal(t, 50, c.Entries[0].Quantity)
}

func TestCartAddCapsMergedQuantity(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()

	_, err := e.roles.Carts.Add(ctx, 1, e.itemA.ID, models.MaxQuantity)
	require.NoError(t, err)
	_, err = e.roles.Carts.Add(ctx, 1, e.itemA.ID, 1)
	assert.True(t, models.IsValidation(err))

	c, err := e.roles.Carts.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.MaxQuantity, c.Entries[0].Quantity)
}

func TestCartCheckoutFailureKeepsEntries(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()

	_, _ = e.roles.Carts.Add(ctx, 1, e.itemA.ID, 2)
	err := e.roles.Carts.Checkout(ctx, 1, func([]models.CartEntry) error {
		return models.ErrItemUnavailable
	})
	assert.ErrorIs(t, err, models.ErrItemUnavailable)

	c, err := e.roles.Carts.Get(ctx, 1)
	require.NoError(t, err)
	require.Len(t, c.Entries, 1)
	assert.Equal(t, 2, c.Entries[0].Quantity)
}
