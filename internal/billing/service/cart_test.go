package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dinesplit/internal/domain"
)

func TestAddItemCoalescesDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.addCart(t, "Aziz", f.pizzaID, false)
	second := f.addCart(t, "Aziz", f.pizzaID, false)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, second.Quantity)

	lines, err := f.svc.Cart.List(ctx, f.sessionID, "")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestAddItemSeparateLinesPerDiner(t *testing.T) {
	f := newFixture(t)

	f.addCart(t, "Aziz", f.pizzaID, false)
	f.addCart(t, "Dana", f.pizzaID, false)

	lines, err := f.svc.Cart.List(context.Background(), f.sessionID, "")
	require.NoError(t, err)
	assert.Len(t, lines, 2)

	mine, err := f.svc.Cart.List(context.Background(), f.sessionID, "Dana")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Dana", mine[0].Owner())
}

func TestAddItemRequiresDinerName(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Cart.AddItem(context.Background(), f.sessionID, domain.AddItemRequest{
		MenuItemID: f.pizzaID,
	})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestAddItemUnknownRefs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Cart.AddItem(ctx, 999, domain.AddItemRequest{DinerName: "Aziz", MenuItemID: f.pizzaID})
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	_, err = f.svc.Cart.AddItem(ctx, f.sessionID, domain.AddItemRequest{DinerName: "Aziz", MenuItemID: 999})
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestAddItemEndedSession(t *testing.T) {
	f := newFixture(t)
	f.store.EndSession(f.sessionID)

	_, err := f.svc.Cart.AddItem(context.Background(), f.sessionID, domain.AddItemRequest{
		DinerName:  "Aziz",
		MenuItemID: f.pizzaID,
	})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestUpdateQuantity(t *testing.T) {
	f := newFixture(t)
	line := f.addCart(t, "Aziz", f.pizzaID, false)

	updated, removed, err := f.svc.Cart.UpdateQuantity(context.Background(), line.ID, 4)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 4, updated.Quantity)
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	line := f.addCart(t, "Aziz", f.pizzaID, false)

	_, removed, err := f.svc.Cart.UpdateQuantity(ctx, line.ID, 0)
	require.NoError(t, err)
	assert.True(t, removed)

	lines, err := f.svc.Cart.List(ctx, f.sessionID, "")
	require.NoError(t, err)
	assert.Empty(t, lines)

	// the removed line contributes nothing to anyone's bill
	f.addCart(t, "Dana", f.colaID, false)
	f.confirm(t)
	share, err := f.svc.Bill.MyShare(ctx, f.sessionID, "Aziz")
	require.NoError(t, err)
	assert.InDelta(t, 0, share.Subtotal, 0.001)
}

func TestUpdateQuantityOnConfirmedLine(t *testing.T) {
	f := newFixture(t)
	line := f.addCart(t, "Aziz", f.pizzaID, false)
	f.confirm(t)

	_, _, err := f.svc.Cart.UpdateQuantity(context.Background(), line.ID, 3)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestRemoveItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	line := f.addCart(t, "Aziz", f.pizzaID, false)

	require.NoError(t, f.svc.Cart.RemoveItem(ctx, line.ID))

	err := f.svc.Cart.RemoveItem(ctx, line.ID)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestClearLeavesConfirmedOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addCart(t, "Aziz", f.pizzaID, false)
	confirmed := f.confirm(t)
	require.Len(t, confirmed, 1)

	f.addCart(t, "Dana", f.colaID, false)
	require.NoError(t, f.svc.Cart.Clear(ctx, f.sessionID))

	cart, err := f.svc.Cart.List(ctx, f.sessionID, "")
	require.NoError(t, err)
	assert.Empty(t, cart)

	orders, err := f.svc.Lifecycle.ListConfirmed(ctx, f.sessionID)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}
