package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dinesplit/internal/domain"
)

// shareFixture sets up the canonical table: one pizza (135) split three ways
// plus a personal cola (25) for Dana, everything confirmed.
func shareFixture(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t)
	ctx := context.Background()

	f.addCart(t, "Aziz", f.pizzaID, true)
	_, err := f.svc.Split.CreateOrReuse(ctx, f.sessionID, domain.CreateSplitRequest{
		MenuItemID:    f.pizzaID,
		OriginalPrice: 135,
		SplitCount:    3,
		Participants:  []string{"Aziz", "Dana", "Omar"},
	})
	require.NoError(t, err)
	f.addCart(t, "Dana", f.colaID, false)
	f.confirm(t)
	return f
}

func TestMyShareSplitThreeWays(t *testing.T) {
	f := shareFixture(t)
	ctx := context.Background()

	share, err := f.svc.Bill.MyShare(ctx, f.sessionID, "Omar")
	require.NoError(t, err)
	assert.InDelta(t, 45.00, share.Subtotal, 0.001)
	assert.InDelta(t, 6.30, share.VAT, 0.001)
	assert.InDelta(t, 51.30, share.Total, 0.001)

	// Dana pays her pizza share plus the personal cola
	share, err = f.svc.Bill.MyShare(ctx, f.sessionID, "Dana")
	require.NoError(t, err)
	assert.InDelta(t, 70.00, share.Subtotal, 0.001)
	assert.InDelta(t, 79.80, share.Total, 0.001)
}

func TestMyShareRequiresDinerName(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Bill.MyShare(context.Background(), f.sessionID, "")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestMyShareIgnoresCartLines(t *testing.T) {
	f := newFixture(t)
	f.addCart(t, "Aziz", f.pizzaID, false)

	share, err := f.svc.Bill.MyShare(context.Background(), f.sessionID, "Aziz")
	require.NoError(t, err)
	assert.InDelta(t, 0, share.Subtotal, 0.001)
}

func TestTableTotalCountsSharedOrderOnce(t *testing.T) {
	f := shareFixture(t)

	total, err := f.svc.Bill.TableTotal(context.Background(), f.sessionID)
	require.NoError(t, err)
	// 45 for the split pizza, counted once, plus the cola
	assert.InDelta(t, 70.00, total.Subtotal, 0.001)
	assert.InDelta(t, 9.80, total.VAT, 0.001)
	assert.InDelta(t, 79.80, total.Total, 0.001)
	assert.False(t, total.PaymentReady)
}

func TestTableTotalReconcilesWithShares(t *testing.T) {
	f := shareFixture(t)
	ctx := context.Background()

	total, err := f.svc.Bill.TableTotal(ctx, f.sessionID)
	require.NoError(t, err)

	// personal amounts plus one split share reproduce the table subtotal:
	// the pizza's other two shares are attribution, not extra revenue
	var personal, oneShare float64
	for _, name := range []string{"Aziz", "Dana", "Omar"} {
		share, err := f.svc.Bill.MyShare(ctx, f.sessionID, name)
		require.NoError(t, err)
		personal += share.Subtotal
	}
	oneShare = 45.00 * 2 // the two shares counted above beyond the table's one
	assert.InDelta(t, total.Subtotal, personal-oneShare, domain.MoneyEpsilon)
}

func TestTableTotalEmptySession(t *testing.T) {
	f := newFixture(t)

	total, err := f.svc.Bill.TableTotal(context.Background(), f.sessionID)
	require.NoError(t, err)
	assert.InDelta(t, 0, total.Total, 0.001)
	assert.False(t, total.PaymentReady)

	_, err = f.svc.Bill.TableTotal(context.Background(), 999)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestTableTotalPaymentReady(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.addCart(t, "Aziz", f.pizzaID, false)
	b := f.addCart(t, "Dana", f.colaID, false)
	f.confirm(t)

	f.serve(t, a.ID)
	total, err := f.svc.Bill.TableTotal(ctx, f.sessionID)
	require.NoError(t, err)
	assert.False(t, total.PaymentReady)

	f.serve(t, b.ID)
	total, err = f.svc.Bill.TableTotal(ctx, f.sessionID)
	require.NoError(t, err)
	assert.True(t, total.PaymentReady)
	assert.InDelta(t, 182.40, total.Total, 0.001)
}

func TestPerDinerAttributesSharesToEveryParticipant(t *testing.T) {
	f := shareFixture(t)

	bills, err := f.svc.Bill.PerDiner(context.Background(), f.sessionID)
	require.NoError(t, err)
	require.Len(t, bills, 3)

	// names come back sorted
	assert.Equal(t, "Aziz", bills[0].DinerName)
	assert.Equal(t, "Dana", bills[1].DinerName)
	assert.Equal(t, "Omar", bills[2].DinerName)

	assert.InDelta(t, 45.00, bills[0].Subtotal, 0.001)
	assert.InDelta(t, 70.00, bills[1].Subtotal, 0.001)
	assert.InDelta(t, 45.00, bills[2].Subtotal, 0.001)
	assert.InDelta(t, 51.30, bills[2].Total, 0.001)

	require.Len(t, bills[1].Items, 2)
	var sharedItems int
	for _, it := range bills[1].Items {
		if it.Shared {
			sharedItems++
			assert.ElementsMatch(t, []string{"Aziz", "Dana", "Omar"}, it.Participants)
			assert.InDelta(t, 45.00, it.Amount, 0.001)
		}
	}
	assert.Equal(t, 1, sharedItems)
}

func TestBillReadableAfterSessionEnds(t *testing.T) {
	f := shareFixture(t)
	ctx := context.Background()
	f.store.EndSession(f.sessionID)

	// reads stay available for settling up; only writes are gated
	share, err := f.svc.Bill.MyShare(ctx, f.sessionID, "Omar")
	require.NoError(t, err)
	assert.InDelta(t, 45.00, share.Subtotal, 0.001)

	_, err = f.svc.Bill.TableTotal(ctx, f.sessionID)
	require.NoError(t, err)
}

func TestMyShareQuantityMultipliesSplitPrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	line := f.addCart(t, "Aziz", f.pizzaID, true)
	_, err := f.svc.Split.CreateOrReuse(ctx, f.sessionID, domain.CreateSplitRequest{
		MenuItemID:    f.pizzaID,
		OriginalPrice: 135,
		SplitCount:    3,
		Participants:  []string{"Aziz", "Dana", "Omar"},
	})
	require.NoError(t, err)
	_, _, err = f.svc.Cart.UpdateQuantity(ctx, line.ID, 2)
	require.NoError(t, err)
	f.confirm(t)

	share, err := f.svc.Bill.MyShare(ctx, f.sessionID, "Omar")
	require.NoError(t, err)
	assert.InDelta(t, 90.00, share.Subtotal, 0.001)
}
