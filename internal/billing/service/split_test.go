package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dinesplit/internal/billing/repository"
	"dinesplit/internal/billing/service"
	"dinesplit/internal/common/logger"
	"dinesplit/internal/domain"
)

func TestCreateSplitLinksSharedCartLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	shared := f.addCart(t, "Aziz", f.pizzaID, true)
	personal := f.addCart(t, "Dana", f.colaID, false)

	split, err := f.svc.Split.CreateOrReuse(ctx, f.sessionID, domain.CreateSplitRequest{
		MenuItemID:    f.pizzaID,
		OriginalPrice: 135,
		SplitCount:    3,
		Participants:  []string{"Aziz", "Dana", "Omar"},
	})
	require.NoError(t, err)
	assert.InDelta(t, 45.0, split.SplitPrice, 0.001)
	assert.Equal(t, domain.SplitActive, split.Status)

	got, err := f.store.GetLine(ctx, shared.ID)
	require.NoError(t, err)
	require.NotNil(t, got.SplitID)
	assert.Equal(t, split.ID, *got.SplitID)

	// non-shared lines are never linked, even for the same menu item
	got, err = f.store.GetLine(ctx, personal.ID)
	require.NoError(t, err)
	assert.Nil(t, got.SplitID)
}

func TestCreateSplitValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  domain.CreateSplitRequest
	}{
		{"non-positive price", domain.CreateSplitRequest{MenuItemID: f.pizzaID, OriginalPrice: 0, SplitCount: 2, Participants: []string{"Aziz", "Dana"}}},
		{"zero count", domain.CreateSplitRequest{MenuItemID: f.pizzaID, OriginalPrice: 135, SplitCount: 0, Participants: []string{"Aziz"}}},
		{"empty participants", domain.CreateSplitRequest{MenuItemID: f.pizzaID, OriginalPrice: 135, SplitCount: 2}},
		{"count mismatch", domain.CreateSplitRequest{MenuItemID: f.pizzaID, OriginalPrice: 135, SplitCount: 3, Participants: []string{"Aziz", "Dana"}}},
		{"blank name", domain.CreateSplitRequest{MenuItemID: f.pizzaID, OriginalPrice: 135, SplitCount: 2, Participants: []string{"Aziz", ""}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Split.CreateOrReuse(ctx, f.sessionID, tc.req)
			assert.Equal(t, domain.KindValidation, domain.KindOf(err))
		})
	}
}

func TestCreateSplitIdempotentReuse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addCart(t, "Aziz", f.pizzaID, true)

	req := domain.CreateSplitRequest{
		MenuItemID:    f.pizzaID,
		OriginalPrice: 135,
		SplitCount:    3,
		Participants:  []string{"Aziz", "Dana", "Omar"},
	}
	first, err := f.svc.Split.CreateOrReuse(ctx, f.sessionID, req)
	require.NoError(t, err)

	// participant order must not matter for the cache hit
	req.Participants = []string{"Omar", "Aziz", "Dana"}
	second, err := f.svc.Split.CreateOrReuse(ctx, f.sessionID, req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestSplitEditDoesNotTouchServedOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	line := f.addCart(t, "Aziz", f.pizzaID, true)
	splitA, err := f.svc.Split.CreateOrReuse(ctx, f.sessionID, domain.CreateSplitRequest{
		MenuItemID:    f.pizzaID,
		OriginalPrice: 135,
		SplitCount:    3,
		Participants:  []string{"Aziz", "Dana", "Omar"},
	})
	require.NoError(t, err)

	f.confirm(t)
	f.serve(t, line.ID)

	// a later edit with different participants creates a fresh agreement
	fresh := f.addCart(t, "Dana", f.pizzaID, true)
	splitB, err := f.svc.Split.CreateOrReuse(ctx, f.sessionID, domain.CreateSplitRequest{
		MenuItemID:    f.pizzaID,
		OriginalPrice: 135,
		SplitCount:    2,
		Participants:  []string{"Aziz", "Dana"},
	})
	require.NoError(t, err)
	require.NotEqual(t, splitA.ID, splitB.ID)
	assert.InDelta(t, 67.5, splitB.SplitPrice, 0.001)

	// the served order keeps its original agreement and price
	served, err := f.store.GetLine(ctx, line.ID)
	require.NoError(t, err)
	require.NotNil(t, served.SplitID)
	assert.Equal(t, splitA.ID, *served.SplitID)

	// only the pre-kitchen line picked up the replacement
	pending, err := f.store.GetLine(ctx, fresh.ID)
	require.NoError(t, err)
	require.NotNil(t, pending.SplitID)
	assert.Equal(t, splitB.ID, *pending.SplitID)

	// Omar still owes his share of the served pizza under agreement A
	share, err := f.svc.Bill.MyShare(ctx, f.sessionID, "Omar")
	require.NoError(t, err)
	assert.InDelta(t, 45.0, share.Subtotal, 0.001)
}

func TestSplitCountOneEqualsPersonalPrice(t *testing.T) {
	f := newFixture(t)
	f.addCart(t, "Aziz", f.pizzaID, true)

	split, err := f.svc.Split.CreateOrReuse(context.Background(), f.sessionID, domain.CreateSplitRequest{
		MenuItemID:    f.pizzaID,
		OriginalPrice: 135,
		SplitCount:    1,
		Participants:  []string{"Aziz"},
	})
	require.NoError(t, err)
	assert.InDelta(t, split.OriginalPrice, split.SplitPrice, 0.001)
}

// racingStore loses the first agreement insert to a concurrent writer: it
// installs the competing agreement and reports the unique-index conflict the
// database would raise.
type racingStore struct {
	repository.Store
	winner domain.SplitAgreement
	raced  bool
}

func (s *racingStore) ReplaceActiveSplit(ctx context.Context, split domain.SplitAgreement) (domain.SplitAgreement, error) {
	if !s.raced {
		s.raced = true
		w, err := s.Store.ReplaceActiveSplit(ctx, split)
		if err != nil {
			return domain.SplitAgreement{}, err
		}
		s.winner = w
		return domain.SplitAgreement{}, domain.Conflictf(
			"active split already exists for menu item %d", split.MenuItemID)
	}
	return s.Store.ReplaceActiveSplit(ctx, split)
}

func TestCreateSplitRetriesLostRace(t *testing.T) {
	inner := repository.NewInMemory()
	sessionID := inner.SeedSession(7, "Aziz", "Dana", "Omar")
	pizzaID := inner.SeedMenuItem("Margherita Pizza", 135.00)
	store := &racingStore{Store: inner}
	svc := service.New(store, nil, nil, logger.New("test"), 0.14)
	ctx := context.Background()

	line, err := svc.Cart.AddItem(ctx, sessionID, domain.AddItemRequest{
		DinerName: "Aziz", MenuItemID: pizzaID, IsShared: true,
	})
	require.NoError(t, err)

	split, err := svc.Split.CreateOrReuse(ctx, sessionID, domain.CreateSplitRequest{
		MenuItemID:    pizzaID,
		OriginalPrice: 135,
		SplitCount:    3,
		Participants:  []string{"Aziz", "Dana", "Omar"},
	})
	require.NoError(t, err, "losing the create race must not surface as an error")
	require.True(t, store.raced)

	// the loser lands on the winner's agreement instead of a duplicate
	assert.Equal(t, store.winner.ID, split.ID)
	assert.InDelta(t, 45.0, split.SplitPrice, 0.001)

	got, err := inner.GetLine(ctx, line.ID)
	require.NoError(t, err)
	require.NotNil(t, got.SplitID)
	assert.Equal(t, store.winner.ID, *got.SplitID)
}

func TestSplitOnEndedSession(t *testing.T) {
	f := newFixture(t)
	f.store.EndSession(f.sessionID)

	_, err := f.svc.Split.CreateOrReuse(context.Background(), f.sessionID, domain.CreateSplitRequest{
		MenuItemID:    f.pizzaID,
		OriginalPrice: 135,
		SplitCount:    2,
		Participants:  []string{"Aziz", "Dana"},
	})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}
