package service_test

import (
	"context"
	"sync"
	"testing"

	"dinesplit/internal/billing/repository"
	"dinesplit/internal/billing/service"
	"dinesplit/internal/common/logger"
	"dinesplit/internal/domain"
)

// capturePublisher records published events for assertions.
type capturePublisher struct {
	mu      sync.Mutex
	placed  []domain.OrdersPlacedMessage
	changed []domain.StatusChangedMessage
	ready   []domain.PaymentReadyMessage
}

func (p *capturePublisher) OrdersPlaced(_ context.Context, msg domain.OrdersPlacedMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.placed = append(p.placed, msg)
	return nil
}

func (p *capturePublisher) StatusChanged(_ context.Context, msg domain.StatusChangedMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changed = append(p.changed, msg)
	return nil
}

func (p *capturePublisher) PaymentReady(_ context.Context, msg domain.PaymentReadyMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ready = append(p.ready, msg)
	return nil
}

type fixture struct {
	svc   *service.Service
	store *repository.InMemory
	pub   *capturePublisher

	sessionID int64
	pizzaID   int64 // 135.00
	colaID    int64 // 25.00
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewInMemory()
	pub := &capturePublisher{}
	svc := service.New(store, pub, nil, logger.New("test"), 0.14)
	return &fixture{
		svc:       svc,
		store:     store,
		pub:       pub,
		sessionID: store.SeedSession(7, "Aziz", "Dana", "Omar"),
		pizzaID:   store.SeedMenuItem("Margherita Pizza", 135.00),
		colaID:    store.SeedMenuItem("Cola", 25.00),
	}
}

// addCart inserts one cart line through the ledger.
func (f *fixture) addCart(t *testing.T, diner string, menuItemID int64, shared bool) domain.OrderLine {
	t.Helper()
	line, err := f.svc.Cart.AddItem(context.Background(), f.sessionID, domain.AddItemRequest{
		DinerName:  diner,
		MenuItemID: menuItemID,
		IsShared:   shared,
	})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	return line
}

// confirm promotes the cart and returns the confirmed lines.
func (f *fixture) confirm(t *testing.T) []domain.OrderLine {
	t.Helper()
	lines, err := f.svc.Lifecycle.Confirm(context.Background(), f.sessionID, "test")
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	return lines
}

// serve walks one order through waiting -> preparing -> ready -> served.
func (f *fixture) serve(t *testing.T, orderID int64) {
	t.Helper()
	ctx := context.Background()
	for _, st := range []domain.LineStatus{domain.StatusPreparing, domain.StatusReady, domain.StatusServed} {
		if _, err := f.svc.Lifecycle.Advance(ctx, orderID, st, "test"); err != nil {
			t.Fatalf("advance to %s: %v", st, err)
		}
	}
}
