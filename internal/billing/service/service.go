package service

import (
	"context"
	"fmt"
	"time"

	"dinesplit/internal/billing/repository"
	"dinesplit/internal/common/logger"
	"dinesplit/internal/connections/redis"
	"dinesplit/internal/domain"
)

// Service bundles the four billing components behind their interfaces.
type Service struct {
	Cart      CartLedger
	Split     SplitManager
	Lifecycle OrderLifecycle
	Bill      BillAggregator
}

func New(store repository.Store, pub EventPublisher, cache *redis.Cache, lg *logger.Logger, vatRate float64) *Service {
	if pub == nil {
		pub = NopPublisher{}
	}
	bill := NewBillService(store, cache, lg, vatRate)
	return &Service{
		Cart:      NewCartService(store, cache, lg),
		Split:     NewSplitService(store, cache, lg),
		Lifecycle: NewLifecycleService(store, pub, cache, bill, lg),
		Bill:      bill,
	}
}

// activeSession loads a session and rejects writes once it has ended.
func activeSession(ctx context.Context, store repository.Store, id int64) (domain.Session, error) {
	s, err := store.GetSession(ctx, id)
	if err != nil {
		return domain.Session{}, err
	}
	if s.Status != domain.SessionActive {
		return domain.Session{}, domain.Validationf("session %d has ended", id)
	}
	return s, nil
}

// Bill views are cached per session with a short TTL; every write to the
// session's cart, splits or orders drops both keys.
const billCacheTTL = 10 * time.Second

func billTotalKey(sessionID int64) string    { return fmt.Sprintf("bill:total:%d", sessionID) }
func billPerDinerKey(sessionID int64) string { return fmt.Sprintf("bill:perdiner:%d", sessionID) }

func invalidateBill(ctx context.Context, cache *redis.Cache, sessionID int64) {
	cache.Del(ctx, billTotalKey(sessionID), billPerDinerKey(sessionID))
}
