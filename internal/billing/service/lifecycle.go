package service

import (
	"context"
	"time"

	"dinesplit/internal/billing/repository"
	"dinesplit/internal/common/logger"
	"dinesplit/internal/connections/redis"
	"dinesplit/internal/domain"
)

// OrderLifecycle promotes carts into the kitchen pipeline and drives each
// order through it.
type OrderLifecycle interface {
	Confirm(ctx context.Context, sessionID int64, changedBy string) ([]domain.OrderLine, error)
	Advance(ctx context.Context, orderID int64, target domain.LineStatus, changedBy string) (domain.OrderLine, error)
	ListConfirmed(ctx context.Context, sessionID int64) ([]domain.OrderLine, error)
}

type LifecycleService struct {
	store repository.Store
	pub   EventPublisher
	cache *redis.Cache
	bill  *BillService
	lg    *logger.Logger
}

func NewLifecycleService(store repository.Store, pub EventPublisher, cache *redis.Cache, bill *BillService, lg *logger.Logger) *LifecycleService {
	return &LifecycleService{store: store, pub: pub, cache: cache, bill: bill, lg: lg}
}

// Confirm is the single admission point into the kitchen pipeline: the whole
// cart is promoted in one transaction or not at all.
func (s *LifecycleService) Confirm(ctx context.Context, sessionID int64, changedBy string) ([]domain.OrderLine, error) {
	session, err := activeSession(ctx, s.store, sessionID)
	if err != nil {
		return nil, err
	}
	if changedBy == "" {
		changedBy = "billing-service"
	}

	lines, err := s.store.ConfirmCart(ctx, sessionID, changedBy)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, domain.Validationf("cart is empty for session %d", sessionID)
	}
	invalidateBill(ctx, s.cache, sessionID)

	msg := domain.OrdersPlacedMessage{
		SessionID:   sessionID,
		TableNumber: session.TableNumber,
		Timestamp:   time.Now().UTC(),
	}
	for _, l := range lines {
		msg.OrderIDs = append(msg.OrderIDs, l.ID)
		msg.Items = append(msg.Items, domain.PlacedItem{
			OrderID:      l.ID,
			MenuItemName: l.MenuItemName,
			Quantity:     l.Quantity,
			IsTakeaway:   l.IsTakeaway,
			Notes:        l.Notes,
			DinerName:    l.DinerName,
		})
		msg.TotalAmount += l.UnitPrice * float64(l.Quantity)
	}
	if err := s.pub.OrdersPlaced(ctx, msg); err != nil {
		s.lg.Error("orders_placed_publish_failed", err, map[string]any{"session_id": sessionID})
	}

	s.lg.Info("cart_confirmed", map[string]any{
		"session_id": sessionID, "orders": len(lines), "total": msg.TotalAmount,
	})
	return lines, nil
}

// Advance applies one strictly-forward kitchen transition. Each order moves
// independently; there is no cross-order synchronization.
func (s *LifecycleService) Advance(ctx context.Context, orderID int64, target domain.LineStatus, changedBy string) (domain.OrderLine, error) {
	if !target.Valid() || !target.Confirmed() {
		return domain.OrderLine{}, domain.Validationf("invalid target status %q", target)
	}
	if changedBy == "" {
		changedBy = "staff"
	}

	line, from, err := s.store.AdvanceOrder(ctx, orderID, target, changedBy)
	if err != nil {
		return domain.OrderLine{}, err
	}
	invalidateBill(ctx, s.cache, line.SessionID)

	if err := s.pub.StatusChanged(ctx, domain.StatusChangedMessage{
		OrderID:      line.ID,
		SessionID:    line.SessionID,
		MenuItemName: line.MenuItemName,
		OldStatus:    string(from),
		NewStatus:    string(target),
		ChangedBy:    changedBy,
		Timestamp:    time.Now().UTC(),
	}); err != nil {
		s.lg.Error("status_changed_publish_failed", err, map[string]any{"order_id": orderID})
	}

	if target == domain.StatusServed {
		s.announcePaymentReady(ctx, line.SessionID)
	}

	s.lg.Debug("order_advanced", map[string]any{
		"order_id": orderID, "from": string(from), "to": string(target), "changed_by": changedBy,
	})
	return line, nil
}

// announcePaymentReady fires when the last unserved order of the session is
// served. Best-effort: any failure here only costs the notification.
func (s *LifecycleService) announcePaymentReady(ctx context.Context, sessionID int64) {
	unserved, err := s.store.CountUnserved(ctx, sessionID)
	if err != nil || unserved > 0 {
		return
	}
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return
	}
	total, err := s.bill.TableTotal(ctx, sessionID)
	if err != nil {
		return
	}
	if err := s.pub.PaymentReady(ctx, domain.PaymentReadyMessage{
		SessionID:   sessionID,
		TableNumber: session.TableNumber,
		Total:       total.Total,
		Timestamp:   time.Now().UTC(),
	}); err != nil {
		s.lg.Error("payment_ready_publish_failed", err, map[string]any{"session_id": sessionID})
	}
}

func (s *LifecycleService) ListConfirmed(ctx context.Context, sessionID int64) ([]domain.OrderLine, error) {
	if _, err := s.store.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.store.ListLines(ctx, sessionID, confirmedStatuses, "")
}
