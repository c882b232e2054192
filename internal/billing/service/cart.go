package service

import (
	"context"

	"dinesplit/internal/billing/repository"
	"dinesplit/internal/common/logger"
	"dinesplit/internal/connections/redis"
	"dinesplit/internal/domain"
)

// CartLedger is the per-diner collection of pending order lines.
type CartLedger interface {
	AddItem(ctx context.Context, sessionID int64, req domain.AddItemRequest) (domain.OrderLine, error)
	// UpdateQuantity treats a non-positive quantity as removal and reports it
	// via the removed flag.
	UpdateQuantity(ctx context.Context, lineID int64, quantity int) (domain.OrderLine, bool, error)
	RemoveItem(ctx context.Context, lineID int64) error
	Clear(ctx context.Context, sessionID int64) error
	List(ctx context.Context, sessionID int64, dinerName string) ([]domain.OrderLine, error)
}

type CartService struct {
	store repository.Store
	cache *redis.Cache
	lg    *logger.Logger
}

func NewCartService(store repository.Store, cache *redis.Cache, lg *logger.Logger) *CartService {
	return &CartService{store: store, cache: cache, lg: lg}
}

// AddItem coalesces a repeated add of the same item by the same diner into a
// quantity bump instead of a duplicate line. Ownership is mandatory: every
// line carries a diner name from the moment it is inserted.
func (s *CartService) AddItem(ctx context.Context, sessionID int64, req domain.AddItemRequest) (domain.OrderLine, error) {
	if req.DinerName == "" {
		return domain.OrderLine{}, domain.Validationf("diner name is required")
	}
	if _, err := activeSession(ctx, s.store, sessionID); err != nil {
		return domain.OrderLine{}, err
	}
	item, err := s.store.GetMenuItem(ctx, req.MenuItemID)
	if err != nil {
		return domain.OrderLine{}, err
	}
	if item.Price <= 0 {
		return domain.OrderLine{}, domain.Validationf("menu item %q has non-positive price", item.Name)
	}
	if !item.Available {
		return domain.OrderLine{}, domain.Validationf("menu item %q is unavailable", item.Name)
	}

	if existing, ok, err := s.store.FindCartLine(ctx, sessionID, req.DinerName, req.MenuItemID); err != nil {
		return domain.OrderLine{}, err
	} else if ok {
		line, err := s.store.SetLineQuantity(ctx, existing.ID, existing.Quantity+1)
		if err != nil {
			return domain.OrderLine{}, err
		}
		invalidateBill(ctx, s.cache, sessionID)
		s.lg.Debug("cart_item_coalesced", map[string]any{
			"session_id": sessionID, "line_id": line.ID, "quantity": line.Quantity,
		})
		return line, nil
	}

	diner := req.DinerName
	line, err := s.store.InsertCartLine(ctx, domain.OrderLine{
		SessionID:  sessionID,
		MenuItemID: req.MenuItemID,
		DinerName:  &diner,
		Quantity:   1,
		Notes:      req.Notes,
		IsShared:   req.IsShared,
		IsTakeaway: req.IsTakeaway,
	})
	if err != nil {
		return domain.OrderLine{}, err
	}
	invalidateBill(ctx, s.cache, sessionID)
	s.lg.Debug("cart_item_added", map[string]any{
		"session_id": sessionID, "line_id": line.ID, "menu_item_id": req.MenuItemID, "diner": diner,
	})
	return line, nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, lineID int64, quantity int) (domain.OrderLine, bool, error) {
	line, err := s.store.GetLine(ctx, lineID)
	if err != nil {
		return domain.OrderLine{}, false, err
	}
	if line.Status != domain.StatusCart {
		return domain.OrderLine{}, false, domain.Validationf("line %d is already confirmed", lineID)
	}
	if _, err := activeSession(ctx, s.store, line.SessionID); err != nil {
		return domain.OrderLine{}, false, err
	}

	if quantity <= 0 {
		if err := s.store.DeleteCartLine(ctx, lineID); err != nil {
			return domain.OrderLine{}, false, err
		}
		invalidateBill(ctx, s.cache, line.SessionID)
		s.lg.Debug("cart_item_removed", map[string]any{"line_id": lineID, "reason": "zero_quantity"})
		return domain.OrderLine{}, true, nil
	}

	updated, err := s.store.SetLineQuantity(ctx, lineID, quantity)
	if err != nil {
		return domain.OrderLine{}, false, err
	}
	invalidateBill(ctx, s.cache, line.SessionID)
	return updated, false, nil
}

func (s *CartService) RemoveItem(ctx context.Context, lineID int64) error {
	line, err := s.store.GetLine(ctx, lineID)
	if err != nil {
		return err
	}
	if line.Status != domain.StatusCart {
		return domain.Validationf("line %d is already confirmed", lineID)
	}
	if _, err := activeSession(ctx, s.store, line.SessionID); err != nil {
		return err
	}
	if err := s.store.DeleteCartLine(ctx, lineID); err != nil {
		return err
	}
	invalidateBill(ctx, s.cache, line.SessionID)
	s.lg.Debug("cart_item_removed", map[string]any{"line_id": lineID})
	return nil
}

// Clear drops every pending line of the session; confirmed orders are not
// touched.
func (s *CartService) Clear(ctx context.Context, sessionID int64) error {
	if _, err := activeSession(ctx, s.store, sessionID); err != nil {
		return err
	}
	n, err := s.store.ClearCart(ctx, sessionID)
	if err != nil {
		return err
	}
	invalidateBill(ctx, s.cache, sessionID)
	s.lg.Debug("cart_cleared", map[string]any{"session_id": sessionID, "lines": n})
	return nil
}

func (s *CartService) List(ctx context.Context, sessionID int64, dinerName string) ([]domain.OrderLine, error) {
	if _, err := s.store.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.store.ListLines(ctx, sessionID, []domain.LineStatus{domain.StatusCart}, dinerName)
}
