package service

import (
	"context"
	"encoding/json"
	"sort"

	"dinesplit/internal/billing/repository"
	"dinesplit/internal/common/logger"
	"dinesplit/internal/connections/redis"
	"dinesplit/internal/domain"
)

// BillAggregator is the pure read side: it folds confirmed orders and their
// split agreements into per-diner shares and the table total.
type BillAggregator interface {
	MyShare(ctx context.Context, sessionID int64, dinerName string) (domain.BillSummary, error)
	TableTotal(ctx context.Context, sessionID int64) (domain.TableBillResponse, error)
	PerDiner(ctx context.Context, sessionID int64) ([]domain.DinerBill, error)
}

var confirmedStatuses = []domain.LineStatus{
	domain.StatusWaiting, domain.StatusPreparing, domain.StatusReady, domain.StatusServed,
}

type BillService struct {
	store   repository.Store
	cache   *redis.Cache
	lg      *logger.Logger
	vatRate float64
}

func NewBillService(store repository.Store, cache *redis.Cache, lg *logger.Logger, vatRate float64) *BillService {
	return &BillService{store: store, cache: cache, lg: lg, vatRate: vatRate}
}

// contribution is one confirmed order's pricing: a split order contributes
// splitPrice x quantity once for the table and once to each participant; a
// personal order contributes unitPrice x quantity to its owner.
type contribution struct {
	line         domain.OrderLine
	amount       float64
	shared       bool
	participants []string
}

func (s *BillService) load(ctx context.Context, sessionID int64) ([]contribution, error) {
	if _, err := s.store.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	lines, err := s.store.ListLines(ctx, sessionID, confirmedStatuses, "")
	if err != nil {
		return nil, err
	}

	var splitIDs []int64
	for _, l := range lines {
		if l.SplitID != nil {
			splitIDs = append(splitIDs, *l.SplitID)
		}
	}
	splits, err := s.store.GetSplits(ctx, splitIDs)
	if err != nil {
		return nil, err
	}

	out := make([]contribution, 0, len(lines))
	for _, l := range lines {
		out = append(out, resolveContribution(l, splits))
	}
	return out, nil
}

// resolveContribution prices one order. The linked agreement is honored
// whatever its status: a superseded agreement still prices the kitchen-sent
// orders that reference it.
func resolveContribution(l domain.OrderLine, splits map[int64]domain.SplitAgreement) contribution {
	if l.SplitID != nil {
		if sp, ok := splits[*l.SplitID]; ok && len(sp.Participants) > 0 {
			return contribution{
				line:         l,
				amount:       sp.SplitPrice * float64(l.Quantity),
				shared:       true,
				participants: sp.Participants,
			}
		}
	}
	return contribution{line: l, amount: l.UnitPrice * float64(l.Quantity)}
}

func (s *BillService) summary(subtotal float64) domain.BillSummary {
	vat := subtotal * s.vatRate
	return domain.BillSummary{
		Subtotal: domain.Round2(subtotal),
		VAT:      domain.Round2(vat),
		Total:    domain.Round2(subtotal + vat),
	}
}

// MyShare sums the requesting diner's personal orders plus one split share
// for every shared order they participate in. Legacy unowned lines fall back
// to the requester, so they never silently drop out of everyone's share.
func (s *BillService) MyShare(ctx context.Context, sessionID int64, dinerName string) (domain.BillSummary, error) {
	if dinerName == "" {
		return domain.BillSummary{}, domain.Validationf("diner name is required")
	}
	contribs, err := s.load(ctx, sessionID)
	if err != nil {
		return domain.BillSummary{}, err
	}

	var subtotal float64
	for _, c := range contribs {
		if c.shared {
			for _, p := range c.participants {
				if p == dinerName {
					subtotal += c.amount
					break
				}
			}
			continue
		}
		owner := c.line.Owner()
		if owner == dinerName || owner == "" {
			subtotal += c.amount
		}
	}
	return s.summary(subtotal), nil
}

// TableTotal counts every confirmed order exactly once, using the split price
// for shared orders so participants are not double-counted.
func (s *BillService) TableTotal(ctx context.Context, sessionID int64) (domain.TableBillResponse, error) {
	key := billTotalKey(sessionID)
	if b, ok := s.cache.Get(ctx, key); ok {
		var cached domain.TableBillResponse
		if json.Unmarshal(b, &cached) == nil {
			return cached, nil
		}
	}

	contribs, err := s.load(ctx, sessionID)
	if err != nil {
		return domain.TableBillResponse{}, err
	}

	var subtotal float64
	ready := len(contribs) > 0
	for _, c := range contribs {
		subtotal += c.amount
		if c.line.Status != domain.StatusServed {
			ready = false
		}
	}
	resp := domain.TableBillResponse{BillSummary: s.summary(subtotal), PaymentReady: ready}

	if b, err := json.Marshal(resp); err == nil {
		s.cache.Set(ctx, key, b, billCacheTTL)
	}
	return resp, nil
}

// PerDiner itemizes each diner's personal and shared lines. A shared order
// appears in every participant's list at the share amount; the table subtotal
// is reconciled by counting it once (TableTotal), not once per participant.
func (s *BillService) PerDiner(ctx context.Context, sessionID int64) ([]domain.DinerBill, error) {
	key := billPerDinerKey(sessionID)
	if b, ok := s.cache.Get(ctx, key); ok {
		var cached []domain.DinerBill
		if json.Unmarshal(b, &cached) == nil {
			return cached, nil
		}
	}

	contribs, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	raw := make(map[string]float64)
	items := make(map[string][]domain.BillItem)
	add := func(name string, c contribution) {
		raw[name] += c.amount
		items[name] = append(items[name], domain.BillItem{
			MenuItemName: c.line.MenuItemName,
			Quantity:     c.line.Quantity,
			Amount:       domain.Round2(c.amount),
			Shared:       c.shared,
			Participants: c.participants,
		})
	}

	for _, c := range contribs {
		if c.shared {
			for _, p := range c.participants {
				add(p, c)
			}
			continue
		}
		owner := c.line.Owner()
		if owner == "" {
			owner = "unassigned"
		}
		add(owner, c)
	}

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]domain.DinerBill, 0, len(names))
	for _, name := range names {
		sum := s.summary(raw[name])
		out = append(out, domain.DinerBill{
			DinerName: name,
			Items:     items[name],
			Subtotal:  sum.Subtotal,
			VAT:       sum.VAT,
			Total:     sum.Total,
		})
	}

	if b, err := json.Marshal(out); err == nil {
		s.cache.Set(ctx, key, b, billCacheTTL)
	}
	return out, nil
}
