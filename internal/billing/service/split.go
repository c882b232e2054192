package service

import (
	"context"

	"dinesplit/internal/billing/repository"
	"dinesplit/internal/common/logger"
	"dinesplit/internal/connections/redis"
	"dinesplit/internal/domain"
)

// SplitManager creates, reuses or supersedes cost-sharing agreements. The one
// rule it exists to enforce: an agreement referenced by an order that already
// went to the kitchen is never changed — edits produce a new agreement that
// only pre-kitchen lines link to.
type SplitManager interface {
	CreateOrReuse(ctx context.Context, sessionID int64, req domain.CreateSplitRequest) (domain.SplitAgreement, error)
}

type SplitService struct {
	store repository.Store
	cache *redis.Cache
	lg    *logger.Logger
}

func NewSplitService(store repository.Store, cache *redis.Cache, lg *logger.Logger) *SplitService {
	return &SplitService{store: store, cache: cache, lg: lg}
}

// CreateOrReuse resolves the active agreement for (session, menu item):
// reuse on identical terms, replace on different terms, create when absent.
// A loser of the concurrent-create race gets a Conflict from the store and is
// retried once through the lookup, where it usually lands on the winner's
// agreement as a cache hit.
func (s *SplitService) CreateOrReuse(ctx context.Context, sessionID int64, req domain.CreateSplitRequest) (domain.SplitAgreement, error) {
	if req.OriginalPrice <= 0 {
		return domain.SplitAgreement{}, domain.Validationf("original price must be positive")
	}
	if req.SplitCount < 1 {
		return domain.SplitAgreement{}, domain.Validationf("split count must be at least 1")
	}
	if len(req.Participants) == 0 {
		return domain.SplitAgreement{}, domain.Validationf("participants must not be empty")
	}
	if len(req.Participants) != req.SplitCount {
		return domain.SplitAgreement{}, domain.Validationf(
			"split count %d does not match %d participants", req.SplitCount, len(req.Participants))
	}
	for _, p := range req.Participants {
		if p == "" {
			return domain.SplitAgreement{}, domain.Validationf("participant names must not be empty")
		}
	}
	if _, err := activeSession(ctx, s.store, sessionID); err != nil {
		return domain.SplitAgreement{}, err
	}
	if _, err := s.store.GetMenuItem(ctx, req.MenuItemID); err != nil {
		return domain.SplitAgreement{}, err
	}

	split, err := s.resolve(ctx, sessionID, req)
	if domain.IsKind(err, domain.KindConflict) {
		// Lost the create race; the winner's agreement is now visible.
		split, err = s.resolve(ctx, sessionID, req)
	}
	if err != nil {
		return domain.SplitAgreement{}, err
	}

	if _, err := s.store.LinkSplit(ctx, sessionID, req.MenuItemID, split.ID); err != nil {
		// The agreement exists but pre-kitchen lines were not relinked.
		// Reported distinctly: a retry of the same request is a cache hit
		// that redoes only the linkage.
		return domain.SplitAgreement{}, domain.PersistenceError("split created but linkage failed", err)
	}

	invalidateBill(ctx, s.cache, sessionID)
	s.lg.Debug("split_resolved", map[string]any{
		"session_id": sessionID, "menu_item_id": req.MenuItemID,
		"split_id": split.ID, "split_price": split.SplitPrice,
	})
	return split, nil
}

func (s *SplitService) resolve(ctx context.Context, sessionID int64, req domain.CreateSplitRequest) (domain.SplitAgreement, error) {
	existing, ok, err := s.store.GetActiveSplit(ctx, sessionID, req.MenuItemID)
	if err != nil {
		return domain.SplitAgreement{}, err
	}
	if ok && existing.SameTerms(req.OriginalPrice, req.SplitCount, req.Participants) {
		return existing, nil
	}

	// Either no agreement exists or the terms changed. The replacement keeps
	// the split price unrounded so shares reconcile against the table total.
	return s.store.ReplaceActiveSplit(ctx, domain.SplitAgreement{
		SessionID:     sessionID,
		MenuItemID:    req.MenuItemID,
		OriginalPrice: req.OriginalPrice,
		SplitCount:    req.SplitCount,
		SplitPrice:    req.OriginalPrice / float64(req.SplitCount),
		Participants:  req.Participants,
	})
}
