package repository

import (
	"context"

	"dinesplit/internal/domain"
)

// Store is the persistence boundary of the billing core. Two implementations
// exist: Postgres (production) and in-memory (development and tests). Every
// method is atomic on its own; ConfirmCart, ReplaceActiveSplit and
// AdvanceOrder are the only multi-row units and run as single transactions.
type Store interface {
	// Session roster and menu catalog, read-only to the core.
	GetSession(ctx context.Context, id int64) (domain.Session, error)
	GetMenuItem(ctx context.Context, id int64) (domain.MenuItem, error)

	// Cart ledger.
	GetLine(ctx context.Context, id int64) (domain.OrderLine, error)
	FindCartLine(ctx context.Context, sessionID int64, dinerName string, menuItemID int64) (domain.OrderLine, bool, error)
	InsertCartLine(ctx context.Context, line domain.OrderLine) (domain.OrderLine, error)
	SetLineQuantity(ctx context.Context, id int64, quantity int) (domain.OrderLine, error)
	DeleteCartLine(ctx context.Context, id int64) error
	ClearCart(ctx context.Context, sessionID int64) (int64, error)
	// ListLines filters by status set and, when dinerName is non-empty, by
	// owning diner.
	ListLines(ctx context.Context, sessionID int64, statuses []domain.LineStatus, dinerName string) ([]domain.OrderLine, error)

	// Split agreements.
	GetActiveSplit(ctx context.Context, sessionID, menuItemID int64) (domain.SplitAgreement, bool, error)
	GetSplits(ctx context.Context, ids []int64) (map[int64]domain.SplitAgreement, error)
	// ReplaceActiveSplit supersedes the current active agreement for the
	// (session, menu item) pair, if any, and inserts the given one as active,
	// in one transaction. A concurrent replace losing the race on the active
	// uniqueness index surfaces as a Conflict error.
	ReplaceActiveSplit(ctx context.Context, split domain.SplitAgreement) (domain.SplitAgreement, error)
	// LinkSplit points every shared, not-yet-progressed line for the pair at
	// the agreement. Progressed lines are excluded by the status filter, which
	// is what keeps kitchen-sent pricing immutable.
	LinkSplit(ctx context.Context, sessionID, menuItemID, splitID int64) (int64, error)

	// Order lifecycle.
	// ConfirmCart promotes the whole cart to 'waiting' as one transaction and
	// returns the promoted lines.
	ConfirmCart(ctx context.Context, sessionID int64, changedBy string) ([]domain.OrderLine, error)
	// AdvanceOrder applies a single forward transition under a row lock and
	// returns the updated line plus the status it moved from.
	AdvanceOrder(ctx context.Context, orderID int64, target domain.LineStatus, changedBy string) (domain.OrderLine, domain.LineStatus, error)
	// CountUnserved counts confirmed lines not yet 'served'.
	CountUnserved(ctx context.Context, sessionID int64) (int, error)
}
