package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"dinesplit/internal/domain"
)

func scanSplit(row pgx.Row) (domain.SplitAgreement, error) {
	var s domain.SplitAgreement
	var status string
	err := row.Scan(&s.ID, &s.SessionID, &s.MenuItemID, &s.OriginalPrice,
		&s.SplitCount, &s.SplitPrice, &s.Participants, &status, &s.CreatedAt)
	if err != nil {
		return domain.SplitAgreement{}, err
	}
	s.Status = domain.SplitStatus(status)
	return s, nil
}

const splitColumns = `
	id, session_id, menu_item_id, original_price, split_count, split_price,
	participants, status, created_at`

func (p *Postgres) GetActiveSplit(ctx context.Context, sessionID, menuItemID int64) (domain.SplitAgreement, bool, error) {
	s, err := scanSplit(p.pool.QueryRow(ctx,
		`SELECT`+splitColumns+` FROM split_agreements
		WHERE session_id=$1 AND menu_item_id=$2 AND status='active'`,
		sessionID, menuItemID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.SplitAgreement{}, false, nil
	}
	if err != nil {
		return domain.SplitAgreement{}, false, domain.PersistenceError("get active split", err)
	}
	return s, true, nil
}

func (p *Postgres) GetSplits(ctx context.Context, ids []int64) (map[int64]domain.SplitAgreement, error) {
	out := make(map[int64]domain.SplitAgreement, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := p.pool.Query(ctx,
		`SELECT`+splitColumns+` FROM split_agreements WHERE id=ANY($1)`, ids)
	if err != nil {
		return nil, domain.PersistenceError("get splits", err)
	}
	defer rows.Close()
	for rows.Next() {
		s, err := scanSplit(rows)
		if err != nil {
			return nil, domain.PersistenceError("scan split", err)
		}
		out[s.ID] = s
	}
	if err := rows.Err(); err != nil {
		return nil, domain.PersistenceError("get splits", err)
	}
	return out, nil
}

// ReplaceActiveSplit retires the current active agreement for the pair and
// inserts the replacement in one transaction. Lines already pointing at the
// old agreement keep their reference; only the linkage update (a separate,
// status-filtered step) moves pre-kitchen lines to the new one.
func (p *Postgres) ReplaceActiveSplit(ctx context.Context, split domain.SplitAgreement) (domain.SplitAgreement, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return domain.SplitAgreement{}, domain.PersistenceError("begin replace split", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		UPDATE split_agreements SET status='superseded'
		WHERE session_id=$1 AND menu_item_id=$2 AND status='active'`,
		split.SessionID, split.MenuItemID); err != nil {
		return domain.SplitAgreement{}, domain.PersistenceError("supersede split", err)
	}

	s := split
	s.Status = domain.SplitActive
	err = tx.QueryRow(ctx, `
		INSERT INTO split_agreements
			(session_id, menu_item_id, original_price, split_count, split_price, participants, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'active')
		RETURNING id, created_at`,
		s.SessionID, s.MenuItemID, s.OriginalPrice, s.SplitCount, s.SplitPrice, s.Participants,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.SplitAgreement{}, domain.Conflictf(
				"active split for session %d item %d already exists", s.SessionID, s.MenuItemID)
		}
		return domain.SplitAgreement{}, domain.PersistenceError("insert split", err)
	}

	if err := tx.Commit(ctx); err != nil {
		if isUniqueViolation(err) {
			return domain.SplitAgreement{}, domain.Conflictf(
				"active split for session %d item %d already exists", s.SessionID, s.MenuItemID)
		}
		return domain.SplitAgreement{}, domain.PersistenceError("commit replace split", err)
	}
	return s, nil
}

func (p *Postgres) LinkSplit(ctx context.Context, sessionID, menuItemID, splitID int64) (int64, error) {
	tag, err := p.pool.Exec(ctx, `
		UPDATE order_lines SET split_id=$3, updated_at=now()
		WHERE session_id=$1 AND menu_item_id=$2 AND is_shared
		  AND status IN ('cart', 'placed')`,
		sessionID, menuItemID, splitID)
	if err != nil {
		return 0, domain.PersistenceError("link split", err)
	}
	return tag.RowsAffected(), nil
}
