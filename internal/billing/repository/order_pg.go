package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"dinesplit/internal/domain"
)

// ConfirmCart promotes every cart line of the session to 'waiting' in a single
// transaction. Concurrent adds either land before the row lock and are
// promoted with the batch, or insert after it and stay in the cart; the
// confirmed set is never a half-visible mixture.
func (p *Postgres) ConfirmCart(ctx context.Context, sessionID int64, changedBy string) ([]domain.OrderLine, error) {
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, domain.PersistenceError("begin confirm", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx,
		`SELECT`+lineColumns+lineFrom+`
		WHERE l.session_id=$1 AND l.status='cart'
		ORDER BY l.id
		FOR UPDATE OF l`, sessionID)
	if err != nil {
		return nil, domain.PersistenceError("lock cart", err)
	}
	var lines []domain.OrderLine
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			rows.Close()
			return nil, domain.PersistenceError("scan cart line", err)
		}
		lines = append(lines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, domain.PersistenceError("lock cart", err)
	}
	if len(lines) == 0 {
		return nil, tx.Commit(ctx)
	}

	ids := make([]int64, len(lines))
	for i, l := range lines {
		ids[i] = l.ID
	}

	if _, err := tx.Exec(ctx,
		`UPDATE order_lines SET status='waiting', updated_at=now() WHERE id=ANY($1)`,
		ids); err != nil {
		return nil, domain.PersistenceError("promote cart", err)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO order_status_log (order_id, status, changed_by)
		SELECT unnest($1::bigint[]), 'waiting', $2`,
		ids, changedBy); err != nil {
		return nil, domain.PersistenceError("log confirm", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, domain.PersistenceError("commit confirm", err)
	}

	for i := range lines {
		lines[i].Status = domain.StatusWaiting
	}
	return lines, nil
}

// AdvanceOrder applies one forward kitchen transition under a row lock.
// Skipping or regressing is rejected inside the transaction so concurrent
// advances serialize cleanly.
func (p *Postgres) AdvanceOrder(ctx context.Context, orderID int64, target domain.LineStatus, changedBy string) (domain.OrderLine, domain.LineStatus, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return domain.OrderLine{}, "", domain.PersistenceError("begin advance", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	l, err := scanLine(tx.QueryRow(ctx,
		`SELECT`+lineColumns+lineFrom+`WHERE l.id=$1 FOR UPDATE OF l`, orderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.OrderLine{}, "", domain.NotFoundf("order %d not found", orderID)
	}
	if err != nil {
		return domain.OrderLine{}, "", domain.PersistenceError("lock order", err)
	}

	from := l.Status
	if !from.CanAdvanceTo(target) {
		return domain.OrderLine{}, "", domain.Validationf(
			"invalid transition %s -> %s for order %d", from, target, orderID)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE order_lines SET status=$2, updated_at=now() WHERE id=$1`,
		orderID, string(target)); err != nil {
		return domain.OrderLine{}, "", domain.PersistenceError("advance order", err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO order_status_log (order_id, status, changed_by) VALUES ($1, $2, $3)`,
		orderID, string(target), changedBy); err != nil {
		return domain.OrderLine{}, "", domain.PersistenceError("log advance", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.OrderLine{}, "", domain.PersistenceError("commit advance", err)
	}

	l.Status = target
	return l, from, nil
}

func (p *Postgres) CountUnserved(ctx context.Context, sessionID int64) (int, error) {
	var n int
	err := p.pool.QueryRow(ctx, `
		SELECT count(*) FROM order_lines
		WHERE session_id=$1 AND status IN ('waiting', 'preparing', 'ready')`,
		sessionID).Scan(&n)
	if err != nil {
		return 0, domain.PersistenceError("count unserved", err)
	}
	return n, nil
}
