package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"dinesplit/internal/domain"
)

func (p *Postgres) GetLine(ctx context.Context, id int64) (domain.OrderLine, error) {
	l, err := scanLine(p.pool.QueryRow(ctx,
		`SELECT`+lineColumns+lineFrom+`WHERE l.id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.OrderLine{}, domain.NotFoundf("order line %d not found", id)
	}
	if err != nil {
		return domain.OrderLine{}, domain.PersistenceError("get line", err)
	}
	return l, nil
}

func (p *Postgres) FindCartLine(ctx context.Context, sessionID int64, dinerName string, menuItemID int64) (domain.OrderLine, bool, error) {
	l, err := scanLine(p.pool.QueryRow(ctx,
		`SELECT`+lineColumns+lineFrom+`
		WHERE l.session_id=$1 AND l.diner_name=$2 AND l.menu_item_id=$3 AND l.status='cart'
		ORDER BY l.id LIMIT 1`,
		sessionID, dinerName, menuItemID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.OrderLine{}, false, nil
	}
	if err != nil {
		return domain.OrderLine{}, false, domain.PersistenceError("find cart line", err)
	}
	return l, true, nil
}

func (p *Postgres) InsertCartLine(ctx context.Context, line domain.OrderLine) (domain.OrderLine, error) {
	var id int64
	err := p.pool.QueryRow(ctx, `
		INSERT INTO order_lines
			(session_id, menu_item_id, diner_name, quantity, notes, is_shared, is_takeaway, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'cart')
		RETURNING id`,
		line.SessionID, line.MenuItemID, line.DinerName, line.Quantity,
		line.Notes, line.IsShared, line.IsTakeaway,
	).Scan(&id)
	if err != nil {
		return domain.OrderLine{}, domain.PersistenceError("insert cart line", err)
	}
	return p.GetLine(ctx, id)
}

func (p *Postgres) SetLineQuantity(ctx context.Context, id int64, quantity int) (domain.OrderLine, error) {
	tag, err := p.pool.Exec(ctx,
		`UPDATE order_lines SET quantity=$2, updated_at=now() WHERE id=$1 AND status='cart'`,
		id, quantity)
	if err != nil {
		return domain.OrderLine{}, domain.PersistenceError("set quantity", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.OrderLine{}, domain.NotFoundf("cart line %d not found", id)
	}
	return p.GetLine(ctx, id)
}

func (p *Postgres) DeleteCartLine(ctx context.Context, id int64) error {
	tag, err := p.pool.Exec(ctx,
		`DELETE FROM order_lines WHERE id=$1 AND status='cart'`, id)
	if err != nil {
		return domain.PersistenceError("delete cart line", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFoundf("cart line %d not found", id)
	}
	return nil
}

func (p *Postgres) ClearCart(ctx context.Context, sessionID int64) (int64, error) {
	tag, err := p.pool.Exec(ctx,
		`DELETE FROM order_lines WHERE session_id=$1 AND status='cart'`, sessionID)
	if err != nil {
		return 0, domain.PersistenceError("clear cart", err)
	}
	return tag.RowsAffected(), nil
}

func (p *Postgres) ListLines(ctx context.Context, sessionID int64, statuses []domain.LineStatus, dinerName string) ([]domain.OrderLine, error) {
	set := make([]string, 0, len(statuses))
	for _, s := range statuses {
		set = append(set, string(s))
	}

	query := `SELECT` + lineColumns + lineFrom + `WHERE l.session_id=$1 AND l.status=ANY($2)`
	args := []any{sessionID, set}
	if dinerName != "" {
		query += ` AND l.diner_name=$3`
		args = append(args, dinerName)
	}
	query += ` ORDER BY l.id`

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.PersistenceError("list lines", err)
	}
	defer rows.Close()

	var out []domain.OrderLine
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, domain.PersistenceError("scan line", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.PersistenceError("list lines", err)
	}
	return out, nil
}
