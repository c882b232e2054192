package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"dinesplit/internal/domain"
	"dinesplit/migrations"
)

const uniqueViolation = "23505"

type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres { return &Postgres{pool: pool} }

// EnsureSchema applies the embedded schema. Safe to run on every startup.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, migrations.Schema); err != nil {
		return domain.PersistenceError("apply schema", err)
	}
	return nil
}

const lineColumns = `
	l.id, l.session_id, l.menu_item_id, m.name, m.price, l.diner_name,
	l.quantity, l.notes, l.is_shared, l.is_takeaway, l.status, l.split_id,
	l.created_at, l.updated_at`

const lineFrom = ` FROM order_lines l JOIN menu_items m ON m.id = l.menu_item_id `

func scanLine(row pgx.Row) (domain.OrderLine, error) {
	var l domain.OrderLine
	var status string
	err := row.Scan(&l.ID, &l.SessionID, &l.MenuItemID, &l.MenuItemName, &l.UnitPrice,
		&l.DinerName, &l.Quantity, &l.Notes, &l.IsShared, &l.IsTakeaway, &status,
		&l.SplitID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return domain.OrderLine{}, err
	}
	l.Status = domain.LineStatus(status)
	return l, nil
}

func (p *Postgres) GetSession(ctx context.Context, id int64) (domain.Session, error) {
	var s domain.Session
	var status string
	err := p.pool.QueryRow(ctx,
		`SELECT id, table_number, status, created_at FROM sessions WHERE id=$1`, id,
	).Scan(&s.ID, &s.TableNumber, &status, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Session{}, domain.NotFoundf("session %d not found", id)
	}
	if err != nil {
		return domain.Session{}, domain.PersistenceError("get session", err)
	}
	s.Status = domain.SessionStatus(status)

	rows, err := p.pool.Query(ctx,
		`SELECT id, name FROM diners WHERE session_id=$1 ORDER BY position, id`, id)
	if err != nil {
		return domain.Session{}, domain.PersistenceError("get session diners", err)
	}
	defer rows.Close()
	for rows.Next() {
		var d domain.Diner
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return domain.Session{}, domain.PersistenceError("scan diner", err)
		}
		s.Diners = append(s.Diners, d)
	}
	if err := rows.Err(); err != nil {
		return domain.Session{}, domain.PersistenceError("get session diners", err)
	}
	return s, nil
}

func (p *Postgres) GetMenuItem(ctx context.Context, id int64) (domain.MenuItem, error) {
	var m domain.MenuItem
	err := p.pool.QueryRow(ctx,
		`SELECT id, name, price, available FROM menu_items WHERE id=$1`, id,
	).Scan(&m.ID, &m.Name, &m.Price, &m.Available)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.MenuItem{}, domain.NotFoundf("menu item %d not found", id)
	}
	if err != nil {
		return domain.MenuItem{}, domain.PersistenceError("get menu item", err)
	}
	return m, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
