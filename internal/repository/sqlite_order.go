package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/railorder/internal/db"
	"github.com/alexanderramin/railorder/internal/domain"
)

// orderColumns is the canonical SELECT column list for orders.
const orderColumns = `id, name, short_id, customer_ref, timetable_year_label, status,
		created_at, updated_at`

// SQLiteOrderRepo implements OrderRepo using a SQLite database.
type SQLiteOrderRepo struct {
	db db.DBTX
}

// NewSQLiteOrderRepo creates a new SQLiteOrderRepo. Accepts a DBTX so
// tx-scoped instances can be created inside a UnitOfWork.
func NewSQLiteOrderRepo(dbtx db.DBTX) *SQLiteOrderRepo {
	return &SQLiteOrderRepo{db: dbtx}
}

func (r *SQLiteOrderRepo) Create(ctx context.Context, o *domain.Order) error {
	query := `INSERT INTO orders (id, name, short_id, customer_ref, timetable_year_label, status,
		created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		o.ID,
		o.Name,
		o.ShortID,
		o.CustomerRef,
		o.TimetableYearLabel,
		string(o.Status),
		o.CreatedAt.Format(time.RFC3339),
		o.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}
	return nil
}

func (r *SQLiteOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`
	return r.scanOrder(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteOrderRepo) GetByShortID(ctx context.Context, shortID string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE short_id = ?`
	return r.scanOrder(r.db.QueryRowContext(ctx, query, shortID))
}

func (r *SQLiteOrderRepo) List(ctx context.Context, includeArchived bool) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	if !includeArchived {
		query += ` WHERE status != 'archived'`
	}
	query += ` ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		o, err := scanOrderRow(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating orders: %w", err)
	}
	return orders, nil
}

func (r *SQLiteOrderRepo) Update(ctx context.Context, o *domain.Order) error {
	query := `UPDATE orders SET name = ?, short_id = ?, customer_ref = ?,
		timetable_year_label = ?, status = ?, updated_at = ?
		WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		o.Name,
		o.ShortID,
		o.CustomerRef,
		o.TimetableYearLabel,
		string(o.Status),
		o.UpdatedAt.Format(time.RFC3339),
		o.ID,
	)
	if err != nil {
		return fmt.Errorf("updating order: %w", err)
	}
	return nil
}

func (r *SQLiteOrderRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting order: %w", err)
	}
	return nil
}

func (r *SQLiteOrderRepo) scanOrder(row *sql.Row) (*domain.Order, error) {
	var o domain.Order
	var statusStr, createdAtStr, updatedAtStr string

	err := row.Scan(&o.ID, &o.Name, &o.ShortID, &o.CustomerRef, &o.TimetableYearLabel,
		&statusStr, &createdAtStr, &updatedAtStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("order: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning order: %w", err)
	}
	return populateOrder(&o, statusStr, createdAtStr, updatedAtStr)
}

func scanOrderRow(rows *sql.Rows) (*domain.Order, error) {
	var o domain.Order
	var statusStr, createdAtStr, updatedAtStr string

	err := rows.Scan(&o.ID, &o.Name, &o.ShortID, &o.CustomerRef, &o.TimetableYearLabel,
		&statusStr, &createdAtStr, &updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("scanning order row: %w", err)
	}
	return populateOrder(&o, statusStr, createdAtStr, updatedAtStr)
}

func populateOrder(o *domain.Order, statusStr, createdAtStr, updatedAtStr string) (*domain.Order, error) {
	o.Status = domain.OrderStatus(statusStr)

	var parseErr error
	o.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	o.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}
	return o, nil
}
