package sales

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const (
	selectSales = `SELECT id, productName, productPrice, amount, totalPrice, createdAt FROM sale`
	lockSale    = `SELECT id FROM sale WHERE id = ? FOR UPDATE`
)

// MySQLStorage stores sales in the sale table. Every call holds one pooled
// connection for its whole duration and returns it before exiting.
type MySQLStorage struct {
	db *sql.DB
}

// NewMySQLStorage returns a storage backed by db. The database selected by
// db's DSN must contain the sale table.
func NewMySQLStorage(db *sql.DB) *MySQLStorage {
	return &MySQLStorage{db: db}
}

func (m *MySQLStorage) conn(ctx context.Context) (*sql.Conn, error) {
	c, err := m.db.Conn(ctx)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	return c, nil
}

func (m *MySQLStorage) List(ctx context.Context) ([]*Sale, error) {
	conn, err := m.conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, selectSales+` ORDER BY createdAt DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	sales := make([]*Sale, 0)
	for rows.Next() {
		var s Sale
		if err := rows.Scan(&s.ID, &s.ProductName, &s.ProductPrice, &s.Amount, &s.TotalPrice, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		sales = append(sales, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sales: %w", err)
	}
	return sales, nil
}

func (m *MySQLStorage) Read(ctx context.Context, id int64) (*Sale, error) {
	conn, err := m.conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var s Sale
	err = conn.QueryRowContext(ctx, selectSales+` WHERE id = ?`, id).
		Scan(&s.ID, &s.ProductName, &s.ProductPrice, &s.Amount, &s.TotalPrice, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sale: %w", err)
	}
	return &s, nil
}

func (m *MySQLStorage) Create(ctx context.Context, d Details) (int64, error) {
	conn, err := m.conn(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	res, err := conn.ExecContext(ctx,
		`INSERT INTO sale (productName, productPrice, amount, totalPrice) VALUES (?, ?, ?, ?)`,
		d.ProductName, d.ProductPrice, d.Amount, d.TotalPrice)
	if err != nil {
		return 0, fmt.Errorf("failed to insert sale: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get sale id: %w", err)
	}
	return id, nil
}

// Update locks the row, then replaces its business fields in the same
// transaction. Returns ErrNotFound without writing if the row is absent.
func (m *MySQLStorage) Update(ctx context.Context, id int64, d Details) error {
	return m.withLockedSale(ctx, id, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE sale SET productName = ?, productPrice = ?, amount = ?, totalPrice = ? WHERE id = ?`,
			d.ProductName, d.ProductPrice, d.Amount, d.TotalPrice, id)
		if err != nil {
			return fmt.Errorf("failed to update sale: %w", err)
		}
		return nil
	})
}

// Delete locks the row, then removes it in the same transaction. Returns
// ErrNotFound without deleting if the row is absent.
func (m *MySQLStorage) Delete(ctx context.Context, id int64) error {
	return m.withLockedSale(ctx, id, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sale WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete sale: %w", err)
		}
		return nil
	})
}

func (m *MySQLStorage) withLockedSale(ctx context.Context, id int64, write func(tx *sql.Tx) error) error {
	conn, err := m.conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var found int64
	err = tx.QueryRowContext(ctx, lockSale, id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check sale: %w", err)
	}

	if err := write(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Total sums totalPrice. SUM over no rows is NULL, which yields 0.
func (m *MySQLStorage) Total(ctx context.Context) (int64, error) {
	conn, err := m.conn(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	var total sql.NullInt64
	if err := conn.QueryRowContext(ctx, `SELECT SUM(totalPrice) AS total FROM sale`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum sales: %w", err)
	}
	return total.Int64, nil
}

func (m *MySQLStorage) Ping(ctx context.Context) error {
	conn, err := m.conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()
	return conn.PingContext(ctx)
}
