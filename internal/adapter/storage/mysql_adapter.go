package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/rl1809/car-purchase/internal/core/domain"
)

//go:embed schema.sql
var schema string

const purchaseColumns = `id, user_id, car_id, user_name, car_name, price, discount`

// OpenMySQL opens a pool for dsn. clientFoundRows is forced on so that an
// UPDATE writing identical values still counts the matched row.
func OpenMySQL(dsn string) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ClientFoundRows = true

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("mysql connector: %w", err)
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) Migrate(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create purchases table: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) Insert(ctx context.Context, p domain.Purchase) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO purchases (`+purchaseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.CarID, p.UserName, p.CarName, p.Price, p.Discount,
	)
	if err != nil {
		return fmt.Errorf("insert purchase: %w", err)
	}

	return nil
}

func (m *MySQLAdapter) FindByID(ctx context.Context, id string) (*domain.Purchase, error) {
	var p domain.Purchase
	err := m.db.QueryRowContext(ctx, `
		SELECT `+purchaseColumns+`
		FROM purchases WHERE id = ?`, id,
	).Scan(&p.ID, &p.UserID, &p.CarID, &p.UserName, &p.CarName, &p.Price, &p.Discount)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query purchase: %w", err)
	}

	return &p, nil
}

func (m *MySQLAdapter) FindAll(ctx context.Context) ([]domain.Purchase, error) {
	return m.query(ctx, `SELECT `+purchaseColumns+` FROM purchases ORDER BY id`)
}

func (m *MySQLAdapter) FindByUser(ctx context.Context, userID string) ([]domain.Purchase, error) {
	return m.query(ctx, `SELECT `+purchaseColumns+` FROM purchases WHERE user_id = ? ORDER BY id`, userID)
}

func (m *MySQLAdapter) query(ctx context.Context, query string, args ...any) ([]domain.Purchase, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query purchases: %w", err)
	}
	defer rows.Close()

	var purchases []domain.Purchase
	for rows.Next() {
		var p domain.Purchase
		if err := rows.Scan(&p.ID, &p.UserID, &p.CarID, &p.UserName, &p.CarName, &p.Price, &p.Discount); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		purchases = append(purchases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchases: %w", err)
	}

	return purchases, nil
}

func (m *MySQLAdapter) ReplaceFields(ctx context.Context, id string, f domain.PurchaseFields) (bool, error) {
	result, err := m.db.ExecContext(ctx, `
		UPDATE purchases
		SET user_id = ?, car_id = ?, user_name = ?, car_name = ?, price = ?, discount = ?
		WHERE id = ?`,
		f.UserID, f.CarID, f.UserName, f.CarName, f.Price, f.Discount, id,
	)
	if err != nil {
		return false, fmt.Errorf("update purchase: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update purchase: %w", err)
	}

	return rows > 0, nil
}

func (m *MySQLAdapter) Delete(ctx context.Context, id string) (bool, error) {
	result, err := m.db.ExecContext(ctx, `DELETE FROM purchases WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete purchase: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete purchase: %w", err)
	}

	return rows > 0, nil
}
