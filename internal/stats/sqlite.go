// Package stats maintains a derived SQLite index of completed shopping
// sessions for the reporting commands. The JSON session archive stays the
// source of truth; this index is enrichment and can be rebuilt from it.
package stats

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"shoplist/internal/model"
	"shoplist/internal/shop"
	"shoplist/internal/stats/migrations"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteIndex implements shop.StatsIndex using SQLite.
type SQLiteIndex struct {
	db *sql.DB
}

// Open opens (and auto-migrates) a stats index at path.
// path can be a file path or ":memory:" for an in-memory index.
func Open(path string) (*SQLiteIndex, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating stats index: %w", err)
	}
	return &SQLiteIndex{db: db}, nil
}

// OpenConnection opens and configures a SQLite connection with appropriate
// PRAGMAs. Exported for tests that need a raw configured connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open stats database: %w", err)
	}

	// SQLite ships with foreign keys off for backward compatibility.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return db, nil
}

// RecordSession indexes one finalized session. Re-recording the same
// session id replaces its rows, so the call is idempotent.
func (s *SQLiteIndex) RecordSession(ctx context.Context, sess *model.ShoppingSession) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertSession(ctx, tx, sess); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing session record: %w", err)
	}
	return nil
}

// RemoveSession drops one session and its purchases from the index.
func (s *SQLiteIndex) RemoveSession(ctx context.Context, sessionID string) error {
	// Purchases cascade via the foreign key.
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID); err != nil {
		return fmt.Errorf("removing session %s: %w", sessionID, err)
	}
	return nil
}

// Rebuild replaces the whole index with the given sessions.
func (s *SQLiteIndex) Rebuild(ctx context.Context, sessions []*model.ShoppingSession) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("clearing index: %w", err)
	}
	for _, sess := range sessions {
		if err := insertSession(ctx, tx, sess); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing rebuild: %w", err)
	}
	return nil
}

// SpendingByMonth returns per-month totals of confirmed spend, newest first.
func (s *SQLiteIndex) SpendingByMonth(ctx context.Context) ([]shop.MonthlySpend, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT strftime('%Y-%m', date) AS month, SUM(total), COUNT(*)
		FROM sessions
		GROUP BY month
		ORDER BY month DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying spending by month: %w", err)
	}
	defer rows.Close()

	var result []shop.MonthlySpend
	for rows.Next() {
		var m shop.MonthlySpend
		var total float64
		if err := rows.Scan(&m.Month, &total, &m.Sessions); err != nil {
			return nil, fmt.Errorf("scanning spending row: %w", err)
		}
		m.Total = decimal.NewFromFloat(total).Round(2)
		result = append(result, m)
	}
	return result, rows.Err()
}

// TopItems returns the most frequently purchased items, by checked
// purchase count.
func (s *SQLiteIndex) TopItems(ctx context.Context, limit int) ([]shop.TopItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, brand, COUNT(*), SUM(price)
		FROM purchases
		WHERE checked = 1
		GROUP BY master_item_id, variant_index
		ORDER BY COUNT(*) DESC, SUM(price) DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying top items: %w", err)
	}
	defer rows.Close()

	var result []shop.TopItem
	for rows.Next() {
		var t shop.TopItem
		var spent float64
		if err := rows.Scan(&t.Name, &t.Brand, &t.Purchases, &spent); err != nil {
			return nil, fmt.Errorf("scanning top item row: %w", err)
		}
		t.TotalSpent = decimal.NewFromFloat(spent).Round(2)
		result = append(result, t)
	}
	return result, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteIndex) Close() error {
	return s.db.Close()
}

// insertSession writes one session and its purchase rows inside tx,
// replacing any prior rows for the same id.
func insertSession(ctx context.Context, tx *sql.Tx, sess *model.ShoppingSession) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sess.ID); err != nil {
		return fmt.Errorf("replacing session %s: %w", sess.ID, err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sessions (id, list_name, total, calculated_total, date)
		VALUES (?, ?, ?, ?, ?)`,
		sess.ID, sess.ListName, sess.Total.InexactFloat64(),
		sess.CalculatedTotal.InexactFloat64(), sess.Date); err != nil {
		return fmt.Errorf("inserting session %s: %w", sess.ID, err)
	}
	for _, item := range sess.Items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO purchases (session_id, master_item_id, variant_index, name, brand, price, checked, purchased_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			sess.ID, item.MasterItemID, item.VariantIndex, item.Name, item.Brand,
			item.Price.InexactFloat64(), item.Checked, sess.Date); err != nil {
			return fmt.Errorf("inserting purchase for session %s: %w", sess.ID, err)
		}
	}
	return nil
}

// Compile-time check that SQLiteIndex implements shop.StatsIndex
var _ shop.StatsIndex = (*SQLiteIndex)(nil)
