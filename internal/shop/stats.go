package shop

import (
	"context"

	"github.com/shopspring/decimal"

	"shoplist/internal/model"
)

// MonthlySpend is one row of the spending-by-month report.
type MonthlySpend struct {
	Month    string // "2026-01"
	Total    decimal.Decimal
	Sessions int
}

// TopItem is one row of the most-purchased-items report.
type TopItem struct {
	Name       string
	Brand      string
	Purchases  int
	TotalSpent decimal.Decimal
}

// StatsIndex is a derived, rebuildable index of completed sessions backing
// the reporting commands. Writes into it are best-effort enrichment: a
// failure never affects the archived session itself, and the index can be
// rebuilt from the archive at any time.
type StatsIndex interface {
	// RecordSession indexes a finalized session. Idempotent per session id.
	RecordSession(ctx context.Context, sess *model.ShoppingSession) error

	// RemoveSession drops a session and its purchases from the index.
	RemoveSession(ctx context.Context, sessionID string) error

	// Rebuild replaces the whole index with the given sessions.
	Rebuild(ctx context.Context, sessions []*model.ShoppingSession) error

	SpendingByMonth(ctx context.Context) ([]MonthlySpend, error)
	TopItems(ctx context.Context, limit int) ([]TopItem, error)

	Close() error
}
