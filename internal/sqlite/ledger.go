package sqlite

import (
	"context"
	"fmt"

	"github.com/rpggio/roundup/internal/clock"
)

// LedgerRepository implements feed.Ledger for SQLite. Claims are unique keys,
// so concurrent passes sharing the database perform a side effect once.
type LedgerRepository struct {
	db    *DB
	clock clock.Clock
}

// NewLedgerRepository creates a new LedgerRepository
func NewLedgerRepository(db *DB, clk clock.Clock) *LedgerRepository {
	return &LedgerRepository{db: db, clock: clock.OrSystem(clk)}
}

// Claim records key, returning false if it was already recorded
func (r *LedgerRepository) Claim(ctx context.Context, key string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO event_ledger (key, created_at) VALUES (?, ?) ON CONFLICT (key) DO NOTHING`,
		key, formatTime(r.clock.Now()),
	)
	if err != nil {
		return false, fmt.Errorf("failed to claim ledger key: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n == 1, nil
}

// Release removes key so the side effect can be retried
func (r *LedgerRepository) Release(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM event_ledger WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to release ledger key: %w", err)
	}
	return nil
}
