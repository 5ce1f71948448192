package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/agriledger/pkg/types"
)

const idCounterName = "id"

// nextCounterSQL advances the counter row in one statement, inserting it on
// first use. Values are stored bit-cast to BIGINT, so the increment wraps
// from the largest BIGINT to the smallest, and -1 (math.MaxUint64) is never
// advanced: the statement then returns no row.
const (
	selectCounterSQL = `SELECT value FROM counters WHERE name = $1`
	nextCounterSQL   = `INSERT INTO counters (name, value) VALUES ($1, 1) ` +
		`ON CONFLICT (name) DO UPDATE SET value = CASE ` +
		`WHEN counters.value = 9223372036854775807 THEN -9223372036854775808 ` +
		`ELSE counters.value + 1 END ` +
		`WHERE counters.value <> -1 RETURNING value`
)

// counter implements types.Counter on a row of the counters table. Next is a
// single upsert, so Postgres serializes concurrent callers on the row, the
// first insert included.
type counter struct {
	backend *Backend
}

func (c *counter) Next() (uint64, error) {
	c.backend.mu.Lock()
	defer c.backend.mu.Unlock()

	if !c.backend.attached {
		return 0, types.ErrLedgerDetached
	}

	var v int64
	err := c.backend.db.QueryRowContext(context.Background(), nextCounterSQL, idCounterName).Scan(&v)
	if err == sql.ErrNoRows {
		return 0, types.ErrIDSpaceExhausted
	}
	if err != nil {
		return 0, fmt.Errorf("advance counter: %w", err)
	}
	return fromDB(v), nil
}

func (c *counter) Current() (uint64, error) {
	c.backend.mu.RLock()
	defer c.backend.mu.RUnlock()

	if !c.backend.attached {
		return 0, types.ErrLedgerDetached
	}
	return scanCounter(c.backend.db.QueryRowContext(context.Background(), selectCounterSQL, idCounterName))
}

func scanCounter(row *sql.Row) (uint64, error) {
	var v int64
	err := row.Scan(&v)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read counter: %w", err)
	}
	return fromDB(v), nil
}
