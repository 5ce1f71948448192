package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"

	"github.com/mesh-intelligence/agriledger/pkg/types"
)

// idCounterName is the counters row shared by every record kind.
const idCounterName = "id"

// counterJSON is the record format of counters.jsonl.
type counterJSON struct {
	Name  string `json:"name"`
	Value uint64 `json:"value"`
}

// counter implements types.Counter on the counters table.
type counter struct {
	backend *Backend
}

// Next increments the counter, persists it, and returns the new value.
func (c *counter) Next() (uint64, error) {
	c.backend.mu.Lock()
	defer c.backend.mu.Unlock()

	if !c.backend.attached {
		return 0, types.ErrLedgerDetached
	}
	cur, err := c.current()
	if err != nil {
		return 0, err
	}
	if cur == math.MaxUint64 {
		return 0, types.ErrIDSpaceExhausted
	}
	next := cur + 1
	if _, err := c.backend.db.Exec(
		"INSERT INTO counters (name, value) VALUES (?, ?) ON CONFLICT(name) DO UPDATE SET value = excluded.value",
		idCounterName, toDB(next),
	); err != nil {
		return 0, fmt.Errorf("advancing counter: %w", err)
	}
	if err := c.backend.persist(countersFile, c.dump); err != nil {
		return 0, err
	}
	return next, nil
}

// Current returns the last issued identifier.
func (c *counter) Current() (uint64, error) {
	c.backend.mu.RLock()
	defer c.backend.mu.RUnlock()

	if !c.backend.attached {
		return 0, types.ErrLedgerDetached
	}
	return c.current()
}

// current reads the counter row. The caller must hold backend.mu.
func (c *counter) current() (uint64, error) {
	var v int64
	err := c.backend.db.QueryRow("SELECT value FROM counters WHERE name = ?", idCounterName).Scan(&v)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading counter: %w", err)
	}
	return fromDB(v), nil
}

func (c *counter) dump() ([]json.RawMessage, error) {
	cur, err := c.current()
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(counterJSON{Name: idCounterName, Value: cur})
	if err != nil {
		return nil, err
	}
	return []json.RawMessage{b}, nil
}

// load restores the counter from counters.jsonl. When the file lists the
// counter more than once the largest value wins, so a counter never moves
// backwards.
func (c *counter) load(tx *sql.Tx, records []json.RawMessage) error {
	var maxValue uint64
	found := false
	for _, raw := range records {
		var rec counterJSON
		if err := json.Unmarshal(raw, &rec); err != nil || rec.Name != idCounterName {
			continue
		}
		if !found || rec.Value > maxValue {
			maxValue = rec.Value
		}
		found = true
	}
	if !found {
		return nil
	}
	if _, err := tx.Exec("INSERT INTO counters (name, value) VALUES (?, ?)", idCounterName, toDB(maxValue)); err != nil {
		return fmt.Errorf("loading counter: %w", err)
	}
	return nil
}

func (c *counter) tableName() string { return countersFile }
