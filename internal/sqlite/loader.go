// This file implements JSONL loading for startup.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// persistedTable is a table whose contents round-trip through a JSONL file.
type persistedTable interface {
	tableName() string
	load(tx *sql.Tx, records []json.RawMessage) error
	dump() ([]json.RawMessage, error)
}

// persistedTables lists everything the backend loads on Attach.
func (b *Backend) persistedTables() []persistedTable {
	return []persistedTable{b.debts, b.escrows, b.insurance, b.claims, b.counter}
}

// initJSONLFiles creates an empty JSONL file for every table that does not
// have one yet.
func (b *Backend) initJSONLFiles() error {
	for _, t := range b.persistedTables() {
		if err := ensureJSONLFile(jsonlPath(b.dataDir, t.tableName())); err != nil {
			return err
		}
	}
	return nil
}

// loadAllJSONL reads each JSONL file from DataDir and inserts its records
// into SQLite. Loading is transactional: all tables load or none do.
// Malformed lines and unknown fields are tolerated.
func (b *Backend) loadAllJSONL() error {
	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	for _, t := range b.persistedTables() {
		records, err := readJSONL(jsonlPath(b.dataDir, t.tableName()))
		if err != nil {
			return fmt.Errorf("reading %s: %w", t.tableName(), err)
		}
		if len(records) == 0 {
			continue
		}
		if err := t.load(tx, records); err != nil {
			return fmt.Errorf("loading %s: %w", t.tableName(), err)
		}
	}

	if err := reconcileCounter(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing load transaction: %w", err)
	}
	return nil
}

// identifierColumns are the columns holding identifiers issued by the
// counter. Escrows are keyed by debt ids and are covered by debts.
var identifierColumns = []struct{ table, column string }{
	{"debts", "id"},
	{"crop_insurance", "id"},
	{"insurance_claims", "claim_id"},
}

// reconcileCounter raises the counter to the largest identifier present in
// the loaded tables, so a lost or stale counters.jsonl cannot cause an
// identifier to be issued twice.
func reconcileCounter(tx *sql.Tx) error {
	var highest uint64
	for _, ic := range identifierColumns {
		rows, err := tx.Query(fmt.Sprintf("SELECT %s FROM %s", ic.column, ic.table))
		if err != nil {
			return fmt.Errorf("scanning %s identifiers: %w", ic.table, err)
		}
		for rows.Next() {
			var v int64
			if err := rows.Scan(&v); err != nil {
				rows.Close()
				return fmt.Errorf("scanning %s identifiers: %w", ic.table, err)
			}
			if id := fromDB(v); id > highest {
				highest = id
			}
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return fmt.Errorf("scanning %s identifiers: %w", ic.table, err)
		}
	}
	if highest == 0 {
		return nil
	}

	var stored int64
	err := tx.QueryRow("SELECT value FROM counters WHERE name = ?", idCounterName).Scan(&stored)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("reading counter: %w", err)
	}
	if err == nil && fromDB(stored) >= highest {
		return nil
	}
	if _, err := tx.Exec(
		"INSERT INTO counters (name, value) VALUES (?, ?) ON CONFLICT(name) DO UPDATE SET value = excluded.value",
		idCounterName, toDB(highest),
	); err != nil {
		return fmt.Errorf("reconciling counter: %w", err)
	}
	return nil
}
