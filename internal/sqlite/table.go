package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/agriledger/pkg/types"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// tableSpec describes how one record kind maps onto a SQLite table.
type tableSpec[T any] struct {
	name    string                      // SQL table name and JSONL file base name.
	key     string                      // Primary key column.
	columns []string                    // Non-key columns, in values order.
	keyOf   func(T) uint64              // Key of a record loaded from JSONL.
	values  func(T) []any               // Column values for columns.
	scan    func(rowScanner) (T, error) // Reads key followed by columns.
}

// table implements types.Table[T] for a single record kind. Each Set upserts
// into SQLite and then rewrites the table's JSONL file, immediately or
// through the backend's pending-write queue.
type table[T any] struct {
	def     tableSpec[T]
	backend *Backend
}

func newTable[T any](b *Backend, def tableSpec[T]) *table[T] {
	return &table[T]{def: def, backend: b}
}

func (t *table[T]) selectSQL() string {
	return fmt.Sprintf("SELECT %s, %s FROM %s", t.def.key, strings.Join(t.def.columns, ", "), t.def.name)
}

func (t *table[T]) upsertSQL() string {
	placeholders := make([]string, len(t.def.columns)+1)
	for i := range placeholders {
		placeholders[i] = "?"
	}
	updates := make([]string, len(t.def.columns))
	for i, c := range t.def.columns {
		updates[i] = fmt.Sprintf("%s = excluded.%s", c, c)
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s, %s) VALUES (%s) ON CONFLICT(%s) DO UPDATE SET %s",
		t.def.name,
		t.def.key,
		strings.Join(t.def.columns, ", "),
		strings.Join(placeholders, ", "),
		t.def.key,
		strings.Join(updates, ", "),
	)
}

// Get retrieves the record stored under id.
func (t *table[T]) Get(id uint64) (T, error) {
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()

	var zero T
	if !t.backend.attached {
		return zero, types.ErrLedgerDetached
	}

	row := t.backend.db.QueryRow(t.selectSQL()+" WHERE "+t.def.key+" = ?", toDB(id))
	rec, err := t.def.scan(row)
	if err == sql.ErrNoRows {
		return zero, types.ErrRecordNotFound
	}
	if err != nil {
		return zero, fmt.Errorf("getting %s %d: %w", t.def.name, id, err)
	}
	return rec, nil
}

// Set upserts record under id and persists the table's JSONL file.
func (t *table[T]) Set(id uint64, record T) error {
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()

	if !t.backend.attached {
		return types.ErrLedgerDetached
	}

	if err := types.CheckRecordSize(record); err != nil {
		return err
	}

	args := append([]any{toDB(id)}, t.def.values(record)...)
	if _, err := t.backend.db.Exec(t.upsertSQL(), args...); err != nil {
		return fmt.Errorf("persisting %s %d: %w", t.def.name, id, err)
	}

	return t.backend.persist(t.def.name, t.dump)
}

// dump reads every row and encodes it as a JSONL record, ordered by key.
func (t *table[T]) dump() ([]json.RawMessage, error) {
	rows, err := t.backend.db.Query(t.selectSQL() + " ORDER BY " + t.def.key)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", t.def.name, err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		rec, err := t.def.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", t.def.name, err)
		}
		b, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", t.def.name, err)
		}
		records = append(records, b)
	}
	return records, rows.Err()
}

// load inserts JSONL records into the table inside tx. Records that fail to
// decode or violate constraints are skipped; unknown fields are ignored.
func (t *table[T]) load(tx *sql.Tx, records []json.RawMessage) error {
	stmt, err := tx.Prepare(t.upsertSQL())
	if err != nil {
		return fmt.Errorf("preparing insert for %s: %w", t.def.name, err)
	}
	defer stmt.Close()

	for _, raw := range records {
		var rec T
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue
		}
		args := append([]any{toDB(t.def.keyOf(rec))}, t.def.values(rec)...)
		if _, err := stmt.Exec(args...); err != nil {
			continue
		}
	}
	return nil
}

func (t *table[T]) tableName() string { return t.def.name }

// Table specs for the four record kinds.

var debtsSpec = tableSpec[types.Debt]{
	name:    types.DebtsTable,
	key:     "id",
	columns: []string{"debtor", "creditor", "amount", "created_at"},
	keyOf:   func(d types.Debt) uint64 { return d.ID },
	values: func(d types.Debt) []any {
		return []any{d.Debtor, d.Creditor, toDB(d.Amount), toDB(d.CreatedAt)}
	},
	scan: func(r rowScanner) (types.Debt, error) {
		var d types.Debt
		var id, amount, createdAt int64
		if err := r.Scan(&id, &d.Debtor, &d.Creditor, &amount, &createdAt); err != nil {
			return d, err
		}
		d.ID, d.Amount, d.CreatedAt = fromDB(id), fromDB(amount), fromDB(createdAt)
		return d, nil
	},
}

var escrowsSpec = tableSpec[types.Escrow]{
	name:    types.EscrowsTable,
	key:     "debt_id",
	columns: []string{"amount", "created_at"},
	keyOf:   func(e types.Escrow) uint64 { return e.DebtID },
	values: func(e types.Escrow) []any {
		return []any{toDB(e.Amount), toDB(e.CreatedAt)}
	},
	scan: func(r rowScanner) (types.Escrow, error) {
		var e types.Escrow
		var debtID, amount, createdAt int64
		if err := r.Scan(&debtID, &amount, &createdAt); err != nil {
			return e, err
		}
		e.DebtID, e.Amount, e.CreatedAt = fromDB(debtID), fromDB(amount), fromDB(createdAt)
		return e, nil
	},
}

var cropInsuranceSpec = tableSpec[types.CropInsurance]{
	name:    types.CropInsuranceTable,
	key:     "id",
	columns: []string{"farmer", "crop_type", "coverage_amount", "coverage_start_date", "coverage_end_date"},
	keyOf:   func(c types.CropInsurance) uint64 { return c.ID },
	values: func(c types.CropInsurance) []any {
		return []any{c.Farmer, c.CropType, toDB(c.CoverageAmount), toDB(c.CoverageStartDate), toDB(c.CoverageEndDate)}
	},
	scan: func(r rowScanner) (types.CropInsurance, error) {
		var c types.CropInsurance
		var id, coverage, start, end int64
		if err := r.Scan(&id, &c.Farmer, &c.CropType, &coverage, &start, &end); err != nil {
			return c, err
		}
		c.ID, c.CoverageAmount = fromDB(id), fromDB(coverage)
		c.CoverageStartDate, c.CoverageEndDate = fromDB(start), fromDB(end)
		return c, nil
	},
}

var insuranceClaimsSpec = tableSpec[types.InsuranceClaim]{
	name:    types.InsuranceClaimsTable,
	key:     "claim_id",
	columns: []string{"insurance_id", "claim_amount", "claim_date"},
	keyOf:   func(c types.InsuranceClaim) uint64 { return c.ClaimID },
	values: func(c types.InsuranceClaim) []any {
		return []any{toDB(c.InsuranceID), toDB(c.ClaimAmount), toDB(c.ClaimDate)}
	},
	scan: func(r rowScanner) (types.InsuranceClaim, error) {
		var c types.InsuranceClaim
		var claimID, insuranceID, amount, date int64
		if err := r.Scan(&claimID, &insuranceID, &amount, &date); err != nil {
			return c, err
		}
		c.ClaimID, c.InsuranceID = fromDB(claimID), fromDB(insuranceID)
		c.ClaimAmount, c.ClaimDate = fromDB(amount), fromDB(date)
		return c, nil
	},
}
