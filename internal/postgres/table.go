package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/agriledger/pkg/types"
)

type rowScanner interface {
	Scan(dest ...any) error
}

// tableSpec maps one record kind onto a Postgres table.
type tableSpec[T any] struct {
	name    string
	key     string
	columns []string
	values  func(T) []any
	scan    func(rowScanner) (T, error)
}

func (s tableSpec[T]) selectSQL() string {
	return fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s = $1",
		s.key, strings.Join(s.columns, ", "), s.name, s.key)
}

func (s tableSpec[T]) upsertSQL() string {
	placeholders := make([]string, len(s.columns)+1)
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	updates := make([]string, len(s.columns))
	for i, c := range s.columns {
		updates[i] = fmt.Sprintf("%s = EXCLUDED.%s", c, c)
	}
	return fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		s.name, s.key, strings.Join(s.columns, ", "),
		strings.Join(placeholders, ", "), s.key, strings.Join(updates, ", "))
}

// table implements types.Table[T] with one row per record.
type table[T any] struct {
	def     tableSpec[T]
	backend *Backend
}

func (t *table[T]) Get(id uint64) (T, error) {
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()

	var zero T
	if !t.backend.attached {
		return zero, types.ErrLedgerDetached
	}
	row := t.backend.db.QueryRowContext(context.Background(), t.def.selectSQL(), toDB(id))
	rec, err := t.def.scan(row)
	if err == sql.ErrNoRows {
		return zero, types.ErrRecordNotFound
	}
	if err != nil {
		return zero, fmt.Errorf("select %s %d: %w", t.def.name, id, err)
	}
	return rec, nil
}

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
	if _, err := t.backend.db.ExecContext(context.Background(), t.def.upsertSQL(), args...); err != nil {
		return fmt.Errorf("upsert %s %d: %w", t.def.name, id, err)
	}
	return nil
}

var debtsSpec = tableSpec[types.Debt]{
	name:    types.DebtsTable,
	key:     "id",
	columns: []string{"debtor", "creditor", "amount", "created_at"},
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
