package postgres

import (
	"database/sql"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/agriledger/pkg/types"
)

const testDSN = "postgres://localhost/agriledger?sslmode=disable"

func postgresConfig() types.Config {
	return types.Config{
		Backend:        types.BackendPostgres,
		PostgresConfig: &types.PostgresConfig{DSN: testDSN},
	}
}

func overrideSQLOpen(t *testing.T, fn func(driver, dsn string) (*sql.DB, error)) {
	t.Helper()
	prev := sqlOpen
	sqlOpen = fn
	t.Cleanup(func() { sqlOpen = prev })
}

func expectSchema(mock sqlmock.Sqlmock) {
	for _, stmt := range schemaDDL {
		mock.ExpectExec(stmt).WillReturnResult(sqlmock.NewResult(0, 0))
	}
}

// attachMock attaches a backend to a sqlmock database with the schema
// statements already expected.
func attachMock(t *testing.T) (*Backend, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	overrideSQLOpen(t, func(driver, dsn string) (*sql.DB, error) {
		assert.Equal(t, driverName, driver)
		assert.Equal(t, testDSN, dsn)
		return db, nil
	})
	expectSchema(mock)

	b := NewBackend()
	require.NoError(t, b.Attach(postgresConfig()))
	return b, mock
}

func TestAttachAppliesSchema(t *testing.T) {
	b, mock := attachMock(t)

	mock.ExpectClose()
	require.NoError(t, b.Detach())
	require.NoError(t, b.Detach(), "second Detach should not error")

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestAttachErrors(t *testing.T) {
	t.Run("missing dsn", func(t *testing.T) {
		err := NewBackend().Attach(types.Config{Backend: types.BackendPostgres})
		assert.ErrorIs(t, err, types.ErrPostgresDSNEmpty)
	})

	t.Run("wrong backend", func(t *testing.T) {
		err := NewBackend().Attach(types.Config{Backend: types.BackendMemory})
		assert.ErrorIs(t, err, types.ErrBackendUnknown)
	})

	t.Run("open failure", func(t *testing.T) {
		openErr := errors.New("boom")
		overrideSQLOpen(t, func(string, string) (*sql.DB, error) { return nil, openErr })
		err := NewBackend().Attach(postgresConfig())
		assert.ErrorIs(t, err, openErr)
	})

	t.Run("ddl failure", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		require.NoError(t, err)
		overrideSQLOpen(t, func(string, string) (*sql.DB, error) { return db, nil })
		ddlErr := errors.New("permission denied")
		mock.ExpectExec(createDebts).WillReturnError(ddlErr)
		mock.ExpectClose()

		b := NewBackend()
		err = b.Attach(postgresConfig())
		assert.ErrorIs(t, err, ddlErr)

		_, err = b.Debts().Get(1)
		assert.ErrorIs(t, err, types.ErrLedgerDetached)
	})

	t.Run("already attached", func(t *testing.T) {
		b, _ := attachMock(t)
		assert.ErrorIs(t, b.Attach(postgresConfig()), types.ErrAlreadyAttached)
	})
}

func TestDebtsSetUpserts(t *testing.T) {
	b, mock := attachMock(t)

	mock.ExpectExec(debtsSpec.upsertSQL()).
		WithArgs(int64(1), "alice", "bob", int64(100), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := b.Debts().Set(1, types.Debt{ID: 1, Debtor: "alice", Creditor: "bob", Amount: 100, CreatedAt: 7})
	require.NoError(t, err)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUpsertSQL(t *testing.T) {
	assert.Equal(t,
		"INSERT INTO escrows (debt_id, amount, created_at) VALUES ($1, $2, $3) ON CONFLICT (debt_id) DO UPDATE SET amount = EXCLUDED.amount, created_at = EXCLUDED.created_at",
		escrowsSpec.upsertSQL())
	assert.Equal(t,
		"SELECT claim_id, insurance_id, claim_amount, claim_date FROM insurance_claims WHERE claim_id = $1",
		insuranceClaimsSpec.selectSQL())
}

func TestDebtsGet(t *testing.T) {
	b, mock := attachMock(t)

	mock.ExpectQuery(debtsSpec.selectSQL()).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "debtor", "creditor", "amount", "created_at"}).
			AddRow(int64(1), "alice", "bob", int64(-1), int64(7)))

	got, err := b.Debts().Get(1)
	require.NoError(t, err)
	assert.Equal(t, types.Debt{ID: 1, Debtor: "alice", Creditor: "bob", Amount: math.MaxUint64, CreatedAt: 7}, got)
}

func TestGetNotFound(t *testing.T) {
	b, mock := attachMock(t)

	mock.ExpectQuery(cropInsuranceSpec.selectSQL()).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "farmer", "crop_type", "coverage_amount", "coverage_start_date", "coverage_end_date"}))

	_, err := b.CropInsurance().Get(9)
	assert.ErrorIs(t, err, types.ErrRecordNotFound)
}

func TestGetQueryError(t *testing.T) {
	b, mock := attachMock(t)

	queryErr := errors.New("connection reset")
	mock.ExpectQuery(escrowsSpec.selectSQL()).WithArgs(int64(3)).WillReturnError(queryErr)

	_, err := b.Escrows().Get(3)
	assert.ErrorIs(t, err, queryErr)
	assert.NotErrorIs(t, err, types.ErrRecordNotFound)
}

func TestSetRecordTooLarge(t *testing.T) {
	b, mock := attachMock(t)

	claim := types.InsuranceClaim{ClaimID: 1}

	policy := types.CropInsurance{ID: 2, Farmer: strings.Repeat("f", types.MaxRecordSize), CropType: "rice", CoverageAmount: 1}
	assert.ErrorIs(t, b.CropInsurance().Set(2, policy), types.ErrRecordTooLarge)

	mock.ExpectExec(insuranceClaimsSpec.upsertSQL()).
		WithArgs(int64(1), int64(0), int64(0), int64(0)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, b.Claims().Set(1, claim))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCounterNext(t *testing.T) {
	b, mock := attachMock(t)

	mock.ExpectQuery(nextCounterSQL).WithArgs(idCounterName).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(int64(1)))
	mock.ExpectQuery(nextCounterSQL).WithArgs(idCounterName).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(int64(2)))

	first, err := b.Counter().Next()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), first)

	second, err := b.Counter().Next()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), second)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestCounterNextIsOneStatement(t *testing.T) {
	// The first allocation must not depend on a row lock that an absent row
	// cannot provide.
	assert.Contains(t, nextCounterSQL, "ON CONFLICT (name) DO UPDATE")
	assert.Contains(t, nextCounterSQL, "RETURNING value")
	assert.NotContains(t, nextCounterSQL, "FOR UPDATE")
}

func TestCounterNextAboveInt64(t *testing.T) {
	b, mock := attachMock(t)

	mock.ExpectQuery(nextCounterSQL).WithArgs(idCounterName).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(int64(math.MinInt64)))

	next, err := b.Counter().Next()
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxInt64)+1, next)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCounterExhausted(t *testing.T) {
	b, mock := attachMock(t)

	mock.ExpectQuery(nextCounterSQL).WithArgs(idCounterName).
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	_, err := b.Counter().Next()
	assert.ErrorIs(t, err, types.ErrIDSpaceExhausted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCounterNextQueryError(t *testing.T) {
	b, mock := attachMock(t)

	mock.ExpectQuery(nextCounterSQL).WithArgs(idCounterName).
		WillReturnError(errors.New("connection reset"))

	_, err := b.Counter().Next()
	require.Error(t, err)
	assert.NotErrorIs(t, err, types.ErrIDSpaceExhausted)
	assert.Contains(t, err.Error(), "advance counter")
}

func TestCounterCurrent(t *testing.T) {
	b, mock := attachMock(t)

	mock.ExpectQuery(selectCounterSQL).WithArgs(idCounterName).
		WillReturnRows(sqlmock.NewRows([]string{"value"}))
	mock.ExpectQuery(selectCounterSQL).WithArgs(idCounterName).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(int64(42)))

	cur, err := b.Counter().Current()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), cur)

	cur, err = b.Counter().Current()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), cur)
}

func TestOperationsAfterDetach(t *testing.T) {
	b, mock := attachMock(t)
	mock.ExpectClose()
	require.NoError(t, b.Detach())

	_, err := b.Debts().Get(1)
	assert.ErrorIs(t, err, types.ErrLedgerDetached)
	assert.ErrorIs(t, b.Escrows().Set(1, types.Escrow{DebtID: 1}), types.ErrLedgerDetached)
	_, err = b.Counter().Next()
	assert.ErrorIs(t, err, types.ErrLedgerDetached)
	_, err = b.Counter().Current()
	assert.ErrorIs(t, err, types.ErrLedgerDetached)
}
