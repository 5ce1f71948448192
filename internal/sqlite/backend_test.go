// Tests for the SQLite backend lifecycle, tables and counter.
package sqlite

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/agriledger/pkg/types"
)

func sqliteConfig(dir string) types.Config {
	return types.Config{Backend: types.BackendSQLite, DataDir: dir}
}

func attachTemp(t *testing.T) (*Backend, string) {
	t.Helper()
	dir := t.TempDir()
	b := NewBackend()
	require.NoError(t, b.Attach(sqliteConfig(dir)))
	t.Cleanup(func() { _ = b.Detach() })
	return b, dir
}

func TestBackend_Attach(t *testing.T) {
	tmpDir := t.TempDir()

	b := NewBackend()
	config := sqliteConfig(tmpDir)

	err := b.Attach(config)
	if err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	dbPath := filepath.Join(tmpDir, dbFileName)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("ledger.db not created")
	}

	err = b.Attach(config)
	if err != types.ErrAlreadyAttached {
		t.Errorf("expected ErrAlreadyAttached, got %v", err)
	}

	b.Detach()
}

func TestBackend_AttachRejectsBadConfig(t *testing.T) {
	b := NewBackend()
	assert.ErrorIs(t, b.Attach(types.Config{}), types.ErrBackendEmpty)
	assert.ErrorIs(t, b.Attach(types.Config{Backend: types.BackendMemory}), types.ErrBackendUnknown)
	assert.ErrorIs(t, b.Attach(types.Config{
		Backend:      types.BackendSQLite,
		DataDir:      t.TempDir(),
		SQLiteConfig: &types.SQLiteConfig{SyncStrategy: "never"},
	}), types.ErrSyncStrategyUnknown)
}

func TestBackend_Detach(t *testing.T) {
	b := NewBackend()
	require.NoError(t, b.Attach(sqliteConfig(t.TempDir())))

	require.NoError(t, b.Detach())
	require.NoError(t, b.Detach(), "second Detach should not error")

	_, err := b.Debts().Get(1)
	assert.ErrorIs(t, err, types.ErrLedgerDetached)
	assert.ErrorIs(t, b.Claims().Set(1, types.InsuranceClaim{ClaimID: 1}), types.ErrLedgerDetached)
	_, err = b.Counter().Next()
	assert.ErrorIs(t, err, types.ErrLedgerDetached)
}

func TestDebtsTable_GetSet(t *testing.T) {
	b, _ := attachTemp(t)

	_, err := b.Debts().Get(1)
	require.ErrorIs(t, err, types.ErrRecordNotFound)

	debt := types.Debt{ID: 1, Debtor: "alice", Creditor: "bob", Amount: 100, CreatedAt: 1_700_000_000_000_000_000}
	require.NoError(t, b.Debts().Set(debt.ID, debt))

	got, err := b.Debts().Get(1)
	require.NoError(t, err)
	assert.Equal(t, debt, got)

	debt.Amount = 250
	require.NoError(t, b.Debts().Set(debt.ID, debt))
	got, err = b.Debts().Get(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(250), got.Amount)
}

func TestTables_RoundTripEveryKind(t *testing.T) {
	b, _ := attachTemp(t)

	escrow := types.Escrow{DebtID: 4, Amount: 50, CreatedAt: 11}
	policy := types.CropInsurance{ID: 5, Farmer: "farmerA", CropType: "wheat", CoverageAmount: 1000, CoverageStartDate: 100, CoverageEndDate: 200}
	claim := types.InsuranceClaim{ClaimID: 6, InsuranceID: 5, ClaimAmount: 1500, ClaimDate: 12}

	require.NoError(t, b.Escrows().Set(escrow.DebtID, escrow))
	require.NoError(t, b.CropInsurance().Set(policy.ID, policy))
	require.NoError(t, b.Claims().Set(claim.ClaimID, claim))

	gotEscrow, err := b.Escrows().Get(4)
	require.NoError(t, err)
	assert.Equal(t, escrow, gotEscrow)

	gotPolicy, err := b.CropInsurance().Get(5)
	require.NoError(t, err)
	assert.Equal(t, policy, gotPolicy)

	gotClaim, err := b.Claims().Get(6)
	require.NoError(t, err)
	assert.Equal(t, claim, gotClaim)
}

func TestTables_FullUint64Range(t *testing.T) {
	b, _ := attachTemp(t)

	debt := types.Debt{ID: math.MaxUint64, Debtor: "a", Creditor: "b", Amount: math.MaxUint64, CreatedAt: math.MaxUint64 - 1}
	require.NoError(t, b.Debts().Set(debt.ID, debt))

	got, err := b.Debts().Get(math.MaxUint64)
	require.NoError(t, err)
	assert.Equal(t, debt, got)
}

func TestTable_RecordTooLarge(t *testing.T) {
	b, _ := attachTemp(t)

	debt := types.Debt{ID: 1, Debtor: strings.Repeat("x", types.MaxRecordSize), Creditor: "b", Amount: 1}
	assert.ErrorIs(t, b.Debts().Set(1, debt), types.ErrRecordTooLarge)

	_, err := b.Debts().Get(1)
	assert.ErrorIs(t, err, types.ErrRecordNotFound)
}

func TestCounter_NextAndCurrent(t *testing.T) {
	b, _ := attachTemp(t)

	cur, err := b.Counter().Current()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), cur)

	for want := uint64(1); want <= 5; want++ {
		id, err := b.Counter().Next()
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}

	cur, err = b.Counter().Current()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), cur)
}

func TestCounter_Exhausted(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(jsonlPath(dir, countersFile),
		[]byte(`{"name":"id","value":18446744073709551615}`+"\n"), 0o644))

	b := NewBackend()
	require.NoError(t, b.Attach(sqliteConfig(dir)))
	defer b.Detach()

	_, err := b.Counter().Next()
	assert.ErrorIs(t, err, types.ErrIDSpaceExhausted)
}

func TestBackend_PersistsAcrossReattach(t *testing.T) {
	dir := t.TempDir()

	b := NewBackend()
	require.NoError(t, b.Attach(sqliteConfig(dir)))
	id, err := b.Counter().Next()
	require.NoError(t, err)
	debt := types.Debt{ID: id, Debtor: "alice", Creditor: "bob", Amount: 100, CreatedAt: 42}
	require.NoError(t, b.Debts().Set(id, debt))
	require.NoError(t, b.Escrows().Set(id, types.Escrow{DebtID: id, Amount: 50, CreatedAt: 43}))
	require.NoError(t, b.Detach())

	reopened := NewBackend()
	require.NoError(t, reopened.Attach(sqliteConfig(dir)))
	defer reopened.Detach()

	got, err := reopened.Debts().Get(id)
	require.NoError(t, err)
	assert.Equal(t, debt, got)

	escrow, err := reopened.Escrows().Get(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), escrow.Amount)

	next, err := reopened.Counter().Next()
	require.NoError(t, err)
	assert.Equal(t, id+1, next, "counter must resume after the last issued id")
}

func TestBackend_CounterReconciledWithStoredIDs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(jsonlPath(dir, types.CropInsuranceTable),
		[]byte(`{"id":9,"farmer":"f","crop_type":"rice","coverage_amount":10,"coverage_start_date":0,"coverage_end_date":0}`+"\n"), 0o644))
	require.NoError(t, os.WriteFile(jsonlPath(dir, countersFile),
		[]byte(`{"name":"id","value":3}`+"\n"), 0o644))

	b := NewBackend()
	require.NoError(t, b.Attach(sqliteConfig(dir)))
	defer b.Detach()

	cur, err := b.Counter().Current()
	require.NoError(t, err)
	assert.Equal(t, uint64(9), cur)

	next, err := b.Counter().Next()
	require.NoError(t, err)
	assert.Equal(t, uint64(10), next)
}
