package memory

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/agriledger/pkg/types"
)

func attached(t *testing.T) *Backend {
	t.Helper()
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendMemory}))
	t.Cleanup(func() { _ = b.Detach() })
	return b
}

func TestBackend_AttachDetach(t *testing.T) {
	b := NewBackend()

	assert.ErrorIs(t, b.Attach(types.Config{}), types.ErrBackendEmpty)
	assert.ErrorIs(t, b.Attach(types.Config{Backend: types.BackendSQLite}), types.ErrBackendUnknown)

	require.NoError(t, b.Attach(types.Config{Backend: types.BackendMemory}))
	assert.ErrorIs(t, b.Attach(types.Config{Backend: types.BackendMemory}), types.ErrAlreadyAttached)

	require.NoError(t, b.Detach())
	require.NoError(t, b.Detach(), "Detach must be idempotent")

	_, err := b.Debts().Get(1)
	assert.ErrorIs(t, err, types.ErrLedgerDetached)
	assert.ErrorIs(t, b.Debts().Set(1, types.Debt{ID: 1}), types.ErrLedgerDetached)
	_, err = b.Counter().Next()
	assert.ErrorIs(t, err, types.ErrLedgerDetached)
	_, err = b.Counter().Current()
	assert.ErrorIs(t, err, types.ErrLedgerDetached)
}

func TestTable_GetSetUpsert(t *testing.T) {
	b := attached(t)

	_, err := b.Escrows().Get(1)
	assert.ErrorIs(t, err, types.ErrRecordNotFound)

	require.NoError(t, b.Escrows().Set(1, types.Escrow{DebtID: 1, Amount: 50, CreatedAt: 10}))
	require.NoError(t, b.Escrows().Set(1, types.Escrow{DebtID: 1, Amount: 75, CreatedAt: 20}))

	got, err := b.Escrows().Get(1)
	require.NoError(t, err)
	assert.Equal(t, types.Escrow{DebtID: 1, Amount: 75, CreatedAt: 20}, got)
}

func TestTable_RecordTooLarge(t *testing.T) {
	b := attached(t)

	debt := types.Debt{ID: 1, Debtor: strings.Repeat("x", types.MaxRecordSize), Creditor: "b", Amount: 1}
	assert.ErrorIs(t, b.Debts().Set(1, debt), types.ErrRecordTooLarge)

	_, err := b.Debts().Get(1)
	assert.ErrorIs(t, err, types.ErrRecordNotFound)
}

func TestTables_AreIndependent(t *testing.T) {
	b := attached(t)

	require.NoError(t, b.Debts().Set(3, types.Debt{ID: 3, Debtor: "a", Creditor: "b", Amount: 1}))

	_, err := b.CropInsurance().Get(3)
	assert.ErrorIs(t, err, types.ErrRecordNotFound)
	_, err = b.Claims().Get(3)
	assert.ErrorIs(t, err, types.ErrRecordNotFound)
}

func TestCounter_Monotonic(t *testing.T) {
	b := attached(t)

	cur, err := b.Counter().Current()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), cur)

	var prev uint64
	for i := 0; i < 100; i++ {
		id, err := b.Counter().Next()
		require.NoError(t, err)
		assert.Greater(t, id, prev)
		prev = id
	}
	assert.Equal(t, uint64(100), prev)
}

func TestCounter_Exhausted(t *testing.T) {
	b := attached(t)
	b.lastID = math.MaxUint64

	_, err := b.Counter().Next()
	assert.ErrorIs(t, err, types.ErrIDSpaceExhausted)

	cur, err := b.Counter().Current()
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), cur)
}

func TestBackend_StateSurvivesReattach(t *testing.T) {
	b := NewBackend()
	cfg := types.Config{Backend: types.BackendMemory}
	require.NoError(t, b.Attach(cfg))
	id, err := b.Counter().Next()
	require.NoError(t, err)
	require.NoError(t, b.Debts().Set(id, types.Debt{ID: id, Debtor: "a", Creditor: "b", Amount: 9}))
	require.NoError(t, b.Detach())

	require.NoError(t, b.Attach(cfg))
	defer b.Detach()
	got, err := b.Debts().Get(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), got.Amount)
	next, err := b.Counter().Next()
	require.NoError(t, err)
	assert.Equal(t, id+1, next)
}
