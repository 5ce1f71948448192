// Package memory implements an in-process Ledger backend. State lives in
// maps owned by the Backend and survives Detach/Attach cycles for the
// lifetime of the process, but not a restart.
package memory

import (
	"math"
	"sync"

	"github.com/mesh-intelligence/agriledger/pkg/types"
)

var _ types.Ledger = (*Backend)(nil)

// Backend implements types.Ledger with plain maps guarded by one RWMutex.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	lastID   uint64

	debts     *table[types.Debt]
	escrows   *table[types.Escrow]
	insurance *table[types.CropInsurance]
	claims    *table[types.InsuranceClaim]
}

// NewBackend creates an empty, detached memory backend.
func NewBackend() *Backend {
	b := &Backend{}
	b.debts = newTable[types.Debt](b)
	b.escrows = newTable[types.Escrow](b)
	b.insurance = newTable[types.CropInsurance](b)
	b.claims = newTable[types.InsuranceClaim](b)
	return b
}

// Attach marks the backend usable. The config must name the memory backend.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}
	if config.Backend != types.BackendMemory {
		return types.ErrBackendUnknown
	}
	b.attached = true
	return nil
}

// Detach is idempotent. Stored records are kept for a later Attach.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attached = false
	return nil
}

func (b *Backend) Debts() types.Table[types.Debt]                  { return b.debts }
func (b *Backend) Escrows() types.Table[types.Escrow]              { return b.escrows }
func (b *Backend) CropInsurance() types.Table[types.CropInsurance] { return b.insurance }
func (b *Backend) Claims() types.Table[types.InsuranceClaim]       { return b.claims }
func (b *Backend) Counter() types.Counter                          { return (*counter)(b) }

// counter shares the backend's lock and attachment state.
type counter Backend

func (c *counter) Next() (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.attached {
		return 0, types.ErrLedgerDetached
	}
	if c.lastID == math.MaxUint64 {
		return 0, types.ErrIDSpaceExhausted
	}
	c.lastID++
	return c.lastID, nil
}

func (c *counter) Current() (uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.attached {
		return 0, types.ErrLedgerDetached
	}
	return c.lastID, nil
}

// table is an upsert-only map for one record kind.
type table[T any] struct {
	backend *Backend
	rows    map[uint64]T
}

func newTable[T any](b *Backend) *table[T] {
	return &table[T]{backend: b, rows: make(map[uint64]T)}
}

func (t *table[T]) Get(id uint64) (T, error) {
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()

	var zero T
	if !t.backend.attached {
		return zero, types.ErrLedgerDetached
	}
	rec, ok := t.rows[id]
	if !ok {
		return zero, types.ErrRecordNotFound
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
	t.rows[id] = record
	return nil
}
