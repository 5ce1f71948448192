package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"github.com/mesh-intelligence/agriledger/pkg/types"
)

const driverName = "pgx"

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

var _ types.Ledger = (*Backend)(nil)

// Backend implements the Ledger interface on a Postgres database.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	db       *sql.DB

	debts     *table[types.Debt]
	escrows   *table[types.Escrow]
	insurance *table[types.CropInsurance]
	claims    *table[types.InsuranceClaim]
	counter   *counter
}

// NewBackend creates a detached Postgres backend.
func NewBackend() *Backend {
	b := &Backend{}
	b.debts = &table[types.Debt]{def: debtsSpec, backend: b}
	b.escrows = &table[types.Escrow]{def: escrowsSpec, backend: b}
	b.insurance = &table[types.CropInsurance]{def: cropInsuranceSpec, backend: b}
	b.claims = &table[types.InsuranceClaim]{def: insuranceClaimsSpec, backend: b}
	b.counter = &counter{backend: b}
	return b
}

func (b *Backend) Debts() types.Table[types.Debt]                  { return b.debts }
func (b *Backend) Escrows() types.Table[types.Escrow]              { return b.escrows }
func (b *Backend) CropInsurance() types.Table[types.CropInsurance] { return b.insurance }
func (b *Backend) Claims() types.Table[types.InsuranceClaim]       { return b.claims }
func (b *Backend) Counter() types.Counter                          { return b.counter }

// Attach opens the database named by config.PostgresConfig.DSN, checks the
// connection, and creates any missing tables.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}
	if config.Backend != types.BackendPostgres {
		return types.ErrBackendUnknown
	}

	openMu.Lock()
	db, err := sqlOpen(driverName, config.PostgresConfig.DSN)
	openMu.Unlock()
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("ping postgres: %w", err)
	}
	for _, stmt := range schemaDDL {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return fmt.Errorf("execute ddl: %w", err)
		}
	}

	b.db = db
	b.attached = true
	return nil
}

// Detach closes the database handle. Idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	b.attached = false
	db := b.db
	b.db = nil
	return db.Close()
}
