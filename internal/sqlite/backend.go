package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/agriledger/pkg/types"
)

// dbFileName is the SQLite file created inside DataDir. It is rebuilt from
// the JSONL files on every Attach.
const dbFileName = "ledger.db"

var _ types.Ledger = (*Backend)(nil)

// Backend implements the Ledger interface using SQLite as the query engine
// and JSONL files as the source of truth.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	dataDir  string
	db       *sql.DB

	debts     *table[types.Debt]
	escrows   *table[types.Escrow]
	insurance *table[types.CropInsurance]
	claims    *table[types.InsuranceClaim]
	counter   *counter

	// Sync strategy state.
	syncStrategy  string         // effective sync strategy: immediate, on_close, batch
	batchSize     int            // number of queued writes before a batch flush
	batchInterval time.Duration  // time between batch flushes
	pendingWrites []pendingWrite // queue of writes pending JSONL persist
	batchTimer    *time.Timer    // timer for interval-based batch flush
	batchMu       sync.Mutex     // protects pendingWrites and batchTimer
}

// pendingWrite is a deferred JSONL rewrite used by the on_close and batch
// sync strategies. A rewrite dumps the whole table, so one pending write per
// table is enough.
type pendingWrite struct {
	tableName string
	persist   func() error
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	backend := sqlite.NewBackend()
//	err := backend.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".agriledger-db",
//	})
//	defer backend.Detach()
func NewBackend() *Backend {
	b := &Backend{}
	b.debts = newTable(b, debtsSpec)
	b.escrows = newTable(b, escrowsSpec)
	b.insurance = newTable(b, cropInsuranceSpec)
	b.claims = newTable(b, insuranceClaimsSpec)
	b.counter = &counter{backend: b}
	return b
}

func (b *Backend) Debts() types.Table[types.Debt]                  { return b.debts }
func (b *Backend) Escrows() types.Table[types.Escrow]              { return b.escrows }
func (b *Backend) CropInsurance() types.Table[types.CropInsurance] { return b.insurance }
func (b *Backend) Claims() types.Table[types.InsuranceClaim]       { return b.claims }
func (b *Backend) Counter() types.Counter                          { return b.counter }

// Attach initializes the backend with the given configuration.
// Creates DataDir if it does not exist, builds a fresh SQLite schema, creates
// missing JSONL files, and loads every JSONL file into SQLite.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}
	if config.Backend != types.BackendSQLite {
		return types.ErrBackendUnknown
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	// The JSONL files are authoritative; start from an empty database.
	dbPath := filepath.Join(dataDir, dbFileName)
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}
	// SQLite has a single writer; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	for _, stmt := range schemaDDL {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return fmt.Errorf("applying schema: %w", err)
		}
	}

	b.db = db
	b.config = config
	b.dataDir = dataDir

	if err := b.initJSONLFiles(); err != nil {
		db.Close()
		return err
	}
	if err := b.loadAllJSONL(); err != nil {
		db.Close()
		return fmt.Errorf("load JSONL: %w", err)
	}

	b.syncStrategy = config.SQLiteConfig.GetSyncStrategy()
	b.batchSize = config.SQLiteConfig.GetBatchSize()
	b.batchInterval = time.Duration(config.SQLiteConfig.GetBatchInterval()) * time.Second
	b.pendingWrites = nil

	b.attached = true

	if b.syncStrategy == types.SyncBatch && b.batchInterval > 0 {
		b.startBatchTimer()
	}
	return nil
}

// Detach releases all resources held by the backend. Pending JSONL writes
// are flushed first. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	b.stopBatchTimer()

	if err := b.flushPendingWritesLocked(); err != nil {
		return fmt.Errorf("flush pending writes: %w", err)
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}

	b.attached = false
	return nil
}

// persist rewrites the JSONL file for name from dump, either now or through
// the pending-write queue depending on the sync strategy.
// The caller must hold b.mu.
func (b *Backend) persist(name string, dump func() ([]json.RawMessage, error)) error {
	write := func() error {
		records, err := dump()
		if err != nil {
			return err
		}
		if err := writeJSONL(jsonlPath(b.dataDir, name), records); err != nil {
			return fmt.Errorf("persisting %s.jsonl: %w", name, err)
		}
		return nil
	}
	if b.shouldPersistImmediately() {
		return write()
	}
	return b.queueWrite(name, write)
}

// shouldPersistImmediately returns true for the immediate strategy.
func (b *Backend) shouldPersistImmediately() bool {
	return b.syncStrategy == types.SyncImmediate || b.syncStrategy == ""
}

// queueWrite adds a write to the pending queue unless one is already queued
// for the same table. For the batch strategy the queue is flushed once it
// reaches batchSize. The caller must hold b.mu.
func (b *Backend) queueWrite(tableName string, persist func() error) error {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	for _, pw := range b.pendingWrites {
		if pw.tableName == tableName {
			return nil
		}
	}
	b.pendingWrites = append(b.pendingWrites, pendingWrite{tableName: tableName, persist: persist})

	if b.syncStrategy == types.SyncBatch && b.batchSize > 0 && len(b.pendingWrites) >= b.batchSize {
		return b.flushPendingWritesBatchLocked()
	}
	return nil
}

// flushPendingWritesLocked flushes all pending writes to JSONL files.
// The caller must hold b.mu.
func (b *Backend) flushPendingWritesLocked() error {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	return b.flushPendingWritesBatchLocked()
}

// flushPendingWritesBatchLocked executes all pending writes. On failure the
// remaining writes stay queued for the next flush.
// The caller must hold b.batchMu.
func (b *Backend) flushPendingWritesBatchLocked() error {
	for len(b.pendingWrites) > 0 {
		pw := b.pendingWrites[0]
		if err := pw.persist(); err != nil {
			return fmt.Errorf("flush %s: %w", pw.tableName, err)
		}
		b.pendingWrites = b.pendingWrites[1:]
	}
	b.pendingWrites = nil
	return nil
}

// pendingCount reports the number of queued writes.
func (b *Backend) pendingCount() int {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()
	return len(b.pendingWrites)
}

// startBatchTimer starts the batch interval timer for periodic flushes.
func (b *Backend) startBatchTimer() {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	if b.batchTimer != nil {
		return
	}

	b.batchTimer = time.AfterFunc(b.batchInterval, func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		if !b.attached {
			return
		}

		_ = b.flushPendingWritesLocked()

		b.batchMu.Lock()
		if b.batchTimer != nil {
			b.batchTimer.Reset(b.batchInterval)
		}
		b.batchMu.Unlock()
	})
}

// stopBatchTimer stops the batch interval timer if running.
func (b *Backend) stopBatchTimer() {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	if b.batchTimer != nil {
		b.batchTimer.Stop()
		b.batchTimer = nil
	}
}
