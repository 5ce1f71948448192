package cli

import (
	"fmt"

	"github.com/mesh-intelligence/agriledger/pkg/memory"
	"github.com/mesh-intelligence/agriledger/pkg/postgres"
	"github.com/mesh-intelligence/agriledger/pkg/sqlite"
	"github.com/mesh-intelligence/agriledger/pkg/types"
)

// newLedger returns a detached backend for the named backend.
func newLedger(backend string) (types.Ledger, error) {
	switch backend {
	case types.BackendSQLite:
		return sqlite.NewBackend(), nil
	case types.BackendPostgres:
		return postgres.NewBackend(), nil
	case types.BackendMemory:
		return memory.NewBackend(), nil
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrBackendUnknown, backend)
	}
}
