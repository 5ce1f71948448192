// Package postgres provides the public API for the Postgres Ledger backend.
package postgres

import (
	"github.com/mesh-intelligence/agriledger/internal/postgres"
	"github.com/mesh-intelligence/agriledger/pkg/types"
)

// NewBackend creates a new Postgres backend instance.
// The backend is not attached; call Attach with a Config whose
// PostgresConfig carries the DSN.
func NewBackend() types.Ledger {
	return postgres.NewBackend()
}
