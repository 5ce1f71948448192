// Package memory provides the public API for the in-memory Ledger backend.
package memory

import (
	"github.com/mesh-intelligence/agriledger/internal/memory"
	"github.com/mesh-intelligence/agriledger/pkg/types"
)

// NewBackend creates a new in-memory backend. State is lost when the
// process exits.
func NewBackend() types.Ledger {
	return memory.NewBackend()
}
