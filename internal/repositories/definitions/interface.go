// Package definitions serves the read-only records a battle is built from:
// characters, units and the skill, spell, race and artifact definitions
// they reference.
package definitions

//go:generate mockgen -destination=mock/mock_catalog.go -package=mockdefinitions -source=interface.go

import (
	"context"

	"github.com/KirkDiggler/dnd-battle-engine/internal/domain/records"
)

// Catalog bulk-loads records by id
type Catalog interface {
	// Load returns the requested records. A missing character or unit is a
	// not found error; missing definitions are left out of the library.
	Load(ctx context.Context, q *Query) (*records.Library, error)
	// ListUnits returns every unit ordered by id
	ListUnits(ctx context.Context) ([]*records.Unit, error)
	// Put inserts or replaces every record in lib
	Put(ctx context.Context, lib *records.Library) error
}
