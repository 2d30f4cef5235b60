package battles

//go:generate mockgen -destination=mock/mock.go -package=mockbattles -source=interface.go

import (
	"context"

	"github.com/KirkDiggler/dnd-battle-engine/internal/domain/battle"
)

// Repository persists battle snapshots. Callers serialize writes per battle;
// the repository itself does not arbitrate concurrent updates.
type Repository interface {
	// Create stores a new battle
	Create(ctx context.Context, b *battle.Battle) error

	// Get retrieves a battle by ID
	Get(ctx context.Context, id string) (*battle.Battle, error)

	// Update replaces a stored battle
	Update(ctx context.Context, b *battle.Battle) error

	// Delete removes a battle
	Delete(ctx context.Context, id string) error

	// ListActive returns the ids of battles that are still being fought
	ListActive(ctx context.Context) ([]string, error)
}
