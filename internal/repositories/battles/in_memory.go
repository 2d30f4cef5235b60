package battles

import (
	"context"
	"sort"
	"sync"

	"github.com/KirkDiggler/dnd-battle-engine/internal/domain/battle"
	dnderr "github.com/KirkDiggler/dnd-battle-engine/internal/errors"
)

type inMemoryRepository struct {
	mu      sync.RWMutex
	battles map[string]*battle.Battle
}

// NewInMemoryRepository creates a new in-memory battle repository. Stored
// battles are cloned on the way in and out.
func NewInMemoryRepository() Repository {
	return &inMemoryRepository{
		battles: make(map[string]*battle.Battle),
	}
}

func (r *inMemoryRepository) Create(ctx context.Context, b *battle.Battle) error {
	if err := validate(b); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.battles[b.ID]; exists {
		return dnderr.AlreadyExistsf("battle with ID '%s' already exists", b.ID).
			WithMeta("battle_id", b.ID)
	}
	r.battles[b.ID] = b.Clone()
	return nil
}

func (r *inMemoryRepository) Get(ctx context.Context, id string) (*battle.Battle, error) {
	if id == "" {
		return nil, dnderr.InvalidArgument("battle ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	b, exists := r.battles[id]
	if !exists {
		return nil, dnderr.NotFoundf("battle with ID '%s' not found", id).
			WithMeta("battle_id", id)
	}
	return b.Clone(), nil
}

func (r *inMemoryRepository) Update(ctx context.Context, b *battle.Battle) error {
	if err := validate(b); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.battles[b.ID]; !exists {
		return dnderr.NotFoundf("battle with ID '%s' not found", b.ID).
			WithMeta("battle_id", b.ID)
	}
	r.battles[b.ID] = b.Clone()
	return nil
}

func (r *inMemoryRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dnderr.InvalidArgument("battle ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.battles[id]; !exists {
		return dnderr.NotFoundf("battle with ID '%s' not found", id).
			WithMeta("battle_id", id)
	}
	delete(r.battles, id)
	return nil
}

func (r *inMemoryRepository) ListActive(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []string
	for id, b := range r.battles {
		if b.Status == battle.BattleStatusActive {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func validate(b *battle.Battle) error {
	if b == nil {
		return dnderr.InvalidArgument("battle cannot be nil")
	}
	if b.ID == "" {
		return dnderr.InvalidArgument("battle ID is required")
	}
	return nil
}
