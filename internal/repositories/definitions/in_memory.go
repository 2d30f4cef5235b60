package definitions

import (
	"context"
	"sort"
	"sync"

	"github.com/KirkDiggler/dnd-battle-engine/internal/domain/records"
	dnderr "github.com/KirkDiggler/dnd-battle-engine/internal/errors"
)

// InMemoryCatalog keeps every record in a library. Records are shared, not
// copied; nothing downstream writes them.
type InMemoryCatalog struct {
	mu  sync.RWMutex
	lib *records.Library
}

// NewInMemoryCatalog creates a catalog seeded with seed, which may be nil
func NewInMemoryCatalog(seed *records.Library) *InMemoryCatalog {
	lib := records.NewLibrary()
	lib.Merge(seed)
	return &InMemoryCatalog{lib: lib}
}

func pick[V any](src map[string]V, ids []string, dst map[string]V) {
	for _, id := range ids {
		if v, ok := src[id]; ok {
			dst[id] = v
		}
	}
}

// Load returns the requested records
func (c *InMemoryCatalog) Load(_ context.Context, q *Query) (*records.Library, error) {
	if q == nil {
		return nil, dnderr.InvalidArgument("query is required")
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := records.NewLibrary()
	pick(c.lib.Characters, q.CharacterIDs, out.Characters)
	pick(c.lib.Units, q.UnitIDs, out.Units)
	pick(c.lib.Skills, q.SkillIDs, out.Skills)
	pick(c.lib.MainSkills, q.MainSkillIDs, out.MainSkills)
	pick(c.lib.Spells, q.SpellIDs, out.Spells)
	pick(c.lib.Races, q.RaceIDs, out.Races)
	pick(c.lib.Artifacts, q.ArtifactIDs, out.Artifacts)

	if err := requireSources(q, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListUnits returns every unit ordered by id
func (c *InMemoryCatalog) ListUnits(_ context.Context) ([]*records.Unit, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	units := make([]*records.Unit, 0, len(c.lib.Units))
	for _, u := range c.lib.Units {
		units = append(units, u)
	}
	sort.Slice(units, func(i, j int) bool { return units[i].ID < units[j].ID })
	return units, nil
}

// Put merges lib into the catalog
func (c *InMemoryCatalog) Put(_ context.Context, lib *records.Library) error {
	if lib == nil {
		return dnderr.InvalidArgument("library is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lib.Merge(lib)
	return nil
}
