package definitions

import (
	"context"
	"sort"

	"github.com/KirkDiggler/dnd-battle-engine/internal/domain/records"
	dnderr "github.com/KirkDiggler/dnd-battle-engine/internal/errors"
)

// Kind names one record table
type Kind string

const (
	KindCharacter Kind = "character"
	KindUnit      Kind = "unit"
	KindSkill     Kind = "skill"
	KindMainSkill Kind = "main_skill"
	KindSpell     Kind = "spell"
	KindRace      Kind = "race"
	KindArtifact  Kind = "artifact"
)

// Kinds lists every kind in load order
var Kinds = []Kind{KindCharacter, KindUnit, KindSkill, KindMainSkill, KindSpell, KindRace, KindArtifact}

// Query names the records to load, per kind
type Query struct {
	CharacterIDs []string
	UnitIDs      []string
	SkillIDs     []string
	MainSkillIDs []string
	SpellIDs     []string
	RaceIDs      []string
	ArtifactIDs  []string
}

// IDs returns the ids requested for one kind
func (q *Query) IDs(kind Kind) []string {
	if q == nil {
		return nil
	}
	switch kind {
	case KindCharacter:
		return q.CharacterIDs
	case KindUnit:
		return q.UnitIDs
	case KindSkill:
		return q.SkillIDs
	case KindMainSkill:
		return q.MainSkillIDs
	case KindSpell:
		return q.SpellIDs
	case KindRace:
		return q.RaceIDs
	case KindArtifact:
		return q.ArtifactIDs
	}
	return nil
}

// Empty reports whether the query asks for nothing
func (q *Query) Empty() bool {
	for _, kind := range Kinds {
		if len(q.IDs(kind)) > 0 {
			return false
		}
	}
	return true
}

// Sources builds a query for the given source records
func Sources(sources ...records.Source) *Query {
	q := &Query{}
	for _, src := range sources {
		switch src.Kind {
		case records.SourceCharacter:
			q.CharacterIDs = append(q.CharacterIDs, src.ID())
		case records.SourceUnit:
			q.UnitIDs = append(q.UnitIDs, src.ID())
		}
	}
	return q
}

type idSet map[string]bool

func (s idSet) add(id string) {
	if id != "" {
		s[id] = true
	}
}

func (s idSet) missing(have func(string) bool) []string {
	var out []string
	for id := range s {
		if !have(id) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// References returns the definitions lib refers to but does not hold yet
func References(lib *records.Library) *Query {
	races, artifacts, skills, mainSkills, spells := idSet{}, idSet{}, idSet{}, idSet{}, idSet{}

	for _, c := range lib.Characters {
		races.add(c.RaceID)
		for _, id := range c.Equipped {
			artifacts.add(id)
		}
		for _, id := range c.KnownSpells {
			spells.add(id)
		}
		for tree, progress := range c.SkillProgress {
			mainSkills.add(tree)
			for _, id := range progress.UnlockedSkills {
				skills.add(id)
			}
		}
	}
	for _, u := range lib.Units {
		races.add(u.RaceID)
		for _, id := range u.Equipped {
			artifacts.add(id)
		}
	}
	for _, s := range lib.Skills {
		mainSkills.add(s.MainSkillID)
		if enh := s.SpellEnhancement; enh != nil {
			spells.add(enh.SpellID)
			spells.add(enh.GrantedSpellID)
		}
	}

	return &Query{
		RaceIDs:      races.missing(func(id string) bool { return lib.Races[id] != nil }),
		ArtifactIDs:  artifacts.missing(func(id string) bool { return lib.Artifacts[id] != nil }),
		SkillIDs:     skills.missing(func(id string) bool { return lib.Skills[id] != nil }),
		MainSkillIDs: mainSkills.missing(func(id string) bool { return lib.MainSkills[id] != nil }),
		SpellIDs:     spells.missing(func(id string) bool { return lib.Spells[id] != nil }),
	}
}

// maxClosureDepth bounds LoadWithReferences; records reference at most
// three levels deep (character, skill, main skill)
const maxClosureDepth = 4

// LoadWithReferences loads q and then every definition the loaded records
// reference, until nothing new turns up
func LoadWithReferences(ctx context.Context, catalog Catalog, q *Query) (*records.Library, error) {
	lib, err := catalog.Load(ctx, q)
	if err != nil {
		return nil, err
	}

	for depth := 0; depth < maxClosureDepth; depth++ {
		refs := References(lib)
		if refs.Empty() {
			break
		}
		defs, err := catalog.Load(ctx, refs)
		if err != nil {
			return nil, dnderr.Wrap(err, "failed to load referenced definitions")
		}
		before := count(lib)
		lib.Merge(defs)
		if count(lib) == before {
			// the rest are stale references
			break
		}
	}
	return lib, nil
}

func count(lib *records.Library) int {
	return len(lib.Characters) + len(lib.Units) + len(lib.Skills) + len(lib.MainSkills) +
		len(lib.Spells) + len(lib.Races) + len(lib.Artifacts)
}

// requireSources fails when a requested character or unit is absent
func requireSources(q *Query, lib *records.Library) error {
	for _, id := range q.IDs(KindCharacter) {
		if lib.Characters[id] == nil {
			return dnderr.NotFoundf("character with ID '%s' not found", id).
				WithMeta("character_id", id)
		}
	}
	for _, id := range q.IDs(KindUnit) {
		if lib.Units[id] == nil {
			return dnderr.NotFoundf("unit with ID '%s' not found", id).
				WithMeta("unit_id", id)
		}
	}
	return nil
}
