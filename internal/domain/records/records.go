// Package records holds the externally owned source records (characters,
// units) and definition records (skills, spells, races, artifacts) the battle
// engine reads. The engine never writes them.
package records

import (
	"strconv"

	"github.com/KirkDiggler/dnd-battle-engine/internal/domain/stats"
)

// SourceKind tags which record a combatant was built from
type SourceKind string

const (
	SourceCharacter SourceKind = "character"
	SourceUnit      SourceKind = "unit"
)

// SkillProgress is one entry of a character's skill-progress map, keyed by
// main skill (or skill tree) id
type SkillProgress struct {
	Level          int      `json:"level" yaml:"level"`
	UnlockedSkills []string `json:"unlocked_skills" yaml:"unlocked_skills"`
}

// Spellcasting is the caster block of a character
type Spellcasting struct {
	Ability      stats.Attribute `json:"ability" yaml:"ability"`
	SlotsMax     map[int]int     `json:"slots_max" yaml:"slots_max"`
	SlotsCurrent map[int]int     `json:"slots_current,omitempty" yaml:"slots_current,omitempty"`
}

// Character is a player-owned source record
type Character struct {
	ID            string                   `json:"id" yaml:"id"`
	OwnerID       string                   `json:"owner_id" yaml:"owner_id"`
	Name          string                   `json:"name" yaml:"name"`
	Avatar        string                   `json:"avatar,omitempty" yaml:"avatar,omitempty"`
	Level         int                      `json:"level" yaml:"level"`
	RaceID        string                   `json:"race_id" yaml:"race_id"`
	Abilities     stats.Scores             `json:"abilities" yaml:"abilities"`
	HitDie        int                      `json:"hit_die,omitempty" yaml:"hit_die,omitempty"`
	MaxHP         int                      `json:"max_hp" yaml:"max_hp"`
	CurrentHP     int                      `json:"current_hp" yaml:"current_hp"`
	TempHP        int                      `json:"temp_hp" yaml:"temp_hp"`
	ArmorClass    int                      `json:"armor_class" yaml:"armor_class"`
	Speed         int                      `json:"speed" yaml:"speed"`
	Morale        int                      `json:"morale" yaml:"morale"`
	Equipped      map[string]string        `json:"equipped,omitempty" yaml:"equipped,omitempty"`
	KnownSpells   []string                 `json:"known_spells,omitempty" yaml:"known_spells,omitempty"`
	Spellcasting  *Spellcasting            `json:"spellcasting,omitempty" yaml:"spellcasting,omitempty"`
	SkillProgress map[string]SkillProgress `json:"skill_progress,omitempty" yaml:"skill_progress,omitempty"`
}

// Unit is a DM-controlled source record (monsters, NPCs, summons)
type Unit struct {
	ID              string            `json:"id" yaml:"id"`
	Name            string            `json:"name" yaml:"name"`
	Avatar          string            `json:"avatar,omitempty" yaml:"avatar,omitempty"`
	Level           int               `json:"level" yaml:"level"`
	RaceID          string            `json:"race_id,omitempty" yaml:"race_id,omitempty"`
	Abilities       stats.Scores      `json:"abilities" yaml:"abilities"`
	MaxHP           int               `json:"max_hp" yaml:"max_hp"`
	ArmorClass      int               `json:"armor_class" yaml:"armor_class"`
	Speed           int               `json:"speed" yaml:"speed"`
	Morale          int               `json:"morale" yaml:"morale"`
	InitiativeBonus int               `json:"initiative_bonus,omitempty" yaml:"initiative_bonus,omitempty"`
	MinTargets      int               `json:"min_targets,omitempty" yaml:"min_targets,omitempty"`
	MaxTargets      int               `json:"max_targets,omitempty" yaml:"max_targets,omitempty"`
	Equipped        map[string]string `json:"equipped,omitempty" yaml:"equipped,omitempty"`
}

// Source is the tagged union of the two source record shapes. Exactly one of
// Character and Unit is set, matching Kind.
type Source struct {
	Kind      SourceKind
	Character *Character
	Unit      *Unit
}

// CharacterSource wraps a character record
func CharacterSource(c *Character) Source {
	return Source{Kind: SourceCharacter, Character: c}
}

// UnitSource wraps a unit record
func UnitSource(u *Unit) Source {
	return Source{Kind: SourceUnit, Unit: u}
}

// ID returns the id of whichever record is set
func (s Source) ID() string {
	switch s.Kind {
	case SourceCharacter:
		if s.Character != nil {
			return s.Character.ID
		}
	case SourceUnit:
		if s.Unit != nil {
			return s.Unit.ID
		}
	}
	return ""
}

// Modifier is a typed stat modifier carried by skills and artifacts
type Modifier struct {
	Stat       string  `json:"stat" yaml:"stat"`
	Type       string  `json:"type" yaml:"type"`
	Value      float64 `json:"value" yaml:"value"`
	Dice       string  `json:"dice,omitempty" yaml:"dice,omitempty"`
	DamageType string  `json:"damage_type,omitempty" yaml:"damage_type,omitempty"`
	Target     string  `json:"target,omitempty" yaml:"target,omitempty"`
}

// AdditionalModifier is a lingering spell rider such as poison
type AdditionalModifier struct {
	Name       string `json:"name" yaml:"name"`
	DamageType string `json:"damage_type" yaml:"damage_type"`
	Dice       string `json:"dice" yaml:"dice"`
	Duration   int    `json:"duration" yaml:"duration"`
}

// SpellEnhancement is the spell-affecting part of a skill definition
type SpellEnhancement struct {
	SpellID               string              `json:"spell_id,omitempty" yaml:"spell_id,omitempty"`
	EffectIncreasePercent float64             `json:"effect_increase_percent,omitempty" yaml:"effect_increase_percent,omitempty"`
	TargetChange          int                 `json:"target_change,omitempty" yaml:"target_change,omitempty"`
	AdditionalModifier    *AdditionalModifier `json:"additional_modifier,omitempty" yaml:"additional_modifier,omitempty"`
	GrantedSpellID        string              `json:"granted_spell_id,omitempty" yaml:"granted_spell_id,omitempty"`
}

// Skill is a learnable skill definition. Bonuses are either flat (one map for
// every tier) or grouped by proficiency tier; BonusesForTier normalizes both.
type Skill struct {
	ID               string                        `json:"id" yaml:"id"`
	Name             string                        `json:"name" yaml:"name"`
	MainSkillID      string                        `json:"main_skill_id" yaml:"main_skill_id"`
	Triggers         []string                      `json:"triggers,omitempty" yaml:"triggers,omitempty"`
	Bonuses          map[string]float64            `json:"bonuses,omitempty" yaml:"bonuses,omitempty"`
	BonusGroups      map[string]map[string]float64 `json:"bonus_groups,omitempty" yaml:"bonus_groups,omitempty"`
	Modifiers        []Modifier                    `json:"modifiers,omitempty" yaml:"modifiers,omitempty"`
	Duration         int                           `json:"duration,omitempty" yaml:"duration,omitempty"`
	SpellEnhancement *SpellEnhancement             `json:"spell_enhancement,omitempty" yaml:"spell_enhancement,omitempty"`
}

// BonusesForTier returns the bonus map for a proficiency tier, preferring the
// grouped shape and falling back to the flat map
func (s *Skill) BonusesForTier(tier int) map[string]float64 {
	if group, ok := s.BonusGroups[strconv.Itoa(tier)]; ok {
		return group
	}
	if len(s.BonusGroups) > 0 && len(s.Bonuses) == 0 {
		best := -1
		var chosen map[string]float64
		for key, group := range s.BonusGroups {
			t, err := strconv.Atoi(key)
			if err != nil || t > tier || t <= best {
				continue
			}
			best, chosen = t, group
		}
		return chosen
	}
	return s.Bonuses
}

// MainSkill is a skill tree root. Magic schools feed the balancing DPR table
// for schools, the rest the table for non-magic skills.
type MainSkill struct {
	ID            string `json:"id" yaml:"id"`
	Name          string `json:"name" yaml:"name"`
	IsMagicSchool bool   `json:"is_magic_school" yaml:"is_magic_school"`
}

type SpellType string

const (
	SpellTypeDamage SpellType = "damage"
	SpellTypeHeal   SpellType = "heal"
	SpellTypeAll    SpellType = "all"
)

// SaveOnSuccess is what a successful saving throw does to spell damage
type SaveOnSuccess string

const (
	SaveHalf SaveOnSuccess = "half"
	SaveNone SaveOnSuccess = "none"
)

// SavingThrow describes a spell's saving throw
type SavingThrow struct {
	Ability   stats.Attribute `json:"ability" yaml:"ability"`
	OnSuccess SaveOnSuccess   `json:"on_success" yaml:"on_success"`
}

// Spell is a spell definition
type Spell struct {
	ID                 string              `json:"id" yaml:"id"`
	Name               string              `json:"name" yaml:"name"`
	Level              int                 `json:"level" yaml:"level"`
	Type               SpellType           `json:"type" yaml:"type"`
	Dice               string              `json:"dice" yaml:"dice"`
	DamageType         string              `json:"damage_type,omitempty" yaml:"damage_type,omitempty"`
	MaxTargets         int                 `json:"max_targets,omitempty" yaml:"max_targets,omitempty"`
	SavingThrow        *SavingThrow        `json:"saving_throw,omitempty" yaml:"saving_throw,omitempty"`
	AdditionalModifier *AdditionalModifier `json:"additional_modifier,omitempty" yaml:"additional_modifier,omitempty"`
}

// Race is a race definition
type Race struct {
	ID             string             `json:"id" yaml:"id"`
	Name           string             `json:"name" yaml:"name"`
	Resistances    []string           `json:"resistances,omitempty" yaml:"resistances,omitempty"`
	Immunities     []string           `json:"immunities,omitempty" yaml:"immunities,omitempty"`
	MoraleFloor    *int               `json:"morale_floor,omitempty" yaml:"morale_floor,omitempty"`
	PassiveAbility map[string]any     `json:"passive_ability,omitempty" yaml:"passive_ability,omitempty"`
	Bonuses        map[string]float64 `json:"bonuses,omitempty" yaml:"bonuses,omitempty"`
}

// Artifact is an equippable item definition. Weapons describe their attack in
// Attributes (damage_dice, damage_type, attack_type, range, properties).
type Artifact struct {
	ID             string             `json:"id" yaml:"id"`
	Name           string             `json:"name" yaml:"name"`
	Bonuses        map[string]float64 `json:"bonuses,omitempty" yaml:"bonuses,omitempty"`
	Modifiers      []Modifier         `json:"modifiers,omitempty" yaml:"modifiers,omitempty"`
	Attributes     map[string]string  `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	PassiveAbility map[string]any     `json:"passive_ability,omitempty" yaml:"passive_ability,omitempty"`
}
