package battle

import (
	"github.com/KirkDiggler/dnd-battle-engine/internal/domain/records"
	"github.com/KirkDiggler/dnd-battle-engine/internal/domain/stats"
)

// Side is the team a participant fights for
type Side string

const (
	SideAlly  Side = "ally"
	SideEnemy Side = "enemy"
)

// Opposite returns the other side
func (s Side) Opposite() Side {
	if s == SideAlly {
		return SideEnemy
	}
	return SideAlly
}

// Status is a participant's combat state
type Status string

const (
	StatusActive      Status = "active"
	StatusUnconscious Status = "unconscious"
	StatusDead        Status = "dead"
)

// ControllerDM marks participants the DM controls
const ControllerDM = "dm"

// SpellSlot tracks one spell level; Current never exceeds Max or drops below 0
type SpellSlot struct {
	Max     int `json:"max"`
	Current int `json:"current"`
}

// Spellcasting is the caster state of a participant
type Spellcasting struct {
	Ability     stats.Attribute   `json:"ability"`
	SaveDC      int               `json:"save_dc"`
	AttackBonus int               `json:"attack_bonus"`
	Slots       map[int]SpellSlot `json:"slots,omitempty"`
	KnownSpells []string          `json:"known_spells,omitempty"`
}

// Knows reports whether spellID is in the known spell set
func (s *Spellcasting) Knows(spellID string) bool {
	if s == nil {
		return false
	}
	for _, id := range s.KnownSpells {
		if id == spellID {
			return true
		}
	}
	return false
}

// Attack is a resolved weapon attack. AttackBonus holds ability modifier
// plus proficiency; gear, skill and effect bonuses are added at resolution.
type Attack struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Ranged      bool     `json:"ranged"`
	AttackBonus int      `json:"attack_bonus"`
	DamageDice  string   `json:"damage_dice"`
	DamageBonus int      `json:"damage_bonus"`
	DamageType  string   `json:"damage_type"`
	Range       int      `json:"range,omitempty"`
	Properties  []string `json:"properties,omitempty"`
}

// SpellEnhancement is the spell bundle an active skill grants
type SpellEnhancement struct {
	SpellID               string                      `json:"spell_id,omitempty"`
	EffectIncreasePercent float64                     `json:"effect_increase_percent,omitempty"`
	TargetChange          int                         `json:"target_change,omitempty"`
	AdditionalModifier    *records.AdditionalModifier `json:"additional_modifier,omitempty"`
	GrantedSpellID        string                      `json:"granted_spell_id,omitempty"`
}

// Applies reports whether the enhancement affects spellID
func (s *SpellEnhancement) Applies(spellID string) bool {
	return s != nil && (s.SpellID == "" || s.SpellID == spellID)
}

// ActiveSkill is a learned skill with its triggers parsed once at load time
type ActiveSkill struct {
	SkillID          string            `json:"skill_id"`
	Name             string            `json:"name"`
	MainSkillID      string            `json:"main_skill_id"`
	Tier             int               `json:"tier"`
	Effects          []EffectEntry     `json:"effects,omitempty"`
	Triggers         []SkillTrigger    `json:"triggers,omitempty"`
	Duration         int               `json:"duration"`
	SpellEnhancement *SpellEnhancement `json:"spell_enhancement,omitempty"`
	Stub             bool              `json:"stub,omitempty"`
}

// IsPassive reports whether the skill's effects are always on
func (s *ActiveSkill) IsPassive() bool {
	if s.Stub {
		return false
	}
	if len(s.Triggers) == 0 {
		return true
	}
	for _, t := range s.Triggers {
		if t.Event == EventPassive && t.Condition == "" && t.Complex == nil {
			return true
		}
	}
	return false
}

// EquippedArtifact is an artifact copied onto the participant with its slot
type EquippedArtifact struct {
	Slot           string             `json:"slot"`
	ArtifactID     string             `json:"artifact_id"`
	Name           string             `json:"name"`
	Bonuses        map[string]float64 `json:"bonuses,omitempty"`
	Modifiers      []records.Modifier `json:"modifiers,omitempty"`
	PassiveAbility map[string]any     `json:"passive_ability,omitempty"`
}

// RacialAbility is the single passive synthesized from a race record
type RacialAbility struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Bonuses     map[string]float64 `json:"bonuses,omitempty"`
}

// Participant is one combatant instance in one battle
type Participant struct {
	ID         string             `json:"id"`
	BattleID   string             `json:"battle_id"`
	SourceID   string             `json:"source_id"`
	SourceKind records.SourceKind `json:"source_kind"`
	Instance   int                `json:"instance,omitempty"`
	Name       string             `json:"name"`
	Avatar     string             `json:"avatar,omitempty"`
	Side       Side               `json:"side"`
	Controller string             `json:"controller"`

	Abilities   stats.Scores            `json:"abilities"`
	Modifiers   map[stats.Attribute]int `json:"modifiers"`
	Proficiency int                     `json:"proficiency"`
	Level       int                     `json:"level"`
	Race        string                  `json:"race,omitempty"`

	HitDie          int    `json:"hit_die,omitempty"`
	MaxHP           int    `json:"max_hp"`
	CurrentHP       int    `json:"current_hp"`
	TempHP          int    `json:"temp_hp"`
	ArmorClass      int    `json:"armor_class"`
	Speed           int    `json:"speed"`
	Morale          int    `json:"morale"`
	MoraleFloor     int    `json:"morale_floor"`
	Status          Status `json:"status"`
	MinTargets      int    `json:"min_targets"`
	MaxTargets      int    `json:"max_targets"`
	InitiativeBonus int    `json:"initiative_bonus,omitempty"`
	Initiative      int    `json:"initiative"`

	Spellcasting *Spellcasting `json:"spellcasting,omitempty"`

	Attacks         []Attack           `json:"attacks,omitempty"`
	Effects         []ActiveEffect     `json:"effects,omitempty"`
	RacialAbilities []RacialAbility    `json:"racial_abilities,omitempty"`
	Resistances     []string           `json:"resistances,omitempty"`
	Immunities      []string           `json:"immunities,omitempty"`
	Skills          []ActiveSkill      `json:"skills,omitempty"`
	Artifacts       []EquippedArtifact `json:"artifacts,omitempty"`
	SkillUsage      map[string]int     `json:"skill_usage,omitempty"`

	HasUsedAction      bool `json:"has_used_action"`
	HasUsedBonusAction bool `json:"has_used_bonus_action"`
	HasUsedReaction    bool `json:"has_used_reaction"`
	HasExtraTurn       bool `json:"has_extra_turn"`

	HitsTakenThisRound int `json:"hits_taken_this_round,omitempty"`
	RangedAttacksMade  int `json:"ranged_attacks_made,omitempty"`
}

// IsActive reports whether the participant can still act
func (p *Participant) IsActive() bool {
	return p != nil && p.Status == StatusActive
}

// Modifier returns the ability modifier for an attribute
func (p *Participant) Modifier(a stats.Attribute) int {
	if v, ok := p.Modifiers[a]; ok {
		return v
	}
	return stats.AbilityModifier(p.Abilities.Score(a))
}

// Attack returns the attack with the given id, or the first attack when id
// is empty
func (p *Participant) Attack(id string) *Attack {
	for i := range p.Attacks {
		if id == "" || p.Attacks[i].ID == id {
			return &p.Attacks[i]
		}
	}
	return nil
}

// Skill returns the active skill with the given id
func (p *Participant) Skill(id string) *ActiveSkill {
	for i := range p.Skills {
		if p.Skills[i].SkillID == id {
			return &p.Skills[i]
		}
	}
	return nil
}

// resetActionEconomy clears the four per-turn flags
func (p *Participant) resetActionEconomy() {
	p.HasUsedAction = false
	p.HasUsedBonusAction = false
	p.HasUsedReaction = false
	p.HasExtraTurn = false
}

// Clone returns a deep copy. Nil slices and maps stay nil so that clones
// compare equal to their source.
func (p *Participant) Clone() *Participant {
	if p == nil {
		return nil
	}
	c := *p
	c.Abilities = cloneMap(p.Abilities)
	c.Modifiers = cloneMap(p.Modifiers)
	c.SkillUsage = cloneMap(p.SkillUsage)
	c.Resistances = cloneSlice(p.Resistances)
	c.Immunities = cloneSlice(p.Immunities)

	if p.Spellcasting != nil {
		sc := *p.Spellcasting
		sc.Slots = cloneMap(p.Spellcasting.Slots)
		sc.KnownSpells = cloneSlice(p.Spellcasting.KnownSpells)
		c.Spellcasting = &sc
	}

	if p.Attacks != nil {
		c.Attacks = make([]Attack, len(p.Attacks))
		for i, a := range p.Attacks {
			a.Properties = cloneSlice(a.Properties)
			c.Attacks[i] = a
		}
	}

	if p.Effects != nil {
		c.Effects = make([]ActiveEffect, len(p.Effects))
		for i := range p.Effects {
			c.Effects[i] = p.Effects[i].clone()
		}
	}

	if p.RacialAbilities != nil {
		c.RacialAbilities = make([]RacialAbility, len(p.RacialAbilities))
		for i, r := range p.RacialAbilities {
			r.Bonuses = cloneMap(r.Bonuses)
			c.RacialAbilities[i] = r
		}
	}

	if p.Skills != nil {
		c.Skills = make([]ActiveSkill, len(p.Skills))
		for i, s := range p.Skills {
			s.Effects = cloneSlice(s.Effects)
			if s.Triggers != nil {
				s.Triggers = make([]SkillTrigger, len(p.Skills[i].Triggers))
				for j, t := range p.Skills[i].Triggers {
					s.Triggers[j] = t.clone()
				}
			}
			if s.SpellEnhancement != nil {
				enh := *s.SpellEnhancement
				if enh.AdditionalModifier != nil {
					mod := *enh.AdditionalModifier
					enh.AdditionalModifier = &mod
				}
				s.SpellEnhancement = &enh
			}
			c.Skills[i] = s
		}
	}

	if p.Artifacts != nil {
		c.Artifacts = make([]EquippedArtifact, len(p.Artifacts))
		for i, a := range p.Artifacts {
			a.Bonuses = cloneMap(a.Bonuses)
			a.Modifiers = cloneSlice(a.Modifiers)
			a.PassiveAbility = cloneAnyMap(a.PassiveAbility)
			c.Artifacts[i] = a
		}
	}

	return &c
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return nil
	}
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// cloneAnyMap copies decoded YAML or JSON data, descending into nested maps
// and slices.
func cloneAnyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneAny(v)
	}
	return out
}

func cloneAny(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneAnyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneAny(e)
		}
		return out
	default:
		return v
	}
}

func cloneParticipants(ps []*Participant) []*Participant {
	if ps == nil {
		return nil
	}
	out := make([]*Participant, len(ps))
	for i, p := range ps {
		out[i] = p.Clone()
	}
	return out
}
