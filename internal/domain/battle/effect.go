package battle

import (
	"math"
	"strings"

	"github.com/KirkDiggler/dnd-battle-engine/internal/dice"
)

// EffectType says how an effect entry's value combines with a stat
type EffectType string

const (
	EffectFlat    EffectType = "flat"
	EffectPercent EffectType = "percent"
	EffectDice    EffectType = "dice"
	EffectFormula EffectType = "formula"
	EffectMin     EffectType = "min"
	EffectStack   EffectType = "stack"
	EffectFlag    EffectType = "flag"
)

// EffectKind classifies an active effect
type EffectKind string

const (
	EffectKindBuff   EffectKind = "buff"
	EffectKindDebuff EffectKind = "debuff"
	EffectKindDOT    EffectKind = "dot"
)

// Canonical stat keys. Keys from records are canonicalized (lower case,
// separators removed) before comparison.
const (
	StatDamage         = "damage"
	StatMeleeDamage    = "meleedamage"
	StatRangedDamage   = "rangeddamage"
	StatAttack         = "attack"
	StatMeleeAttack    = "meleeattack"
	StatRangedAttack   = "rangedattack"
	StatAC             = "ac"
	StatSpeed          = "speed"
	StatInitiative     = "initiative"
	StatResistance     = "resistance"
	StatImmunity       = "immunity"
	StatHeal           = "heal"
	StatTempHP         = "temphp"
	StatExtraDamage    = "extradamage"
	StatMorale         = "morale"
	StatExtraAction    = "extraaction"
	StatSurviveLethal  = "survivelethal"
	StatDOT            = "dot"
	StatRegen          = "regen"
	StatSpellIncrease  = "spelleffectincrease"
	StatSavingThrow    = "savingthrow"
	effectTargetSelf   = "self"
	effectTargetOppose = "opponent"
)

// percentStats are stats whose bonuses are percentages even when the key
// does not say so
var percentStats = map[string]bool{
	StatSpellIncrease: true,
	"critchance":      true,
	"evasion":         true,
	"lifesteal":       true,
}

// CanonicalStat lower-cases a stat key and strips separators
func CanonicalStat(key string) string {
	replacer := strings.NewReplacer("_", "", "-", "", " ", "")
	return replacer.Replace(strings.ToLower(strings.TrimSpace(key)))
}

// classifyBonusKey infers the stat and type of a bonus map key: keys that
// mention "percent" or name a known percent stat are percentages.
func classifyBonusKey(key string) (string, EffectType) {
	stat := CanonicalStat(key)
	if strings.Contains(stat, "percent") {
		stat = strings.Replace(stat, "percent", "", 1)
		return stat, EffectPercent
	}
	if percentStats[stat] {
		return stat, EffectPercent
	}
	return stat, EffectFlat
}

// EffectEntry is one stat change carried by a skill or an active effect
type EffectEntry struct {
	Stat       string     `json:"stat"`
	Type       EffectType `json:"type"`
	Value      float64    `json:"value"`
	Dice       string     `json:"dice,omitempty"`
	DamageType string     `json:"damage_type,omitempty"`
	Target     string     `json:"target,omitempty"`
}

// Amount resolves the entry to an integer. Dice entries resolve to the
// floored average since the engine consumes no rolls for them.
func (e EffectEntry) Amount() int {
	if e.Type == EffectDice || (e.Dice != "" && e.Value == 0) {
		return int(math.Floor(dice.Average(e.Dice)))
	}
	return int(math.Floor(e.Value))
}

// DotDamage is the per-round damage of a damage-over-time effect
type DotDamage struct {
	DamagePerRound int    `json:"damage_per_round"`
	DamageType     string `json:"damage_type"`
}

// ActiveEffect is a timed modifier attached to a participant
type ActiveEffect struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Kind         EffectKind    `json:"kind"`
	SourceID     string        `json:"source_id,omitempty"`
	AppliedRound int           `json:"applied_round"`
	Duration     int           `json:"duration"`
	Stackable    bool          `json:"stackable,omitempty"`
	Entries      []EffectEntry `json:"entries,omitempty"`
	Dot          *DotDamage    `json:"dot,omitempty"`
}

func (e ActiveEffect) clone() ActiveEffect {
	e.Entries = cloneSlice(e.Entries)
	if e.Dot != nil {
		dot := *e.Dot
		e.Dot = &dot
	}
	return e
}

// AddActiveEffect attaches effect to p in the given round. A non-stackable
// effect replaces an existing effect with the same name instead of adding a
// second copy.
func AddActiveEffect(p *Participant, effect ActiveEffect, currentRound int) {
	if effect.Duration < 0 {
		effect.Duration = 0
	}
	effect.AppliedRound = currentRound

	if !effect.Stackable {
		for i := range p.Effects {
			if p.Effects[i].Name == effect.Name {
				p.Effects[i] = effect
				return
			}
		}
	}
	p.Effects = append(p.Effects, effect)
}

// RemoveEffect drops every effect with the given id
func RemoveEffect(p *Participant, id string) {
	kept := p.Effects[:0]
	for _, e := range p.Effects {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == 0 {
		p.Effects = nil
		return
	}
	p.Effects = kept
}
