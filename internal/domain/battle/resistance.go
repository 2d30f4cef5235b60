package battle

import (
	"fmt"
	"strings"
)

// DamagePhysical is the damage type used when nothing more specific is known
const DamagePhysical = "physical"

func normalizeDamageType(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

func containsDamageType(list []string, damageType string) bool {
	for _, t := range list {
		if normalizeDamageType(t) == damageType {
			return true
		}
	}
	return false
}

// hasDamageTag reports whether any passive skill, artifact modifier or active
// effect grants stat (resistance or immunity) against damageType
func (p *Participant) hasDamageTag(stat, damageType string) bool {
	match := func(e EffectEntry) bool {
		return e.Stat == stat && normalizeDamageType(e.DamageType) == damageType
	}
	for _, eff := range p.Effects {
		for _, e := range eff.Entries {
			if match(e) {
				return true
			}
		}
	}
	for i := range p.Skills {
		if !p.Skills[i].IsPassive() {
			continue
		}
		for _, e := range p.Skills[i].Effects {
			if match(e) {
				return true
			}
		}
	}
	for _, a := range p.Artifacts {
		for _, m := range a.Modifiers {
			if match(modifierEntry(m)) {
				return true
			}
		}
	}
	return false
}

// IsImmune reports whether the participant takes no damage of damageType
func (p *Participant) IsImmune(damageType string) bool {
	damageType = normalizeDamageType(damageType)
	return containsDamageType(p.Immunities, damageType) || p.hasDamageTag(StatImmunity, damageType)
}

// IsResistant reports whether the participant halves damage of damageType
func (p *Participant) IsResistant(damageType string) bool {
	damageType = normalizeDamageType(damageType)
	return containsDamageType(p.Resistances, damageType) || p.hasDamageTag(StatResistance, damageType)
}

// ApplyResistance runs raw damage through the target's immunities and
// resistances. Immunity wins over resistance. The breakdown lines are meant
// for the action log.
func ApplyResistance(target *Participant, raw int, damageType string) (int, []string) {
	if raw <= 0 {
		return 0, nil
	}
	damageType = normalizeDamageType(damageType)
	if damageType == "" {
		return raw, nil
	}

	switch {
	case target.IsImmune(damageType):
		return 0, []string{fmt.Sprintf("%s immunity: %d → 0", damageType, raw)}
	case target.IsResistant(damageType):
		final := raw / 2
		return final, []string{fmt.Sprintf("%s resistance: %d → %d", damageType, raw, final)}
	default:
		return raw, nil
	}
}
