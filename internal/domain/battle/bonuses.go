package battle

import (
	"math"

	"github.com/KirkDiggler/dnd-battle-engine/internal/domain/records"
)

// Bonus is an aggregated flat and percentage bonus for one stat
type Bonus struct {
	Flat    float64
	Percent float64
}

// Add sums two bonuses
func (b Bonus) Add(o Bonus) Bonus {
	return Bonus{Flat: b.Flat + o.Flat, Percent: b.Percent + o.Percent}
}

// Apply adds the flat part to base and scales by the percent part, flooring
func (b Bonus) Apply(base int) int {
	return int(math.Floor((float64(base) + b.Flat) * (1 + b.Percent/100)))
}

func (b Bonus) larger(o Bonus) Bonus {
	if o.Flat+o.Percent > b.Flat+b.Percent {
		return o
	}
	return b
}

func entryBonus(e EffectEntry) Bonus {
	switch e.Type {
	case EffectPercent:
		return Bonus{Percent: e.Value}
	case EffectMin, EffectFlag:
		return Bonus{}
	default:
		return Bonus{Flat: float64(e.Amount())}
	}
}

func modifierEntry(m records.Modifier) EffectEntry {
	stat, typ := classifyBonusKey(m.Stat)
	if m.Type != "" {
		typ = EffectType(m.Type)
	}
	return EffectEntry{
		Stat:       stat,
		Type:       typ,
		Value:      m.Value,
		Dice:       m.Dice,
		DamageType: normalizeDamageType(m.DamageType),
		Target:     m.Target,
	}
}

func mapBonus(bonuses map[string]float64, stat string) Bonus {
	var total Bonus
	for key, value := range bonuses {
		s, typ := classifyBonusKey(key)
		if s != stat {
			continue
		}
		if typ == EffectPercent {
			total.Percent += value
		} else {
			total.Flat += value
		}
	}
	return total
}

// EquipmentBonus sums a stat across the bonus maps and typed modifier lists
// of every equipped artifact
func EquipmentBonus(artifacts []EquippedArtifact, stat string) Bonus {
	stat = CanonicalStat(stat)
	var total Bonus
	for _, a := range artifacts {
		total = total.Add(mapBonus(a.Bonuses, stat))
		for _, m := range a.Modifiers {
			if e := modifierEntry(m); e.Stat == stat {
				total = total.Add(entryBonus(e))
			}
		}
	}
	return total
}

// SkillBonus sums a stat across the always-on effects of passive skills.
// Triggered skills contribute through the active effects they create.
func SkillBonus(skills []ActiveSkill, stat string) Bonus {
	stat = CanonicalStat(stat)
	var total Bonus
	for i := range skills {
		if !skills[i].IsPassive() {
			continue
		}
		for _, e := range skills[i].Effects {
			if e.Stat == stat {
				total = total.Add(entryBonus(e))
			}
		}
	}
	return total
}

func effectsBonus(effects []ActiveEffect, stat string) Bonus {
	var total Bonus
	for _, eff := range effects {
		for _, e := range eff.Entries {
			if e.Stat == stat {
				total = total.Add(entryBonus(e))
			}
		}
	}
	return total
}

func racialBonus(abilities []RacialAbility, stat string) Bonus {
	var total Bonus
	for _, r := range abilities {
		total = total.Add(mapBonus(r.Bonuses, stat))
	}
	return total
}

// StatBonus aggregates a stat over gear, passive skills, racial abilities
// and active effects
func (p *Participant) StatBonus(stat string) Bonus {
	stat = CanonicalStat(stat)
	return EquipmentBonus(p.Artifacts, stat).
		Add(SkillBonus(p.Skills, stat)).
		Add(racialBonus(p.RacialAbilities, stat)).
		Add(effectsBonus(p.Effects, stat))
}

// familyBonus is the generic stat plus the larger of its melee and ranged
// families
func (p *Participant) familyBonus(generic, melee, ranged string) Bonus {
	return p.StatBonus(generic).Add(p.StatBonus(melee).larger(p.StatBonus(ranged)))
}

// AttackBonusFor is the full to-hit bonus of an attack
func (p *Participant) AttackBonusFor(a *Attack) int {
	return p.familyBonus(StatAttack, StatMeleeAttack, StatRangedAttack).Apply(a.AttackBonus)
}

// DamageBonus is the aggregated damage bonus applied on top of rolled damage
func (p *Participant) DamageBonus() Bonus {
	return p.familyBonus(StatDamage, StatMeleeDamage, StatRangedDamage)
}

// EffectiveAC is armor class after gear, skills and effects
func (p *Participant) EffectiveAC() int {
	return p.StatBonus(StatAC).Apply(p.ArmorClass)
}

// EffectiveSpeed is speed after gear, skills and effects
func (p *Participant) EffectiveSpeed() int {
	return p.StatBonus(StatSpeed).Apply(p.Speed)
}

// BestAttackBonus is the highest to-hit bonus across all attacks
func (p *Participant) BestAttackBonus() int {
	best := 0
	for i := range p.Attacks {
		if b := p.AttackBonusFor(&p.Attacks[i]); i == 0 || b > best {
			best = b
		}
	}
	return best
}

// MinimumDamage is the largest "min" damage floor from effects and skills
func (p *Participant) MinimumDamage() int {
	floor := 0
	consider := func(e EffectEntry) {
		if e.Type == EffectMin && e.Stat == StatDamage && e.Amount() > floor {
			floor = e.Amount()
		}
	}
	for _, eff := range p.Effects {
		for _, e := range eff.Entries {
			consider(e)
		}
	}
	for i := range p.Skills {
		if p.Skills[i].IsPassive() {
			for _, e := range p.Skills[i].Effects {
				consider(e)
			}
		}
	}
	return floor
}

// SpellEffectIncrease sums the effect-increase percentages of every skill
// enhancement that applies to spellID
func (p *Participant) SpellEffectIncrease(spellID string) float64 {
	total := 0.0
	for i := range p.Skills {
		if enh := p.Skills[i].SpellEnhancement; enh.Applies(spellID) {
			total += enh.EffectIncreasePercent
		}
	}
	return total
}

// SpellTargetOverride returns the largest target-count override among
// applicable enhancements, or 0
func (p *Participant) SpellTargetOverride(spellID string) int {
	best := 0
	for i := range p.Skills {
		if enh := p.Skills[i].SpellEnhancement; enh.Applies(spellID) && enh.TargetChange > best {
			best = enh.TargetChange
		}
	}
	return best
}

// SpellAdditionalModifier returns the first enhancement rider for spellID
func (p *Participant) SpellAdditionalModifier(spellID string) *records.AdditionalModifier {
	for i := range p.Skills {
		if enh := p.Skills[i].SpellEnhancement; enh.Applies(spellID) && enh.AdditionalModifier != nil {
			return enh.AdditionalModifier
		}
	}
	return nil
}
