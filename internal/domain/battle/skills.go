package battle

import (
	"fmt"
	"strings"
)

// hook is what a lifecycle point knows about the situation: the participant
// on the other side of the exchange and, for attacks, the attack used
type hook struct {
	opponent *Participant
	attack   *Attack
}

// conditionHolds evaluates the free-form condition of a trigger. Only the
// attack-range conditions are understood; anything else is never satisfied.
func conditionHolds(condition string, h hook) bool {
	for _, tok := range strings.Split(condition, "&&") {
		switch strings.ToLower(strings.TrimSpace(tok)) {
		case "":
		case "melee":
			if h.attack == nil || h.attack.Ranged {
				return false
			}
		case "ranged":
			if h.attack == nil || !h.attack.Ranged {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// comparisonHolds resolves the comparison's subject. The hook's opponent is
// used when it belongs to the named side; otherwise any active participant on
// that side may satisfy it.
func (r *resolution) comparisonHolds(owner *Participant, c *Comparison, h hook) bool {
	if c.Target == "self" {
		return c.Holds(owner)
	}
	side := owner.Side
	if c.Target == "enemy" {
		side = owner.Side.Opposite()
	}
	if h.opponent != nil && h.opponent.ID != owner.ID && h.opponent.Side == side {
		return c.Holds(h.opponent)
	}
	for _, p := range r.b.Order {
		if p.ID == owner.ID || p.Side != side || !p.IsActive() {
			continue
		}
		if c.Holds(p) {
			return true
		}
	}
	return false
}

// eligible runs the gate sequence for one trigger: condition and comparison,
// then the per-battle budget, then the probability roll. A consumed budget
// stays consumed even if the probability roll fails.
func (r *resolution) eligible(owner *Participant, skill *ActiveSkill, t *SkillTrigger, h hook) bool {
	if t.Complex != nil && !r.comparisonHolds(owner, t.Complex, h) {
		return false
	}
	if t.Condition != "" && !conditionHolds(t.Condition, h) {
		return false
	}
	if limit := t.UsageLimit(); limit > 0 {
		if owner.SkillUsage[skill.SkillID] >= limit {
			return false
		}
		if owner.SkillUsage == nil {
			owner.SkillUsage = make(map[string]int)
		}
		owner.SkillUsage[skill.SkillID]++
	}
	if t.Probability != nil && *t.Probability < 1 {
		if r.nextChance() >= *t.Probability {
			r.action.addMessage(fmt.Sprintf("%s's %s did not trigger", owner.Name, skill.Name))
			return false
		}
	}
	return true
}

// fire runs every skill of owner bound to event. At most one trigger fires
// per skill per call. Returns the ids of the skills that fired.
func (r *resolution) fire(event TriggerEvent, owner *Participant, h hook) []string {
	if !owner.IsActive() {
		return nil
	}
	var fired []string
	for i := range owner.Skills {
		skill := &owner.Skills[i]
		if skill.Stub {
			continue
		}
		for j := range skill.Triggers {
			t := &skill.Triggers[j]
			if t.Event != event || !r.eligible(owner, skill, t, h) {
				continue
			}
			target := owner
			if (event == EventOnHit || event == EventOnAttack) && h.opponent != nil {
				target = h.opponent
			}
			r.applySkill(owner, skill, t, h, target)
			fired = append(fired, skill.SkillID)
			break
		}
	}
	return fired
}

func hasEffect(skill *ActiveSkill, stat string) bool {
	for _, e := range skill.Effects {
		if e.Stat == stat {
			return true
		}
	}
	return false
}

// guardsLethal reports whether t is a usage-limited survive-lethal trigger
func guardsLethal(skill *ActiveSkill, t *SkillTrigger) bool {
	return t.Event == EventOnLethalDamage && t.UsageLimit() > 0 && hasEffect(skill, StatSurviveLethal)
}

// survivesLethal checks the owner's usage-limited survive-lethal skills. One
// that passes its gates leaves the owner at 1 HP.
func (r *resolution) survivesLethal(owner *Participant) bool {
	for i := range owner.Skills {
		skill := &owner.Skills[i]
		if skill.Stub {
			continue
		}
		for j := range skill.Triggers {
			t := &skill.Triggers[j]
			if !guardsLethal(skill, t) || !r.eligible(owner, skill, t, hook{}) {
				continue
			}
			r.action.addMessage(fmt.Sprintf("%s refuses to fall thanks to %s", owner.Name, skill.Name))
			return true
		}
	}
	return false
}

// fireLethal applies the owner's remaining onLethalDamage skills as a lethal
// blow lands. Unlike fire it runs for unconscious owners too.
func (r *resolution) fireLethal(owner, source *Participant) {
	if owner.Status == StatusDead {
		return
	}
	h := hook{opponent: source}
	for i := range owner.Skills {
		skill := &owner.Skills[i]
		if skill.Stub {
			continue
		}
		for j := range skill.Triggers {
			t := &skill.Triggers[j]
			if t.Event != EventOnLethalDamage || guardsLethal(skill, t) || !r.eligible(owner, skill, t, h) {
				continue
			}
			r.applySkill(owner, skill, t, h, owner)
			break
		}
	}
}

// applySkill applies a fired skill's effects. Immediate stats resolve at
// once; everything else becomes a timed effect on its target named after the
// skill.
func (r *resolution) applySkill(owner *Participant, skill *ActiveSkill, t *SkillTrigger, h hook, defaultTarget *Participant) {
	r.action.addMessage(fmt.Sprintf("%s triggers %s", owner.Name, skill.Name))

	var targets []*Participant
	lingering := make(map[string][]EffectEntry)
	for _, entry := range skill.Effects {
		target := defaultTarget
		switch strings.ToLower(entry.Target) {
		case effectTargetSelf:
			target = owner
		case effectTargetOppose:
			if h.opponent != nil {
				target = h.opponent
			}
		}
		if r.applyImmediate(owner, target, skill, entry) {
			continue
		}
		if _, ok := lingering[target.ID]; !ok {
			targets = append(targets, target)
		}
		lingering[target.ID] = append(lingering[target.ID], entry)
	}

	for _, target := range targets {
		kind := EffectKindBuff
		if target.Side != owner.Side {
			kind = EffectKindDebuff
		}
		AddActiveEffect(target, ActiveEffect{
			ID:        r.nextEffectID(),
			Name:      skill.Name,
			Kind:      kind,
			SourceID:  owner.ID,
			Duration:  r.effectDuration(skill),
			Stackable: t.Stackable,
			Entries:   lingering[target.ID],
		}, r.b.Round)
		r.action.Details.AppliedEffects = append(r.action.Details.AppliedEffects,
			fmt.Sprintf("%s on %s", skill.Name, target.Name))
	}
}

// applyImmediate resolves effect stats that act once instead of lingering.
// Returns false for stats that should become a timed effect.
func (r *resolution) applyImmediate(owner, target *Participant, skill *ActiveSkill, e EffectEntry) bool {
	amount := e.Amount()
	switch e.Stat {
	case StatHeal:
		if healed := r.heal(target, amount); healed > 0 {
			r.action.addMessage(fmt.Sprintf("%s heals %s for %d", skill.Name, target.Name, healed))
		}
	case StatTempHP:
		if amount > target.TempHP {
			target.TempHP = amount
		}
	case StatExtraDamage:
		damageType := e.DamageType
		if damageType == "" {
			damageType = DamagePhysical
		}
		final, lines := ApplyResistance(target, amount, damageType)
		r.action.addBreakdown(lines...)
		if dealt := r.damage(owner, target, final); dealt > 0 {
			r.action.addMessage(fmt.Sprintf("%s deals %d extra %s damage to %s", skill.Name, dealt, damageType, target.Name))
		}
	case StatMorale:
		r.adjustMorale(target, amount)
	case StatExtraAction:
		target.HasExtraTurn = true
		r.action.addMessage(fmt.Sprintf("%s gains an extra turn", target.Name))
	case StatSurviveLethal:
	case StatDOT:
		AddActiveEffect(target, ActiveEffect{
			ID:       r.nextEffectID(),
			Name:     skill.Name,
			Kind:     EffectKindDOT,
			SourceID: owner.ID,
			Duration: r.effectDuration(skill),
			Dot:      &DotDamage{DamagePerRound: amount, DamageType: normalizeDamageType(e.DamageType)},
		}, r.b.Round)
		r.action.Details.AppliedEffects = append(r.action.Details.AppliedEffects,
			fmt.Sprintf("%s on %s", skill.Name, target.Name))
	default:
		return false
	}
	return true
}
