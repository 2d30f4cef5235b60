package battle

import (
	"fmt"
	"math"

	"github.com/KirkDiggler/dnd-battle-engine/internal/dice"
	"github.com/KirkDiggler/dnd-battle-engine/internal/domain/records"
	dnderr "github.com/KirkDiggler/dnd-battle-engine/internal/errors"
)

// maxSpellTargets is the spell's target cap after enhancements
func maxSpellTargets(caster *Participant, spell *records.Spell) int {
	limit := spell.MaxTargets
	if limit <= 0 {
		limit = 1
	}
	if override := caster.SpellTargetOverride(spell.ID); override > 0 {
		limit = override
	}
	return limit
}

// ResolveSpell casts a spell at one or more targets. Validation failures,
// including a missing slot, come back as a rejected action and leave the
// battle untouched.
func (e *Engine) ResolveSpell(b *Battle, cmd SpellCommand, spells SpellBook) (*Battle, *Action, error) {
	if err := requireActive(b); err != nil {
		return nil, nil, err
	}
	if spells == nil {
		return nil, nil, dnderr.InvalidArgument("spell book is required")
	}

	next := b.Clone()
	caster := next.Participant(cmd.CasterID)
	r := e.begin(next, ActionSpell, caster, cmd.CommandMeta, Command{Spell: &cmd})
	r.action.TargetIDs = cmd.TargetIDs

	if reason := validateActor(next, caster, cmd.CasterID); reason != "" {
		return b, r.reject("%s", reason), nil
	}
	if caster.HasUsedAction {
		return b, r.reject("%s has already used their action this turn", caster.Name), nil
	}
	spell := spells.Spell(cmd.SpellID)
	if spell == nil || !caster.Spellcasting.Knows(cmd.SpellID) {
		return b, r.reject("%s does not know spell %s", caster.Name, cmd.SpellID), nil
	}
	r.action.Details.SpellID = spell.ID
	r.action.Details.SpellName = spell.Name
	r.action.Details.SpellLevel = spell.Level

	limit := maxSpellTargets(caster, spell)
	if len(cmd.TargetIDs) == 0 || len(cmd.TargetIDs) > limit {
		return b, r.reject("%s takes between 1 and %d targets, got %d", spell.Name, limit, len(cmd.TargetIDs)), nil
	}
	targets := make([]*Participant, 0, len(cmd.TargetIDs))
	seen := make(map[string]bool, len(cmd.TargetIDs))
	for _, id := range cmd.TargetIDs {
		t := next.Participant(id)
		if t == nil {
			return b, r.reject("target %s not found", id), nil
		}
		if seen[id] {
			return b, r.reject("target %s listed twice", id), nil
		}
		seen[id] = true
		targets = append(targets, t)
	}

	if spell.Level > 0 {
		if slot, ok := caster.Spellcasting.Slots[spell.Level]; !ok || slot.Current <= 0 {
			return b, r.reject("no available slots for level %d spells", spell.Level), nil
		}
	}

	caster.HasUsedAction = true
	own := hook{opponent: targets[0]}
	r.fire(EventBeforeOwnerSpellCast, caster, own)
	for _, t := range targets {
		if t.Side != caster.Side {
			r.fire(EventBeforeEnemySpellCast, t, hook{opponent: caster})
		}
	}
	r.fire(EventOnCast, caster, own)

	if spell.Level > 0 {
		slot := caster.Spellcasting.Slots[spell.Level]
		slot.Current = max(slot.Current-1, 0)
		caster.Spellcasting.Slots[spell.Level] = slot
	}

	amount := sum(cmd.DamageRolls)
	if len(cmd.DamageRolls) == 0 {
		amount = int(math.Floor(dice.Average(spell.Dice)))
	}
	r.action.Details.DamageRolls = cmd.DamageRolls
	r.action.Details.RawDamage = amount
	r.action.addBreakdown(fmt.Sprintf("%s base: %d", spell.Name, amount))
	if increase := caster.SpellEffectIncrease(spell.ID); increase != 0 {
		boosted := int(math.Floor(float64(amount) * (1 + increase/100)))
		r.action.addBreakdown(fmt.Sprintf("spell effect +%g%%: %d → %d", increase, amount, boosted))
		amount = boosted
	}

	rider := spell.AdditionalModifier
	if rider == nil {
		rider = caster.SpellAdditionalModifier(spell.ID)
	}
	damageType := spell.DamageType
	if damageType == "" {
		damageType = DamagePhysical
	}

	for i, t := range targets {
		healing := spell.Type == records.SpellTypeHeal ||
			(spell.Type == records.SpellTypeAll && t.Side == caster.Side)
		if healing {
			healed := r.heal(t, amount)
			r.action.Details.TotalHealing += healed
			r.action.addBreakdown(fmt.Sprintf("%s healed for %d", t.Name, healed))
			continue
		}

		dmg := amount
		if save := spell.SavingThrow; save != nil {
			roll := 0
			if i < len(cmd.SavingThrows) {
				roll = cmd.SavingThrows[i]
			}
			mod := t.Modifier(save.Ability)
			outcome := SaveOutcome{
				TargetID: t.ID,
				Roll:     roll,
				Modifier: mod,
				DC:       caster.Spellcasting.SaveDC,
				Success:  roll+mod >= caster.Spellcasting.SaveDC,
			}
			r.action.Details.Saves = append(r.action.Details.Saves, outcome)
			if outcome.Success {
				before := dmg
				if save.OnSuccess == records.SaveNone {
					dmg = 0
				} else {
					dmg /= 2
				}
				r.action.addBreakdown(fmt.Sprintf("%s saves (%d + %d vs DC %d): %d → %d",
					t.Name, roll, mod, outcome.DC, before, dmg))
			}
		}

		final, lines := ApplyResistance(t, dmg, damageType)
		r.action.addBreakdown(lines...)
		r.damage(caster, t, final)
		r.action.Details.TotalDamage += final
		r.action.addBreakdown(fmt.Sprintf("%s takes %d %s damage", t.Name, final, damageType))

		if rider != nil && rider.Duration > 0 && t.Status != StatusDead {
			perRound := int(math.Floor(dice.Average(rider.Dice)))
			if cmd.AdditionalRoll != nil {
				perRound = *cmd.AdditionalRoll
			}
			name := rider.Name
			if name == "" {
				name = spell.Name
			}
			AddActiveEffect(t, ActiveEffect{
				ID:       r.nextEffectID(),
				Name:     name,
				Kind:     EffectKindDOT,
				SourceID: caster.ID,
				Duration: rider.Duration,
				Dot:      &DotDamage{DamagePerRound: perRound, DamageType: normalizeDamageType(rider.DamageType)},
			}, next.Round)
			r.action.Details.AppliedEffects = append(r.action.Details.AppliedEffects,
				fmt.Sprintf("%s on %s (%d per round for %d rounds)", name, t.Name, perRound, rider.Duration))
		}
	}

	switch {
	case r.action.Details.TotalHealing > 0 && r.action.Details.TotalDamage > 0:
		r.action.Result = fmt.Sprintf("%s casts %s dealing %d damage and healing %d",
			caster.Name, spell.Name, r.action.Details.TotalDamage, r.action.Details.TotalHealing)
	case r.action.Details.TotalHealing > 0:
		r.action.Result = fmt.Sprintf("%s casts %s healing %d", caster.Name, spell.Name, r.action.Details.TotalHealing)
	default:
		r.action.Result = fmt.Sprintf("%s casts %s dealing %d damage", caster.Name, spell.Name, r.action.Details.TotalDamage)
	}

	r.fire(EventAfterOwnerSpellCast, caster, own)
	for _, t := range targets {
		if t.Side != caster.Side {
			r.fire(EventAfterEnemySpellCast, t, hook{opponent: caster})
		}
	}

	return next, r.commit(), nil
}
