package battle

import (
	"fmt"
)

// validateActor returns a rejection reason when p may not act right now
func validateActor(b *Battle, p *Participant, id string) string {
	if p == nil {
		return fmt.Sprintf("participant %s not found", id)
	}
	if current := b.Current(); current == nil || current.ID != p.ID {
		return fmt.Sprintf("it is not %s's turn", p.Name)
	}
	if !p.IsActive() {
		return fmt.Sprintf("%s cannot act while %s", p.Name, p.Status)
	}
	return ""
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}

// ResolveAttack resolves a single-target weapon attack with the supplied d20
// and damage rolls
func (e *Engine) ResolveAttack(b *Battle, cmd AttackCommand) (*Battle, *Action, error) {
	if err := requireActive(b); err != nil {
		return nil, nil, err
	}

	next := b.Clone()
	attacker := next.Participant(cmd.AttackerID)
	r := e.begin(next, ActionAttack, attacker, cmd.CommandMeta, Command{Attack: &cmd})
	r.action.TargetIDs = []string{cmd.TargetID}

	if reason := validateActor(next, attacker, cmd.AttackerID); reason != "" {
		return b, r.reject("%s", reason), nil
	}
	if attacker.HasUsedAction {
		return b, r.reject("%s has already used their action this turn", attacker.Name), nil
	}
	target := next.Participant(cmd.TargetID)
	if target == nil {
		return b, r.reject("target %s not found", cmd.TargetID), nil
	}
	if target.Status == StatusDead {
		return b, r.reject("%s is already dead", target.Name), nil
	}
	attack := attacker.Attack(cmd.AttackID)
	if attack == nil {
		return b, r.reject("%s has no attack %s", attacker.Name, cmd.AttackID), nil
	}

	attacker.HasUsedAction = true
	r.action.Details.AttackID = attack.ID
	r.action.Details.AttackName = attack.Name

	own := hook{opponent: target, attack: attack}
	theirs := hook{opponent: attacker, attack: attack}

	r.fire(EventBeforeOwnerAttack, attacker, own)
	r.fire(EventBeforeEnemyAttack, target, theirs)
	r.fire(EventOnAttack, attacker, own)
	if attack.Ranged {
		if attacker.RangedAttacksMade == 0 {
			r.fire(EventOnFirstRangedAttack, attacker, own)
		}
		attacker.RangedAttacksMade++
	}

	bonus := attacker.AttackBonusFor(attack)
	ac := target.EffectiveAC()
	total := cmd.D20Roll + bonus
	r.action.Details.D20Roll = cmd.D20Roll
	r.action.Details.AttackTotal = total
	r.action.Details.TargetAC = ac
	r.action.addBreakdown(fmt.Sprintf("attack: %d + %d = %d vs AC %d", cmd.D20Roll, bonus, total, ac))

	if total >= ac && target.Status != StatusDead {
		r.action.Details.Hit = true
		r.action.Details.DamageRolls = cmd.DamageRolls

		rolled := sum(cmd.DamageRolls)
		raw := attacker.DamageBonus().Apply(rolled + attack.DamageBonus)
		if floor := attacker.MinimumDamage(); raw < floor {
			r.action.addBreakdown(fmt.Sprintf("minimum damage: %d → %d", raw, floor))
			raw = floor
		}
		raw = max(raw, 0)
		r.action.Details.RawDamage = raw
		r.action.addBreakdown(fmt.Sprintf("damage: %v + bonuses = %d %s", cmd.DamageRolls, raw, attack.DamageType))

		final, lines := ApplyResistance(target, raw, attack.DamageType)
		r.action.addBreakdown(lines...)
		dealt := r.damage(attacker, target, final)
		r.action.Details.TotalDamage = final
		target.HitsTakenThisRound++
		r.action.Result = fmt.Sprintf("%s hits %s with %s for %d damage", attacker.Name, target.Name, attack.Name, final)
		if dealt < final {
			r.action.addMessage(fmt.Sprintf("%s lost %d hit points", target.Name, dealt))
		}

		r.fire(EventOnHit, attacker, own)
		if target.HitsTakenThisRound == 1 {
			r.fire(EventOnFirstHitTakenPerRound, target, theirs)
		}
	} else {
		r.action.Result = fmt.Sprintf("%s misses %s with %s", attacker.Name, target.Name, attack.Name)
	}

	r.fire(EventAfterOwnerAttack, attacker, own)
	r.fire(EventAfterEnemyAttack, target, theirs)

	return next, r.commit(), nil
}
