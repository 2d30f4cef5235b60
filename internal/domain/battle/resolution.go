package battle

import (
	"fmt"
	"strconv"

	"github.com/KirkDiggler/dnd-battle-engine/internal/uuid"
)

// resolution carries the working state of one command while it is applied
// to a cloned battle
type resolution struct {
	engine    *Engine
	b         *Battle
	action    *Action
	chance    []float64
	chancePos int
	effectSeq int
}

func (e *Engine) begin(b *Battle, kind ActionKind, actor *Participant, meta CommandMeta, cmd Command) *resolution {
	action := &Action{
		ID:        uuid.Derive(b.ID, "action", strconv.Itoa(b.NextActionIndex)),
		BattleID:  b.ID,
		Index:     b.NextActionIndex,
		Round:     b.Round,
		Timestamp: meta.At,
		Kind:      kind,
		Command:   cmd,
	}
	if actor != nil {
		action.ActorID = actor.ID
		action.ActorName = actor.Name
		action.ActorSide = actor.Side
	}
	return &resolution{
		engine: e,
		b:      b,
		action: action,
		chance: meta.ChanceRolls,
	}
}

// reject returns a copy of the working action marked as a rejected attempt.
// Rejected actions never enter the log.
func (r *resolution) reject(format string, args ...any) *Action {
	a := *r.action
	a.Rejected = true
	a.Result = fmt.Sprintf(format, args...)
	return &a
}

// commit appends the action to the log and runs victory detection
func (r *resolution) commit() *Action {
	r.b.Log = append(r.b.Log, *r.action)
	r.b.NextActionIndex = r.action.Index + 1
	r.engine.finishIfDecided(r.b, r.action.Timestamp)
	a := *r.action
	return &a
}

// nextChance returns the next pre-rolled value in [0,1). An exhausted list
// yields 1 so every probability gate below 1 fails.
func (r *resolution) nextChance() float64 {
	if r.chancePos >= len(r.chance) {
		return 1
	}
	v := r.chance[r.chancePos]
	r.chancePos++
	return v
}

func (r *resolution) nextEffectID() string {
	r.effectSeq++
	return uuid.Derive(r.b.ID, "effect", strconv.Itoa(r.action.Index), strconv.Itoa(r.effectSeq))
}

func (r *resolution) effectDuration(skill *ActiveSkill) int {
	if skill.Duration > 0 {
		return skill.Duration
	}
	return r.engine.rules.DefaultEffectDuration
}

// damage subtracts final damage from target, temp HP first. Status follows
// the unclamped result: below zero is death, exactly zero is unconscious.
// HP is then clamped to the rules minimum. A lethal blow checks survive-lethal
// skills on an active target, otherwise fires its other onLethalDamage skills
// before landing. Returns the HP actually lost.
func (r *resolution) damage(source, target *Participant, amount int) int {
	if amount <= 0 || target == nil || target.Status == StatusDead {
		return 0
	}
	before := target.CurrentHP

	absorbed := min(target.TempHP, amount)
	target.TempHP -= absorbed
	remaining := amount - absorbed
	if remaining == 0 {
		r.action.addMessage(fmt.Sprintf("%s's temporary hit points absorb %d damage", target.Name, absorbed))
		return 0
	}

	newHP := target.CurrentHP - remaining
	if newHP <= 0 {
		if target.Status == StatusActive && r.survivesLethal(target) {
			newHP = 1
		} else {
			r.fireLethal(target, source)
			before = target.CurrentHP
			newHP = before - remaining
		}
	}

	previous := target.Status
	switch {
	case newHP < 0:
		target.Status = StatusDead
	case newHP == 0:
		target.Status = StatusUnconscious
	case target.Status == StatusUnconscious:
		target.Status = StatusActive
	}
	target.CurrentHP = max(newHP, r.engine.rules.MinHP)
	r.action.addDelta(target.ID, target.CurrentHP-before)

	if previous != StatusDead && target.Status == StatusDead {
		r.handleKill(source, target)
	} else if previous == StatusActive && target.Status == StatusUnconscious {
		r.action.addMessage(fmt.Sprintf("%s falls unconscious", target.Name))
	}
	return before - target.CurrentHP
}

// heal restores HP up to max. Unconscious targets that end above zero are
// revived; the dead stay dead.
func (r *resolution) heal(target *Participant, amount int) int {
	if amount <= 0 || target == nil || target.Status == StatusDead {
		return 0
	}
	before := target.CurrentHP
	target.CurrentHP = min(target.MaxHP, target.CurrentHP+amount)
	if target.CurrentHP < before {
		target.CurrentHP = before
	}
	if target.Status == StatusUnconscious && target.CurrentHP > 0 {
		target.Status = StatusActive
		r.action.addMessage(fmt.Sprintf("%s is back on their feet", target.Name))
	}
	healed := target.CurrentHP - before
	r.action.addDelta(target.ID, healed)
	return healed
}

func (r *resolution) adjustMorale(p *Participant, delta int) {
	p.Morale += delta
	if p.Morale < p.MoraleFloor {
		p.Morale = p.MoraleFloor
	}
}

// handleKill runs kill triggers and morale for a participant that just died
func (r *resolution) handleKill(killer, victim *Participant) {
	r.action.addMessage(fmt.Sprintf("%s has been slain", victim.Name))
	rules := r.engine.rules

	if killer != nil && killer.ID != victim.ID && killer.Side != victim.Side && killer.IsActive() {
		r.fire(EventOnKill, killer, hook{opponent: victim})
		for _, ally := range r.b.Order {
			if ally.Side != killer.Side || !ally.IsActive() {
				continue
			}
			before := ally.Morale
			r.adjustMorale(ally, rules.KillMoraleBonus)
			r.fire(EventAllyMoraleCheck, ally, hook{opponent: victim})
			if ally.Morale > before {
				r.fire(EventOnMoraleSuccess, ally, hook{opponent: victim})
			}
		}
	}

	for _, ally := range r.b.Order {
		if ally.ID == victim.ID || ally.Side != victim.Side || !ally.IsActive() {
			continue
		}
		r.adjustMorale(ally, -rules.AllyDeathMoralePenalty)
		r.fire(EventOnAllyDeath, ally, hook{opponent: killer})
	}
}
