package battle

import (
	"fmt"
	"sort"

	"github.com/KirkDiggler/dnd-battle-engine/internal/domain/records"
	"github.com/KirkDiggler/dnd-battle-engine/internal/domain/stats"
	dnderr "github.com/KirkDiggler/dnd-battle-engine/internal/errors"
)

// StartInput materializes and starts a battle. InitiativeRolls line up with
// the participants after quantities are expanded, in input order.
type StartInput struct {
	CommandMeta
	BattleID        string
	Participants    []ParticipantSpec
	Lookup          *records.Library
	InitiativeRolls []int
}

// StartBattle builds every participant, runs battle-start triggers, sorts the
// initiative order and opens round 1
func (e *Engine) StartBattle(in StartInput) (*Battle, error) {
	if in.BattleID == "" {
		return nil, dnderr.InvalidArgument("battle id is required")
	}
	if len(in.Participants) == 0 {
		return nil, dnderr.InvalidArgument("at least one participant is required")
	}

	var order []*Participant
	seen := make(map[string]bool)
	for _, spec := range in.Participants {
		quantity := max(spec.Quantity, 1)
		for n := 1; n <= quantity; n++ {
			p, err := NewParticipant(in.BattleID, spec.Source, spec.Side, n, in.Lookup, e.rules)
			if err != nil {
				return nil, dnderr.Wrapf(err, "failed to build participant %s", spec.Source.ID())
			}
			if seen[p.ID] {
				return nil, dnderr.InvalidArgumentf("participant %s listed more than once", p.ID)
			}
			seen[p.ID] = true
			if quantity > 1 {
				p.Name = fmt.Sprintf("%s #%d", p.Name, n)
			}
			order = append(order, p)
		}
	}

	b := &Battle{
		ID:        in.BattleID,
		Status:    BattleStatusActive,
		Round:     1,
		Order:     order,
		StartedAt: in.At,
	}
	r := e.begin(b, ActionBattleStart, nil, in.CommandMeta, Command{})

	for _, p := range order {
		r.fire(EventOnBattleStart, p, hook{})
	}

	for i, p := range order {
		roll := e.rules.DefaultInitiativeRoll
		if i < len(in.InitiativeRolls) {
			roll = in.InitiativeRolls[i]
		}
		p.Initiative = roll + p.Modifier(stats.AttributeDexterity) + p.InitiativeBonus + p.StatBonus(StatInitiative).Apply(0)
	}
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].Initiative != order[j].Initiative {
			return order[i].Initiative > order[j].Initiative
		}
		return order[i].Modifier(stats.AttributeDexterity) > order[j].Modifier(stats.AttributeDexterity)
	})

	r.startRound()
	if !b.Current().IsActive() {
		r.advance()
	} else {
		r.startTurn()
	}

	b.Initial = cloneParticipants(b.Order)
	b.InitialRound = b.Round
	b.InitialTurnIndex = b.TurnIndex
	r.action.Result = fmt.Sprintf("Battle started with %d participants", len(order))
	for _, p := range b.Order {
		r.action.TargetIDs = append(r.action.TargetIDs, p.ID)
	}
	r.commit()
	return b, nil
}

// AdvanceTurn ends the current turn. A participant holding an extra turn
// goes again; otherwise the next active participant in initiative order
// starts, running round boundaries on wraparound.
func (e *Engine) AdvanceTurn(b *Battle, cmd EndTurnCommand) (*Battle, *Action, error) {
	if err := requireActive(b); err != nil {
		return nil, nil, err
	}

	next := b.Clone()
	current := next.Current()
	r := e.begin(next, ActionEndTurn, current, cmd.CommandMeta, Command{EndTurn: &cmd})

	if current != nil && current.HasExtraTurn && current.IsActive() {
		r.action.addMessage(fmt.Sprintf("%s takes an extra turn", current.Name))
		r.startTurn()
	} else {
		r.advance()
	}

	if now := next.Current(); now != nil && next.Status == BattleStatusActive && CheckOutcome(next) == OutcomeNone {
		r.action.Result = fmt.Sprintf("Round %d: %s's turn", next.Round, now.Name)
	} else {
		r.action.Result = "Turn ended"
	}
	return next, r.commit(), nil
}

// advance moves to the next active participant. Stops early once the battle
// is decided by round-boundary damage.
func (r *resolution) advance() {
	b := r.b
	for guard := 0; guard <= 2*len(b.Order)+1; guard++ {
		b.TurnIndex++
		if b.TurnIndex >= len(b.Order) {
			r.endRound()
			if CheckOutcome(b) != OutcomeNone {
				b.TurnIndex = 0
				return
			}
			b.Round++
			b.TurnIndex = 0
			r.startRound()
			if CheckOutcome(b) != OutcomeNone {
				return
			}
		}
		if b.Current().IsActive() {
			r.startTurn()
			return
		}
	}
}

// startTurn resets the current participant's action economy and applies
// regeneration
func (r *resolution) startTurn() {
	p := r.b.Current()
	if p == nil {
		return
	}
	p.resetActionEconomy()
	if regen := p.StatBonus(StatRegen).Apply(0); regen > 0 {
		if healed := r.heal(p, regen); healed > 0 {
			r.action.addMessage(fmt.Sprintf("%s regenerates %d hit points", p.Name, healed))
		}
	}
}

// startRound resets per-round counters, admits pending summons and runs
// startRound triggers
func (r *resolution) startRound() {
	b := r.b
	for _, p := range b.Order {
		p.HitsTakenThisRound = 0
	}
	for _, p := range b.PendingSummons {
		b.Order = append(b.Order, p)
		r.action.addMessage(fmt.Sprintf("%s joins the battle", p.Name))
	}
	b.PendingSummons = nil

	for _, p := range b.Order {
		r.fire(EventStartRound, p, hook{})
	}
}

// endRound runs endRound triggers and ticks every effect: DOT damage first,
// then durations drop by one and expired effects are removed
func (r *resolution) endRound() {
	b := r.b
	for _, p := range b.Order {
		r.fire(EventEndRound, p, hook{})
	}

	for _, p := range b.Order {
		if p.Status == StatusDead || len(p.Effects) == 0 {
			continue
		}
		ticking := make(map[string]bool, len(p.Effects))
		snapshot := make([]ActiveEffect, len(p.Effects))
		copy(snapshot, p.Effects)
		for _, eff := range snapshot {
			ticking[eff.ID] = true
			if eff.Dot == nil || p.Status == StatusDead {
				continue
			}
			final, lines := ApplyResistance(p, eff.Dot.DamagePerRound, eff.Dot.DamageType)
			r.action.addBreakdown(lines...)
			r.damage(b.Participant(eff.SourceID), p, final)
			r.action.addBreakdown(fmt.Sprintf("%s deals %d %s damage to %s", eff.Name, final, eff.Dot.DamageType, p.Name))
		}

		var kept []ActiveEffect
		for _, eff := range p.Effects {
			if ticking[eff.ID] {
				eff.Duration--
				if eff.Duration <= 0 {
					r.action.addMessage(fmt.Sprintf("%s wears off %s", eff.Name, p.Name))
					continue
				}
			}
			kept = append(kept, eff)
		}
		p.Effects = kept
	}
}

// QueueSummon adds a participant that joins the initiative order at the
// start of the next round
func (e *Engine) QueueSummon(b *Battle, cmd SummonCommand) (*Battle, *Action, error) {
	if err := requireActive(b); err != nil {
		return nil, nil, err
	}
	if cmd.Participant == nil {
		return nil, nil, dnderr.InvalidArgument("summoned participant is required")
	}

	next := b.Clone()
	summoned := cmd.Participant.Clone()
	recorded := cmd
	recorded.Participant = cmd.Participant.Clone()
	r := e.begin(next, ActionSummon, next.Current(), cmd.CommandMeta, Command{Summon: &recorded})
	r.action.TargetIDs = []string{summoned.ID}

	if summoned.ID == "" {
		return b, r.reject("summoned participant has no id"), nil
	}
	if next.Participant(summoned.ID) != nil {
		return b, r.reject("%s is already in the battle", summoned.ID), nil
	}
	for _, p := range next.PendingSummons {
		if p.ID == summoned.ID {
			return b, r.reject("%s is already waiting to join", summoned.ID), nil
		}
	}

	summoned.BattleID = next.ID
	if summoned.Status == "" {
		summoned.Status = statusForHP(summoned.CurrentHP)
	}
	if summoned.Controller == "" {
		summoned.Controller = ControllerDM
	}
	next.PendingSummons = append(next.PendingSummons, summoned)
	r.action.Result = fmt.Sprintf("%s will join the battle next round", summoned.Name)
	return next, r.commit(), nil
}
