package battle

import (
	dnderr "github.com/KirkDiggler/dnd-battle-engine/internal/errors"
)

// Apply re-runs a recorded command against b
func (e *Engine) Apply(b *Battle, cmd Command, spells SpellBook) (*Battle, *Action, error) {
	switch {
	case cmd.Attack != nil:
		return e.ResolveAttack(b, *cmd.Attack)
	case cmd.Spell != nil:
		return e.ResolveSpell(b, *cmd.Spell, spells)
	case cmd.Skill != nil:
		return e.ResolveBonusActionSkill(b, *cmd.Skill)
	case cmd.EndTurn != nil:
		return e.AdvanceTurn(b, *cmd.EndTurn)
	case cmd.Summon != nil:
		return e.QueueSummon(b, *cmd.Summon)
	default:
		return nil, nil, dnderr.InvalidArgument("command is empty")
	}
}

// RollbackTo rebuilds the battle as it stood just before the action with
// the given index by replaying the log from the starting snapshot. Actions
// at or after the index stay in the log marked as cancelled, and the action
// counter keeps counting from where the original left off.
func (e *Engine) RollbackTo(b *Battle, actionIndex int, spells SpellBook) (*Battle, error) {
	if b == nil {
		return nil, dnderr.InvalidArgument("battle is required")
	}
	if len(b.Initial) == 0 {
		return nil, dnderr.FailedPreconditionf("battle %s has not started", b.ID)
	}
	if actionIndex < 1 || actionIndex > b.NextActionIndex {
		return nil, dnderr.InvalidArgumentf("action index %d out of range [1, %d]", actionIndex, b.NextActionIndex)
	}

	replay := &Battle{
		ID:               b.ID,
		Status:           BattleStatusActive,
		Round:            b.InitialRound,
		TurnIndex:        b.InitialTurnIndex,
		Order:            cloneParticipants(b.Initial),
		Initial:          cloneParticipants(b.Initial),
		InitialRound:     b.InitialRound,
		InitialTurnIndex: b.InitialTurnIndex,
		StartedAt:        b.StartedAt,
	}

	for _, a := range b.Log {
		if a.Index >= actionIndex {
			continue
		}
		switch {
		case a.Cancelled:
			replay.Log = append(replay.Log, a)
		case a.Kind == ActionBattleStart:
			replay.Log = append(replay.Log, a)
			replay.NextActionIndex = a.Index + 1
			e.finishIfDecided(replay, a.Timestamp)
		case a.Kind == ActionBattleEnd:
			// regenerated by the action that decided the battle
		default:
			replay.NextActionIndex = a.Index
			next, act, err := e.Apply(replay, a.Command, spells)
			if err != nil {
				return nil, dnderr.Wrapf(err, "failed to replay action %d", a.Index)
			}
			if act.Rejected {
				return nil, dnderr.Internalf("replayed action %d was rejected: %s", a.Index, act.Result)
			}
			replay = next
		}
	}

	for _, a := range b.Log {
		if a.Index < actionIndex || a.Index < replay.NextActionIndex {
			continue
		}
		a.Cancelled = true
		replay.Log = append(replay.Log, a)
	}
	replay.NextActionIndex = max(replay.NextActionIndex, b.NextActionIndex)
	return replay, nil
}
