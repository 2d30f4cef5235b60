package battle

import (
	"fmt"
	"strconv"
	"time"

	"github.com/KirkDiggler/dnd-battle-engine/internal/uuid"
)

func anyActive(ps []*Participant, side Side) bool {
	for _, p := range ps {
		if p.Side == side && p.IsActive() {
			return true
		}
	}
	return false
}

// CheckOutcome reports whether the battle is decided. Victory is checked
// before defeat.
func CheckOutcome(b *Battle) Outcome {
	switch {
	case !anyActive(b.Order, SideEnemy):
		return OutcomeVictory
	case !anyActive(b.Order, SideAlly):
		return OutcomeDefeat
	default:
		return OutcomeNone
	}
}

// finishIfDecided completes an active battle whose outcome is settled. On
// victory, unconscious allies are restored to full HP. A synthetic battle_end
// action with the net HP change of every participant since the start is
// appended.
func (e *Engine) finishIfDecided(b *Battle, at time.Time) {
	if b.Status != BattleStatusActive {
		return
	}
	outcome := CheckOutcome(b)
	if outcome == OutcomeNone {
		return
	}

	b.Status = BattleStatusCompleted
	b.Outcome = outcome
	ended := at
	b.EndedAt = &ended

	var messages []string
	if outcome == OutcomeVictory {
		for _, p := range b.Order {
			if p.Side == SideAlly && p.Status == StatusUnconscious {
				p.CurrentHP = p.MaxHP
				p.Status = StatusActive
				messages = append(messages, fmt.Sprintf("%s recovers after the battle", p.Name))
			}
		}
	}

	initial := make(map[string]int, len(b.Initial))
	for _, p := range b.Initial {
		initial[p.ID] = p.CurrentHP
	}
	var deltas map[string]int
	for _, p := range b.Order {
		start, ok := initial[p.ID]
		if !ok {
			start = p.MaxHP
		}
		if delta := p.CurrentHP - start; delta != 0 {
			if deltas == nil {
				deltas = make(map[string]int)
			}
			deltas[p.ID] = delta
		}
	}

	result := "Defeat: no allies left standing"
	if outcome == OutcomeVictory {
		result = "Victory: all enemies defeated"
	}
	b.Log = append(b.Log, Action{
		ID:        uuid.Derive(b.ID, "action", strconv.Itoa(b.NextActionIndex)),
		BattleID:  b.ID,
		Index:     b.NextActionIndex,
		Round:     b.Round,
		Timestamp: at,
		Kind:      ActionBattleEnd,
		Result:    result,
		HPDeltas:  deltas,
		Messages:  messages,
	})
	b.NextActionIndex++
}
