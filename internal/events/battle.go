package events

import (
	"time"

	"github.com/KirkDiggler/dnd-battle-engine/internal/domain/battle"
)

// BattleStartedEvent fires once a new battle has been persisted
type BattleStartedEvent struct {
	BaseEvent
	Round        int
	Participants []string
}

// ActionResolvedEvent fires for every action appended to a battle log
type ActionResolvedEvent struct {
	BaseEvent
	Action battle.Action
}

// ActionRejectedEvent fires when a command failed validation. Nothing was
// persisted.
type ActionRejectedEvent struct {
	BaseEvent
	Action battle.Action
}

// BattleCompletedEvent fires when a battle reaches victory or defeat
type BattleCompletedEvent struct {
	BaseEvent
	Outcome battle.Outcome
	Rounds  int
}

// BattleRolledBackEvent fires after a DM rollback was persisted
type BattleRolledBackEvent struct {
	BaseEvent
	ActionIndex int
	Cancelled   int
}

func newBase(t EventType, battleID string, at time.Time) BaseEvent {
	return BaseEvent{Type: t, BattleID: battleID, At: at}
}

// NewBattleStarted builds the event for a freshly started battle
func NewBattleStarted(b *battle.Battle) *BattleStartedEvent {
	ids := make([]string, 0, len(b.Order))
	for _, p := range b.Order {
		ids = append(ids, p.ID)
	}
	return &BattleStartedEvent{
		BaseEvent:    newBase(EventTypeBattleStarted, b.ID, b.StartedAt),
		Round:        b.Round,
		Participants: ids,
	}
}

// NewActionResolved builds the event for an action. Rejected actions get an
// ActionRejectedEvent instead.
func NewActionResolved(a *battle.Action) Event {
	if a.Rejected {
		return &ActionRejectedEvent{
			BaseEvent: newBase(EventTypeActionRejected, a.BattleID, a.Timestamp),
			Action:    *a,
		}
	}
	return &ActionResolvedEvent{
		BaseEvent: newBase(EventTypeActionResolved, a.BattleID, a.Timestamp),
		Action:    *a,
	}
}

// NewBattleCompleted builds the completion event; b must be completed
func NewBattleCompleted(b *battle.Battle) *BattleCompletedEvent {
	var at time.Time
	if b.EndedAt != nil {
		at = *b.EndedAt
	}
	return &BattleCompletedEvent{
		BaseEvent: newBase(EventTypeBattleCompleted, b.ID, at),
		Outcome:   b.Outcome,
		Rounds:    b.Round,
	}
}

// NewBattleRolledBack builds the rollback event, counting the actions the
// rollback newly cancelled
func NewBattleRolledBack(before, after *battle.Battle, actionIndex int, at time.Time) *BattleRolledBackEvent {
	count := func(b *battle.Battle) int {
		n := 0
		for _, a := range b.Log {
			if a.Cancelled {
				n++
			}
		}
		return n
	}
	return &BattleRolledBackEvent{
		BaseEvent:   newBase(EventTypeBattleRolledBack, after.ID, at),
		ActionIndex: actionIndex,
		Cancelled:   count(after) - count(before),
	}
}
