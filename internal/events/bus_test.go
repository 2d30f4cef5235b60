package events_test

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/KirkDiggler/dnd-battle-engine/internal/domain/battle"
	"github.com/KirkDiggler/dnd-battle-engine/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var at = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func resolved(index int, result string) *battle.Action {
	return &battle.Action{
		BattleID:  "battle-1",
		Index:     index,
		Round:     1,
		Timestamp: at,
		Kind:      battle.ActionAttack,
		Result:    result,
		Messages:  []string{"Thora triggers Cleave"},
	}
}

func TestEventBus_Priority(t *testing.T) {
	bus := events.NewBus()

	// Track execution order
	var executionOrder []string
	listener := func(id string, priority int) *events.ListenerFunc {
		return &events.ListenerFunc{Name: id, Order: priority, Fn: func(events.Event) error {
			executionOrder = append(executionOrder, id)
			return nil
		}}
	}

	// Subscribe in random order
	bus.Subscribe(events.EventTypeActionResolved, listener("low", 300))
	bus.Subscribe(events.EventTypeActionResolved, listener("high", 100))
	bus.Subscribe(events.EventTypeActionResolved, listener("medium", 200))

	err := bus.Emit(events.NewActionResolved(resolved(1, "hit")))
	require.NoError(t, err)

	// Lower priority number runs earlier
	assert.Equal(t, []string{"high", "medium", "low"}, executionOrder)
}

func TestEventBus_Cancellation(t *testing.T) {
	bus := events.NewBus()

	var firstExecuted, secondExecuted bool

	bus.Subscribe(events.EventTypeBattleCompleted, &events.ListenerFunc{Name: "first", Order: 100, Fn: func(e events.Event) error {
		firstExecuted = true
		e.Cancel()
		return nil
	}})
	bus.Subscribe(events.EventTypeBattleCompleted, &events.ListenerFunc{Name: "second", Order: 200, Fn: func(events.Event) error {
		secondExecuted = true
		return nil
	}})

	event := events.NewBattleCompleted(&battle.Battle{ID: "battle-1", Outcome: battle.OutcomeVictory, Round: 3, EndedAt: &at})
	require.NoError(t, bus.Emit(event))

	assert.True(t, firstExecuted)
	assert.False(t, secondExecuted)
	assert.True(t, event.IsCancelled())
	assert.Equal(t, at, event.GetAt())
}

func TestEventBus_ListenerError(t *testing.T) {
	bus := events.NewBus()
	boom := errors.New("boom")
	bus.Subscribe(events.EventTypeActionResolved, &events.ListenerFunc{Name: "broken", Fn: func(events.Event) error { return boom }})

	err := bus.Emit(events.NewActionResolved(resolved(1, "hit")))
	assert.ErrorIs(t, err, boom)
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := events.NewBus()
	noop := func(events.Event) error { return nil }
	bus.Subscribe(events.EventTypeActionResolved, &events.ListenerFunc{Name: "a", Fn: noop})
	bus.Subscribe(events.EventTypeActionResolved, &events.ListenerFunc{Name: "b", Fn: noop})

	bus.Unsubscribe(events.EventTypeActionResolved, "a")
	assert.Equal(t, 1, bus.Count(events.EventTypeActionResolved))

	bus.Clear()
	assert.Zero(t, bus.Count(events.EventTypeActionResolved))
}

func TestNewActionResolved_RejectedActions(t *testing.T) {
	a := resolved(2, "it is not Thora's turn")
	a.Rejected = true

	e := events.NewActionResolved(a)
	assert.Equal(t, events.EventTypeActionRejected, e.GetType())
	assert.Equal(t, "battle-1", e.GetBattleID())
}

func TestNewBattleRolledBack_CountsNewCancellations(t *testing.T) {
	before := &battle.Battle{ID: "battle-1", Log: []battle.Action{{Index: 0}, {Index: 1, Cancelled: true}, {Index: 2}, {Index: 3}}}
	after := &battle.Battle{ID: "battle-1", Log: []battle.Action{{Index: 0}, {Index: 1, Cancelled: true}, {Index: 2, Cancelled: true}, {Index: 3, Cancelled: true}}}

	e := events.NewBattleRolledBack(before, after, 2, at)
	assert.Equal(t, 2, e.Cancelled)
	assert.Equal(t, 2, e.ActionIndex)
}

func TestLogListener(t *testing.T) {
	var buf bytes.Buffer
	bus := events.NewBus()
	events.NewLogListener(&buf).Register(bus)

	b := &battle.Battle{ID: "battle-1", Round: 1, Order: []*battle.Participant{{ID: "a"}, {ID: "b"}}, StartedAt: at}
	require.NoError(t, bus.Emit(events.NewBattleStarted(b)))
	require.NoError(t, bus.Emit(events.NewActionResolved(resolved(1, "Thora hits Goblin"))))

	rejected := resolved(2, "no available slots for level 3 spells")
	rejected.Rejected = true
	require.NoError(t, bus.Emit(events.NewActionResolved(rejected)))

	out := buf.String()
	assert.Contains(t, out, "battle battle-1: started with 2 participants")
	assert.Contains(t, out, "[1] round 1 Thora hits Goblin")
	assert.Contains(t, out, "Thora triggers Cleave")
	assert.Contains(t, out, "WARN: battle battle-1: rejected attack: no available slots")
}
