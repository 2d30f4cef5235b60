package events

import (
	"time"
)

// EventType names a battle lifecycle notification
type EventType string

const (
	EventTypeBattleStarted    EventType = "battle_started"
	EventTypeActionResolved   EventType = "action_resolved"
	EventTypeActionRejected   EventType = "action_rejected"
	EventTypeBattleCompleted  EventType = "battle_completed"
	EventTypeBattleRolledBack EventType = "battle_rolled_back"
)

// Event is the base interface for all battle events
type Event interface {
	GetType() EventType
	GetBattleID() string
	GetAt() time.Time
	IsCancelled() bool
	Cancel()
}

// BaseEvent provides common implementation for all events
type BaseEvent struct {
	Type      EventType
	BattleID  string
	At        time.Time
	Cancelled bool
}

func (e *BaseEvent) GetType() EventType  { return e.Type }
func (e *BaseEvent) GetBattleID() string { return e.BattleID }
func (e *BaseEvent) GetAt() time.Time    { return e.At }
func (e *BaseEvent) IsCancelled() bool   { return e.Cancelled }
func (e *BaseEvent) Cancel()             { e.Cancelled = true }
