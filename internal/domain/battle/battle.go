// Package battle is the turn-based battle resolution engine. Every exported
// engine function takes a battle snapshot plus a command carrying pre-rolled
// dice and returns a new snapshot; the input is never modified.
package battle

import (
	"time"

	"github.com/KirkDiggler/dnd-battle-engine/internal/domain/records"
	dnderr "github.com/KirkDiggler/dnd-battle-engine/internal/errors"
)

// BattleStatus is the lifecycle state of a battle
type BattleStatus string

const (
	BattleStatusPrepared  BattleStatus = "prepared"
	BattleStatusActive    BattleStatus = "active"
	BattleStatusCompleted BattleStatus = "completed"
)

// Outcome is the result of a completed battle from the allies' view
type Outcome string

const (
	OutcomeNone    Outcome = ""
	OutcomeVictory Outcome = "victory"
	OutcomeDefeat  Outcome = "defeat"
)

// Battle is a full battle snapshot. Order is the initiative order and Initial
// the order as it stood right after the battle started, which replays begin
// from.
type Battle struct {
	ID               string         `json:"id"`
	Status           BattleStatus   `json:"status"`
	Round            int            `json:"round"`
	TurnIndex        int            `json:"turn_index"`
	Order            []*Participant `json:"order"`
	Initial          []*Participant `json:"initial,omitempty"`
	InitialRound     int            `json:"initial_round"`
	InitialTurnIndex int            `json:"initial_turn_index"`
	PendingSummons   []*Participant `json:"pending_summons,omitempty"`
	Log              []Action       `json:"log,omitempty"`
	NextActionIndex  int            `json:"next_action_index"`
	Outcome          Outcome        `json:"outcome,omitempty"`
	StartedAt        time.Time      `json:"started_at"`
	EndedAt          *time.Time     `json:"ended_at,omitempty"`
}

// Clone returns a deep copy of the battle. Log entries are immutable once
// appended and are copied by value.
func (b *Battle) Clone() *Battle {
	if b == nil {
		return nil
	}
	c := *b
	c.Order = cloneParticipants(b.Order)
	c.Initial = cloneParticipants(b.Initial)
	c.PendingSummons = cloneParticipants(b.PendingSummons)
	c.Log = cloneSlice(b.Log)
	if b.EndedAt != nil {
		t := *b.EndedAt
		c.EndedAt = &t
	}
	return &c
}

// Participant finds a participant in the initiative order by id
func (b *Battle) Participant(id string) *Participant {
	for _, p := range b.Order {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Current is the participant whose turn it is
func (b *Battle) Current() *Participant {
	if b.TurnIndex < 0 || b.TurnIndex >= len(b.Order) {
		return nil
	}
	return b.Order[b.TurnIndex]
}

// Side returns every participant fighting for side, in initiative order
func (b *Battle) Side(side Side) []*Participant {
	var out []*Participant
	for _, p := range b.Order {
		if p.Side == side {
			out = append(out, p)
		}
	}
	return out
}

// Action returns the log entry with the given index
func (b *Battle) Action(index int) *Action {
	for i := range b.Log {
		if b.Log[i].Index == index {
			return &b.Log[i]
		}
	}
	return nil
}

// SpellBook resolves spell definitions by id
type SpellBook interface {
	Spell(id string) *records.Spell
}

// Rules are the tunable constants of the engine
type Rules struct {
	// MinHP is the lowest HP is clamped to; anything below 0 marks death
	MinHP                  int            `json:"min_hp" yaml:"min_hp"`
	KillMoraleBonus        int            `json:"kill_morale_bonus" yaml:"kill_morale_bonus"`
	AllyDeathMoralePenalty int            `json:"ally_death_morale_penalty" yaml:"ally_death_morale_penalty"`
	DefaultMoraleFloor     int            `json:"default_morale_floor" yaml:"default_morale_floor"`
	RaceMoraleFloors       map[string]int `json:"race_morale_floors,omitempty" yaml:"race_morale_floors,omitempty"`
	DefaultEffectDuration  int            `json:"default_effect_duration" yaml:"default_effect_duration"`
	DefaultInitiativeRoll  int            `json:"default_initiative_roll" yaml:"default_initiative_roll"`
}

// DefaultRules returns the stock rule constants
func DefaultRules() Rules {
	return Rules{
		MinHP:                  -1,
		KillMoraleBonus:        1,
		AllyDeathMoralePenalty: 1,
		DefaultMoraleFloor:     -10,
		DefaultEffectDuration:  1,
		DefaultInitiativeRoll:  10,
	}
}

func (r Rules) moraleFloor(race *records.Race) int {
	if race != nil {
		if race.MoraleFloor != nil {
			return *race.MoraleFloor
		}
		if floor, ok := r.RaceMoraleFloors[race.ID]; ok {
			return floor
		}
	}
	return r.DefaultMoraleFloor
}

// Engine resolves battle commands under a fixed rule set
type Engine struct {
	rules Rules
}

// NewEngine creates an engine
func NewEngine(rules Rules) *Engine {
	if rules.MinHP >= 0 {
		rules.MinHP = -1
	}
	return &Engine{rules: rules}
}

// Rules returns the engine's rule constants
func (e *Engine) Rules() Rules {
	return e.rules
}

func requireActive(b *Battle) error {
	if b == nil {
		return dnderr.InvalidArgument("battle is required")
	}
	if b.Status != BattleStatusActive {
		return dnderr.FailedPreconditionf("battle %s is %s, not active", b.ID, b.Status).
			WithMeta("battle_id", b.ID).
			WithMeta("status", string(b.Status))
	}
	return nil
}
