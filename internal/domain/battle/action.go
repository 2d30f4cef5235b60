package battle

import (
	"time"
)

// ActionKind is the kind of a battle log entry
type ActionKind string

const (
	ActionAttack      ActionKind = "attack"
	ActionSpell       ActionKind = "spell"
	ActionSkill       ActionKind = "skill"
	ActionEndTurn     ActionKind = "end_turn"
	ActionSummon      ActionKind = "summon"
	ActionBattleStart ActionKind = "battle_start"
	ActionBattleEnd   ActionKind = "battle_end"
)

// CommandMeta is carried by every command. At stamps the resulting action and
// ChanceRolls feed probability-gated triggers in order.
type CommandMeta struct {
	At          time.Time `json:"at"`
	ChanceRolls []float64 `json:"chance_rolls,omitempty"`
}

// AttackCommand resolves one weapon attack with pre-rolled dice
type AttackCommand struct {
	CommandMeta
	AttackerID  string `json:"attacker_id"`
	TargetID    string `json:"target_id"`
	AttackID    string `json:"attack_id,omitempty"`
	D20Roll     int    `json:"d20_roll"`
	DamageRolls []int  `json:"damage_rolls,omitempty"`
}

// SpellCommand resolves one spell cast. SavingThrows line up with TargetIDs.
type SpellCommand struct {
	CommandMeta
	CasterID       string   `json:"caster_id"`
	SpellID        string   `json:"spell_id"`
	TargetIDs      []string `json:"target_ids"`
	DamageRolls    []int    `json:"damage_rolls,omitempty"`
	SavingThrows   []int    `json:"saving_throws,omitempty"`
	AdditionalRoll *int     `json:"additional_roll,omitempty"`
}

// SkillCommand uses a bonus-action skill; TargetID defaults to the user
type SkillCommand struct {
	CommandMeta
	ParticipantID string `json:"participant_id"`
	SkillID       string `json:"skill_id"`
	TargetID      string `json:"target_id,omitempty"`
}

// EndTurnCommand ends the current participant's turn
type EndTurnCommand struct {
	CommandMeta
}

// SummonCommand queues a participant to join at the next round
type SummonCommand struct {
	CommandMeta
	Participant *Participant `json:"participant"`
}

// Command is the recorded input of an action. Exactly one field is set.
type Command struct {
	Attack  *AttackCommand  `json:"attack,omitempty"`
	Spell   *SpellCommand   `json:"spell,omitempty"`
	Skill   *SkillCommand   `json:"skill,omitempty"`
	EndTurn *EndTurnCommand `json:"end_turn,omitempty"`
	Summon  *SummonCommand  `json:"summon,omitempty"`
}

// SaveOutcome is one target's saving throw against a spell
type SaveOutcome struct {
	TargetID string `json:"target_id"`
	Roll     int    `json:"roll"`
	Modifier int    `json:"modifier"`
	DC       int    `json:"dc"`
	Success  bool   `json:"success"`
}

// ActionDetails is the structured breakdown of an action
type ActionDetails struct {
	AttackID       string        `json:"attack_id,omitempty"`
	AttackName     string        `json:"attack_name,omitempty"`
	SpellID        string        `json:"spell_id,omitempty"`
	SpellName      string        `json:"spell_name,omitempty"`
	SpellLevel     int           `json:"spell_level,omitempty"`
	SkillID        string        `json:"skill_id,omitempty"`
	D20Roll        int           `json:"d20_roll,omitempty"`
	AttackTotal    int           `json:"attack_total,omitempty"`
	TargetAC       int           `json:"target_ac,omitempty"`
	Hit            bool          `json:"hit,omitempty"`
	DamageRolls    []int         `json:"damage_rolls,omitempty"`
	RawDamage      int           `json:"raw_damage,omitempty"`
	TotalDamage    int           `json:"total_damage,omitempty"`
	TotalHealing   int           `json:"total_healing,omitempty"`
	Saves          []SaveOutcome `json:"saves,omitempty"`
	Breakdown      []string      `json:"breakdown,omitempty"`
	AppliedEffects []string      `json:"applied_effects,omitempty"`
}

// Action is one append-only battle log entry. Index strictly increases
// within a battle and is the unit of rollback.
type Action struct {
	ID        string         `json:"id"`
	BattleID  string         `json:"battle_id"`
	Index     int            `json:"index"`
	Round     int            `json:"round"`
	Timestamp time.Time      `json:"timestamp"`
	ActorID   string         `json:"actor_id,omitempty"`
	ActorName string         `json:"actor_name,omitempty"`
	ActorSide Side           `json:"actor_side,omitempty"`
	Kind      ActionKind     `json:"kind"`
	TargetIDs []string       `json:"target_ids,omitempty"`
	Details   ActionDetails  `json:"details"`
	Result    string         `json:"result"`
	HPDeltas  map[string]int `json:"hp_deltas,omitempty"`
	Messages  []string       `json:"messages,omitempty"`
	Cancelled bool           `json:"cancelled,omitempty"`
	Rejected  bool           `json:"rejected,omitempty"`
	Command   Command        `json:"command"`
}

func (a *Action) addMessage(msg string) {
	a.Messages = append(a.Messages, msg)
}

func (a *Action) addBreakdown(lines ...string) {
	a.Details.Breakdown = append(a.Details.Breakdown, lines...)
}

func (a *Action) addDelta(participantID string, delta int) {
	if delta == 0 {
		return
	}
	if a.HPDeltas == nil {
		a.HPDeltas = make(map[string]int)
	}
	a.HPDeltas[participantID] += delta
}
