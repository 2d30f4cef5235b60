package battle_test

import (
	"testing"

	"github.com/KirkDiggler/dnd-battle-engine/internal/domain/battle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTrigger_Simple(t *testing.T) {
	tr := battle.ParseTrigger("onHit && rand() < 0.4 && oncePerBattle")

	assert.Equal(t, battle.EventOnHit, tr.Event)
	require.NotNil(t, tr.Probability)
	assert.InDelta(t, 0.4, *tr.Probability, 1e-9)
	assert.True(t, tr.OncePerBattle)
	assert.False(t, tr.Degraded)
	assert.Empty(t, tr.Condition)
	assert.Equal(t, 1, tr.UsageLimit())
}

func TestParseTrigger_Modifiers(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		event     battle.TriggerEvent
		prob      float64
		twice     bool
		stackable bool
		condition string
	}{
		{name: "percent probability", raw: "onKill, probability: 25%", event: battle.EventOnKill, prob: 0.25},
		{name: "whole number probability", raw: "onCast && probability=30", event: battle.EventOnCast, prob: 0.3},
		{name: "twice and stackable", raw: "endRound && twicePerBattle && stackable", event: battle.EventEndRound, twice: true, stackable: true},
		{name: "case insensitive event", raw: "ONFIRSTHITTAKENPERROUND", event: battle.EventOnFirstHitTakenPerRound},
		{name: "attack condition kept", raw: "onAttack && melee", event: battle.EventOnAttack, condition: "melee"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := battle.ParseTrigger(tt.raw)
			assert.Equal(t, tt.event, tr.Event)
			if tt.prob > 0 {
				require.NotNil(t, tr.Probability)
				assert.InDelta(t, tt.prob, *tr.Probability, 1e-9)
			} else {
				assert.Nil(t, tr.Probability)
			}
			assert.Equal(t, tt.twice, tr.TwicePerBattle)
			assert.Equal(t, tt.stackable, tr.Stackable)
			assert.Equal(t, tt.condition, tr.Condition)
		})
	}
}

func TestParseTrigger_Complex(t *testing.T) {
	tr := battle.ParseTrigger("enemy.hp <= 50%")

	assert.Equal(t, battle.EventStartRound, tr.Event)
	require.NotNil(t, tr.Complex)
	assert.Equal(t, "enemy", tr.Complex.Target)
	assert.Equal(t, "hp", tr.Complex.Stat)
	assert.Equal(t, "<=", tr.Complex.Operator)
	assert.Equal(t, 50.0, tr.Complex.Value)
	assert.True(t, tr.Complex.Percent)

	withEvent := battle.ParseTrigger("beforeOwnerAttack && selfMorale > 3")
	assert.Equal(t, battle.EventBeforeOwnerAttack, withEvent.Event)
	require.NotNil(t, withEvent.Complex)
	assert.Equal(t, "self", withEvent.Complex.Target)
	assert.Equal(t, "morale", withEvent.Complex.Stat)
	assert.False(t, withEvent.Complex.Percent)

	equals := battle.ParseTrigger("ally.level == 3")
	require.NotNil(t, equals.Complex)
	assert.Equal(t, "=", equals.Complex.Operator)
}

func TestParseTrigger_UnknownDegradesToPassive(t *testing.T) {
	tr := battle.ParseTrigger("when the moon is full")

	assert.Equal(t, battle.EventPassive, tr.Event)
	assert.Equal(t, "when the moon is full", tr.Condition)
	assert.True(t, tr.Degraded)

	skills := battle.ParseTriggers("moon", []string{"when the moon is full", "onHit"})
	require.Len(t, skills, 2)
	assert.True(t, skills[0].Degraded)
	assert.Equal(t, battle.EventOnHit, skills[1].Event)
}

func TestComparison_Holds(t *testing.T) {
	p := &battle.Participant{CurrentHP: 10, MaxHP: 40, Morale: 2, Level: 3, ArmorClass: 14}

	tests := []struct {
		name string
		cmp  battle.Comparison
		want bool
	}{
		{name: "hp percent below", cmp: battle.Comparison{Stat: "hp", Operator: "<=", Value: 25, Percent: true}, want: true},
		{name: "hp percent above", cmp: battle.Comparison{Stat: "hp", Operator: ">", Value: 50, Percent: true}, want: false},
		{name: "hp absolute", cmp: battle.Comparison{Stat: "hp", Operator: "=", Value: 10}, want: true},
		{name: "morale", cmp: battle.Comparison{Stat: "morale", Operator: "<", Value: 3}, want: true},
		{name: "level", cmp: battle.Comparison{Stat: "level", Operator: ">=", Value: 4}, want: false},
		{name: "ac", cmp: battle.Comparison{Stat: "ac", Operator: ">=", Value: 14}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cmp.Holds(p))
		})
	}
}
