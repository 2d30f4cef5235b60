package battle_test

import (
	"testing"

	"github.com/KirkDiggler/dnd-battle-engine/internal/domain/battle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skill(id string, trigger string, effects ...battle.EffectEntry) battle.ActiveSkill {
	return battle.ActiveSkill{
		SkillID:  id,
		Name:     id,
		Effects:  effects,
		Triggers: []battle.SkillTrigger{battle.ParseTrigger(trigger)},
	}
}

func selfMorale(v float64) battle.EffectEntry {
	return battle.EffectEntry{Stat: battle.StatMorale, Type: battle.EffectFlat, Value: v, Target: "self"}
}

func TestTrigger_OncePerBattleFiresOnce(t *testing.T) {
	e := newEngine()
	a := participant("a", battle.SideAlly, 30, 10)
	a.Attacks[0].AttackBonus = 20
	a.Skills = []battle.ActiveSkill{skill("focus", "onHit && oncePerBattle", selfMorale(1))}
	b := activeBattle(a, participant("dummy", battle.SideEnemy, 1000, 10))

	for i := 0; i < 5; i++ {
		next, act, err := e.ResolveAttack(b, attack("a", "dummy", 10, 1))
		require.NoError(t, err)
		require.False(t, act.Rejected)
		b = endTurns(e, next, 2)
	}

	got := b.Participant("a")
	assert.Equal(t, 1, got.Morale)
	assert.Equal(t, 1, got.SkillUsage["focus"])
}

func TestTrigger_TwicePerBattleFiresTwice(t *testing.T) {
	e := newEngine()
	a := participant("a", battle.SideAlly, 30, 10)
	a.Skills = []battle.ActiveSkill{skill("rally", "endRound && twicePerBattle", selfMorale(1))}
	b := activeBattle(a, participant("foe", battle.SideEnemy, 10, 10))

	b = endTurns(e, b, 8)

	assert.Equal(t, 5, b.Round)
	assert.Equal(t, 2, b.Participant("a").Morale)
}

func TestTrigger_ProbabilityUsesChanceRolls(t *testing.T) {
	e := newEngine()
	a := participant("a", battle.SideAlly, 30, 10)
	a.Attacks[0].AttackBonus = 20
	a.Skills = []battle.ActiveSkill{skill("luck", "onHit && rand() < 0.4", selfMorale(1))}
	b := activeBattle(a, participant("dummy", battle.SideEnemy, 1000, 10))

	miss := attack("a", "dummy", 10, 1)
	miss.ChanceRolls = []float64{0.7}
	next, act, err := e.ResolveAttack(b, miss)
	require.NoError(t, err)
	assert.Equal(t, 0, next.Participant("a").Morale)
	assert.Contains(t, act.Messages, "a's luck did not trigger")

	hit := attack("a", "dummy", 10, 1)
	hit.ChanceRolls = []float64{0.3}
	next, _, err = e.ResolveAttack(b, hit)
	require.NoError(t, err)
	assert.Equal(t, 1, next.Participant("a").Morale)

	next, _, err = e.ResolveAttack(b, attack("a", "dummy", 10, 1))
	require.NoError(t, err)
	assert.Equal(t, 0, next.Participant("a").Morale, "no chance rolls means the gate fails")
}

func TestTrigger_OnHitTargetsOpponent(t *testing.T) {
	e := newEngine()
	a := participant("a", battle.SideAlly, 30, 10)
	a.Attacks[0].AttackBonus = 20
	a.Skills = []battle.ActiveSkill{
		skill("burn", "onHit", battle.EffectEntry{Stat: battle.StatExtraDamage, Type: battle.EffectFlat, Value: 4, DamageType: "fire"}),
		skill("weaken", "onHit", battle.EffectEntry{Stat: battle.StatAC, Type: battle.EffectFlat, Value: -2}),
	}
	a.Skills[1].Duration = 2
	foe := participant("foe", battle.SideEnemy, 50, 10)
	foe.Resistances = []string{"fire"}

	next, act, err := e.ResolveAttack(activeBattle(a, foe), attack("a", "foe", 10, 5))
	require.NoError(t, err)

	got := next.Participant("foe")
	assert.Equal(t, 50-5-2, got.CurrentHP)
	require.Len(t, got.Effects, 1)
	assert.Equal(t, "weaken", got.Effects[0].Name)
	assert.Equal(t, battle.EffectKindDebuff, got.Effects[0].Kind)
	assert.Equal(t, 2, got.Effects[0].Duration)
	assert.Equal(t, 8, got.EffectiveAC())
	assert.Contains(t, act.Messages, "a triggers burn")
}

func TestTrigger_ConditionRestrictsToMelee(t *testing.T) {
	e := newEngine()
	archer := participant("archer", battle.SideAlly, 30, 10)
	archer.Attacks[0] = battle.Attack{ID: "bow", Name: "Bow", Ranged: true, AttackBonus: 20, DamageDice: "1d6"}
	archer.Skills = []battle.ActiveSkill{
		skill("brawler", "onAttack && melee", selfMorale(1)),
		skill("first-shot", "onFirstRangedAttack", selfMorale(10)),
	}
	b := activeBattle(archer, participant("dummy", battle.SideEnemy, 1000, 10))

	next, _, err := e.ResolveAttack(b, attack("archer", "dummy", 10, 1))
	require.NoError(t, err)
	assert.Equal(t, 10, next.Participant("archer").Morale)
	assert.Equal(t, 1, next.Participant("archer").RangedAttacksMade)

	next = endTurns(e, next, 2)
	next, _, err = e.ResolveAttack(next, attack("archer", "dummy", 10, 1))
	require.NoError(t, err)
	assert.Equal(t, 10, next.Participant("archer").Morale, "first ranged attack only fires once")
}

func TestTrigger_DegradedRuleIsInert(t *testing.T) {
	e := newEngine()
	a := participant("a", battle.SideAlly, 30, 10)
	a.Skills = []battle.ActiveSkill{skill("odd", "whenever it rains", battle.EffectEntry{Stat: battle.StatAC, Type: battle.EffectFlat, Value: 5})}

	require.True(t, a.Skills[0].Triggers[0].Degraded)
	assert.False(t, a.Skills[0].IsPassive())
	assert.Equal(t, 10, a.EffectiveAC(), "a conditional passive adds nothing")

	b := endTurns(e, activeBattle(a, participant("foe", battle.SideEnemy, 10, 10)), 2)
	assert.Empty(t, b.Participant("a").Effects)
}

func TestTrigger_ComplexStartRound(t *testing.T) {
	e := newEngine()
	a := participant("a", battle.SideAlly, 40, 10)
	a.Skills = []battle.ActiveSkill{skill("last-stand", "self.hp <= 50% && oncePerBattle",
		battle.EffectEntry{Stat: battle.StatHeal, Type: battle.EffectFlat, Value: 10})}
	foe := participant("foe", battle.SideEnemy, 10, 10)
	b := activeBattle(a, foe)

	b = endTurns(e, b, 2)
	assert.Equal(t, 40, b.Participant("a").CurrentHP)
	assert.Zero(t, b.Participant("a").SkillUsage["last-stand"])

	b.Participant("a").CurrentHP = 15
	b = endTurns(e, b, 2)
	assert.Equal(t, 25, b.Participant("a").CurrentHP)
	assert.Equal(t, 1, b.Participant("a").SkillUsage["last-stand"])
}

func TestTrigger_OnKillGrantsExtraTurn(t *testing.T) {
	e := newEngine()
	a := participant("a", battle.SideAlly, 30, 10)
	a.Attacks[0].AttackBonus = 20
	a.Skills = []battle.ActiveSkill{skill("momentum", "onKill", battle.EffectEntry{Stat: battle.StatExtraAction, Type: battle.EffectFlag, Value: 1})}
	weak := participant("weak", battle.SideEnemy, 3, 10)
	strong := participant("strong", battle.SideEnemy, 30, 10)

	b, _, err := e.ResolveAttack(activeBattle(a, weak, strong), attack("a", "weak", 10, 6))
	require.NoError(t, err)
	require.True(t, b.Participant("a").HasExtraTurn)

	b, act, err := e.AdvanceTurn(b, battle.EndTurnCommand{CommandMeta: meta()})
	require.NoError(t, err)
	assert.Equal(t, "a", b.Current().ID)
	assert.Equal(t, 1, b.Round)
	assert.False(t, b.Participant("a").HasUsedAction)
	assert.False(t, b.Participant("a").HasExtraTurn)
	assert.Contains(t, act.Messages, "a takes an extra turn")

	b, _, err = e.AdvanceTurn(b, battle.EndTurnCommand{CommandMeta: meta()})
	require.NoError(t, err)
	assert.Equal(t, "strong", b.Current().ID, "dead participants are skipped")
}

func TestTrigger_SurviveLethalOnce(t *testing.T) {
	e := newEngine()
	a := participant("a", battle.SideAlly, 30, 10)
	a.Attacks[0].AttackBonus = 20
	foe := participant("foe", battle.SideEnemy, 20, 10)
	foe.Skills = []battle.ActiveSkill{skill("undying", "onLethalDamage && oncePerBattle",
		battle.EffectEntry{Stat: battle.StatSurviveLethal, Type: battle.EffectFlag, Value: 1})}
	b := activeBattle(a, foe)

	b, _, err := e.ResolveAttack(b, attack("a", "foe", 10, 50))
	require.NoError(t, err)
	assert.Equal(t, 1, b.Participant("foe").CurrentHP)
	assert.Equal(t, battle.StatusActive, b.Participant("foe").Status)

	b = endTurns(e, b, 2)
	b, _, err = e.ResolveAttack(b, attack("a", "foe", 10, 50))
	require.NoError(t, err)
	assert.Equal(t, battle.StatusDead, b.Participant("foe").Status)
	assert.Equal(t, battle.OutcomeVictory, b.Outcome)
}

func TestTrigger_UnlimitedLethalSkillDoesNotSaveHolder(t *testing.T) {
	e := newEngine()
	a := participant("a", battle.SideAlly, 30, 10)
	foe := participant("foe", battle.SideEnemy, 20, 10)
	foe.Skills = []battle.ActiveSkill{skill("mend", "onLethalDamage",
		battle.EffectEntry{Stat: battle.StatHeal, Type: battle.EffectFlat, Value: 10})}

	b, act, err := e.ResolveAttack(activeBattle(a, foe), attack("a", "foe", 10, 50))
	require.NoError(t, err)

	got := b.Participant("foe")
	assert.Equal(t, battle.StatusDead, got.Status)
	assert.Empty(t, got.SkillUsage)
	assert.Contains(t, act.Messages, "foe triggers mend")
	assert.Equal(t, battle.OutcomeVictory, b.Outcome)
}

func TestTrigger_LethalSkillEffectsApplyBeforeTheBlow(t *testing.T) {
	e := newEngine()
	a := participant("a", battle.SideAlly, 30, 10)
	foe := participant("foe", battle.SideEnemy, 20, 10)
	foe.CurrentHP = 5
	foe.Skills = []battle.ActiveSkill{skill("mend", "onLethalDamage",
		battle.EffectEntry{Stat: battle.StatHeal, Type: battle.EffectFlat, Value: 10})}

	b, _, err := e.ResolveAttack(activeBattle(a, foe), attack("a", "foe", 10, 12))
	require.NoError(t, err)

	got := b.Participant("foe")
	assert.Equal(t, 3, got.CurrentHP)
	assert.Equal(t, battle.StatusActive, got.Status)
}

func TestTrigger_SurviveLethalRequiresUsageLimit(t *testing.T) {
	e := newEngine()
	a := participant("a", battle.SideAlly, 30, 10)
	foe := participant("foe", battle.SideEnemy, 20, 10)
	foe.Skills = []battle.ActiveSkill{skill("undying", "onLethalDamage",
		battle.EffectEntry{Stat: battle.StatSurviveLethal, Type: battle.EffectFlag, Value: 1})}

	b, _, err := e.ResolveAttack(activeBattle(a, foe), attack("a", "foe", 10, 50))
	require.NoError(t, err)
	assert.Equal(t, battle.StatusDead, b.Participant("foe").Status)
}

func TestTrigger_UnconsciousHolderDoesNotSurviveLethal(t *testing.T) {
	e := newEngine()
	a := participant("a", battle.SideAlly, 30, 10)
	foe := participant("foe", battle.SideEnemy, 20, 10)
	foe.CurrentHP = 0
	foe.Status = battle.StatusUnconscious
	foe.Skills = []battle.ActiveSkill{skill("undying", "onLethalDamage && oncePerBattle",
		battle.EffectEntry{Stat: battle.StatSurviveLethal, Type: battle.EffectFlag, Value: 1})}

	b, _, err := e.ResolveAttack(activeBattle(a, foe), attack("a", "foe", 10, 5))
	require.NoError(t, err)

	got := b.Participant("foe")
	assert.Equal(t, battle.StatusDead, got.Status)
	assert.Equal(t, -1, got.CurrentHP)
	assert.Empty(t, got.SkillUsage)
}

func TestTrigger_RefiringRespectsStackable(t *testing.T) {
	tests := []struct {
		name    string
		trigger string
		want    int
	}{
		{name: "replaces", trigger: "onHit", want: 1},
		{name: "stacks", trigger: "onHit && stackable", want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine()
			a := participant("a", battle.SideAlly, 30, 10)
			a.Attacks[0].AttackBonus = 20
			guard := skill("guard", tt.trigger,
				battle.EffectEntry{Stat: battle.StatAC, Type: battle.EffectFlat, Value: 1, Target: "self"})
			guard.Duration = 5
			a.Skills = []battle.ActiveSkill{guard}
			b := activeBattle(a, participant("dummy", battle.SideEnemy, 1000, 10))

			b, _, err := e.ResolveAttack(b, attack("a", "dummy", 10, 1))
			require.NoError(t, err)
			b = endTurns(e, b, 2)
			b, _, err = e.ResolveAttack(b, attack("a", "dummy", 10, 1))
			require.NoError(t, err)

			effects := b.Participant("a").Effects
			require.Len(t, effects, tt.want)
			assert.Equal(t, 2, effects[len(effects)-1].AppliedRound)
		})
	}
}

func TestTrigger_BeforeEnemyAttackBuffsDefender(t *testing.T) {
	e := newEngine()
	a := participant("a", battle.SideAlly, 30, 10)
	a.Attacks[0].AttackBonus = 5
	foe := participant("foe", battle.SideEnemy, 30, 14)
	foe.Skills = []battle.ActiveSkill{skill("parry", "beforeEnemyAttack && melee",
		battle.EffectEntry{Stat: battle.StatAC, Type: battle.EffectFlat, Value: 3})}

	next, act, err := e.ResolveAttack(activeBattle(a, foe), attack("a", "foe", 10, 4))
	require.NoError(t, err)

	assert.Equal(t, 17, act.Details.TargetAC)
	assert.False(t, act.Details.Hit)
	assert.Equal(t, battle.EffectKindBuff, next.Participant("foe").Effects[0].Kind)
}

func TestResolveBonusActionSkill(t *testing.T) {
	e := newEngine()
	a := participant("a", battle.SideAlly, 30, 10)
	a.CurrentHP = 10
	a.Skills = []battle.ActiveSkill{
		skill("second-wind", "bonusAction && twicePerBattle", battle.EffectEntry{Stat: battle.StatHeal, Type: battle.EffectFlat, Value: 10}),
		skill("battle-cry", "bonusAction", battle.EffectEntry{Stat: battle.StatMorale, Type: battle.EffectFlat, Value: 2}),
		{SkillID: "stale", Name: "stale", Stub: true},
		skill("passive-only", "passive"),
	}
	ally := participant("ally", battle.SideAlly, 30, 10)
	b := activeBattle(a, ally, participant("foe", battle.SideEnemy, 30, 10))

	next, act, err := e.ResolveBonusActionSkill(b, battle.SkillCommand{CommandMeta: meta(), ParticipantID: "a", SkillID: "second-wind"})
	require.NoError(t, err)
	require.False(t, act.Rejected)
	assert.Equal(t, 20, next.Participant("a").CurrentHP)
	assert.True(t, next.Participant("a").HasUsedBonusAction)
	assert.NotEmpty(t, act.Messages)

	_, again, err := e.ResolveBonusActionSkill(next, battle.SkillCommand{CommandMeta: meta(), ParticipantID: "a", SkillID: "battle-cry"})
	require.NoError(t, err)
	assert.True(t, again.Rejected, "one bonus action per turn")

	cry, _, err := e.ResolveBonusActionSkill(b, battle.SkillCommand{CommandMeta: meta(), ParticipantID: "a", SkillID: "battle-cry", TargetID: "ally"})
	require.NoError(t, err)
	assert.Equal(t, 2, cry.Participant("ally").Morale)
	assert.Equal(t, 0, cry.Participant("a").Morale)

	for _, id := range []string{"stale", "passive-only", "unknown"} {
		_, rejected, err := e.ResolveBonusActionSkill(b, battle.SkillCommand{CommandMeta: meta(), ParticipantID: "a", SkillID: id})
		require.NoError(t, err)
		assert.True(t, rejected.Rejected, id)
	}
}
