package battle_test

import (
	"testing"

	"github.com/KirkDiggler/dnd-battle-engine/internal/domain/battle"
	"github.com/KirkDiggler/dnd-battle-engine/internal/domain/records"
	"github.com/KirkDiggler/dnd-battle-engine/internal/domain/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParticipant_Character(t *testing.T) {
	lib := testLibrary()

	p, err := battle.NewParticipant("battle-1", records.CharacterSource(heroRecord()), battle.SideAlly, 1, lib, battle.DefaultRules())
	require.NoError(t, err)

	assert.Equal(t, "character:hero:1", p.ID)
	assert.Equal(t, "player-1", p.Controller)
	assert.Equal(t, battle.StatusActive, p.Status)
	assert.Equal(t, 3, p.Proficiency)
	assert.Equal(t, 3, p.Modifiers[stats.AttributeStrength])
	assert.Equal(t, 44, p.CurrentHP)

	t.Run("weapon attack", func(t *testing.T) {
		require.Len(t, p.Attacks, 1)
		a := p.Attacks[0]
		assert.Equal(t, "longsword", a.ID)
		assert.False(t, a.Ranged)
		assert.Equal(t, 6, a.AttackBonus)
		assert.Equal(t, 3, a.DamageBonus)
		assert.Equal(t, "1d8", a.DamageDice)
		assert.Equal(t, "slashing", a.DamageType)
	})

	t.Run("stale artifact is skipped", func(t *testing.T) {
		require.Len(t, p.Artifacts, 2)
		assert.Equal(t, "ring", p.Artifacts[0].Slot)
		assert.Equal(t, "weapon", p.Artifacts[1].Slot)
		assert.Equal(t, battle.Bonus{Flat: 2}, p.DamageBonus())
	})

	t.Run("race", func(t *testing.T) {
		assert.Equal(t, "Dwarf", p.Race)
		assert.Equal(t, []string{"poison"}, p.Resistances)
		require.Len(t, p.RacialAbilities, 1)
		assert.Equal(t, "Stonecunning", p.RacialAbilities[0].Name)
		assert.Equal(t, 0, p.MoraleFloor)
		assert.Equal(t, 17, p.EffectiveAC())
	})

	t.Run("skills", func(t *testing.T) {
		require.Len(t, p.Skills, 4)
		assert.Equal(t, "pyromancy", p.Skills[0].SkillID)
		assert.Equal(t, "cleave", p.Skills[1].SkillID)
		assert.Equal(t, battle.EventOnHit, p.Skills[1].Triggers[0].Event)
		assert.Equal(t, []battle.EffectEntry{{
			Stat: battle.StatExtraDamage, Type: battle.EffectFlat, Value: 3, DamageType: "slashing",
		}}, p.Skills[1].Effects)

		wind := p.Skill("second_wind")
		require.NotNil(t, wind)
		assert.Equal(t, 3, wind.Tier)
		assert.Equal(t, []battle.EffectEntry{{Stat: battle.StatHeal, Type: battle.EffectFlat, Value: 10}}, wind.Effects)

		stub := p.Skill("forgotten")
		require.NotNil(t, stub)
		assert.True(t, stub.Stub)
		assert.Empty(t, stub.Effects)
	})

	t.Run("spellcasting", func(t *testing.T) {
		sc := p.Spellcasting
		require.NotNil(t, sc)
		assert.Equal(t, 13, sc.SaveDC)
		assert.Equal(t, 5, sc.AttackBonus)
		assert.Equal(t, battle.SpellSlot{Max: 1, Current: 1}, sc.Slots[3])
		assert.Equal(t, battle.SpellSlot{Max: 2, Current: 2}, sc.Slots[1])
		assert.True(t, sc.Knows("firebolt"), "granted by an enhancement")
		assert.Equal(t, 50.0, p.SpellEffectIncrease("fireball"))
	})
}

func TestNewParticipant_CharacterKeepsCurrentHP(t *testing.T) {
	hero := heroRecord()
	hero.CurrentHP = 0
	hero.TempHP = 5
	hero.Spellcasting.SlotsCurrent = map[int]int{3: 0}

	p, err := battle.NewParticipant("battle-1", records.CharacterSource(hero), battle.SideAlly, 1, testLibrary(), battle.DefaultRules())
	require.NoError(t, err)

	assert.Equal(t, 0, p.CurrentHP)
	assert.Equal(t, 5, p.TempHP)
	assert.Equal(t, battle.StatusUnconscious, p.Status)
	assert.Equal(t, battle.SpellSlot{Max: 1, Current: 0}, p.Spellcasting.Slots[3])
}

func TestNewParticipant_Unit(t *testing.T) {
	p, err := battle.NewParticipant("battle-1", records.UnitSource(goblinRecord()), battle.SideEnemy, 2, testLibrary(), battle.DefaultRules())
	require.NoError(t, err)

	assert.Equal(t, "unit:goblin:2", p.ID)
	assert.Equal(t, battle.ControllerDM, p.Controller)
	assert.Equal(t, 12, p.CurrentHP)
	assert.Nil(t, p.Spellcasting)
	assert.Empty(t, p.Skills)
	assert.Equal(t, 1, p.MinTargets)
	assert.Equal(t, 1, p.MaxTargets)

	require.Len(t, p.Attacks, 1)
	bow := p.Attacks[0]
	assert.True(t, bow.Ranged)
	assert.Equal(t, 4, bow.AttackBonus)
	assert.Equal(t, 80, bow.Range)
}

func TestNewParticipant_WeaponFallbacks(t *testing.T) {
	lib := testLibrary()

	t.Run("finesse uses the better of str and dex", func(t *testing.T) {
		unit := goblinRecord()
		unit.Equipped = map[string]string{"main_hand": "rapier"}
		p, err := battle.NewParticipant("battle-1", records.UnitSource(unit), battle.SideEnemy, 1, lib, battle.DefaultRules())
		require.NoError(t, err)

		assert.Equal(t, 4, p.Attacks[0].AttackBonus)
		assert.Equal(t, 2, p.Attacks[0].DamageBonus)
		assert.Equal(t, []string{"finesse", "light"}, p.Attacks[0].Properties)
	})

	t.Run("no weapon gives an unarmed strike", func(t *testing.T) {
		unit := goblinRecord()
		unit.Equipped = nil
		p, err := battle.NewParticipant("battle-1", records.UnitSource(unit), battle.SideEnemy, 1, lib, battle.DefaultRules())
		require.NoError(t, err)

		assert.Equal(t, "unarmed", p.Attacks[0].ID)
		assert.Equal(t, "1d4", p.Attacks[0].DamageDice)
	})

	t.Run("weapon without dice defaults", func(t *testing.T) {
		lib.Artifacts["stick"] = &records.Artifact{ID: "stick", Name: "Stick"}
		unit := goblinRecord()
		unit.Equipped = map[string]string{"weapon": "stick"}
		p, err := battle.NewParticipant("battle-1", records.UnitSource(unit), battle.SideEnemy, 1, lib, battle.DefaultRules())
		require.NoError(t, err)

		assert.Equal(t, "1d6", p.Attacks[0].DamageDice)
		assert.Equal(t, battle.DamagePhysical, p.Attacks[0].DamageType)
	})
}

func TestNewParticipant_InvalidSource(t *testing.T) {
	_, err := battle.NewParticipant("battle-1", records.Source{Kind: records.SourceUnit}, battle.SideEnemy, 1, nil, battle.DefaultRules())
	assert.Error(t, err)

	_, err = battle.NewParticipant("battle-1", records.UnitSource(goblinRecord()), battle.Side("neutral"), 1, nil, battle.DefaultRules())
	assert.Error(t, err)
}

func TestParticipant_CloneIsDeep(t *testing.T) {
	p, err := battle.NewParticipant("battle-1", records.CharacterSource(heroRecord()), battle.SideAlly, 1, testLibrary(), battle.DefaultRules())
	require.NoError(t, err)
	p.Artifacts[0].PassiveAbility = map[string]any{
		"bonuses": map[string]any{"strength": 1},
		"tags":    []any{"ring"},
	}

	c := p.Clone()
	require.Equal(t, p, c)

	c.Spellcasting.Slots[3] = battle.SpellSlot{Max: 1, Current: 0}
	c.Skills[1].Triggers[0].OncePerBattle = false
	c.Artifacts[0].Bonuses["melee_damage"] = 99
	c.Artifacts[0].PassiveAbility["bonuses"].(map[string]any)["strength"] = 5
	c.Artifacts[0].PassiveAbility["tags"].([]any)[0] = "amulet"

	assert.Equal(t, 1, p.Spellcasting.Slots[3].Current)
	assert.True(t, p.Skills[1].Triggers[0].OncePerBattle)
	assert.Equal(t, 2.0, p.Artifacts[0].Bonuses["melee_damage"])
	assert.Equal(t, 1, p.Artifacts[0].PassiveAbility["bonuses"].(map[string]any)["strength"])
	assert.Equal(t, "ring", p.Artifacts[0].PassiveAbility["tags"].([]any)[0])
}
