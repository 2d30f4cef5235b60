package battle_test

import (
	"time"

	"github.com/KirkDiggler/dnd-battle-engine/internal/domain/battle"
	"github.com/KirkDiggler/dnd-battle-engine/internal/domain/records"
	"github.com/KirkDiggler/dnd-battle-engine/internal/domain/stats"
)

var testTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func meta(chance ...float64) battle.CommandMeta {
	return battle.CommandMeta{At: testTime, ChanceRolls: chance}
}

func intPtr(v int) *int { return &v }

func testLibrary() *records.Library {
	lib := records.NewLibrary()
	lib.Races["dwarf"] = &records.Race{
		ID:             "dwarf",
		Name:           "Dwarf",
		Resistances:    []string{"poison"},
		MoraleFloor:    intPtr(0),
		PassiveAbility: map[string]any{"name": "Stonecunning", "description": "Hard to shake"},
		Bonuses:        map[string]float64{"ac": 1},
	}
	lib.Artifacts["longsword"] = &records.Artifact{
		ID:         "longsword",
		Name:       "Longsword",
		Attributes: map[string]string{"damage_dice": "1d8", "damage_type": "slashing", "attack_type": "melee"},
	}
	lib.Artifacts["rapier"] = &records.Artifact{
		ID:         "rapier",
		Name:       "Rapier",
		Attributes: map[string]string{"damage_dice": "1d8", "damage_type": "piercing", "properties": "finesse, light"},
	}
	lib.Artifacts["shortbow"] = &records.Artifact{
		ID:         "shortbow",
		Name:       "Shortbow",
		Attributes: map[string]string{"damage_dice": "1d6", "damage_type": "piercing", "attack_type": "ranged", "range": "80"},
	}
	lib.Artifacts["ring"] = &records.Artifact{
		ID:      "ring",
		Name:    "Ring of Might",
		Bonuses: map[string]float64{"melee_damage": 2},
	}
	lib.Skills["cleave"] = &records.Skill{
		ID:          "cleave",
		Name:        "Cleave",
		MainSkillID: "warfare",
		Triggers:    []string{"onHit && oncePerBattle"},
		Modifiers:   []records.Modifier{{Stat: "extra_damage", Type: "flat", Value: 3, DamageType: "slashing"}},
	}
	lib.Skills["second_wind"] = &records.Skill{
		ID:          "second_wind",
		Name:        "Second Wind",
		MainSkillID: "warfare",
		Triggers:    []string{"bonusAction && twicePerBattle"},
		BonusGroups: map[string]map[string]float64{"1": {"heal": 5}, "3": {"heal": 10}},
	}
	lib.Skills["pyromancy"] = &records.Skill{
		ID:          "pyromancy",
		Name:        "Pyromancy",
		MainSkillID: "evocation",
		SpellEnhancement: &records.SpellEnhancement{
			SpellID:               "fireball",
			EffectIncreasePercent: 50,
			GrantedSpellID:        "firebolt",
		},
	}
	lib.Spells["fireball"] = &records.Spell{
		ID:          "fireball",
		Name:        "Fireball",
		Level:       3,
		Type:        records.SpellTypeDamage,
		Dice:        "8d6",
		DamageType:  "fire",
		MaxTargets:  3,
		SavingThrow: &records.SavingThrow{Ability: stats.AttributeDexterity, OnSuccess: records.SaveHalf},
	}
	lib.Spells["firebolt"] = &records.Spell{
		ID:         "firebolt",
		Name:       "Fire Bolt",
		Level:      0,
		Type:       records.SpellTypeDamage,
		Dice:       "1d10",
		DamageType: "fire",
	}
	lib.Spells["venom_dart"] = &records.Spell{
		ID:                 "venom_dart",
		Name:               "Venom Dart",
		Level:              1,
		Type:               records.SpellTypeDamage,
		Dice:               "1d4",
		DamageType:         "piercing",
		AdditionalModifier: &records.AdditionalModifier{Name: "Venom", DamageType: "poison", Dice: "1d4", Duration: 2},
	}
	lib.Spells["cure"] = &records.Spell{
		ID:    "cure",
		Name:  "Cure Wounds",
		Level: 1,
		Type:  records.SpellTypeHeal,
		Dice:  "1d8",
	}
	return lib
}

func heroRecord() *records.Character {
	return &records.Character{
		ID:         "hero",
		OwnerID:    "player-1",
		Name:       "Thora",
		Level:      5,
		RaceID:     "dwarf",
		Abilities:  stats.Scores{"Str": 16, "Dex": 12, "Con": 14, "Int": 14, "Wis": 10, "Cha": 8},
		MaxHP:      44,
		CurrentHP:  44,
		ArmorClass: 16,
		Speed:      25,
		Morale:     2,
		Equipped:   map[string]string{"weapon": "longsword", "ring": "ring", "cloak": "missing-cloak"},
		KnownSpells: []string{
			"fireball", "venom_dart", "cure",
		},
		Spellcasting: &records.Spellcasting{
			Ability:  stats.AttributeIntelligence,
			SlotsMax: map[int]int{1: 2, 3: 1},
		},
		SkillProgress: map[string]records.SkillProgress{
			"warfare":   {Level: 3, UnlockedSkills: []string{"cleave", "second_wind", "forgotten"}},
			"evocation": {Level: 1, UnlockedSkills: []string{"pyromancy"}},
		},
	}
}

func goblinRecord() *records.Unit {
	return &records.Unit{
		ID:         "goblin",
		Name:       "Goblin",
		Level:      1,
		Abilities:  stats.Scores{"Str": 8, "Dex": 14, "Con": 10},
		MaxHP:      12,
		ArmorClass: 13,
		Speed:      30,
		Equipped:   map[string]string{"weapon": "shortbow"},
	}
}

// participant builds a hand-tuned combatant for pipeline tests
func participant(id string, side battle.Side, hp, ac int) *battle.Participant {
	return &battle.Participant{
		ID:         id,
		BattleID:   "battle-1",
		Name:       id,
		Side:       side,
		Abilities:  stats.Scores{},
		MaxHP:      hp,
		CurrentHP:  hp,
		ArmorClass: ac,
		Status:     battle.StatusActive,
		MinTargets: 1,
		MaxTargets: 1,
		Attacks: []battle.Attack{{
			ID:          "club",
			Name:        "Club",
			AttackBonus: 5,
			DamageDice:  "1d6",
			DamageType:  battle.DamagePhysical,
		}},
		MoraleFloor: -10,
	}
}

// activeBattle wraps hand-built participants in a battle on round 1 with the
// first participant to act
func activeBattle(ps ...*battle.Participant) *battle.Battle {
	initial := make([]*battle.Participant, len(ps))
	for i, p := range ps {
		initial[i] = p.Clone()
	}
	return &battle.Battle{
		ID:              "battle-1",
		Status:          battle.BattleStatusActive,
		Round:           1,
		Order:           ps,
		Initial:         initial,
		InitialRound:    1,
		NextActionIndex: 1,
		StartedAt:       testTime,
		Log: []battle.Action{{
			ID:        "start",
			BattleID:  "battle-1",
			Kind:      battle.ActionBattleStart,
			Timestamp: testTime,
		}},
	}
}

// endTurns advances the turn n times
func endTurns(e *battle.Engine, b *battle.Battle, n int) *battle.Battle {
	for i := 0; i < n; i++ {
		next, _, err := e.AdvanceTurn(b, battle.EndTurnCommand{CommandMeta: meta()})
		if err != nil {
			panic(err)
		}
		b = next
	}
	return b
}
