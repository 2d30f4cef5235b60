package battle

import (
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/KirkDiggler/dnd-battle-engine/internal/domain/records"
	"github.com/KirkDiggler/dnd-battle-engine/internal/domain/stats"
	dnderr "github.com/KirkDiggler/dnd-battle-engine/internal/errors"
)

// Weapon slots in lookup order
var weaponSlots = []string{"weapon", "main_hand"}

const (
	defaultWeaponDice = "1d6"
	unarmedAttackID   = "unarmed"
)

// ParticipantSpec asks for Quantity copies of one source on one side
type ParticipantSpec struct {
	Source   records.Source `json:"source"`
	Side     Side           `json:"side"`
	Quantity int            `json:"quantity"`
}

// ParticipantID is the id of one instance of a source within a battle
func ParticipantID(kind records.SourceKind, sourceID string, instance int) string {
	return fmt.Sprintf("%s:%s:%d", kind, sourceID, instance)
}

func statusForHP(hp int) Status {
	switch {
	case hp > 0:
		return StatusActive
	case hp == 0:
		return StatusUnconscious
	default:
		return StatusDead
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NewParticipant materializes one combatant from a source record. Stale
// skill references become stubs and stale artifact references are skipped,
// so old records never block a battle.
func NewParticipant(battleID string, src records.Source, side Side, instance int, lib *records.Library, rules Rules) (*Participant, error) {
	if side != SideAlly && side != SideEnemy {
		return nil, dnderr.InvalidArgumentf("invalid side %q", side)
	}
	if instance < 1 {
		instance = 1
	}

	var p *Participant
	switch src.Kind {
	case records.SourceCharacter:
		if src.Character == nil {
			return nil, dnderr.InvalidArgument("character source has no record")
		}
		p = fromCharacter(src.Character, lib)
	case records.SourceUnit:
		if src.Unit == nil {
			return nil, dnderr.InvalidArgument("unit source has no record")
		}
		p = fromUnit(src.Unit)
	default:
		return nil, dnderr.InvalidArgumentf("unknown source kind %q", src.Kind)
	}

	p.BattleID = battleID
	p.SourceKind = src.Kind
	p.Side = side
	p.Instance = instance
	p.ID = ParticipantID(src.Kind, p.SourceID, instance)
	p.Modifiers = p.Abilities.Modifiers()
	p.Proficiency = stats.ProficiencyBonus(p.Level)
	p.Status = statusForHP(p.CurrentHP)

	applyRace(p, raceIDOf(src), lib, rules)
	p.Artifacts = equipArtifacts(p.Name, equippedOf(src), lib)
	p.Attacks = []Attack{weaponAttack(p, equippedOf(src), lib)}

	return p, nil
}

func raceIDOf(src records.Source) string {
	if src.Kind == records.SourceCharacter {
		return src.Character.RaceID
	}
	return src.Unit.RaceID
}

func equippedOf(src records.Source) map[string]string {
	if src.Kind == records.SourceCharacter {
		return src.Character.Equipped
	}
	return src.Unit.Equipped
}

func fromCharacter(c *records.Character, lib *records.Library) *Participant {
	controller := c.OwnerID
	if controller == "" {
		controller = ControllerDM
	}
	p := &Participant{
		SourceID:   c.ID,
		Name:       c.Name,
		Avatar:     c.Avatar,
		Controller: controller,
		Abilities:  cloneMap(c.Abilities),
		Level:      max(c.Level, 1),
		HitDie:     c.HitDie,
		MaxHP:      c.MaxHP,
		CurrentHP:  c.CurrentHP,
		TempHP:     max(c.TempHP, 0),
		ArmorClass: c.ArmorClass,
		Speed:      c.Speed,
		Morale:     c.Morale,
		MinTargets: 1,
		MaxTargets: 1,
	}
	p.Skills = buildSkills(c, lib)
	p.Spellcasting = buildSpellcasting(c, p)
	return p
}

func fromUnit(u *records.Unit) *Participant {
	p := &Participant{
		SourceID:        u.ID,
		Name:            u.Name,
		Avatar:          u.Avatar,
		Controller:      ControllerDM,
		Abilities:       cloneMap(u.Abilities),
		Level:           max(u.Level, 1),
		MaxHP:           u.MaxHP,
		CurrentHP:       u.MaxHP,
		ArmorClass:      u.ArmorClass,
		Speed:           u.Speed,
		Morale:          u.Morale,
		InitiativeBonus: u.InitiativeBonus,
		MinTargets:      max(u.MinTargets, 1),
		MaxTargets:      max(u.MaxTargets, 1),
	}
	if p.MaxTargets < p.MinTargets {
		p.MaxTargets = p.MinTargets
	}
	return p
}

func applyRace(p *Participant, raceID string, lib *records.Library, rules Rules) {
	race := lib.Race(raceID)
	p.MoraleFloor = rules.moraleFloor(race)
	if p.Morale < p.MoraleFloor {
		p.Morale = p.MoraleFloor
	}
	if race == nil {
		if raceID != "" {
			log.Printf("WARN: participant %s references unknown race %s", p.Name, raceID)
		}
		p.Race = raceID
		return
	}

	p.Race = race.Name
	for _, t := range race.Resistances {
		p.Resistances = append(p.Resistances, normalizeDamageType(t))
	}
	for _, t := range race.Immunities {
		p.Immunities = append(p.Immunities, normalizeDamageType(t))
	}

	if len(race.PassiveAbility) == 0 && len(race.Bonuses) == 0 {
		return
	}
	ability := RacialAbility{
		Name:    fmt.Sprintf("%s heritage", race.Name),
		Bonuses: cloneMap(race.Bonuses),
	}
	if name, ok := race.PassiveAbility["name"].(string); ok && name != "" {
		ability.Name = name
	}
	if desc, ok := race.PassiveAbility["description"].(string); ok {
		ability.Description = desc
	}
	if extra, ok := race.PassiveAbility["bonuses"].(map[string]any); ok {
		for _, key := range sortedKeys(extra) {
			value, ok := toFloat(extra[key])
			if !ok {
				continue
			}
			if ability.Bonuses == nil {
				ability.Bonuses = make(map[string]float64)
			}
			ability.Bonuses[key] += value
		}
	}
	p.RacialAbilities = []RacialAbility{ability}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func equipArtifacts(owner string, equipped map[string]string, lib *records.Library) []EquippedArtifact {
	var out []EquippedArtifact
	for _, slot := range sortedKeys(equipped) {
		id := equipped[slot]
		if id == "" {
			continue
		}
		a := lib.Artifact(id)
		if a == nil {
			log.Printf("WARN: %s has unknown artifact %s equipped in %s", owner, id, slot)
			continue
		}
		out = append(out, EquippedArtifact{
			Slot:           slot,
			ArtifactID:     a.ID,
			Name:           a.Name,
			Bonuses:        cloneMap(a.Bonuses),
			Modifiers:      cloneSlice(a.Modifiers),
			PassiveAbility: cloneAnyMap(a.PassiveAbility),
		})
	}
	return out
}

// weaponAttack derives the single weapon attack from the equipped weapon, or
// an unarmed strike when no weapon is equipped
func weaponAttack(p *Participant, equipped map[string]string, lib *records.Library) Attack {
	str := p.Modifier(stats.AttributeStrength)
	dex := p.Modifier(stats.AttributeDexterity)

	var weapon *records.Artifact
	for _, slot := range weaponSlots {
		if w := lib.Artifact(equipped[slot]); w != nil {
			weapon = w
			break
		}
	}
	if weapon == nil {
		return Attack{
			ID:          unarmedAttackID,
			Name:        "Unarmed Strike",
			AttackBonus: str + p.Proficiency,
			DamageDice:  "1d4",
			DamageBonus: str,
			DamageType:  DamagePhysical,
			Range:       5,
		}
	}

	attrs := weapon.Attributes
	attack := Attack{
		ID:         weapon.ID,
		Name:       weapon.Name,
		Ranged:     strings.EqualFold(attrs["attack_type"], "ranged"),
		DamageDice: attrs["damage_dice"],
		DamageType: normalizeDamageType(attrs["damage_type"]),
	}
	if attack.DamageDice == "" {
		attack.DamageDice = defaultWeaponDice
	}
	if attack.DamageType == "" {
		attack.DamageType = DamagePhysical
	}
	if r, err := strconv.Atoi(attrs["range"]); err == nil {
		attack.Range = r
	}
	for _, prop := range strings.Split(attrs["properties"], ",") {
		if prop = strings.ToLower(strings.TrimSpace(prop)); prop != "" {
			attack.Properties = append(attack.Properties, prop)
		}
	}

	mod := str
	switch {
	case attack.Ranged:
		mod = dex
	case hasProperty(attack.Properties, "finesse"):
		mod = max(str, dex)
	}
	attack.AttackBonus = mod + p.Proficiency
	attack.DamageBonus = mod
	return attack
}

func hasProperty(props []string, want string) bool {
	for _, p := range props {
		if p == want {
			return true
		}
	}
	return false
}

// skillEffects expands a skill's bonus map for a tier plus its typed
// modifiers into structured effect entries
func skillEffects(def *records.Skill, tier int) []EffectEntry {
	bonuses := def.BonusesForTier(tier)
	var out []EffectEntry
	for _, key := range sortedKeys(bonuses) {
		stat, typ := classifyBonusKey(key)
		out = append(out, EffectEntry{Stat: stat, Type: typ, Value: bonuses[key]})
	}
	for _, m := range def.Modifiers {
		out = append(out, modifierEntry(m))
	}
	return out
}

func buildSkills(c *records.Character, lib *records.Library) []ActiveSkill {
	var out []ActiveSkill
	seen := make(map[string]bool)
	for _, tree := range sortedKeys(c.SkillProgress) {
		progress := c.SkillProgress[tree]
		for _, id := range progress.UnlockedSkills {
			if seen[id] {
				continue
			}
			seen[id] = true

			def := lib.Skill(id)
			if def == nil {
				log.Printf("WARN: character %s has unknown skill %s", c.Name, id)
				out = append(out, ActiveSkill{SkillID: id, Name: id, MainSkillID: tree, Tier: progress.Level, Stub: true})
				continue
			}
			mainSkill := def.MainSkillID
			if mainSkill == "" {
				mainSkill = tree
			}
			skill := ActiveSkill{
				SkillID:     def.ID,
				Name:        def.Name,
				MainSkillID: mainSkill,
				Tier:        progress.Level,
				Effects:     skillEffects(def, progress.Level),
				Triggers:    ParseTriggers(def.ID, def.Triggers),
				Duration:    def.Duration,
			}
			if enh := def.SpellEnhancement; enh != nil {
				skill.SpellEnhancement = &SpellEnhancement{
					SpellID:               enh.SpellID,
					EffectIncreasePercent: enh.EffectIncreasePercent,
					TargetChange:          enh.TargetChange,
					GrantedSpellID:        enh.GrantedSpellID,
				}
				if enh.AdditionalModifier != nil {
					mod := *enh.AdditionalModifier
					skill.SpellEnhancement.AdditionalModifier = &mod
				}
			}
			out = append(out, skill)
		}
	}
	return out
}

func buildSpellcasting(c *records.Character, p *Participant) *Spellcasting {
	if c.Spellcasting == nil && len(c.KnownSpells) == 0 && !grantsSpells(p.Skills) {
		return nil
	}
	ability := stats.AttributeIntelligence
	if c.Spellcasting != nil && c.Spellcasting.Ability != stats.AttributeNone {
		ability = c.Spellcasting.Ability
	}
	mod := stats.AbilityModifier(c.Abilities.Score(ability))
	prof := stats.ProficiencyBonus(c.Level)

	sc := &Spellcasting{
		Ability:     ability,
		SaveDC:      8 + prof + mod,
		AttackBonus: prof + mod,
		KnownSpells: cloneSlice(c.KnownSpells),
	}
	if c.Spellcasting != nil && len(c.Spellcasting.SlotsMax) > 0 {
		sc.Slots = make(map[int]SpellSlot, len(c.Spellcasting.SlotsMax))
		for level, maxSlots := range c.Spellcasting.SlotsMax {
			current, ok := c.Spellcasting.SlotsCurrent[level]
			if !ok {
				current = maxSlots
			}
			sc.Slots[level] = SpellSlot{Max: maxSlots, Current: min(max(current, 0), maxSlots)}
		}
	}
	for _, s := range p.Skills {
		if s.SpellEnhancement != nil && s.SpellEnhancement.GrantedSpellID != "" && !sc.Knows(s.SpellEnhancement.GrantedSpellID) {
			sc.KnownSpells = append(sc.KnownSpells, s.SpellEnhancement.GrantedSpellID)
		}
	}
	return sc
}

func grantsSpells(skills []ActiveSkill) bool {
	for _, s := range skills {
		if s.SpellEnhancement != nil && s.SpellEnhancement.GrantedSpellID != "" {
			return true
		}
	}
	return false
}
