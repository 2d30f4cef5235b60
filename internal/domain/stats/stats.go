// Package stats holds the ability score primitives every combatant derives
// its numbers from.
package stats

import (
	"math"
	"strings"
)

type Attribute string

var Attributes = []Attribute{AttributeStrength, AttributeDexterity, AttributeConstitution, AttributeIntelligence, AttributeWisdom, AttributeCharisma}

const (
	AttributeNone         Attribute = ""
	AttributeStrength     Attribute = "Str"
	AttributeDexterity    Attribute = "Dex"
	AttributeConstitution Attribute = "Con"
	AttributeIntelligence Attribute = "Int"
	AttributeWisdom       Attribute = "Wis"
	AttributeCharisma     Attribute = "Cha"
)

// ParseAttribute accepts short ("dex") and long ("dexterity") names in any case
func ParseAttribute(s string) Attribute {
	key := strings.ToLower(strings.TrimSpace(s))
	if len(key) > 3 {
		key = key[:3]
	}
	for _, a := range Attributes {
		if strings.ToLower(string(a)) == key {
			return a
		}
	}
	return AttributeNone
}

// Scores is a full set of six ability scores
type Scores map[Attribute]int

// Modifiers derives the modifier for every attribute; missing scores count as 10
func (s Scores) Modifiers() map[Attribute]int {
	mods := make(map[Attribute]int, len(Attributes))
	for _, a := range Attributes {
		mods[a] = AbilityModifier(s.Score(a))
	}
	return mods
}

// Score returns the score for an attribute, defaulting to 10
func (s Scores) Score(a Attribute) int {
	if v, ok := s[a]; ok {
		return v
	}
	return 10
}

// AbilityModifier is floor((score-10)/2)
func AbilityModifier(score int) int {
	return int(math.Floor(float64(score-10) / 2))
}

// ProficiencyBonus is ceil(level/4)+1; levels below 1 count as 1
func ProficiencyBonus(level int) int {
	if level < 1 {
		level = 1
	}
	return (level+3)/4 + 1
}
