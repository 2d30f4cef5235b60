package battle

import (
	"log"
	"regexp"
	"strconv"
	"strings"
)

// TriggerEvent is a named lifecycle point skills can bind to
type TriggerEvent string

const (
	EventStartRound              TriggerEvent = "startRound"
	EventEndRound                TriggerEvent = "endRound"
	EventBeforeOwnerAttack       TriggerEvent = "beforeOwnerAttack"
	EventBeforeEnemyAttack       TriggerEvent = "beforeEnemyAttack"
	EventAfterOwnerAttack        TriggerEvent = "afterOwnerAttack"
	EventAfterEnemyAttack        TriggerEvent = "afterEnemyAttack"
	EventBeforeOwnerSpellCast    TriggerEvent = "beforeOwnerSpellCast"
	EventAfterOwnerSpellCast     TriggerEvent = "afterOwnerSpellCast"
	EventBeforeEnemySpellCast    TriggerEvent = "beforeEnemySpellCast"
	EventAfterEnemySpellCast     TriggerEvent = "afterEnemySpellCast"
	EventBonusAction             TriggerEvent = "bonusAction"
	EventPassive                 TriggerEvent = "passive"
	EventOnBattleStart           TriggerEvent = "onBattleStart"
	EventOnHit                   TriggerEvent = "onHit"
	EventOnAttack                TriggerEvent = "onAttack"
	EventOnKill                  TriggerEvent = "onKill"
	EventOnAllyDeath             TriggerEvent = "onAllyDeath"
	EventOnLethalDamage          TriggerEvent = "onLethalDamage"
	EventOnCast                  TriggerEvent = "onCast"
	EventOnFirstHitTakenPerRound TriggerEvent = "onFirstHitTakenPerRound"
	EventOnFirstRangedAttack     TriggerEvent = "onFirstRangedAttack"
	EventOnMoraleSuccess         TriggerEvent = "onMoraleSuccess"
	EventAllyMoraleCheck         TriggerEvent = "allyMoraleCheck"
)

var simpleEvents = func() map[string]TriggerEvent {
	all := []TriggerEvent{
		EventStartRound, EventEndRound,
		EventBeforeOwnerAttack, EventBeforeEnemyAttack, EventAfterOwnerAttack, EventAfterEnemyAttack,
		EventBeforeOwnerSpellCast, EventAfterOwnerSpellCast, EventBeforeEnemySpellCast, EventAfterEnemySpellCast,
		EventBonusAction, EventPassive, EventOnBattleStart, EventOnHit, EventOnAttack, EventOnKill,
		EventOnAllyDeath, EventOnLethalDamage, EventOnCast, EventOnFirstHitTakenPerRound,
		EventOnFirstRangedAttack, EventOnMoraleSuccess, EventAllyMoraleCheck,
	}
	m := make(map[string]TriggerEvent, len(all))
	for _, e := range all {
		m[strings.ToLower(string(e))] = e
	}
	return m
}()

// Comparison is the stat-threshold test of a complex trigger
type Comparison struct {
	Target   string  `json:"target"`
	Stat     string  `json:"stat"`
	Operator string  `json:"operator"`
	Value    float64 `json:"value"`
	Percent  bool    `json:"percent,omitempty"`
}

// SkillTrigger is a parsed trigger. Raw keeps the source text.
type SkillTrigger struct {
	Raw            string       `json:"raw"`
	Event          TriggerEvent `json:"event"`
	Complex        *Comparison  `json:"complex,omitempty"`
	Probability    *float64     `json:"probability,omitempty"`
	OncePerBattle  bool         `json:"once_per_battle,omitempty"`
	TwicePerBattle bool         `json:"twice_per_battle,omitempty"`
	Stackable      bool         `json:"stackable,omitempty"`
	Condition      string       `json:"condition,omitempty"`
	Degraded       bool         `json:"degraded,omitempty"`
}

func (t SkillTrigger) clone() SkillTrigger {
	if t.Complex != nil {
		c := *t.Complex
		t.Complex = &c
	}
	if t.Probability != nil {
		p := *t.Probability
		t.Probability = &p
	}
	return t
}

// UsageLimit is the per-battle firing budget, 0 when unlimited
func (t *SkillTrigger) UsageLimit() int {
	switch {
	case t.OncePerBattle:
		return 1
	case t.TwicePerBattle:
		return 2
	default:
		return 0
	}
}

var (
	randPattern        = regexp.MustCompile(`(?i)^rand\(\)\s*<\s*([0-9]*\.?[0-9]+)\s*(%?)$`)
	probabilityPattern = regexp.MustCompile(`(?i)^probability\s*[:=]\s*([0-9]*\.?[0-9]+)\s*(%?)$`)
	flagPattern        = regexp.MustCompile(`(?i)^(oncePerBattle|twicePerBattle|stackable)(\s*[:=]\s*true)?$`)
	comparisonPattern  = regexp.MustCompile(`(?i)^(ally|enemy|self)\.?\s*(hp|morale|ac|speed|attack|level)\s*(<=|>=|==|<|>|=)\s*(-?[0-9]*\.?[0-9]+)\s*(%?)$`)
)

func parseProbability(value, percent string) float64 {
	p, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	if percent != "" || p > 1 {
		p /= 100
	}
	return p
}

func splitTriggerTokens(raw string) []string {
	var tokens []string
	for _, part := range strings.Split(raw, "&&") {
		for _, tok := range strings.Split(part, ",") {
			if tok = strings.TrimSpace(tok); tok != "" {
				tokens = append(tokens, tok)
			}
		}
	}
	return tokens
}

// ParseTrigger turns rule text such as "onHit && rand() < 0.4 && oncePerBattle"
// into a SkillTrigger. Tokens it does not recognize are kept in Condition.
// Text with neither an event nor a comparison degrades to a passive trigger
// carrying the raw text as its condition.
func ParseTrigger(raw string) SkillTrigger {
	t := SkillTrigger{Raw: raw}
	var unknown []string

	for _, tok := range splitTriggerTokens(raw) {
		if e, ok := simpleEvents[strings.ToLower(tok)]; ok {
			if t.Event == "" {
				t.Event = e
			} else {
				unknown = append(unknown, tok)
			}
			continue
		}
		if m := randPattern.FindStringSubmatch(tok); m != nil {
			p := parseProbability(m[1], m[2])
			t.Probability = &p
			continue
		}
		if m := probabilityPattern.FindStringSubmatch(tok); m != nil {
			p := parseProbability(m[1], m[2])
			t.Probability = &p
			continue
		}
		if m := flagPattern.FindStringSubmatch(tok); m != nil {
			switch strings.ToLower(m[1]) {
			case "onceperbattle":
				t.OncePerBattle = true
			case "twiceperbattle":
				t.TwicePerBattle = true
			case "stackable":
				t.Stackable = true
			}
			continue
		}
		if m := comparisonPattern.FindStringSubmatch(tok); m != nil && t.Complex == nil {
			value, _ := strconv.ParseFloat(m[4], 64)
			op := m[3]
			if op == "==" {
				op = "="
			}
			t.Complex = &Comparison{
				Target:   strings.ToLower(m[1]),
				Stat:     strings.ToLower(m[2]),
				Operator: op,
				Value:    value,
				Percent:  m[5] != "",
			}
			continue
		}
		unknown = append(unknown, tok)
	}

	t.Condition = strings.Join(unknown, " && ")

	switch {
	case t.Event != "":
	case t.Complex != nil:
		t.Event = EventStartRound
	default:
		t.Event = EventPassive
		t.Condition = strings.TrimSpace(raw)
		t.Degraded = true
	}
	return t
}

// ParseTriggers parses every trigger string of a skill, logging the ones
// that degraded so operators can fix the rule text
func ParseTriggers(skillID string, raws []string) []SkillTrigger {
	if len(raws) == 0 {
		return nil
	}
	out := make([]SkillTrigger, 0, len(raws))
	for _, raw := range raws {
		t := ParseTrigger(raw)
		if t.Degraded {
			log.Printf("WARN: skill %s: unrecognized trigger %q treated as passive condition", skillID, raw)
		}
		out = append(out, t)
	}
	return out
}

func compare(actual float64, op string, want float64) bool {
	switch op {
	case "<":
		return actual < want
	case "<=":
		return actual <= want
	case ">":
		return actual > want
	case ">=":
		return actual >= want
	default:
		return actual == want
	}
}

// Holds evaluates the comparison against one participant. Percent thresholds
// apply to HP as a share of max HP; other stats compare absolute values.
func (c *Comparison) Holds(p *Participant) bool {
	if p == nil {
		return false
	}
	var actual float64
	switch c.Stat {
	case "hp":
		actual = float64(p.CurrentHP)
		if c.Percent {
			if p.MaxHP <= 0 {
				return false
			}
			actual = actual * 100 / float64(p.MaxHP)
		}
	case "morale":
		actual = float64(p.Morale)
	case "ac":
		actual = float64(p.EffectiveAC())
	case "speed":
		actual = float64(p.EffectiveSpeed())
	case "attack":
		actual = float64(p.BestAttackBonus())
	case "level":
		actual = float64(p.Level)
	default:
		return false
	}
	return compare(actual, c.Operator, c.Value)
}
