// Package balance estimates how hard a side hits and how much it can take,
// and suggests enemy compositions that match a party at a difficulty.
package balance

import (
	"math"
	"sort"
	"strings"

	"github.com/KirkDiggler/dnd-battle-engine/internal/dice"
	"github.com/KirkDiggler/dnd-battle-engine/internal/domain/battle"
	"github.com/KirkDiggler/dnd-battle-engine/internal/domain/records"
	"github.com/KirkDiggler/dnd-battle-engine/internal/domain/stats"
	dnderr "github.com/KirkDiggler/dnd-battle-engine/internal/errors"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty accepts any case; empty means medium
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case DifficultyEasy:
		return DifficultyEasy, nil
	case DifficultyMedium, "":
		return DifficultyMedium, nil
	case DifficultyHard:
		return DifficultyHard, nil
	default:
		return "", dnderr.InvalidArgumentf("difficulty must be easy, medium, or hard, got %q", s)
	}
}

// Tables holds the tunable numbers behind the heuristic
type Tables struct {
	DifficultyRatios map[Difficulty]float64 `yaml:"difficulty_ratios"`
	// MagicSchoolDPR and SkillDPR are keyed by proficiency tier
	MagicSchoolDPR map[int]float64 `yaml:"magic_school_dpr"`
	SkillDPR       map[int]float64 `yaml:"skill_dpr"`
	QuantityCap    int             `yaml:"quantity_cap"`
	Coverage       float64         `yaml:"coverage"`
}

func DefaultTables() Tables {
	return Tables{
		DifficultyRatios: map[Difficulty]float64{
			DifficultyEasy:   0.5,
			DifficultyMedium: 1,
			DifficultyHard:   1.5,
		},
		MagicSchoolDPR: map[int]float64{1: 3, 2: 5, 3: 8, 4: 11, 5: 15},
		SkillDPR:       map[int]float64{1: 1, 2: 2, 3: 3, 4: 4, 5: 5},
		QuantityCap:    10,
		Coverage:       0.9,
	}
}

// Estimate is the expected damage per round and hit points of one combatant
type Estimate struct {
	DPR float64 `json:"dpr"`
	HP  int     `json:"hp"`
}

// Ratio is damage per hit point; zero HP estimates have no ratio
func (e Estimate) Ratio() float64 {
	if e.HP <= 0 {
		return 0
	}
	return e.DPR / float64(e.HP)
}

// CreationHP is the hit point formula used when a character is created: a
// full hit die at level 1 then the rounded-up average per level, plus the
// constitution modifier every level
func CreationHP(hitDie, level, conMod int) int {
	if level < 1 {
		level = 1
	}
	hp := hitDie + conMod + (level-1)*(hitDie/2+1+conMod)
	return max(hp, 1)
}

// participantHP is the creation-formula HP for participants that carry a hit
// die, and the recorded max HP for everyone else
func participantHP(p *battle.Participant) int {
	if p.HitDie > 0 {
		return CreationHP(p.HitDie, p.Level, p.Modifier(stats.AttributeConstitution))
	}
	return p.MaxHP
}

// attackAverage is the average damage of one attack including gear bonuses
func attackAverage(p *battle.Participant, a battle.Attack) float64 {
	bonus := p.DamageBonus()
	base := dice.Average(a.DamageDice) + float64(a.DamageBonus) + bonus.Flat
	return math.Max(base*(1+bonus.Percent/100), 0)
}

// Participant estimates a built participant. DPR is the better of the best
// melee and best ranged attack, plus the best magic school's tier value,
// plus the tier value of every non-magic main skill. HP follows the
// character creation formula when the participant has a hit die.
func Participant(p *battle.Participant, lib *records.Library, t Tables) Estimate {
	var melee, ranged float64
	for _, a := range p.Attacks {
		avg := attackAverage(p, a)
		if a.Ranged {
			ranged = math.Max(ranged, avg)
		} else {
			melee = math.Max(melee, avg)
		}
	}
	dpr := math.Max(melee, ranged)

	tiers := make(map[string]int)
	for _, s := range p.Skills {
		if s.MainSkillID == "" || s.Stub {
			continue
		}
		tiers[s.MainSkillID] = max(tiers[s.MainSkillID], s.Tier)
	}
	var bestSchool float64
	for id, tier := range tiers {
		if main := lib.MainSkill(id); main != nil && main.IsMagicSchool {
			bestSchool = math.Max(bestSchool, t.MagicSchoolDPR[tier])
			continue
		}
		dpr += t.SkillDPR[tier]
	}
	dpr += bestSchool

	return Estimate{DPR: dpr, HP: participantHP(p)}
}

// Total sums estimates
func Total(es []Estimate) Estimate {
	var total Estimate
	for _, e := range es {
		total.DPR += e.DPR
		total.HP += e.HP
	}
	return total
}

// Candidate is a unit the suggestion may field, with its estimate
type Candidate struct {
	Unit     *records.Unit
	Estimate Estimate
}

// Pick is one unit type in a suggestion
type Pick struct {
	UnitID   string   `json:"unit_id"`
	Name     string   `json:"name"`
	Level    int      `json:"level"`
	Quantity int      `json:"quantity"`
	Each     Estimate `json:"each"`
}

// Suggestion is an enemy composition and how close it comes to the target
type Suggestion struct {
	Difficulty Difficulty `json:"difficulty"`
	TargetDPR  float64    `json:"target_dpr"`
	TargetHP   float64    `json:"target_hp"`
	TotalDPR   float64    `json:"total_dpr"`
	TotalHP    int        `json:"total_hp"`
	Picks      []Pick     `json:"picks"`
}

func (s *Suggestion) covered(coverage float64) bool {
	return s.TotalDPR >= coverage*s.TargetDPR && float64(s.TotalHP) >= coverage*s.TargetHP
}

// representatives picks one candidate per level: the one whose DPR/HP ratio
// is closest to the target ratio. Ties go to the lower unit id. The result is
// ordered highest level first.
func representatives(pool []Candidate, targetRatio float64) []Candidate {
	best := make(map[int]Candidate)
	for _, c := range pool {
		if c.Unit == nil || c.Estimate.HP <= 0 {
			continue
		}
		current, ok := best[c.Unit.Level]
		if !ok {
			best[c.Unit.Level] = c
			continue
		}
		d := math.Abs(c.Estimate.Ratio() - targetRatio)
		cd := math.Abs(current.Estimate.Ratio() - targetRatio)
		if d < cd || (d == cd && c.Unit.ID < current.Unit.ID) {
			best[c.Unit.Level] = c
		}
	}

	out := make([]Candidate, 0, len(best))
	for _, c := range best {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Unit.Level > out[j].Unit.Level })
	return out
}

// Suggest builds an enemy composition for the allies at a difficulty. The
// target is the allies' total DPR and HP scaled by the difficulty ratio. One
// unit per level is chosen, then quantities are raised round-robin, highest
// level first, until both totals reach the coverage share of the target or
// every pick is at the quantity cap.
func Suggest(allies []Estimate, pool []Candidate, difficulty Difficulty, t Tables) (*Suggestion, error) {
	if len(allies) == 0 {
		return nil, dnderr.InvalidArgument("at least one ally is required")
	}
	ratio, ok := t.DifficultyRatios[difficulty]
	if !ok {
		return nil, dnderr.InvalidArgumentf("unknown difficulty %q", difficulty)
	}

	party := Total(allies)
	s := &Suggestion{
		Difficulty: difficulty,
		TargetDPR:  party.DPR * ratio,
		TargetHP:   float64(party.HP) * ratio,
	}
	var targetRatio float64
	if s.TargetHP > 0 {
		targetRatio = s.TargetDPR / s.TargetHP
	}

	reps := representatives(pool, targetRatio)
	if len(reps) == 0 {
		return nil, dnderr.NotFound("no usable units in the pool")
	}
	for _, c := range reps {
		s.Picks = append(s.Picks, Pick{
			UnitID: c.Unit.ID,
			Name:   c.Unit.Name,
			Level:  c.Unit.Level,
			Each:   c.Estimate,
		})
	}

	quantityCap := max(t.QuantityCap, 1)
	for !s.covered(t.Coverage) {
		raised := false
		for i := range s.Picks {
			if s.covered(t.Coverage) {
				break
			}
			pick := &s.Picks[i]
			if pick.Quantity >= quantityCap {
				continue
			}
			pick.Quantity++
			s.TotalDPR += pick.Each.DPR
			s.TotalHP += pick.Each.HP
			raised = true
		}
		if !raised {
			break
		}
	}

	kept := s.Picks[:0]
	for _, p := range s.Picks {
		if p.Quantity > 0 {
			kept = append(kept, p)
		}
	}
	s.Picks = kept
	return s, nil
}
