// Package simulation auto-plays battles. Every value the engine needs is
// rolled here, outside the engine, and passed in with the command.
package simulation

import (
	"context"
	"fmt"
	"log"

	"github.com/KirkDiggler/dnd-battle-engine/internal/dice"
	engine "github.com/KirkDiggler/dnd-battle-engine/internal/domain/battle"
	dnderr "github.com/KirkDiggler/dnd-battle-engine/internal/errors"
	battleService "github.com/KirkDiggler/dnd-battle-engine/internal/services/battle"
)

const defaultMaxRounds = 20

// Service defines the simulation service interface
type Service interface {
	// Run plays the battle until it ends or MaxRounds pass
	Run(ctx context.Context, battleID string) (*engine.Battle, error)
}

type service struct {
	battles     battleService.Service
	roller      dice.Roller
	maxRounds   int
	chanceRolls int
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	BattleService battleService.Service
	Roller        dice.Roller
	// MaxRounds stops a stalemate; zero means the default
	MaxRounds int
	// ChanceRolls is how many d100 rolls feed probability triggers per command
	ChanceRolls int
}

// NewService creates a new simulation service
func NewService(cfg *ServiceConfig) Service {
	if cfg.BattleService == nil {
		panic("battle service is required")
	}

	svc := &service{
		battles:     cfg.BattleService,
		roller:      cfg.Roller,
		maxRounds:   cfg.MaxRounds,
		chanceRolls: cfg.ChanceRolls,
	}
	if svc.roller == nil {
		svc.roller = dice.NewRandomRoller()
	}
	if svc.maxRounds <= 0 {
		svc.maxRounds = defaultMaxRounds
	}
	return svc
}

// Run plays the battle until it ends or MaxRounds pass. Each active
// participant attacks the weakest standing opponent and ends its turn.
func (s *service) Run(ctx context.Context, battleID string) (*engine.Battle, error) {
	b, err := s.battles.GetBattle(ctx, battleID)
	if err != nil {
		return nil, err
	}

	for b.Status == engine.BattleStatusActive && b.Round <= s.maxRounds {
		if err := ctx.Err(); err != nil {
			return b, err
		}

		if actor := b.Current(); actor != nil && actor.IsActive() && !actor.HasUsedAction {
			if target := weakestOpponent(b, actor); target != nil {
				res, err := s.attack(ctx, b, actor, target)
				if err != nil {
					return b, err
				}
				if res.Action.Rejected {
					log.Printf("WARN: simulated attack rejected: %s", res.Action.Result)
				}
				b = res.Battle
				if b.Status != engine.BattleStatusActive {
					break
				}
			}
		}

		meta, err := s.meta()
		if err != nil {
			return b, err
		}
		res, err := s.battles.EndTurn(ctx, battleID, engine.EndTurnCommand{CommandMeta: meta})
		if err != nil {
			return b, err
		}
		b = res.Battle
	}
	return b, nil
}

func (s *service) attack(ctx context.Context, b *engine.Battle, actor, target *engine.Participant) (*battleService.Result, error) {
	cmd := engine.AttackCommand{AttackerID: actor.ID, TargetID: target.ID}
	if len(actor.Attacks) > 0 {
		a := actor.Attacks[0]
		cmd.AttackID = a.ID

		d20, err := s.roller.Roll(1, 20, 0)
		if err != nil {
			return nil, dnderr.Wrap(err, "failed to roll attack")
		}
		cmd.D20Roll = d20.Total

		rolls, _, err := dice.RollNotation(s.roller, a.DamageDice)
		if err != nil {
			return nil, dnderr.Wrapf(err, "failed to roll %s damage", a.Name)
		}
		cmd.DamageRolls = rolls
	}

	meta, err := s.meta()
	if err != nil {
		return nil, err
	}
	cmd.CommandMeta = meta
	return s.battles.Attack(ctx, b.ID, cmd)
}

// meta rolls the chance values one command consumes
func (s *service) meta() (engine.CommandMeta, error) {
	var m engine.CommandMeta
	for i := 0; i < s.chanceRolls; i++ {
		r, err := s.roller.Roll(1, 100, 0)
		if err != nil {
			return m, dnderr.Wrap(err, "failed to roll chance")
		}
		m.ChanceRolls = append(m.ChanceRolls, float64(r.Total-1)/100)
	}
	return m, nil
}

// weakestOpponent is the standing opponent with the fewest hit points;
// ties go to the earlier one in initiative order
func weakestOpponent(b *engine.Battle, actor *engine.Participant) *engine.Participant {
	var best *engine.Participant
	for _, p := range b.Order {
		if p.Side == actor.Side || !p.IsActive() {
			continue
		}
		if best == nil || p.CurrentHP < best.CurrentHP {
			best = p
		}
	}
	return best
}

// Summary is a one-line outcome of a finished simulation
func Summary(b *engine.Battle) string {
	if b.Status == engine.BattleStatusActive {
		return fmt.Sprintf("battle %s undecided at round %d", b.ID, b.Round)
	}
	return fmt.Sprintf("battle %s ended in %s after %d rounds", b.ID, b.Outcome, b.Round)
}
