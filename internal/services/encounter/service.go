// Package encounter suggests enemy compositions for a party
package encounter

//go:generate mockgen -destination=mock/mock_service.go -package=mockencounter -source=service.go

import (
	"context"
	"log"

	"github.com/KirkDiggler/dnd-battle-engine/internal/domain/balance"
	engine "github.com/KirkDiggler/dnd-battle-engine/internal/domain/battle"
	"github.com/KirkDiggler/dnd-battle-engine/internal/domain/records"
	dnderr "github.com/KirkDiggler/dnd-battle-engine/internal/errors"
	"github.com/KirkDiggler/dnd-battle-engine/internal/repositories/definitions"
)

// estimateBattleID scopes the throwaway participants built for estimates
const estimateBattleID = "estimate"

// Service defines the encounter service interface
type Service interface {
	// SuggestEnemies picks units and quantities that match the party
	SuggestEnemies(ctx context.Context, input *SuggestEnemiesInput) (*balance.Suggestion, error)
}

// SuggestEnemiesInput contains data for an enemy suggestion. An empty
// UnitIDs draws from every unit in the catalog.
type SuggestEnemiesInput struct {
	CharacterIDs []string
	UnitIDs      []string
	Difficulty   string
}

type service struct {
	catalog definitions.Catalog
	tables  balance.Tables
	rules   engine.Rules
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Catalog definitions.Catalog
	Tables  *balance.Tables
	Rules   *engine.Rules
}

// NewService creates a new encounter service
func NewService(cfg *ServiceConfig) Service {
	if cfg.Catalog == nil {
		panic("catalog is required")
	}

	svc := &service{
		catalog: cfg.Catalog,
		tables:  balance.DefaultTables(),
		rules:   engine.DefaultRules(),
	}
	if cfg.Tables != nil {
		svc.tables = *cfg.Tables
	}
	if cfg.Rules != nil {
		svc.rules = *cfg.Rules
	}
	return svc
}

// SuggestEnemies picks units and quantities that match the party
func (s *service) SuggestEnemies(ctx context.Context, input *SuggestEnemiesInput) (*balance.Suggestion, error) {
	if input == nil {
		return nil, dnderr.InvalidArgument("input cannot be nil")
	}
	if len(input.CharacterIDs) == 0 {
		return nil, dnderr.InvalidArgument("at least one character is required")
	}
	difficulty, err := balance.ParseDifficulty(input.Difficulty)
	if err != nil {
		return nil, err
	}

	party, err := definitions.LoadWithReferences(ctx, s.catalog, &definitions.Query{CharacterIDs: input.CharacterIDs})
	if err != nil {
		return nil, dnderr.Wrap(err, "failed to load characters")
	}

	allies := make([]balance.Estimate, 0, len(input.CharacterIDs))
	for _, id := range input.CharacterIDs {
		p, err := engine.NewParticipant(estimateBattleID, records.CharacterSource(party.Characters[id]), engine.SideAlly, 1, party, s.rules)
		if err != nil {
			return nil, dnderr.Wrapf(err, "failed to build character '%s'", id)
		}
		allies = append(allies, balance.Participant(p, party, s.tables))
	}

	pool, err := s.pool(ctx, input.UnitIDs)
	if err != nil {
		return nil, err
	}

	suggestion, err := balance.Suggest(allies, pool, difficulty, s.tables)
	if err != nil {
		return nil, dnderr.Wrap(err, "failed to suggest enemies")
	}
	return suggestion, nil
}

// pool estimates every candidate unit
func (s *service) pool(ctx context.Context, unitIDs []string) ([]balance.Candidate, error) {
	if len(unitIDs) == 0 {
		units, err := s.catalog.ListUnits(ctx)
		if err != nil {
			return nil, dnderr.Wrap(err, "failed to list units")
		}
		for _, u := range units {
			unitIDs = append(unitIDs, u.ID)
		}
	}
	if len(unitIDs) == 0 {
		return nil, dnderr.NotFound("no units available")
	}

	lib, err := definitions.LoadWithReferences(ctx, s.catalog, &definitions.Query{UnitIDs: unitIDs})
	if err != nil {
		return nil, dnderr.Wrap(err, "failed to load units")
	}

	pool := make([]balance.Candidate, 0, len(unitIDs))
	for _, id := range unitIDs {
		u := lib.Units[id]
		p, err := engine.NewParticipant(estimateBattleID, records.UnitSource(u), engine.SideEnemy, 1, lib, s.rules)
		if err != nil {
			log.Printf("WARN: skipping unit %s in encounter pool: %v", id, err)
			continue
		}
		pool = append(pool, balance.Candidate{Unit: u, Estimate: balance.Participant(p, lib, s.tables)})
	}
	return pool, nil
}
