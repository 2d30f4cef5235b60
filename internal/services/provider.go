package services

import (
	"github.com/KirkDiggler/dnd-battle-engine/internal/config"
	"github.com/KirkDiggler/dnd-battle-engine/internal/dice"
	engine "github.com/KirkDiggler/dnd-battle-engine/internal/domain/battle"
	"github.com/KirkDiggler/dnd-battle-engine/internal/events"
	"github.com/KirkDiggler/dnd-battle-engine/internal/repositories/battles"
	"github.com/KirkDiggler/dnd-battle-engine/internal/repositories/definitions"
	battleService "github.com/KirkDiggler/dnd-battle-engine/internal/services/battle"
	encounterService "github.com/KirkDiggler/dnd-battle-engine/internal/services/encounter"
	simulationService "github.com/KirkDiggler/dnd-battle-engine/internal/services/simulation"
)

// Provider holds all service instances
type Provider struct {
	BattleService     battleService.Service
	EncounterService  encounterService.Service
	SimulationService simulationService.Service
	EventBus          *events.Bus
}

// ProviderConfig holds configuration for creating services
type ProviderConfig struct {
	BattleRepository battles.Repository
	Catalog          definitions.Catalog
	Rules            *config.Rules
	Roller           dice.Roller
	EventBus         *events.Bus
	MaxRounds        int
	ChanceRolls      int
}

// NewProvider creates a new service provider with all services initialized
func NewProvider(cfg *ProviderConfig) *Provider {
	// Use in-memory stores if none provided
	battleRepo := cfg.BattleRepository
	if battleRepo == nil {
		battleRepo = battles.NewInMemoryRepository()
	}

	catalog := cfg.Catalog
	if catalog == nil {
		catalog = definitions.NewInMemoryCatalog(nil)
	}

	rules := config.DefaultRules()
	if cfg.Rules != nil {
		rules = *cfg.Rules
	}

	bus := cfg.EventBus
	if bus == nil {
		bus = events.NewBus()
	}

	battleSvc := battleService.NewService(&battleService.ServiceConfig{
		Engine:     engine.NewEngine(rules.Engine),
		Repository: battleRepo,
		Catalog:    catalog,
		Publisher:  bus,
	})

	encounterSvc := encounterService.NewService(&encounterService.ServiceConfig{
		Catalog: catalog,
		Tables:  &rules.Balance,
		Rules:   &rules.Engine,
	})

	simulationSvc := simulationService.NewService(&simulationService.ServiceConfig{
		BattleService: battleSvc,
		Roller:        cfg.Roller,
		MaxRounds:     cfg.MaxRounds,
		ChanceRolls:   cfg.ChanceRolls,
	})

	return &Provider{
		BattleService:     battleSvc,
		EncounterService:  encounterSvc,
		SimulationService: simulationSvc,
		EventBus:          bus,
	}
}
