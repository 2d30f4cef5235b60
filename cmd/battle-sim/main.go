package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/dnd-battle-engine/internal/config"
	"github.com/KirkDiggler/dnd-battle-engine/internal/domain/records"
	"github.com/KirkDiggler/dnd-battle-engine/internal/events"
	"github.com/KirkDiggler/dnd-battle-engine/internal/repositories"
	"github.com/KirkDiggler/dnd-battle-engine/internal/services"
	battleService "github.com/KirkDiggler/dnd-battle-engine/internal/services/battle"
	"github.com/KirkDiggler/dnd-battle-engine/internal/services/simulation"
)

type combatant struct {
	Kind     records.SourceKind `yaml:"kind"`
	ID       string             `yaml:"id"`
	Quantity int                `yaml:"quantity"`
}

type scenario struct {
	Allies      []combatant `yaml:"allies"`
	Enemies     []combatant `yaml:"enemies"`
	MaxRounds   int         `yaml:"max_rounds"`
	ChanceRolls int         `yaml:"chance_rolls"`
}

func (s *scenario) input() *battleService.StartBattleInput {
	convert := func(in []combatant) []battleService.Combatant {
		out := make([]battleService.Combatant, 0, len(in))
		for _, c := range in {
			out = append(out, battleService.Combatant{Kind: c.Kind, ID: c.ID, Quantity: c.Quantity})
		}
		return out
	}
	return &battleService.StartBattleInput{
		Allies:  convert(s.Allies),
		Enemies: convert(s.Enemies),
	}
}

func loadScenario(path string) (*scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %s: %w", path, err)
	}
	var s scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	return &s, nil
}

func main() {
	scenarioPath := flag.String("scenario", "data/scenario.yaml", "battle scenario file")
	quiet := flag.Bool("quiet", false, "only print the summary")
	flag.Parse()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	rules, err := config.LoadRules(cfg.RulesPath)
	if err != nil {
		log.Fatalf("Failed to load rules: %v", err)
	}
	sc, err := loadScenario(*scenarioPath)
	if err != nil {
		log.Fatalf("Failed to load scenario: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := repositories.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open stores: %v", err)
	}
	defer stores.Close()

	bus := events.NewBus()
	if !*quiet {
		events.NewLogListener(os.Stdout).Register(bus)
	}

	provider := services.NewProvider(&services.ProviderConfig{
		BattleRepository: stores.Battles,
		Catalog:          stores.Catalog,
		Rules:            &rules,
		EventBus:         bus,
		MaxRounds:        sc.MaxRounds,
		ChanceRolls:      sc.ChanceRolls,
	})

	b, err := provider.BattleService.StartBattle(ctx, sc.input())
	if err != nil {
		log.Fatalf("Failed to start battle: %v", err)
	}

	final, err := provider.SimulationService.Run(ctx, b.ID)
	if err != nil {
		log.Printf("Simulation stopped: %v", err)
	}
	if final != nil {
		fmt.Println(simulation.Summary(final))
	}
}
