package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/KirkDiggler/dnd-battle-engine/internal/config"
	"github.com/KirkDiggler/dnd-battle-engine/internal/repositories"
	"github.com/KirkDiggler/dnd-battle-engine/internal/services"
	encounterService "github.com/KirkDiggler/dnd-battle-engine/internal/services/encounter"
)

func splitIDs(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func main() {
	characters := flag.String("characters", "", "comma separated character ids")
	units := flag.String("units", "", "comma separated unit ids to draw from (default: all)")
	difficulty := flag.String("difficulty", "medium", "easy, medium or hard")
	flag.Parse()

	if *characters == "" {
		fmt.Println("Usage: suggest-encounter -characters hero[,other] [-difficulty hard] [-units goblin,ogre]")
		os.Exit(1)
	}

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

	ctx := context.Background()
	stores, err := repositories.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open stores: %v", err)
	}
	defer stores.Close()

	provider := services.NewProvider(&services.ProviderConfig{
		BattleRepository: stores.Battles,
		Catalog:          stores.Catalog,
		Rules:            &rules,
	})

	suggestion, err := provider.EncounterService.SuggestEnemies(ctx, &encounterService.SuggestEnemiesInput{
		CharacterIDs: splitIDs(*characters),
		UnitIDs:      splitIDs(*units),
		Difficulty:   *difficulty,
	})
	if err != nil {
		log.Fatalf("Failed to suggest encounter: %v", err)
	}

	out, err := json.MarshalIndent(suggestion, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode suggestion: %v", err)
	}
	fmt.Println(string(out))
}
