package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/KirkDiggler/dnd-battle-engine/internal/config"
	"github.com/KirkDiggler/dnd-battle-engine/internal/repositories"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if !cfg.Redis.Enabled() {
		log.Fatal("REDIS_URL or REDIS_ADDR is required to list stored battles")
	}

	ctx := context.Background()
	stores, err := repositories.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open stores: %v", err)
	}
	defer stores.Close()

	ids, err := stores.Battles.ListActive(ctx)
	if err != nil {
		log.Fatalf("Failed to list battles: %v", err)
	}

	fmt.Printf("Found %d active battles:\n", len(ids))
	for _, id := range ids {
		b, getErr := stores.Battles.Get(ctx, id)
		if getErr != nil {
			fmt.Printf("  %s: ERROR - %v\n", id, getErr)
			continue
		}

		current := "-"
		if p := b.Current(); p != nil {
			current = p.Name
		}
		fmt.Printf("  %s: round %d, %d participants, %d actions, turn: %s\n",
			id, b.Round, len(b.Order), len(b.Log), current)
	}
}
