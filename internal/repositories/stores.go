// Package repositories opens the configured stores, falling back to the
// in-memory ones when a backend is not configured or not reachable.
package repositories

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/KirkDiggler/dnd-battle-engine/internal/config"
	"github.com/KirkDiggler/dnd-battle-engine/internal/domain/records"
	"github.com/KirkDiggler/dnd-battle-engine/internal/repositories/battles"
	"github.com/KirkDiggler/dnd-battle-engine/internal/repositories/definitions"
	"github.com/redis/go-redis/v9"
)

const connectTimeout = 5 * time.Second

// Stores are the opened repositories and a function releasing them
type Stores struct {
	Battles battles.Repository
	Catalog definitions.Catalog
	Close   func()
}

// Open connects the battle store and the definitions catalog
func Open(ctx context.Context, cfg *config.Config) (*Stores, error) {
	var closers []func()
	stores := &Stores{
		Battles: openBattles(ctx, cfg.Redis, &closers),
	}

	catalog, err := openCatalog(ctx, cfg, &closers)
	if err != nil {
		for _, c := range closers {
			c()
		}
		return nil, err
	}
	stores.Catalog = catalog

	stores.Close = func() {
		for _, c := range closers {
			c()
		}
	}
	return stores, nil
}

func redisOptions(cfg config.RedisConfig) (*redis.Options, error) {
	if cfg.URL != "" {
		return redis.ParseURL(cfg.URL)
	}
	return &redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}, nil
}

func openBattles(ctx context.Context, cfg config.RedisConfig, closers *[]func()) battles.Repository {
	if !cfg.Enabled() {
		log.Println("No Redis configured, using in-memory battle store")
		return battles.NewInMemoryRepository()
	}

	opts, err := redisOptions(cfg)
	if err != nil {
		log.Printf("Failed to parse Redis URL: %v", err)
		log.Println("Falling back to in-memory battle store")
		return battles.NewInMemoryRepository()
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		log.Printf("Failed to connect to Redis: %v", err)
		log.Println("Falling back to in-memory battle store")
		return battles.NewInMemoryRepository()
	}

	log.Println("Using Redis for battle persistence")
	*closers = append(*closers, func() {
		if err := client.Close(); err != nil {
			log.Printf("Error closing Redis client: %v", err)
		}
	})
	return battles.NewRedis(client)
}

// openCatalog prefers PostgreSQL, then a YAML file, then an empty catalog.
// A YAML file given alongside PostgreSQL seeds it.
func openCatalog(ctx context.Context, cfg *config.Config, closers *[]func()) (definitions.Catalog, error) {
	var seed *records.Library
	if cfg.Definitions != "" {
		lib, err := definitions.LoadFile(cfg.Definitions)
		if err != nil {
			return nil, fmt.Errorf("failed to load definitions: %w", err)
		}
		seed = lib
	}

	if cfg.Database.URL == "" {
		if seed == nil {
			log.Println("No definitions configured, starting with an empty catalog")
		} else {
			log.Printf("Using definitions from %s", cfg.Definitions)
		}
		return definitions.NewInMemoryCatalog(seed), nil
	}

	if err := definitions.RunMigrations(ctx, cfg.Database.URL); err != nil {
		return nil, err
	}
	pool, err := definitions.OpenPostgres(ctx, cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	*closers = append(*closers, pool.Close)

	catalog := definitions.NewPostgresCatalog(pool)
	if seed != nil {
		if err := catalog.Put(ctx, seed); err != nil {
			return nil, fmt.Errorf("failed to seed definitions: %w", err)
		}
		log.Printf("Seeded PostgreSQL definitions from %s", cfg.Definitions)
	}
	log.Println("Using PostgreSQL for definitions")
	return catalog, nil
}
