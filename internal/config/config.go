package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/KirkDiggler/dnd-battle-engine/internal/domain/balance"
	"github.com/KirkDiggler/dnd-battle-engine/internal/domain/battle"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Redis       RedisConfig
	Database    DatabaseConfig
	RulesPath   string
	Definitions string
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	URL      string
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether any Redis connection setting was given
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Addr != ""
}

// DatabaseConfig holds PostgreSQL configuration for the definition catalog
type DatabaseConfig struct {
	URL string
}

// Load loads configuration from environment variables. Nothing is required:
// without Redis or Postgres settings the in-memory and YAML stores are used.
func Load() (*Config, error) {
	cfg := &Config{
		Redis: RedisConfig{
			URL:      os.Getenv("REDIS_URL"),
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvAsIntOrDefault("REDIS_DB", 0),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		RulesPath:   getEnvOrDefault("RULES_PATH", "rules.yaml"),
		Definitions: os.Getenv("DEFINITIONS_PATH"),
	}

	if cfg.Redis.DB < 0 {
		return nil, fmt.Errorf("REDIS_DB must not be negative, got %d", cfg.Redis.DB)
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// Rules is the tunable rule file: engine constants plus the balancing tables
type Rules struct {
	Engine  battle.Rules   `yaml:"engine"`
	Balance balance.Tables `yaml:"balance"`
}

// DefaultRules returns the stock rule file contents
func DefaultRules() Rules {
	return Rules{
		Engine:  battle.DefaultRules(),
		Balance: balance.DefaultTables(),
	}
}

// LoadRules loads the rule file from YAML. Keys missing from the file keep
// their defaults; a missing file yields the defaults.
func LoadRules(path string) (Rules, error) {
	cfg := DefaultRules()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading rules %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing rules %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("invalid rules %s: %w", path, err)
	}

	return cfg, nil
}

func (r Rules) validate() error {
	if r.Engine.MinHP >= 0 {
		return fmt.Errorf("engine.min_hp must be negative, got %d", r.Engine.MinHP)
	}
	if r.Engine.DefaultEffectDuration < 1 {
		return fmt.Errorf("engine.default_effect_duration must be at least 1, got %d", r.Engine.DefaultEffectDuration)
	}
	if r.Balance.QuantityCap < 1 {
		return fmt.Errorf("balance.quantity_cap must be at least 1, got %d", r.Balance.QuantityCap)
	}
	if r.Balance.Coverage <= 0 || r.Balance.Coverage > 1 {
		return fmt.Errorf("balance.coverage must be in (0, 1], got %v", r.Balance.Coverage)
	}
	for d, ratio := range r.Balance.DifficultyRatios {
		if ratio <= 0 {
			return fmt.Errorf("balance.difficulty_ratios.%s must be positive, got %v", d, ratio)
		}
	}
	return nil
}
