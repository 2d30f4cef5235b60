package battles

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/KirkDiggler/dnd-battle-engine/internal/domain/battle"
	dnderr "github.com/KirkDiggler/dnd-battle-engine/internal/errors"
	"github.com/redis/go-redis/v9"
)

const activeBattlesKey = "battles:active"

// Data is the serialized form of a battle in Redis
type Data struct {
	Battle    *battle.Battle `json:"battle"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type redisRepo struct {
	client       redis.UniversalClient
	timeProvider TimeProvider
}

// RedisRepoConfig holds configuration for the Redis repository
type RedisRepoConfig struct {
	Client       redis.UniversalClient
	TimeProvider TimeProvider
}

// NewRedisRepository creates a new Redis-backed battle repository
func NewRedisRepository(cfg *RedisRepoConfig) Repository {
	if cfg == nil {
		panic("RedisRepoConfig cannot be nil")
	}
	if cfg.Client == nil {
		panic("Redis client cannot be nil")
	}
	if cfg.TimeProvider == nil {
		cfg.TimeProvider = systemTime{}
	}

	return &redisRepo{
		client:       cfg.Client,
		timeProvider: cfg.TimeProvider,
	}
}

// NewRedis creates a Redis-backed battle repository using the system clock
func NewRedis(client redis.UniversalClient) Repository {
	return NewRedisRepository(&RedisRepoConfig{Client: client})
}

func (r *redisRepo) key(id string) string {
	return fmt.Sprintf("battle:%s", id)
}

func (r *redisRepo) load(ctx context.Context, id string) (*Data, error) {
	jsonData, err := r.client.Get(ctx, r.key(id)).Result()
	if err == redis.Nil {
		return nil, dnderr.NotFoundf("battle with ID '%s' not found", id).
			WithMeta("battle_id", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get battle: %w", err)
	}

	var data Data
	if err := json.Unmarshal([]byte(jsonData), &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal battle: %w", err)
	}
	if data.Battle == nil {
		return nil, fmt.Errorf("battle %s has no snapshot", id)
	}
	return &data, nil
}

// store writes the battle and keeps the active index in step with its status
func (r *redisRepo) store(ctx context.Context, data *Data) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal battle: %w", err)
	}

	b := data.Battle
	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.key(b.ID), string(jsonData), 0)
	if b.Status == battle.BattleStatusActive {
		pipe.SAdd(ctx, activeBattlesKey, b.ID)
	} else {
		pipe.SRem(ctx, activeBattlesKey, b.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store battle: %w", err)
	}
	return nil
}

// Create stores a new battle
func (r *redisRepo) Create(ctx context.Context, b *battle.Battle) error {
	if err := validate(b); err != nil {
		return err
	}

	exists, err := r.client.Exists(ctx, r.key(b.ID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check battle existence: %w", err)
	}
	if exists > 0 {
		return dnderr.AlreadyExistsf("battle with ID '%s' already exists", b.ID).
			WithMeta("battle_id", b.ID)
	}

	now := r.timeProvider.Now()
	return r.store(ctx, &Data{Battle: b, CreatedAt: now, UpdatedAt: now})
}

// Get retrieves a battle by ID
func (r *redisRepo) Get(ctx context.Context, id string) (*battle.Battle, error) {
	if id == "" {
		return nil, dnderr.InvalidArgument("battle ID is required")
	}

	data, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return data.Battle, nil
}

// Update replaces a stored battle, keeping its creation time
func (r *redisRepo) Update(ctx context.Context, b *battle.Battle) error {
	if err := validate(b); err != nil {
		return err
	}

	existing, err := r.load(ctx, b.ID)
	if err != nil {
		return err
	}

	return r.store(ctx, &Data{Battle: b, CreatedAt: existing.CreatedAt, UpdatedAt: r.timeProvider.Now()})
}

// Delete removes a battle
func (r *redisRepo) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dnderr.InvalidArgument("battle ID is required")
	}

	pipe := r.client.Pipeline()
	del := pipe.Del(ctx, r.key(id))
	pipe.SRem(ctx, activeBattlesKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete battle: %w", err)
	}
	if del.Val() == 0 {
		return dnderr.NotFoundf("battle with ID '%s' not found", id).
			WithMeta("battle_id", id)
	}
	return nil
}

// ListActive returns the ids in the active index
func (r *redisRepo) ListActive(ctx context.Context) ([]string, error) {
	ids, err := r.client.SMembers(ctx, activeBattlesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list active battles: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}
