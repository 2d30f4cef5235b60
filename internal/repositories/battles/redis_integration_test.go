//go:build integration

package battles_test

import (
	"context"
	"testing"
	"time"

	"github.com/KirkDiggler/dnd-battle-engine/internal/domain/battle"
	dnderr "github.com/KirkDiggler/dnd-battle-engine/internal/errors"
	"github.com/KirkDiggler/dnd-battle-engine/internal/repositories/battles"
	"github.com/KirkDiggler/dnd-battle-engine/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := battles.NewRedis(testutils.CreateTestRedisClient(t, nil))

	b := &battle.Battle{
		ID:     "live-1",
		Status: battle.BattleStatusActive,
		Round:  1,
		Order: []*battle.Participant{{
			ID: "unit:goblin:1", Name: "Goblin", Side: battle.SideEnemy, MaxHP: 12, CurrentHP: 12, Status: battle.StatusActive,
		}},
		StartedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Create(ctx, b))
	assert.True(t, dnderr.Is(repo.Create(ctx, b), dnderr.CodeAlreadyExists))

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"live-1"}, active)

	b.Status = battle.BattleStatusCompleted
	b.Outcome = battle.OutcomeDefeat
	require.NoError(t, repo.Update(ctx, b))

	got, err := repo.Get(ctx, "live-1")
	require.NoError(t, err)
	assert.Equal(t, battle.OutcomeDefeat, got.Outcome)
	assert.Equal(t, "Goblin", got.Order[0].Name)

	active, err = repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, repo.Delete(ctx, "live-1"))
	_, err = repo.Get(ctx, "live-1")
	assert.True(t, dnderr.IsNotFound(err))
}
