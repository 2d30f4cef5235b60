package repositories_test

import (
	"context"
	"testing"

	"github.com/KirkDiggler/dnd-battle-engine/internal/config"
	"github.com/KirkDiggler/dnd-battle-engine/internal/repositories"
	"github.com/KirkDiggler/dnd-battle-engine/internal/repositories/battles"
	"github.com/KirkDiggler/dnd-battle-engine/internal/repositories/definitions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_InMemoryFallbacks(t *testing.T) {
	ctx := context.Background()

	stores, err := repositories.Open(ctx, &config.Config{
		Redis:       config.RedisConfig{URL: "not a redis url"},
		Definitions: "definitions/testdata/library.yaml",
	})
	require.NoError(t, err)
	defer stores.Close()

	assert.IsType(t, battles.NewInMemoryRepository(), stores.Battles)
	lib, err := stores.Catalog.Load(ctx, &definitions.Query{CharacterIDs: []string{"hero"}})
	require.NoError(t, err)
	assert.Equal(t, "Thora", lib.Characters["hero"].Name)
}

func TestOpen_EmptyCatalog(t *testing.T) {
	stores, err := repositories.Open(context.Background(), &config.Config{})
	require.NoError(t, err)
	defer stores.Close()

	units, err := stores.Catalog.ListUnits(context.Background())
	require.NoError(t, err)
	assert.Empty(t, units)
}

func TestOpen_MissingDefinitionsFile(t *testing.T) {
	_, err := repositories.Open(context.Background(), &config.Config{Definitions: "nope.yaml"})
	assert.Error(t, err)
}
