package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KirkDiggler/dnd-battle-engine/internal/domain/records"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
allies:
  - {kind: character, id: hero}
enemies:
  - {kind: unit, id: goblin, quantity: 3}
max_rounds: 5
`), 0o600))

	sc, err := loadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, 5, sc.MaxRounds)

	in := sc.input()
	require.Len(t, in.Enemies, 1)
	assert.Equal(t, records.SourceUnit, in.Enemies[0].Kind)
	assert.Equal(t, 3, in.Enemies[0].Quantity)
	assert.Equal(t, "hero", in.Allies[0].ID)
}

func TestLoadScenario_Missing(t *testing.T) {
	_, err := loadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
