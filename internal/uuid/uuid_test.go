package uuid_test

import (
	"testing"

	"github.com/KirkDiggler/dnd-battle-engine/internal/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDerive_IsStable(t *testing.T) {
	a := uuid.Derive("battle-1", "action", "3")
	b := uuid.Derive("battle-1", "action", "3")
	c := uuid.Derive("battle-1", "action", "4")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 36)
}

func TestGoogleUUIDGenerator_New(t *testing.T) {
	gen := uuid.NewGoogleUUIDGenerator()
	assert.NotEqual(t, gen.New(), gen.New())
}
