package dice_test

import (
	"testing"

	"github.com/KirkDiggler/dnd-battle-engine/internal/dice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockRoller_Roll(t *testing.T) {
	tests := []struct {
		name       string
		setupRolls []int
		count      int
		sides      int
		bonus      int
		wantTotal  int
		wantRolls  []int
		wantErr    bool
	}{
		{name: "single d20 roll", setupRolls: []int{15}, count: 1, sides: 20, wantTotal: 15, wantRolls: []int{15}},
		{name: "2d6+3", setupRolls: []int{4, 5}, count: 2, sides: 6, bonus: 3, wantTotal: 12, wantRolls: []int{4, 5}},
		{name: "not enough rolls", setupRolls: []int{10}, count: 2, sides: 6, wantErr: true},
		{name: "invalid roll for die size", setupRolls: []int{7}, count: 1, sides: 6, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roller := dice.NewMockRoller()
			roller.SetRolls(tt.setupRolls)

			result, err := roller.Roll(tt.count, tt.sides, tt.bonus)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, result.Total)
			assert.Equal(t, tt.wantRolls, result.Rolls)
		})
	}
}

func TestMockRoller_CritDetection(t *testing.T) {
	roller := dice.NewMockRoller()
	roller.SetRolls([]int{20, 1})

	crit, err := roller.Roll(1, 20, 5)
	require.NoError(t, err)
	assert.True(t, crit.IsCrit)

	fumble, err := roller.Roll(1, 20, 5)
	require.NoError(t, err)
	assert.True(t, fumble.IsFumble)
	assert.Equal(t, 0, roller.Remaining())
}

func TestRollNotation(t *testing.T) {
	roller := dice.NewMockRoller()
	roller.SetRolls([]int{3, 4, 6})

	rolls, total, err := dice.RollNotation(roller, "2d8+1d6+2")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4, 6}, rolls)
	assert.Equal(t, 15, total)
}

func TestRandomRoller_Bounds(t *testing.T) {
	roller := dice.NewRandomRoller()
	for i := 0; i < 50; i++ {
		result, err := roller.Roll(2, 6, 1)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, result.Total, 3)
		assert.LessOrEqual(t, result.Total, 13)
	}
}
