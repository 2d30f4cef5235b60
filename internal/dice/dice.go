package dice

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
)

// RollResult is the outcome of rolling one block of dice
type RollResult struct {
	Total    int
	Rolls    []int
	Bonus    int
	Count    int
	Sides    int
	RawTotal int
	IsCrit   bool
	IsFumble bool
}

// Roll rolls count dice of the given size using math/rand
func Roll(count, size, bonus int) (*RollResult, error) {
	if count < 1 {
		return nil, errors.New("invalid dice count")
	}
	if size < 1 {
		return nil, errors.New("invalid dice size")
	}

	out := make([]int, count)
	raw := 0
	for i := 0; i < count; i++ {
		out[i] = rand.Intn(size) + 1
		raw += out[i]
	}

	return newResult(count, size, bonus, out, raw), nil
}

func newResult(count, sides, bonus int, rolls []int, raw int) *RollResult {
	result := &RollResult{
		Total:    raw + bonus,
		Rolls:    rolls,
		Bonus:    bonus,
		Count:    count,
		Sides:    sides,
		RawTotal: raw,
	}
	if count == 1 && sides == 20 {
		result.IsCrit = rolls[0] == 20
		result.IsFumble = rolls[0] == 1
	}
	return result
}

func (r *RollResult) String() string {
	compact := strings.ReplaceAll(fmt.Sprintf("%v", r.Rolls), " ", "")
	if r.Bonus != 0 {
		return fmt.Sprintf("%dd%d%+d %s = %d", r.Count, r.Sides, r.Bonus, compact, r.Total)
	}
	return fmt.Sprintf("%dd%d %s = %d", r.Count, r.Sides, compact, r.Total)
}
