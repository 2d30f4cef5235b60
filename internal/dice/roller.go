package dice

// Roller rolls dice. The battle engine never calls a Roller: callers use one
// to produce the pre-rolled values that commands carry.
type Roller interface {
	// Roll rolls count dice with the given sides and adds bonus
	Roll(count, sides, bonus int) (*RollResult, error)
}

// RollNotation rolls every block of a notation such as "2d8+1d6+2" and
// returns the individual die results and the grand total including bonuses.
func RollNotation(r Roller, notation string) ([]int, int, error) {
	blocks, err := Parse(notation)
	if err != nil {
		return nil, 0, err
	}

	var rolls []int
	total := 0
	for _, b := range blocks {
		if b.Count == 0 {
			total += b.Bonus
			continue
		}
		result, err := r.Roll(b.Count, b.Sides, b.Bonus)
		if err != nil {
			return nil, 0, err
		}
		rolls = append(rolls, result.Rolls...)
		total += result.Total
	}
	return rolls, total, nil
}
