package dice

type randomRoller struct{}

// NewRandomRoller creates a Roller backed by math/rand
func NewRandomRoller() Roller {
	return &randomRoller{}
}

func (r *randomRoller) Roll(count, sides, bonus int) (*RollResult, error) {
	return Roll(count, sides, bonus)
}
