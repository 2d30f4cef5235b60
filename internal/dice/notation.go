package dice

import (
	"fmt"
	"strconv"
	"strings"
)

// Block is one NdM[+K] term of a dice notation. A block with Count 0 is a
// bare constant.
type Block struct {
	Count int
	Sides int
	Bonus int
}

// Average is the expected value of the block
func (b Block) Average() float64 {
	if b.Count == 0 {
		return float64(b.Bonus)
	}
	return float64(b.Count)*float64(b.Sides+1)/2 + float64(b.Bonus)
}

func (b Block) String() string {
	if b.Count == 0 {
		return strconv.Itoa(b.Bonus)
	}
	if b.Bonus != 0 {
		return fmt.Sprintf("%dd%d%+d", b.Count, b.Sides, b.Bonus)
	}
	return fmt.Sprintf("%dd%d", b.Count, b.Sides)
}

// Parse splits a notation like "2d8+1d6+3" into blocks. Constants attach to
// the dice block before them.
func Parse(notation string) ([]Block, error) {
	var blocks []Block
	for _, term := range terms(notation) {
		block, ok := parseTerm(term)
		if !ok {
			return nil, fmt.Errorf("invalid dice notation %q", notation)
		}
		blocks = appendBlock(blocks, block)
	}
	if len(blocks) == 0 {
		return nil, fmt.Errorf("invalid dice notation %q", notation)
	}
	return blocks, nil
}

// Average returns the expected value of a notation. Malformed blocks
// contribute 0 instead of failing the whole notation.
func Average(notation string) float64 {
	var blocks []Block
	for _, term := range terms(notation) {
		if block, ok := parseTerm(term); ok {
			blocks = appendBlock(blocks, block)
		}
	}

	total := 0.0
	for _, b := range blocks {
		total += b.Average()
	}
	return total
}

// Sides returns the die size of the first dice block, or 0
func Sides(notation string) int {
	for _, term := range terms(notation) {
		if block, ok := parseTerm(term); ok && block.Count > 0 {
			return block.Sides
		}
	}
	return 0
}

func appendBlock(blocks []Block, block Block) []Block {
	if block.Count == 0 && len(blocks) > 0 {
		blocks[len(blocks)-1].Bonus += block.Bonus
		return blocks
	}
	return append(blocks, block)
}

func terms(notation string) []string {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(notation)), " ", "")
	normalized = strings.ReplaceAll(normalized, "-", "+-")

	var out []string
	for _, t := range strings.Split(normalized, "+") {
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func parseTerm(term string) (Block, bool) {
	idx := strings.Index(term, "d")
	if idx < 0 {
		k, err := strconv.Atoi(term)
		if err != nil {
			return Block{}, false
		}
		return Block{Bonus: k}, true
	}

	count := 1
	if idx > 0 {
		n, err := strconv.Atoi(term[:idx])
		if err != nil || n < 1 {
			return Block{}, false
		}
		count = n
	}
	sides, err := strconv.Atoi(term[idx+1:])
	if err != nil || sides < 1 {
		return Block{}, false
	}
	return Block{Count: count, Sides: sides}, true
}
