package brackets

import (
	"errors"
	"math"
)

var ErrRosterTooSmall = errors.New("at least 2 competitors are required to build a bracket")

// Shape describes the dimensions of a single-elimination tree.
type Shape struct {
	SlotCount            int `json:"slot_count"`
	RoundCount           int `json:"round_count"`
	ByeCount             int `json:"bye_count"`
	FirstRoundMatchCount int `json:"first_round_match_count"`
}

// ComputeShape resolves the tree dimensions for n competitors: the slot count
// is the smallest power of two >= n, byes fill the remainder.
func ComputeShape(n int) (Shape, error) {
	if n < 2 {
		return Shape{}, ErrRosterTooSmall
	}
	rounds := int(math.Ceil(math.Log2(float64(n))))
	slots := 1 << uint(rounds)
	return Shape{
		SlotCount:            slots,
		RoundCount:           rounds,
		ByeCount:             slots - n,
		FirstRoundMatchCount: slots / 2,
	}, nil
}

// SuccessorOrder returns the order-in-round of the successor match in the
// next round for a match at the given order.
func SuccessorOrder(order int) int {
	return (order + 1) / 2
}
