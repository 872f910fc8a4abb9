package brackets

import (
	"context"
	"fmt"

	"github.com/Dosada05/silat-bracket/models"
)

// PlannedMatch is one node of a generated tree before it gets database
// identity. Successor coordinates are implied by (Round, Order):
// the successor sits at round+1, order ceil(order/2), odd orders feed its
// red slot and even orders its blue slot.
type PlannedMatch struct {
	Round            int
	Order            int
	RedCompetitorID  *int
	BlueCompetitorID *int
	Status           models.MatchStatus
	WinnerID         *int
	IsApproved       bool
}

func (m PlannedMatch) IsBye() bool {
	return m.Status == models.MatchStatusBye
}

// SuccessorSlot returns the slot of the successor match this one feeds.
func (m PlannedMatch) SuccessorSlot() models.MatchSlot {
	if m.Order%2 == 1 {
		return models.SlotRed
	}
	return models.SlotBlue
}

// Plan is a complete tree, ordered by round then order-in-round.
type Plan struct {
	Shape   Shape
	Matches []PlannedMatch
}

// Generator plans a bracket from a seeded roster. Only single elimination is
// implemented; the interface is the extension point for other tree types.
type Generator interface {
	Plan(ctx context.Context, roster []int) (*Plan, error)
	Name() string
}

type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() Generator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) Name() string {
	return "SingleElimination"
}

// Plan walks the roster in seeding order. The first ByeCount first-round
// matches take a single competitor on the red side and resolve immediately as
// byes (pre-approved, winner set, never sequenced); the rest pair two
// competitors. Later rounds are created empty and fill by propagation.
func (g *SingleEliminationGenerator) Plan(ctx context.Context, roster []int) (*Plan, error) {
	shape, err := ComputeShape(len(roster))
	if err != nil {
		return nil, err
	}

	matches := make([]PlannedMatch, 0, shape.SlotCount-1)
	idx := 0

	for i := 0; i < shape.FirstRoundMatchCount; i++ {
		pm := PlannedMatch{Round: 1, Order: i + 1, Status: models.MatchStatusPending}

		if i < shape.ByeCount {
			id := roster[idx]
			idx++
			pm.RedCompetitorID = &id
			pm.Status = models.MatchStatusBye
			pm.WinnerID = &id
			pm.IsApproved = true
		} else {
			if idx < len(roster) {
				red := roster[idx]
				idx++
				pm.RedCompetitorID = &red
			}
			if idx < len(roster) {
				blue := roster[idx]
				idx++
				pm.BlueCompetitorID = &blue
			}
			switch {
			case pm.RedCompetitorID != nil && pm.BlueCompetitorID == nil:
				// Lone competitor left at roster exhaustion: resolve as a bye
				// rather than leaving a half-filled pending match.
				pm.Status = models.MatchStatusBye
				pm.WinnerID = pm.RedCompetitorID
				pm.IsApproved = true
			case pm.RedCompetitorID == nil:
				return nil, fmt.Errorf("first round match %d has no competitors (roster %d, byes %d)",
					i+1, len(roster), shape.ByeCount)
			}
		}
		matches = append(matches, pm)
	}

	count := shape.FirstRoundMatchCount
	for r := 2; r <= shape.RoundCount; r++ {
		count /= 2
		for i := 1; i <= count; i++ {
			matches = append(matches, PlannedMatch{Round: r, Order: i, Status: models.MatchStatusPending})
		}
	}

	return &Plan{Shape: shape, Matches: matches}, nil
}
