package brackets

import (
	"context"
	"testing"

	"github.com/Dosada05/silat-bracket/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plannedByCoord(p *Plan) map[[2]int]PlannedMatch {
	out := make(map[[2]int]PlannedMatch, len(p.Matches))
	for _, m := range p.Matches {
		out[[2]int{m.Round, m.Order}] = m
	}
	return out
}

func TestPlanFiveCompetitors(t *testing.T) {
	// [A,B,C,D,E] -> slots 8, byes 3: A, B, C auto-advance, D vs E plays.
	g := NewSingleEliminationGenerator()
	plan, err := g.Plan(context.Background(), []int{11, 12, 13, 14, 15})
	require.NoError(t, err)

	assert.Equal(t, Shape{SlotCount: 8, RoundCount: 3, ByeCount: 3, FirstRoundMatchCount: 4}, plan.Shape)
	require.Len(t, plan.Matches, 7) // 4 + 2 + 1

	byCoord := plannedByCoord(plan)

	for order, competitor := range map[int]int{1: 11, 2: 12, 3: 13} {
		m := byCoord[[2]int{1, order}]
		assert.Equal(t, models.MatchStatusBye, m.Status, "round 1 match %d", order)
		require.NotNil(t, m.RedCompetitorID)
		assert.Equal(t, competitor, *m.RedCompetitorID)
		assert.Nil(t, m.BlueCompetitorID)
		require.NotNil(t, m.WinnerID)
		assert.Equal(t, competitor, *m.WinnerID)
		assert.True(t, m.IsApproved)
	}

	pairing := byCoord[[2]int{1, 4}]
	assert.Equal(t, models.MatchStatusPending, pairing.Status)
	require.NotNil(t, pairing.RedCompetitorID)
	require.NotNil(t, pairing.BlueCompetitorID)
	assert.Equal(t, 14, *pairing.RedCompetitorID)
	assert.Equal(t, 15, *pairing.BlueCompetitorID)
	assert.Nil(t, pairing.WinnerID)
	assert.False(t, pairing.IsApproved)

	for _, coord := range [][2]int{{2, 1}, {2, 2}, {3, 1}} {
		m, ok := byCoord[coord]
		require.True(t, ok, "missing match at %v", coord)
		assert.Equal(t, models.MatchStatusPending, m.Status)
		assert.Nil(t, m.RedCompetitorID)
		assert.Nil(t, m.BlueCompetitorID)
	}
}

func TestPlanPowerOfTwoHasNoByes(t *testing.T) {
	g := NewSingleEliminationGenerator()
	plan, err := g.Plan(context.Background(), []int{1, 2, 3, 4, 5, 6, 7, 8})
	require.NoError(t, err)
	require.Len(t, plan.Matches, 7)

	for _, m := range plan.Matches {
		if m.Round == 1 {
			assert.Equal(t, models.MatchStatusPending, m.Status)
			assert.NotNil(t, m.RedCompetitorID)
			assert.NotNil(t, m.BlueCompetitorID)
		}
	}
}

func TestPlanTwoCompetitorsIsASingleFinal(t *testing.T) {
	g := NewSingleEliminationGenerator()
	plan, err := g.Plan(context.Background(), []int{7, 9})
	require.NoError(t, err)
	require.Len(t, plan.Matches, 1)

	final := plan.Matches[0]
	assert.Equal(t, 1, final.Round)
	assert.Equal(t, models.MatchStatusPending, final.Status)
	assert.Equal(t, 7, *final.RedCompetitorID)
	assert.Equal(t, 9, *final.BlueCompetitorID)
}

func TestPlanRejectsSmallRosters(t *testing.T) {
	g := NewSingleEliminationGenerator()
	_, err := g.Plan(context.Background(), []int{42})
	assert.ErrorIs(t, err, ErrRosterTooSmall)
	_, err = g.Plan(context.Background(), nil)
	assert.ErrorIs(t, err, ErrRosterTooSmall)
}

func TestPlanIsDeterministic(t *testing.T) {
	g := NewSingleEliminationGenerator()
	roster := []int{3, 1, 4, 1, 5, 9, 2}

	first, err := g.Plan(context.Background(), roster)
	require.NoError(t, err)
	second, err := g.Plan(context.Background(), roster)
	require.NoError(t, err)

	assert.Equal(t, first.Shape, second.Shape)
	assert.Equal(t, first.Matches, second.Matches)
}

func TestSuccessorSlotAlternates(t *testing.T) {
	// Odd orders feed red, even orders feed blue of the match at ceil(order/2).
	assert.Equal(t, models.SlotRed, PlannedMatch{Order: 1}.SuccessorSlot())
	assert.Equal(t, models.SlotBlue, PlannedMatch{Order: 2}.SuccessorSlot())
	assert.Equal(t, models.SlotRed, PlannedMatch{Order: 3}.SuccessorSlot())
	assert.Equal(t, models.SlotBlue, PlannedMatch{Order: 4}.SuccessorSlot())
}

func TestPlanEveryRosterSizeFillsAllSlots(t *testing.T) {
	g := NewSingleEliminationGenerator()
	for n := 2; n <= 33; n++ {
		roster := make([]int, n)
		for i := range roster {
			roster[i] = i + 100
		}
		plan, err := g.Plan(context.Background(), roster)
		require.NoError(t, err, "n=%d", n)

		assert.Len(t, plan.Matches, plan.Shape.SlotCount-1, "n=%d", n)

		seen := make(map[int]bool)
		byes := 0
		for _, m := range plan.Matches {
			if m.Round != 1 {
				continue
			}
			if m.IsBye() {
				byes++
				require.NotNil(t, m.WinnerID, "n=%d order=%d", n, m.Order)
			}
			for _, id := range []*int{m.RedCompetitorID, m.BlueCompetitorID} {
				if id != nil {
					assert.False(t, seen[*id], "competitor %d seeded twice (n=%d)", *id, n)
					seen[*id] = true
				}
			}
		}
		assert.Equal(t, n, len(seen), "every competitor seeded exactly once (n=%d)", n)
		assert.Equal(t, plan.Shape.ByeCount, byes, "n=%d", n)
	}
}
