package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeShape(t *testing.T) {
	cases := []struct {
		n    int
		want Shape
	}{
		{2, Shape{SlotCount: 2, RoundCount: 1, ByeCount: 0, FirstRoundMatchCount: 1}},
		{3, Shape{SlotCount: 4, RoundCount: 2, ByeCount: 1, FirstRoundMatchCount: 2}},
		{4, Shape{SlotCount: 4, RoundCount: 2, ByeCount: 0, FirstRoundMatchCount: 2}},
		{5, Shape{SlotCount: 8, RoundCount: 3, ByeCount: 3, FirstRoundMatchCount: 4}},
		{8, Shape{SlotCount: 8, RoundCount: 3, ByeCount: 0, FirstRoundMatchCount: 4}},
		{9, Shape{SlotCount: 16, RoundCount: 4, ByeCount: 7, FirstRoundMatchCount: 8}},
		{16, Shape{SlotCount: 16, RoundCount: 4, ByeCount: 0, FirstRoundMatchCount: 8}},
		{17, Shape{SlotCount: 32, RoundCount: 5, ByeCount: 15, FirstRoundMatchCount: 16}},
	}
	for _, tc := range cases {
		got, err := ComputeShape(tc.n)
		require.NoError(t, err, "n=%d", tc.n)
		assert.Equal(t, tc.want, got, "n=%d", tc.n)
	}
}

func TestComputeShapeRejectsSmallRosters(t *testing.T) {
	for _, n := range []int{-1, 0, 1} {
		_, err := ComputeShape(n)
		assert.ErrorIs(t, err, ErrRosterTooSmall, "n=%d", n)
	}
}

func TestSuccessorOrder(t *testing.T) {
	assert.Equal(t, 1, SuccessorOrder(1))
	assert.Equal(t, 1, SuccessorOrder(2))
	assert.Equal(t, 2, SuccessorOrder(3))
	assert.Equal(t, 2, SuccessorOrder(4))
	assert.Equal(t, 4, SuccessorOrder(8))
}
