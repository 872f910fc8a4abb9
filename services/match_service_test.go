package services

import (
	"context"
	"testing"

	"github.com/Dosada05/silat-bracket/models"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func statusPtr(s models.MatchStatus) *models.MatchStatus { return &s }

func TestApproveAssignsGlobalSequence(t *testing.T) {
	env := newTestEnv()
	combat := env.seedEntry(t, models.FormatCombat, 4)
	performance := env.seedEntry(t, models.FormatPerformance, 4)

	combatDetail, err := env.bracketSvc.Generate(context.Background(), combat.ID, nil)
	require.NoError(t, err)
	performanceDetail, err := env.bracketSvc.Generate(context.Background(), performance.ID, nil)
	require.NoError(t, err)

	// Approvals interleave across both formats; the run-of-show numbers keep
	// counting globally.
	order := []*models.Match{
		matchAt(combatDetail, 1, 1),
		matchAt(performanceDetail, 1, 1),
		matchAt(combatDetail, 1, 2),
		matchAt(performanceDetail, 1, 2),
	}
	for i, m := range order {
		require.NotNil(t, m)
		approved, err := env.matchSvc.Approve(context.Background(), m.ID, nil)
		require.NoError(t, err)
		assert.True(t, approved.IsApproved)
		assert.Equal(t, models.MatchStatusApproved, approved.Status)
		require.NotNil(t, approved.Sequence)
		assert.Equal(t, i+1, *approved.Sequence)
	}
}

func TestApproveTwiceFails(t *testing.T) {
	env := newTestEnv()
	entry := env.seedEntry(t, models.FormatCombat, 2)
	detail, err := env.bracketSvc.Generate(context.Background(), entry.ID, nil)
	require.NoError(t, err)

	final := matchAt(detail, 1, 1)
	_, err = env.matchSvc.Approve(context.Background(), final.ID, nil)
	require.NoError(t, err)

	_, err = env.matchSvc.Approve(context.Background(), final.ID, nil)
	assert.ErrorIs(t, err, ErrMatchAlreadyApproved)
}

func TestApproveByeFails(t *testing.T) {
	env := newTestEnv()
	entry := env.seedEntry(t, models.FormatCombat, 3)
	detail, err := env.bracketSvc.Generate(context.Background(), entry.ID, nil)
	require.NoError(t, err)

	bye := matchAt(detail, 1, 1)
	require.Equal(t, models.MatchStatusBye, bye.Status)

	_, err = env.matchSvc.Approve(context.Background(), bye.ID, nil)
	assert.ErrorIs(t, err, ErrByeApprovalNotSupported)
}

func TestApproveCombatRequiresBothSlots(t *testing.T) {
	env := newTestEnv()
	entry := env.seedEntry(t, models.FormatCombat, 4)
	detail, err := env.bracketSvc.Generate(context.Background(), entry.ID, nil)
	require.NoError(t, err)

	final := matchAt(detail, 2, 1)
	require.Nil(t, final.RedCompetitorID)

	_, err = env.matchSvc.Approve(context.Background(), final.ID, nil)
	assert.ErrorIs(t, err, ErrMatchSlotsNotFilled)
}

func TestApprovePerformanceAllowsRedOnly(t *testing.T) {
	env := newTestEnv()
	entry := env.seedEntry(t, models.FormatPerformance, 3)
	detail, err := env.bracketSvc.Generate(context.Background(), entry.ID, nil)
	require.NoError(t, err)

	// The bye winner was pre-propagated into the final's red slot; blue waits
	// for the playable match. A single routine can still be scheduled.
	final := matchAt(detail, 2, 1)
	require.NotNil(t, final.RedCompetitorID)
	require.Nil(t, final.BlueCompetitorID)

	approved, err := env.matchSvc.Approve(context.Background(), final.ID, nil)
	require.NoError(t, err)
	assert.True(t, approved.IsApproved)
}

func TestApproveWithOfficial(t *testing.T) {
	env := newTestEnv()
	official := env.store.addOfficial("Chair of Officials")
	entry := env.seedEntry(t, models.FormatCombat, 2)
	detail, err := env.bracketSvc.Generate(context.Background(), entry.ID, nil)
	require.NoError(t, err)

	final := matchAt(detail, 1, 1)
	approved, err := env.matchSvc.Approve(context.Background(), final.ID, &official.ID)
	require.NoError(t, err)
	require.NotNil(t, approved.OfficialID)
	assert.Equal(t, official.ID, *approved.OfficialID)

	unknown := official.ID + 100
	_, err = env.matchSvc.Approve(context.Background(), final.ID, &unknown)
	assert.ErrorIs(t, err, ErrOfficialNotFound)
}

func TestApproveRetriesAfterSerializationConflict(t *testing.T) {
	env := newTestEnv()
	entry := env.seedEntry(t, models.FormatCombat, 2)
	detail, err := env.bracketSvc.Generate(context.Background(), entry.ID, nil)
	require.NoError(t, err)

	env.runner.failures = []error{&pq.Error{Code: "40001"}}

	final := matchAt(detail, 1, 1)
	approved, err := env.matchSvc.Approve(context.Background(), final.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, approved.Sequence)
	assert.Equal(t, 1, *approved.Sequence)
}

func TestUpdateResultRequiresApproval(t *testing.T) {
	env := newTestEnv()
	entry := env.seedEntry(t, models.FormatCombat, 2)
	detail, err := env.bracketSvc.Generate(context.Background(), entry.ID, nil)
	require.NoError(t, err)

	final := matchAt(detail, 1, 1)
	_, err = env.matchSvc.UpdateResult(context.Background(), final.ID, UpdateResultParams{
		WinnerID: final.RedCompetitorID,
	})
	assert.ErrorIs(t, err, ErrMatchNotApproved)

	// Scheduling state can still be toggled without a result.
	updated, err := env.matchSvc.UpdateResult(context.Background(), final.ID, UpdateResultParams{
		Status: statusPtr(models.MatchStatusPending),
	})
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusPending, updated.Status)
}

func TestUpdateResultWinnerMustOccupyMatch(t *testing.T) {
	env := newTestEnv()
	entry := env.seedEntry(t, models.FormatCombat, 2)
	detail, err := env.bracketSvc.Generate(context.Background(), entry.ID, nil)
	require.NoError(t, err)

	final := matchAt(detail, 1, 1)
	_, err = env.matchSvc.Approve(context.Background(), final.ID, nil)
	require.NoError(t, err)

	outsider := env.store.addCompetitor("Outsider")
	_, err = env.matchSvc.UpdateResult(context.Background(), final.ID, UpdateResultParams{
		WinnerID: &outsider.ID,
	})
	assert.ErrorIs(t, err, ErrInvalidWinner)
}

func TestUpdateResultFinishesAndPropagates(t *testing.T) {
	env := newTestEnv()
	entry := env.seedEntry(t, models.FormatCombat, 4)
	detail, err := env.bracketSvc.Generate(context.Background(), entry.ID, nil)
	require.NoError(t, err)

	m1 := matchAt(detail, 1, 1)
	m2 := matchAt(detail, 1, 2)

	for _, m := range []*models.Match{m1, m2} {
		_, err = env.matchSvc.Approve(context.Background(), m.ID, nil)
		require.NoError(t, err)
	}

	updated, err := env.matchSvc.UpdateResult(context.Background(), m1.ID, UpdateResultParams{
		ScoreRed:  floatPtr(5),
		ScoreBlue: floatPtr(2),
		WinnerID:  m1.RedCompetitorID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusFinished, updated.Status)

	_, err = env.matchSvc.UpdateResult(context.Background(), m2.ID, UpdateResultParams{
		ScoreRed:  floatPtr(1),
		ScoreBlue: floatPtr(3),
		WinnerID:  m2.BlueCompetitorID,
	})
	require.NoError(t, err)

	final, err := env.matchSvc.GetByID(context.Background(), matchAt(detail, 2, 1).ID)
	require.NoError(t, err)
	require.NotNil(t, final.RedCompetitorID)
	require.NotNil(t, final.BlueCompetitorID)
	assert.Equal(t, *m1.RedCompetitorID, *final.RedCompetitorID)
	assert.Equal(t, *m2.BlueCompetitorID, *final.BlueCompetitorID)
}

func TestUpdateResultFinishedMatchRejectsDifferentWinner(t *testing.T) {
	env := newTestEnv()
	entry := env.seedEntry(t, models.FormatCombat, 2)
	detail, err := env.bracketSvc.Generate(context.Background(), entry.ID, nil)
	require.NoError(t, err)

	final := matchAt(detail, 1, 1)
	_, err = env.matchSvc.Approve(context.Background(), final.ID, nil)
	require.NoError(t, err)

	_, err = env.matchSvc.UpdateResult(context.Background(), final.ID, UpdateResultParams{
		WinnerID: final.RedCompetitorID,
	})
	require.NoError(t, err)

	_, err = env.matchSvc.UpdateResult(context.Background(), final.ID, UpdateResultParams{
		WinnerID: final.BlueCompetitorID,
	})
	assert.ErrorIs(t, err, ErrMatchAlreadyFinished)

	// Confirming the same winner again is not a conflict.
	_, err = env.matchSvc.UpdateResult(context.Background(), final.ID, UpdateResultParams{
		WinnerID: final.RedCompetitorID,
	})
	assert.NoError(t, err)
}

func TestUpdateResultScoreTypingByFormat(t *testing.T) {
	env := newTestEnv()
	combat := env.seedEntry(t, models.FormatCombat, 2)
	performance := env.seedEntry(t, models.FormatPerformance, 2)

	combatDetail, err := env.bracketSvc.Generate(context.Background(), combat.ID, nil)
	require.NoError(t, err)
	performanceDetail, err := env.bracketSvc.Generate(context.Background(), performance.ID, nil)
	require.NoError(t, err)

	combatFinal := matchAt(combatDetail, 1, 1)
	_, err = env.matchSvc.Approve(context.Background(), combatFinal.ID, nil)
	require.NoError(t, err)

	_, err = env.matchSvc.UpdateResult(context.Background(), combatFinal.ID, UpdateResultParams{
		ScoreRed:  floatPtr(4.5),
		ScoreBlue: floatPtr(2),
	})
	assert.ErrorIs(t, err, ErrScoreNotIntegral)

	performanceFinal := matchAt(performanceDetail, 1, 1)
	_, err = env.matchSvc.Approve(context.Background(), performanceFinal.ID, nil)
	require.NoError(t, err)

	updated, err := env.matchSvc.UpdateResult(context.Background(), performanceFinal.ID, UpdateResultParams{
		ScoreRed:  floatPtr(9.45),
		ScoreBlue: floatPtr(9.12),
		WinnerID:  performanceFinal.RedCompetitorID,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.ScoreRed)
	assert.InDelta(t, 9.45, *updated.ScoreRed, 1e-9)
}

func TestUpdateResultRejectsByeAndBogusStatus(t *testing.T) {
	env := newTestEnv()
	entry := env.seedEntry(t, models.FormatCombat, 3)
	detail, err := env.bracketSvc.Generate(context.Background(), entry.ID, nil)
	require.NoError(t, err)

	bye := matchAt(detail, 1, 1)
	_, err = env.matchSvc.UpdateResult(context.Background(), bye.ID, UpdateResultParams{
		Status: statusPtr(models.MatchStatusPending),
	})
	assert.ErrorIs(t, err, ErrInvalidMatchStatus)

	playable := matchAt(detail, 1, 2)
	_, err = env.matchSvc.UpdateResult(context.Background(), playable.ID, UpdateResultParams{
		Status: statusPtr(models.MatchStatus("halted")),
	})
	assert.ErrorIs(t, err, ErrInvalidMatchStatus)

	_, err = env.matchSvc.UpdateResult(context.Background(), playable.ID, UpdateResultParams{
		Status: statusPtr(models.MatchStatusBye),
	})
	assert.ErrorIs(t, err, ErrInvalidMatchStatus)
}

func TestSetWalkover(t *testing.T) {
	env := newTestEnv()
	entry := env.seedEntry(t, models.FormatCombat, 4)
	detail, err := env.bracketSvc.Generate(context.Background(), entry.ID, nil)
	require.NoError(t, err)

	m1 := matchAt(detail, 1, 1)
	updated, err := env.matchSvc.SetWalkover(context.Background(), m1.ID, WalkoverParams{
		WinnerID: *m1.BlueCompetitorID,
		Reason:   "red corner no-show",
	})
	require.NoError(t, err)

	assert.Equal(t, models.MatchStatusFinished, updated.Status)
	require.NotNil(t, updated.WinnerID)
	assert.Equal(t, *m1.BlueCompetitorID, *updated.WinnerID)
	require.NotNil(t, updated.ScoreRed)
	require.NotNil(t, updated.ScoreBlue)
	assert.Equal(t, 0.0, *updated.ScoreRed)
	assert.Equal(t, 3.0, *updated.ScoreBlue)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, "WO: red corner no-show", *updated.Notes)

	// The winner advanced into the semifinal's red slot.
	semi, err := env.matchSvc.GetByID(context.Background(), matchAt(detail, 2, 1).ID)
	require.NoError(t, err)
	require.NotNil(t, semi.RedCompetitorID)
	assert.Equal(t, *m1.BlueCompetitorID, *semi.RedCompetitorID)

	_, err = env.matchSvc.SetWalkover(context.Background(), m1.ID, WalkoverParams{
		WinnerID: *m1.RedCompetitorID,
	})
	assert.ErrorIs(t, err, ErrMatchAlreadyFinished)
}

func TestSetWalkoverKeepsRecordedScores(t *testing.T) {
	env := newTestEnv()
	entry := env.seedEntry(t, models.FormatCombat, 4)
	detail, err := env.bracketSvc.Generate(context.Background(), entry.ID, nil)
	require.NoError(t, err)

	m1 := matchAt(detail, 1, 1)
	_, err = env.matchSvc.Approve(context.Background(), m1.ID, nil)
	require.NoError(t, err)
	_, err = env.matchSvc.UpdateResult(context.Background(), m1.ID, UpdateResultParams{
		ScoreRed:  floatPtr(5),
		ScoreBlue: floatPtr(1),
	})
	require.NoError(t, err)

	// Points already on the board survive the walkover.
	updated, err := env.matchSvc.SetWalkover(context.Background(), m1.ID, WalkoverParams{
		WinnerID: *m1.RedCompetitorID,
		Reason:   "blue corner withdrew",
	})
	require.NoError(t, err)
	require.NotNil(t, updated.ScoreRed)
	require.NotNil(t, updated.ScoreBlue)
	assert.Equal(t, 5.0, *updated.ScoreRed)
	assert.Equal(t, 1.0, *updated.ScoreBlue)

	// A side with no score yet still gets its default.
	m2 := matchAt(detail, 1, 2)
	_, err = env.matchSvc.Approve(context.Background(), m2.ID, nil)
	require.NoError(t, err)
	_, err = env.matchSvc.UpdateResult(context.Background(), m2.ID, UpdateResultParams{
		ScoreRed: floatPtr(2),
	})
	require.NoError(t, err)

	updated, err = env.matchSvc.SetWalkover(context.Background(), m2.ID, WalkoverParams{
		WinnerID: *m2.BlueCompetitorID,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.ScoreRed)
	require.NotNil(t, updated.ScoreBlue)
	assert.Equal(t, 2.0, *updated.ScoreRed)
	assert.Equal(t, 3.0, *updated.ScoreBlue)
}

func TestSetWalkoverValidation(t *testing.T) {
	env := newTestEnv()
	entry := env.seedEntry(t, models.FormatCombat, 3)
	detail, err := env.bracketSvc.Generate(context.Background(), entry.ID, nil)
	require.NoError(t, err)

	bye := matchAt(detail, 1, 1)
	_, err = env.matchSvc.SetWalkover(context.Background(), bye.ID, WalkoverParams{WinnerID: *bye.RedCompetitorID})
	assert.ErrorIs(t, err, ErrMatchAlreadyFinished)

	playable := matchAt(detail, 1, 2)
	outsider := env.store.addCompetitor("Outsider")
	_, err = env.matchSvc.SetWalkover(context.Background(), playable.ID, WalkoverParams{WinnerID: outsider.ID})
	assert.ErrorIs(t, err, ErrInvalidWinner)

	_, err = env.matchSvc.SetWalkover(context.Background(), 999, WalkoverParams{WinnerID: 1})
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestPropagationNeverOverwritesOccupiedSlot(t *testing.T) {
	env := newTestEnv()
	entry := env.seedEntry(t, models.FormatCombat, 3)
	detail, err := env.bracketSvc.Generate(context.Background(), entry.ID, nil)
	require.NoError(t, err)

	// Final red is already held by the bye winner; the playable match's winner
	// must land in blue and leave red alone.
	final := matchAt(detail, 2, 1)
	require.NotNil(t, final.RedCompetitorID)
	byeWinner := *final.RedCompetitorID

	playable := matchAt(detail, 1, 2)
	_, err = env.matchSvc.Approve(context.Background(), playable.ID, nil)
	require.NoError(t, err)
	_, err = env.matchSvc.UpdateResult(context.Background(), playable.ID, UpdateResultParams{
		ScoreRed:  floatPtr(2),
		ScoreBlue: floatPtr(4),
		WinnerID:  playable.BlueCompetitorID,
	})
	require.NoError(t, err)

	refreshed, err := env.matchSvc.GetByID(context.Background(), final.ID)
	require.NoError(t, err)
	require.NotNil(t, refreshed.RedCompetitorID)
	require.NotNil(t, refreshed.BlueCompetitorID)
	assert.Equal(t, byeWinner, *refreshed.RedCompetitorID)
	assert.Equal(t, *playable.BlueCompetitorID, *refreshed.BlueCompetitorID)
}
