package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/Dosada05/silat-bracket/brackets"
	"github.com/Dosada05/silat-bracket/models"
	"github.com/Dosada05/silat-bracket/repositories"
)

// approveRetryAttempts bounds retries of the serializable approval
// transaction when concurrent approvals collide on the sequence number.
const approveRetryAttempts = 3

const (
	walkoverWinnerScore = 3
	walkoverLoserScore  = 0
)

// UpdateResultParams carries a partial result update. Nil fields are left
// untouched on the match.
type UpdateResultParams struct {
	ScoreRed   *float64            `json:"score_red"`
	ScoreBlue  *float64            `json:"score_blue"`
	WinnerID   *int                `json:"winner_id"`
	OfficialID *int                `json:"official_id"`
	Status     *models.MatchStatus `json:"status"`
	Notes      *string             `json:"notes"`
}

type WalkoverParams struct {
	WinnerID   int    `json:"winner_id"`
	Reason     string `json:"reason"`
	OfficialID *int   `json:"official_id"`
}

type MatchService interface {
	GetByID(ctx context.Context, id int) (*models.Match, error)
	// Approve schedules a match into the global run of show: it marks the
	// match approved and assigns the next free sequence number. Sequence
	// numbers are unique and monotonic across all brackets of both formats.
	Approve(ctx context.Context, matchID int, officialID *int) (*models.Match, error)
	UpdateResult(ctx context.Context, matchID int, params UpdateResultParams) (*models.Match, error)
	// SetWalkover finishes a match without play, awarding a default score to
	// the remaining competitor.
	SetWalkover(ctx context.Context, matchID int, params WalkoverParams) (*models.Match, error)
}

type matchService struct {
	txRunner     repositories.TxRunner
	matchRepo    repositories.MatchRepository
	bracketRepo  repositories.BracketRepository
	officialRepo repositories.OfficialRepository
	hub          *brackets.Hub
	logger       *slog.Logger
}

func NewMatchService(
	txRunner repositories.TxRunner,
	matchRepo repositories.MatchRepository,
	bracketRepo repositories.BracketRepository,
	officialRepo repositories.OfficialRepository,
	hub *brackets.Hub,
	logger *slog.Logger,
) MatchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &matchService{
		txRunner:     txRunner,
		matchRepo:    matchRepo,
		bracketRepo:  bracketRepo,
		officialRepo: officialRepo,
		hub:          hub,
		logger:       logger,
	}
}

func (s *matchService) GetByID(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (s *matchService) Approve(ctx context.Context, matchID int, officialID *int) (*models.Match, error) {
	if officialID != nil {
		if _, err := s.officialRepo.GetByID(ctx, *officialID); err != nil {
			if errors.Is(err, repositories.ErrOfficialNotFound) {
				return nil, ErrOfficialNotFound
			}
			return nil, err
		}
	}

	// The sequence number comes from MAX(sequence)+1 inside the same
	// transaction. Serializable isolation turns two approvals racing for the
	// same number into a retryable conflict instead of a duplicate.
	opts := &sql.TxOptions{Isolation: sql.LevelSerializable}
	var err error
	for attempt := 1; attempt <= approveRetryAttempts; attempt++ {
		err = s.txRunner.RunInTx(ctx, opts, func(exec repositories.SQLExecutor) error {
			return s.approveInTx(ctx, exec, matchID, officialID)
		})
		if err == nil {
			break
		}
		if !isSequenceRace(err) {
			return nil, err
		}
		s.logger.Warn("approval retry after sequence conflict",
			slog.Int("match_id", matchID),
			slog.Int("attempt", attempt),
		)
	}
	if err != nil {
		return nil, err
	}

	match, err := s.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("match approved",
		slog.Int("match_id", matchID),
		slog.Int("bracket_id", match.BracketID),
		slog.Any("sequence", match.Sequence),
	)
	s.broadcast(match)
	return match, nil
}

func (s *matchService) approveInTx(ctx context.Context, exec repositories.SQLExecutor, matchID int, officialID *int) error {
	match, err := s.matchRepo.GetByIDForUpdate(ctx, exec, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return err
	}

	if match.Status == models.MatchStatusBye {
		return ErrByeApprovalNotSupported
	}
	if match.IsApproved {
		return ErrMatchAlreadyApproved
	}

	bracket, err := s.bracketRepo.GetByIDTx(ctx, exec, match.BracketID)
	if err != nil {
		return fmt.Errorf("failed to load bracket %d for approval: %w", match.BracketID, err)
	}

	// Combat needs both corners before it can be scheduled. A performance
	// match may hold a single routine on the red side.
	if match.RedCompetitorID == nil {
		return ErrMatchSlotsNotFilled
	}
	if bracket.Format == models.FormatCombat && match.BlueCompetitorID == nil {
		return ErrMatchSlotsNotFilled
	}

	sequence, err := s.matchRepo.NextSequence(ctx, exec)
	if err != nil {
		return err
	}
	return s.matchRepo.UpdateApproval(ctx, exec, matchID, sequence, officialID)
}

func isSequenceRace(err error) bool {
	return repositories.IsSerializationFailure(err) ||
		errors.Is(err, repositories.ErrMatchSequenceConflict)
}

func (s *matchService) UpdateResult(ctx context.Context, matchID int, params UpdateResultParams) (*models.Match, error) {
	if params.Status != nil && (!params.Status.Valid() || *params.Status == models.MatchStatusBye) {
		return nil, ErrInvalidMatchStatus
	}

	err := s.txRunner.RunInTx(ctx, nil, func(exec repositories.SQLExecutor) error {
		match, err := s.matchRepo.GetByIDForUpdate(ctx, exec, matchID)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return ErrMatchNotFound
			}
			return err
		}
		if match.Status == models.MatchStatusBye {
			return ErrInvalidMatchStatus
		}

		// Results only land on approved matches. Moving the status back and
		// forth between pending and approved is allowed without a result.
		statusOnlyReset := params.Status != nil &&
			(*params.Status == models.MatchStatusPending || *params.Status == models.MatchStatusApproved) &&
			params.WinnerID == nil && params.ScoreRed == nil && params.ScoreBlue == nil
		if !match.IsApproved && !statusOnlyReset {
			return ErrMatchNotApproved
		}

		if params.WinnerID != nil {
			if match.Status == models.MatchStatusFinished &&
				match.WinnerID != nil && *match.WinnerID != *params.WinnerID {
				return ErrMatchAlreadyFinished
			}
			if !match.OccupiedBy(*params.WinnerID) {
				return ErrInvalidWinner
			}
		}

		bracket, err := s.bracketRepo.GetByIDTx(ctx, exec, match.BracketID)
		if err != nil {
			return fmt.Errorf("failed to load bracket %d for result: %w", match.BracketID, err)
		}
		if bracket.Format == models.FormatCombat {
			for _, score := range []*float64{params.ScoreRed, params.ScoreBlue} {
				if score != nil && *score != math.Trunc(*score) {
					return ErrScoreNotIntegral
				}
			}
		}

		hadWinner := match.WinnerID != nil

		if params.ScoreRed != nil {
			match.ScoreRed = params.ScoreRed
		}
		if params.ScoreBlue != nil {
			match.ScoreBlue = params.ScoreBlue
		}
		if params.OfficialID != nil {
			match.OfficialID = params.OfficialID
		}
		if params.Notes != nil {
			match.Notes = params.Notes
		}
		if params.Status != nil {
			match.Status = *params.Status
		}
		if params.WinnerID != nil {
			match.WinnerID = params.WinnerID
			match.Status = models.MatchStatusFinished
		}

		if err := s.matchRepo.UpdateResult(ctx, exec, match); err != nil {
			return err
		}

		if !hadWinner && match.WinnerID != nil {
			return s.propagateWinner(ctx, exec, match)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	match, err := s.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("match result updated",
		slog.Int("match_id", matchID),
		slog.String("status", string(match.Status)),
	)
	s.broadcast(match)
	return match, nil
}

func (s *matchService) SetWalkover(ctx context.Context, matchID int, params WalkoverParams) (*models.Match, error) {
	err := s.txRunner.RunInTx(ctx, nil, func(exec repositories.SQLExecutor) error {
		match, err := s.matchRepo.GetByIDForUpdate(ctx, exec, matchID)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return ErrMatchNotFound
			}
			return err
		}
		if match.Status == models.MatchStatusFinished || match.Status == models.MatchStatusBye {
			return ErrMatchAlreadyFinished
		}
		if !match.OccupiedBy(params.WinnerID) {
			return ErrInvalidWinner
		}

		// The default differential fills only sides with no score yet.
		// Points already on the board stay.
		winnerScore := float64(walkoverWinnerScore)
		loserScore := float64(walkoverLoserScore)
		redWins := match.RedCompetitorID != nil && *match.RedCompetitorID == params.WinnerID
		if match.ScoreRed == nil {
			if redWins {
				match.ScoreRed = &winnerScore
			} else {
				match.ScoreRed = &loserScore
			}
		}
		if match.ScoreBlue == nil {
			if redWins {
				match.ScoreBlue = &loserScore
			} else {
				match.ScoreBlue = &winnerScore
			}
		}

		winnerID := params.WinnerID
		match.WinnerID = &winnerID
		match.Status = models.MatchStatusFinished
		if params.OfficialID != nil {
			match.OfficialID = params.OfficialID
		}

		note := "WO"
		if params.Reason != "" {
			note = "WO: " + params.Reason
		}
		if match.Notes != nil && *match.Notes != "" {
			note = *match.Notes + "\n" + note
		}
		match.Notes = &note

		if err := s.matchRepo.UpdateResult(ctx, exec, match); err != nil {
			return err
		}
		return s.propagateWinner(ctx, exec, match)
	})
	if err != nil {
		return nil, err
	}

	match, err := s.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("walkover recorded",
		slog.Int("match_id", matchID),
		slog.Int("winner_id", params.WinnerID),
	)
	s.broadcast(match)
	return match, nil
}

// propagateWinner advances the winner into the successor slot this match
// feeds. The fill is conditional on the slot being empty, so a slot that was
// already taken (bye pre-propagation, replayed update) is left alone.
func (s *matchService) propagateWinner(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	if match.WinnerID == nil {
		return nil
	}

	var (
		succID *int
		slot   models.MatchSlot
	)
	switch {
	case match.NextMatchRedID != nil:
		succID = match.NextMatchRedID
		slot = models.SlotRed
	case match.NextMatchBlueID != nil:
		succID = match.NextMatchBlueID
		slot = models.SlotBlue
	default:
		// Final has no successor.
		return nil
	}

	filled, err := s.matchRepo.FillSlot(ctx, exec, *succID, slot, *match.WinnerID)
	if err != nil {
		return fmt.Errorf("failed to propagate winner of match %d: %w", match.ID, err)
	}
	if !filled {
		s.logger.Debug("successor slot already occupied, skipping propagation",
			slog.Int("match_id", match.ID),
			slog.Int("successor_id", *succID),
			slog.String("slot", string(slot)),
		)
	}
	return nil
}

func (s *matchService) broadcast(match *models.Match) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToRoom(brackets.RoomForBracket(match.BracketID), brackets.Message{
		Type:    brackets.EventMatchUpdated,
		Payload: match,
	})
}
