package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/silat-bracket/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchBracketInvalid    = errors.New("match references an invalid bracket")
	ErrMatchCompetitorInvalid = errors.New("match references an invalid competitor")
	ErrMatchOfficialInvalid   = errors.New("match references an invalid official")
	ErrMatchSequenceConflict  = errors.New("match sequence number already taken")
)

const matchColumns = `id, bracket_id, round, order_in_round, red_competitor_id, blue_competitor_id,
	score_red, score_blue, winner_id, official_id, status, is_approved, sequence,
	next_match_red_id, next_match_blue_id, notes, created_at`

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	// GetByIDForUpdate takes a row lock so progression decisions and their
	// writes happen against a stable row within the caller's transaction.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	ListByBracket(ctx context.Context, bracketID int) ([]*models.Match, error)
	UpdateSuccessors(ctx context.Context, exec SQLExecutor, id int, nextRedID, nextBlueID *int) error
	// FillSlot writes competitorID into the given slot only when that slot is
	// still empty, and reports whether the write happened. The condition is
	// part of the UPDATE so two racing predecessors cannot both fill it.
	FillSlot(ctx context.Context, exec SQLExecutor, id int, slot models.MatchSlot, competitorID int) (bool, error)
	UpdateApproval(ctx context.Context, exec SQLExecutor, id int, sequence int, officialID *int) error
	UpdateResult(ctx context.Context, exec SQLExecutor, match *models.Match) error
	DeleteByBracket(ctx context.Context, exec SQLExecutor, bracketID int) error
	// NextSequence derives the next global run-of-show number from the data
	// itself. Must be called inside the same transaction as the approval that
	// consumes the number.
	NextSequence(ctx context.Context, exec SQLExecutor) (int, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches
			(bracket_id, round, order_in_round, red_competitor_id, blue_competitor_id,
			 score_red, score_blue, winner_id, official_id, status, is_approved, sequence,
			 next_match_red_id, next_match_blue_id, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		match.BracketID,
		match.Round,
		match.OrderInRound,
		match.RedCompetitorID,
		match.BlueCompetitorID,
		match.ScoreRed,
		match.ScoreBlue,
		match.WinnerID,
		match.OfficialID,
		match.Status,
		match.IsApproved,
		match.Sequence,
		match.NextMatchRedID,
		match.NextMatchBlueID,
		match.Notes,
	).Scan(&match.ID, &match.CreatedAt)

	return r.handleMatchError(err)
}

func scanMatch(row interface{ Scan(dest ...interface{}) error }, match *models.Match) error {
	return row.Scan(
		&match.ID,
		&match.BracketID,
		&match.Round,
		&match.OrderInRound,
		&match.RedCompetitorID,
		&match.BlueCompetitorID,
		&match.ScoreRed,
		&match.ScoreBlue,
		&match.WinnerID,
		&match.OfficialID,
		&match.Status,
		&match.IsApproved,
		&match.Sequence,
		&match.NextMatchRedID,
		&match.NextMatchBlueID,
		&match.Notes,
		&match.CreatedAt,
	)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := fmt.Sprintf(`SELECT %s FROM matches WHERE id = $1`, matchColumns)

	match := &models.Match{}
	err := scanMatch(r.db.QueryRowContext(ctx, query, id), match)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	query := fmt.Sprintf(`SELECT %s FROM matches WHERE id = $1 FOR UPDATE`, matchColumns)

	match := &models.Match{}
	err := scanMatch(exec.QueryRowContext(ctx, query, id), match)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match %d for update: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByBracket(ctx context.Context, bracketID int) ([]*models.Match, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM matches
		WHERE bracket_id = $1
		ORDER BY round ASC, order_in_round ASC`, matchColumns)

	rows, err := r.db.QueryContext(ctx, query, bracketID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for bracket %d: %w", bracketID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match := &models.Match{}
		if scanErr := scanMatch(rows, match); scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, match)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) UpdateSuccessors(ctx context.Context, exec SQLExecutor, id int, nextRedID, nextBlueID *int) error {
	query := `UPDATE matches SET next_match_red_id = $1, next_match_blue_id = $2 WHERE id = $3`
	result, err := exec.ExecContext(ctx, query, nextRedID, nextBlueID, id)
	if err != nil {
		return fmt.Errorf("UpdateSuccessors: failed for match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) FillSlot(ctx context.Context, exec SQLExecutor, id int, slot models.MatchSlot, competitorID int) (bool, error) {
	var query string
	switch slot {
	case models.SlotRed:
		query = `UPDATE matches SET red_competitor_id = $1 WHERE id = $2 AND red_competitor_id IS NULL`
	case models.SlotBlue:
		query = `UPDATE matches SET blue_competitor_id = $1 WHERE id = $2 AND blue_competitor_id IS NULL`
	default:
		return false, fmt.Errorf("FillSlot: unknown slot %q", slot)
	}

	result, err := exec.ExecContext(ctx, query, competitorID, id)
	if err != nil {
		return false, r.handleMatchError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("FillSlot: failed to check affected rows for match %d: %w", id, err)
	}
	return affected == 1, nil
}

func (r *postgresMatchRepository) UpdateApproval(ctx context.Context, exec SQLExecutor, id int, sequence int, officialID *int) error {
	query := `
		UPDATE matches
		SET is_approved = TRUE, status = $1, sequence = $2, official_id = COALESCE($3, official_id)
		WHERE id = $4`
	result, err := exec.ExecContext(ctx, query, models.MatchStatusApproved, sequence, officialID, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		UPDATE matches
		SET score_red = $1, score_blue = $2, winner_id = $3, official_id = $4,
		    status = $5, notes = $6
		WHERE id = $7`
	result, err := exec.ExecContext(ctx, query,
		match.ScoreRed,
		match.ScoreBlue,
		match.WinnerID,
		match.OfficialID,
		match.Status,
		match.Notes,
		match.ID,
	)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) DeleteByBracket(ctx context.Context, exec SQLExecutor, bracketID int) error {
	// Successor references are intra-bracket, so the whole set goes at once;
	// clearing the self-references first keeps the FK happy regardless of
	// deletion order.
	if _, err := exec.ExecContext(ctx,
		`UPDATE matches SET next_match_red_id = NULL, next_match_blue_id = NULL WHERE bracket_id = $1`,
		bracketID,
	); err != nil {
		return fmt.Errorf("DeleteByBracket: failed to clear successor links for bracket %d: %w", bracketID, err)
	}
	if _, err := exec.ExecContext(ctx, `DELETE FROM matches WHERE bracket_id = $1`, bracketID); err != nil {
		return fmt.Errorf("DeleteByBracket: failed for bracket %d: %w", bracketID, err)
	}
	return nil
}

func (r *postgresMatchRepository) NextSequence(ctx context.Context, exec SQLExecutor) (int, error) {
	var next int
	err := exec.QueryRowContext(ctx, `SELECT COALESCE(MAX(sequence), 0) + 1 FROM matches`).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to compute next sequence number: %w", err)
	}
	return next, nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "matches_bracket_id_fkey":
			return ErrMatchBracketInvalid
		case "matches_red_competitor_id_fkey", "matches_blue_competitor_id_fkey", "matches_winner_id_fkey":
			return ErrMatchCompetitorInvalid
		case "matches_official_id_fkey":
			return ErrMatchOfficialInvalid
		case "matches_sequence_key":
			return ErrMatchSequenceConflict
		}
	}
	return err
}
