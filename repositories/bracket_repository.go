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
	ErrBracketNotFound      = errors.New("bracket not found")
	ErrBracketEntryConflict = errors.New("a bracket already exists for this entry")
	ErrBracketEntryInvalid  = errors.New("bracket references an invalid entry")
)

type BracketRepository interface {
	Create(ctx context.Context, exec SQLExecutor, bracket *models.Bracket) error
	GetByID(ctx context.Context, id int) (*models.Bracket, error)
	// GetByIDTx reads through the caller's executor so the lookup shares
	// the surrounding transaction's snapshot.
	GetByIDTx(ctx context.Context, exec SQLExecutor, id int) (*models.Bracket, error)
	GetByEntry(ctx context.Context, exec SQLExecutor, entryID int) (*models.Bracket, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.BracketStatus) error
}

type postgresBracketRepository struct {
	db *sql.DB
}

func NewPostgresBracketRepository(db *sql.DB) BracketRepository {
	return &postgresBracketRepository{db: db}
}

func (r *postgresBracketRepository) Create(ctx context.Context, exec SQLExecutor, bracket *models.Bracket) error {
	query := `
		INSERT INTO brackets (entry_id, format, name, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		bracket.EntryID,
		bracket.Format,
		bracket.Name,
		bracket.Status,
	).Scan(&bracket.ID, &bracket.CreatedAt)

	return r.handleBracketError(err)
}

func (r *postgresBracketRepository) GetByID(ctx context.Context, id int) (*models.Bracket, error) {
	return r.getByID(ctx, r.db, id)
}

func (r *postgresBracketRepository) GetByIDTx(ctx context.Context, exec SQLExecutor, id int) (*models.Bracket, error) {
	return r.getByID(ctx, exec, id)
}

func (r *postgresBracketRepository) getByID(ctx context.Context, exec SQLExecutor, id int) (*models.Bracket, error) {
	query := `
		SELECT id, entry_id, format, name, status, created_at
		FROM brackets
		WHERE id = $1`

	bracket := &models.Bracket{}
	err := exec.QueryRowContext(ctx, query, id).Scan(
		&bracket.ID,
		&bracket.EntryID,
		&bracket.Format,
		&bracket.Name,
		&bracket.Status,
		&bracket.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBracketNotFound
		}
		return nil, fmt.Errorf("failed to scan bracket by id %d: %w", id, err)
	}
	return bracket, nil
}

func (r *postgresBracketRepository) GetByEntry(ctx context.Context, exec SQLExecutor, entryID int) (*models.Bracket, error) {
	query := `
		SELECT id, entry_id, format, name, status, created_at
		FROM brackets
		WHERE entry_id = $1
		FOR UPDATE`

	bracket := &models.Bracket{}
	err := exec.QueryRowContext(ctx, query, entryID).Scan(
		&bracket.ID,
		&bracket.EntryID,
		&bracket.Format,
		&bracket.Name,
		&bracket.Status,
		&bracket.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBracketNotFound
		}
		return nil, fmt.Errorf("failed to scan bracket for entry %d: %w", entryID, err)
	}
	return bracket, nil
}

func (r *postgresBracketRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.BracketStatus) error {
	query := `UPDATE brackets SET status = $1 WHERE id = $2`
	result, err := exec.ExecContext(ctx, query, status, id)
	if err != nil {
		return r.handleBracketError(err)
	}
	return checkAffectedRows(result, ErrBracketNotFound)
}

func (r *postgresBracketRepository) handleBracketError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "brackets_entry_id_key":
			return ErrBracketEntryConflict
		case "brackets_entry_id_fkey":
			return ErrBracketEntryInvalid
		}
	}
	return err
}
