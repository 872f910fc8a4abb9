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
	ErrOfficialNotFound = errors.New("official not found")
	ErrOfficialInUse    = errors.New("official cannot be deleted while assigned to matches")
)

type OfficialRepository interface {
	Create(ctx context.Context, official *models.Official) error
	GetByID(ctx context.Context, id int) (*models.Official, error)
	List(ctx context.Context) ([]*models.Official, error)
	Update(ctx context.Context, official *models.Official) error
	Delete(ctx context.Context, id int) error
}

type postgresOfficialRepository struct {
	db *sql.DB
}

func NewPostgresOfficialRepository(db *sql.DB) OfficialRepository {
	return &postgresOfficialRepository{db: db}
}

func (r *postgresOfficialRepository) Create(ctx context.Context, official *models.Official) error {
	query := `INSERT INTO officials (name) VALUES ($1) RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query, official.Name).Scan(&official.ID, &official.CreatedAt)
}

func (r *postgresOfficialRepository) GetByID(ctx context.Context, id int) (*models.Official, error) {
	query := `SELECT id, name, created_at FROM officials WHERE id = $1`

	official := &models.Official{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&official.ID, &official.Name, &official.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOfficialNotFound
		}
		return nil, fmt.Errorf("failed to scan official by id %d: %w", id, err)
	}
	return official, nil
}

func (r *postgresOfficialRepository) List(ctx context.Context) ([]*models.Official, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM officials ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query officials: %w", err)
	}
	defer rows.Close()

	officials := make([]*models.Official, 0)
	for rows.Next() {
		official := &models.Official{}
		if scanErr := rows.Scan(&official.ID, &official.Name, &official.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan official row: %w", scanErr)
		}
		officials = append(officials, official)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during official rows iteration: %w", err)
	}
	return officials, nil
}

func (r *postgresOfficialRepository) Update(ctx context.Context, official *models.Official) error {
	result, err := r.db.ExecContext(ctx, `UPDATE officials SET name = $1 WHERE id = $2`, official.Name, official.ID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrOfficialNotFound)
}

func (r *postgresOfficialRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM officials WHERE id = $1`, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return ErrOfficialInUse
		}
		return err
	}
	return checkAffectedRows(result, ErrOfficialNotFound)
}
