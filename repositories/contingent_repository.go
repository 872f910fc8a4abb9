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
	ErrContingentNotFound     = errors.New("contingent not found")
	ErrContingentNameConflict = errors.New("contingent name already exists")
	ErrContingentInUse        = errors.New("contingent cannot be deleted while it has competitors")
)

type ContingentRepository interface {
	Create(ctx context.Context, contingent *models.Contingent) error
	GetByID(ctx context.Context, id int) (*models.Contingent, error)
	List(ctx context.Context) ([]*models.Contingent, error)
	Update(ctx context.Context, contingent *models.Contingent) error
	UpdateLogoKey(ctx context.Context, id int, logoKey *string) error
	Delete(ctx context.Context, id int) error
}

type postgresContingentRepository struct {
	db *sql.DB
}

func NewPostgresContingentRepository(db *sql.DB) ContingentRepository {
	return &postgresContingentRepository{db: db}
}

func (r *postgresContingentRepository) Create(ctx context.Context, contingent *models.Contingent) error {
	query := `
		INSERT INTO contingents (name, district, province)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		contingent.Name,
		contingent.District,
		contingent.Province,
	).Scan(&contingent.ID, &contingent.CreatedAt)

	return r.handleContingentError(err)
}

func (r *postgresContingentRepository) GetByID(ctx context.Context, id int) (*models.Contingent, error) {
	query := `
		SELECT id, name, district, province, logo_key, created_at
		FROM contingents
		WHERE id = $1`

	c := &models.Contingent{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.District, &c.Province, &c.LogoKey, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrContingentNotFound
		}
		return nil, fmt.Errorf("failed to scan contingent by id %d: %w", id, err)
	}
	return c, nil
}

func (r *postgresContingentRepository) List(ctx context.Context) ([]*models.Contingent, error) {
	query := `
		SELECT id, name, district, province, logo_key, created_at
		FROM contingents
		ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query contingents: %w", err)
	}
	defer rows.Close()

	contingents := make([]*models.Contingent, 0)
	for rows.Next() {
		c := &models.Contingent{}
		if scanErr := rows.Scan(&c.ID, &c.Name, &c.District, &c.Province, &c.LogoKey, &c.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan contingent row: %w", scanErr)
		}
		contingents = append(contingents, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during contingent rows iteration: %w", err)
	}
	return contingents, nil
}

func (r *postgresContingentRepository) Update(ctx context.Context, contingent *models.Contingent) error {
	query := `
		UPDATE contingents
		SET name = $1, district = $2, province = $3
		WHERE id = $4`

	result, err := r.db.ExecContext(ctx, query,
		contingent.Name,
		contingent.District,
		contingent.Province,
		contingent.ID,
	)
	if err != nil {
		return r.handleContingentError(err)
	}
	return checkAffectedRows(result, ErrContingentNotFound)
}

func (r *postgresContingentRepository) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE contingents SET logo_key = $1 WHERE id = $2`, logoKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrContingentNotFound)
}

func (r *postgresContingentRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM contingents WHERE id = $1`, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return ErrContingentInUse
		}
		return err
	}
	return checkAffectedRows(result, ErrContingentNotFound)
}

func (r *postgresContingentRepository) handleContingentError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Constraint == "contingents_name_key" {
		return ErrContingentNameConflict
	}
	return err
}
