package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Dosada05/silat-bracket/models"
	"github.com/lib/pq"
)

var (
	ErrCompetitorNotFound          = errors.New("competitor not found")
	ErrCompetitorContingentInvalid = errors.New("competitor references an invalid contingent")
	ErrCompetitorCategoryInvalid   = errors.New("competitor references an invalid category")
	ErrCompetitorInUse             = errors.New("competitor cannot be deleted while registered or placed in matches")
)

// CompetitorFilter narrows List; nil fields are ignored.
type CompetitorFilter struct {
	ContingentID *int
	CategoryID   *int
	Gender       *models.Gender
}

type CompetitorRepository interface {
	Create(ctx context.Context, competitor *models.Competitor) error
	GetByID(ctx context.Context, id int) (*models.Competitor, error)
	List(ctx context.Context, filter CompetitorFilter) ([]*models.Competitor, error)
	// ListByIDs is the bulk name lookup the bracket detail view uses.
	ListByIDs(ctx context.Context, ids []int) ([]*models.Competitor, error)
	Update(ctx context.Context, competitor *models.Competitor) error
	Delete(ctx context.Context, id int) error
}

type postgresCompetitorRepository struct {
	db *sql.DB
}

func NewPostgresCompetitorRepository(db *sql.DB) CompetitorRepository {
	return &postgresCompetitorRepository{db: db}
}

func (r *postgresCompetitorRepository) Create(ctx context.Context, competitor *models.Competitor) error {
	query := `
		INSERT INTO competitors (name, gender, contingent_id, category_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		competitor.Name,
		competitor.Gender,
		competitor.ContingentID,
		competitor.CategoryID,
	).Scan(&competitor.ID, &competitor.CreatedAt)

	return r.handleCompetitorError(err)
}

func (r *postgresCompetitorRepository) GetByID(ctx context.Context, id int) (*models.Competitor, error) {
	query := `
		SELECT id, name, gender, contingent_id, category_id, created_at
		FROM competitors
		WHERE id = $1`

	c := &models.Competitor{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Gender, &c.ContingentID, &c.CategoryID, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCompetitorNotFound
		}
		return nil, fmt.Errorf("failed to scan competitor by id %d: %w", id, err)
	}
	return c, nil
}

func (r *postgresCompetitorRepository) List(ctx context.Context, filter CompetitorFilter) ([]*models.Competitor, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT id, name, gender, contingent_id, category_id, created_at
		FROM competitors
		WHERE 1=1`)

	args := []interface{}{}
	addCond := func(cond string, value interface{}) {
		args = append(args, value)
		queryBuilder.WriteString(" AND " + cond + " = $" + strconv.Itoa(len(args)))
	}
	if filter.ContingentID != nil {
		addCond("contingent_id", *filter.ContingentID)
	}
	if filter.CategoryID != nil {
		addCond("category_id", *filter.CategoryID)
	}
	if filter.Gender != nil {
		addCond("gender", *filter.Gender)
	}
	queryBuilder.WriteString(" ORDER BY name ASC, id ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query competitors: %w", err)
	}
	defer rows.Close()

	return collectCompetitors(rows)
}

func (r *postgresCompetitorRepository) ListByIDs(ctx context.Context, ids []int) ([]*models.Competitor, error) {
	if len(ids) == 0 {
		return []*models.Competitor{}, nil
	}
	query := `
		SELECT id, name, gender, contingent_id, category_id, created_at
		FROM competitors
		WHERE id = ANY($1)`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query competitors by ids: %w", err)
	}
	defer rows.Close()

	return collectCompetitors(rows)
}

func collectCompetitors(rows *sql.Rows) ([]*models.Competitor, error) {
	competitors := make([]*models.Competitor, 0)
	for rows.Next() {
		c := &models.Competitor{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Gender, &c.ContingentID, &c.CategoryID, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan competitor row: %w", err)
		}
		competitors = append(competitors, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during competitor rows iteration: %w", err)
	}
	return competitors, nil
}

func (r *postgresCompetitorRepository) Update(ctx context.Context, competitor *models.Competitor) error {
	query := `
		UPDATE competitors
		SET name = $1, gender = $2, contingent_id = $3, category_id = $4
		WHERE id = $5`

	result, err := r.db.ExecContext(ctx, query,
		competitor.Name,
		competitor.Gender,
		competitor.ContingentID,
		competitor.CategoryID,
		competitor.ID,
	)
	if err != nil {
		return r.handleCompetitorError(err)
	}
	return checkAffectedRows(result, ErrCompetitorNotFound)
}

func (r *postgresCompetitorRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM competitors WHERE id = $1`, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return ErrCompetitorInUse
		}
		return err
	}
	return checkAffectedRows(result, ErrCompetitorNotFound)
}

func (r *postgresCompetitorRepository) handleCompetitorError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "competitors_contingent_id_fkey":
			return ErrCompetitorContingentInvalid
		case "competitors_category_id_fkey":
			return ErrCompetitorCategoryInvalid
		}
	}
	return err
}
