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
	ErrEntryNotFound           = errors.New("entry not found")
	ErrEntryNameConflict       = errors.New("entry name already exists")
	ErrEntryCategoryInvalid    = errors.New("entry references an invalid category")
	ErrEntryInUse              = errors.New("entry cannot be deleted while a bracket exists for it")
	ErrRegistrationConflict    = errors.New("competitor is already registered for this entry")
	ErrRegistrationNotFound    = errors.New("registration not found")
	ErrRegistrationCompetitorInvalid = errors.New("registration references an invalid competitor")
)

type EntryRepository interface {
	Create(ctx context.Context, entry *models.Entry) error
	GetByID(ctx context.Context, id int) (*models.Entry, error)
	List(ctx context.Context, format *models.CompetitionFormat) ([]*models.Entry, error)
	Delete(ctx context.Context, id int) error
	RegisterCompetitor(ctx context.Context, entryID, competitorID int) error
	UnregisterCompetitor(ctx context.Context, entryID, competitorID int) error
	// ListRoster returns the entry's competitors in registration order, the
	// seeding order the bracket builder consumes.
	ListRoster(ctx context.Context, entryID int) ([]*models.Competitor, error)
}

type postgresEntryRepository struct {
	db *sql.DB
}

func NewPostgresEntryRepository(db *sql.DB) EntryRepository {
	return &postgresEntryRepository{db: db}
}

const entryColumns = `e.id, e.format, e.name, e.class, e.discipline, e.gender, e.category_id, e.created_at,
	(SELECT COUNT(*) FROM entry_registrations er WHERE er.entry_id = e.id) AS registered_count`

func scanEntry(row interface{ Scan(dest ...interface{}) error }, entry *models.Entry) error {
	return row.Scan(
		&entry.ID,
		&entry.Format,
		&entry.Name,
		&entry.Class,
		&entry.Discipline,
		&entry.Gender,
		&entry.CategoryID,
		&entry.CreatedAt,
		&entry.RegisteredCount,
	)
}

func (r *postgresEntryRepository) Create(ctx context.Context, entry *models.Entry) error {
	query := `
		INSERT INTO entries (format, name, class, discipline, gender, category_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		entry.Format,
		entry.Name,
		entry.Class,
		entry.Discipline,
		entry.Gender,
		entry.CategoryID,
	).Scan(&entry.ID, &entry.CreatedAt)

	return r.handleEntryError(err)
}

func (r *postgresEntryRepository) GetByID(ctx context.Context, id int) (*models.Entry, error) {
	query := fmt.Sprintf(`SELECT %s FROM entries e WHERE e.id = $1`, entryColumns)

	entry := &models.Entry{}
	err := scanEntry(r.db.QueryRowContext(ctx, query, id), entry)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to scan entry by id %d: %w", id, err)
	}
	return entry, nil
}

func (r *postgresEntryRepository) List(ctx context.Context, format *models.CompetitionFormat) ([]*models.Entry, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(fmt.Sprintf(`SELECT %s FROM entries e`, entryColumns))

	args := []interface{}{}
	if format != nil {
		queryBuilder.WriteString(" WHERE e.format = $" + strconv.Itoa(len(args)+1))
		args = append(args, *format)
	}
	queryBuilder.WriteString(" ORDER BY e.format ASC, e.name ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.Entry, 0)
	for rows.Next() {
		entry := &models.Entry{}
		if scanErr := scanEntry(rows, entry); scanErr != nil {
			return nil, fmt.Errorf("failed to scan entry row: %w", scanErr)
		}
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during entry rows iteration: %w", err)
	}
	return entries, nil
}

func (r *postgresEntryRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE id = $1`, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return ErrEntryInUse
		}
		return err
	}
	return checkAffectedRows(result, ErrEntryNotFound)
}

func (r *postgresEntryRepository) RegisterCompetitor(ctx context.Context, entryID, competitorID int) error {
	query := `
		INSERT INTO entry_registrations (entry_id, competitor_id)
		VALUES ($1, $2)`

	_, err := r.db.ExecContext(ctx, query, entryID, competitorID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Constraint {
			case "entry_registrations_pkey", "entry_registrations_entry_id_competitor_id_key":
				return ErrRegistrationConflict
			case "entry_registrations_entry_id_fkey":
				return ErrEntryNotFound
			case "entry_registrations_competitor_id_fkey":
				return ErrRegistrationCompetitorInvalid
			}
		}
		return fmt.Errorf("failed to register competitor %d for entry %d: %w", competitorID, entryID, err)
	}
	return nil
}

func (r *postgresEntryRepository) UnregisterCompetitor(ctx context.Context, entryID, competitorID int) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM entry_registrations WHERE entry_id = $1 AND competitor_id = $2`,
		entryID, competitorID,
	)
	if err != nil {
		return fmt.Errorf("failed to unregister competitor %d from entry %d: %w", competitorID, entryID, err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresEntryRepository) ListRoster(ctx context.Context, entryID int) ([]*models.Competitor, error) {
	query := `
		SELECT c.id, c.name, c.gender, c.contingent_id, c.category_id, c.created_at
		FROM entry_registrations er
		JOIN competitors c ON c.id = er.competitor_id
		WHERE er.entry_id = $1
		ORDER BY er.registered_at ASC, c.id ASC`

	rows, err := r.db.QueryContext(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query roster for entry %d: %w", entryID, err)
	}
	defer rows.Close()

	roster := make([]*models.Competitor, 0)
	for rows.Next() {
		c := &models.Competitor{}
		if scanErr := rows.Scan(&c.ID, &c.Name, &c.Gender, &c.ContingentID, &c.CategoryID, &c.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan roster row: %w", scanErr)
		}
		roster = append(roster, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during roster rows iteration: %w", err)
	}
	return roster, nil
}

func (r *postgresEntryRepository) handleEntryError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "entries_name_key":
			return ErrEntryNameConflict
		case "entries_category_id_fkey":
			return ErrEntryCategoryInvalid
		}
	}
	return err
}
