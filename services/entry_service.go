package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/silat-bracket/models"
	"github.com/Dosada05/silat-bracket/repositories"
)

type EntryService interface {
	Create(ctx context.Context, entry *models.Entry) error
	GetByID(ctx context.Context, id int) (*models.Entry, error)
	List(ctx context.Context, format *models.CompetitionFormat) ([]*models.Entry, error)
	Delete(ctx context.Context, id int) error
	// RegisterCompetitor appends a competitor to the entry's roster. The
	// registration order is the seeding order used at bracket generation.
	RegisterCompetitor(ctx context.Context, entryID, competitorID int) error
	UnregisterCompetitor(ctx context.Context, entryID, competitorID int) error
	Roster(ctx context.Context, entryID int) ([]*models.Competitor, error)
}

type entryService struct {
	repo           repositories.EntryRepository
	competitorRepo repositories.CompetitorRepository
}

func NewEntryService(repo repositories.EntryRepository, competitorRepo repositories.CompetitorRepository) EntryService {
	return &entryService{repo: repo, competitorRepo: competitorRepo}
}

func (s *entryService) Create(ctx context.Context, entry *models.Entry) error {
	entry.Name = trimmed(entry.Name)
	if entry.Name == "" {
		return fmt.Errorf("%w: entry name is required", ErrValidationFailed)
	}
	if !entry.Format.Valid() {
		return fmt.Errorf("%w: unknown format %q", ErrValidationFailed, entry.Format)
	}
	// A combat entry is a weight class; a performance entry is a routine
	// discipline. Each format requires its own qualifier.
	switch entry.Format {
	case models.FormatCombat:
		if entry.Class == nil || trimmed(*entry.Class) == "" {
			return fmt.Errorf("%w: combat entries require a weight class", ErrValidationFailed)
		}
	case models.FormatPerformance:
		if entry.Discipline == nil || trimmed(*entry.Discipline) == "" {
			return fmt.Errorf("%w: performance entries require a discipline", ErrValidationFailed)
		}
	}
	return s.mapError(s.repo.Create(ctx, entry))
}

func (s *entryService) GetByID(ctx context.Context, id int) (*models.Entry, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err)
	}
	return entry, nil
}

func (s *entryService) List(ctx context.Context, format *models.CompetitionFormat) ([]*models.Entry, error) {
	if format != nil && !format.Valid() {
		return nil, fmt.Errorf("%w: unknown format %q", ErrValidationFailed, *format)
	}
	return s.repo.List(ctx, format)
}

func (s *entryService) Delete(ctx context.Context, id int) error {
	return s.mapError(s.repo.Delete(ctx, id))
}

func (s *entryService) RegisterCompetitor(ctx context.Context, entryID, competitorID int) error {
	if _, err := s.competitorRepo.GetByID(ctx, competitorID); err != nil {
		if errors.Is(err, repositories.ErrCompetitorNotFound) {
			return ErrCompetitorNotFound
		}
		return err
	}
	return s.mapError(s.repo.RegisterCompetitor(ctx, entryID, competitorID))
}

func (s *entryService) UnregisterCompetitor(ctx context.Context, entryID, competitorID int) error {
	return s.mapError(s.repo.UnregisterCompetitor(ctx, entryID, competitorID))
}

func (s *entryService) Roster(ctx context.Context, entryID int) ([]*models.Competitor, error) {
	if _, err := s.repo.GetByID(ctx, entryID); err != nil {
		return nil, s.mapError(err)
	}
	return s.repo.ListRoster(ctx, entryID)
}

func (s *entryService) mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrEntryNotFound):
		return ErrEntryNotFound
	case errors.Is(err, repositories.ErrEntryNameConflict):
		return ErrNameConflict
	case errors.Is(err, repositories.ErrEntryCategoryInvalid):
		return fmt.Errorf("%w: category does not exist", ErrValidationFailed)
	case errors.Is(err, repositories.ErrEntryInUse):
		return ErrResourceInUse
	case errors.Is(err, repositories.ErrRegistrationConflict):
		return ErrRegistrationConflict
	case errors.Is(err, repositories.ErrRegistrationNotFound):
		return ErrRegistrationNotFound
	case errors.Is(err, repositories.ErrRegistrationCompetitorInvalid):
		return ErrCompetitorNotFound
	}
	return err
}
