package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/silat-bracket/models"
	"github.com/Dosada05/silat-bracket/repositories"
)

type CompetitorService interface {
	Create(ctx context.Context, competitor *models.Competitor) error
	GetByID(ctx context.Context, id int) (*models.Competitor, error)
	List(ctx context.Context, filter repositories.CompetitorFilter) ([]*models.Competitor, error)
	Update(ctx context.Context, competitor *models.Competitor) error
	Delete(ctx context.Context, id int) error
}

type competitorService struct {
	repo repositories.CompetitorRepository
}

func NewCompetitorService(repo repositories.CompetitorRepository) CompetitorService {
	return &competitorService{repo: repo}
}

func (s *competitorService) validate(competitor *models.Competitor) error {
	competitor.Name = trimmed(competitor.Name)
	if competitor.Name == "" {
		return fmt.Errorf("%w: competitor name is required", ErrValidationFailed)
	}
	if !competitor.Gender.Valid() {
		return fmt.Errorf("%w: unknown gender %q", ErrValidationFailed, competitor.Gender)
	}
	return nil
}

func (s *competitorService) Create(ctx context.Context, competitor *models.Competitor) error {
	if err := s.validate(competitor); err != nil {
		return err
	}
	return s.mapError(s.repo.Create(ctx, competitor))
}

func (s *competitorService) GetByID(ctx context.Context, id int) (*models.Competitor, error) {
	competitor, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err)
	}
	return competitor, nil
}

func (s *competitorService) List(ctx context.Context, filter repositories.CompetitorFilter) ([]*models.Competitor, error) {
	return s.repo.List(ctx, filter)
}

func (s *competitorService) Update(ctx context.Context, competitor *models.Competitor) error {
	if err := s.validate(competitor); err != nil {
		return err
	}
	return s.mapError(s.repo.Update(ctx, competitor))
}

func (s *competitorService) Delete(ctx context.Context, id int) error {
	return s.mapError(s.repo.Delete(ctx, id))
}

func (s *competitorService) mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrCompetitorNotFound):
		return ErrCompetitorNotFound
	case errors.Is(err, repositories.ErrCompetitorContingentInvalid):
		return fmt.Errorf("%w: contingent does not exist", ErrValidationFailed)
	case errors.Is(err, repositories.ErrCompetitorCategoryInvalid):
		return fmt.Errorf("%w: category does not exist", ErrValidationFailed)
	case errors.Is(err, repositories.ErrCompetitorInUse):
		return ErrResourceInUse
	}
	return err
}
