package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/silat-bracket/models"
	"github.com/Dosada05/silat-bracket/repositories"
)

type OfficialService interface {
	Create(ctx context.Context, official *models.Official) error
	GetByID(ctx context.Context, id int) (*models.Official, error)
	List(ctx context.Context) ([]*models.Official, error)
	Update(ctx context.Context, official *models.Official) error
	Delete(ctx context.Context, id int) error
}

type officialService struct {
	repo repositories.OfficialRepository
}

func NewOfficialService(repo repositories.OfficialRepository) OfficialService {
	return &officialService{repo: repo}
}

func (s *officialService) Create(ctx context.Context, official *models.Official) error {
	official.Name = trimmed(official.Name)
	if official.Name == "" {
		return fmt.Errorf("%w: official name is required", ErrValidationFailed)
	}
	return s.mapError(s.repo.Create(ctx, official))
}

func (s *officialService) GetByID(ctx context.Context, id int) (*models.Official, error) {
	official, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err)
	}
	return official, nil
}

func (s *officialService) List(ctx context.Context) ([]*models.Official, error) {
	return s.repo.List(ctx)
}

func (s *officialService) Update(ctx context.Context, official *models.Official) error {
	official.Name = trimmed(official.Name)
	if official.Name == "" {
		return fmt.Errorf("%w: official name is required", ErrValidationFailed)
	}
	return s.mapError(s.repo.Update(ctx, official))
}

func (s *officialService) Delete(ctx context.Context, id int) error {
	return s.mapError(s.repo.Delete(ctx, id))
}

func (s *officialService) mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrOfficialNotFound):
		return ErrOfficialNotFound
	case errors.Is(err, repositories.ErrOfficialInUse):
		return ErrResourceInUse
	}
	return err
}
