package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/silat-bracket/models"
	"github.com/Dosada05/silat-bracket/repositories"
)

type CategoryService interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id int) (*models.Category, error)
	List(ctx context.Context) ([]*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id int) error
}

type categoryService struct {
	repo repositories.CategoryRepository
}

func NewCategoryService(repo repositories.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) Create(ctx context.Context, category *models.Category) error {
	category.Name = trimmed(category.Name)
	if category.Name == "" {
		return fmt.Errorf("%w: category name is required", ErrValidationFailed)
	}
	return s.mapError(s.repo.Create(ctx, category))
}

func (s *categoryService) GetByID(ctx context.Context, id int) (*models.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err)
	}
	return category, nil
}

func (s *categoryService) List(ctx context.Context) ([]*models.Category, error) {
	return s.repo.List(ctx)
}

func (s *categoryService) Update(ctx context.Context, category *models.Category) error {
	category.Name = trimmed(category.Name)
	if category.Name == "" {
		return fmt.Errorf("%w: category name is required", ErrValidationFailed)
	}
	return s.mapError(s.repo.Update(ctx, category))
}

func (s *categoryService) Delete(ctx context.Context, id int) error {
	return s.mapError(s.repo.Delete(ctx, id))
}

func (s *categoryService) mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrCategoryNotFound):
		return ErrCategoryNotFound
	case errors.Is(err, repositories.ErrCategoryNameConflict):
		return ErrNameConflict
	case errors.Is(err, repositories.ErrCategoryInUse):
		return ErrResourceInUse
	}
	return err
}
