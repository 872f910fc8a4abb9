package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/Dosada05/silat-bracket/models"
	"github.com/Dosada05/silat-bracket/repositories"
	"github.com/Dosada05/silat-bracket/storage"
	"github.com/google/uuid"
)

type ContingentService interface {
	Create(ctx context.Context, contingent *models.Contingent) error
	GetByID(ctx context.Context, id int) (*models.Contingent, error)
	List(ctx context.Context) ([]*models.Contingent, error)
	Update(ctx context.Context, contingent *models.Contingent) error
	Delete(ctx context.Context, id int) error
	// UploadLogo stores the image in object storage and replaces the
	// contingent's previous logo, if any.
	UploadLogo(ctx context.Context, id int, file io.Reader, contentType string) (*models.Contingent, error)
}

type contingentService struct {
	repo     repositories.ContingentRepository
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewContingentService(repo repositories.ContingentRepository, uploader storage.FileUploader, logger *slog.Logger) ContingentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &contingentService{repo: repo, uploader: uploader, logger: logger}
}

func (s *contingentService) Create(ctx context.Context, contingent *models.Contingent) error {
	contingent.Name = trimmed(contingent.Name)
	if contingent.Name == "" {
		return fmt.Errorf("%w: contingent name is required", ErrValidationFailed)
	}
	if err := s.repo.Create(ctx, contingent); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *contingentService) GetByID(ctx context.Context, id int) (*models.Contingent, error) {
	contingent, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err)
	}
	s.populateLogoURL(contingent)
	return contingent, nil
}

func (s *contingentService) List(ctx context.Context) ([]*models.Contingent, error) {
	contingents, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range contingents {
		s.populateLogoURL(c)
	}
	return contingents, nil
}

func (s *contingentService) Update(ctx context.Context, contingent *models.Contingent) error {
	contingent.Name = trimmed(contingent.Name)
	if contingent.Name == "" {
		return fmt.Errorf("%w: contingent name is required", ErrValidationFailed)
	}
	if err := s.repo.Update(ctx, contingent); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *contingentService) Delete(ctx context.Context, id int) error {
	contingent, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return s.mapError(err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapError(err)
	}
	if contingent.LogoKey != nil && s.uploader != nil {
		if delErr := s.uploader.Delete(ctx, *contingent.LogoKey); delErr != nil {
			s.logger.Warn("failed to delete contingent logo from storage",
				slog.Int("contingent_id", id),
				slog.String("key", *contingent.LogoKey),
				slog.Any("error", delErr),
			)
		}
	}
	return nil
}

func (s *contingentService) UploadLogo(ctx context.Context, id int, file io.Reader, contentType string) (*models.Contingent, error) {
	if s.uploader == nil {
		return nil, ErrUploaderNotConfigured
	}

	contingent, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err)
	}

	ext, err := extensionFromContentType(contentType)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("contingents/logos/%s%s", uuid.NewString(), ext)

	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload logo for contingent %d: %w", id, err)
	}

	oldKey := contingent.LogoKey
	if err := s.repo.UpdateLogoKey(ctx, id, &key); err != nil {
		// The row update failed; the freshly uploaded object is orphaned and
		// removed again.
		if delErr := s.uploader.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to clean up orphaned logo upload",
				slog.String("key", key), slog.Any("error", delErr))
		}
		return nil, s.mapError(err)
	}

	if oldKey != nil && *oldKey != key {
		if delErr := s.uploader.Delete(ctx, *oldKey); delErr != nil {
			s.logger.Warn("failed to delete previous contingent logo",
				slog.Int("contingent_id", id),
				slog.String("key", *oldKey),
				slog.Any("error", delErr),
			)
		}
	}

	contingent.LogoKey = &key
	s.populateLogoURL(contingent)
	return contingent, nil
}

func (s *contingentService) populateLogoURL(contingent *models.Contingent) {
	if contingent == nil || contingent.LogoKey == nil || s.uploader == nil {
		return
	}
	if url := s.uploader.GetPublicURL(*contingent.LogoKey); url != "" {
		contingent.LogoURL = &url
	}
}

func (s *contingentService) mapError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrContingentNotFound):
		return ErrContingentNotFound
	case errors.Is(err, repositories.ErrContingentNameConflict):
		return ErrNameConflict
	case errors.Is(err, repositories.ErrContingentInUse):
		return ErrResourceInUse
	}
	return err
}
