package service

import (
	"context"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"jread/internal/authz"
	"jread/internal/domain"
	"jread/internal/domain/models"
	"jread/internal/domain/repositories"
	"jread/internal/domain/services"
)

// ChangelogService implements the ChangelogService interface
type ChangelogService struct {
	changelogRepo repositories.ChangelogRepository
	profileRepo   repositories.ProfileRepository
	registry      *authz.Registry
	logger        *slog.Logger
}

// NewChangelogService creates a new changelog service
func NewChangelogService(
	changelogRepo repositories.ChangelogRepository,
	profileRepo repositories.ProfileRepository,
	registry *authz.Registry,
	logger *slog.Logger,
) services.ChangelogService {
	return &ChangelogService{
		changelogRepo: changelogRepo,
		profileRepo:   profileRepo,
		registry:      registry,
		logger:        logger,
	}
}

// List returns all changelogs, newest release first
func (s *ChangelogService) List(ctx context.Context) ([]models.Changelog, error) {
	return s.changelogRepo.List(ctx)
}

// Create publishes a new changelog. Admin-only.
func (s *ChangelogService) Create(ctx context.Context, actorID string, req *services.CreateChangelogRequest) (*models.Changelog, error) {
	actor, err := s.profileRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !s.registry.Can(actor.Role, authz.CapManageUsers) {
		return nil, &domain.ForbiddenError{Message: "only admins can publish changelogs"}
	}

	verr := validation.Errors{
		"version": validation.Validate(req.Version, validation.Required),
		"entries": validation.Validate(req.Entries, validation.Required),
	}.Filter()
	if verr != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, verr)
	}
	for _, entry := range req.Entries {
		switch entry.Type {
		case models.ChangelogNew, models.ChangelogImproved, models.ChangelogFixed:
		default:
			return nil, fmt.Errorf("%w: unknown entry type %q", domain.ErrValidation, entry.Type)
		}
	}

	changelog := &models.Changelog{
		Version: req.Version,
		Entries: req.Entries,
	}
	if err := s.changelogRepo.Create(ctx, changelog); err != nil {
		return nil, err
	}

	s.logger.Info("changelog published", "version", changelog.Version, "actor_id", actorID)
	return changelog, nil
}
