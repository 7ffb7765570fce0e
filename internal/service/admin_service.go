package service

import (
	"context"
	"fmt"
	"log/slog"

	"jread/internal/authz"
	"jread/internal/catalog"
	"jread/internal/domain"
	"jread/internal/domain/models"
	"jread/internal/domain/repositories"
	"jread/internal/domain/services"
)

// AdminService implements the AdminService interface
type AdminService struct {
	profileRepo repositories.ProfileRepository
	novelRepo   repositories.NovelRepository
	registry    *authz.Registry
	authAdmin   AuthAdmin
	cache       *catalog.Cache
	logger      *slog.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(
	profileRepo repositories.ProfileRepository,
	novelRepo repositories.NovelRepository,
	registry *authz.Registry,
	authAdmin AuthAdmin,
	cache *catalog.Cache,
	logger *slog.Logger,
) services.AdminService {
	return &AdminService{
		profileRepo: profileRepo,
		novelRepo:   novelRepo,
		registry:    registry,
		authAdmin:   authAdmin,
		cache:       cache,
		logger:      logger,
	}
}

// ListUsers returns every profile for the admin dashboard
func (s *AdminService) ListUsers(ctx context.Context, actorID string) ([]models.Profile, error) {
	if err := s.requireManageUsers(ctx, actorID); err != nil {
		return nil, err
	}
	return s.profileRepo.List(ctx)
}

// ChangeRole assigns target a new role per the role-change matrix: admins
// manage USER/AUTHOR roles, only the owner touches admins, and nobody
// changes their own role.
func (s *AdminService) ChangeRole(ctx context.Context, actorID, targetID string, req *services.ChangeRoleRequest) (*models.Profile, error) {
	if !req.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, req.Role)
	}
	if req.Role == models.RoleOwner {
		return nil, &domain.ForbiddenError{Message: "the owner role cannot be assigned"}
	}

	actor, err := s.profileRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	target, err := s.profileRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if !s.registry.CanChangeRole(actorID, actor.Role, targetID, target.Role, req.Role) {
		return nil, &domain.ForbiddenError{Message: "you cannot change this user's role"}
	}

	if err := s.profileRepo.UpdateRole(ctx, targetID, req.Role); err != nil {
		return nil, err
	}
	target.Role = req.Role

	s.logger.Info("role changed",
		"actor_id", actorID,
		"target_id", targetID,
		"new_role", req.Role,
	)
	return target, nil
}

// RemoveUser deletes a user's account and content, subject to the same
// matrix as role changes.
func (s *AdminService) RemoveUser(ctx context.Context, actorID, targetID string) error {
	actor, err := s.profileRepo.GetByID(ctx, actorID)
	if err != nil {
		return err
	}
	target, err := s.profileRepo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}

	// Removing a user requires the same privilege as managing their role.
	if !s.registry.CanChangeRole(actorID, actor.Role, targetID, target.Role, models.RoleUser) {
		return &domain.ForbiddenError{Message: "you cannot remove this user"}
	}

	novels, err := s.novelRepo.ListByAuthor(ctx, targetID)
	if err != nil {
		return err
	}

	if err := s.profileRepo.Delete(ctx, targetID); err != nil {
		return err
	}
	for i := range novels {
		s.cache.Remove(novels[i].ID)
	}

	if err := s.authAdmin.DeleteUser(targetID); err != nil {
		s.logger.Error("failed to delete auth user after removal",
			"target_id", targetID,
			"error", err,
		)
		return fmt.Errorf("delete auth user: %w", err)
	}

	s.logger.Info("user removed", "actor_id", actorID, "target_id", targetID)
	return nil
}

func (s *AdminService) requireManageUsers(ctx context.Context, actorID string) error {
	actor, err := s.profileRepo.GetByID(ctx, actorID)
	if err != nil {
		return err
	}
	if !s.registry.Can(actor.Role, authz.CapManageUsers) {
		return &domain.ForbiddenError{Message: "admin access required"}
	}
	return nil
}
