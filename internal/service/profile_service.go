package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"jread/internal/catalog"
	"jread/internal/config"
	"jread/internal/domain"
	"jread/internal/domain/models"
	"jread/internal/domain/repositories"
	"jread/internal/domain/services"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// AuthAdmin is the slice of the Supabase admin API the profile service
// needs: removing the auth user when an account is deleted.
type AuthAdmin interface {
	DeleteUser(userID string) error
}

// ProfileService implements the ProfileService interface
type ProfileService struct {
	profileRepo repositories.ProfileRepository
	novelRepo   repositories.NovelRepository
	txManager   repositories.TransactionManager
	authAdmin   AuthAdmin
	cache       *catalog.Cache
	logger      *slog.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(
	profileRepo repositories.ProfileRepository,
	novelRepo repositories.NovelRepository,
	txManager repositories.TransactionManager,
	authAdmin AuthAdmin,
	cache *catalog.Cache,
	logger *slog.Logger,
) services.ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		novelRepo:   novelRepo,
		txManager:   txManager,
		authAdmin:   authAdmin,
		cache:       cache,
		logger:      logger,
	}
}

// CreateProfile creates the profile row on first login. The signup form
// chooses USER or AUTHOR; higher roles are only ever assigned by an admin.
func (s *ProfileService) CreateProfile(ctx context.Context, req *services.CreateProfileRequest) (*models.Profile, error) {
	if err := validateUsername(req.Username); err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	if role != models.RoleUser && role != models.RoleAuthor {
		return nil, fmt.Errorf("%w: role must be %s or %s", domain.ErrValidation, models.RoleUser, models.RoleAuthor)
	}

	profile := &models.Profile{
		ID:       req.UserID,
		Email:    req.Email,
		Username: req.Username,
		Role:     role,
	}

	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, err
	}

	s.logger.Info("profile created", "user_id", profile.ID, "username", profile.Username)
	return profile, nil
}

// GetOwnProfile returns the caller's full profile including email
func (s *ProfileService) GetOwnProfile(ctx context.Context, userID string) (*models.Profile, error) {
	return s.profileRepo.GetByID(ctx, userID)
}

// GetPublicProfile returns another user's profile with private fields stripped
func (s *ProfileService) GetPublicProfile(ctx context.Context, username string) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return profile.PublicView(), nil
}

// UpdateProfile applies a partial update. Username and pen name changes
// propagate to the denormalized author name on the user's novels and the
// catalog entries built from them, all inside one transaction.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, req *services.UpdateProfileRequest) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	oldAuthorName := profile.AuthorName()

	if req.Username != nil {
		if err := validateUsername(*req.Username); err != nil {
			return nil, err
		}
		profile.Username = *req.Username
	}
	if req.PenName.Present {
		if req.PenName.Value != nil {
			if err := validation.Validate(*req.PenName.Value, validation.Length(0, config.MaxPenNameLength)); err != nil {
				return nil, fmt.Errorf("%w: pen_name: %v", domain.ErrValidation, err)
			}
		}
		profile.PenName = req.PenName.Value
	}
	if req.Bio.Present {
		if req.Bio.Value != nil {
			if err := validation.Validate(*req.Bio.Value, validation.Length(0, config.MaxBioLength)); err != nil {
				return nil, fmt.Errorf("%w: bio: %v", domain.ErrValidation, err)
			}
		}
		profile.Bio = req.Bio.Value
	}
	if req.BookmarksPublic != nil {
		profile.BookmarksPublic = *req.BookmarksPublic
	}
	if req.ActivityPublic != nil {
		profile.ActivityPublic = *req.ActivityPublic
	}

	newAuthorName := profile.AuthorName()

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.profileRepo.Update(txCtx, profile); err != nil {
			return err
		}
		if newAuthorName != oldAuthorName {
			return s.novelRepo.UpdateAuthorName(txCtx, userID, newAuthorName)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if newAuthorName != oldAuthorName {
		s.refreshCatalogAuthor(ctx, userID)
	}

	return profile, nil
}

// SetAvatar records the uploaded picture's URL
func (s *ProfileService) SetAvatar(ctx context.Context, userID, avatarURL string) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile.AvatarURL = &avatarURL
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}

	return profile, nil
}

// DeleteAccount removes the profile and everything it owns, then the
// Supabase auth user. Novels, chapters, comments and engagement rows cascade
// through foreign keys; published novels also leave the catalog.
func (s *ProfileService) DeleteAccount(ctx context.Context, userID string) error {
	novels, err := s.novelRepo.ListByAuthor(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.profileRepo.Delete(ctx, userID); err != nil {
		return err
	}

	for i := range novels {
		s.cache.Remove(novels[i].ID)
	}

	// The profile row is already gone; an auth-side failure here leaves an
	// orphaned auth user, which is harmless but logged for cleanup.
	if err := s.authAdmin.DeleteUser(userID); err != nil {
		s.logger.Error("failed to delete auth user after profile deletion",
			"user_id", userID,
			"error", err,
		)
		return fmt.Errorf("delete auth user: %w", err)
	}

	s.logger.Info("account deleted", "user_id", userID)
	return nil
}

// refreshCatalogAuthor reloads the author's published novels into the
// catalog so listings show the new author name.
func (s *ProfileService) refreshCatalogAuthor(ctx context.Context, authorID string) {
	novels, err := s.novelRepo.ListByAuthor(ctx, authorID)
	if err != nil {
		s.logger.Warn("failed to refresh catalog after author rename", "author_id", authorID, "error", err)
		return
	}
	for i := range novels {
		if novels[i].Published() {
			s.cache.Replace(novels[i])
		}
	}
}

func validateUsername(username string) error {
	err := validation.Validate(username,
		validation.Required,
		validation.Length(3, config.MaxUsernameLength),
		validation.Match(usernamePattern).Error("only letters, digits and underscores are allowed"),
	)
	if err != nil {
		return fmt.Errorf("%w: username: %v", domain.ErrValidation, err)
	}
	return nil
}
