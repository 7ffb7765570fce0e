package service

import (
	"context"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"jread/internal/authz"
	"jread/internal/catalog"
	"jread/internal/config"
	"jread/internal/domain"
	"jread/internal/domain/models"
	"jread/internal/domain/repositories"
	"jread/internal/domain/services"
)

// NovelService implements the NovelService interface
type NovelService struct {
	novelRepo   repositories.NovelRepository
	profileRepo repositories.ProfileRepository
	cache       *catalog.Cache
	registry    *authz.Registry
	logger      *slog.Logger
}

// NewNovelService creates a new novel service
func NewNovelService(
	novelRepo repositories.NovelRepository,
	profileRepo repositories.ProfileRepository,
	cache *catalog.Cache,
	registry *authz.Registry,
	logger *slog.Logger,
) services.NovelService {
	return &NovelService{
		novelRepo:   novelRepo,
		profileRepo: profileRepo,
		cache:       cache,
		registry:    registry,
		logger:      logger,
	}
}

// Browse lists published novels from the in-memory catalog
func (s *NovelService) Browse(q catalog.Query) []models.Novel {
	return s.cache.List(q)
}

// Genres returns the distinct genres present in the catalog
func (s *NovelService) Genres() []string {
	return s.cache.Genres()
}

// GetNovel returns one novel. Drafts are only visible to their author or a
// moderator; to everyone else a draft looks like it doesn't exist.
func (s *NovelService) GetNovel(ctx context.Context, novelID, viewerID string) (*models.Novel, error) {
	novel, err := s.novelRepo.GetByID(ctx, novelID)
	if err != nil {
		return nil, err
	}

	if !novel.Published() && novel.AuthorID != viewerID {
		if viewerID == "" || !s.hasCapability(ctx, viewerID, authz.CapModerate) {
			return nil, fmt.Errorf("novel %s: %w", novelID, domain.ErrNotFound)
		}
	}

	return novel, nil
}

// RecordNovelView bumps the view counter and mirrors it into the catalog
func (s *NovelService) RecordNovelView(ctx context.Context, novelID string) (int64, error) {
	views, err := s.novelRepo.IncrementViews(ctx, novelID)
	if err != nil {
		return 0, err
	}
	s.cache.SetViews(novelID, views)
	return views, nil
}

// ListOwn lists the author's novels, drafts included
func (s *NovelService) ListOwn(ctx context.Context, authorID string) ([]models.Novel, error) {
	return s.novelRepo.ListByAuthor(ctx, authorID)
}

// CreateNovel creates a draft owned by the caller. Requires the
// create_novel capability (AUTHOR and up).
func (s *NovelService) CreateNovel(ctx context.Context, authorID string, req *services.CreateNovelRequest) (*models.Novel, error) {
	author, err := s.profileRepo.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if !s.registry.Can(author.Role, authz.CapCreateNovel) {
		return nil, &domain.ForbiddenError{Message: "an author account is required to create novels"}
	}

	if err := validateNovelMetadata(req.Title, req.Synopsis, req.Tags); err != nil {
		return nil, err
	}

	novel := &models.Novel{
		AuthorID:   authorID,
		AuthorName: author.AuthorName(),
		Title:      req.Title,
		Synopsis:   req.Synopsis,
		Genre:      req.Genre,
		Tags:       req.Tags,
		Language:   req.Language,
		Status:     models.NovelStatusDraft,
	}
	if novel.Language == "" {
		novel.Language = "en"
	}
	if novel.Tags == nil {
		novel.Tags = []string{}
	}

	if err := s.novelRepo.Create(ctx, novel); err != nil {
		return nil, err
	}

	s.logger.Info("novel created", "novel_id", novel.ID, "author_id", authorID, "title", novel.Title)
	return novel, nil
}

// UpdateNovel applies a partial metadata update
func (s *NovelService) UpdateNovel(ctx context.Context, novelID, actorID string, req *services.UpdateNovelRequest) (*models.Novel, error) {
	novel, err := s.getOwned(ctx, novelID, actorID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		novel.Title = *req.Title
	}
	if req.Synopsis != nil {
		novel.Synopsis = *req.Synopsis
	}
	if req.Genre != nil {
		novel.Genre = *req.Genre
	}
	if req.Tags != nil {
		novel.Tags = req.Tags
	}
	if req.Language != nil {
		novel.Language = *req.Language
	}
	if req.CoverURL.Present {
		novel.CoverURL = req.CoverURL.Value
	}

	if err := validateNovelMetadata(novel.Title, novel.Synopsis, novel.Tags); err != nil {
		return nil, err
	}

	if err := s.novelRepo.Update(ctx, novel); err != nil {
		return nil, err
	}

	if novel.Published() {
		s.cache.Replace(*novel)
	}
	return novel, nil
}

// SetCover records the uploaded image's URL on the novel
func (s *NovelService) SetCover(ctx context.Context, novelID, actorID, coverURL string) (*models.Novel, error) {
	novel, err := s.getOwned(ctx, novelID, actorID)
	if err != nil {
		return nil, err
	}

	novel.CoverURL = &coverURL
	if err := s.novelRepo.Update(ctx, novel); err != nil {
		return nil, err
	}

	if novel.Published() {
		s.cache.Replace(*novel)
	}
	return novel, nil
}

// Publish makes the novel visible to readers and adds it to the catalog.
// Publishing an already published novel is a no-op.
func (s *NovelService) Publish(ctx context.Context, novelID, actorID string) (*models.Novel, error) {
	novel, err := s.getOwned(ctx, novelID, actorID)
	if err != nil {
		return nil, err
	}

	if novel.Published() {
		return novel, nil
	}

	if err := s.novelRepo.UpdateStatus(ctx, novelID, models.NovelStatusPublished); err != nil {
		return nil, err
	}
	novel.Status = models.NovelStatusPublished
	s.cache.Add(*novel)

	s.logger.Info("novel published", "novel_id", novelID, "author_id", novel.AuthorID)
	return novel, nil
}

// Unpublish returns the novel to DRAFT and removes it from the catalog
func (s *NovelService) Unpublish(ctx context.Context, novelID, actorID string) (*models.Novel, error) {
	novel, err := s.getOwned(ctx, novelID, actorID)
	if err != nil {
		return nil, err
	}

	if !novel.Published() {
		return novel, nil
	}

	if err := s.novelRepo.UpdateStatus(ctx, novelID, models.NovelStatusDraft); err != nil {
		return nil, err
	}
	novel.Status = models.NovelStatusDraft
	s.cache.Remove(novelID)

	s.logger.Info("novel unpublished", "novel_id", novelID, "author_id", novel.AuthorID)
	return novel, nil
}

// DeleteNovel removes the novel; chapters, comments and engagement rows
// cascade through foreign keys.
func (s *NovelService) DeleteNovel(ctx context.Context, novelID, actorID string) error {
	novel, err := s.getOwned(ctx, novelID, actorID)
	if err != nil {
		return err
	}

	if err := s.novelRepo.Delete(ctx, novelID); err != nil {
		return err
	}
	s.cache.Remove(novelID)

	s.logger.Info("novel deleted", "novel_id", novelID, "author_id", novel.AuthorID)
	return nil
}

// getOwned fetches the novel and checks the actor may manage it: its author,
// or a moderator.
func (s *NovelService) getOwned(ctx context.Context, novelID, actorID string) (*models.Novel, error) {
	novel, err := s.novelRepo.GetByID(ctx, novelID)
	if err != nil {
		return nil, err
	}

	if novel.AuthorID != actorID && !s.hasCapability(ctx, actorID, authz.CapModerate) {
		return nil, &domain.ForbiddenError{Message: "you do not own this novel"}
	}
	return novel, nil
}

func (s *NovelService) hasCapability(ctx context.Context, userID string, cap authz.Capability) bool {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return false
	}
	return s.registry.Can(profile.Role, cap)
}

func validateNovelMetadata(title, synopsis string, tags []string) error {
	err := validation.Errors{
		"title": validation.Validate(title,
			validation.Required,
			validation.Length(1, config.MaxNovelTitleLength),
		),
		"synopsis": validation.Validate(synopsis,
			validation.Length(0, config.MaxSynopsisLength),
		),
		"tags": validation.Validate(tags,
			validation.Length(0, config.MaxTags),
			validation.Each(validation.Length(1, config.MaxTagLength)),
		),
	}.Filter()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}
