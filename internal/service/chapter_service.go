package service

import (
	"context"
	"fmt"
	"log/slog"

	"jread/internal/authz"
	"jread/internal/domain"
	"jread/internal/domain/models"
	"jread/internal/domain/repositories"
	"jread/internal/domain/services"
)

// ChapterService implements the ChapterService interface
type ChapterService struct {
	chapterRepo  repositories.ChapterRepository
	novelRepo    repositories.NovelRepository
	progressRepo repositories.ProgressRepository
	profileRepo  repositories.ProfileRepository
	registry     *authz.Registry
	logger       *slog.Logger
}

// NewChapterService creates a new chapter service
func NewChapterService(
	chapterRepo repositories.ChapterRepository,
	novelRepo repositories.NovelRepository,
	progressRepo repositories.ProgressRepository,
	profileRepo repositories.ProfileRepository,
	registry *authz.Registry,
	logger *slog.Logger,
) services.ChapterService {
	return &ChapterService{
		chapterRepo:  chapterRepo,
		novelRepo:    novelRepo,
		progressRepo: progressRepo,
		profileRepo:  profileRepo,
		registry:     registry,
		logger:       logger,
	}
}

// ListChapters lists a novel's chapters ordered by chapter number. The
// author and moderators see drafts; readers see published chapters of a
// published novel.
func (s *ChapterService) ListChapters(ctx context.Context, novelID, viewerID string) ([]models.Chapter, error) {
	novel, err := s.novelRepo.GetByID(ctx, novelID)
	if err != nil {
		return nil, err
	}

	seesDrafts := s.canManage(ctx, novel, viewerID)
	if !novel.Published() && !seesDrafts {
		return nil, fmt.Errorf("novel %s: %w", novelID, domain.ErrNotFound)
	}

	return s.chapterRepo.ListByNovel(ctx, novelID, !seesDrafts)
}

// ReadChapter returns the chapter's content for the reading view. It bumps
// the chapter's view counter and, for a signed-in reader, remembers this
// chapter as their position in the novel.
func (s *ChapterService) ReadChapter(ctx context.Context, chapterID, viewerID string) (*models.Chapter, error) {
	chapter, err := s.chapterRepo.GetByID(ctx, chapterID)
	if err != nil {
		return nil, err
	}

	novel, err := s.novelRepo.GetByID(ctx, chapter.NovelID)
	if err != nil {
		return nil, err
	}

	isAuthor := viewerID != "" && novel.AuthorID == viewerID
	if (!chapter.IsPublished || !novel.Published()) && !s.canManage(ctx, novel, viewerID) {
		return nil, fmt.Errorf("chapter %s: %w", chapterID, domain.ErrNotFound)
	}

	if views, err := s.chapterRepo.IncrementViews(ctx, chapterID); err != nil {
		s.logger.Warn("failed to bump chapter views", "chapter_id", chapterID, "error", err)
	} else {
		chapter.Views = views
	}

	// Progress tracking must not block the read.
	if viewerID != "" && !isAuthor {
		progress := &models.ReadingProgress{
			UserID:    viewerID,
			NovelID:   chapter.NovelID,
			ChapterID: chapterID,
		}
		if err := s.progressRepo.Upsert(ctx, progress); err != nil {
			s.logger.Warn("failed to record reading progress",
				"user_id", viewerID,
				"chapter_id", chapterID,
				"error", err,
			)
		}
	}

	return chapter, nil
}

// PublishChapter makes the chapter visible to readers
func (s *ChapterService) PublishChapter(ctx context.Context, chapterID, actorID string) (*models.Chapter, error) {
	return s.setPublished(ctx, chapterID, actorID, true)
}

// UnpublishChapter hides the chapter from readers again
func (s *ChapterService) UnpublishChapter(ctx context.Context, chapterID, actorID string) (*models.Chapter, error) {
	return s.setPublished(ctx, chapterID, actorID, false)
}

func (s *ChapterService) setPublished(ctx context.Context, chapterID, actorID string, published bool) (*models.Chapter, error) {
	chapter, err := s.getOwned(ctx, chapterID, actorID)
	if err != nil {
		return nil, err
	}

	if chapter.IsPublished == published {
		return chapter, nil
	}

	if err := s.chapterRepo.SetPublished(ctx, chapterID, published); err != nil {
		return nil, err
	}
	chapter.IsPublished = published

	s.logger.Info("chapter visibility changed",
		"chapter_id", chapterID,
		"novel_id", chapter.NovelID,
		"published", published,
	)
	return chapter, nil
}

// DeleteChapter removes the chapter; its comments cascade
func (s *ChapterService) DeleteChapter(ctx context.Context, chapterID, actorID string) error {
	chapter, err := s.getOwned(ctx, chapterID, actorID)
	if err != nil {
		return err
	}

	if err := s.chapterRepo.Delete(ctx, chapterID); err != nil {
		return err
	}

	s.logger.Info("chapter deleted", "chapter_id", chapterID, "novel_id", chapter.NovelID)
	return nil
}

// getOwned fetches the chapter and checks the actor may manage it: the
// novel's author, or a moderator.
func (s *ChapterService) getOwned(ctx context.Context, chapterID, actorID string) (*models.Chapter, error) {
	chapter, err := s.chapterRepo.GetByID(ctx, chapterID)
	if err != nil {
		return nil, err
	}

	novel, err := s.novelRepo.GetByID(ctx, chapter.NovelID)
	if err != nil {
		return nil, err
	}
	if !s.canManage(ctx, novel, actorID) {
		return nil, &domain.ForbiddenError{Message: "you do not own this chapter"}
	}

	return chapter, nil
}

// canManage reports whether userID is the novel's author or holds the
// moderate capability.
func (s *ChapterService) canManage(ctx context.Context, novel *models.Novel, userID string) bool {
	if userID == "" {
		return false
	}
	if novel.AuthorID == userID {
		return true
	}
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return false
	}
	return s.registry.Can(profile.Role, authz.CapModerate)
}
