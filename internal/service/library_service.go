package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"jread/internal/catalog"
	"jread/internal/config"
	"jread/internal/domain"
	"jread/internal/domain/models"
	"jread/internal/domain/repositories"
	"jread/internal/domain/services"
)

// LibraryService implements the LibraryService interface
type LibraryService struct {
	bookmarkRepo repositories.BookmarkRepository
	likeRepo     repositories.LikeRepository
	ratingRepo   repositories.RatingRepository
	progressRepo repositories.ProgressRepository
	novelRepo    repositories.NovelRepository
	profileRepo  repositories.ProfileRepository
	chapterRepo  repositories.ChapterRepository
	txManager    repositories.TransactionManager
	cache        *catalog.Cache
	logger       *slog.Logger
}

// NewLibraryService creates a new library service
func NewLibraryService(
	bookmarkRepo repositories.BookmarkRepository,
	likeRepo repositories.LikeRepository,
	ratingRepo repositories.RatingRepository,
	progressRepo repositories.ProgressRepository,
	novelRepo repositories.NovelRepository,
	profileRepo repositories.ProfileRepository,
	chapterRepo repositories.ChapterRepository,
	txManager repositories.TransactionManager,
	cache *catalog.Cache,
	logger *slog.Logger,
) services.LibraryService {
	return &LibraryService{
		bookmarkRepo: bookmarkRepo,
		likeRepo:     likeRepo,
		ratingRepo:   ratingRepo,
		progressRepo: progressRepo,
		novelRepo:    novelRepo,
		profileRepo:  profileRepo,
		chapterRepo:  chapterRepo,
		txManager:    txManager,
		cache:        cache,
		logger:       logger,
	}
}

// ToggleBookmark flips the (user, novel) bookmark
func (s *LibraryService) ToggleBookmark(ctx context.Context, userID, novelID string) (bool, error) {
	if err := s.requirePublished(ctx, novelID); err != nil {
		return false, err
	}

	exists, err := s.bookmarkRepo.Exists(ctx, userID, novelID)
	if err != nil {
		return false, err
	}

	if exists {
		if err := s.bookmarkRepo.Remove(ctx, userID, novelID); err != nil {
			return false, err
		}
		return false, nil
	}

	if err := s.bookmarkRepo.Set(ctx, userID, novelID); err != nil {
		return false, err
	}
	return true, nil
}

// ListBookmarks lists ownerID's bookmarked novels. Another viewer may read
// the list only when the owner's bookmarks are public.
func (s *LibraryService) ListBookmarks(ctx context.Context, ownerID, viewerID string) ([]models.Novel, error) {
	if ownerID != viewerID {
		owner, err := s.profileRepo.GetByID(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		if !owner.BookmarksPublic {
			return nil, &domain.ForbiddenError{Message: "this user's bookmarks are private"}
		}
	}

	return s.bookmarkRepo.ListNovels(ctx, ownerID)
}

// ToggleLike flips the user's like. The catalog count moves first so
// listings reflect the toggle immediately; the like row and the novel's
// counter then change in one transaction, with the cache delta reverted if
// the transaction fails and overwritten with the authoritative count when it
// commits.
func (s *LibraryService) ToggleLike(ctx context.Context, userID, novelID string) (*models.LikeState, error) {
	if err := s.requirePublished(ctx, novelID); err != nil {
		return nil, err
	}

	liked, err := s.likeRepo.Exists(ctx, userID, novelID)
	if err != nil {
		return nil, err
	}
	var delta int64 = 1
	if liked {
		delta = -1
	}
	s.cache.AdjustLikes(novelID, delta)

	state := &models.LikeState{}
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if liked {
			if err := s.likeRepo.Remove(txCtx, userID, novelID); err != nil {
				return err
			}
		} else {
			if err := s.likeRepo.Insert(txCtx, userID, novelID); err != nil {
				return err
			}
		}

		likes, err := s.likeRepo.AdjustNovelLikes(txCtx, novelID, delta)
		if err != nil {
			return err
		}

		state.Liked = !liked
		state.Likes = likes
		return nil
	})
	if err != nil {
		s.cache.AdjustLikes(novelID, -delta)
		return nil, err
	}

	s.cache.SetLikes(novelID, state.Likes)
	return state, nil
}

// GetLikeState reports whether the user likes the novel and its count
func (s *LibraryService) GetLikeState(ctx context.Context, userID, novelID string) (*models.LikeState, error) {
	novel, err := s.novelRepo.GetByID(ctx, novelID)
	if err != nil {
		return nil, err
	}

	liked, err := s.likeRepo.Exists(ctx, userID, novelID)
	if err != nil {
		return nil, err
	}

	return &models.LikeState{Liked: liked, Likes: novel.Likes}, nil
}

// Rate upserts the user's 1-5 score and recomputes the novel average in the
// same transaction.
func (s *LibraryService) Rate(ctx context.Context, userID, novelID string, req *services.RateRequest) (*models.RatingState, error) {
	if req.Score < config.MinRatingScore || req.Score > config.MaxRatingScore {
		return nil, fmt.Errorf("%w: score must be between %d and %d",
			domain.ErrValidation, config.MinRatingScore, config.MaxRatingScore)
	}
	if err := s.requirePublished(ctx, novelID); err != nil {
		return nil, err
	}

	state := &models.RatingState{Score: req.Score}
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		rating := &models.Rating{
			UserID:  userID,
			NovelID: novelID,
			Score:   req.Score,
		}
		if err := s.ratingRepo.Upsert(txCtx, rating); err != nil {
			return err
		}

		avg, count, err := s.ratingRepo.RecomputeNovelRating(txCtx, novelID)
		if err != nil {
			return err
		}
		state.RatingAvg = avg
		state.RatingCount = count
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.SetRating(novelID, state.RatingAvg, state.RatingCount)
	return state, nil
}

// GetRating returns the user's own score alongside the novel aggregate;
// Score is zero when the user hasn't rated.
func (s *LibraryService) GetRating(ctx context.Context, userID, novelID string) (*models.RatingState, error) {
	novel, err := s.novelRepo.GetByID(ctx, novelID)
	if err != nil {
		return nil, err
	}

	state := &models.RatingState{
		RatingAvg:   novel.RatingAvg,
		RatingCount: novel.RatingCount,
	}

	rating, err := s.ratingRepo.Get(ctx, userID, novelID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return state, nil
		}
		return nil, err
	}
	state.Score = rating.Score
	return state, nil
}

// SaveProgress upserts the user's last-read chapter for the novel
func (s *LibraryService) SaveProgress(ctx context.Context, userID, novelID string, req *services.ProgressRequest) error {
	chapter, err := s.chapterRepo.GetByID(ctx, req.ChapterID)
	if err != nil {
		return err
	}
	if chapter.NovelID != novelID {
		return fmt.Errorf("%w: chapter does not belong to this novel", domain.ErrValidation)
	}

	return s.progressRepo.Upsert(ctx, &models.ReadingProgress{
		UserID:    userID,
		NovelID:   novelID,
		ChapterID: req.ChapterID,
	})
}

// GetProgress returns where the user left off
func (s *LibraryService) GetProgress(ctx context.Context, userID, novelID string) (*models.ReadingProgress, error) {
	return s.progressRepo.Get(ctx, userID, novelID)
}

// requirePublished checks engagement targets: only published novels can be
// bookmarked, liked or rated.
func (s *LibraryService) requirePublished(ctx context.Context, novelID string) error {
	novel, err := s.novelRepo.GetByID(ctx, novelID)
	if err != nil {
		return err
	}
	if !novel.Published() {
		return fmt.Errorf("novel %s: %w", novelID, domain.ErrNotFound)
	}
	return nil
}
