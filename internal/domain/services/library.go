package services

import (
	"context"

	"jread/internal/domain/models"
)

// RateRequest submits a 1-5 star score for a novel.
type RateRequest struct {
	Score int `json:"score"`
}

// ProgressRequest records the last chapter a reader opened in a novel.
type ProgressRequest struct {
	ChapterID string `json:"chapter_id"`
}

// LibraryService covers reader engagement: bookmarks, likes, ratings and
// reading progress.
type LibraryService interface {
	// ToggleBookmark flips the (user, novel) bookmark and reports the new
	// state.
	ToggleBookmark(ctx context.Context, userID, novelID string) (bookmarked bool, err error)

	// ListBookmarks lists ownerID's bookmarked novels. viewerID may read
	// another user's list only when that user's bookmarks are public.
	ListBookmarks(ctx context.Context, ownerID, viewerID string) ([]models.Novel, error)

	// ToggleLike flips the user's like and returns the authoritative state
	// so optimistic client counters can reconcile.
	ToggleLike(ctx context.Context, userID, novelID string) (*models.LikeState, error)

	// GetLikeState reports whether the user likes the novel and its count.
	GetLikeState(ctx context.Context, userID, novelID string) (*models.LikeState, error)

	// Rate upserts the score and returns the recomputed novel average.
	Rate(ctx context.Context, userID, novelID string, req *RateRequest) (*models.RatingState, error)

	// GetRating returns the user's own score for the novel, nil score if
	// unrated.
	GetRating(ctx context.Context, userID, novelID string) (*models.RatingState, error)

	// SaveProgress upserts the user's last-read chapter for the novel.
	SaveProgress(ctx context.Context, userID, novelID string, req *ProgressRequest) error

	// GetProgress returns where the user left off, ErrNotFound if they
	// haven't started the novel.
	GetProgress(ctx context.Context, userID, novelID string) (*models.ReadingProgress, error)
}
