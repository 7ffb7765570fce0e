package repositories

import (
	"context"

	"jread/internal/domain/models"
)

// BookmarkRepository upserts/removes (user, novel) bookmark rows.
type BookmarkRepository interface {
	Set(ctx context.Context, userID, novelID string) error
	Remove(ctx context.Context, userID, novelID string) error
	Exists(ctx context.Context, userID, novelID string) (bool, error)
	// ListNovels returns the bookmarked novels, most recently bookmarked
	// first.
	ListNovels(ctx context.Context, userID string) ([]models.Novel, error)
}

// LikeRepository stores per-user likes. The novel's like counter is
// maintained by the service inside the same transaction as the row change.
type LikeRepository interface {
	Exists(ctx context.Context, userID, novelID string) (bool, error)
	Insert(ctx context.Context, userID, novelID string) error
	Remove(ctx context.Context, userID, novelID string) error
	// AdjustNovelLikes applies delta to the novel's counter and returns the
	// new value.
	AdjustNovelLikes(ctx context.Context, novelID string, delta int64) (int64, error)
}

// RatingRepository upserts 1-5 scores and recomputes the novel average.
type RatingRepository interface {
	Upsert(ctx context.Context, rating *models.Rating) error
	Get(ctx context.Context, userID, novelID string) (*models.Rating, error)
	// RecomputeNovelRating recalculates and stores the novel's average and
	// count from the ratings table, returning both.
	RecomputeNovelRating(ctx context.Context, novelID string) (avg float64, count int64, err error)
}

// ProgressRepository remembers the last read chapter per (user, novel).
type ProgressRepository interface {
	Upsert(ctx context.Context, progress *models.ReadingProgress) error
	Get(ctx context.Context, userID, novelID string) (*models.ReadingProgress, error)
}
