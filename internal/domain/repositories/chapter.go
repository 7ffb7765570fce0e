package repositories

import (
	"context"

	"jread/internal/domain/models"
)

type ChapterRepository interface {
	// Create inserts the chapter with its assigned ChapterNumber. A
	// UNIQUE(novel_id, chapter_number) violation surfaces as
	// domain.ErrConflict so the caller can re-number and retry.
	Create(ctx context.Context, chapter *models.Chapter) error
	GetByID(ctx context.Context, id string) (*models.Chapter, error)
	// ListByNovel returns chapters ordered by chapter number ascending.
	ListByNovel(ctx context.Context, novelID string, publishedOnly bool) ([]models.Chapter, error)
	// MaxChapterNumber returns 0 for a novel with no chapters.
	MaxChapterNumber(ctx context.Context, novelID string) (int, error)
	Update(ctx context.Context, chapter *models.Chapter) error
	SetPublished(ctx context.Context, id string, published bool) error
	IncrementViews(ctx context.Context, id string) (int64, error)
	Delete(ctx context.Context, id string) error
}
