package repositories

import (
	"context"

	"jread/internal/domain/models"
)

type NovelRepository interface {
	Create(ctx context.Context, novel *models.Novel) error
	GetByID(ctx context.Context, id string) (*models.Novel, error)
	// ListPublished returns published novels in creation order (newest
	// first); this is the catalog cache's load source.
	ListPublished(ctx context.Context) ([]models.Novel, error)
	ListByAuthor(ctx context.Context, authorID string) ([]models.Novel, error)
	Update(ctx context.Context, novel *models.Novel) error
	UpdateStatus(ctx context.Context, id string, status models.NovelStatus) error
	// UpdateAuthorName refreshes the denormalized author name across the
	// author's novels after a profile update.
	UpdateAuthorName(ctx context.Context, authorID, authorName string) error
	IncrementViews(ctx context.Context, id string) (int64, error)
	Delete(ctx context.Context, id string) error
}
