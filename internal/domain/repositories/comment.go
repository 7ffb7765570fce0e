package repositories

import (
	"context"

	"jread/internal/domain/models"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	// ListTopLevel returns a chapter's root comments, newest first.
	// Replies are fetched separately per parent.
	ListTopLevel(ctx context.Context, chapterID string) ([]models.Comment, error)
	ListReplies(ctx context.Context, parentID string) ([]models.Comment, error)
	Delete(ctx context.Context, id string) error
}
