package services

import (
	"context"

	"jread/internal/domain/models"
)

// CreateCommentRequest posts a comment on a chapter. ParentID nests it as a
// reply.
type CreateCommentRequest struct {
	Content  string  `json:"content"`
	ParentID *string `json:"parent_id"`
}

// CommentService defines chapter comment threads.
type CommentService interface {
	// CreateComment posts on a published chapter. Replies must target a
	// top-level comment on the same chapter.
	CreateComment(ctx context.Context, userID, chapterID string, req *CreateCommentRequest) (*models.Comment, error)

	// ListComments returns the chapter's top-level comments, newest first,
	// with their replies attached oldest first.
	ListComments(ctx context.Context, chapterID string) ([]models.Comment, error)

	// DeleteComment removes a comment (and its replies). Allowed for the
	// comment's author and for moderators.
	DeleteComment(ctx context.Context, commentID, actorID string) error
}
