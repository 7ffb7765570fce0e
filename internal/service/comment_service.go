package service

import (
	"context"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"jread/internal/authz"
	"jread/internal/config"
	"jread/internal/domain"
	"jread/internal/domain/models"
	"jread/internal/domain/repositories"
	"jread/internal/domain/services"
)

// CommentService implements the CommentService interface
type CommentService struct {
	commentRepo repositories.CommentRepository
	chapterRepo repositories.ChapterRepository
	profileRepo repositories.ProfileRepository
	registry    *authz.Registry
	logger      *slog.Logger
}

// NewCommentService creates a new comment service
func NewCommentService(
	commentRepo repositories.CommentRepository,
	chapterRepo repositories.ChapterRepository,
	profileRepo repositories.ProfileRepository,
	registry *authz.Registry,
	logger *slog.Logger,
) services.CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		chapterRepo: chapterRepo,
		profileRepo: profileRepo,
		registry:    registry,
		logger:      logger,
	}
}

// CreateComment posts on a published chapter. Replies nest one level deep:
// the parent must be a top-level comment on the same chapter.
func (s *CommentService) CreateComment(ctx context.Context, userID, chapterID string, req *services.CreateCommentRequest) (*models.Comment, error) {
	err := validation.Validate(req.Content,
		validation.Required,
		validation.Length(1, config.MaxCommentLength),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: content: %v", domain.ErrValidation, err)
	}

	chapter, err := s.chapterRepo.GetByID(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	if !chapter.IsPublished {
		return nil, fmt.Errorf("chapter %s: %w", chapterID, domain.ErrNotFound)
	}

	if req.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.ChapterID != chapterID {
			return nil, fmt.Errorf("%w: parent comment belongs to another chapter", domain.ErrValidation)
		}
		if parent.ParentID != nil {
			return nil, fmt.Errorf("%w: replies cannot be nested further", domain.ErrValidation)
		}
	}

	comment := &models.Comment{
		ChapterID: chapterID,
		UserID:    userID,
		ParentID:  req.ParentID,
		Content:   req.Content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.logger.Info("comment posted", "comment_id", comment.ID, "chapter_id", chapterID)
	return comment, nil
}

// ListComments returns the chapter's top-level comments newest first, each
// with its replies attached.
func (s *CommentService) ListComments(ctx context.Context, chapterID string) ([]models.Comment, error) {
	if _, err := s.chapterRepo.GetByID(ctx, chapterID); err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListTopLevel(ctx, chapterID)
	if err != nil {
		return nil, err
	}

	for i := range comments {
		replies, err := s.commentRepo.ListReplies(ctx, comments[i].ID)
		if err != nil {
			return nil, err
		}
		comments[i].Replies = make([]*models.Comment, len(replies))
		for j := range replies {
			comments[i].Replies[j] = &replies[j]
		}
	}

	return comments, nil
}

// DeleteComment removes a comment and its replies. Allowed for the author
// of the comment and for moderators.
func (s *CommentService) DeleteComment(ctx context.Context, commentID, actorID string) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}

	if comment.UserID != actorID {
		actor, err := s.profileRepo.GetByID(ctx, actorID)
		if err != nil {
			return err
		}
		if !s.registry.Can(actor.Role, authz.CapModerate) {
			return &domain.ForbiddenError{Message: "you cannot delete this comment"}
		}
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return err
	}

	s.logger.Info("comment deleted", "comment_id", commentID, "actor_id", actorID)
	return nil
}
