package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"jread/internal/domain"
	"jread/internal/domain/models"
	"jread/internal/domain/repositories"
)

// PostgresCommentRepository implements the CommentRepository interface
type PostgresCommentRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(config *RepositoryConfig) repositories.CommentRepository {
	return &PostgresCommentRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a comment or reply
func (r *PostgresCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (chapter_id, user_id, parent_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, r.tables.Comments)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		comment.ChapterID,
		comment.UserID,
		comment.ParentID,
		comment.Content,
	).Scan(&comment.ID, &comment.CreatedAt)

	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("chapter or parent comment: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create comment: %w", err)
	}

	return nil
}

// GetByID retrieves a single comment (used for delete authorization)
func (r *PostgresCommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	query := fmt.Sprintf(`
		SELECT c.id, c.chapter_id, c.user_id, p.username, c.parent_id, c.content, c.created_at
		FROM %s c JOIN %s p ON p.id = c.user_id
		WHERE c.id = $1
	`, r.tables.Comments, r.tables.Profiles)

	var c models.Comment
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.ChapterID, &c.UserID, &c.Username, &c.ParentID, &c.Content, &c.CreatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("comment %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}

	return &c, nil
}

// ListTopLevel returns a chapter's root comments, newest first
func (r *PostgresCommentRepository) ListTopLevel(ctx context.Context, chapterID string) ([]models.Comment, error) {
	query := fmt.Sprintf(`
		SELECT c.id, c.chapter_id, c.user_id, p.username, c.parent_id, c.content, c.created_at
		FROM %s c JOIN %s p ON p.id = c.user_id
		WHERE c.chapter_id = $1 AND c.parent_id IS NULL
		ORDER BY c.created_at DESC
	`, r.tables.Comments, r.tables.Profiles)

	return r.list(ctx, query, chapterID)
}

// ListReplies returns direct replies to a comment, oldest first
func (r *PostgresCommentRepository) ListReplies(ctx context.Context, parentID string) ([]models.Comment, error) {
	query := fmt.Sprintf(`
		SELECT c.id, c.chapter_id, c.user_id, p.username, c.parent_id, c.content, c.created_at
		FROM %s c JOIN %s p ON p.id = c.user_id
		WHERE c.parent_id = $1
		ORDER BY c.created_at ASC
	`, r.tables.Comments, r.tables.Profiles)

	return r.list(ctx, query, parentID)
}

func (r *PostgresCommentRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Comment, error) {
	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.ChapterID, &c.UserID, &c.Username, &c.ParentID, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}

	return comments, rows.Err()
}

// Delete removes a comment and, via cascade, its replies
func (r *PostgresCommentRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Comments)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("comment %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
