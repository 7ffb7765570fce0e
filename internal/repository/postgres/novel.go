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

// PostgresNovelRepository implements the NovelRepository interface
type PostgresNovelRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewNovelRepository creates a new novel repository
func NewNovelRepository(config *RepositoryConfig) repositories.NovelRepository {
	return &PostgresNovelRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

const novelColumns = `id, author_id, author_name, title, synopsis, genre, tags, cover_url, language, status, views, likes, rating_avg, rating_count, created_at, updated_at`

func scanNovel(row interface{ Scan(...interface{}) error }, n *models.Novel) error {
	return row.Scan(
		&n.ID,
		&n.AuthorID,
		&n.AuthorName,
		&n.Title,
		&n.Synopsis,
		&n.Genre,
		&n.Tags,
		&n.CoverURL,
		&n.Language,
		&n.Status,
		&n.Views,
		&n.Likes,
		&n.RatingAvg,
		&n.RatingCount,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
}

// Create inserts a new novel
func (r *PostgresNovelRepository) Create(ctx context.Context, novel *models.Novel) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (author_id, author_name, title, synopsis, genre, tags, cover_url, language, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, views, likes, rating_avg, rating_count, created_at, updated_at
	`, r.tables.Novels)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		novel.AuthorID,
		novel.AuthorName,
		novel.Title,
		novel.Synopsis,
		novel.Genre,
		novel.Tags,
		novel.CoverURL,
		novel.Language,
		novel.Status,
	).Scan(&novel.ID, &novel.Views, &novel.Likes, &novel.RatingAvg, &novel.RatingCount, &novel.CreatedAt, &novel.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create novel: %w", err)
	}

	return nil
}

// GetByID retrieves a novel regardless of status; visibility is decided by
// the service.
func (r *PostgresNovelRepository) GetByID(ctx context.Context, id string) (*models.Novel, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, novelColumns, r.tables.Novels)

	var n models.Novel
	executor := GetExecutor(ctx, r.pool)
	if err := scanNovel(executor.QueryRow(ctx, query, id), &n); err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("novel %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get novel: %w", err)
	}

	return &n, nil
}

// ListPublished returns published novels, newest first
func (r *PostgresNovelRepository) ListPublished(ctx context.Context) ([]models.Novel, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE status = $1 ORDER BY created_at DESC
	`, novelColumns, r.tables.Novels)

	return r.list(ctx, query, models.NovelStatusPublished)
}

// ListByAuthor returns all of an author's novels including drafts
func (r *PostgresNovelRepository) ListByAuthor(ctx context.Context, authorID string) ([]models.Novel, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE author_id = $1 ORDER BY created_at DESC
	`, novelColumns, r.tables.Novels)

	return r.list(ctx, query, authorID)
}

func (r *PostgresNovelRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Novel, error) {
	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list novels: %w", err)
	}
	defer rows.Close()

	var novels []models.Novel
	for rows.Next() {
		var n models.Novel
		if err := scanNovel(rows, &n); err != nil {
			return nil, fmt.Errorf("scan novel: %w", err)
		}
		novels = append(novels, n)
	}

	return novels, rows.Err()
}

// Update persists metadata edits (title, synopsis, genre, tags, cover, language)
func (r *PostgresNovelRepository) Update(ctx context.Context, novel *models.Novel) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $2, synopsis = $3, genre = $4, tags = $5, cover_url = $6,
		    language = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, r.tables.Novels)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		novel.ID,
		novel.Title,
		novel.Synopsis,
		novel.Genre,
		novel.Tags,
		novel.CoverURL,
		novel.Language,
	).Scan(&novel.UpdatedAt)

	if err != nil {
		if IsPgNoRowsError(err) {
			return fmt.Errorf("novel %s: %w", novel.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update novel: %w", err)
	}

	return nil
}

// UpdateStatus flips a novel between DRAFT and PUBLISHED
func (r *PostgresNovelRepository) UpdateStatus(ctx context.Context, id string, status models.NovelStatus) error {
	query := fmt.Sprintf(`UPDATE %s SET status = $2, updated_at = NOW() WHERE id = $1`, r.tables.Novels)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("update novel status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("novel %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// UpdateAuthorName refreshes the denormalized author name on all of the
// author's novels
func (r *PostgresNovelRepository) UpdateAuthorName(ctx context.Context, authorID, authorName string) error {
	query := fmt.Sprintf(`UPDATE %s SET author_name = $2 WHERE author_id = $1`, r.tables.Novels)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, authorID, authorName); err != nil {
		return fmt.Errorf("update author name: %w", err)
	}

	return nil
}

// IncrementViews bumps the view counter and returns the new value
func (r *PostgresNovelRepository) IncrementViews(ctx context.Context, id string) (int64, error) {
	query := fmt.Sprintf(`UPDATE %s SET views = views + 1 WHERE id = $1 RETURNING views`, r.tables.Novels)

	var views int64
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, id).Scan(&views); err != nil {
		if IsPgNoRowsError(err) {
			return 0, fmt.Errorf("novel %s: %w", id, domain.ErrNotFound)
		}
		return 0, fmt.Errorf("increment novel views: %w", err)
	}

	return views, nil
}

// Delete removes the novel; chapters and engagement rows cascade
func (r *PostgresNovelRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Novels)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete novel: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("novel %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
