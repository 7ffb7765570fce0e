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

// PostgresChapterRepository implements the ChapterRepository interface
type PostgresChapterRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewChapterRepository creates a new chapter repository
func NewChapterRepository(config *RepositoryConfig) repositories.ChapterRepository {
	return &PostgresChapterRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

const chapterColumns = `id, novel_id, chapter_number, title, content, is_published, views, likes, created_at, updated_at`

func scanChapter(row interface{ Scan(...interface{}) error }, c *models.Chapter) error {
	return row.Scan(
		&c.ID,
		&c.NovelID,
		&c.ChapterNumber,
		&c.Title,
		&c.Content,
		&c.IsPublished,
		&c.Views,
		&c.Likes,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
}

// Create inserts a chapter. A duplicate (novel_id, chapter_number) maps to a
// ConflictError so the numbering service can retry with a fresh number.
func (r *PostgresChapterRepository) Create(ctx context.Context, chapter *models.Chapter) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (novel_id, chapter_number, title, content, is_published)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, views, likes, created_at, updated_at
	`, r.tables.Chapters)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		chapter.NovelID,
		chapter.ChapterNumber,
		chapter.Title,
		chapter.Content,
		chapter.IsPublished,
	).Scan(&chapter.ID, &chapter.Views, &chapter.Likes, &chapter.CreatedAt, &chapter.UpdatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("chapter number %d already exists in this novel", chapter.ChapterNumber),
				ResourceType: "chapter",
			}
		}
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("novel %s: %w", chapter.NovelID, domain.ErrNotFound)
		}
		return fmt.Errorf("create chapter: %w", err)
	}

	return nil
}

// GetByID retrieves a chapter by ID
func (r *PostgresChapterRepository) GetByID(ctx context.Context, id string) (*models.Chapter, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, chapterColumns, r.tables.Chapters)

	var c models.Chapter
	executor := GetExecutor(ctx, r.pool)
	if err := scanChapter(executor.QueryRow(ctx, query, id), &c); err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("chapter %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get chapter: %w", err)
	}

	return &c, nil
}

// ListByNovel returns chapters ordered by chapter number
func (r *PostgresChapterRepository) ListByNovel(ctx context.Context, novelID string, publishedOnly bool) ([]models.Chapter, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE novel_id = $1`, chapterColumns, r.tables.Chapters)
	if publishedOnly {
		query += ` AND is_published = TRUE`
	}
	query += ` ORDER BY chapter_number ASC`

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, novelID)
	if err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	defer rows.Close()

	var chapters []models.Chapter
	for rows.Next() {
		var c models.Chapter
		if err := scanChapter(rows, &c); err != nil {
			return nil, fmt.Errorf("scan chapter: %w", err)
		}
		chapters = append(chapters, c)
	}

	return chapters, rows.Err()
}

// MaxChapterNumber returns the highest chapter number in a novel, 0 if none
func (r *PostgresChapterRepository) MaxChapterNumber(ctx context.Context, novelID string) (int, error) {
	query := fmt.Sprintf(`SELECT COALESCE(MAX(chapter_number), 0) FROM %s WHERE novel_id = $1`, r.tables.Chapters)

	var max int
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, novelID).Scan(&max); err != nil {
		return 0, fmt.Errorf("max chapter number: %w", err)
	}

	return max, nil
}

// Update persists title and content edits
func (r *PostgresChapterRepository) Update(ctx context.Context, chapter *models.Chapter) error {
	query := fmt.Sprintf(`
		UPDATE %s SET title = $2, content = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, r.tables.Chapters)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, chapter.ID, chapter.Title, chapter.Content).Scan(&chapter.UpdatedAt)
	if err != nil {
		if IsPgNoRowsError(err) {
			return fmt.Errorf("chapter %s: %w", chapter.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update chapter: %w", err)
	}

	return nil
}

// SetPublished flips chapter visibility
func (r *PostgresChapterRepository) SetPublished(ctx context.Context, id string, published bool) error {
	query := fmt.Sprintf(`UPDATE %s SET is_published = $2, updated_at = NOW() WHERE id = $1`, r.tables.Chapters)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id, published)
	if err != nil {
		return fmt.Errorf("set chapter published: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("chapter %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// IncrementViews bumps the view counter and returns the new value
func (r *PostgresChapterRepository) IncrementViews(ctx context.Context, id string) (int64, error) {
	query := fmt.Sprintf(`UPDATE %s SET views = views + 1 WHERE id = $1 RETURNING views`, r.tables.Chapters)

	var views int64
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, id).Scan(&views); err != nil {
		if IsPgNoRowsError(err) {
			return 0, fmt.Errorf("chapter %s: %w", id, domain.ErrNotFound)
		}
		return 0, fmt.Errorf("increment chapter views: %w", err)
	}

	return views, nil
}

// Delete removes a chapter; its comments cascade
func (r *PostgresChapterRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Chapters)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete chapter: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("chapter %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
