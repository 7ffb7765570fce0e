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

// The four engagement repositories all operate on small
// UNIQUE(user_id, novel_id) join tables and share the same shape, so they
// live in one file.

// ---- Bookmarks ----

type PostgresBookmarkRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

func NewBookmarkRepository(config *RepositoryConfig) repositories.BookmarkRepository {
	return &PostgresBookmarkRepository{pool: config.Pool, tables: config.Tables, logger: config.Logger}
}

// Set upserts the bookmark; re-bookmarking an already bookmarked novel is a
// no-op.
func (r *PostgresBookmarkRepository) Set(ctx context.Context, userID, novelID string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, novel_id) VALUES ($1, $2)
		ON CONFLICT (user_id, novel_id) DO NOTHING
	`, r.tables.Bookmarks)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, userID, novelID); err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("novel %s: %w", novelID, domain.ErrNotFound)
		}
		return fmt.Errorf("set bookmark: %w", err)
	}
	return nil
}

func (r *PostgresBookmarkRepository) Remove(ctx context.Context, userID, novelID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1 AND novel_id = $2`, r.tables.Bookmarks)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, userID, novelID); err != nil {
		return fmt.Errorf("remove bookmark: %w", err)
	}
	return nil
}

func (r *PostgresBookmarkRepository) Exists(ctx context.Context, userID, novelID string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE user_id = $1 AND novel_id = $2)`, r.tables.Bookmarks)

	var exists bool
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, userID, novelID).Scan(&exists); err != nil {
		return false, fmt.Errorf("bookmark exists: %w", err)
	}
	return exists, nil
}

// ListNovels returns the user's bookmarked novels, most recent bookmark first
func (r *PostgresBookmarkRepository) ListNovels(ctx context.Context, userID string) ([]models.Novel, error) {
	query := fmt.Sprintf(`
		SELECT n.id, n.author_id, n.author_name, n.title, n.synopsis, n.genre, n.tags,
		       n.cover_url, n.language, n.status, n.views, n.likes, n.rating_avg,
		       n.rating_count, n.created_at, n.updated_at
		FROM %s b JOIN %s n ON n.id = b.novel_id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC
	`, r.tables.Bookmarks, r.tables.Novels)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookmarked novels: %w", err)
	}
	defer rows.Close()

	var novels []models.Novel
	for rows.Next() {
		var n models.Novel
		if err := scanNovel(rows, &n); err != nil {
			return nil, fmt.Errorf("scan bookmarked novel: %w", err)
		}
		novels = append(novels, n)
	}

	return novels, rows.Err()
}

// ---- Likes ----

type PostgresLikeRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

func NewLikeRepository(config *RepositoryConfig) repositories.LikeRepository {
	return &PostgresLikeRepository{pool: config.Pool, tables: config.Tables, logger: config.Logger}
}

func (r *PostgresLikeRepository) Exists(ctx context.Context, userID, novelID string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE user_id = $1 AND novel_id = $2)`, r.tables.Likes)

	var exists bool
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, userID, novelID).Scan(&exists); err != nil {
		return false, fmt.Errorf("like exists: %w", err)
	}
	return exists, nil
}

func (r *PostgresLikeRepository) Insert(ctx context.Context, userID, novelID string) error {
	query := fmt.Sprintf(`INSERT INTO %s (user_id, novel_id) VALUES ($1, $2)`, r.tables.Likes)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, userID, novelID); err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("like: %w", domain.ErrConflict)
		}
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("novel %s: %w", novelID, domain.ErrNotFound)
		}
		return fmt.Errorf("insert like: %w", err)
	}
	return nil
}

func (r *PostgresLikeRepository) Remove(ctx context.Context, userID, novelID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1 AND novel_id = $2`, r.tables.Likes)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, userID, novelID); err != nil {
		return fmt.Errorf("remove like: %w", err)
	}
	return nil
}

// AdjustNovelLikes applies delta to the novel counter and returns the new
// value. Called inside the toggle transaction so counter and rows stay
// consistent.
func (r *PostgresLikeRepository) AdjustNovelLikes(ctx context.Context, novelID string, delta int64) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET likes = GREATEST(likes + $2, 0) WHERE id = $1 RETURNING likes
	`, r.tables.Novels)

	var likes int64
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, novelID, delta).Scan(&likes); err != nil {
		if IsPgNoRowsError(err) {
			return 0, fmt.Errorf("novel %s: %w", novelID, domain.ErrNotFound)
		}
		return 0, fmt.Errorf("adjust novel likes: %w", err)
	}
	return likes, nil
}

// ---- Ratings ----

type PostgresRatingRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

func NewRatingRepository(config *RepositoryConfig) repositories.RatingRepository {
	return &PostgresRatingRepository{pool: config.Pool, tables: config.Tables, logger: config.Logger}
}

// Upsert inserts or replaces the user's score for a novel
func (r *PostgresRatingRepository) Upsert(ctx context.Context, rating *models.Rating) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, novel_id, score) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, novel_id)
		DO UPDATE SET score = EXCLUDED.score, updated_at = NOW()
		RETURNING created_at, updated_at
	`, r.tables.Ratings)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, rating.UserID, rating.NovelID, rating.Score).
		Scan(&rating.CreatedAt, &rating.UpdatedAt)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("novel %s: %w", rating.NovelID, domain.ErrNotFound)
		}
		return fmt.Errorf("upsert rating: %w", err)
	}
	return nil
}

func (r *PostgresRatingRepository) Get(ctx context.Context, userID, novelID string) (*models.Rating, error) {
	query := fmt.Sprintf(`
		SELECT user_id, novel_id, score, created_at, updated_at
		FROM %s WHERE user_id = $1 AND novel_id = $2
	`, r.tables.Ratings)

	var rating models.Rating
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, userID, novelID).Scan(
		&rating.UserID, &rating.NovelID, &rating.Score, &rating.CreatedAt, &rating.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("rating: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get rating: %w", err)
	}
	return &rating, nil
}

// RecomputeNovelRating derives the average from the ratings table and stores
// it on the novel row, returning the stored values
func (r *PostgresRatingRepository) RecomputeNovelRating(ctx context.Context, novelID string) (float64, int64, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET
			rating_avg = COALESCE((SELECT AVG(score) FROM %s WHERE novel_id = $1), 0),
			rating_count = (SELECT COUNT(*) FROM %s WHERE novel_id = $1)
		WHERE id = $1
		RETURNING rating_avg, rating_count
	`, r.tables.Novels, r.tables.Ratings, r.tables.Ratings)

	var avg float64
	var count int64
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, novelID).Scan(&avg, &count); err != nil {
		if IsPgNoRowsError(err) {
			return 0, 0, fmt.Errorf("novel %s: %w", novelID, domain.ErrNotFound)
		}
		return 0, 0, fmt.Errorf("recompute novel rating: %w", err)
	}
	return avg, count, nil
}

// ---- Reading progress ----

type PostgresProgressRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

func NewProgressRepository(config *RepositoryConfig) repositories.ProgressRepository {
	return &PostgresProgressRepository{pool: config.Pool, tables: config.Tables, logger: config.Logger}
}

func (r *PostgresProgressRepository) Upsert(ctx context.Context, progress *models.ReadingProgress) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, novel_id, chapter_id) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, novel_id)
		DO UPDATE SET chapter_id = EXCLUDED.chapter_id, updated_at = NOW()
		RETURNING updated_at
	`, r.tables.ReadingProgress)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, progress.UserID, progress.NovelID, progress.ChapterID).
		Scan(&progress.UpdatedAt)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("novel or chapter: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("upsert reading progress: %w", err)
	}
	return nil
}

func (r *PostgresProgressRepository) Get(ctx context.Context, userID, novelID string) (*models.ReadingProgress, error) {
	query := fmt.Sprintf(`
		SELECT user_id, novel_id, chapter_id, updated_at
		FROM %s WHERE user_id = $1 AND novel_id = $2
	`, r.tables.ReadingProgress)

	var progress models.ReadingProgress
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, userID, novelID).Scan(
		&progress.UserID, &progress.NovelID, &progress.ChapterID, &progress.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("reading progress: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get reading progress: %w", err)
	}
	return &progress, nil
}
