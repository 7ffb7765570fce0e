package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"jread/internal/domain/models"
	"jread/internal/domain/repositories"
)

// PostgresChangelogRepository implements the ChangelogRepository interface.
// Entries are stored as a JSONB column to keep each release's lines ordered.
type PostgresChangelogRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewChangelogRepository creates a new changelog repository
func NewChangelogRepository(config *RepositoryConfig) repositories.ChangelogRepository {
	return &PostgresChangelogRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// List returns changelogs, newest release first
func (r *PostgresChangelogRepository) List(ctx context.Context) ([]models.Changelog, error) {
	query := fmt.Sprintf(`
		SELECT id, version, released_on, entries
		FROM %s ORDER BY released_on DESC
	`, r.tables.Changelogs)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list changelogs: %w", err)
	}
	defer rows.Close()

	var changelogs []models.Changelog
	for rows.Next() {
		var c models.Changelog
		var entries []byte
		if err := rows.Scan(&c.ID, &c.Version, &c.ReleasedOn, &entries); err != nil {
			return nil, fmt.Errorf("scan changelog: %w", err)
		}
		if err := json.Unmarshal(entries, &c.Entries); err != nil {
			return nil, fmt.Errorf("decode changelog entries: %w", err)
		}
		changelogs = append(changelogs, c)
	}

	return changelogs, rows.Err()
}

// Create inserts a changelog release (used by the seeder)
func (r *PostgresChangelogRepository) Create(ctx context.Context, changelog *models.Changelog) error {
	entries, err := json.Marshal(changelog.Entries)
	if err != nil {
		return fmt.Errorf("encode changelog entries: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (version, released_on, entries) VALUES ($1, $2, $3)
		RETURNING id
	`, r.tables.Changelogs)

	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, changelog.Version, changelog.ReleasedOn, entries).Scan(&changelog.ID); err != nil {
		return fmt.Errorf("create changelog: %w", err)
	}

	return nil
}
