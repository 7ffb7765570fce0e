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

// PostgresProfileRepository implements the ProfileRepository interface
type PostgresProfileRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(config *RepositoryConfig) repositories.ProfileRepository {
	return &PostgresProfileRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

const profileColumns = `id, username, email, role, pen_name, bio, avatar_url, bookmarks_public, activity_public, created_at, updated_at`

func scanProfile(row interface{ Scan(...interface{}) error }, p *models.Profile) error {
	return row.Scan(
		&p.ID,
		&p.Username,
		&p.Email,
		&p.Role,
		&p.PenName,
		&p.Bio,
		&p.AvatarURL,
		&p.BookmarksPublic,
		&p.ActivityPublic,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

// Create inserts a profile row. The ID comes from Supabase auth, not from the
// database.
func (r *PostgresProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, username, email, role, pen_name, bio, avatar_url, bookmarks_public, activity_public)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`, r.tables.Profiles)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		profile.ID,
		profile.Username,
		profile.Email,
		profile.Role,
		profile.PenName,
		profile.Bio,
		profile.AvatarURL,
		profile.BookmarksPublic,
		profile.ActivityPublic,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("username '%s' is already taken", profile.Username),
				ResourceType: "profile",
				ResourceID:   profile.ID,
			}
		}
		return fmt.Errorf("create profile: %w", err)
	}

	return nil
}

// GetByID retrieves a profile by its auth user ID
func (r *PostgresProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, profileColumns, r.tables.Profiles)

	var p models.Profile
	executor := GetExecutor(ctx, r.pool)
	if err := scanProfile(executor.QueryRow(ctx, query, id), &p); err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("profile %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	return &p, nil
}

// GetByUsername retrieves a profile by username
func (r *PostgresProfileRepository) GetByUsername(ctx context.Context, username string) (*models.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE username = $1`, profileColumns, r.tables.Profiles)

	var p models.Profile
	executor := GetExecutor(ctx, r.pool)
	if err := scanProfile(executor.QueryRow(ctx, query, username), &p); err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("profile '%s': %w", username, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get profile by username: %w", err)
	}

	return &p, nil
}

// List returns all profiles, newest first. Used by the admin panel.
func (r *PostgresProfileRepository) List(ctx context.Context) ([]models.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at DESC`, profileColumns, r.tables.Profiles)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		var p models.Profile
		if err := scanProfile(rows, &p); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}

	return profiles, rows.Err()
}

// Update persists profile fields editable from the settings page
func (r *PostgresProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET username = $2, pen_name = $3, bio = $4, avatar_url = $5,
		    bookmarks_public = $6, activity_public = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, r.tables.Profiles)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		profile.ID,
		profile.Username,
		profile.PenName,
		profile.Bio,
		profile.AvatarURL,
		profile.BookmarksPublic,
		profile.ActivityPublic,
	).Scan(&profile.UpdatedAt)

	if err != nil {
		if IsPgNoRowsError(err) {
			return fmt.Errorf("profile %s: %w", profile.ID, domain.ErrNotFound)
		}
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("username '%s' is already taken", profile.Username),
				ResourceType: "profile",
				ResourceID:   profile.ID,
			}
		}
		return fmt.Errorf("update profile: %w", err)
	}

	return nil
}

// UpdateRole sets a profile's role. Matrix checks happen in the service.
func (r *PostgresProfileRepository) UpdateRole(ctx context.Context, id string, role models.Role) error {
	query := fmt.Sprintf(`UPDATE %s SET role = $2, updated_at = NOW() WHERE id = $1`, r.tables.Profiles)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id, role)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("profile %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// Delete removes the profile row; owned rows cascade via foreign keys
func (r *PostgresProfileRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Profiles)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("profile %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
