package repositories

import (
	"context"

	"jread/internal/domain/models"
)

// ProfileRepository persists user profiles. Profile IDs are the Supabase
// auth user IDs, so Create never generates one.
type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	GetByUsername(ctx context.Context, username string) (*models.Profile, error)
	List(ctx context.Context) ([]models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
	UpdateRole(ctx context.Context, id string, role models.Role) error
	// Delete removes the profile row. Owned novels, chapters and engagement
	// rows cascade through foreign keys.
	Delete(ctx context.Context, id string) error
}
