package repositories

import (
	"context"

	"jread/internal/domain/models"
)

type ChangelogRepository interface {
	// List returns changelogs newest release first.
	List(ctx context.Context) ([]models.Changelog, error)
	Create(ctx context.Context, changelog *models.Changelog) error
}
