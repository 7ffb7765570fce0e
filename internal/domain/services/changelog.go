package services

import (
	"context"

	"jread/internal/domain/models"
)

// CreateChangelogRequest publishes a release's changelog.
type CreateChangelogRequest struct {
	Version string                  `json:"version"`
	Entries []models.ChangelogEntry `json:"entries"`
}

// ChangelogService exposes the platform's release notes.
type ChangelogService interface {
	// List returns all changelogs, newest release first.
	List(ctx context.Context) ([]models.Changelog, error)

	// Create publishes a new changelog. Admin-only.
	Create(ctx context.Context, actorID string, req *CreateChangelogRequest) (*models.Changelog, error)
}
