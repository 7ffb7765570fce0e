package services

import (
	"context"

	"jread/internal/catalog"
	"jread/internal/domain/models"
	"jread/internal/httputil"
)

// CreateNovelRequest creates a novel in DRAFT status.
type CreateNovelRequest struct {
	Title    string   `json:"title"`
	Synopsis string   `json:"synopsis"`
	Genre    string   `json:"genre"`
	Tags     []string `json:"tags"`
	Language string   `json:"language"`
}

// UpdateNovelRequest is a partial metadata update for a novel.
type UpdateNovelRequest struct {
	Title    *string                 `json:"title"`
	Synopsis *string                 `json:"synopsis"`
	Genre    *string                 `json:"genre"`
	Tags     []string                `json:"tags"`
	Language *string                 `json:"language"`
	CoverURL httputil.OptionalString `json:"cover_url"`
}

// NovelService defines the business logic for novels: the public catalog for
// readers and CRUD plus publishing for authors.
type NovelService interface {
	// Browse lists published novels from the in-memory catalog, filtered,
	// sorted and searched per the query.
	Browse(q catalog.Query) []models.Novel

	// Genres returns the distinct genres present in the catalog.
	Genres() []string

	// GetNovel returns one novel. Drafts are only visible to their author
	// (or a moderator).
	GetNovel(ctx context.Context, novelID, viewerID string) (*models.Novel, error)

	// RecordNovelView bumps the novel's view counter and returns the new
	// value.
	RecordNovelView(ctx context.Context, novelID string) (int64, error)

	// ListOwn lists the author's novels, drafts included.
	ListOwn(ctx context.Context, authorID string) ([]models.Novel, error)

	// CreateNovel creates a draft owned by the caller.
	CreateNovel(ctx context.Context, authorID string, req *CreateNovelRequest) (*models.Novel, error)

	// UpdateNovel applies a partial metadata update. Author-only.
	UpdateNovel(ctx context.Context, novelID, actorID string, req *UpdateNovelRequest) (*models.Novel, error)

	// SetCover stores the uploaded image and records its URL on the novel.
	SetCover(ctx context.Context, novelID, actorID, coverURL string) (*models.Novel, error)

	// Publish makes the novel visible to readers and adds it to the
	// catalog. Publishing an already published novel is a no-op.
	Publish(ctx context.Context, novelID, actorID string) (*models.Novel, error)

	// Unpublish returns the novel to DRAFT and removes it from the catalog.
	Unpublish(ctx context.Context, novelID, actorID string) (*models.Novel, error)

	// DeleteNovel removes the novel and everything under it.
	DeleteNovel(ctx context.Context, novelID, actorID string) error
}
