package services

import (
	"context"

	"jread/internal/domain/models"
)

// ChapterService defines reader-facing chapter access and the author-side
// operations that don't go through an editor session.
type ChapterService interface {
	// ListChapters lists a novel's chapters ordered by chapter number.
	// Readers see published chapters only; the author sees drafts too.
	ListChapters(ctx context.Context, novelID, viewerID string) ([]models.Chapter, error)

	// ReadChapter returns a published chapter's content, bumps its view
	// counter, and records the viewer's reading progress when viewerID is
	// set. The author can read their own unpublished chapters.
	ReadChapter(ctx context.Context, chapterID, viewerID string) (*models.Chapter, error)

	// PublishChapter makes the chapter visible to readers. Author-only.
	PublishChapter(ctx context.Context, chapterID, actorID string) (*models.Chapter, error)

	// UnpublishChapter hides the chapter from readers again.
	UnpublishChapter(ctx context.Context, chapterID, actorID string) (*models.Chapter, error)

	// DeleteChapter removes the chapter and its comments.
	DeleteChapter(ctx context.Context, chapterID, actorID string) error
}
