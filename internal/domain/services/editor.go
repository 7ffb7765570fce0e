package services

import (
	"context"

	"jread/internal/autosave"
)

// OpenEditorRequest starts an editor session. ChapterID is empty when
// drafting a brand-new chapter; the chapter row is created on the first
// save.
type OpenEditorRequest struct {
	NovelID   string `json:"novel_id"`
	ChapterID string `json:"chapter_id"`
}

// EditRequest carries an editor buffer change. Nil fields are untouched.
type EditRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// EditorService manages auto-saving editor sessions for chapter drafts.
type EditorService interface {
	// Open validates ownership and starts a session, seeding the buffer
	// from the stored draft when editing an existing chapter.
	Open(ctx context.Context, userID string, req *OpenEditorRequest) (autosave.Status, error)

	// Edit applies a buffer change; the session's debounce decides when it
	// is persisted.
	Edit(ctx context.Context, sessionID, userID string, req *EditRequest) (autosave.Status, error)

	// Status reports the session's save state for the editor indicator.
	Status(ctx context.Context, sessionID, userID string) (autosave.Status, error)

	// Save persists the buffer immediately (manual save). Refused while an
	// auto-save is in flight.
	Save(ctx context.Context, sessionID, userID string) (autosave.Status, error)

	// Close flushes unsaved edits and tears the session down.
	Close(ctx context.Context, sessionID, userID string) error
}
