package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"jread/internal/autosave"
	"jread/internal/domain"
	"jread/internal/domain/models"
	"jread/internal/domain/services"
)

func newEditorService(f *fixture) services.EditorService {
	cfg := autosave.Config{
		Debounce:    20 * time.Millisecond,
		RetryDelay:  20 * time.Millisecond,
		SaveTimeout: time.Second,
	}
	return NewEditorService(f.chapters, f.novels, f.tx, cfg, testLogger())
}

func waitForState(t *testing.T, svc services.EditorService, sessionID, userID string, want autosave.State) autosave.Status {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		st, err := svc.Status(context.Background(), sessionID, userID)
		if err != nil {
			t.Fatalf("Status() error = %v", err)
		}
		if st.State == want {
			return st
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("session never reached state %q", want)
	return autosave.Status{}
}

func strPtr(s string) *string { return &s }

func TestEditorOpenChecksOwnership(t *testing.T) {
	f := newFixture()
	f.addProfile("author-1", "writer", models.RoleAuthor)
	f.addProfile("author-2", "rival", models.RoleAuthor)
	novel := f.addNovel("author-1", "Mine", models.NovelStatusDraft)
	svc := newEditorService(f)

	var forbidden *domain.ForbiddenError
	_, err := svc.Open(context.Background(), "author-2", &services.OpenEditorRequest{NovelID: novel.ID})
	if !errors.As(err, &forbidden) {
		t.Errorf("Open() by non-owner error = %v, want forbidden", err)
	}

	st, err := svc.Open(context.Background(), "author-1", &services.OpenEditorRequest{NovelID: novel.ID})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if st.State != autosave.StateIdle {
		t.Errorf("fresh session state = %q, want idle", st.State)
	}
}

func TestEditorOpenSeedsExistingChapter(t *testing.T) {
	f := newFixture()
	f.addProfile("author-1", "writer", models.RoleAuthor)
	novel := f.addNovel("author-1", "Mine", models.NovelStatusDraft)
	chapter := f.addChapter(novel.ID, 1, false)
	svc := newEditorService(f)

	st, err := svc.Open(context.Background(), "author-1", &services.OpenEditorRequest{
		NovelID:   novel.ID,
		ChapterID: chapter.ID,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if st.Title != chapter.Title || st.Content != chapter.Content {
		t.Errorf("seeded buffer = (%q, %q), want the stored draft", st.Title, st.Content)
	}
}

func TestFirstAutoSaveCreatesChapterWithNextNumber(t *testing.T) {
	f := newFixture()
	f.addProfile("author-1", "writer", models.RoleAuthor)
	novel := f.addNovel("author-1", "Mine", models.NovelStatusDraft)
	f.addChapter(novel.ID, 1, true)
	f.addChapter(novel.ID, 2, false)
	svc := newEditorService(f)

	st, err := svc.Open(context.Background(), "author-1", &services.OpenEditorRequest{NovelID: novel.ID})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if _, err := svc.Edit(context.Background(), st.SessionID, "author-1", &services.EditRequest{
		Title:   strPtr("Chapter Three"),
		Content: strPtr("It begins."),
	}); err != nil {
		t.Fatalf("Edit() error = %v", err)
	}

	saved := waitForState(t, svc, st.SessionID, "author-1", autosave.StateSaved)
	if saved.ChapterID == "" {
		t.Fatal("saved session has no chapter ID")
	}

	chapter, err := f.chapters.GetByID(context.Background(), saved.ChapterID)
	if err != nil {
		t.Fatalf("created chapter not found: %v", err)
	}
	if chapter.ChapterNumber != 3 {
		t.Errorf("chapter number = %d, want 3", chapter.ChapterNumber)
	}
	if chapter.IsPublished {
		t.Error("auto-saved chapter is published, want draft")
	}
}

func TestCreateDraftRetriesOnNumberConflict(t *testing.T) {
	f := newFixture()
	f.addProfile("author-1", "writer", models.RoleAuthor)
	novel := f.addNovel("author-1", "Mine", models.NovelStatusDraft)
	f.chapters.conflictOnce = true
	svc := newEditorService(f)

	saver := svc.(*EditorService)
	chapterID, err := saver.CreateDraft(context.Background(), novel.ID, "Racy", "content")
	if err != nil {
		t.Fatalf("CreateDraft() error = %v, want retry to succeed", err)
	}
	if chapterID == "" {
		t.Fatal("CreateDraft() returned empty chapter ID")
	}
}

func TestManualSavePersistsImmediately(t *testing.T) {
	f := newFixture()
	f.addProfile("author-1", "writer", models.RoleAuthor)
	novel := f.addNovel("author-1", "Mine", models.NovelStatusDraft)
	chapter := f.addChapter(novel.ID, 1, false)
	svc := newEditorService(f)

	st, _ := svc.Open(context.Background(), "author-1", &services.OpenEditorRequest{
		NovelID:   novel.ID,
		ChapterID: chapter.ID,
	})
	svc.Edit(context.Background(), st.SessionID, "author-1", &services.EditRequest{Content: strPtr("rewritten")})

	saved, err := svc.Save(context.Background(), st.SessionID, "author-1")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if saved.State != autosave.StateSaved {
		t.Errorf("state after manual save = %q, want saved", saved.State)
	}

	stored, _ := f.chapters.GetByID(context.Background(), chapter.ID)
	if stored.Content != "rewritten" {
		t.Errorf("stored content = %q, want %q", stored.Content, "rewritten")
	}
}

func TestCloseFlushesDirtyBuffer(t *testing.T) {
	f := newFixture()
	f.addProfile("author-1", "writer", models.RoleAuthor)
	novel := f.addNovel("author-1", "Mine", models.NovelStatusDraft)
	chapter := f.addChapter(novel.ID, 1, false)
	svc := newEditorService(f)

	st, _ := svc.Open(context.Background(), "author-1", &services.OpenEditorRequest{
		NovelID:   novel.ID,
		ChapterID: chapter.ID,
	})
	svc.Edit(context.Background(), st.SessionID, "author-1", &services.EditRequest{Content: strPtr("last words")})

	if err := svc.Close(context.Background(), st.SessionID, "author-1"); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	stored, _ := f.chapters.GetByID(context.Background(), chapter.ID)
	if stored.Content != "last words" {
		t.Errorf("stored content after close = %q, want %q", stored.Content, "last words")
	}

	if _, err := svc.Status(context.Background(), st.SessionID, "author-1"); !errors.Is(err, domain.ErrNotFound) {
		var notFound *domain.NotFoundError
		if !errors.As(err, &notFound) {
			t.Errorf("Status() after close error = %v, want not found", err)
		}
	}
}

func TestCloseCleanSessionCreatesNothing(t *testing.T) {
	f := newFixture()
	f.addProfile("author-1", "writer", models.RoleAuthor)
	novel := f.addNovel("author-1", "Mine", models.NovelStatusDraft)
	svc := newEditorService(f)

	st, _ := svc.Open(context.Background(), "author-1", &services.OpenEditorRequest{NovelID: novel.ID})
	if err := svc.Close(context.Background(), st.SessionID, "author-1"); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	chapters, _ := f.chapters.ListByNovel(context.Background(), novel.ID, false)
	if len(chapters) != 0 {
		t.Errorf("closing an untouched session created %d chapters, want 0", len(chapters))
	}
}
