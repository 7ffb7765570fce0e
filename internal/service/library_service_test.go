package service

import (
	"context"
	"errors"
	"testing"

	"jread/internal/domain"
	"jread/internal/domain/models"
	"jread/internal/domain/services"
)

func newLibraryService(f *fixture) services.LibraryService {
	return NewLibraryService(
		f.bookmarks, f.likes, f.ratings, f.progress,
		f.novels, f.profiles, f.chapters,
		f.tx, f.cache, testLogger(),
	)
}

func TestToggleLike(t *testing.T) {
	f := newFixture()
	f.addProfile("author-1", "writer", models.RoleAuthor)
	f.addProfile("reader-1", "reader", models.RoleUser)
	novel := f.addNovel("author-1", "Liked", models.NovelStatusPublished)
	svc := newLibraryService(f)

	state, err := svc.ToggleLike(context.Background(), "reader-1", novel.ID)
	if err != nil {
		t.Fatalf("ToggleLike() error = %v", err)
	}
	if !state.Liked || state.Likes != 1 {
		t.Errorf("first toggle = %+v, want liked with 1 like", state)
	}
	if cached, _ := f.cache.Get(novel.ID); cached.Likes != 1 {
		t.Errorf("catalog likes = %d, want 1", cached.Likes)
	}

	state, err = svc.ToggleLike(context.Background(), "reader-1", novel.ID)
	if err != nil {
		t.Fatalf("second ToggleLike() error = %v", err)
	}
	if state.Liked || state.Likes != 0 {
		t.Errorf("second toggle = %+v, want unliked with 0 likes", state)
	}
	if cached, _ := f.cache.Get(novel.ID); cached.Likes != 0 {
		t.Errorf("catalog likes = %d, want 0", cached.Likes)
	}
}

func TestToggleLikeFailureRollsBackCatalog(t *testing.T) {
	f := newFixture()
	f.addProfile("author-1", "writer", models.RoleAuthor)
	novel := f.addNovel("author-1", "Stable", models.NovelStatusPublished)
	f.cache.SetLikes(novel.ID, 10)
	f.novels.adjustLikes(novel.ID, 10)
	f.likes.failAdjust = errors.New("connection refused")

	// The catalog moves before the transaction commits, so listings show the
	// like instantly.
	var midTx int64
	f.likes.onAdjust = func() {
		cached, _ := f.cache.Get(novel.ID)
		midTx = cached.Likes
	}
	svc := newLibraryService(f)

	if _, err := svc.ToggleLike(context.Background(), "reader-1", novel.ID); err == nil {
		t.Fatal("ToggleLike() succeeded, want error")
	}

	if midTx != 11 {
		t.Errorf("catalog likes during toggle = %d, want optimistic 11", midTx)
	}
	// The failed toggle must not leave a phantom increment behind.
	if cached, _ := f.cache.Get(novel.ID); cached.Likes != 10 {
		t.Errorf("catalog likes after failed toggle = %d, want 10", cached.Likes)
	}
}

func TestLikeDraftNovelNotFound(t *testing.T) {
	f := newFixture()
	f.addProfile("author-1", "writer", models.RoleAuthor)
	draft := f.addNovel("author-1", "Draft", models.NovelStatusDraft)
	svc := newLibraryService(f)

	if _, err := svc.ToggleLike(context.Background(), "reader-1", draft.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("ToggleLike() on draft error = %v, want not found", err)
	}
}

func TestRateRecomputesAverage(t *testing.T) {
	f := newFixture()
	f.addProfile("author-1", "writer", models.RoleAuthor)
	novel := f.addNovel("author-1", "Rated", models.NovelStatusPublished)
	svc := newLibraryService(f)

	if _, err := svc.Rate(context.Background(), "reader-1", novel.ID, &services.RateRequest{Score: 5}); err != nil {
		t.Fatalf("Rate() error = %v", err)
	}
	state, err := svc.Rate(context.Background(), "reader-2", novel.ID, &services.RateRequest{Score: 2})
	if err != nil {
		t.Fatalf("Rate() error = %v", err)
	}

	if state.RatingCount != 2 || state.RatingAvg != 3.5 {
		t.Errorf("rating state = %+v, want avg 3.5 over 2 ratings", state)
	}
	if cached, _ := f.cache.Get(novel.ID); cached.RatingAvg != 3.5 || cached.RatingCount != 2 {
		t.Errorf("catalog rating = %v/%d, want 3.5/2", cached.RatingAvg, cached.RatingCount)
	}
}

func TestRateReplacesOwnScore(t *testing.T) {
	f := newFixture()
	f.addProfile("author-1", "writer", models.RoleAuthor)
	novel := f.addNovel("author-1", "Re-rated", models.NovelStatusPublished)
	svc := newLibraryService(f)

	svc.Rate(context.Background(), "reader-1", novel.ID, &services.RateRequest{Score: 2})
	state, err := svc.Rate(context.Background(), "reader-1", novel.ID, &services.RateRequest{Score: 4})
	if err != nil {
		t.Fatalf("Rate() error = %v", err)
	}
	if state.RatingCount != 1 || state.RatingAvg != 4 {
		t.Errorf("rating state after re-rate = %+v, want avg 4 over 1 rating", state)
	}
}

func TestRateScoreBounds(t *testing.T) {
	f := newFixture()
	f.addProfile("author-1", "writer", models.RoleAuthor)
	novel := f.addNovel("author-1", "Bounded", models.NovelStatusPublished)
	svc := newLibraryService(f)

	for _, score := range []int{0, 6, -1} {
		if _, err := svc.Rate(context.Background(), "reader-1", novel.ID, &services.RateRequest{Score: score}); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("Rate(score=%d) error = %v, want validation error", score, err)
		}
	}
}

func TestToggleBookmark(t *testing.T) {
	f := newFixture()
	f.addProfile("author-1", "writer", models.RoleAuthor)
	f.addProfile("reader-1", "reader", models.RoleUser)
	novel := f.addNovel("author-1", "Kept", models.NovelStatusPublished)
	svc := newLibraryService(f)

	on, err := svc.ToggleBookmark(context.Background(), "reader-1", novel.ID)
	if err != nil || !on {
		t.Fatalf("first ToggleBookmark() = %v, %v, want true", on, err)
	}
	off, err := svc.ToggleBookmark(context.Background(), "reader-1", novel.ID)
	if err != nil || off {
		t.Fatalf("second ToggleBookmark() = %v, %v, want false", off, err)
	}
}

func TestBookmarkPrivacy(t *testing.T) {
	f := newFixture()
	f.addProfile("author-1", "writer", models.RoleAuthor)
	owner := f.addProfile("reader-1", "private_reader", models.RoleUser)
	f.addProfile("reader-2", "snoop", models.RoleUser)
	novel := f.addNovel("author-1", "Secret Favorite", models.NovelStatusPublished)
	svc := newLibraryService(f)

	svc.ToggleBookmark(context.Background(), owner.ID, novel.ID)

	if _, err := svc.ListBookmarks(context.Background(), owner.ID, owner.ID); err != nil {
		t.Errorf("owner reading own bookmarks error = %v", err)
	}

	var forbidden *domain.ForbiddenError
	if _, err := svc.ListBookmarks(context.Background(), owner.ID, "reader-2"); !errors.As(err, &forbidden) {
		t.Errorf("private bookmarks readable by stranger, error = %v", err)
	}

	owner.BookmarksPublic = true
	f.profiles.Update(context.Background(), owner)

	novels, err := svc.ListBookmarks(context.Background(), owner.ID, "reader-2")
	if err != nil {
		t.Fatalf("public bookmarks error = %v", err)
	}
	if len(novels) != 1 || novels[0].ID != novel.ID {
		t.Errorf("bookmarked novels = %v, want the bookmarked novel", novels)
	}
}

func TestSaveProgressValidatesChapter(t *testing.T) {
	f := newFixture()
	f.addProfile("author-1", "writer", models.RoleAuthor)
	novel := f.addNovel("author-1", "Tracked", models.NovelStatusPublished)
	other := f.addNovel("author-1", "Other", models.NovelStatusPublished)
	chapter := f.addChapter(novel.ID, 1, true)
	svc := newLibraryService(f)

	if err := svc.SaveProgress(context.Background(), "reader-1", other.ID, &services.ProgressRequest{ChapterID: chapter.ID}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("SaveProgress() with foreign chapter error = %v, want validation error", err)
	}

	if err := svc.SaveProgress(context.Background(), "reader-1", novel.ID, &services.ProgressRequest{ChapterID: chapter.ID}); err != nil {
		t.Fatalf("SaveProgress() error = %v", err)
	}

	progress, err := svc.GetProgress(context.Background(), "reader-1", novel.ID)
	if err != nil {
		t.Fatalf("GetProgress() error = %v", err)
	}
	if progress.ChapterID != chapter.ID {
		t.Errorf("progress chapter = %q, want %q", progress.ChapterID, chapter.ID)
	}
}
