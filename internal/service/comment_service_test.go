package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"jread/internal/config"
	"jread/internal/domain"
	"jread/internal/domain/models"
	"jread/internal/domain/services"
)

// fakeCommentRepo lives here because only the comment tests need it.
type fakeCommentRepo struct {
	comments map[string]*models.Comment
	order    []string
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[string]*models.Comment)}
}

func (r *fakeCommentRepo) Create(_ context.Context, c *models.Comment) error {
	c.ID = ids.next("comment")
	cp := *c
	r.comments[c.ID] = &cp
	r.order = append(r.order, c.ID)
	return nil
}

func (r *fakeCommentRepo) GetByID(_ context.Context, id string) (*models.Comment, error) {
	c, ok := r.comments[id]
	if !ok {
		return nil, fmt.Errorf("comment %s: %w", id, domain.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCommentRepo) ListTopLevel(_ context.Context, chapterID string) ([]models.Comment, error) {
	var out []models.Comment
	for i := len(r.order) - 1; i >= 0; i-- {
		c := r.comments[r.order[i]]
		if c != nil && c.ChapterID == chapterID && c.ParentID == nil {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCommentRepo) ListReplies(_ context.Context, parentID string) ([]models.Comment, error) {
	var out []models.Comment
	for _, id := range r.order {
		c := r.comments[id]
		if c != nil && c.ParentID != nil && *c.ParentID == parentID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCommentRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.comments[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.comments, id)
	for cid, c := range r.comments {
		if c.ParentID != nil && *c.ParentID == id {
			delete(r.comments, cid)
		}
	}
	return nil
}

func newCommentService(t *testing.T, f *fixture, comments *fakeCommentRepo) services.CommentService {
	t.Helper()
	return NewCommentService(comments, f.chapters, f.profiles, testRegistry(t), testLogger())
}

func TestCreateComment(t *testing.T) {
	f := newFixture()
	f.addProfile("author-1", "writer", models.RoleAuthor)
	f.addProfile("reader-1", "reader", models.RoleUser)
	novel := f.addNovel("author-1", "Discussed", models.NovelStatusPublished)
	chapter := f.addChapter(novel.ID, 1, true)
	draft := f.addChapter(novel.ID, 2, false)
	comments := newFakeCommentRepo()
	svc := newCommentService(t, f, comments)

	comment, err := svc.CreateComment(context.Background(), "reader-1", chapter.ID, &services.CreateCommentRequest{Content: "Loved it"})
	if err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}
	if comment.ID == "" || comment.UserID != "reader-1" {
		t.Errorf("comment = %+v, want persisted with author", comment)
	}

	// Unpublished chapters take no comments.
	if _, err := svc.CreateComment(context.Background(), "reader-1", draft.ID, &services.CreateCommentRequest{Content: "early"}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("CreateComment() on draft error = %v, want not found", err)
	}

	// Content length is bounded.
	long := strings.Repeat("a", config.MaxCommentLength+1)
	if _, err := svc.CreateComment(context.Background(), "reader-1", chapter.ID, &services.CreateCommentRequest{Content: long}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("CreateComment() over-length error = %v, want validation error", err)
	}
}

func TestReplyNesting(t *testing.T) {
	f := newFixture()
	f.addProfile("author-1", "writer", models.RoleAuthor)
	f.addProfile("reader-1", "reader", models.RoleUser)
	novel := f.addNovel("author-1", "Discussed", models.NovelStatusPublished)
	chapter := f.addChapter(novel.ID, 1, true)
	comments := newFakeCommentRepo()
	svc := newCommentService(t, f, comments)

	top, err := svc.CreateComment(context.Background(), "reader-1", chapter.ID, &services.CreateCommentRequest{Content: "top"})
	if err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}

	reply, err := svc.CreateComment(context.Background(), "author-1", chapter.ID, &services.CreateCommentRequest{
		Content:  "thanks",
		ParentID: &top.ID,
	})
	if err != nil {
		t.Fatalf("reply error = %v", err)
	}

	// Replies to replies are rejected: threads stay one level deep.
	if _, err := svc.CreateComment(context.Background(), "reader-1", chapter.ID, &services.CreateCommentRequest{
		Content:  "nested",
		ParentID: &reply.ID,
	}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("nested reply error = %v, want validation error", err)
	}

	listed, err := svc.ListComments(context.Background(), chapter.ID)
	if err != nil {
		t.Fatalf("ListComments() error = %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("top-level comments = %d, want 1", len(listed))
	}
	if len(listed[0].Replies) != 1 || listed[0].Replies[0].Content != "thanks" {
		t.Errorf("replies = %v, want the single reply", listed[0].Replies)
	}
}

func TestDeleteCommentPermissions(t *testing.T) {
	f := newFixture()
	f.addProfile("author-1", "writer", models.RoleAuthor)
	f.addProfile("reader-1", "reader", models.RoleUser)
	f.addProfile("reader-2", "other", models.RoleUser)
	f.addProfile("admin-1", "admin", models.RoleAdmin)
	novel := f.addNovel("author-1", "Discussed", models.NovelStatusPublished)
	chapter := f.addChapter(novel.ID, 1, true)
	comments := newFakeCommentRepo()
	svc := newCommentService(t, f, comments)

	mine, _ := svc.CreateComment(context.Background(), "reader-1", chapter.ID, &services.CreateCommentRequest{Content: "mine"})

	var forbidden *domain.ForbiddenError
	if err := svc.DeleteComment(context.Background(), mine.ID, "reader-2"); !errors.As(err, &forbidden) {
		t.Errorf("DeleteComment() by stranger error = %v, want forbidden", err)
	}
	if err := svc.DeleteComment(context.Background(), mine.ID, "reader-1"); err != nil {
		t.Errorf("DeleteComment() by author error = %v", err)
	}

	moderated, _ := svc.CreateComment(context.Background(), "reader-1", chapter.ID, &services.CreateCommentRequest{Content: "spam"})
	if err := svc.DeleteComment(context.Background(), moderated.ID, "admin-1"); err != nil {
		t.Errorf("DeleteComment() by moderator error = %v", err)
	}
}
