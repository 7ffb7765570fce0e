package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"jread/internal/autosave"
	"jread/internal/config"
	"jread/internal/domain"
	"jread/internal/domain/models"
	"jread/internal/domain/repositories"
	"jread/internal/domain/services"
)

// EditorService implements the EditorService interface. It owns the
// auto-save session manager and doubles as its Saver: the first save of a
// new chapter assigns the next chapter number and creates the row, later
// saves update it.
type EditorService struct {
	chapterRepo repositories.ChapterRepository
	novelRepo   repositories.NovelRepository
	txManager   repositories.TransactionManager
	sessions    *autosave.Manager
	logger      *slog.Logger
}

// NewEditorService creates a new editor service
func NewEditorService(
	chapterRepo repositories.ChapterRepository,
	novelRepo repositories.NovelRepository,
	txManager repositories.TransactionManager,
	cfg autosave.Config,
	logger *slog.Logger,
) services.EditorService {
	s := &EditorService{
		chapterRepo: chapterRepo,
		novelRepo:   novelRepo,
		txManager:   txManager,
		logger:      logger,
	}
	s.sessions = autosave.NewManager(s, cfg, logger)
	return s
}

// Open validates ownership and starts an auto-saving session
func (s *EditorService) Open(ctx context.Context, userID string, req *services.OpenEditorRequest) (autosave.Status, error) {
	novel, err := s.novelRepo.GetByID(ctx, req.NovelID)
	if err != nil {
		return autosave.Status{}, err
	}
	if novel.AuthorID != userID {
		return autosave.Status{}, &domain.ForbiddenError{Message: "you do not own this novel"}
	}

	var title, content string
	if req.ChapterID != "" {
		chapter, err := s.chapterRepo.GetByID(ctx, req.ChapterID)
		if err != nil {
			return autosave.Status{}, err
		}
		if chapter.NovelID != req.NovelID {
			return autosave.Status{}, fmt.Errorf("%w: chapter does not belong to this novel", domain.ErrValidation)
		}
		title, content = chapter.Title, chapter.Content
	}

	sess := s.sessions.Open(userID, req.NovelID, req.ChapterID, title, content)
	s.logger.Info("editor session opened",
		"session_id", sess.ID,
		"novel_id", req.NovelID,
		"chapter_id", req.ChapterID,
	)
	return sess.Status(), nil
}

// Edit applies a buffer change; persistence is left to the debounce
func (s *EditorService) Edit(ctx context.Context, sessionID, userID string, req *services.EditRequest) (autosave.Status, error) {
	if req.Title != nil {
		if len(*req.Title) > config.MaxChapterTitleLength {
			return autosave.Status{}, fmt.Errorf("%w: title exceeds %d characters", domain.ErrValidation, config.MaxChapterTitleLength)
		}
	}

	sess, err := s.sessions.Get(sessionID, userID)
	if err != nil {
		return autosave.Status{}, err
	}
	if err := sess.Edit(req.Title, req.Content); err != nil {
		return autosave.Status{}, err
	}
	return sess.Status(), nil
}

// Status reports the session's save state
func (s *EditorService) Status(ctx context.Context, sessionID, userID string) (autosave.Status, error) {
	sess, err := s.sessions.Get(sessionID, userID)
	if err != nil {
		return autosave.Status{}, err
	}
	return sess.Status(), nil
}

// Save persists the buffer immediately. While an auto-save is in flight the
// manual save is refused as a conflict; the client retries once the
// indicator settles.
func (s *EditorService) Save(ctx context.Context, sessionID, userID string) (autosave.Status, error) {
	sess, err := s.sessions.Get(sessionID, userID)
	if err != nil {
		return autosave.Status{}, err
	}

	st, err := sess.Flush(ctx)
	if errors.Is(err, autosave.ErrSaveInFlight) {
		return st, &domain.ConflictError{Message: "a save is already in progress"}
	}
	return st, err
}

// Close flushes unsaved edits and tears the session down. A clean session
// closes without touching the database.
func (s *EditorService) Close(ctx context.Context, sessionID, userID string) error {
	sess, err := s.sessions.Get(sessionID, userID)
	if err != nil {
		return err
	}

	switch sess.Status().State {
	case autosave.StateDirty, autosave.StateError:
		if _, err := sess.Flush(ctx); err != nil {
			if errors.Is(err, autosave.ErrSaveInFlight) {
				return &domain.ConflictError{Message: "a save is already in progress"}
			}
			return err
		}
	case autosave.StateSaving:
		return &domain.ConflictError{Message: "a save is already in progress"}
	}

	return s.sessions.Close(sessionID, userID)
}

// CreateDraft implements autosave.Saver. The chapter number is assigned
// inside the transaction as max+1; the UNIQUE(novel_id, chapter_number)
// constraint catches a concurrent assignment, in which case the insert is
// re-numbered and retried once.
func (s *EditorService) CreateDraft(ctx context.Context, novelID, title, content string) (string, error) {
	var chapterID string

	for attempt := 0; attempt < 2; attempt++ {
		err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
			max, err := s.chapterRepo.MaxChapterNumber(txCtx, novelID)
			if err != nil {
				return err
			}
			chapter := &models.Chapter{
				NovelID:       novelID,
				ChapterNumber: max + 1,
				Title:         title,
				Content:       content,
				IsPublished:   false,
			}
			if err := s.chapterRepo.Create(txCtx, chapter); err != nil {
				return err
			}
			chapterID = chapter.ID
			return nil
		})
		if err == nil {
			return chapterID, nil
		}
		if !errors.Is(err, domain.ErrConflict) || attempt == 1 {
			return "", err
		}
		s.logger.Debug("chapter number raced, retrying", "novel_id", novelID)
	}

	return "", fmt.Errorf("create draft: %w", domain.ErrConflict)
}

// UpdateDraft implements autosave.Saver
func (s *EditorService) UpdateDraft(ctx context.Context, chapterID, title, content string) error {
	chapter, err := s.chapterRepo.GetByID(ctx, chapterID)
	if err != nil {
		return err
	}

	chapter.Title = title
	chapter.Content = content
	return s.chapterRepo.Update(ctx, chapter)
}
