// Package autosave implements the editor draft auto-save state machine.
//
// A session moves through idle → dirty → saving → saved/error. Edits re-arm
// a trailing debounce timer; only the last edit group inside a quiet window
// triggers a write. A failed save re-enters dirty after a short delay, which
// naturally re-arms the debounce path. At most one save is in flight per
// session at any time.
package autosave

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"jread/internal/utils"
)

// State is the editor session's position in the save lifecycle.
type State string

const (
	// StateIdle: no unsaved edits, nothing pending.
	StateIdle State = "idle"
	// StateDirty: edited since the last successful save; debounce armed.
	StateDirty State = "dirty"
	// StateSaving: a save is in flight.
	StateSaving State = "saving"
	// StateSaved: the latest edits are confirmed persisted.
	StateSaved State = "saved"
	// StateError: the last save attempt failed; recoverable.
	StateError State = "error"
)

// ErrSaveInFlight is returned by Flush while a save is already running.
// The manual save path is available from every state except saving.
var ErrSaveInFlight = errors.New("a save is already in flight")

// ErrSessionClosed is returned by operations on a closed session.
var ErrSessionClosed = errors.New("editor session is closed")

// Saver persists a draft. The persistence action is polymorphic over
// create/update: CreateDraft is used while the session has no chapter ID yet,
// UpdateDraft once one is known.
type Saver interface {
	CreateDraft(ctx context.Context, novelID, title, content string) (chapterID string, err error)
	UpdateDraft(ctx context.Context, chapterID, title, content string) error
}

// Config holds the session timing knobs. Tests shrink these.
type Config struct {
	// Debounce is the quiet period after the last edit before a save fires.
	Debounce time.Duration
	// RetryDelay is how long an errored session waits before re-entering
	// dirty.
	RetryDelay time.Duration
	// SaveTimeout bounds a single persistence call.
	SaveTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Debounce <= 0 {
		c.Debounce = 2 * time.Second
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 2 * time.Second
	}
	if c.SaveTimeout <= 0 {
		c.SaveTimeout = 30 * time.Second
	}
	return c
}

// Session is one open editor. All methods are safe for concurrent use.
type Session struct {
	ID      string
	UserID  string
	NovelID string

	mu        sync.Mutex
	chapterID string // empty until the first successful create
	title     string
	content   string
	state     State
	lastErr   error
	gen       uint64 // bumped on every edit; detects edits during a save
	closed    bool

	timer      *time.Timer // pending debounce, nil when unarmed
	retryTimer *time.Timer // pending error re-arm, nil when unarmed

	saver  Saver
	cfg    Config
	logger *slog.Logger
}

// Status is the session snapshot returned to the editor UI.
type Status struct {
	SessionID string `json:"session_id"`
	State     State  `json:"state"`
	NovelID   string `json:"novel_id"`
	ChapterID string `json:"chapter_id,omitempty"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	WordCount int    `json:"word_count"`
	Error     string `json:"error,omitempty"`
}

// Edit applies a title and/or content change. Nil fields are untouched.
// From idle, saved or error this enters dirty and (re)arms the debounce
// timer; while a save is in flight the edit is recorded and the session
// returns to dirty once the save resolves.
func (s *Session) Edit(title, content *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}

	if title != nil {
		s.title = *title
	}
	if content != nil {
		s.content = *content
	}
	s.gen++

	if s.state == StateSaving {
		// The in-flight save resolves against an older generation; its
		// completion will see the bump and drop back to dirty.
		return nil
	}

	s.stopRetryLocked()
	s.state = StateDirty
	s.armDebounceLocked()
	return nil
}

// Flush cancels any pending debounce and saves synchronously. It is the
// manual save / save-and-exit / publish path. Refused while a save is
// already in flight.
func (s *Session) Flush(ctx context.Context) (Status, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Status{}, ErrSessionClosed
	}
	if s.state == StateSaving {
		s.mu.Unlock()
		return Status{}, ErrSaveInFlight
	}

	s.stopDebounceLocked()
	s.stopRetryLocked()
	s.state = StateSaving
	gen := s.gen
	chapterID, novelID := s.chapterID, s.NovelID
	title, content := s.title, s.content
	s.mu.Unlock()

	newID, err := s.persist(ctx, chapterID, novelID, title, content)
	s.finishSave(gen, newID, err)

	if err != nil {
		return s.Status(), err
	}
	return s.Status(), nil
}

// Status returns the current session snapshot.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		SessionID: s.ID,
		State:     s.state,
		NovelID:   s.NovelID,
		ChapterID: s.chapterID,
		Title:     s.title,
		Content:   s.content,
		WordCount: utils.CountWords(s.content),
	}
	if s.lastErr != nil {
		st.Error = s.lastErr.Error()
	}
	return st
}

// ChapterID returns the persisted chapter's ID, empty before the first
// successful save of a new chapter.
func (s *Session) ChapterID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chapterID
}

// Close stops timers and marks the session unusable. Unsaved edits are
// dropped; callers wanting them persisted flush first.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopDebounceLocked()
	s.stopRetryLocked()
	s.closed = true
}

// armDebounceLocked (re)starts the trailing debounce. The callback only acts
// if the session is still dirty at the same edit generation, so a stale
// timer that lost the race to a restart does nothing.
func (s *Session) armDebounceLocked() {
	s.stopDebounceLocked()
	gen := s.gen
	s.timer = time.AfterFunc(s.cfg.Debounce, func() {
		s.onDebounce(gen)
	})
}

func (s *Session) stopDebounceLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) stopRetryLocked() {
	if s.retryTimer != nil {
		s.retryTimer.Stop()
		s.retryTimer = nil
	}
}

// onDebounce runs on the timer goroutine and performs the auto-save.
func (s *Session) onDebounce(gen uint64) {
	s.mu.Lock()
	if s.closed || s.state != StateDirty || s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.state = StateSaving
	chapterID, novelID := s.chapterID, s.NovelID
	title, content := s.title, s.content
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.SaveTimeout)
	defer cancel()

	newID, err := s.persist(ctx, chapterID, novelID, title, content)
	s.finishSave(gen, newID, err)
}

// persist performs the create-or-update keyed on whether a chapter ID is
// known yet.
func (s *Session) persist(ctx context.Context, chapterID, novelID, title, content string) (string, error) {
	if chapterID == "" {
		return s.saver.CreateDraft(ctx, novelID, title, content)
	}
	return "", s.saver.UpdateDraft(ctx, chapterID, title, content)
}

// finishSave resolves the saving state. A successful create pins the new
// chapter ID so every later save is an update. Edits that arrived during the
// save drop the session back to dirty with a fresh debounce; a failure
// surfaces as error and re-arms dirty after the retry delay, keeping the
// edited title/content untouched.
func (s *Session) finishSave(gen uint64, newChapterID string, saveErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	if saveErr != nil {
		s.lastErr = saveErr
		s.state = StateError
		s.logger.Warn("draft save failed",
			"session_id", s.ID,
			"novel_id", s.NovelID,
			"error", saveErr,
		)
		s.retryTimer = time.AfterFunc(s.cfg.RetryDelay, s.onRetry)
		return
	}

	s.lastErr = nil
	if s.chapterID == "" && newChapterID != "" {
		s.chapterID = newChapterID
	}

	if s.gen != gen {
		// Edited while saving; go straight back through the debounce path.
		s.state = StateDirty
		s.armDebounceLocked()
		return
	}

	s.state = StateSaved
}

// onRetry re-enters dirty after a failed save, which re-arms the debounce.
func (s *Session) onRetry() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.state != StateError {
		return
	}
	s.state = StateDirty
	s.armDebounceLocked()
}
