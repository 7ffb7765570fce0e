package autosave

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"jread/internal/domain"
)

// Manager tracks the open editor sessions for the server.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	saver  Saver
	cfg    Config
	logger *slog.Logger
}

// NewManager creates a session manager backed by the given Saver.
func NewManager(saver Saver, cfg Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		saver:    saver,
		cfg:      cfg.withDefaults(),
		logger:   logger,
	}
}

// Open starts a session. chapterID is empty for a brand-new chapter; title
// and content seed the editor buffer (the persisted draft for an existing
// chapter, empty otherwise). The session starts idle.
func (m *Manager) Open(userID, novelID, chapterID, title, content string) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		NovelID:   novelID,
		chapterID: chapterID,
		title:     title,
		content:   content,
		state:     StateIdle,
		saver:     m.saver,
		cfg:       m.cfg,
		logger:    m.logger,
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	return s
}

// Get returns the session, and checks it belongs to userID.
func (m *Manager) Get(sessionID, userID string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[sessionID]
	m.mu.RUnlock()

	if !ok {
		return nil, &domain.NotFoundError{Message: "editor session not found"}
	}
	if s.UserID != userID {
		return nil, &domain.ForbiddenError{Message: "editor session belongs to another user"}
	}
	return s, nil
}

// Close flushes nothing; it tears the session down and forgets it. Callers
// wanting the buffer persisted call Flush on the session first.
func (m *Manager) Close(sessionID, userID string) error {
	s, err := m.Get(sessionID, userID)
	if err != nil {
		return err
	}
	s.Close()

	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
	return nil
}
