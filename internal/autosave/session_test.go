package autosave

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeSaver records persistence calls and can be told to fail.
type fakeSaver struct {
	mu      sync.Mutex
	creates []saveCall
	updates []saveCall
	nextID  string
	failN   int // fail this many calls before succeeding
}

type saveCall struct {
	chapterID string
	novelID   string
	title     string
	content   string
}

func (f *fakeSaver) CreateDraft(_ context.Context, novelID, title, content string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failN > 0 {
		f.failN--
		return "", errors.New("db unavailable")
	}
	f.creates = append(f.creates, saveCall{novelID: novelID, title: title, content: content})
	if f.nextID == "" {
		f.nextID = "chapter-1"
	}
	return f.nextID, nil
}

func (f *fakeSaver) UpdateDraft(_ context.Context, chapterID, title, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failN > 0 {
		f.failN--
		return errors.New("db unavailable")
	}
	f.updates = append(f.updates, saveCall{chapterID: chapterID, title: title, content: content})
	return nil
}

func (f *fakeSaver) counts() (creates, updates int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.creates), len(f.updates)
}

func (f *fakeSaver) lastUpdate() (saveCall, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.updates) == 0 {
		return saveCall{}, false
	}
	return f.updates[len(f.updates)-1], true
}

// blockingSaver parks every UpdateDraft call until release is closed, so a
// test can observe the saving state and race edits against it.
type blockingSaver struct {
	release chan struct{}
	saves   atomic.Int64

	mu   sync.Mutex
	last string
}

func (b *blockingSaver) CreateDraft(_ context.Context, _, _, content string) (string, error) {
	return "chapter-1", b.save(content)
}

func (b *blockingSaver) UpdateDraft(_ context.Context, _, _, content string) error {
	return b.save(content)
}

func (b *blockingSaver) save(content string) error {
	if b.saves.Add(1) == 1 {
		<-b.release
	}
	b.mu.Lock()
	b.last = content
	b.mu.Unlock()
	return nil
}

func (b *blockingSaver) lastContent() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}

// testConfig shrinks the timers so tests run in milliseconds.
func testConfig() Config {
	return Config{
		Debounce:    20 * time.Millisecond,
		RetryDelay:  20 * time.Millisecond,
		SaveTimeout: time.Second,
	}
}

func newTestManager(saver Saver) *Manager {
	return NewManager(saver, testConfig(), slog.New(slog.NewTextHandler(discard{}, nil)))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal(msg)
}

func str(s string) *string { return &s }

func TestSessionStartsIdle(t *testing.T) {
	m := newTestManager(&fakeSaver{})
	s := m.Open("user-1", "novel-1", "", "", "")
	defer s.Close()

	if got := s.Status().State; got != StateIdle {
		t.Errorf("state = %q, want %q", got, StateIdle)
	}
}

func TestBurstOfEditsSavesOnce(t *testing.T) {
	saver := &fakeSaver{}
	m := newTestManager(saver)
	s := m.Open("user-1", "novel-1", "chapter-1", "Ch 1", "old")
	defer s.Close()

	// Edits closer together than the debounce collapse into one save.
	for _, c := range []string{"d", "dr", "dra", "draft"} {
		if err := s.Edit(nil, str(c)); err != nil {
			t.Fatalf("Edit() error = %v", err)
		}
		time.Sleep(2 * time.Millisecond)
	}
	if got := s.Status().State; got != StateDirty {
		t.Errorf("state during burst = %q, want %q", got, StateDirty)
	}

	waitFor(t, func() bool { return s.Status().State == StateSaved }, "session never reached saved")

	creates, updates := saver.counts()
	if creates != 0 || updates != 1 {
		t.Errorf("creates = %d, updates = %d, want 0 and 1", creates, updates)
	}
	if last, ok := saver.lastUpdate(); !ok || last.content != "draft" {
		t.Errorf("saved content = %q, want %q", last.content, "draft")
	}
}

func TestTwoBurstsSeparatedByQuietSaveTwice(t *testing.T) {
	saver := &fakeSaver{}
	m := newTestManager(saver)
	s := m.Open("user-1", "novel-1", "chapter-1", "Ch 1", "")
	defer s.Close()

	s.Edit(nil, str("first"))
	waitFor(t, func() bool { return s.Status().State == StateSaved }, "first burst never saved")

	s.Edit(nil, str("second"))
	waitFor(t, func() bool {
		_, updates := saver.counts()
		return updates == 2 && s.Status().State == StateSaved
	}, "second burst never saved")
}

func TestFirstSaveCreatesThenUpdates(t *testing.T) {
	saver := &fakeSaver{nextID: "chapter-42"}
	m := newTestManager(saver)
	s := m.Open("user-1", "novel-1", "", "New Chapter", "")
	defer s.Close()

	s.Edit(nil, str("opening line"))
	waitFor(t, func() bool { return s.Status().State == StateSaved }, "first save never completed")

	if got := s.ChapterID(); got != "chapter-42" {
		t.Fatalf("ChapterID() = %q, want %q", got, "chapter-42")
	}

	s.Edit(nil, str("opening line, revised"))
	waitFor(t, func() bool {
		_, updates := saver.counts()
		return updates == 1
	}, "second save never completed")

	creates, _ := saver.counts()
	if creates != 1 {
		t.Errorf("creates = %d, want 1 (identity pinned after first save)", creates)
	}
	if last, _ := saver.lastUpdate(); last.chapterID != "chapter-42" {
		t.Errorf("update chapterID = %q, want %q", last.chapterID, "chapter-42")
	}
}

func TestFlushSavesImmediately(t *testing.T) {
	saver := &fakeSaver{}
	m := newTestManager(saver)
	s := m.Open("user-1", "novel-1", "chapter-1", "Ch 1", "")
	defer s.Close()

	s.Edit(str("Renamed"), nil)

	st, err := s.Flush(context.Background())
	if err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if st.State != StateSaved {
		t.Errorf("state after flush = %q, want %q", st.State, StateSaved)
	}
	if _, updates := saver.counts(); updates != 1 {
		t.Errorf("updates = %d, want 1", updates)
	}

	// The cancelled debounce must not fire a second save later.
	time.Sleep(60 * time.Millisecond)
	if _, updates := saver.counts(); updates != 1 {
		t.Errorf("debounce fired after flush; updates = %d, want 1", updates)
	}
}

func TestFailedSaveEntersErrorThenRetries(t *testing.T) {
	saver := &fakeSaver{failN: 1}
	m := newTestManager(saver)
	s := m.Open("user-1", "novel-1", "chapter-1", "Ch 1", "")
	defer s.Close()

	s.Edit(nil, str("unsaved work"))
	waitFor(t, func() bool { return s.Status().State == StateError }, "session never reached error")

	st := s.Status()
	if st.Error == "" {
		t.Error("error state carries no message")
	}
	if st.Content != "unsaved work" {
		t.Errorf("content after failed save = %q, want edits preserved", st.Content)
	}

	// After the retry delay the session re-arms and the next attempt
	// succeeds.
	waitFor(t, func() bool { return s.Status().State == StateSaved }, "session never recovered from error")
	if _, updates := saver.counts(); updates != 1 {
		t.Errorf("updates after recovery = %d, want 1", updates)
	}
}

func TestEditDuringSaveReturnsToDirty(t *testing.T) {
	block := make(chan struct{})
	saver := &blockingSaver{release: block}
	m := newTestManager(saver)
	s := m.Open("user-1", "novel-1", "chapter-1", "Ch 1", "")
	defer s.Close()

	s.Edit(nil, str("v1"))
	waitFor(t, func() bool { return s.Status().State == StateSaving }, "save never started")

	// Edit while the save is in flight, then let it finish.
	s.Edit(nil, str("v2"))
	close(block)

	waitFor(t, func() bool { return saver.saves.Load() == 2 && s.Status().State == StateSaved }, "follow-up save never ran")
	if got := saver.lastContent(); got != "v2" {
		t.Errorf("final saved content = %q, want %q", got, "v2")
	}
}

func TestFlushRejectedWhileSaving(t *testing.T) {
	block := make(chan struct{})
	saver := &blockingSaver{release: block}
	m := newTestManager(saver)
	s := m.Open("user-1", "novel-1", "chapter-1", "Ch 1", "")
	defer s.Close()

	s.Edit(nil, str("v1"))
	waitFor(t, func() bool { return s.Status().State == StateSaving }, "save never started")

	if _, err := s.Flush(context.Background()); !errors.Is(err, ErrSaveInFlight) {
		t.Errorf("Flush() during save error = %v, want ErrSaveInFlight", err)
	}
	close(block)
}

func TestClosedSessionRejectsEdits(t *testing.T) {
	m := newTestManager(&fakeSaver{})
	s := m.Open("user-1", "novel-1", "chapter-1", "Ch 1", "")
	s.Close()

	if err := s.Edit(nil, str("late")); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("Edit() after close error = %v, want ErrSessionClosed", err)
	}
	if _, err := s.Flush(context.Background()); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("Flush() after close error = %v, want ErrSessionClosed", err)
	}
}

func TestManagerOwnership(t *testing.T) {
	m := newTestManager(&fakeSaver{})
	s := m.Open("user-1", "novel-1", "", "", "")

	if _, err := m.Get(s.ID, "user-1"); err != nil {
		t.Errorf("Get() by owner error = %v", err)
	}
	if _, err := m.Get(s.ID, "user-2"); err == nil {
		t.Error("Get() by non-owner succeeded, want forbidden")
	}
	if _, err := m.Get("missing", "user-1"); err == nil {
		t.Error("Get() of unknown session succeeded, want not found")
	}

	if err := m.Close(s.ID, "user-1"); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := m.Get(s.ID, "user-1"); err == nil {
		t.Error("Get() after Close() succeeded, want not found")
	}
}
