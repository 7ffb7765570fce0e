package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"jread/internal/authz"
	"jread/internal/catalog"
	"jread/internal/domain"
	"jread/internal/domain/models"
	"jread/internal/domain/repositories"
)

// In-memory repository fakes. They implement just enough of the repository
// contracts for service tests: keyed maps, sequential IDs, and the same
// sentinel errors the postgres implementations return.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRegistry(t interface{ Fatalf(string, ...interface{}) }) *authz.Registry {
	reg, err := authz.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return reg
}

// fakeTxManager runs the function directly; the fakes have no transactional
// state to roll back.
type fakeTxManager struct {
	fail error // when set, ExecTx returns it without running fn
}

func (m *fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if m.fail != nil {
		return m.fail
	}
	return fn(ctx)
}

type fakeAuthAdmin struct {
	deleted []string
	fail    error
}

func (a *fakeAuthAdmin) DeleteUser(userID string) error {
	if a.fail != nil {
		return a.fail
	}
	a.deleted = append(a.deleted, userID)
	return nil
}

type idGen struct {
	mu sync.Mutex
	n  int
}

func (g *idGen) next(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", prefix, g.n)
}

var ids idGen

// --- profiles ---

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*models.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]*models.Profile)}
}

func (r *fakeProfileRepo) Create(_ context.Context, p *models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.profiles {
		if existing.Username == p.Username {
			return &domain.ConflictError{Message: "username already taken", ResourceType: "profile", ResourceID: existing.ID}
		}
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	r.profiles[p.ID] = &cp
	return nil
}

func (r *fakeProfileRepo) GetByID(_ context.Context, id string) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", id, domain.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProfileRepo) GetByUsername(_ context.Context, username string) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if p.Username == username {
			cp := *p
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("profile %s: %w", username, domain.ErrNotFound)
}

func (r *fakeProfileRepo) List(_ context.Context) ([]models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeProfileRepo) Update(_ context.Context, p *models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[p.ID]; !ok {
		return fmt.Errorf("profile %s: %w", p.ID, domain.ErrNotFound)
	}
	cp := *p
	r.profiles[p.ID] = &cp
	return nil
}

func (r *fakeProfileRepo) UpdateRole(_ context.Context, id string, role models.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return fmt.Errorf("profile %s: %w", id, domain.ErrNotFound)
	}
	p.Role = role
	return nil
}

func (r *fakeProfileRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[id]; !ok {
		return fmt.Errorf("profile %s: %w", id, domain.ErrNotFound)
	}
	delete(r.profiles, id)
	return nil
}

// --- novels ---

type fakeNovelRepo struct {
	mu     sync.Mutex
	novels map[string]*models.Novel
	order  []string // creation order, newest last
}

func newFakeNovelRepo() *fakeNovelRepo {
	return &fakeNovelRepo{novels: make(map[string]*models.Novel)}
}

func (r *fakeNovelRepo) Create(_ context.Context, n *models.Novel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = ids.next("novel")
	n.CreatedAt = time.Now()
	n.UpdatedAt = n.CreatedAt
	cp := *n
	r.novels[n.ID] = &cp
	r.order = append(r.order, n.ID)
	return nil
}

func (r *fakeNovelRepo) GetByID(_ context.Context, id string) (*models.Novel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.novels[id]
	if !ok {
		return nil, fmt.Errorf("novel %s: %w", id, domain.ErrNotFound)
	}
	cp := *n
	return &cp, nil
}

func (r *fakeNovelRepo) ListPublished(_ context.Context) ([]models.Novel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Novel
	for i := len(r.order) - 1; i >= 0; i-- {
		if n := r.novels[r.order[i]]; n != nil && n.Published() {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (r *fakeNovelRepo) ListByAuthor(_ context.Context, authorID string) ([]models.Novel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Novel
	for i := len(r.order) - 1; i >= 0; i-- {
		if n := r.novels[r.order[i]]; n != nil && n.AuthorID == authorID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (r *fakeNovelRepo) Update(_ context.Context, n *models.Novel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.novels[n.ID]; !ok {
		return fmt.Errorf("novel %s: %w", n.ID, domain.ErrNotFound)
	}
	cp := *n
	r.novels[n.ID] = &cp
	return nil
}

func (r *fakeNovelRepo) UpdateStatus(_ context.Context, id string, status models.NovelStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.novels[id]
	if !ok {
		return fmt.Errorf("novel %s: %w", id, domain.ErrNotFound)
	}
	n.Status = status
	return nil
}

func (r *fakeNovelRepo) UpdateAuthorName(_ context.Context, authorID, authorName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.novels {
		if n.AuthorID == authorID {
			n.AuthorName = authorName
		}
	}
	return nil
}

func (r *fakeNovelRepo) IncrementViews(_ context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.novels[id]
	if !ok {
		return 0, fmt.Errorf("novel %s: %w", id, domain.ErrNotFound)
	}
	n.Views++
	return n.Views, nil
}

func (r *fakeNovelRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.novels[id]; !ok {
		return fmt.Errorf("novel %s: %w", id, domain.ErrNotFound)
	}
	delete(r.novels, id)
	return nil
}

// adjustLikes backs the fake like repo's counter updates.
func (r *fakeNovelRepo) adjustLikes(id string, delta int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.novels[id]
	if !ok {
		return 0, fmt.Errorf("novel %s: %w", id, domain.ErrNotFound)
	}
	n.Likes += delta
	if n.Likes < 0 {
		n.Likes = 0
	}
	return n.Likes, nil
}

func (r *fakeNovelRepo) setRating(id string, avg float64, count int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n, ok := r.novels[id]; ok {
		n.RatingAvg = avg
		n.RatingCount = count
	}
}

// --- chapters ---

type fakeChapterRepo struct {
	mu       sync.Mutex
	chapters map[string]*models.Chapter
	// conflictOnce makes the next Create fail with ErrConflict, simulating
	// a concurrent chapter-number assignment.
	conflictOnce bool
}

func newFakeChapterRepo() *fakeChapterRepo {
	return &fakeChapterRepo{chapters: make(map[string]*models.Chapter)}
}

func (r *fakeChapterRepo) Create(_ context.Context, c *models.Chapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conflictOnce {
		r.conflictOnce = false
		return &domain.ConflictError{
			Message:      fmt.Sprintf("chapter number %d already exists in this novel", c.ChapterNumber),
			ResourceType: "chapter",
		}
	}
	for _, existing := range r.chapters {
		if existing.NovelID == c.NovelID && existing.ChapterNumber == c.ChapterNumber {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("chapter number %d already exists in this novel", c.ChapterNumber),
				ResourceType: "chapter",
				ResourceID:   existing.ID,
			}
		}
	}
	c.ID = ids.next("chapter")
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	r.chapters[c.ID] = &cp
	return nil
}

func (r *fakeChapterRepo) GetByID(_ context.Context, id string) (*models.Chapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chapters[id]
	if !ok {
		return nil, fmt.Errorf("chapter %s: %w", id, domain.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (r *fakeChapterRepo) ListByNovel(_ context.Context, novelID string, publishedOnly bool) ([]models.Chapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Chapter
	for _, c := range r.chapters {
		if c.NovelID != novelID {
			continue
		}
		if publishedOnly && !c.IsPublished {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChapterNumber < out[j].ChapterNumber })
	return out, nil
}

func (r *fakeChapterRepo) MaxChapterNumber(_ context.Context, novelID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	max := 0
	for _, c := range r.chapters {
		if c.NovelID == novelID && c.ChapterNumber > max {
			max = c.ChapterNumber
		}
	}
	return max, nil
}

func (r *fakeChapterRepo) Update(_ context.Context, c *models.Chapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.chapters[c.ID]; !ok {
		return fmt.Errorf("chapter %s: %w", c.ID, domain.ErrNotFound)
	}
	cp := *c
	r.chapters[c.ID] = &cp
	return nil
}

func (r *fakeChapterRepo) SetPublished(_ context.Context, id string, published bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chapters[id]
	if !ok {
		return fmt.Errorf("chapter %s: %w", id, domain.ErrNotFound)
	}
	c.IsPublished = published
	return nil
}

func (r *fakeChapterRepo) IncrementViews(_ context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chapters[id]
	if !ok {
		return 0, fmt.Errorf("chapter %s: %w", id, domain.ErrNotFound)
	}
	c.Views++
	return c.Views, nil
}

func (r *fakeChapterRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.chapters[id]; !ok {
		return fmt.Errorf("chapter %s: %w", id, domain.ErrNotFound)
	}
	delete(r.chapters, id)
	return nil
}

// --- engagement ---

type pairKey struct{ userID, novelID string }

type fakeBookmarkRepo struct {
	mu        sync.Mutex
	bookmarks map[pairKey]time.Time
	novels    *fakeNovelRepo
}

func newFakeBookmarkRepo(novels *fakeNovelRepo) *fakeBookmarkRepo {
	return &fakeBookmarkRepo{bookmarks: make(map[pairKey]time.Time), novels: novels}
}

func (r *fakeBookmarkRepo) Set(_ context.Context, userID, novelID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := pairKey{userID, novelID}
	if _, ok := r.bookmarks[key]; !ok {
		r.bookmarks[key] = time.Now()
	}
	return nil
}

func (r *fakeBookmarkRepo) Remove(_ context.Context, userID, novelID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bookmarks, pairKey{userID, novelID})
	return nil
}

func (r *fakeBookmarkRepo) Exists(_ context.Context, userID, novelID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.bookmarks[pairKey{userID, novelID}]
	return ok, nil
}

func (r *fakeBookmarkRepo) ListNovels(ctx context.Context, userID string) ([]models.Novel, error) {
	r.mu.Lock()
	type entry struct {
		novelID string
		at      time.Time
	}
	var entries []entry
	for key, at := range r.bookmarks {
		if key.userID == userID {
			entries = append(entries, entry{key.novelID, at})
		}
	}
	r.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].at.After(entries[j].at) })
	var out []models.Novel
	for _, e := range entries {
		if n, err := r.novels.GetByID(ctx, e.novelID); err == nil {
			out = append(out, *n)
		}
	}
	return out, nil
}

type fakeLikeRepo struct {
	mu     sync.Mutex
	likes  map[pairKey]bool
	novels *fakeNovelRepo
	// failAdjust makes AdjustNovelLikes fail, for rollback tests.
	failAdjust error
	// onAdjust runs at the top of AdjustNovelLikes, to observe state
	// mid-transaction.
	onAdjust func()
}

func newFakeLikeRepo(novels *fakeNovelRepo) *fakeLikeRepo {
	return &fakeLikeRepo{likes: make(map[pairKey]bool), novels: novels}
}

func (r *fakeLikeRepo) Exists(_ context.Context, userID, novelID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.likes[pairKey{userID, novelID}], nil
}

func (r *fakeLikeRepo) Insert(_ context.Context, userID, novelID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.likes[pairKey{userID, novelID}] = true
	return nil
}

func (r *fakeLikeRepo) Remove(_ context.Context, userID, novelID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.likes, pairKey{userID, novelID})
	return nil
}

func (r *fakeLikeRepo) AdjustNovelLikes(_ context.Context, novelID string, delta int64) (int64, error) {
	if r.onAdjust != nil {
		r.onAdjust()
	}
	if r.failAdjust != nil {
		return 0, r.failAdjust
	}
	return r.novels.adjustLikes(novelID, delta)
}

type fakeRatingRepo struct {
	mu      sync.Mutex
	ratings map[pairKey]*models.Rating
	novels  *fakeNovelRepo
}

func newFakeRatingRepo(novels *fakeNovelRepo) *fakeRatingRepo {
	return &fakeRatingRepo{ratings: make(map[pairKey]*models.Rating), novels: novels}
}

func (r *fakeRatingRepo) Upsert(_ context.Context, rating *models.Rating) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rating
	cp.UpdatedAt = time.Now()
	r.ratings[pairKey{rating.UserID, rating.NovelID}] = &cp
	return nil
}

func (r *fakeRatingRepo) Get(_ context.Context, userID, novelID string) (*models.Rating, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rating, ok := r.ratings[pairKey{userID, novelID}]
	if !ok {
		return nil, fmt.Errorf("rating: %w", domain.ErrNotFound)
	}
	cp := *rating
	return &cp, nil
}

func (r *fakeRatingRepo) RecomputeNovelRating(_ context.Context, novelID string) (float64, int64, error) {
	r.mu.Lock()
	var sum, count int64
	for key, rating := range r.ratings {
		if key.novelID == novelID {
			sum += int64(rating.Score)
			count++
		}
	}
	r.mu.Unlock()

	var avg float64
	if count > 0 {
		avg = float64(sum) / float64(count)
	}
	r.novels.setRating(novelID, avg, count)
	return avg, count, nil
}

type fakeProgressRepo struct {
	mu       sync.Mutex
	progress map[pairKey]*models.ReadingProgress
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{progress: make(map[pairKey]*models.ReadingProgress)}
}

func (r *fakeProgressRepo) Upsert(_ context.Context, p *models.ReadingProgress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	cp.UpdatedAt = time.Now()
	r.progress[pairKey{p.UserID, p.NovelID}] = &cp
	return nil
}

func (r *fakeProgressRepo) Get(_ context.Context, userID, novelID string) (*models.ReadingProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.progress[pairKey{userID, novelID}]
	if !ok {
		return nil, fmt.Errorf("reading progress: %w", domain.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

// --- shared fixture ---

type fixture struct {
	profiles  *fakeProfileRepo
	novels    *fakeNovelRepo
	chapters  *fakeChapterRepo
	bookmarks *fakeBookmarkRepo
	likes     *fakeLikeRepo
	ratings   *fakeRatingRepo
	progress  *fakeProgressRepo
	tx        *fakeTxManager
	cache     *catalog.Cache
}

func newFixture() *fixture {
	novels := newFakeNovelRepo()
	return &fixture{
		profiles:  newFakeProfileRepo(),
		novels:    novels,
		chapters:  newFakeChapterRepo(),
		bookmarks: newFakeBookmarkRepo(novels),
		likes:     newFakeLikeRepo(novels),
		ratings:   newFakeRatingRepo(novels),
		progress:  newFakeProgressRepo(),
		tx:        &fakeTxManager{},
		cache:     catalog.New(testLogger()),
	}
}

func (f *fixture) addProfile(id, username string, role models.Role) *models.Profile {
	p := &models.Profile{ID: id, Username: username, Email: username + "@example.com", Role: role}
	if err := f.profiles.Create(context.Background(), p); err != nil {
		panic(err)
	}
	return p
}

func (f *fixture) addNovel(authorID, title string, status models.NovelStatus) *models.Novel {
	n := &models.Novel{
		AuthorID:   authorID,
		AuthorName: authorID,
		Title:      title,
		Genre:      "Fantasy",
		Status:     status,
		Tags:       []string{},
		Language:   "en",
	}
	if err := f.novels.Create(context.Background(), n); err != nil {
		panic(err)
	}
	if n.Published() {
		f.cache.Add(*n)
	}
	return n
}

func (f *fixture) addChapter(novelID string, number int, published bool) *models.Chapter {
	c := &models.Chapter{
		NovelID:       novelID,
		ChapterNumber: number,
		Title:         fmt.Sprintf("Chapter %d", number),
		Content:       "...",
		IsPublished:   published,
	}
	if err := f.chapters.Create(context.Background(), c); err != nil {
		panic(err)
	}
	return c
}
