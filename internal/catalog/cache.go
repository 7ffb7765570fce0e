// Package catalog holds the in-memory list of published novels that the home
// page and search are served from. The list is fetched once at startup and
// kept current by the services that mutate novels; counter updates are
// applied optimistically and rolled back by the caller when the backing write
// fails.
package catalog

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"jread/internal/domain/models"
	"jread/internal/domain/repositories"
)

// SortKey selects the descending ordering of a listing.
type SortKey string

const (
	SortLatest SortKey = "latest"
	SortRating SortKey = "rating"
	SortViews  SortKey = "views"
)

// Query is one listing request. Zero values mean "no filter".
type Query struct {
	Genre  string  // exact genre match; empty or "All" disables the filter
	Sort   SortKey // defaults to SortLatest
	Search string  // case-insensitive substring over title, author name, tags
}

// Cache is the shared novel list. All public methods are safe for concurrent
// use; reads get copies, never aliases into the cache's own slice.
type Cache struct {
	mu     sync.RWMutex
	novels []models.Novel // fetch order, the tie-break order for sorts
	index  map[string]int // novel ID -> position in novels
	logger *slog.Logger
}

// New returns an empty cache. Call Load before serving listings.
func New(logger *slog.Logger) *Cache {
	return &Cache{
		index:  make(map[string]int),
		logger: logger,
	}
}

// Load replaces the cache contents with the published list from the
// repository.
func (c *Cache) Load(ctx context.Context, repo repositories.NovelRepository) error {
	novels, err := repo.ListPublished(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.novels = novels
	c.reindexLocked()
	c.logger.Info("novel catalog loaded", "count", len(novels))
	return nil
}

func (c *Cache) reindexLocked() {
	c.index = make(map[string]int, len(c.novels))
	for i := range c.novels {
		c.index[c.novels[i].ID] = i
	}
}

// List produces the display list for a query: filter by genre, then filter by
// search, then stable-sort descending by the sort key. Ties keep fetch order.
func (c *Cache) List(q Query) []models.Novel {
	c.mu.RLock()
	out := make([]models.Novel, 0, len(c.novels))
	for i := range c.novels {
		n := &c.novels[i]
		if !matchesGenre(n, q.Genre) {
			continue
		}
		if !matchesSearch(n, q.Search) {
			continue
		}
		out = append(out, *n)
	}
	c.mu.RUnlock()

	sortNovels(out, q.Sort)
	return out
}

// Get returns a snapshot of a single cached novel.
func (c *Cache) Get(id string) (models.Novel, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.index[id]
	if !ok {
		return models.Novel{}, false
	}
	return c.novels[i], true
}

// Add inserts a newly published novel at the front (newest-first fetch
// order). Adding an already present novel replaces it instead.
func (c *Cache) Add(novel models.Novel) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i, ok := c.index[novel.ID]; ok {
		c.novels[i] = novel
		return
	}
	c.novels = append([]models.Novel{novel}, c.novels...)
	c.reindexLocked()
}

// Replace updates a cached novel in place, keeping its fetch position.
// A miss is ignored; unpublished novels are simply not cached.
func (c *Cache) Replace(novel models.Novel) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i, ok := c.index[novel.ID]; ok {
		c.novels[i] = novel
	}
}

// Remove drops a novel from the listing (deleted or unpublished).
func (c *Cache) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[id]
	if !ok {
		return
	}
	c.novels = append(c.novels[:i], c.novels[i+1:]...)
	c.reindexLocked()
}

// AdjustLikes applies a like-count delta. The caller applies the inverse
// delta to roll back when the backing write fails.
func (c *Cache) AdjustLikes(id string, delta int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i, ok := c.index[id]; ok {
		c.novels[i].Likes += delta
		if c.novels[i].Likes < 0 {
			c.novels[i].Likes = 0
		}
	}
}

// SetLikes overwrites the like count with the authoritative value from the
// database after a toggle commits.
func (c *Cache) SetLikes(id string, likes int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i, ok := c.index[id]; ok {
		c.novels[i].Likes = likes
	}
}

// SetRating overwrites the novel's derived rating fields.
func (c *Cache) SetRating(id string, avg float64, count int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i, ok := c.index[id]; ok {
		c.novels[i].RatingAvg = avg
		c.novels[i].RatingCount = count
	}
}

// SetViews overwrites the view counter.
func (c *Cache) SetViews(id string, views int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i, ok := c.index[id]; ok {
		c.novels[i].Views = views
	}
}

// Genres returns the distinct genres present, sorted, for the filter bar.
func (c *Cache) Genres() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]struct{})
	for i := range c.novels {
		if g := c.novels[i].Genre; g != "" {
			seen[g] = struct{}{}
		}
	}

	genres := make([]string, 0, len(seen))
	for g := range seen {
		genres = append(genres, g)
	}
	sort.Strings(genres)
	return genres
}

func matchesGenre(n *models.Novel, genre string) bool {
	if genre == "" || genre == "All" {
		return true
	}
	return n.Genre == genre
}

func matchesSearch(n *models.Novel, search string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	if strings.Contains(strings.ToLower(n.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(n.AuthorName), needle) {
		return true
	}
	for _, tag := range n.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// sortNovels stable-sorts descending by the chosen key. The input arrives in
// fetch order, so stability preserves fetch order on ties.
func sortNovels(novels []models.Novel, key SortKey) {
	switch key {
	case SortRating:
		sort.SliceStable(novels, func(i, j int) bool {
			return novels[i].RatingAvg > novels[j].RatingAvg
		})
	case SortViews:
		sort.SliceStable(novels, func(i, j int) bool {
			return novels[i].Views > novels[j].Views
		})
	case SortLatest, "":
		sort.SliceStable(novels, func(i, j int) bool {
			return novels[i].CreatedAt.After(novels[j].CreatedAt)
		})
	default:
		sort.SliceStable(novels, func(i, j int) bool {
			return novels[i].CreatedAt.After(novels[j].CreatedAt)
		})
	}
}
