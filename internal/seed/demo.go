package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"jread/internal/domain/models"
	"jread/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Fixed IDs so re-running the seeder is idempotent. These are not real
// Supabase auth users; pass real IDs from the admin API when testing login.
const (
	DemoOwnerID  = "00000000-0000-0000-0000-000000000001"
	DemoAdminID  = "00000000-0000-0000-0000-000000000002"
	DemoAuthorID = "00000000-0000-0000-0000-000000000003"
	DemoReaderID = "00000000-0000-0000-0000-000000000004"
)

// DemoSeeder inserts a small cast of users, two novels with chapters, and
// some engagement so the frontend has something to render on first run.
type DemoSeeder struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewDemoSeeder creates a new demo data seeder
func NewDemoSeeder(pool *pgxpool.Pool, tables *postgres.TableNames, logger *slog.Logger) *DemoSeeder {
	return &DemoSeeder{
		pool:   pool,
		tables: tables,
		logger: logger,
	}
}

type demoProfile struct {
	id       string
	username string
	email    string
	role     models.Role
	penName  *string
	bio      *string
}

func strPtr(s string) *string { return &s }

// SeedProfiles inserts the demo cast: one of each role.
func (s *DemoSeeder) SeedProfiles(ctx context.Context) error {
	profiles := []demoProfile{
		{DemoOwnerID, "site_owner", "owner@jread.dev", models.RoleOwner, nil, strPtr("Runs the place.")},
		{DemoAdminID, "moderator_kay", "kay@jread.dev", models.RoleAdmin, nil, nil},
		{DemoAuthorID, "quietink", "quietink@jread.dev", models.RoleAuthor,
			strPtr("Quiet Ink"), strPtr("Serial fiction, mostly fantasy. Updates Tuesdays.")},
		{DemoReaderID, "bookworm_77", "reader@jread.dev", models.RoleUser, nil, nil},
	}

	query := `INSERT INTO ` + s.tables.Profiles + ` (id, username, email, role, pen_name, bio)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`

	for _, p := range profiles {
		if _, err := s.pool.Exec(ctx, query, p.id, p.username, p.email, p.role, p.penName, p.bio); err != nil {
			return fmt.Errorf("seed profile %s: %w", p.username, err)
		}
		s.logger.Info("seeded profile", "username", p.username, "role", p.role)
	}
	return nil
}

type demoChapter struct {
	title     string
	content   string
	published bool
}

type demoNovel struct {
	title    string
	synopsis string
	genre    string
	tags     []string
	language string
	status   models.NovelStatus
	chapters []demoChapter
}

// SeedNovels inserts the demo author's novels and chapters. Chapters are
// numbered in slice order starting at 1.
func (s *DemoSeeder) SeedNovels(ctx context.Context) (novelIDs []string, chapterIDs []string, err error) {
	author, err := s.authorName(ctx, DemoAuthorID)
	if err != nil {
		return nil, nil, err
	}

	novels := []demoNovel{
		{
			title:    "The Cartographer's Debt",
			synopsis: "Mapmaker Senna Vale charted a coastline that does not exist, and now the kingdom that paid for the map wants either the coast or her head. A slow-burn fantasy about forgery, tides, and the places ink can take you.",
			genre:    "Fantasy",
			tags:     []string{"slow burn", "maps", "heist"},
			language: "en",
			status:   models.NovelStatusPublished,
			chapters: []demoChapter{
				{"The Commission", "The Guild paid in advance, which should have been Senna's first warning. Nobody pays a cartographer in advance.\n\nShe spread the commission letter across her drafting table and read it a third time...", true},
				{"Low Tide", "The harbor at Brask smelled of tar and old arguments. Senna kept her satchel under her arm and her eyes on the waterline...", true},
				{"The Forger's Proof", "Every forged map carries its maker's signature, whether the maker intends it or not. Senna knew her own tells better than anyone...", true},
				{"Unfinished coastline notes", "Working draft. The strait needs a reason to be impassable in winter.", false},
			},
		},
		{
			title:    "Rust and Rain",
			synopsis: "A salvage diver on a drowned orbital station keeps finding rooms that were never on the blueprints.",
			genre:    "Sci-Fi",
			tags:     []string{"space", "mystery"},
			language: "en",
			status:   models.NovelStatusPublished,
			chapters: []demoChapter{
				{"Descent", "The station had been underwater for forty years, which was strange, because stations are not supposed to be underwater at all...", true},
				{"Deck Nine", "Deck Nine did not appear on any blueprint Mara had ever been sold. That made it the most interesting place on the wreck...", true},
			},
		},
		{
			title:    "Draft: The Winter Ledger",
			synopsis: "Early outline for an accounting-house mystery. Not ready.",
			genre:    "Mystery",
			tags:     []string{},
			language: "en",
			status:   models.NovelStatusDraft,
			chapters: nil,
		},
	}

	novelQuery := `INSERT INTO ` + s.tables.Novels + ` (author_id, author_name, title, synopsis, genre, tags, language, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	chapterQuery := `INSERT INTO ` + s.tables.Chapters + ` (novel_id, chapter_number, title, content, is_published)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	for _, n := range novels {
		var novelID string
		err := s.pool.QueryRow(ctx, novelQuery,
			DemoAuthorID, author, n.title, n.synopsis, n.genre, n.tags, n.language, n.status,
		).Scan(&novelID)
		if err != nil {
			return nil, nil, fmt.Errorf("seed novel %q: %w", n.title, err)
		}
		novelIDs = append(novelIDs, novelID)

		for i, ch := range n.chapters {
			var chapterID string
			err := s.pool.QueryRow(ctx, chapterQuery, novelID, i+1, ch.title, ch.content, ch.published).Scan(&chapterID)
			if err != nil {
				return nil, nil, fmt.Errorf("seed chapter %q: %w", ch.title, err)
			}
			chapterIDs = append(chapterIDs, chapterID)
		}

		s.logger.Info("seeded novel", "title", n.title, "status", n.status, "chapters", len(n.chapters))
	}

	return novelIDs, chapterIDs, nil
}

// SeedEngagement gives the first novel a bookmark, a like, a rating and a
// reading-progress row from the demo reader, plus one comment thread on its
// first chapter. Novel counters are updated to match.
func (s *DemoSeeder) SeedEngagement(ctx context.Context, novelIDs, chapterIDs []string) error {
	if len(novelIDs) == 0 || len(chapterIDs) == 0 {
		return nil
	}
	novelID := novelIDs[0]
	chapterID := chapterIDs[0]

	steps := []struct {
		desc  string
		query string
		args  []interface{}
	}{
		{"bookmark", `INSERT INTO ` + s.tables.Bookmarks + ` (user_id, novel_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			[]interface{}{DemoReaderID, novelID}},
		{"like", `INSERT INTO ` + s.tables.Likes + ` (user_id, novel_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			[]interface{}{DemoReaderID, novelID}},
		{"rating", `INSERT INTO ` + s.tables.Ratings + ` (user_id, novel_id, score) VALUES ($1, $2, $3) ON CONFLICT (user_id, novel_id) DO UPDATE SET score = $3`,
			[]interface{}{DemoReaderID, novelID, 5}},
		{"progress", `INSERT INTO ` + s.tables.ReadingProgress + ` (user_id, novel_id, chapter_id) VALUES ($1, $2, $3) ON CONFLICT (user_id, novel_id) DO UPDATE SET chapter_id = $3`,
			[]interface{}{DemoReaderID, novelID, chapterID}},
		{"novel counters", `UPDATE ` + s.tables.Novels + ` SET
			likes = (SELECT COUNT(*) FROM ` + s.tables.Likes + ` WHERE novel_id = $1),
			rating_avg = COALESCE((SELECT AVG(score) FROM ` + s.tables.Ratings + ` WHERE novel_id = $1), 0),
			rating_count = (SELECT COUNT(*) FROM ` + s.tables.Ratings + ` WHERE novel_id = $1)
			WHERE id = $1`,
			[]interface{}{novelID}},
	}

	for _, st := range steps {
		if _, err := s.pool.Exec(ctx, st.query, st.args...); err != nil {
			return fmt.Errorf("seed %s: %w", st.desc, err)
		}
	}

	// One comment and one reply on the first chapter
	var parentID string
	err := s.pool.QueryRow(ctx,
		`INSERT INTO `+s.tables.Comments+` (chapter_id, user_id, content) VALUES ($1, $2, $3) RETURNING id`,
		chapterID, DemoReaderID, "Paying a cartographer in advance, classic mistake. Hooked already.",
	).Scan(&parentID)
	if err != nil {
		return fmt.Errorf("seed comment: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO `+s.tables.Comments+` (chapter_id, user_id, parent_id, content) VALUES ($1, $2, $3, $4)`,
		chapterID, DemoAuthorID, parentID, "Thanks for reading! Chapter 2 goes up Tuesday.",
	)
	if err != nil {
		return fmt.Errorf("seed reply: %w", err)
	}

	s.logger.Info("seeded engagement", "novel_id", novelID)
	return nil
}

// SeedChangelogs inserts the release history shown on the public changelog
// page.
func (s *DemoSeeder) SeedChangelogs(ctx context.Context) error {
	releases := []struct {
		version string
		date    time.Time
		entries []models.ChangelogEntry
	}{
		{
			version: "0.2.0",
			date:    time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC),
			entries: []models.ChangelogEntry{
				{Type: models.ChangelogNew, Text: "Chapter editor now auto-saves drafts while you type"},
				{Type: models.ChangelogNew, Text: "Cover image and avatar uploads"},
				{Type: models.ChangelogImproved, Text: "Browse page filters by genre and sorts by latest, rating or views"},
				{Type: models.ChangelogFixed, Text: "Like counts no longer drift after rapid toggling"},
			},
		},
		{
			version: "0.1.0",
			date:    time.Date(2026, 6, 3, 0, 0, 0, 0, time.UTC),
			entries: []models.ChangelogEntry{
				{Type: models.ChangelogNew, Text: "Initial release: browse, read, bookmark, like, rate"},
				{Type: models.ChangelogNew, Text: "Author dashboard with draft and publish flow"},
			},
		},
	}

	query := `INSERT INTO ` + s.tables.Changelogs + ` (version, released_on, entries)
		VALUES ($1, $2, $3)
		ON CONFLICT (version) DO NOTHING`

	for _, rel := range releases {
		entries, err := json.Marshal(rel.entries)
		if err != nil {
			return fmt.Errorf("encode changelog %s: %w", rel.version, err)
		}
		if _, err := s.pool.Exec(ctx, query, rel.version, rel.date, entries); err != nil {
			return fmt.Errorf("seed changelog %s: %w", rel.version, err)
		}
	}

	s.logger.Info("seeded changelogs", "releases", len(releases))
	return nil
}

func (s *DemoSeeder) authorName(ctx context.Context, userID string) (string, error) {
	var username string
	var penName *string
	err := s.pool.QueryRow(ctx,
		`SELECT username, pen_name FROM `+s.tables.Profiles+` WHERE id = $1`, userID,
	).Scan(&username, &penName)
	if err != nil {
		return "", fmt.Errorf("load author profile: %w", err)
	}
	if penName != nil && *penName != "" {
		return *penName, nil
	}
	return username, nil
}
