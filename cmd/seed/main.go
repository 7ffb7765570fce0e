package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"jread/internal/auth"
	"jread/internal/config"
	"jread/internal/repository/postgres"
	"jread/internal/seed"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed demo data")
	clearData := flag.Bool("clear-data", false, "Clear all rows (keep schema)")
	authUsers := flag.Bool("auth-users", false, "Also create the demo accounts in Supabase Auth (requires SUPABASE_KEY)")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("🚫 BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if *clearData {
		log.Printf("🧹 Clearing data only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	} else if *schemaOnly {
		log.Printf("🏗️  Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	} else {
		log.Printf("🌱 Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	}

	// Create database connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Drop tables if requested
	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	// Run schema to ensure tables exist
	log.Println("📋 Ensuring database schema is up to date...")
	if err := runSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	// Exit early if schema-only mode
	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	// Exit early if clear-data mode (just clear and exit)
	if *clearData {
		log.Println("🧹 Clearing existing rows...")
		if err := clearAllData(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Println("✅ Data cleared successfully")
		return
	}

	seeder := seed.NewDemoSeeder(pool, tables, logger)

	log.Println("👤 Seeding profiles...")
	if err := seeder.SeedProfiles(ctx); err != nil {
		log.Fatalf("Failed to seed profiles: %v", err)
	}

	log.Println("📚 Seeding novels and chapters...")
	novelIDs, chapterIDs, err := seeder.SeedNovels(ctx)
	if err != nil {
		log.Fatalf("Failed to seed novels: %v", err)
	}

	log.Println("⭐ Seeding bookmarks, likes, ratings and comments...")
	if err := seeder.SeedEngagement(ctx, novelIDs, chapterIDs); err != nil {
		log.Fatalf("Failed to seed engagement: %v", err)
	}

	log.Println("📰 Seeding changelog...")
	if err := seeder.SeedChangelogs(ctx); err != nil {
		log.Fatalf("Failed to seed changelogs: %v", err)
	}

	// Optionally mirror the demo cast into Supabase Auth so the accounts can
	// actually log in. The auth user IDs will differ from the fixed demo
	// profile IDs; this is for manual testing of the login flow only.
	if *authUsers {
		log.Println("🔐 Creating demo accounts in Supabase Auth...")
		adminClient := auth.NewAdminClient(cfg.SupabaseURL, cfg.SupabaseKey)
		for _, email := range []string{"owner@jread.dev", "kay@jread.dev", "quietink@jread.dev", "reader@jread.dev"} {
			id, err := adminClient.CreateUser(email, "jread-demo-password")
			if err != nil {
				log.Printf("⚠️  Could not create auth user %s: %v", email, err)
				continue
			}
			log.Printf("✅ Auth user %s (ID: %s)", email, id)
		}
	}

	log.Println("🎉 Seeding complete!")
}

// runSchema creates tables if they don't exist
func runSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, tablePrefix string) error {
	// Enable UUID extension
	_, err := pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"")
	if err != nil {
		return err
	}

	// Create profiles table. The ID is the Supabase auth user ID, so there
	// is no DEFAULT: rows are always created from a verified JWT subject.
	createProfiles := `
		CREATE TABLE IF NOT EXISTS ` + tables.Profiles + ` (
			id UUID PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'USER',
			pen_name TEXT,
			bio TEXT,
			avatar_url TEXT,
			bookmarks_public BOOLEAN NOT NULL DEFAULT TRUE,
			activity_public BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createProfiles); err != nil {
		return err
	}

	// Create novels table
	createNovels := `
		CREATE TABLE IF NOT EXISTS ` + tables.Novels + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			author_id UUID NOT NULL REFERENCES ` + tables.Profiles + `(id) ON DELETE CASCADE,
			author_name TEXT NOT NULL,
			title TEXT NOT NULL,
			synopsis TEXT NOT NULL DEFAULT '',
			genre TEXT NOT NULL DEFAULT '',
			tags TEXT[] NOT NULL DEFAULT '{}',
			cover_url TEXT,
			language TEXT NOT NULL DEFAULT 'en',
			status TEXT NOT NULL DEFAULT 'DRAFT',
			views BIGINT NOT NULL DEFAULT 0,
			likes BIGINT NOT NULL DEFAULT 0,
			rating_avg DOUBLE PRECISION NOT NULL DEFAULT 0,
			rating_count BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createNovels); err != nil {
		return err
	}

	// Create chapters table. UNIQUE(novel_id, chapter_number) backs the
	// numbering retry in the editor service.
	createChapters := `
		CREATE TABLE IF NOT EXISTS ` + tables.Chapters + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			novel_id UUID NOT NULL REFERENCES ` + tables.Novels + `(id) ON DELETE CASCADE,
			chapter_number INTEGER NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT '',
			is_published BOOLEAN NOT NULL DEFAULT FALSE,
			views BIGINT NOT NULL DEFAULT 0,
			likes BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			UNIQUE(novel_id, chapter_number)
		)
	`
	if _, err := pool.Exec(ctx, createChapters); err != nil {
		return err
	}

	// Create comments table
	createComments := `
		CREATE TABLE IF NOT EXISTS ` + tables.Comments + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			chapter_id UUID NOT NULL REFERENCES ` + tables.Chapters + `(id) ON DELETE CASCADE,
			user_id UUID NOT NULL REFERENCES ` + tables.Profiles + `(id) ON DELETE CASCADE,
			parent_id UUID REFERENCES ` + tables.Comments + `(id) ON DELETE CASCADE,
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createComments); err != nil {
		return err
	}

	// Per-user engagement tables, all keyed UNIQUE(user_id, novel_id)
	createBookmarks := `
		CREATE TABLE IF NOT EXISTS ` + tables.Bookmarks + ` (
			user_id UUID NOT NULL REFERENCES ` + tables.Profiles + `(id) ON DELETE CASCADE,
			novel_id UUID NOT NULL REFERENCES ` + tables.Novels + `(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			PRIMARY KEY (user_id, novel_id)
		)
	`
	if _, err := pool.Exec(ctx, createBookmarks); err != nil {
		return err
	}

	createLikes := `
		CREATE TABLE IF NOT EXISTS ` + tables.Likes + ` (
			user_id UUID NOT NULL REFERENCES ` + tables.Profiles + `(id) ON DELETE CASCADE,
			novel_id UUID NOT NULL REFERENCES ` + tables.Novels + `(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			PRIMARY KEY (user_id, novel_id)
		)
	`
	if _, err := pool.Exec(ctx, createLikes); err != nil {
		return err
	}

	createRatings := `
		CREATE TABLE IF NOT EXISTS ` + tables.Ratings + ` (
			user_id UUID NOT NULL REFERENCES ` + tables.Profiles + `(id) ON DELETE CASCADE,
			novel_id UUID NOT NULL REFERENCES ` + tables.Novels + `(id) ON DELETE CASCADE,
			score INTEGER NOT NULL CHECK (score BETWEEN 1 AND 5),
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			PRIMARY KEY (user_id, novel_id)
		)
	`
	if _, err := pool.Exec(ctx, createRatings); err != nil {
		return err
	}

	createProgress := `
		CREATE TABLE IF NOT EXISTS ` + tables.ReadingProgress + ` (
			user_id UUID NOT NULL REFERENCES ` + tables.Profiles + `(id) ON DELETE CASCADE,
			novel_id UUID NOT NULL REFERENCES ` + tables.Novels + `(id) ON DELETE CASCADE,
			chapter_id UUID NOT NULL REFERENCES ` + tables.Chapters + `(id) ON DELETE CASCADE,
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			PRIMARY KEY (user_id, novel_id)
		)
	`
	if _, err := pool.Exec(ctx, createProgress); err != nil {
		return err
	}

	// Create changelogs table
	createChangelogs := `
		CREATE TABLE IF NOT EXISTS ` + tables.Changelogs + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			version TEXT NOT NULL UNIQUE,
			released_on TIMESTAMPTZ NOT NULL,
			entries JSONB NOT NULL
		)
	`
	if _, err := pool.Exec(ctx, createChangelogs); err != nil {
		return err
	}

	// Create indexes
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `novels_status ON ` + tables.Novels + `(status)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `novels_author ON ` + tables.Novels + `(author_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `chapters_novel ON ` + tables.Chapters + `(novel_id, chapter_number)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `comments_chapter ON ` + tables.Comments + `(chapter_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `comments_parent ON ` + tables.Comments + `(parent_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `bookmarks_user ON ` + tables.Bookmarks + `(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `ratings_novel ON ` + tables.Ratings + `(novel_id)`,
	}

	for _, indexSQL := range indexes {
		if _, err := pool.Exec(ctx, indexSQL); err != nil {
			return err
		}
	}

	return nil
}

// dropAllTables drops all tables in reverse order (to respect foreign keys)
func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	tableNames := []string{
		tables.Changelogs,
		tables.ReadingProgress,
		tables.Ratings,
		tables.Likes,
		tables.Bookmarks,
		tables.Comments,
		tables.Chapters,
		tables.Novels,
		tables.Profiles,
	}

	for _, table := range tableNames {
		dropSQL := "DROP TABLE IF EXISTS " + table + " CASCADE"
		if _, err := pool.Exec(ctx, dropSQL); err != nil {
			return err
		}
		log.Printf("  ✓ Dropped %s", table)
	}

	return nil
}

// clearAllData empties every table without touching the schema. Profiles go
// last so the cascades do most of the work.
func clearAllData(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	tableNames := []string{
		tables.Changelogs,
		tables.ReadingProgress,
		tables.Ratings,
		tables.Likes,
		tables.Bookmarks,
		tables.Comments,
		tables.Chapters,
		tables.Novels,
		tables.Profiles,
	}

	for _, table := range tableNames {
		if _, err := pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}

	return nil
}
