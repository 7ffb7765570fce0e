package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Drops every application table for the current environment's prefix.
// Heavier hammer than `seed --drop-tables`: no .env loading, no config
// validation, works with only SUPABASE_DB_URL set.
func main() {
	dbURL := os.Getenv("SUPABASE_DB_URL")
	if dbURL == "" {
		log.Fatal("SUPABASE_DB_URL environment variable is required")
	}

	// Read environment to determine table prefix
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "dev" // Default to dev
	}

	if env == "prod" {
		log.Fatal("Refusing to drop prod tables; use a migration instead")
	}
	prefix := env + "_"

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = db.Close() }() // Error ignored: script exiting

	// Drop in dependency order; CASCADE handles the rest
	dropSQL := fmt.Sprintf(`
		DROP TABLE IF EXISTS %schangelogs CASCADE;
		DROP TABLE IF EXISTS %sreading_progress CASCADE;
		DROP TABLE IF EXISTS %sratings CASCADE;
		DROP TABLE IF EXISTS %slikes CASCADE;
		DROP TABLE IF EXISTS %sbookmarks CASCADE;
		DROP TABLE IF EXISTS %scomments CASCADE;
		DROP TABLE IF EXISTS %schapters CASCADE;
		DROP TABLE IF EXISTS %snovels CASCADE;
		DROP TABLE IF EXISTS %sprofiles CASCADE;
	`, prefix, prefix, prefix, prefix, prefix, prefix, prefix, prefix, prefix)

	if _, err := db.Exec(dropSQL); err != nil {
		log.Fatalf("Failed to drop tables: %v", err)
	}

	log.Printf("Dropped all %s* tables", prefix)
}
