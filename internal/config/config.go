package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port            string
	Environment     string
	SupabaseURL     string
	SupabaseKey     string // service role key, used by the admin client
	SupabaseDBURL   string
	SupabaseJWKSURL string // Constructed from SupabaseURL + /auth/v1/.well-known/jwks.json
	CORSOrigins     string
	TablePrefix     string
	// Object storage (cover images, profile pictures)
	S3Bucket      string
	S3Region      string
	S3AccessKeyID string
	S3SecretKey   string
	MaxUploadMB   int64
	// Editor auto-save timing
	AutosaveDebounce   time.Duration
	AutosaveRetryDelay time.Duration
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	supabaseURL := getEnv("SUPABASE_URL", "")

	// Construct JWKS URL from Supabase URL
	jwksURL := supabaseURL + "/auth/v1/.well-known/jwks.json"

	return &Config{
		Port:               getEnv("PORT", "8080"),
		Environment:        env,
		SupabaseURL:        supabaseURL,
		SupabaseKey:        getEnv("SUPABASE_KEY", ""),
		SupabaseDBURL:      getEnv("SUPABASE_DB_URL", ""),
		SupabaseJWKSURL:    jwksURL,
		CORSOrigins:        getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:        getTablePrefix(env),
		S3Bucket:           getEnv("AWS_S3_BUCKET", ""),
		S3Region:           getEnv("AWS_REGION", "us-east-1"),
		S3AccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		S3SecretKey:        getEnv("AWS_SECRET_ACCESS_KEY", ""),
		MaxUploadMB:        getEnvInt64("MAX_UPLOAD_MB", 10),
		AutosaveDebounce:   getEnvDuration("AUTOSAVE_DEBOUNCE", DefaultAutosaveDebounce),
		AutosaveRetryDelay: getEnvDuration("AUTOSAVE_RETRY_DELAY", DefaultAutosaveRetryDelay),
	}
}

// Validate reports the configuration errors that make the service unable to
// start. The Supabase project URL, service key and database URL have no usable
// defaults; without them every route would fail, so startup is blocked with a
// remediation message instead.
func (c *Config) Validate() error {
	if c.SupabaseURL == "" {
		return errors.New("SUPABASE_URL is not set: copy your project URL from the Supabase dashboard into .env")
	}
	if c.SupabaseKey == "" {
		return errors.New("SUPABASE_KEY is not set: copy the service role key from the Supabase dashboard into .env")
	}
	if c.SupabaseDBURL == "" {
		return errors.New("SUPABASE_DB_URL is not set: copy the Postgres connection string from the Supabase dashboard into .env")
	}
	return nil
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
