package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"jread/internal/auth"
	"jread/internal/authz"
	"jread/internal/autosave"
	"jread/internal/catalog"
	"jread/internal/config"
	"jread/internal/handler"
	"jread/internal/middleware"
	"jread/internal/repository/postgres"
	"jread/internal/service"
	"jread/internal/storage"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	var logOut io.Writer = os.Stdout
	if dir := os.Getenv("LOG_DIR"); dir != "" {
		logFile, err := config.SetupLogFile(dir, 10)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOut = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger) // Set as default logger

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Create JWT verifier for Supabase authentication
	jwtVerifier, err := auth.NewJWTVerifier(cfg.SupabaseJWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	profileRepo := postgres.NewProfileRepository(repoConfig)
	novelRepo := postgres.NewNovelRepository(repoConfig)
	chapterRepo := postgres.NewChapterRepository(repoConfig)
	commentRepo := postgres.NewCommentRepository(repoConfig)
	bookmarkRepo := postgres.NewBookmarkRepository(repoConfig)
	likeRepo := postgres.NewLikeRepository(repoConfig)
	ratingRepo := postgres.NewRatingRepository(repoConfig)
	progressRepo := postgres.NewProgressRepository(repoConfig)
	changelogRepo := postgres.NewChangelogRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Initialize role registry
	registry, err := authz.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to initialize role registry: %v", err)
	}
	logger.Info("role registry initialized")

	// Warm the browse catalog from published novels
	cache := catalog.New(logger)
	if err := cache.Load(ctx, novelRepo); err != nil {
		log.Fatalf("Failed to load novel catalog: %v", err)
	}

	// Supabase admin client (account deletion)
	adminClient := auth.NewAdminClient(cfg.SupabaseURL, cfg.SupabaseKey)

	// Object storage for cover images and avatars. Optional: uploads
	// return 503 when no bucket is configured.
	var imageStore *storage.S3Store
	if cfg.S3Bucket != "" {
		imageStore, err = storage.NewS3Store(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3AccessKeyID, cfg.S3SecretKey)
		if err != nil {
			log.Fatalf("Failed to create S3 store: %v", err)
		}
		logger.Info("object storage configured", "bucket", cfg.S3Bucket, "region", cfg.S3Region)
	} else {
		logger.Warn("AWS_S3_BUCKET not set, image uploads disabled")
	}

	// Create services
	profileService := service.NewProfileService(profileRepo, novelRepo, txManager, adminClient, cache, logger)
	novelService := service.NewNovelService(novelRepo, profileRepo, cache, registry, logger)
	chapterService := service.NewChapterService(chapterRepo, novelRepo, progressRepo, profileRepo, registry, logger)
	editorService := service.NewEditorService(chapterRepo, novelRepo, txManager, autosave.Config{
		Debounce:   cfg.AutosaveDebounce,
		RetryDelay: cfg.AutosaveRetryDelay,
	}, logger)
	libraryService := service.NewLibraryService(bookmarkRepo, likeRepo, ratingRepo, progressRepo, novelRepo, profileRepo, chapterRepo, txManager, cache, logger)
	commentService := service.NewCommentService(commentRepo, chapterRepo, profileRepo, registry, logger)
	changelogService := service.NewChangelogService(changelogRepo, profileRepo, registry, logger)
	adminService := service.NewAdminService(profileRepo, novelRepo, registry, adminClient, cache, logger)

	// Create handlers
	healthHandler := handler.NewHealthHandler(pool)
	profileHandler := handler.NewProfileHandler(profileService, logger)
	novelHandler := handler.NewNovelHandler(novelService, logger)
	chapterHandler := handler.NewChapterHandler(chapterService, logger)
	editorHandler := handler.NewEditorHandler(editorService, logger)
	libraryHandler := handler.NewLibraryHandler(libraryService, logger)
	commentHandler := handler.NewCommentHandler(commentService, logger)
	changelogHandler := handler.NewChangelogHandler(changelogService, logger)
	adminHandler := handler.NewAdminHandler(adminService, logger)
	uploadHandler := handler.NewUploadHandler(imageStore, novelService, profileService, cfg.MaxUploadMB<<20, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", healthHandler.Check)

	// Profile routes
	mux.HandleFunc("POST /api/profiles", profileHandler.CreateProfile)
	mux.HandleFunc("GET /api/profiles/{username}", profileHandler.GetPublicProfile)
	mux.HandleFunc("GET /api/users/me", profileHandler.GetOwnProfile)
	mux.HandleFunc("PATCH /api/users/me", profileHandler.UpdateProfile)
	mux.HandleFunc("DELETE /api/users/me", profileHandler.DeleteAccount)
	mux.HandleFunc("POST /api/users/me/avatar", uploadHandler.UploadAvatar)
	mux.HandleFunc("GET /api/users/{id}/bookmarks", libraryHandler.ListUserBookmarks)

	// Novel routes
	mux.HandleFunc("GET /api/novels", novelHandler.Browse)
	mux.HandleFunc("GET /api/novels/genres", novelHandler.Genres) // Must come before {id} route
	mux.HandleFunc("POST /api/novels", novelHandler.CreateNovel)
	mux.HandleFunc("GET /api/novels/{id}", novelHandler.GetNovel)
	mux.HandleFunc("PATCH /api/novels/{id}", novelHandler.UpdateNovel)
	mux.HandleFunc("DELETE /api/novels/{id}", novelHandler.DeleteNovel)
	mux.HandleFunc("POST /api/novels/{id}/view", novelHandler.RecordView)
	mux.HandleFunc("POST /api/novels/{id}/publish", novelHandler.Publish)
	mux.HandleFunc("POST /api/novels/{id}/unpublish", novelHandler.Unpublish)
	mux.HandleFunc("POST /api/novels/{id}/cover", uploadHandler.UploadCover)
	mux.HandleFunc("GET /api/novels/{id}/chapters", chapterHandler.ListChapters)
	mux.HandleFunc("GET /api/me/novels", novelHandler.ListOwn)

	// Engagement routes (per novel)
	mux.HandleFunc("POST /api/novels/{id}/bookmark", libraryHandler.ToggleBookmark)
	mux.HandleFunc("POST /api/novels/{id}/like", libraryHandler.ToggleLike)
	mux.HandleFunc("GET /api/novels/{id}/like", libraryHandler.GetLikeState)
	mux.HandleFunc("PUT /api/novels/{id}/rating", libraryHandler.Rate)
	mux.HandleFunc("GET /api/novels/{id}/rating", libraryHandler.GetRating)
	mux.HandleFunc("PUT /api/novels/{id}/progress", libraryHandler.SaveProgress)
	mux.HandleFunc("GET /api/novels/{id}/progress", libraryHandler.GetProgress)
	mux.HandleFunc("GET /api/me/bookmarks", libraryHandler.ListOwnBookmarks)

	// Chapter routes
	mux.HandleFunc("GET /api/chapters/{id}", chapterHandler.ReadChapter)
	mux.HandleFunc("POST /api/chapters/{id}/publish", chapterHandler.Publish)
	mux.HandleFunc("POST /api/chapters/{id}/unpublish", chapterHandler.Unpublish)
	mux.HandleFunc("DELETE /api/chapters/{id}", chapterHandler.DeleteChapter)

	// Comment routes
	mux.HandleFunc("GET /api/chapters/{id}/comments", commentHandler.ListComments)
	mux.HandleFunc("POST /api/chapters/{id}/comments", commentHandler.CreateComment)
	mux.HandleFunc("DELETE /api/comments/{id}", commentHandler.DeleteComment)

	// Editor routes (auto-saving draft sessions)
	mux.HandleFunc("POST /api/editor/sessions", editorHandler.Open)
	mux.HandleFunc("GET /api/editor/sessions/{id}", editorHandler.Status)
	mux.HandleFunc("POST /api/editor/sessions/{id}/edits", editorHandler.Edit)
	mux.HandleFunc("POST /api/editor/sessions/{id}/save", editorHandler.Save)
	mux.HandleFunc("DELETE /api/editor/sessions/{id}", editorHandler.Close)

	// Changelog routes
	mux.HandleFunc("GET /api/changelog", changelogHandler.List)
	mux.HandleFunc("POST /api/changelog", changelogHandler.Create)

	// Admin routes
	mux.HandleFunc("GET /api/admin/users", adminHandler.ListUsers)
	mux.HandleFunc("PUT /api/admin/users/{id}/role", adminHandler.ChangeRole)
	mux.HandleFunc("DELETE /api/admin/users/{id}", adminHandler.RemoveUser)

	// Build middleware chain
	var root http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Logging → Recovery → Auth → Routes
	root = middleware.Auth(jwtVerifier, logger)(root)
	root = middleware.Recovery(logger)(root)
	root = middleware.RequestLogger(logger)(root)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
