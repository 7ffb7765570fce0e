package handler

import (
	"log/slog"
	"net/http"

	"jread/internal/domain/services"
	"jread/internal/httputil"
)

// LibraryHandler handles HTTP requests for reader engagement: bookmarks,
// likes, ratings and reading progress.
type LibraryHandler struct {
	libraryService services.LibraryService
	logger         *slog.Logger
}

// NewLibraryHandler creates a new library handler
func NewLibraryHandler(libraryService services.LibraryService, logger *slog.Logger) *LibraryHandler {
	return &LibraryHandler{
		libraryService: libraryService,
		logger:         logger,
	}
}

// ToggleBookmark handles POST /api/novels/{id}/bookmark
func (h *LibraryHandler) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	bookmarked, err := h.libraryService.ToggleBookmark(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]bool{"bookmarked": bookmarked})
}

// ListOwnBookmarks handles GET /api/me/bookmarks
func (h *LibraryHandler) ListOwnBookmarks(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	novels, err := h.libraryService.ListBookmarks(r.Context(), userID, userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, novels)
}

// ListUserBookmarks handles GET /api/users/{id}/bookmarks
func (h *LibraryHandler) ListUserBookmarks(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	novels, err := h.libraryService.ListBookmarks(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, novels)
}

// ToggleLike handles POST /api/novels/{id}/like
func (h *LibraryHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	state, err := h.libraryService.ToggleLike(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, state)
}

// GetLikeState handles GET /api/novels/{id}/like
func (h *LibraryHandler) GetLikeState(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	state, err := h.libraryService.GetLikeState(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, state)
}

// Rate handles PUT /api/novels/{id}/rating
func (h *LibraryHandler) Rate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req services.RateRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		return
	}

	state, err := h.libraryService.Rate(r.Context(), userID, r.PathValue("id"), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, state)
}

// GetRating handles GET /api/novels/{id}/rating
func (h *LibraryHandler) GetRating(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	state, err := h.libraryService.GetRating(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, state)
}

// SaveProgress handles PUT /api/novels/{id}/progress
func (h *LibraryHandler) SaveProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req services.ProgressRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		return
	}

	if err := h.libraryService.SaveProgress(r.Context(), userID, r.PathValue("id"), &req); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetProgress handles GET /api/novels/{id}/progress
func (h *LibraryHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	progress, err := h.libraryService.GetProgress(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, progress)
}
