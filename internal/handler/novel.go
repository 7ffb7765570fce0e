package handler

import (
	"log/slog"
	"net/http"

	"jread/internal/catalog"
	"jread/internal/domain/services"
	"jread/internal/httputil"
)

// NovelHandler handles HTTP requests for novel operations
type NovelHandler struct {
	novelService services.NovelService
	logger       *slog.Logger
}

// NewNovelHandler creates a new novel handler
func NewNovelHandler(novelService services.NovelService, logger *slog.Logger) *NovelHandler {
	return &NovelHandler{
		novelService: novelService,
		logger:       logger,
	}
}

// Browse handles GET /api/novels
// Query parameters: genre, sort (latest|rating|views), search.
func (h *NovelHandler) Browse(w http.ResponseWriter, r *http.Request) {
	q := catalog.Query{
		Genre:  r.URL.Query().Get("genre"),
		Sort:   catalog.SortKey(r.URL.Query().Get("sort")),
		Search: r.URL.Query().Get("search"),
	}

	novels := h.novelService.Browse(q)
	httputil.RespondJSON(w, http.StatusOK, novels)
}

// Genres handles GET /api/novels/genres
func (h *NovelHandler) Genres(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.novelService.Genres())
}

// GetNovel handles GET /api/novels/{id}
func (h *NovelHandler) GetNovel(w http.ResponseWriter, r *http.Request) {
	novel, err := h.novelService.GetNovel(r.Context(), r.PathValue("id"), httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, novel)
}

// RecordView handles POST /api/novels/{id}/view
func (h *NovelHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	views, err := h.novelService.RecordNovelView(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]int64{"views": views})
}

// ListOwn handles GET /api/me/novels
func (h *NovelHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	novels, err := h.novelService.ListOwn(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, novels)
}

// CreateNovel handles POST /api/novels
func (h *NovelHandler) CreateNovel(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req services.CreateNovelRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		return
	}

	novel, err := h.novelService.CreateNovel(r.Context(), userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, novel)
}

// UpdateNovel handles PATCH /api/novels/{id}
func (h *NovelHandler) UpdateNovel(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req services.UpdateNovelRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		return
	}

	novel, err := h.novelService.UpdateNovel(r.Context(), r.PathValue("id"), userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, novel)
}

// Publish handles POST /api/novels/{id}/publish
func (h *NovelHandler) Publish(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	novel, err := h.novelService.Publish(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, novel)
}

// Unpublish handles POST /api/novels/{id}/unpublish
func (h *NovelHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	novel, err := h.novelService.Unpublish(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, novel)
}

// DeleteNovel handles DELETE /api/novels/{id}
func (h *NovelHandler) DeleteNovel(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.novelService.DeleteNovel(r.Context(), r.PathValue("id"), userID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
