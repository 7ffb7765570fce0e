package handler

import (
	"log/slog"
	"net/http"

	"jread/internal/domain/services"
	"jread/internal/httputil"
)

// ChapterHandler handles HTTP requests for chapter operations
type ChapterHandler struct {
	chapterService services.ChapterService
	logger         *slog.Logger
}

// NewChapterHandler creates a new chapter handler
func NewChapterHandler(chapterService services.ChapterService, logger *slog.Logger) *ChapterHandler {
	return &ChapterHandler{
		chapterService: chapterService,
		logger:         logger,
	}
}

// ListChapters handles GET /api/novels/{id}/chapters
func (h *ChapterHandler) ListChapters(w http.ResponseWriter, r *http.Request) {
	chapters, err := h.chapterService.ListChapters(r.Context(), r.PathValue("id"), httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, chapters)
}

// ReadChapter handles GET /api/chapters/{id}
func (h *ChapterHandler) ReadChapter(w http.ResponseWriter, r *http.Request) {
	chapter, err := h.chapterService.ReadChapter(r.Context(), r.PathValue("id"), httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, chapter)
}

// Publish handles POST /api/chapters/{id}/publish
func (h *ChapterHandler) Publish(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	chapter, err := h.chapterService.PublishChapter(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, chapter)
}

// Unpublish handles POST /api/chapters/{id}/unpublish
func (h *ChapterHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	chapter, err := h.chapterService.UnpublishChapter(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, chapter)
}

// DeleteChapter handles DELETE /api/chapters/{id}
func (h *ChapterHandler) DeleteChapter(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.chapterService.DeleteChapter(r.Context(), r.PathValue("id"), userID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
