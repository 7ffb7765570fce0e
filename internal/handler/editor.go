package handler

import (
	"log/slog"
	"net/http"

	"jread/internal/domain/services"
	"jread/internal/httputil"
)

// EditorHandler handles HTTP requests for editor sessions. The chapter
// editor talks to these endpoints: open a session, stream edits into it,
// poll the save indicator, save manually, and close.
type EditorHandler struct {
	editorService services.EditorService
	logger        *slog.Logger
}

// NewEditorHandler creates a new editor handler
func NewEditorHandler(editorService services.EditorService, logger *slog.Logger) *EditorHandler {
	return &EditorHandler{
		editorService: editorService,
		logger:        logger,
	}
}

// Open handles POST /api/editor/sessions
func (h *EditorHandler) Open(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req services.OpenEditorRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		return
	}

	status, err := h.editorService.Open(r.Context(), userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, status)
}

// Edit handles POST /api/editor/sessions/{id}/edits
func (h *EditorHandler) Edit(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req services.EditRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		return
	}

	status, err := h.editorService.Edit(r.Context(), r.PathValue("id"), userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, status)
}

// Status handles GET /api/editor/sessions/{id}
func (h *EditorHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	status, err := h.editorService.Status(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, status)
}

// Save handles POST /api/editor/sessions/{id}/save
func (h *EditorHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	status, err := h.editorService.Save(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, status)
}

// Close handles DELETE /api/editor/sessions/{id}
func (h *EditorHandler) Close(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.editorService.Close(r.Context(), r.PathValue("id"), userID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
