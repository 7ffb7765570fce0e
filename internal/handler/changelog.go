package handler

import (
	"log/slog"
	"net/http"

	"jread/internal/domain/services"
	"jread/internal/httputil"
)

// ChangelogHandler handles HTTP requests for the platform changelog
type ChangelogHandler struct {
	changelogService services.ChangelogService
	logger           *slog.Logger
}

// NewChangelogHandler creates a new changelog handler
func NewChangelogHandler(changelogService services.ChangelogService, logger *slog.Logger) *ChangelogHandler {
	return &ChangelogHandler{
		changelogService: changelogService,
		logger:           logger,
	}
}

// List handles GET /api/changelog
func (h *ChangelogHandler) List(w http.ResponseWriter, r *http.Request) {
	changelogs, err := h.changelogService.List(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, changelogs)
}

// Create handles POST /api/changelog
func (h *ChangelogHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req services.CreateChangelogRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		return
	}

	changelog, err := h.changelogService.Create(r.Context(), userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, changelog)
}
