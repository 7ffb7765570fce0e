package handler

import (
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"jread/internal/domain/services"
	"jread/internal/httputil"
	"jread/internal/storage"
)

// UploadHandler handles image uploads: novel covers and profile pictures.
// Files land in S3 as public objects and the permanent URL is recorded on
// the novel or profile.
type UploadHandler struct {
	store          *storage.S3Store
	novelService   services.NovelService
	profileService services.ProfileService
	maxBytes       int64
	logger         *slog.Logger
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(
	store *storage.S3Store,
	novelService services.NovelService,
	profileService services.ProfileService,
	maxBytes int64,
	logger *slog.Logger,
) *UploadHandler {
	return &UploadHandler{
		store:          store,
		novelService:   novelService,
		profileService: profileService,
		maxBytes:       maxBytes,
		logger:         logger,
	}
}

// UploadCover handles POST /api/novels/{id}/cover
func (h *UploadHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	url, ok := h.storeImage(w, r, storage.PrefixCoverImage, userID)
	if !ok {
		return
	}

	novel, err := h.novelService.SetCover(r.Context(), r.PathValue("id"), userID, url)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, novel)
}

// UploadAvatar handles POST /api/users/me/avatar
func (h *UploadHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	url, ok := h.storeImage(w, r, storage.PrefixProfilePicture, userID)
	if !ok {
		return
	}

	profile, err := h.profileService.SetAvatar(r.Context(), userID, url)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, profile)
}

// storeImage reads the multipart "file" part, checks it is an image, and
// uploads it. On failure it has already written the error response.
func (h *UploadHandler) storeImage(w http.ResponseWriter, r *http.Request, prefix, userID string) (string, bool) {
	if h.store == nil {
		httputil.RespondError(w, http.StatusServiceUnavailable, "uploads are not configured")
		return "", false
	}

	if h.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	}
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "missing file")
		return "", false
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	contentType := header.Header.Get("Content-Type")

	allowedByExt := ext == ".jpg" || ext == ".jpeg" || ext == ".png" || ext == ".webp"
	allowedByMime := strings.HasPrefix(contentType, "image/")
	if !allowedByExt && !allowedByMime {
		httputil.RespondError(w, http.StatusBadRequest, "only jpeg, png and webp images are allowed")
		return "", false
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}

	key, err := h.store.Upload(r.Context(), prefix, userID, header.Filename, file, contentType)
	if err != nil {
		h.logger.Error("image upload failed", "prefix", prefix, "user_id", userID, "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "failed to upload image")
		return "", false
	}

	return h.store.ObjectURL(key), true
}
