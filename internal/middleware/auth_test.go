package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"jread/internal/domain/models"
	"jread/internal/httputil"
)

type staticVerifier struct {
	userID string
	err    error
}

func (v *staticVerifier) VerifyToken(token string) (*models.SupabaseClaims, error) {
	if v.err != nil {
		return nil, v.err
	}
	claims := &models.SupabaseClaims{}
	claims.Subject = v.userID
	return claims, nil
}

func (v *staticVerifier) Close() error { return nil }

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		authHeader string
		verifyErr  error
		wantStatus int
		wantUserID string
	}{
		{
			name:       "protected route without token",
			method:     http.MethodPost,
			path:       "/api/novels",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "protected route with valid token",
			method:     http.MethodPost,
			path:       "/api/novels",
			authHeader: "Bearer good",
			wantStatus: http.StatusOK,
			wantUserID: "user-1",
		},
		{
			name:       "protected route with invalid token",
			method:     http.MethodDelete,
			path:       "/api/comments/c1",
			authHeader: "Bearer bad",
			verifyErr:  errors.New("expired"),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed authorization header",
			method:     http.MethodPost,
			path:       "/api/novels",
			authHeader: "Basic dXNlcg==",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "public browse without token",
			method:     http.MethodGet,
			path:       "/api/novels",
			wantStatus: http.StatusOK,
		},
		{
			name:       "public chapter read without token",
			method:     http.MethodGet,
			path:       "/api/chapters/ch-1",
			wantStatus: http.StatusOK,
		},
		{
			name:       "anonymous view counter",
			method:     http.MethodPost,
			path:       "/api/novels/n-1/view",
			wantStatus: http.StatusOK,
		},
		{
			name:       "public route with valid token attaches user",
			method:     http.MethodGet,
			path:       "/api/chapters/ch-1",
			authHeader: "Bearer good",
			wantStatus: http.StatusOK,
			wantUserID: "user-1",
		},
		{
			name:       "health check",
			method:     http.MethodGet,
			path:       "/health",
			wantStatus: http.StatusOK,
		},
		{
			name:       "admin route without token",
			method:     http.MethodGet,
			path:       "/api/admin/users",
			wantStatus: http.StatusUnauthorized,
		},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUserID string
			inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUserID = httputil.GetUserID(r)
				w.WriteHeader(http.StatusOK)
			})

			verifier := &staticVerifier{userID: "user-1", err: tt.verifyErr}
			handler := Auth(verifier, logger)(inner)

			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && gotUserID != tt.wantUserID {
				t.Errorf("user ID = %q, want %q", gotUserID, tt.wantUserID)
			}
		})
	}
}
