package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"jread/internal/auth"
	"jread/internal/httputil"
)

// publicRoutes are reachable without a token: browsing, reading, and the
// other anonymous reader surfaces. A valid token on these still attaches the
// user so reads can record progress.
var publicRoutes = []struct {
	method string
	prefix string
}{
	{http.MethodGet, "/health"},
	{http.MethodGet, "/api/novels"},
	{http.MethodPost, "/api/novels/"}, // view counter; checked further below
	{http.MethodGet, "/api/chapters/"},
	{http.MethodGet, "/api/changelog"},
	{http.MethodGet, "/api/profiles/"},
}

func isPublic(r *http.Request) bool {
	for _, route := range publicRoutes {
		if r.Method != route.method {
			continue
		}
		if r.URL.Path == strings.TrimSuffix(route.prefix, "/") || strings.HasPrefix(r.URL.Path, route.prefix) {
			// The only anonymous POST is the novel view counter.
			if r.Method == http.MethodPost && !strings.HasSuffix(r.URL.Path, "/view") {
				return false
			}
			return true
		}
	}
	return false
}

// Auth verifies the Supabase JWT on every request. Public routes pass
// through without a token; everywhere else a missing or invalid token is a
// 401. The verified user ID rides the request context.
func Auth(verifier auth.JWTVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")

			if header == "" {
				if isPublic(r) {
					next.ServeHTTP(w, r)
					return
				}
				httputil.RespondError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				httputil.RespondError(w, http.StatusUnauthorized, "authorization header must be a Bearer token")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				logger.Debug("token rejected", "path", r.URL.Path, "error", err)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			r = httputil.WithUserID(r, claims.GetUserID())
			r = httputil.WithUserEmail(r, claims.Email)
			next.ServeHTTP(w, r)
		})
	}
}
