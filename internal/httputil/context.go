package httputil

import (
	"context"
	"net/http"
)

// Context key type to avoid collisions
type contextKey string

const (
	userIDKey    contextKey = "userID"
	userEmailKey contextKey = "userEmail"
)

// WithUserID adds the authenticated user's ID to the request context
func WithUserID(r *http.Request, userID string) *http.Request {
	ctx := context.WithValue(r.Context(), userIDKey, userID)
	return r.WithContext(ctx)
}

// GetUserID retrieves the authenticated user's ID from the request context.
// Returns empty string on unauthenticated (public) requests.
func GetUserID(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey).(string)
	return userID
}

// WithUserEmail adds the token's email claim to the request context
func WithUserEmail(r *http.Request, email string) *http.Request {
	ctx := context.WithValue(r.Context(), userEmailKey, email)
	return r.WithContext(ctx)
}

// GetUserEmail retrieves the authenticated user's email from the request
// context.
func GetUserEmail(r *http.Request) string {
	email, _ := r.Context().Value(userEmailKey).(string)
	return email
}
