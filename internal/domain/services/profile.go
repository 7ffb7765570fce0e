package services

import (
	"context"

	"jread/internal/domain/models"
	"jread/internal/httputil"
)

// CreateProfileRequest registers the application profile for a freshly
// signed-up auth user. The ID and email come from the verified JWT, never
// from the request body. Role is the signup form's reader/author choice;
// empty means USER, anything above AUTHOR is rejected.
type CreateProfileRequest struct {
	UserID   string
	Email    string
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
}

// UpdateProfileRequest is a partial profile update. OptionalString fields
// distinguish "absent" from "set to null".
type UpdateProfileRequest struct {
	Username        *string                 `json:"username"`
	PenName         httputil.OptionalString `json:"pen_name"`
	Bio             httputil.OptionalString `json:"bio"`
	BookmarksPublic *bool                   `json:"bookmarks_public"`
	ActivityPublic  *bool                   `json:"activity_public"`
}

// ProfileService defines the business logic for user profiles.
type ProfileService interface {
	// CreateProfile creates the profile row on first login. Conflicts on a
	// taken username.
	CreateProfile(ctx context.Context, req *CreateProfileRequest) (*models.Profile, error)

	// GetOwnProfile returns the caller's full profile including email.
	GetOwnProfile(ctx context.Context, userID string) (*models.Profile, error)

	// GetPublicProfile returns another user's profile with private fields
	// stripped.
	GetPublicProfile(ctx context.Context, username string) (*models.Profile, error)

	// UpdateProfile applies a partial update. A username change propagates
	// to the denormalized author name on the user's novels.
	UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*models.Profile, error)

	// SetAvatar stores the uploaded picture and records its URL.
	SetAvatar(ctx context.Context, userID, avatarURL string) (*models.Profile, error)

	// DeleteAccount removes the profile, its owned content, and the
	// Supabase auth user.
	DeleteAccount(ctx context.Context, userID string) error
}
