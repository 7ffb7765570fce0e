package models

import "time"

// Role is the platform-wide privilege level of a user. The ordering is
// strict: OWNER ⊇ ADMIN ⊇ AUTHOR capabilities, USER is the baseline.
type Role string

const (
	RoleUser   Role = "USER"
	RoleAuthor Role = "AUTHOR"
	RoleAdmin  Role = "ADMIN"
	RoleOwner  Role = "OWNER"
)

// roleRank encodes the strict privilege ordering USER < AUTHOR < ADMIN < OWNER.
var roleRank = map[Role]int{
	RoleUser:   0,
	RoleAuthor: 1,
	RoleAdmin:  2,
	RoleOwner:  3,
}

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r sits at or above other in the privilege ordering.
func (r Role) AtLeast(other Role) bool {
	return roleRank[r] >= roleRank[other]
}

// Profile is the application-side record for an auth user. Its ID is the
// Supabase auth user ID (JWT subject), created at signup and deleted with the
// account.
type Profile struct {
	ID              string    `json:"id" db:"id"`
	Username        string    `json:"username" db:"username"`
	Email           string    `json:"email" db:"email"`
	Role            Role      `json:"role" db:"role"`
	PenName         *string   `json:"pen_name" db:"pen_name"`
	Bio             *string   `json:"bio" db:"bio"`
	AvatarURL       *string   `json:"avatar_url" db:"avatar_url"`
	BookmarksPublic bool      `json:"bookmarks_public" db:"bookmarks_public"`
	ActivityPublic  bool      `json:"activity_public" db:"activity_public"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// AuthorName is the display name stamped onto the user's novels: the pen
// name when one is set, the username otherwise.
func (p *Profile) AuthorName() string {
	if p.PenName != nil && *p.PenName != "" {
		return *p.PenName
	}
	return p.Username
}

// PublicView strips fields that other readers should not see. Email is never
// public; privacy flags stay so clients know whether bookmark/activity pages
// exist for this user.
func (p *Profile) PublicView() *Profile {
	out := *p
	out.Email = ""
	return &out
}
