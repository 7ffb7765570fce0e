package services

import (
	"context"

	"jread/internal/domain/models"
)

// ChangeRoleRequest assigns a new role to a user.
type ChangeRoleRequest struct {
	Role models.Role `json:"role"`
}

// AdminService covers the admin dashboard: user listing and role management.
// The role-change matrix is enforced here, not in handlers:
// admins manage USER/AUTHOR roles, only the owner touches admins, and nobody
// changes their own role.
type AdminService interface {
	// ListUsers returns every profile. Requires the manage_users
	// capability.
	ListUsers(ctx context.Context, actorID string) ([]models.Profile, error)

	// ChangeRole assigns target a new role, subject to the role-change
	// matrix.
	ChangeRole(ctx context.Context, actorID, targetID string, req *ChangeRoleRequest) (*models.Profile, error)

	// RemoveUser deletes a user's account and content. Subject to the same
	// matrix as role changes: admins remove USER/AUTHOR accounts, the owner
	// removes anyone but themself.
	RemoveUser(ctx context.Context, actorID, targetID string) error
}
