package authz

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"jread/internal/domain/models"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Registry answers "may this role do that" from the embedded YAML matrix.
// It is the single authority for role capabilities; handlers and services
// must not compare roles inline.
type Registry struct {
	roles map[models.Role]*roleEntry
	mu    sync.RWMutex
}

type roleEntry struct {
	caps        map[Capability]struct{}
	displayName string
	ordered     []Capability
}

// NewRegistry loads the embedded role matrix. All four roles must be present;
// a missing role is a build mistake, not a runtime condition to tolerate.
func NewRegistry() (*Registry, error) {
	data, err := configFiles.ReadFile("config/roles.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read roles.yaml: %w", err)
	}

	var file rolesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal roles.yaml: %w", err)
	}

	r := &Registry{roles: make(map[models.Role]*roleEntry)}
	for name, rc := range file.Roles {
		role := models.Role(name)
		if !role.Valid() {
			return nil, fmt.Errorf("unknown role in roles.yaml: %s", name)
		}
		entry := &roleEntry{
			caps:        make(map[Capability]struct{}, len(rc.Capabilities)),
			displayName: rc.DisplayName,
			ordered:     rc.Capabilities,
		}
		for _, c := range rc.Capabilities {
			entry.caps[c] = struct{}{}
		}
		r.roles[role] = entry
	}

	for _, role := range []models.Role{models.RoleUser, models.RoleAuthor, models.RoleAdmin, models.RoleOwner} {
		if _, ok := r.roles[role]; !ok {
			return nil, fmt.Errorf("roles.yaml is missing role %s", role)
		}
	}

	return r, nil
}

// Can reports whether the role holds the capability.
func (r *Registry) Can(role models.Role, cap Capability) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.roles[role]
	if !ok {
		return false
	}
	_, ok = entry.caps[cap]
	return ok
}

// Capabilities returns the role's capability list in YAML order.
func (r *Registry) Capabilities(role models.Role) []Capability {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.roles[role]
	if !ok {
		return nil
	}
	return entry.ordered
}

// DisplayName returns the human-readable role name.
func (r *Registry) DisplayName(role models.Role) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.roles[role]
	if !ok {
		return string(role)
	}
	return entry.displayName
}

// CanChangeRole applies the role-change matrix:
//   - nobody changes their own role,
//   - ADMIN may change a USER's or AUTHOR's role,
//   - OWNER may change anyone's role except their own.
// The target's new role is bounded too: an ADMIN cannot promote past AUTHOR
// territory it controls, i.e. it may only assign USER or AUTHOR.
func (r *Registry) CanChangeRole(actorID string, actorRole models.Role, targetID string, targetRole, newRole models.Role) bool {
	if actorID == targetID {
		return false
	}
	if !newRole.Valid() {
		return false
	}

	switch {
	case r.Can(actorRole, CapChangeAdminRoles):
		// OWNER: anyone but self, any role
		return true
	case r.Can(actorRole, CapChangeRoles):
		// ADMIN: only over USER/AUTHOR targets, and may only assign USER/AUTHOR
		if targetRole == models.RoleAdmin || targetRole == models.RoleOwner {
			return false
		}
		return newRole == models.RoleUser || newRole == models.RoleAuthor
	default:
		return false
	}
}
