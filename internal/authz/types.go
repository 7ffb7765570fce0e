package authz

// Capability names a single permitted action. Call sites check capabilities
// through the registry instead of comparing roles inline, so the policy lives
// in one place.
type Capability string

const (
	CapRead           Capability = "read"
	CapComment        Capability = "comment"
	CapBookmark       Capability = "bookmark"
	CapLike           Capability = "like"
	CapRate           Capability = "rate"
	CapTrackProgress  Capability = "track_progress"
	CapCreateNovel    Capability = "create_novel"
	CapEditOwnNovel   Capability = "edit_own_novel"
	CapUploadCover    Capability = "upload_cover"
	CapModerate       Capability = "moderate"
	CapManageUsers    Capability = "manage_users"
	CapChangeRoles    Capability = "change_roles"
	CapChangeAdminRoles Capability = "change_admin_roles"
)

// RoleCapabilities is one role's block in the YAML file.
type RoleCapabilities struct {
	DisplayName  string       `yaml:"display_name" json:"display_name"`
	Capabilities []Capability `yaml:"capabilities" json:"capabilities"`
}

// rolesFile is the top-level YAML document shape.
type rolesFile struct {
	Roles map[string]RoleCapabilities `yaml:"roles"`
}
