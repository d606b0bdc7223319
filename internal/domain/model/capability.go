package model

// CapabilityType is the base name used to build graduate capabilities.
const CapabilityType = "graduate"

// Role names known to the capability store.
const (
	RoleAdministrator = "administrator"
	RoleEditor        = "editor"
	RoleAuthor        = "author"
	RoleContributor   = "contributor"
)

// OperatorRole is the role an authenticated admin operator acts as.
const OperatorRole = RoleAdministrator

// CapabilityEditGraduates lets the holder create and edit graduate records.
const CapabilityEditGraduates = "edit_" + CapabilityType + "s"

// GrantRoles receive the graduate capabilities on install.
var GrantRoles = []string{RoleAdministrator, RoleEditor}

// RevokeRoles lose the graduate capabilities on uninstall.
var RevokeRoles = []string{RoleAdministrator, RoleEditor, RoleAuthor, RoleContributor}

// GraduateCapabilities returns the full capability set for graduate records.
func GraduateCapabilities() []string {
	const c = CapabilityType
	return []string{
		"edit_" + c,
		"read_" + c,
		"delete_" + c,
		"edit_" + c + "s",
		"edit_others_" + c + "s",
		"publish_" + c + "s",
		"read_private_" + c + "s",
		"delete_" + c + "s",
		"delete_private_" + c + "s",
		"delete_published_" + c + "s",
		"delete_others_" + c + "s",
		"edit_private_" + c + "s",
		"edit_published_" + c + "s",
		"create_" + c + "s",
		"manage_" + c + "_terms",
		"edit_" + c + "_terms",
		"delete_" + c + "_terms",
		"assign_" + c + "_terms",
	}
}
