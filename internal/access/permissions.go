package access

import (
	audits "energy-audit/internal/audits/domain"
	"energy-audit/internal/auth"
	"energy-audit/internal/validation"
)

// CanCreateProject allows professors, directors and superusers.
func CanCreateProject(identity auth.Identity) bool {
	if !identity.Authenticated() {
		return false
	}
	if identity.Superuser {
		return true
	}
	switch identity.Role {
	case auth.RoleProfessor, auth.RoleCenterDirector, auth.RoleNationalDirector:
		return true
	default:
		return false
	}
}

// CanEditProject allows the lead, the director of the owning organization
// and superusers to change the project structure.
func CanEditProject(identity auth.Identity, project audits.Project) bool {
	if !identity.Authenticated() {
		return false
	}
	if identity.Superuser {
		return true
	}
	if project.LeadID != "" && project.LeadID == identity.UserID {
		return true
	}
	return directsOrganization(identity, project.OrganizationID)
}

// CanManageDirectory allows directors and superusers to manage companies and users.
func CanManageDirectory(identity auth.Identity) bool {
	if !identity.Authenticated() {
		return false
	}
	if identity.Superuser {
		return true
	}
	return identity.Role == auth.RoleCenterDirector || identity.Role == auth.RoleNationalDirector
}

// CanManageOrganizations allows national directors and superusers.
func CanManageOrganizations(identity auth.Identity) bool {
	return identity.Authenticated() && (identity.Superuser || identity.Role == auth.RoleNationalDirector)
}

// UserManagementScope returns the organization a director may manage users
// of. An empty result with ok=true means every organization.
func UserManagementScope(identity auth.Identity) (organizationID string, ok bool) {
	if !CanManageDirectory(identity) {
		return "", false
	}
	if identity.Superuser || identity.Role == auth.RoleNationalDirector {
		return "", true
	}
	if identity.OrganizationID == "" {
		return "", false
	}
	return identity.OrganizationID, true
}

// CanManageUser reports whether the identity may edit the target account.
// The target must sit in the identity's organization scope and hold a role
// the identity could grant; superuser accounts are managed by superusers only.
func CanManageUser(identity auth.Identity, target auth.Identity) bool {
	orgID, ok := UserManagementScope(identity)
	if !ok {
		return false
	}
	if orgID != "" && orgID != target.OrganizationID {
		return false
	}
	if target.Superuser {
		return identity.Superuser
	}
	for _, allowed := range AssignableRoles(identity) {
		if allowed == target.Role {
			return true
		}
	}
	return false
}

// AssignableRoles lists the roles the identity may grant.
func AssignableRoles(identity auth.Identity) []auth.Role {
	if !CanManageDirectory(identity) {
		return nil
	}
	if identity.Superuser || identity.Role == auth.RoleNationalDirector {
		return auth.Roles()
	}
	return []auth.Role{auth.RoleStudent, auth.RoleProfessor}
}

// ValidateAssignedRole rejects roles above the identity's grant level.
func ValidateAssignedRole(identity auth.Identity, role auth.Role) error {
	for _, allowed := range AssignableRoles(identity) {
		if allowed == role {
			return nil
		}
	}
	return validation.Field("user", "rol", "escoja una opción válida: "+string(role)+" no está permitido")
}

// CanViewStrategicDashboard allows directors and superusers.
func CanViewStrategicDashboard(identity auth.Identity) bool {
	return CanManageDirectory(identity)
}

// CanViewNationalDashboard allows national directors and superusers.
func CanViewNationalDashboard(identity auth.Identity) bool {
	return identity.Authenticated() && (identity.Superuser || identity.Role == auth.RoleNationalDirector)
}
