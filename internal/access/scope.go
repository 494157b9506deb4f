// Package access resolves which projects a caller may see and which
// write operations they may perform. Every check defaults to deny.
package access

import (
	"errors"

	audits "energy-audit/internal/audits/domain"
	"energy-audit/internal/auth"
)

// ErrPermissionDenied is returned when the caller fails every applicable rule.
var ErrPermissionDenied = errors.New("access: permission denied")

// Level is the breadth of a visibility scope.
type Level int

const (
	LevelNone Level = iota
	LevelTeam
	LevelLead
	LevelOrganization
	LevelAll
)

// Scope is the set of projects visible to one caller, resolved once per request.
type Scope struct {
	Level          Level
	UserID         string
	OrganizationID string
}

// Resolve computes the visibility scope of an identity.
func Resolve(identity auth.Identity) Scope {
	if !identity.Authenticated() {
		return Scope{Level: LevelNone}
	}
	scope := Scope{UserID: identity.UserID, OrganizationID: identity.OrganizationID}
	switch {
	case identity.Superuser, identity.Role == auth.RoleNationalDirector:
		scope.Level = LevelAll
	case identity.Role == auth.RoleCenterDirector && identity.OrganizationID != "":
		scope.Level = LevelOrganization
	case identity.Role == auth.RoleProfessor:
		scope.Level = LevelLead
	case identity.Role == auth.RoleStudent:
		scope.Level = LevelTeam
	default:
		scope.Level = LevelNone
	}
	return scope
}

// Filter narrows repository queries to the scope.
func (s Scope) Filter() audits.ProjectFilter {
	switch s.Level {
	case LevelAll:
		return audits.ProjectFilter{}
	case LevelOrganization:
		return audits.ProjectFilter{OrganizationID: s.OrganizationID}
	case LevelLead:
		return audits.ProjectFilter{LeadID: s.UserID}
	case LevelTeam:
		return audits.ProjectFilter{MemberID: s.UserID}
	default:
		return audits.NoProjects()
	}
}

// Allows reports whether a project is inside the scope.
func (s Scope) Allows(project audits.Project) bool {
	return s.Filter().Matches(project)
}

// CanAccess reports whether the identity may view and operate on the project.
func CanAccess(identity auth.Identity, project audits.Project) bool {
	if Resolve(identity).Allows(project) {
		return true
	}
	return directsOrganization(identity, project.OrganizationID)
}

// directsOrganization covers center directors and national directors
// assigned to an organization.
func directsOrganization(identity auth.Identity, organizationID string) bool {
	if !identity.Authenticated() || organizationID == "" || identity.OrganizationID != organizationID {
		return false
	}
	return identity.Role == auth.RoleCenterDirector || identity.Role == auth.RoleNationalDirector
}
