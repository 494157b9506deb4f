package auth

import "strings"

// Role represents a user role.
type Role string

const (
	RoleStudent          Role = "ESTUDIANTE"
	RoleProfessor        Role = "PROFESOR"
	RoleCenterDirector   Role = "DIRECTOR_CENTRO"
	RoleNationalDirector Role = "DIRECTOR_NACIONAL"
)

// Roles returns every role from narrowest to broadest.
func Roles() []Role {
	return []Role{RoleStudent, RoleProfessor, RoleCenterDirector, RoleNationalDirector}
}

// NormalizeRole validates and normalizes a role string.
func NormalizeRole(value string) (Role, bool) {
	role := Role(strings.ToUpper(strings.TrimSpace(value)))
	switch role {
	case RoleStudent, RoleProfessor, RoleCenterDirector, RoleNationalDirector:
		return role, true
	default:
		return "", false
	}
}

// Label returns the display name of the role.
func (r Role) Label() string {
	switch r {
	case RoleStudent:
		return "Estudiante"
	case RoleProfessor:
		return "Profesor"
	case RoleCenterDirector:
		return "Director de Centro"
	case RoleNationalDirector:
		return "Director Nacional"
	default:
		return string(r)
	}
}

// RoleAtLeast returns true when role satisfies required role.
func RoleAtLeast(role Role, required Role) bool {
	return roleRank(role) >= roleRank(required)
}

func roleRank(role Role) int {
	switch role {
	case RoleStudent:
		return 1
	case RoleProfessor:
		return 2
	case RoleCenterDirector:
		return 3
	case RoleNationalDirector:
		return 4
	default:
		return 0
	}
}
