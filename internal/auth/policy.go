package auth

import (
	"net/http"
	"strings"
)

// Policy determines required roles by request.
type Policy struct {
	ExemptPaths    map[string]struct{}
	ExemptPrefixes []string
}

// NewDefaultPolicy builds a default policy with exemptions.
func NewDefaultPolicy(exemptPaths []string, exemptPrefixes []string) Policy {
	set := make(map[string]struct{}, len(exemptPaths))
	for _, path := range exemptPaths {
		set[path] = struct{}{}
	}
	return Policy{ExemptPaths: set, ExemptPrefixes: exemptPrefixes}
}

// IsExempt returns true when a request should skip auth/RBAC.
func (p Policy) IsExempt(r *http.Request) bool {
	if r == nil {
		return true
	}
	if _, ok := p.ExemptPaths[r.URL.Path]; ok {
		return true
	}
	for _, prefix := range p.ExemptPrefixes {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return true
		}
	}
	return false
}

// RequiredRole resolves the minimum role for the request. Finer checks
// (organization, lead, team) happen in the services.
func (p Policy) RequiredRole(r *http.Request) (Role, bool) {
	if r == nil {
		return "", false
	}
	path := r.URL.Path
	method := r.Method

	switch {
	case path == "/api/v1/projects" && method == http.MethodPost:
		return RoleProfessor, true
	case path == "/api/v1/organizations" && method != http.MethodGet:
		return RoleNationalDirector, true
	case path == "/api/v1/news":
		return RoleNationalDirector, true
	case path == "/api/v1/companies" && method == http.MethodGet:
		return RoleProfessor, true
	case strings.HasPrefix(path, "/api/v1/companies"):
		return RoleCenterDirector, true
	case strings.HasPrefix(path, "/api/v1/users"):
		return RoleCenterDirector, true
	case strings.HasPrefix(path, "/api/v1/dashboards/strategic"):
		return RoleCenterDirector, true
	case strings.HasPrefix(path, "/api/v1/dashboards/national"):
		return RoleNationalDirector, true
	}

	if strings.HasPrefix(path, "/api/") {
		return RoleStudent, true
	}
	return "", false
}
