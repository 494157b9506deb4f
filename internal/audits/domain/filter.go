package audits

// ProjectFilter narrows project queries. All set fields must match; the zero
// value matches every project and None matches nothing.
type ProjectFilter struct {
	None           bool
	ProjectID      string
	OrganizationID string
	LeadID         string
	MemberID       string
	CompanyID      string
	Status         Status
}

// NoProjects is the filter of an empty scope.
func NoProjects() ProjectFilter { return ProjectFilter{None: true} }

// And returns the conjunction of two filters.
func (f ProjectFilter) And(other ProjectFilter) ProjectFilter {
	if f.None || other.None {
		return NoProjects()
	}
	out := f
	var conflict bool
	merge := func(dst *string, value string) {
		switch {
		case value == "":
		case *dst == "":
			*dst = value
		case *dst != value:
			conflict = true
		}
	}
	merge(&out.ProjectID, other.ProjectID)
	merge(&out.OrganizationID, other.OrganizationID)
	merge(&out.LeadID, other.LeadID)
	merge(&out.MemberID, other.MemberID)
	merge(&out.CompanyID, other.CompanyID)
	status := string(out.Status)
	merge(&status, string(other.Status))
	out.Status = Status(status)
	if conflict {
		return NoProjects()
	}
	return out
}

// Matches reports whether the project satisfies the filter.
func (f ProjectFilter) Matches(p Project) bool {
	switch {
	case f.None:
		return false
	case f.ProjectID != "" && p.ID != f.ProjectID:
		return false
	case f.OrganizationID != "" && p.OrganizationID != f.OrganizationID:
		return false
	case f.LeadID != "" && p.LeadID != f.LeadID:
		return false
	case f.MemberID != "" && !p.HasMember(f.MemberID):
		return false
	case f.CompanyID != "" && p.CompanyID != f.CompanyID:
		return false
	case f.Status != "" && p.Status != f.Status:
		return false
	default:
		return true
	}
}
