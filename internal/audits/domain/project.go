package audits

import (
	"strings"
	"time"

	"energy-audit/internal/validation"
)

// Project is an energy audit carried out by an organization on a company.
type Project struct {
	ID                 string
	OrganizationID     string
	CompanyID          string
	LeadID             string
	Team               []string
	Name               string
	StartDate          time.Time
	EstimatedCloseDate *time.Time
	Status             Status
	ProductionTotal    *float64
	ProductionUnit     string
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// Read model, resolved from the directory.
	OrganizationName string
	CompanyName      string
	LeadName         string
}

// HasMember reports whether the user belongs to the project team.
func (p Project) HasMember(userID string) bool {
	if userID == "" {
		return false
	}
	for _, member := range p.Team {
		if member == userID {
			return true
		}
	}
	return false
}

// Production returns the total production, zero when unknown.
func (p Project) Production() float64 {
	if p.ProductionTotal == nil {
		return 0
	}
	return *p.ProductionTotal
}

// Normalize trims text attributes and deduplicates the team.
func (p *Project) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.ProductionUnit = strings.TrimSpace(p.ProductionUnit)
	if p.Status == "" {
		p.Status = StatusDraft
	}
	seen := make(map[string]struct{}, len(p.Team))
	team := make([]string, 0, len(p.Team))
	for _, member := range p.Team {
		member = strings.TrimSpace(member)
		if member == "" {
			continue
		}
		if _, ok := seen[member]; ok {
			continue
		}
		seen[member] = struct{}{}
		team = append(team, member)
	}
	p.Team = team
}

// Validate checks project invariants.
func (p Project) Validate() error {
	verr := validation.New("project")
	if p.Name == "" {
		verr.Add("nombre", "este campo es obligatorio")
	}
	if p.OrganizationID == "" {
		verr.Add("organizacion", "este campo es obligatorio")
	}
	if p.CompanyID == "" {
		verr.Add("empresa", "este campo es obligatorio")
	}
	if p.StartDate.IsZero() {
		verr.Add("fecha_inicio", "este campo es obligatorio")
	}
	if p.EstimatedCloseDate != nil && !p.StartDate.IsZero() && p.EstimatedCloseDate.Before(p.StartDate) {
		verr.Add("fecha_fin_estimada", "la fecha estimada de cierre no puede ser anterior al inicio")
	}
	if !p.Status.IsValid() {
		verr.Add("estado", "escoja una opción válida")
	}
	if p.ProductionTotal != nil && *p.ProductionTotal < 0 {
		verr.Add("produccion_total", "el valor no puede ser negativo")
	}
	return verr.OrNil()
}

// CompareRecentFirst orders projects by creation time descending, then id.
func CompareRecentFirst(a, b Project) int {
	switch {
	case a.CreatedAt.After(b.CreatedAt):
		return -1
	case a.CreatedAt.Before(b.CreatedAt):
		return 1
	default:
		return strings.Compare(a.ID, b.ID)
	}
}
