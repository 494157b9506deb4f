package masterdata

import (
	"strings"
	"time"

	"energy-audit/internal/validation"
)

// Organization is a regional center that owns audit projects.
type Organization struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Code      string    `db:"code" json:"code"`
	Region    string    `db:"region" json:"region"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Normalize trims the text attributes.
func (o *Organization) Normalize() {
	o.Name = strings.TrimSpace(o.Name)
	o.Code = strings.ToUpper(strings.TrimSpace(o.Code))
	o.Region = strings.TrimSpace(o.Region)
}

// Validate checks organization invariants.
func (o Organization) Validate() error {
	verr := validation.New("organization")
	if o.Name == "" {
		verr.Add("nombre", "este campo es obligatorio")
	}
	if o.Code == "" {
		verr.Add("codigo_interno", "este campo es obligatorio")
	}
	if o.Region == "" {
		verr.Add("region", "este campo es obligatorio")
	}
	return verr.OrNil()
}
