package masterdata

import (
	"net/mail"
	"strings"
	"time"

	"energy-audit/internal/validation"
)

// Company is an audited entity.
type Company struct {
	ID           string    `db:"id" json:"id"`
	LegalName    string    `db:"legal_name" json:"razon_social"`
	TaxID        string    `db:"tax_id" json:"nit"`
	Sector       string    `db:"sector" json:"sector"`
	Address      string    `db:"address" json:"direccion"`
	City         string    `db:"city" json:"ciudad"`
	ContactName  string    `db:"contact_name" json:"nombre_contacto"`
	ContactEmail string    `db:"contact_email" json:"email_contacto"`
	ContactPhone string    `db:"contact_phone" json:"telefono_contacto"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Normalize trims the text attributes.
func (c *Company) Normalize() {
	c.LegalName = strings.TrimSpace(c.LegalName)
	c.TaxID = strings.TrimSpace(c.TaxID)
	c.Sector = strings.TrimSpace(c.Sector)
	c.Address = strings.TrimSpace(c.Address)
	c.City = strings.TrimSpace(c.City)
	c.ContactName = strings.TrimSpace(c.ContactName)
	c.ContactEmail = strings.ToLower(strings.TrimSpace(c.ContactEmail))
	c.ContactPhone = strings.TrimSpace(c.ContactPhone)
}

// Validate checks company invariants.
func (c Company) Validate() error {
	verr := validation.New("company")
	required := map[string]string{
		"razon_social":      c.LegalName,
		"nit":               c.TaxID,
		"sector":            c.Sector,
		"direccion":         c.Address,
		"ciudad":            c.City,
		"nombre_contacto":   c.ContactName,
		"telefono_contacto": c.ContactPhone,
	}
	for field, value := range required {
		if value == "" {
			verr.Add(field, "este campo es obligatorio")
		}
	}
	if c.ContactEmail == "" {
		verr.Add("email_contacto", "este campo es obligatorio")
	} else if _, err := mail.ParseAddress(c.ContactEmail); err != nil {
		verr.Add("email_contacto", "introduzca un correo electrónico válido")
	}
	return verr.OrNil()
}
