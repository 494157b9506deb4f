package masterdata

import (
	"net/mail"
	"strings"
	"time"

	"energy-audit/internal/auth"
	"energy-audit/internal/validation"
)

// User is an account of the platform.
type User struct {
	ID             string    `db:"id"`
	Username       string    `db:"username"`
	Email          string    `db:"email"`
	FirstName      string    `db:"first_name"`
	LastName       string    `db:"last_name"`
	Position       string    `db:"position"`
	Role           auth.Role `db:"role"`
	OrganizationID string    `db:"organization_id"`
	Superuser      bool      `db:"superuser"`
	Active         bool      `db:"active"`
	PasswordHash   string    `db:"password_hash"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// DisplayName returns "first last", falling back to the username.
func (u User) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name == "" {
		return u.Username
	}
	return name
}

// Identity returns the request identity of the user.
func (u User) Identity() auth.Identity {
	return auth.Identity{
		UserID:         u.ID,
		Username:       u.Username,
		Role:           u.Role,
		OrganizationID: u.OrganizationID,
		Superuser:      u.Superuser,
	}
}

// Normalize trims the text attributes.
func (u *User) Normalize() {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.FirstName = strings.TrimSpace(u.FirstName)
	u.LastName = strings.TrimSpace(u.LastName)
	u.Position = strings.TrimSpace(u.Position)
	u.OrganizationID = strings.TrimSpace(u.OrganizationID)
}

// Validate checks user invariants. The role is optional for superusers.
func (u User) Validate() error {
	verr := validation.New("user")
	if u.Username == "" {
		verr.Add("username", "este campo es obligatorio")
	}
	if u.Email != "" {
		if _, err := mail.ParseAddress(u.Email); err != nil {
			verr.Add("email", "introduzca un correo electrónico válido")
		}
	}
	if u.Role == "" {
		if !u.Superuser {
			verr.Add("rol", "este campo es obligatorio")
		}
	} else if _, ok := auth.NormalizeRole(string(u.Role)); !ok {
		verr.Add("rol", "escoja una opción válida")
	}
	return verr.OrNil()
}

// UserFilter narrows user listings.
type UserFilter struct {
	OrganizationID string
	Roles          []auth.Role
	ActiveOnly     bool
}
