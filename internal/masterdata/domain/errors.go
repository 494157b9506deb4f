package masterdata

import "errors"

var (
	// ErrNotFound is returned when an organization, company or user does not exist.
	ErrNotFound = errors.New("masterdata: not found")
	// ErrDuplicate is returned when a unique attribute is already taken.
	ErrDuplicate = errors.New("masterdata: duplicate")
	// ErrCompanyInUse is returned when deleting a company referenced by a project.
	ErrCompanyInUse = errors.New("masterdata: company referenced by projects")
	// ErrInvalidCredentials is returned when a login does not match an active user.
	ErrInvalidCredentials = errors.New("masterdata: invalid credentials")
)
