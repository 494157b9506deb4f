package audits

import "errors"

var (
	// ErrProjectNotFound is returned when a project does not exist.
	ErrProjectNotFound = errors.New("audits: project not found")
	// ErrInvalidStatus is returned for statuses outside the allowed set.
	ErrInvalidStatus = errors.New("audits: invalid status")
)
