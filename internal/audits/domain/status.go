package audits

import "strings"

// Status is the workflow state of an audit project.
type Status string

const (
	StatusDraft          Status = "BORRADOR"
	StatusInExecution    Status = "EJECUCION"
	StatusInternalReview Status = "REVISION"
	StatusFinalized      Status = "FINALIZADO"
)

// Statuses returns the allowed statuses in workflow order.
func Statuses() []Status {
	return []Status{StatusDraft, StatusInExecution, StatusInternalReview, StatusFinalized}
}

// ParseStatus validates a status value. Any member of the set may be assigned.
func ParseStatus(value string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(value)))
	if !status.IsValid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// IsValid reports whether the status belongs to the allowed set.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusInExecution, StatusInternalReview, StatusFinalized:
		return true
	default:
		return false
	}
}

// Label returns the display name of the status.
func (s Status) Label() string {
	switch s {
	case StatusDraft:
		return "Borrador"
	case StatusInExecution:
		return "En Ejecución"
	case StatusInternalReview:
		return "En Revisión Interna"
	case StatusFinalized:
		return "Finalizado"
	default:
		return string(s)
	}
}
