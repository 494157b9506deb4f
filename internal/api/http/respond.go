package apihttp

import (
	"encoding/json"
	"errors"
	"net/http"

	"energy-audit/internal/access"
	audits "energy-audit/internal/audits/domain"
	energy "energy-audit/internal/energy/domain"
	masterdata "energy-audit/internal/masterdata/domain"
	"energy-audit/internal/observability/logging"
	"energy-audit/internal/validation"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeError maps domain errors to status codes. Unknown errors are logged
// and reported as 500 without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if verr, ok := validation.As(err); ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: verr.Fields})
		return
	}
	switch {
	case errors.Is(err, access.ErrPermissionDenied):
		writeMessage(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, audits.ErrProjectNotFound),
		errors.Is(err, masterdata.ErrNotFound),
		errors.Is(err, energy.ErrRecordNotFound),
		errors.Is(err, energy.ErrUnknownFuelKind):
		writeMessage(w, http.StatusNotFound, "not found")
	case errors.Is(err, masterdata.ErrDuplicate):
		writeMessage(w, http.StatusConflict, "already exists")
	case errors.Is(err, masterdata.ErrCompanyInUse):
		writeMessage(w, http.StatusConflict, "company is referenced by projects")
	case errors.Is(err, masterdata.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, audits.ErrInvalidStatus):
		writeMessage(w, http.StatusBadRequest, "invalid status")
	default:
		logging.FromContext(r.Context()).Errorw("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json body")
		return false
	}
	return true
}
