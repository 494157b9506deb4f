package apihttp

import (
	"encoding/json"
	"net/http"
	"strconv"

	energy "energy-audit/internal/energy/domain"
	"energy-audit/internal/validation"
)

func (h *Handler) handleListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.records.List(r.Context(), identityOf(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]recordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toRecord(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleUpsertRecord accepts the fuel form as a flat JSON object. Values may
// be strings, as typed by operators, or plain numbers.
func (h *Handler) handleUpsertRecord(w http.ResponseWriter, r *http.Request) {
	kind, err := energy.ParseFuelKind(r.PathValue("fuel"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json body")
		return
	}
	values, err := formValues(raw)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rec, err := h.records.Register(r.Context(), identityOf(r), r.PathValue("id"), kind, values)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecord(*rec))
}

func (h *Handler) handleSchema(w http.ResponseWriter, r *http.Request) {
	kind, err := energy.ParseFuelKind(r.PathValue("fuel"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	fields, err := h.records.Schema(kind)
	if err != nil {
		writeError(w, r, err)
		return
	}
	body := map[string]any{"fuel": kind, "label": kind.Label(), "fields": fields}
	if factor, err := energy.ConversionFactor(kind); err == nil {
		body["unit_factor"] = factor
	}
	writeJSON(w, http.StatusOK, body)
}

func formValues(raw map[string]json.RawMessage) (map[string]string, error) {
	values := make(map[string]string, len(raw))
	verr := validation.New("energy")
	for key, value := range raw {
		var text string
		if err := json.Unmarshal(value, &text); err == nil {
			values[key] = text
			continue
		}
		var number float64
		if err := json.Unmarshal(value, &number); err == nil {
			values[key] = strconv.FormatFloat(number, 'f', -1, 64)
			continue
		}
		if string(value) == "null" {
			values[key] = ""
			continue
		}
		verr.Add(key, "introduzca un número válido")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return values, nil
}
