package apihttp

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	auditsapp "energy-audit/internal/audits/application"
	audits "energy-audit/internal/audits/domain"
	"energy-audit/internal/validation"
)

func (h *Handler) handleListProjects(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := audits.ProjectFilter{
		OrganizationID: query.Get("organization"),
		CompanyID:      query.Get("company"),
		LeadID:         query.Get("lead"),
	}
	if raw := query.Get("status"); raw != "" {
		status, err := audits.ParseStatus(raw)
		if err != nil {
			writeError(w, r, validation.Field("project", "estado", "escoja una opción válida"))
			return
		}
		filter.Status = status
	}
	projects, err := h.projects.List(r.Context(), identityOf(r), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProjects(projects))
}

type projectRequest struct {
	OrganizationID     string   `json:"organization_id"`
	CompanyID          string   `json:"company_id"`
	LeadID             string   `json:"lead_id"`
	Team               []string `json:"team"`
	Name               string   `json:"name"`
	StartDate          string   `json:"start_date"`
	EstimatedCloseDate string   `json:"estimated_close_date"`
}

func (h *Handler) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	verr := validation.New("project")
	input := auditsapp.ProjectInput{
		OrganizationID: req.OrganizationID,
		CompanyID:      req.CompanyID,
		LeadID:         req.LeadID,
		Team:           req.Team,
		Name:           req.Name,
	}
	if req.StartDate != "" {
		start, err := parseDate(req.StartDate)
		if err != nil {
			verr.Add("fecha_inicio", "introduzca una fecha válida")
		}
		input.StartDate = start
	}
	if req.EstimatedCloseDate != "" {
		closeDate, err := parseDate(req.EstimatedCloseDate)
		if err != nil {
			verr.Add("fecha_fin_estimada", "introduzca una fecha válida")
		}
		input.EstimatedCloseDate = &closeDate
	}
	if err := verr.OrNil(); err != nil {
		writeError(w, r, err)
		return
	}
	project, err := h.projects.Create(r.Context(), identityOf(r), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProject(*project))
}

func (h *Handler) handleGetProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.projects.Get(r.Context(), identityOf(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProject(*project))
}

type projectPatchRequest struct {
	Name               *string         `json:"name"`
	CompanyID          *string         `json:"company_id"`
	LeadID             *string         `json:"lead_id"`
	Team               *[]string       `json:"team"`
	StartDate          *string         `json:"start_date"`
	EstimatedCloseDate json.RawMessage `json:"estimated_close_date"`
}

func (h *Handler) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var req projectPatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	verr := validation.New("project")
	patch := auditsapp.ProjectPatch{
		Name:      req.Name,
		CompanyID: req.CompanyID,
		LeadID:    req.LeadID,
		Team:      req.Team,
	}
	if req.StartDate != nil {
		start, err := parseDate(*req.StartDate)
		if err != nil {
			verr.Add("fecha_inicio", "introduzca una fecha válida")
		}
		patch.StartDate = &start
	}
	if len(req.EstimatedCloseDate) > 0 {
		var closeDate *time.Time
		if string(req.EstimatedCloseDate) != "null" {
			var (
				raw    string
				parsed time.Time
			)
			err := json.Unmarshal(req.EstimatedCloseDate, &raw)
			if err == nil {
				parsed, err = parseDate(raw)
			}
			if err != nil {
				verr.Add("fecha_fin_estimada", "introduzca una fecha válida")
			}
			closeDate = &parsed
		}
		patch.EstimatedCloseDate = &closeDate
	}
	if err := verr.OrNil(); err != nil {
		writeError(w, r, err)
		return
	}
	project, err := h.projects.Update(r.Context(), identityOf(r), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProject(*project))
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	status := audits.Status(strings.ToUpper(strings.TrimSpace(req.Status)))
	project, err := h.projects.SetStatus(r.Context(), identityOf(r), r.PathValue("id"), status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProject(*project))
}

type productionRequest struct {
	Total *float64 `json:"production_total"`
	Unit  string   `json:"production_unit"`
}

func (h *Handler) handleSetProduction(w http.ResponseWriter, r *http.Request) {
	var req productionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	project, err := h.projects.UpdateProduction(r.Context(), identityOf(r), r.PathValue("id"), req.Total, req.Unit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProject(*project))
}

func (h *Handler) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.projects.Documents(r.Context(), identityOf(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if docs == nil {
		docs = []audits.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

func (h *Handler) handleActivity(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, r, validation.Field("activity", "limit", "introduzca un número entero positivo"))
			return
		}
		limit = parsed
	}
	entries, err := h.projects.Activity(r.Context(), identityOf(r), r.PathValue("id"), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]activityResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, toActivity(entry))
	}
	writeJSON(w, http.StatusOK, out)
}

type documentRequest struct {
	Description string `json:"descripcion"`
	StorageKey  string `json:"storage_key"`
	FileName    string `json:"file_name"`
}

func (h *Handler) handleAddDocument(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	doc, err := h.projects.AddDocument(r.Context(), identityOf(r), r.PathValue("id"), audits.Document{
		Description: req.Description,
		StorageKey:  req.StorageKey,
		FileName:    req.FileName,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func parseDate(value string) (time.Time, error) {
	parsed, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, err
	}
	return parsed.UTC(), nil
}
