package apihttp

import (
	"net/http"
	"time"

	"energy-audit/internal/auth"
	mdapp "energy-audit/internal/masterdata/application"
	masterdata "energy-audit/internal/masterdata/domain"
)

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      userResponse `json:"user"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.directory.Authenticate(r.Context(), req.Login, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	now := h.now().UTC()
	token, err := auth.IssueToken(user.Identity(), h.secret, h.tokenTTL, now)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: now.Add(h.tokenTTL), User: toUser(*user)})
}

func (h *Handler) handleListOrganizations(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("all") != "true"
	orgs, err := h.directory.ListOrganizations(r.Context(), activeOnly)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orgs)
}

type organizationRequest struct {
	Name   string `json:"name"`
	Code   string `json:"code"`
	Region string `json:"region"`
	Active *bool  `json:"active"`
}

func (h *Handler) handleCreateOrganization(w http.ResponseWriter, r *http.Request) {
	var req organizationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	org := masterdata.Organization{Name: req.Name, Code: req.Code, Region: req.Region, Active: true}
	if req.Active != nil {
		org.Active = *req.Active
	}
	created, err := h.directory.CreateOrganization(r.Context(), identityOf(r), org)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type newsRequest struct {
	Slug       string `json:"slug"`
	Title      string `json:"titulo"`
	Summary    string `json:"resumen"`
	Body       string `json:"contenido"`
	CoverImage string `json:"imagen_portada"`
	Published  *bool  `json:"publicada"`
}

func (h *Handler) handlePublishNews(w http.ResponseWriter, r *http.Request) {
	var req newsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	news := masterdata.News{
		Slug:       req.Slug,
		Title:      req.Title,
		Summary:    req.Summary,
		Body:       req.Body,
		CoverImage: req.CoverImage,
		Published:  true,
	}
	if req.Published != nil {
		news.Published = *req.Published
	}
	created, err := h.directory.PublishNews(r.Context(), identityOf(r), news)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.directory.ListCompanies(r.Context(), identityOf(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, companies)
}

func (h *Handler) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	var company masterdata.Company
	if !decodeJSON(w, r, &company) {
		return
	}
	created, err := h.directory.CreateCompany(r.Context(), identityOf(r), company)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleDeleteCompany(w http.ResponseWriter, r *http.Request) {
	if err := h.directory.DeleteCompany(r.Context(), identityOf(r), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.directory.ListUsers(r.Context(), identityOf(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, user := range users {
		out = append(out, toUser(user))
	}
	writeJSON(w, http.StatusOK, out)
}

type userRequest struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Position       string `json:"position"`
	Role           string `json:"role"`
	OrganizationID string `json:"organization_id"`
	Password       string `json:"password"`
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.directory.CreateUser(r.Context(), identityOf(r), mdapp.UserInput(req))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUser(*user))
}

type userPatchRequest struct {
	Email          *string `json:"email"`
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	Position       *string `json:"position"`
	Role           *string `json:"role"`
	OrganizationID *string `json:"organization_id"`
	Active         *bool   `json:"active"`
	Password       *string `json:"password"`
}

func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req userPatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.directory.UpdateUser(r.Context(), identityOf(r), r.PathValue("id"), mdapp.UserPatch(req))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUser(*user))
}
