// Package apihttp exposes the audit services over JSON HTTP.
package apihttp

import (
	"errors"
	"net/http"
	"time"

	analyticsapp "energy-audit/internal/analytics/application"
	auditsapp "energy-audit/internal/audits/application"
	"energy-audit/internal/auth"
	energyapp "energy-audit/internal/energy/application"
	mdapp "energy-audit/internal/masterdata/application"
	"energy-audit/internal/observability/logging"
	"energy-audit/internal/observability/metrics"
	"energy-audit/internal/reporting"
)

// Services are the application services behind the API.
type Services struct {
	Directory  *mdapp.DirectoryService
	Projects   *auditsapp.ProjectService
	Records    *energyapp.RecordService
	Dashboards *analyticsapp.DashboardService
	Assembler  *reporting.Assembler
}

// Handler serves every /api/v1 route.
type Handler struct {
	directory  *mdapp.DirectoryService
	projects   *auditsapp.ProjectService
	records    *energyapp.RecordService
	dashboards *analyticsapp.DashboardService
	assembler  *reporting.Assembler
	secret     []byte
	tokenTTL   time.Duration
	now        func() time.Time
	mux        *http.ServeMux
}

// NewHandler constructs the API handler.
func NewHandler(services Services, secret []byte, tokenTTL time.Duration) (*Handler, error) {
	if services.Directory == nil || services.Projects == nil || services.Records == nil || services.Dashboards == nil {
		return nil, errors.New("api handler: nil service")
	}
	if services.Assembler == nil {
		return nil, errors.New("api handler: nil report assembler")
	}
	if len(secret) == 0 {
		return nil, errors.New("api handler: empty jwt secret")
	}
	h := &Handler{
		directory:  services.Directory,
		projects:   services.Projects,
		records:    services.Records,
		dashboards: services.Dashboards,
		assembler:  services.Assembler,
		secret:     secret,
		tokenTTL:   tokenTTL,
		now:        time.Now,
		mux:        http.NewServeMux(),
	}
	h.routes()
	return h, nil
}

func (h *Handler) routes() {
	m := h.mux
	m.HandleFunc("POST /api/v1/auth/login", h.handleLogin)

	m.HandleFunc("GET /api/v1/organizations", h.handleListOrganizations)
	m.HandleFunc("POST /api/v1/organizations", h.handleCreateOrganization)
	m.HandleFunc("POST /api/v1/news", h.handlePublishNews)
	m.HandleFunc("GET /api/v1/companies", h.handleListCompanies)
	m.HandleFunc("POST /api/v1/companies", h.handleCreateCompany)
	m.HandleFunc("DELETE /api/v1/companies/{id}", h.handleDeleteCompany)
	m.HandleFunc("GET /api/v1/users", h.handleListUsers)
	m.HandleFunc("POST /api/v1/users", h.handleCreateUser)
	m.HandleFunc("PATCH /api/v1/users/{id}", h.handleUpdateUser)

	m.HandleFunc("GET /api/v1/projects", h.handleListProjects)
	m.HandleFunc("POST /api/v1/projects", h.handleCreateProject)
	m.HandleFunc("GET /api/v1/projects/{id}", h.handleGetProject)
	m.HandleFunc("PATCH /api/v1/projects/{id}", h.handleUpdateProject)
	m.HandleFunc("PUT /api/v1/projects/{id}/status", h.handleSetStatus)
	m.HandleFunc("PUT /api/v1/projects/{id}/production", h.handleSetProduction)
	m.HandleFunc("GET /api/v1/projects/{id}/documents", h.handleListDocuments)
	m.HandleFunc("POST /api/v1/projects/{id}/documents", h.handleAddDocument)
	m.HandleFunc("GET /api/v1/projects/{id}/activity", h.handleActivity)

	m.HandleFunc("GET /api/v1/projects/{id}/energy", h.handleListRecords)
	m.HandleFunc("PUT /api/v1/projects/{id}/energy/{fuel}", h.handleUpsertRecord)
	m.HandleFunc("GET /api/v1/energy/schema/{fuel}", h.handleSchema)

	m.HandleFunc("GET /api/v1/projects/{id}/kpis", h.handleProjectKPIs)
	m.HandleFunc("GET /api/v1/projects/{id}/report.pdf", h.handleProjectExport)
	m.HandleFunc("GET /api/v1/projects/{id}/report.xlsx", h.handleProjectExport)
	m.HandleFunc("GET /api/v1/projects/{id}/report.csv", h.handleProjectExport)

	m.HandleFunc("GET /api/v1/dashboards/workspace", h.handleWorkspace)
	m.HandleFunc("GET /api/v1/dashboards/strategic", h.handleStrategic)
	m.HandleFunc("GET /api/v1/dashboards/strategic/report.pdf", h.handleStrategicExport)
	m.HandleFunc("GET /api/v1/dashboards/strategic/report.xlsx", h.handleStrategicExport)
	m.HandleFunc("GET /api/v1/dashboards/strategic/report.csv", h.handleStrategicExport)
	m.HandleFunc("GET /api/v1/dashboards/national", h.handleNational)
	m.HandleFunc("GET /api/v1/dashboards/national/report.pdf", h.handleNationalExport)
	m.HandleFunc("GET /api/v1/dashboards/national/report.xlsx", h.handleNationalExport)
	m.HandleFunc("GET /api/v1/dashboards/national/report.csv", h.handleNationalExport)

	m.HandleFunc("GET /api/v1/public/summary", h.handlePublicSummary)
}

// ServeHTTP dispatches to the registered routes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// NewServerHandler mounts the API with health and metrics endpoints behind
// JWT auth and request logging. Token subjects are re-read through the
// loader on every request.
func NewServerHandler(api http.Handler, secret []byte, loader auth.IdentityLoader, logger *logging.Logger) http.Handler {
	policy := auth.NewDefaultPolicy(
		[]string{"/healthz", "/metrics", "/api/v1/auth/login"},
		[]string{"/api/v1/public/"},
	)
	authMiddleware := auth.NewMiddleware(secret, policy, loader)

	mux := http.NewServeMux()
	mux.Handle("/api/", api)
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return RequestLogging(authMiddleware.Wrap(mux), logger)
}

func identityOf(r *http.Request) auth.Identity {
	identity, _ := auth.IdentityFromContext(r.Context())
	return identity
}
