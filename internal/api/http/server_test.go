package apihttp

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	analyticsapp "energy-audit/internal/analytics/application"
	"energy-audit/internal/audit"
	auditsapp "energy-audit/internal/audits/application"
	auditsmemory "energy-audit/internal/audits/infrastructure/memory"
	"energy-audit/internal/auth"
	energyapp "energy-audit/internal/energy/application"
	energymemory "energy-audit/internal/energy/infrastructure/memory"
	mdapp "energy-audit/internal/masterdata/application"
	masterdata "energy-audit/internal/masterdata/domain"
	mdmemory "energy-audit/internal/masterdata/infrastructure/memory"
	"energy-audit/internal/observability/logging"
	"energy-audit/internal/reporting"
)

var testSecret = []byte("test-secret")

var (
	professor = auth.Identity{UserID: "prof-a", Username: "prof", Role: auth.RoleProfessor, OrganizationID: "org-a"}
	student   = auth.Identity{UserID: "stu-a", Username: "stu", Role: auth.RoleStudent, OrganizationID: "org-a"}
	outsider  = auth.Identity{UserID: "stu-b", Username: "stub", Role: auth.RoleStudent, OrganizationID: "org-b"}
	director  = auth.Identity{UserID: "dir-a", Username: "dira", Role: auth.RoleCenterDirector, OrganizationID: "org-a"}
	national  = auth.Identity{UserID: "nat", Username: "nat", Role: auth.RoleNationalDirector}
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	ctx := context.Background()
	orgs := mdmemory.NewOrganizationRepository()
	companies := mdmemory.NewCompanyRepository()
	users := mdmemory.NewUserRepository()
	news := mdmemory.NewNewsRepository()
	projects := auditsmemory.NewProjectRepository()
	records := energymemory.NewRecordRepository()
	auditLog := audit.NewMemoryLogger()
	logger := logging.Nop()

	for _, org := range []masterdata.Organization{
		{ID: "org-a", Name: "Centro Andino", Code: "CA", Region: "Andina", Active: true},
		{ID: "org-b", Name: "Centro Caribe", Code: "CC", Region: "Caribe", Active: true},
	} {
		org := org
		if err := orgs.Save(ctx, &org); err != nil {
			t.Fatalf("seed org: %v", err)
		}
	}
	if err := companies.Save(ctx, &masterdata.Company{ID: "co-1", LegalName: "Textiles SA", TaxID: "900123"}); err != nil {
		t.Fatalf("seed company: %v", err)
	}
	for _, identity := range []auth.Identity{professor, student, outsider, director, national} {
		user := masterdata.User{
			ID:             identity.UserID,
			Username:       identity.Username,
			FirstName:      identity.Username,
			Role:           identity.Role,
			OrganizationID: identity.OrganizationID,
			Active:         true,
		}
		if err := users.Save(ctx, &user); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	directory, err := mdapp.NewDirectoryService(orgs, companies, users, news, projects,
		mdapp.WithHashCost(bcrypt.MinCost), mdapp.WithAuditLogger(auditLog), mdapp.WithLogger(logger))
	if err != nil {
		t.Fatalf("directory service: %v", err)
	}
	if err := directory.SeedSuperuser(ctx, "admin", "cambiar123"); err != nil {
		t.Fatalf("seed superuser: %v", err)
	}
	projectService, err := auditsapp.NewProjectService(projects, auditsmemory.NewDocumentRepository(),
		auditsapp.Directory{Organizations: orgs, Companies: companies, Users: users}, auditLog, logger)
	if err != nil {
		t.Fatalf("project service: %v", err)
	}
	recordService, err := energyapp.NewRecordService(records, projects, auditLog, logger)
	if err != nil {
		t.Fatalf("record service: %v", err)
	}
	dashboards, err := analyticsapp.NewDashboardService(projects, records, orgs, users, news, logger)
	if err != nil {
		t.Fatalf("dashboard service: %v", err)
	}
	formatter, err := reporting.NewFormatter(reporting.DefaultLocale)
	if err != nil {
		t.Fatalf("formatter: %v", err)
	}

	api, err := NewHandler(Services{
		Directory:  directory,
		Projects:   projectService,
		Records:    recordService,
		Dashboards: dashboards,
		Assembler:  reporting.NewAssembler(formatter),
	}, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("api handler: %v", err)
	}
	return NewServerHandler(api, testSecret, directory, logger)
}

func do(t *testing.T, h http.Handler, identity *auth.Identity, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if identity != nil {
		token, err := auth.IssueToken(*identity, testSecret, time.Hour, time.Now())
		if err != nil {
			t.Fatalf("issue token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", resp.Body.String(), err)
	}
	return out
}

func gasForm(annual string) map[string]any {
	return map[string]any{
		"consumo_mensual_orig":   "166.67",
		"consumo_anual_orig":     annual,
		"poder_calorifico":       3600,
		"unidad_pc":              "kJ/m³",
		"costo_unitario":         "1,500",
		"costo_mensual_promedio": "250,000",
		"costo_total_anual":      "3,000,000",
		"factor_emision":         "1.9",
		"emisiones_totales":      "3.8",
		"consumo_anual_kwh":      "999999",
	}
}

func createProject(t *testing.T, h http.Handler) projectResponse {
	t.Helper()
	resp := do(t, h, &professor, http.MethodPost, "/api/v1/projects", map[string]any{
		"company_id": "co-1",
		"team":       []string{"stu-a"},
		"name":       "Auditoría Textiles",
		"start_date": "2024-02-01",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create project: %d %s", resp.Code, resp.Body.String())
	}
	return decode[projectResponse](t, resp)
}

func TestHealthzIsPublic(t *testing.T) {
	h := newTestServer(t)
	resp := do(t, h, nil, http.MethodGet, "/healthz", nil)
	if resp.Code != http.StatusOK || resp.Body.String() != "ok" {
		t.Fatalf("healthz: %d %s", resp.Code, resp.Body.String())
	}
}

func TestLogin(t *testing.T) {
	h := newTestServer(t)

	resp := do(t, h, nil, http.MethodPost, "/api/v1/auth/login", map[string]string{"login": "admin", "password": "cambiar123"})
	if resp.Code != http.StatusOK {
		t.Fatalf("login: %d %s", resp.Code, resp.Body.String())
	}
	body := decode[loginResponse](t, resp)
	claims, err := auth.ParseJWT(body.Token, testSecret)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if !claims.Superuser || body.User.Username != "admin" {
		t.Fatalf("unexpected login response: %+v", body)
	}

	resp = do(t, h, nil, http.MethodPost, "/api/v1/auth/login", map[string]string{"login": "admin", "password": "wrong-password"})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestUnauthenticatedAPIRequestRejected(t *testing.T) {
	h := newTestServer(t)
	resp := do(t, h, nil, http.MethodGet, "/api/v1/projects", nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestProjectLifecycleAndKPIs(t *testing.T) {
	h := newTestServer(t)
	project := createProject(t, h)
	if project.OrganizationID != "org-a" || project.LeadID != "prof-a" || project.Status != "BORRADOR" {
		t.Fatalf("unexpected project: %+v", project)
	}

	base := "/api/v1/projects/" + project.ID
	resp := do(t, h, &student, http.MethodPut, base+"/energy/gas_natural", gasForm("1,000"))
	if resp.Code != http.StatusOK {
		t.Fatalf("upsert: %d %s", resp.Code, resp.Body.String())
	}
	resp = do(t, h, &student, http.MethodPut, base+"/energy/gas_natural", gasForm("2,000"))
	if resp.Code != http.StatusOK {
		t.Fatalf("second upsert: %d %s", resp.Code, resp.Body.String())
	}
	record := decode[recordResponse](t, resp)
	if record.AnnualKWh != 2000 || record.CostPerKWh != 1500 {
		t.Fatalf("derived fields not recomputed: %+v", record)
	}

	resp = do(t, h, &student, http.MethodGet, base+"/energy", nil)
	records := decode[[]recordResponse](t, resp)
	if len(records) != 1 {
		t.Fatalf("expected one record per fuel, got %d", len(records))
	}

	resp = do(t, h, &student, http.MethodPut, base+"/production", map[string]any{"production_total": 500, "production_unit": "Ton"})
	if resp.Code != http.StatusOK {
		t.Fatalf("production: %d %s", resp.Code, resp.Body.String())
	}

	resp = do(t, h, &student, http.MethodGet, base+"/kpis", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("kpis: %d %s", resp.Code, resp.Body.String())
	}
	kpis := decode[kpiResponse](t, resp)
	if kpis.TotalEnergy != 2000 || kpis.ThermalKWh != 2000 || kpis.IDES != 4 {
		t.Fatalf("unexpected kpis: %+v", kpis)
	}

	resp = do(t, h, &professor, http.MethodGet, base+"/activity?limit=2", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("activity: %d %s", resp.Code, resp.Body.String())
	}
	if activity := decode[[]activityResponse](t, resp); len(activity) != 2 || activity[0].Action != "project.production" {
		t.Fatalf("unexpected activity: %+v", activity)
	}
	resp = do(t, h, &student, http.MethodGet, base+"/activity", nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("student activity: expected 403, got %d", resp.Code)
	}

	resp = do(t, h, &outsider, http.MethodGet, base+"/kpis", nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("outsider should be forbidden, got %d", resp.Code)
	}
}

func TestUpsertRecordValidation(t *testing.T) {
	h := newTestServer(t)
	project := createProject(t, h)

	form := gasForm("mucho")
	resp := do(t, h, &student, http.MethodPut, "/api/v1/projects/"+project.ID+"/energy/gas_natural", form)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	body := decode[errorResponse](t, resp)
	if body.Fields["consumo_anual_orig"] == "" {
		t.Fatalf("expected field error, got %+v", body)
	}

	resp = do(t, h, &student, http.MethodPut, "/api/v1/projects/"+project.ID+"/energy/nuclear", gasForm("1"))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("unknown fuel: expected 404, got %d", resp.Code)
	}

	resp = do(t, h, &student, http.MethodGet, "/api/v1/projects/"+project.ID+"/energy", nil)
	if records := decode[[]recordResponse](t, resp); len(records) != 0 {
		t.Fatalf("invalid submission persisted %d records", len(records))
	}
}

func TestStudentCannotCreateProject(t *testing.T) {
	h := newTestServer(t)
	resp := do(t, h, &student, http.MethodPost, "/api/v1/projects", map[string]any{"name": "x"})
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}

func TestProjectVisibility(t *testing.T) {
	h := newTestServer(t)
	project := createProject(t, h)

	for _, tc := range []struct {
		name     string
		identity auth.Identity
		want     int
	}{
		{"student member", student, 1},
		{"student of other center", outsider, 0},
		{"center director", director, 1},
		{"national director", national, 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			resp := do(t, h, &tc.identity, http.MethodGet, "/api/v1/projects", nil)
			if got := len(decode[[]projectResponse](t, resp)); got != tc.want {
				t.Fatalf("expected %d projects, got %d", tc.want, got)
			}
		})
	}

	resp := do(t, h, &outsider, http.MethodGet, "/api/v1/projects/"+project.ID, nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
	resp = do(t, h, &student, http.MethodGet, "/api/v1/projects/missing", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestSetStatusRequiresEditor(t *testing.T) {
	h := newTestServer(t)
	project := createProject(t, h)
	path := "/api/v1/projects/" + project.ID + "/status"

	resp := do(t, h, &student, http.MethodPut, path, map[string]string{"status": "EJECUCION"})
	if resp.Code != http.StatusForbidden {
		t.Fatalf("student: expected 403, got %d", resp.Code)
	}
	resp = do(t, h, &director, http.MethodPut, path, map[string]string{"status": "ejecucion"})
	if resp.Code != http.StatusOK {
		t.Fatalf("director: %d %s", resp.Code, resp.Body.String())
	}
	if got := decode[projectResponse](t, resp).Status; got != "EJECUCION" {
		t.Fatalf("status = %s", got)
	}
	resp = do(t, h, &director, http.MethodPut, path, map[string]string{"status": "CERRADO"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("invalid status: expected 400, got %d", resp.Code)
	}
}

func TestDashboards(t *testing.T) {
	h := newTestServer(t)
	project := createProject(t, h)
	do(t, h, &student, http.MethodPut, "/api/v1/projects/"+project.ID+"/energy/gas_natural", gasForm("2,000"))

	resp := do(t, h, &director, http.MethodGet, "/api/v1/dashboards/strategic", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("strategic: %d %s", resp.Code, resp.Body.String())
	}
	strategic := decode[strategicResponse](t, resp)
	if strategic.Report.ProjectCount != 1 || strategic.Report.Totals.Energy != 2000 || len(strategic.Report.Sources) != 6 {
		t.Fatalf("unexpected strategic report: %+v", strategic.Report)
	}

	resp = do(t, h, &professor, http.MethodGet, "/api/v1/dashboards/strategic", nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("professor: expected 403, got %d", resp.Code)
	}
	resp = do(t, h, &director, http.MethodGet, "/api/v1/dashboards/national", nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("center director: expected 403, got %d", resp.Code)
	}

	resp = do(t, h, &national, http.MethodGet, "/api/v1/dashboards/national", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("national: %d %s", resp.Code, resp.Body.String())
	}
	nationalBody := decode[nationalResponse](t, resp)
	if len(nationalBody.Ranking) != 2 || nationalBody.Ranking[0].OrganizationID != "org-a" {
		t.Fatalf("unexpected ranking: %+v", nationalBody.Ranking)
	}

	resp = do(t, h, &student, http.MethodGet, "/api/v1/dashboards/workspace", nil)
	if ws := decode[workspaceResponse](t, resp); ws.ProjectCount != 1 || len(ws.Recent) != 1 {
		t.Fatalf("unexpected workspace: %+v", ws)
	}

	resp = do(t, h, nil, http.MethodGet, "/api/v1/public/summary", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("public: %d", resp.Code)
	}
	if summary := decode[publicResponse](t, resp); summary.ActiveOrganizations != 2 {
		t.Fatalf("unexpected public summary: %+v", summary)
	}
}

func TestReportExports(t *testing.T) {
	h := newTestServer(t)
	project := createProject(t, h)

	resp := do(t, h, &student, http.MethodGet, "/api/v1/projects/"+project.ID+"/report.pdf", nil)
	if resp.Code != http.StatusOK || !strings.HasPrefix(resp.Body.String(), "%PDF") {
		t.Fatalf("pdf export: %d", resp.Code)
	}
	if got := resp.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("content type = %s", got)
	}

	resp = do(t, h, &director, http.MethodGet, "/api/v1/dashboards/strategic/report.xlsx", nil)
	if resp.Code != http.StatusOK || resp.Body.Len() == 0 {
		t.Fatalf("xlsx export: %d", resp.Code)
	}
	if !strings.Contains(resp.Header().Get("Content-Disposition"), "dashboard_estrategico.xlsx") {
		t.Fatalf("unexpected disposition: %s", resp.Header().Get("Content-Disposition"))
	}

	resp = do(t, h, &national, http.MethodGet, "/api/v1/dashboards/national/report.csv", nil)
	if resp.Code != http.StatusOK || !strings.HasPrefix(resp.Header().Get("Content-Type"), "text/csv") {
		t.Fatalf("csv export: %d %s", resp.Code, resp.Header().Get("Content-Type"))
	}

	resp = do(t, h, &outsider, http.MethodGet, "/api/v1/projects/"+project.ID+"/report.xlsx", nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("outsider export: expected 403, got %d", resp.Code)
	}
}

func TestDirectoryEndpoints(t *testing.T) {
	h := newTestServer(t)

	resp := do(t, h, &director, http.MethodPost, "/api/v1/users", map[string]string{
		"username": "nuevo", "email": "nuevo@example.com", "role": "DIRECTOR_NACIONAL", "password": "segura123",
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("role escalation: expected 400, got %d %s", resp.Code, resp.Body.String())
	}

	resp = do(t, h, &director, http.MethodPost, "/api/v1/users", map[string]string{
		"username": "nuevo", "email": "nuevo@example.com", "role": "ESTUDIANTE", "organization_id": "org-b", "password": "segura123",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create user: %d %s", resp.Code, resp.Body.String())
	}
	if created := decode[userResponse](t, resp); created.OrganizationID != "org-a" {
		t.Fatalf("director must create users in own center, got %s", created.OrganizationID)
	}

	createProject(t, h)
	resp = do(t, h, &director, http.MethodDelete, "/api/v1/companies/co-1", nil)
	if resp.Code != http.StatusConflict {
		t.Fatalf("delete referenced company: expected 409, got %d", resp.Code)
	}

	resp = do(t, h, &professor, http.MethodGet, "/api/v1/companies", nil)
	if resp.Code != http.StatusOK || len(decode[[]masterdata.Company](t, resp)) != 1 {
		t.Fatalf("list companies: %d", resp.Code)
	}

	resp = do(t, h, &national, http.MethodPost, "/api/v1/organizations", map[string]string{"name": "Centro Pacífico", "code": "cp", "region": "Pacífica"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create organization: %d %s", resp.Code, resp.Body.String())
	}
	if org := decode[masterdata.Organization](t, resp); org.Code != "CP" || !org.Active {
		t.Fatalf("unexpected organization: %+v", org)
	}
}

func TestRevokedAccountLosesAccessImmediately(t *testing.T) {
	h := newTestServer(t)
	project := createProject(t, h)
	resp := do(t, h, &student, http.MethodGet, "/api/v1/projects/"+project.ID, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("team member read: %d", resp.Code)
	}

	resp = do(t, h, &director, http.MethodPatch, "/api/v1/users/"+student.UserID, map[string]any{"active": false})
	if resp.Code != http.StatusOK {
		t.Fatalf("deactivate student: %d %s", resp.Code, resp.Body.String())
	}
	resp = do(t, h, &student, http.MethodGet, "/api/v1/projects/"+project.ID, nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("deactivated account: expected 401, got %d", resp.Code)
	}

	resp = do(t, h, &director, http.MethodPatch, "/api/v1/users/"+professor.UserID, map[string]any{"role": "ESTUDIANTE"})
	if resp.Code != http.StatusOK {
		t.Fatalf("demote professor: %d %s", resp.Code, resp.Body.String())
	}
	resp = do(t, h, &professor, http.MethodPost, "/api/v1/projects", map[string]string{"name": "Otro"})
	if resp.Code != http.StatusForbidden {
		t.Fatalf("demoted account: expected 403, got %d", resp.Code)
	}
}

func TestCenterDirectorCannotEditPeerDirector(t *testing.T) {
	h := newTestServer(t)
	resp := do(t, h, &national, http.MethodPost, "/api/v1/users", map[string]string{
		"username": "par", "role": "DIRECTOR_CENTRO", "organization_id": "org-a", "password": "original99",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create peer director: %d %s", resp.Code, resp.Body.String())
	}
	peer := decode[userResponse](t, resp)

	resp = do(t, h, &director, http.MethodPatch, "/api/v1/users/"+peer.ID, map[string]any{"password": "tomado9999", "active": false})
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d %s", resp.Code, resp.Body.String())
	}
	resp = do(t, h, nil, http.MethodPost, "/api/v1/auth/login", map[string]string{"login": "par", "password": "original99"})
	if resp.Code != http.StatusOK {
		t.Fatalf("peer director login after refused edit: %d", resp.Code)
	}
}

func TestNewsFeed(t *testing.T) {
	h := newTestServer(t)
	item := map[string]string{"titulo": "Nueva Auditoría", "resumen": "Resumen", "contenido": "Contenido"}

	resp := do(t, h, &director, http.MethodPost, "/api/v1/news", item)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("center director publish: expected 403, got %d", resp.Code)
	}
	resp = do(t, h, &national, http.MethodPost, "/api/v1/news", item)
	if resp.Code != http.StatusCreated {
		t.Fatalf("publish news: %d %s", resp.Code, resp.Body.String())
	}

	resp = do(t, h, nil, http.MethodGet, "/api/v1/public/summary", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("public: %d", resp.Code)
	}
	summary := decode[publicResponse](t, resp)
	if len(summary.News) != 1 || summary.News[0].Slug != "nueva-auditoria" {
		t.Fatalf("unexpected news feed: %+v", summary.News)
	}
}

func TestSchemaEndpoint(t *testing.T) {
	h := newTestServer(t)
	resp := do(t, h, &student, http.MethodGet, "/api/v1/energy/schema/electricidad", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("schema: %d", resp.Code)
	}
	body := decode[struct {
		Fuel   string           `json:"fuel"`
		Fields []map[string]any `json:"fields"`
	}](t, resp)
	if body.Fuel != "electricidad" || len(body.Fields) != 7 {
		t.Fatalf("unexpected schema: %+v", body)
	}

	resp = do(t, h, &student, http.MethodGet, "/api/v1/energy/schema/carbon", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("coal schema: %d", resp.Code)
	}
	coal := decode[struct {
		UnitFactor float64 `json:"unit_factor"`
	}](t, resp)
	if coal.UnitFactor != 1000 {
		t.Fatalf("coal unit factor: %v", coal.UnitFactor)
	}
}
