package postgres_test

import (
	"context"
	"database/sql"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	audits "energy-audit/internal/audits/domain"
	auditspostgres "energy-audit/internal/audits/infrastructure/postgres"
	"energy-audit/migrations"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := migrations.Apply(context.Background(), db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return db
}

// directory holds the ids of the rows seeded for one test.
type directory struct {
	orgA, orgB   string
	companyA     string
	companyB     string
	lead, member string
	other        string
}

func seedDirectory(t *testing.T, db *sql.DB) directory {
	t.Helper()
	ctx := context.Background()
	s := uuid.NewString()[:8]
	d := directory{
		orgA: "org-a-" + s, orgB: "org-b-" + s,
		companyA: "co-a-" + s, companyB: "co-b-" + s,
		lead: "lead-" + s, member: "member-" + s, other: "other-" + s,
	}
	statements := []struct {
		query string
		args  []any
	}{
		{`INSERT INTO organizations (id, name, code, region) VALUES ($1, $2, $3, 'Andina')`, []any{d.orgA, "Centro A " + s, "A" + s}},
		{`INSERT INTO organizations (id, name, code, region) VALUES ($1, $2, $3, 'Caribe')`, []any{d.orgB, "Centro B " + s, "B" + s}},
		{`INSERT INTO companies (id, legal_name, tax_id) VALUES ($1, 'Textiles SA', $2)`, []any{d.companyA, "nit-a-" + s}},
		{`INSERT INTO companies (id, legal_name, tax_id) VALUES ($1, 'Lácteos SA', $2)`, []any{d.companyB, "nit-b-" + s}},
		{`INSERT INTO users (id, username, first_name, last_name, role, organization_id) VALUES ($1, $2, 'Laura', 'Gómez', 'PROFESOR', $3)`, []any{d.lead, "lead-" + s, d.orgA}},
		{`INSERT INTO users (id, username, role, organization_id) VALUES ($1, $2, 'ESTUDIANTE', $3)`, []any{d.member, "member-" + s, d.orgA}},
		{`INSERT INTO users (id, username, role, organization_id) VALUES ($1, $2, 'ESTUDIANTE', $3)`, []any{d.other, "other-" + s, d.orgA}},
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt.query, stmt.args...); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	t.Cleanup(func() {
		_, _ = db.ExecContext(ctx, `DELETE FROM projects WHERE organization_id IN ($1, $2)`, d.orgA, d.orgB)
		_, _ = db.ExecContext(ctx, `DELETE FROM users WHERE id IN ($1, $2, $3)`, d.lead, d.member, d.other)
		_, _ = db.ExecContext(ctx, `DELETE FROM companies WHERE id IN ($1, $2)`, d.companyA, d.companyB)
		_, _ = db.ExecContext(ctx, `DELETE FROM organizations WHERE id IN ($1, $2)`, d.orgA, d.orgB)
	})
	return d
}

func newProject(orgID, companyID, leadID string, status audits.Status, team ...string) *audits.Project {
	return &audits.Project{
		OrganizationID: orgID,
		CompanyID:      companyID,
		LeadID:         leadID,
		Team:           team,
		Name:           "Auditoría " + uuid.NewString()[:4],
		StartDate:      time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Status:         status,
	}
}

func ids(projects []audits.Project) []string {
	out := make([]string, 0, len(projects))
	for _, p := range projects {
		out = append(out, p.ID)
	}
	return out
}

func TestProjectRepository_ListFilters_Postgres(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	d := seedDirectory(t, db)
	repo := auditspostgres.NewProjectRepository(db)

	led := newProject(d.orgA, d.companyA, d.lead, audits.StatusInExecution, d.member)
	unled := newProject(d.orgA, d.companyB, "", audits.StatusDraft)
	foreign := newProject(d.orgB, d.companyA, "", audits.StatusFinalized)
	for _, p := range []*audits.Project{led, unled, foreign} {
		if err := repo.Save(ctx, p); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	cases := []struct {
		name   string
		filter audits.ProjectFilter
		want   []string
	}{
		{"organization", audits.ProjectFilter{OrganizationID: d.orgA}, []string{unled.ID, led.ID}},
		{"lead", audits.ProjectFilter{LeadID: d.lead}, []string{led.ID}},
		{"member", audits.ProjectFilter{MemberID: d.member}, []string{led.ID}},
		{"non member", audits.ProjectFilter{MemberID: d.other}, []string{}},
		{"company", audits.ProjectFilter{CompanyID: d.companyA, OrganizationID: d.orgB}, []string{foreign.ID}},
		{"status", audits.ProjectFilter{OrganizationID: d.orgA, Status: audits.StatusDraft}, []string{unled.ID}},
		{"project", audits.ProjectFilter{ProjectID: led.ID}, []string{led.ID}},
		{"none", audits.NoProjects(), []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.List(ctx, tc.filter)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if !reflect.DeepEqual(ids(got), tc.want) {
				t.Fatalf("got %v, want %v", ids(got), tc.want)
			}
		})
	}

	loaded, err := repo.Get(ctx, led.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.LeadName != "Laura Gómez" || loaded.CompanyName != "Textiles SA" {
		t.Fatalf("joined names missing: %+v", loaded)
	}
	if missing, err := repo.Get(ctx, "missing-"+d.orgA); err != nil || missing != nil {
		t.Fatalf("expected nil, nil for a missing project, got %v, %v", missing, err)
	}
}

func TestProjectRepository_SaveReplacesTeamAndKeepsOrganization_Postgres(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	d := seedDirectory(t, db)
	repo := auditspostgres.NewProjectRepository(db)

	project := newProject(d.orgA, d.companyA, d.lead, audits.StatusDraft, d.member, d.other)
	if err := repo.Save(ctx, project); err != nil {
		t.Fatalf("save: %v", err)
	}
	created := project.CreatedAt

	project.Team = []string{d.other}
	project.OrganizationID = d.orgB
	total := 1250.5
	project.ProductionTotal = &total
	project.ProductionUnit = "Ton"
	if err := repo.Save(ctx, project); err != nil {
		t.Fatalf("resave: %v", err)
	}
	if project.OrganizationID != d.orgA {
		t.Fatalf("organization must not change, got %s", project.OrganizationID)
	}

	loaded, err := repo.Get(ctx, project.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !reflect.DeepEqual(loaded.Team, []string{d.other}) {
		t.Fatalf("team not replaced: %v", loaded.Team)
	}
	if loaded.OrganizationID != d.orgA || !loaded.CreatedAt.Equal(created) {
		t.Fatalf("unexpected reload: %+v", loaded)
	}
	if loaded.ProductionTotal == nil || *loaded.ProductionTotal != total || loaded.ProductionUnit != "Ton" {
		t.Fatalf("production not stored: %+v", loaded)
	}

	members, err := repo.List(ctx, audits.ProjectFilter{MemberID: d.member})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(members) != 0 {
		t.Fatalf("removed member still scoped to project")
	}
}

func TestProjectRepository_CountByCompany_Postgres(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	d := seedDirectory(t, db)
	repo := auditspostgres.NewProjectRepository(db)

	for _, p := range []*audits.Project{
		newProject(d.orgA, d.companyA, "", audits.StatusDraft),
		newProject(d.orgB, d.companyA, "", audits.StatusDraft),
	} {
		if err := repo.Save(ctx, p); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	if count, err := repo.CountByCompany(ctx, d.companyA); err != nil || count != 2 {
		t.Fatalf("count company A = %d, %v", count, err)
	}
	if count, err := repo.CountByCompany(ctx, d.companyB); err != nil || count != 0 {
		t.Fatalf("count company B = %d, %v", count, err)
	}
}

func TestDocumentRepository_AddAndList_Postgres(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	d := seedDirectory(t, db)
	projects := auditspostgres.NewProjectRepository(db)
	docs := auditspostgres.NewDocumentRepository(db)

	project := newProject(d.orgA, d.companyA, d.lead, audits.StatusDraft)
	if err := projects.Save(ctx, project); err != nil {
		t.Fatalf("save project: %v", err)
	}
	for _, doc := range []*audits.Document{
		{ProjectID: project.ID, Description: "Factura", StorageKey: "k1", FileName: "factura.pdf", UploadedBy: d.lead},
		{ProjectID: project.ID, Description: "Plano", StorageKey: "k2", FileName: "plano.pdf"},
	} {
		if err := docs.Add(ctx, doc); err != nil {
			t.Fatalf("add document: %v", err)
		}
		if doc.ID == "" || doc.UploadedAt.IsZero() {
			t.Fatalf("document not stamped: %+v", doc)
		}
	}

	listed, err := docs.ListByProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("list documents: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(listed))
	}
}
