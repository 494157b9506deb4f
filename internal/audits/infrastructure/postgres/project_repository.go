package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"

	audits "energy-audit/internal/audits/domain"
)

var builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// ProjectRepository is a Postgres implementation for audit projects.
type ProjectRepository struct {
	db *sql.DB
}

// NewProjectRepository constructs a repository.
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

type projectRow struct {
	ID                 string          `db:"id"`
	OrganizationID     string          `db:"organization_id"`
	CompanyID          string          `db:"company_id"`
	LeadID             string          `db:"lead_id"`
	Name               string          `db:"name"`
	StartDate          time.Time       `db:"start_date"`
	EstimatedCloseDate sql.NullTime    `db:"estimated_close_date"`
	Status             string          `db:"status"`
	ProductionTotal    sql.NullFloat64 `db:"production_total"`
	ProductionUnit     string          `db:"production_unit"`
	CreatedAt          time.Time       `db:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at"`
	OrganizationName   string          `db:"organization_name"`
	CompanyName        string          `db:"company_name"`
	LeadName           string          `db:"lead_name"`
}

func (row projectRow) toDomain() audits.Project {
	project := audits.Project{
		ID:               row.ID,
		OrganizationID:   row.OrganizationID,
		CompanyID:        row.CompanyID,
		LeadID:           row.LeadID,
		Name:             row.Name,
		StartDate:        row.StartDate.UTC(),
		Status:           audits.Status(row.Status),
		ProductionUnit:   row.ProductionUnit,
		CreatedAt:        row.CreatedAt.UTC(),
		UpdatedAt:        row.UpdatedAt.UTC(),
		OrganizationName: row.OrganizationName,
		CompanyName:      row.CompanyName,
		LeadName:         row.LeadName,
	}
	if row.EstimatedCloseDate.Valid {
		closeDate := row.EstimatedCloseDate.Time.UTC()
		project.EstimatedCloseDate = &closeDate
	}
	if row.ProductionTotal.Valid {
		total := row.ProductionTotal.Float64
		project.ProductionTotal = &total
	}
	return project
}

func selectProjects() squirrel.SelectBuilder {
	return builder.Select(
		"p.id",
		"p.organization_id",
		"p.company_id",
		"COALESCE(p.lead_id, '') AS lead_id",
		"p.name",
		"p.start_date",
		"p.estimated_close_date",
		"p.status",
		"p.production_total",
		"COALESCE(p.production_unit, '') AS production_unit",
		"p.created_at",
		"p.updated_at",
		"o.name AS organization_name",
		"c.legal_name AS company_name",
		"COALESCE(NULLIF(TRIM(u.first_name || ' ' || u.last_name), ''), u.username, '') AS lead_name",
	).
		From("projects p").
		Join("organizations o ON o.id = p.organization_id").
		Join("companies c ON c.id = p.company_id").
		LeftJoin("users u ON u.id = p.lead_id")
}

func applyFilter(q squirrel.SelectBuilder, filter audits.ProjectFilter) squirrel.SelectBuilder {
	if filter.None {
		return q.Where("FALSE")
	}
	if filter.ProjectID != "" {
		q = q.Where(squirrel.Eq{"p.id": filter.ProjectID})
	}
	if filter.OrganizationID != "" {
		q = q.Where(squirrel.Eq{"p.organization_id": filter.OrganizationID})
	}
	if filter.LeadID != "" {
		q = q.Where(squirrel.Eq{"p.lead_id": filter.LeadID})
	}
	if filter.MemberID != "" {
		q = q.Where("EXISTS (SELECT 1 FROM project_team t WHERE t.project_id = p.id AND t.user_id = ?)", filter.MemberID)
	}
	if filter.CompanyID != "" {
		q = q.Where(squirrel.Eq{"p.company_id": filter.CompanyID})
	}
	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"p.status": string(filter.Status)})
	}
	return q
}

// Get loads a project by id.
func (r *ProjectRepository) Get(ctx context.Context, id string) (*audits.Project, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("project repo: nil db")
	}
	if id == "" {
		return nil, errors.New("project repo: empty id")
	}
	projects, err := r.List(ctx, audits.ProjectFilter{ProjectID: id})
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, nil
	}
	return &projects[0], nil
}

// List returns matching projects, most recently created first.
func (r *ProjectRepository) List(ctx context.Context, filter audits.ProjectFilter) ([]audits.Project, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("project repo: nil db")
	}
	query, args, err := applyFilter(selectProjects(), filter).OrderBy("p.created_at DESC", "p.id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var rows []projectRow
	if err := sqlscan.Select(ctx, r.db, &rows, query, args...); err != nil {
		return nil, err
	}
	projects := make([]audits.Project, 0, len(rows))
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		projects = append(projects, row.toDomain())
		ids = append(ids, row.ID)
	}
	teams, err := r.loadTeams(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		projects[i].Team = teams[projects[i].ID]
	}
	return projects, nil
}

type teamRow struct {
	ProjectID string `db:"project_id"`
	UserID    string `db:"user_id"`
}

func (r *ProjectRepository) loadTeams(ctx context.Context, projectIDs []string) (map[string][]string, error) {
	teams := make(map[string][]string, len(projectIDs))
	if len(projectIDs) == 0 {
		return teams, nil
	}
	query, args, err := builder.Select("project_id", "user_id").
		From("project_team").
		Where(squirrel.Eq{"project_id": projectIDs}).
		OrderBy("project_id", "user_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var rows []teamRow
	if err := sqlscan.Select(ctx, r.db, &rows, query, args...); err != nil {
		return nil, err
	}
	for _, row := range rows {
		teams[row.ProjectID] = append(teams[row.ProjectID], row.UserID)
	}
	return teams, nil
}

// Save upserts a project and replaces its team. The organization is never updated.
func (r *ProjectRepository) Save(ctx context.Context, project *audits.Project) (err error) {
	if r == nil || r.db == nil {
		return errors.New("project repo: nil db")
	}
	if project == nil {
		return errors.New("project repo: nil project")
	}
	if project.ID == "" {
		project.ID = uuid.NewString()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var production sql.NullFloat64
	if project.ProductionTotal != nil {
		production = sql.NullFloat64{Float64: *project.ProductionTotal, Valid: true}
	}
	var closeDate sql.NullTime
	if project.EstimatedCloseDate != nil {
		closeDate = sql.NullTime{Time: *project.EstimatedCloseDate, Valid: true}
	}

	const upsert = `
INSERT INTO projects (
	id,
	organization_id,
	company_id,
	lead_id,
	name,
	start_date,
	estimated_close_date,
	status,
	production_total,
	production_unit
) VALUES (
	$1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, NULLIF($10, '')
)
ON CONFLICT (id)
DO UPDATE SET
	company_id = EXCLUDED.company_id,
	lead_id = EXCLUDED.lead_id,
	name = EXCLUDED.name,
	start_date = EXCLUDED.start_date,
	estimated_close_date = EXCLUDED.estimated_close_date,
	status = EXCLUDED.status,
	production_total = EXCLUDED.production_total,
	production_unit = EXCLUDED.production_unit,
	updated_at = NOW()
RETURNING organization_id, created_at, updated_at`

	var createdAt, updatedAt time.Time
	if err = tx.QueryRowContext(
		ctx,
		upsert,
		project.ID,
		project.OrganizationID,
		project.CompanyID,
		project.LeadID,
		project.Name,
		project.StartDate,
		closeDate,
		string(project.Status),
		production,
		project.ProductionUnit,
	).Scan(&project.OrganizationID, &createdAt, &updatedAt); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM project_team WHERE project_id = $1`, project.ID); err != nil {
		return err
	}
	if len(project.Team) > 0 {
		insert := builder.Insert("project_team").Columns("project_id", "user_id")
		for _, member := range project.Team {
			insert = insert.Values(project.ID, member)
		}
		query, args, buildErr := insert.Suffix("ON CONFLICT DO NOTHING").ToSql()
		if buildErr != nil {
			err = fmt.Errorf("build query: %w", buildErr)
			return err
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	project.CreatedAt = createdAt.UTC()
	project.UpdatedAt = updatedAt.UTC()
	return nil
}

// CountByCompany counts projects referencing the company.
func (r *ProjectRepository) CountByCompany(ctx context.Context, companyID string) (int, error) {
	if r == nil || r.db == nil {
		return 0, errors.New("project repo: nil db")
	}
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects WHERE company_id = $1`, companyID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
