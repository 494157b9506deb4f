package application

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"energy-audit/internal/access"
	"energy-audit/internal/analytics/domain/kpi"
	audits "energy-audit/internal/audits/domain"
	"energy-audit/internal/auth"
	energy "energy-audit/internal/energy/domain"
	masterdata "energy-audit/internal/masterdata/domain"
	"energy-audit/internal/observability/logging"
	"energy-audit/internal/observability/metrics"
)

const (
	dashboardStrategic = "strategic"
	dashboardNational  = "national"
	dashboardProject   = "project"
	dashboardWorkspace = "workspace"
	dashboardPublic    = "public"

	recentProjects = 5
	publicNews     = 3
)

// NationalScopeLabel names the scope of an unrestricted dashboard.
const NationalScopeLabel = "Nacional"

// DashboardService builds the KPI dashboards from persisted projects and records.
type DashboardService struct {
	projects      audits.ProjectRepository
	records       energy.Repository
	organizations masterdata.OrganizationRepository
	users         masterdata.UserRepository
	news          masterdata.NewsRepository
	logger        *logging.Logger
}

// NewDashboardService constructs the service.
func NewDashboardService(
	projects audits.ProjectRepository,
	records energy.Repository,
	organizations masterdata.OrganizationRepository,
	users masterdata.UserRepository,
	news masterdata.NewsRepository,
	logger *logging.Logger,
) (*DashboardService, error) {
	if projects == nil || records == nil || organizations == nil || users == nil || news == nil {
		return nil, errors.New("dashboard service: nil repository")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &DashboardService{
		projects:      projects,
		records:       records,
		organizations: organizations,
		users:         users,
		news:          news,
		logger:        logger.WithComponent("dashboards"),
	}, nil
}

// Filter narrows the strategic dashboard.
type Filter struct {
	ProjectID string
	LeadID    string
}

// Option is a selectable filter value.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// StrategicDashboard is the organization-level rollup with its filters.
type StrategicDashboard struct {
	ScopeLabel     string
	OrganizationID string
	Filter         Filter
	Report         kpi.Report
	ProjectOptions []Option
	LeadOptions    []Option
}

// NationalDashboard is either the ranked comparison of organizations or,
// when one is selected, its detailed dashboard.
type NationalDashboard struct {
	OrganizationID string
	Organizations  []Option
	Summary        *kpi.NationalReport
	Detail         *StrategicDashboard
}

// ProjectKPIs is the indicator view of one project.
type ProjectKPIs struct {
	Project audits.Project
	Records []energy.Record
	KPIs    kpi.KpiSet
}

// Workspace summarizes the caller's own projects.
type Workspace struct {
	ProjectCount     int
	InExecutionCount int
	Recent           []audits.Project
}

// OrganizationEntry is one line of the public directory.
type OrganizationEntry struct {
	Organization masterdata.Organization
	ProjectCount int
}

// PublicSummary is shown without authentication.
type PublicSummary struct {
	FinalizedProjects   int
	ActiveOrganizations int
	Regions             []string
	Directory           []OrganizationEntry
	News                []masterdata.News
}

func observe(name string, start time.Time, err error) {
	result := metrics.ResultSuccess
	switch {
	case err == nil:
	case errors.Is(err, access.ErrPermissionDenied):
		result = metrics.ResultDenied
		metrics.IncPermissionDenied("dashboard." + name)
	case errors.Is(err, audits.ErrProjectNotFound), errors.Is(err, masterdata.ErrNotFound):
		result = metrics.ResultNotFound
	default:
		result = metrics.ResultError
	}
	metrics.ObserveDashboard(name, result, time.Since(start))
}

// Strategic builds the dashboard of a director: national directors and
// superusers see every project, center directors their organization.
func (s *DashboardService) Strategic(ctx context.Context, identity auth.Identity, filter Filter) (dash *StrategicDashboard, err error) {
	start := time.Now()
	defer func() { observe(dashboardStrategic, start, err) }()

	if !access.CanViewStrategicDashboard(identity) {
		return nil, access.ErrPermissionDenied
	}
	if identity.Superuser || identity.Role == auth.RoleNationalDirector {
		return s.detail(ctx, "", NationalScopeLabel, filter)
	}
	if identity.OrganizationID == "" {
		return &StrategicDashboard{Filter: filter, Report: kpi.Aggregate(nil)}, nil
	}
	org, err := s.organizations.Get(ctx, identity.OrganizationID)
	if err != nil {
		return nil, err
	}
	label := identity.OrganizationID
	if org != nil {
		label = org.Name
	}
	return s.detail(ctx, identity.OrganizationID, label, filter)
}

// National builds the national comparison, or the detail of one organization.
func (s *DashboardService) National(ctx context.Context, identity auth.Identity, organizationID string) (dash *NationalDashboard, err error) {
	start := time.Now()
	defer func() { observe(dashboardNational, start, err) }()

	if !access.CanViewNationalDashboard(identity) {
		return nil, access.ErrPermissionDenied
	}
	orgs, err := s.organizations.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	dash = &NationalDashboard{OrganizationID: organizationID, Organizations: make([]Option, 0, len(orgs))}
	for _, org := range orgs {
		dash.Organizations = append(dash.Organizations, Option{ID: org.ID, Label: org.Name})
	}

	if organizationID != "" {
		org, err := s.organizations.Get(ctx, organizationID)
		if err != nil {
			return nil, err
		}
		if org == nil || !org.Active {
			return nil, masterdata.ErrNotFound
		}
		detail, err := s.detail(ctx, org.ID, org.Name, Filter{})
		if err != nil {
			return nil, err
		}
		dash.Detail = detail
		return dash, nil
	}

	projects, err := s.projects.List(ctx, audits.ProjectFilter{})
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	items, err := s.withRecords(ctx, projects)
	if err != nil {
		return nil, err
	}
	summary := kpi.AggregateNational(orgs, items)
	dash.Summary = &summary
	return dash, nil
}

// ProjectKPIs computes the indicators of a project visible to the identity.
func (s *DashboardService) ProjectKPIs(ctx context.Context, identity auth.Identity, projectID string) (view *ProjectKPIs, err error) {
	start := time.Now()
	defer func() { observe(dashboardProject, start, err) }()

	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	if project == nil {
		return nil, audits.ErrProjectNotFound
	}
	if !access.CanAccess(identity, *project) {
		return nil, access.ErrPermissionDenied
	}
	records, err := s.records.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return &ProjectKPIs{
		Project: *project,
		Records: records,
		KPIs:    kpi.ComputeProject(*project, records),
	}, nil
}

// Workspace summarizes the projects in the caller's scope. Callers without
// a recognized role get an empty workspace.
func (s *DashboardService) Workspace(ctx context.Context, identity auth.Identity) (ws *Workspace, err error) {
	start := time.Now()
	defer func() { observe(dashboardWorkspace, start, err) }()

	filter := access.Resolve(identity).Filter()
	if filter.None {
		return &Workspace{Recent: []audits.Project{}}, nil
	}
	projects, err := s.projects.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	ws = &Workspace{ProjectCount: len(projects)}
	for _, project := range projects {
		if project.Status == audits.StatusInExecution {
			ws.InExecutionCount++
		}
	}
	ws.Recent = projects[:min(recentProjects, len(projects))]
	return ws, nil
}

// Public builds the unauthenticated landing summary.
func (s *DashboardService) Public(ctx context.Context) (summary *PublicSummary, err error) {
	start := time.Now()
	defer func() { observe(dashboardPublic, start, err) }()

	orgs, err := s.organizations.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	projects, err := s.projects.List(ctx, audits.ProjectFilter{})
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	counts := make(map[string]int, len(orgs))
	summary = &PublicSummary{ActiveOrganizations: len(orgs)}
	for _, project := range projects {
		counts[project.OrganizationID]++
		if project.Status == audits.StatusFinalized {
			summary.FinalizedProjects++
		}
	}
	regions := make(map[string]struct{})
	summary.Directory = make([]OrganizationEntry, 0, len(orgs))
	for _, org := range orgs {
		summary.Directory = append(summary.Directory, OrganizationEntry{Organization: org, ProjectCount: counts[org.ID]})
		if region := strings.TrimSpace(org.Region); region != "" {
			regions[region] = struct{}{}
		}
	}
	sort.SliceStable(summary.Directory, func(i, j int) bool {
		a, b := summary.Directory[i], summary.Directory[j]
		if a.ProjectCount != b.ProjectCount {
			return a.ProjectCount > b.ProjectCount
		}
		return a.Organization.Name < b.Organization.Name
	})
	summary.Regions = make([]string, 0, len(regions))
	for region := range regions {
		summary.Regions = append(summary.Regions, region)
	}
	sort.Strings(summary.Regions)
	if summary.News, err = s.news.ListPublished(ctx, publicNews); err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}
	return summary, nil
}

// detail builds the filtered rollup of one organization, or of every
// project when organizationID is empty.
func (s *DashboardService) detail(ctx context.Context, organizationID, label string, filter Filter) (*StrategicDashboard, error) {
	base := audits.ProjectFilter{OrganizationID: organizationID}
	projects, err := s.projects.List(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	leads, err := s.leadOptions(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	dash := &StrategicDashboard{
		ScopeLabel:     label,
		OrganizationID: organizationID,
		Filter:         filter,
		LeadOptions:    leads,
		ProjectOptions: make([]Option, 0, len(projects)),
	}
	selection := audits.ProjectFilter{ProjectID: filter.ProjectID, LeadID: filter.LeadID}
	selected := make([]audits.Project, 0, len(projects))
	for _, project := range projects {
		if filter.LeadID == "" || project.LeadID == filter.LeadID {
			dash.ProjectOptions = append(dash.ProjectOptions, Option{ID: project.ID, Label: project.Name})
		}
		if selection.Matches(project) {
			selected = append(selected, project)
		}
	}

	items, err := s.withRecords(ctx, selected)
	if err != nil {
		return nil, err
	}
	dash.Report = kpi.Aggregate(items)
	s.logger.WithIdentity(ctx).Debugw("dashboard built", "organization_id", organizationID, "projects", dash.Report.ProjectCount)
	return dash, nil
}

// leadOptions lists professors and center directors of the organization;
// the national scope also offers national directors.
func (s *DashboardService) leadOptions(ctx context.Context, organizationID string) ([]Option, error) {
	roles := []auth.Role{auth.RoleProfessor, auth.RoleCenterDirector}
	if organizationID == "" {
		roles = append(roles, auth.RoleNationalDirector)
	}
	users, err := s.users.List(ctx, masterdata.UserFilter{OrganizationID: organizationID, Roles: roles, ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	options := make([]Option, 0, len(users))
	for _, user := range users {
		options = append(options, Option{ID: user.ID, Label: user.DisplayName()})
	}
	slices.SortStableFunc(options, func(a, b Option) int { return strings.Compare(a.Label, b.Label) })
	return options, nil
}

// withRecords fetches the records of every project in one call.
func (s *DashboardService) withRecords(ctx context.Context, projects []audits.Project) ([]kpi.ProjectRecords, error) {
	ids := make([]string, 0, len(projects))
	for _, project := range projects {
		ids = append(ids, project.ID)
	}
	grouped, err := s.records.ListByProjects(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	items := make([]kpi.ProjectRecords, 0, len(projects))
	for _, project := range projects {
		items = append(items, kpi.ProjectRecords{Project: project, Records: grouped[project.ID]})
	}
	return items, nil
}
