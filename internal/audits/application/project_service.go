package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"energy-audit/internal/access"
	"energy-audit/internal/audit"
	audits "energy-audit/internal/audits/domain"
	"energy-audit/internal/auth"
	masterdata "energy-audit/internal/masterdata/domain"
	"energy-audit/internal/observability/logging"
	"energy-audit/internal/observability/metrics"
	"energy-audit/internal/validation"
)

// Directory resolves the entities a project references.
type Directory struct {
	Organizations masterdata.OrganizationRepository
	Companies     masterdata.CompanyRepository
	Users         masterdata.UserRepository
}

// ProjectService manages audit projects and their attachments.
type ProjectService struct {
	projects  audits.ProjectRepository
	documents audits.DocumentRepository
	directory Directory
	auditLog  audit.Store
	logger    *logging.Logger
}

// NewProjectService constructs the service.
func NewProjectService(projects audits.ProjectRepository, documents audits.DocumentRepository, directory Directory, auditLog audit.Store, logger *logging.Logger) (*ProjectService, error) {
	if projects == nil {
		return nil, errors.New("project service: nil project repository")
	}
	if documents == nil {
		return nil, errors.New("project service: nil document repository")
	}
	if directory.Organizations == nil || directory.Companies == nil || directory.Users == nil {
		return nil, errors.New("project service: incomplete directory")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ProjectService{
		projects:  projects,
		documents: documents,
		directory: directory,
		auditLog:  auditLog,
		logger:    logger.WithComponent("projects"),
	}, nil
}

// ProjectInput is the project creation form.
type ProjectInput struct {
	OrganizationID     string
	CompanyID          string
	LeadID             string
	Team               []string
	Name               string
	StartDate          time.Time
	EstimatedCloseDate *time.Time
}

// Create registers a project. Professors and center directors create
// projects in their own organization; professors lead them by default.
func (s *ProjectService) Create(ctx context.Context, identity auth.Identity, input ProjectInput) (*audits.Project, error) {
	if !access.CanCreateProject(identity) {
		metrics.IncPermissionDenied("project.create")
		return nil, access.ErrPermissionDenied
	}
	project := audits.Project{
		OrganizationID:     input.OrganizationID,
		CompanyID:          input.CompanyID,
		LeadID:             input.LeadID,
		Team:               input.Team,
		Name:               input.Name,
		StartDate:          input.StartDate,
		EstimatedCloseDate: input.EstimatedCloseDate,
		Status:             audits.StatusDraft,
	}
	if !identity.Superuser && identity.Role != auth.RoleNationalDirector {
		project.OrganizationID = identity.OrganizationID
	}
	if project.LeadID == "" && identity.Role == auth.RoleProfessor {
		project.LeadID = identity.UserID
	}
	project.Normalize()
	if err := project.Validate(); err != nil {
		return nil, err
	}
	if err := s.resolve(ctx, &project); err != nil {
		return nil, err
	}
	if err := s.projects.Save(ctx, &project); err != nil {
		return nil, fmt.Errorf("save project: %w", err)
	}
	s.logger.WithIdentity(ctx).Infow("project created", "project_id", project.ID, "organization_id", project.OrganizationID)
	audit.Record(ctx, s.auditLog, audit.Entry{
		OrganizationID: project.OrganizationID,
		ProjectID:      project.ID,
		Action:         "project.create",
		ResourceType:   "project",
		ResourceID:     project.ID,
	}, map[string]string{"name": project.Name})
	return &project, nil
}

// Get returns a project visible to the identity.
func (s *ProjectService) Get(ctx context.Context, identity auth.Identity, id string) (*audits.Project, error) {
	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanAccess(identity, *project) {
		metrics.IncPermissionDenied("project.read")
		return nil, access.ErrPermissionDenied
	}
	return project, nil
}

// List returns the projects visible to the identity, narrowed by filter.
func (s *ProjectService) List(ctx context.Context, identity auth.Identity, filter audits.ProjectFilter) ([]audits.Project, error) {
	scope := access.Resolve(identity).Filter().And(filter)
	if scope.None {
		return []audits.Project{}, nil
	}
	return s.projects.List(ctx, scope)
}

// ProjectPatch carries the structural fields to change; nil fields are kept.
type ProjectPatch struct {
	Name               *string
	CompanyID          *string
	LeadID             *string
	Team               *[]string
	StartDate          *time.Time
	EstimatedCloseDate **time.Time
}

// Update edits the project structure. The owning organization never changes.
func (s *ProjectService) Update(ctx context.Context, identity auth.Identity, id string, patch ProjectPatch) (*audits.Project, error) {
	project, err := s.editable(ctx, identity, id, "project.update")
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		project.Name = *patch.Name
	}
	if patch.CompanyID != nil {
		project.CompanyID = *patch.CompanyID
	}
	if patch.LeadID != nil {
		project.LeadID = *patch.LeadID
	}
	if patch.Team != nil {
		project.Team = *patch.Team
	}
	if patch.StartDate != nil {
		project.StartDate = *patch.StartDate
	}
	if patch.EstimatedCloseDate != nil {
		project.EstimatedCloseDate = *patch.EstimatedCloseDate
	}
	project.Normalize()
	if err := project.Validate(); err != nil {
		return nil, err
	}
	if err := s.resolve(ctx, project); err != nil {
		return nil, err
	}
	return s.save(ctx, project, "project.update", nil)
}

// SetStatus moves the project to any allowed status.
func (s *ProjectService) SetStatus(ctx context.Context, identity auth.Identity, id string, status audits.Status) (*audits.Project, error) {
	if !status.IsValid() {
		return nil, validation.Field("project", "estado", "escoja una opción válida")
	}
	project, err := s.editable(ctx, identity, id, "project.status")
	if err != nil {
		return nil, err
	}
	previous := project.Status
	project.Status = status
	return s.save(ctx, project, "project.status", map[string]string{"from": string(previous), "to": string(status)})
}

// UpdateProduction sets the production figures used by the intensity indicator.
// Any team member may log them, like energy records.
func (s *ProjectService) UpdateProduction(ctx context.Context, identity auth.Identity, id string, total *float64, unit string) (*audits.Project, error) {
	project, err := s.Get(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	project.ProductionTotal = total
	project.ProductionUnit = unit
	project.Normalize()
	if err := project.Validate(); err != nil {
		return nil, err
	}
	return s.save(ctx, project, "project.production", map[string]any{"total": total, "unit": project.ProductionUnit})
}

// AddDocument attaches file metadata to a visible project.
func (s *ProjectService) AddDocument(ctx context.Context, identity auth.Identity, projectID string, doc audits.Document) (*audits.Document, error) {
	project, err := s.Get(ctx, identity, projectID)
	if err != nil {
		return nil, err
	}
	doc.ID = ""
	doc.ProjectID = project.ID
	doc.UploadedBy = identity.UserID
	doc.UploadedAt = time.Time{}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	if err := s.documents.Add(ctx, &doc); err != nil {
		return nil, fmt.Errorf("add document: %w", err)
	}
	audit.Record(ctx, s.auditLog, audit.Entry{
		OrganizationID: project.OrganizationID,
		ProjectID:      project.ID,
		Action:         "document.add",
		ResourceType:   "document",
		ResourceID:     doc.ID,
	}, map[string]string{"file_name": doc.FileName})
	return &doc, nil
}

// Documents lists the attachments of a visible project.
func (s *ProjectService) Documents(ctx context.Context, identity auth.Identity, projectID string) ([]audits.Document, error) {
	if _, err := s.Get(ctx, identity, projectID); err != nil {
		return nil, err
	}
	return s.documents.ListByProject(ctx, projectID)
}

// Activity returns the latest audit entries of a project. Only identities
// allowed to edit the project may read its trail.
func (s *ProjectService) Activity(ctx context.Context, identity auth.Identity, projectID string, limit int) ([]audit.Entry, error) {
	if _, err := s.editable(ctx, identity, projectID, "project.activity"); err != nil {
		return nil, err
	}
	if s.auditLog == nil {
		return []audit.Entry{}, nil
	}
	entries, err := s.auditLog.ListByProject(ctx, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	return entries, nil
}

func (s *ProjectService) load(ctx context.Context, id string) (*audits.Project, error) {
	if id == "" {
		return nil, audits.ErrProjectNotFound
	}
	project, err := s.projects.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	if project == nil {
		return nil, audits.ErrProjectNotFound
	}
	return project, nil
}

func (s *ProjectService) editable(ctx context.Context, identity auth.Identity, id, action string) (*audits.Project, error) {
	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanEditProject(identity, *project) {
		metrics.IncPermissionDenied(action)
		return nil, access.ErrPermissionDenied
	}
	return project, nil
}

func (s *ProjectService) save(ctx context.Context, project *audits.Project, action string, metadata any) (*audits.Project, error) {
	if err := s.projects.Save(ctx, project); err != nil {
		return nil, fmt.Errorf("save project: %w", err)
	}
	audit.Record(ctx, s.auditLog, audit.Entry{
		OrganizationID: project.OrganizationID,
		ProjectID:      project.ID,
		Action:         action,
		ResourceType:   "project",
		ResourceID:     project.ID,
	}, metadata)
	return project, nil
}

// resolve checks the referenced entities and refreshes the read-model names.
func (s *ProjectService) resolve(ctx context.Context, project *audits.Project) error {
	verr := validation.New("project")

	org, err := s.directory.Organizations.Get(ctx, project.OrganizationID)
	if err != nil {
		return err
	}
	if org == nil {
		verr.Add("organizacion", "escoja una opción válida")
	} else {
		project.OrganizationName = org.Name
	}

	company, err := s.directory.Companies.Get(ctx, project.CompanyID)
	if err != nil {
		return err
	}
	if company == nil {
		verr.Add("empresa", "escoja una opción válida")
	} else {
		project.CompanyName = company.LegalName
	}

	project.LeadName = ""
	if project.LeadID != "" {
		lead, err := s.directory.Users.Get(ctx, project.LeadID)
		if err != nil {
			return err
		}
		if lead == nil || !lead.Active {
			verr.Add("lider", "escoja una opción válida")
		} else {
			project.LeadName = lead.DisplayName()
		}
	}

	for _, member := range project.Team {
		user, err := s.directory.Users.Get(ctx, member)
		if err != nil {
			return err
		}
		if user == nil || !user.Active {
			verr.Add("equipo", "escoja una opción válida")
			break
		}
	}
	return verr.OrNil()
}
