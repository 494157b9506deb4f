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
	energy "energy-audit/internal/energy/domain"
	"energy-audit/internal/observability/logging"
	"energy-audit/internal/observability/metrics"
	"energy-audit/internal/validation"
)

// RecordService runs the energy logbook: one current record per fuel per project.
type RecordService struct {
	records  energy.Repository
	projects audits.ProjectRepository
	auditLog audit.Logger
	logger   *logging.Logger
}

// NewRecordService constructs the service.
func NewRecordService(records energy.Repository, projects audits.ProjectRepository, auditLog audit.Logger, logger *logging.Logger) (*RecordService, error) {
	if records == nil {
		return nil, errors.New("record service: nil record repository")
	}
	if projects == nil {
		return nil, errors.New("record service: nil project repository")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RecordService{
		records:  records,
		projects: projects,
		auditLog: auditLog,
		logger:   logger.WithComponent("energy"),
	}, nil
}

// Register validates form values for one fuel and upserts the project's record.
// Nothing is persisted when any field is rejected.
func (s *RecordService) Register(ctx context.Context, identity auth.Identity, projectID string, kind energy.FuelKind, values map[string]string) (*energy.Record, error) {
	start := time.Now()
	rec, err := s.register(ctx, identity, projectID, kind, values)
	metrics.ObserveRecordUpsert(string(kind), resultOf(err), time.Since(start))
	if err != nil {
		return nil, err
	}
	s.logger.WithIdentity(ctx).Infow("energy record saved", "project_id", projectID, "fuel", kind, "annual_kwh", rec.AnnualKWhEquivalent())
	return rec, nil
}

func (s *RecordService) register(ctx context.Context, identity auth.Identity, projectID string, kind energy.FuelKind, values map[string]string) (*energy.Record, error) {
	if !kind.IsValid() {
		return nil, energy.ErrUnknownFuelKind
	}
	project, err := s.accessibleProject(ctx, identity, projectID, "energy.register")
	if err != nil {
		return nil, err
	}
	input, err := energy.ParseInput(kind, values)
	if err != nil {
		return nil, err
	}
	rec, err := energy.NewRecord(project.ID, input)
	if err != nil {
		return nil, err
	}
	if err := s.records.Upsert(ctx, rec); err != nil {
		return nil, fmt.Errorf("upsert %s record: %w", kind, err)
	}
	audit.Record(ctx, s.auditLog, audit.Entry{
		OrganizationID: project.OrganizationID,
		ProjectID:      project.ID,
		Action:         "energy.upsert",
		ResourceType:   "energy_record",
		ResourceID:     rec.ID,
	}, map[string]any{"fuel": kind, "annual_kwh": rec.AnnualKWhEquivalent()})
	return rec, nil
}

// Get returns the record of a fuel in a visible project.
func (s *RecordService) Get(ctx context.Context, identity auth.Identity, projectID string, kind energy.FuelKind) (*energy.Record, error) {
	if !kind.IsValid() {
		return nil, energy.ErrUnknownFuelKind
	}
	if _, err := s.accessibleProject(ctx, identity, projectID, "energy.read"); err != nil {
		return nil, err
	}
	return s.records.Get(ctx, projectID, kind)
}

// List returns the records of a visible project in fuel order.
func (s *RecordService) List(ctx context.Context, identity auth.Identity, projectID string) ([]energy.Record, error) {
	if _, err := s.accessibleProject(ctx, identity, projectID, "energy.read"); err != nil {
		return nil, err
	}
	return s.records.ListByProject(ctx, projectID)
}

// Schema returns the form fields of a fuel.
func (s *RecordService) Schema(kind energy.FuelKind) ([]energy.FieldSpec, error) {
	return energy.Schema(kind)
}

func (s *RecordService) accessibleProject(ctx context.Context, identity auth.Identity, projectID, action string) (*audits.Project, error) {
	if projectID == "" {
		return nil, energy.ErrEmptyProjectID
	}
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	if project == nil {
		return nil, audits.ErrProjectNotFound
	}
	if !access.CanAccess(identity, *project) {
		metrics.IncPermissionDenied(action)
		return nil, access.ErrPermissionDenied
	}
	return project, nil
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, access.ErrPermissionDenied):
		return metrics.ResultDenied
	case errors.Is(err, audits.ErrProjectNotFound), errors.Is(err, energy.ErrUnknownFuelKind):
		return metrics.ResultNotFound
	default:
		if _, ok := validation.As(err); ok {
			return metrics.ResultInvalid
		}
		return metrics.ResultError
	}
}
