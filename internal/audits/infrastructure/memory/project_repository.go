package memory

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	audits "energy-audit/internal/audits/domain"
)

// ProjectRepository is an in-memory repository for demo/testing.
type ProjectRepository struct {
	mu   sync.RWMutex
	data map[string]audits.Project
	now  func() time.Time
}

// NewProjectRepository constructs a repository.
func NewProjectRepository() *ProjectRepository {
	return &ProjectRepository{
		data: make(map[string]audits.Project),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Get loads a project by id.
func (r *ProjectRepository) Get(ctx context.Context, id string) (*audits.Project, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	project, ok := r.data[id]
	if !ok {
		return nil, nil
	}
	project = clone(project)
	return &project, nil
}

// List returns matching projects, most recently created first.
func (r *ProjectRepository) List(ctx context.Context, filter audits.ProjectFilter) ([]audits.Project, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]audits.Project, 0, len(r.data))
	for _, project := range r.data {
		if filter.Matches(project) {
			result = append(result, clone(project))
		}
	}
	slices.SortFunc(result, audits.CompareRecentFirst)
	return result, nil
}

// Save inserts or updates a project. The organization is kept from the first save.
func (r *ProjectRepository) Save(ctx context.Context, project *audits.Project) error {
	_ = ctx
	if project == nil {
		return errors.New("project repo: nil project")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	if existing, ok := r.data[project.ID]; ok {
		project.OrganizationID = existing.OrganizationID
		project.CreatedAt = existing.CreatedAt
	} else if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	project.UpdatedAt = now
	r.data[project.ID] = clone(*project)
	return nil
}

// CountByCompany counts projects referencing the company.
func (r *ProjectRepository) CountByCompany(ctx context.Context, companyID string) (int, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, project := range r.data {
		if project.CompanyID == companyID {
			count++
		}
	}
	return count, nil
}

func clone(p audits.Project) audits.Project {
	p.Team = slices.Clone(p.Team)
	if p.ProductionTotal != nil {
		v := *p.ProductionTotal
		p.ProductionTotal = &v
	}
	if p.EstimatedCloseDate != nil {
		v := *p.EstimatedCloseDate
		p.EstimatedCloseDate = &v
	}
	return p
}
