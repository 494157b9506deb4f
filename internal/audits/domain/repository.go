package audits

import "context"

// ProjectRepository manages project persistence.
type ProjectRepository interface {
	// Get returns nil, nil when the project does not exist.
	Get(ctx context.Context, id string) (*Project, error)
	// List returns matching projects, most recently created first.
	List(ctx context.Context, filter ProjectFilter) ([]Project, error)
	Save(ctx context.Context, project *Project) error
	CountByCompany(ctx context.Context, companyID string) (int, error)
}

// DocumentRepository manages document metadata.
type DocumentRepository interface {
	Add(ctx context.Context, doc *Document) error
	ListByProject(ctx context.Context, projectID string) ([]Document, error)
}
