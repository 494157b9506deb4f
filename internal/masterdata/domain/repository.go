package masterdata

import "context"

// OrganizationRepository manages organization persistence.
// Get returns nil, nil when the organization does not exist.
type OrganizationRepository interface {
	Get(ctx context.Context, id string) (*Organization, error)
	List(ctx context.Context, activeOnly bool) ([]Organization, error)
	Save(ctx context.Context, org *Organization) error
}

// CompanyRepository manages company persistence.
type CompanyRepository interface {
	Get(ctx context.Context, id string) (*Company, error)
	List(ctx context.Context) ([]Company, error)
	Save(ctx context.Context, company *Company) error
	Delete(ctx context.Context, id string) error
}

// UserRepository manages user persistence.
type UserRepository interface {
	Get(ctx context.Context, id string) (*User, error)
	// FindByLogin matches username or email case-insensitively, oldest account first.
	FindByLogin(ctx context.Context, login string) (*User, error)
	List(ctx context.Context, filter UserFilter) ([]User, error)
	Save(ctx context.Context, user *User) error
}

// CompanyUsage counts the projects referencing a company.
type CompanyUsage interface {
	CountByCompany(ctx context.Context, companyID string) (int, error)
}

// NewsRepository manages the public news feed.
type NewsRepository interface {
	Save(ctx context.Context, news *News) error
	// ListPublished returns published items, newest first.
	ListPublished(ctx context.Context, limit int) ([]News, error)
}
