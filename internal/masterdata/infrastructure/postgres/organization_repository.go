package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"

	masterdata "energy-audit/internal/masterdata/domain"
)

const defaultOrganizationsTable = "organizations"

// OrganizationRepository is a Postgres implementation for organizations.
type OrganizationRepository struct {
	db    DBTX
	table string
}

// NewOrganizationRepository constructs a repository.
func NewOrganizationRepository(db DBTX) *OrganizationRepository {
	return &OrganizationRepository{db: db, table: defaultOrganizationsTable}
}

var organizationColumns = []string{"id", "name", "code", "region", "active", "created_at"}

// Get loads an organization by id.
func (r *OrganizationRepository) Get(ctx context.Context, id string) (*masterdata.Organization, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("organization repo: nil db")
	}
	if id == "" {
		return nil, errors.New("organization repo: empty id")
	}
	query, args, err := builder.Select(organizationColumns...).From(r.table).Where("id = ?", id).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var org masterdata.Organization
	if err := sqlscan.Get(ctx, r.db, &org, query, args...); err != nil {
		if sqlscan.NotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	org.CreatedAt = org.CreatedAt.UTC()
	return &org, nil
}

// List returns organizations ordered by name.
func (r *OrganizationRepository) List(ctx context.Context, activeOnly bool) ([]masterdata.Organization, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("organization repo: nil db")
	}
	q := builder.Select(organizationColumns...).From(r.table).OrderBy("name ASC")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var orgs []masterdata.Organization
	if err := sqlscan.Select(ctx, r.db, &orgs, query, args...); err != nil {
		return nil, err
	}
	return orgs, nil
}

// Save upserts an organization.
func (r *OrganizationRepository) Save(ctx context.Context, org *masterdata.Organization) error {
	if r == nil || r.db == nil {
		return errors.New("organization repo: nil db")
	}
	if org == nil {
		return errors.New("organization repo: nil organization")
	}
	if org.ID == "" {
		org.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
INSERT INTO %s (id, name, code, region, active)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id)
DO UPDATE SET
	name = EXCLUDED.name,
	code = EXCLUDED.code,
	region = EXCLUDED.region,
	active = EXCLUDED.active
RETURNING created_at`, r.table)

	var createdAt time.Time
	if err := r.db.QueryRowContext(ctx, query, org.ID, org.Name, org.Code, org.Region, org.Active).Scan(&createdAt); err != nil {
		return translate(err)
	}
	org.CreatedAt = createdAt.UTC()
	return nil
}
