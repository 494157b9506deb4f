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

const defaultCompaniesTable = "companies"

// CompanyRepository is a Postgres implementation for companies.
type CompanyRepository struct {
	db    DBTX
	table string
}

// NewCompanyRepository constructs a repository.
func NewCompanyRepository(db DBTX) *CompanyRepository {
	return &CompanyRepository{db: db, table: defaultCompaniesTable}
}

var companyColumns = []string{
	"id", "legal_name", "tax_id", "sector", "address", "city",
	"contact_name", "contact_email", "contact_phone", "created_at",
}

// Get loads a company by id.
func (r *CompanyRepository) Get(ctx context.Context, id string) (*masterdata.Company, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("company repo: nil db")
	}
	if id == "" {
		return nil, errors.New("company repo: empty id")
	}
	query, args, err := builder.Select(companyColumns...).From(r.table).Where("id = ?", id).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var company masterdata.Company
	if err := sqlscan.Get(ctx, r.db, &company, query, args...); err != nil {
		if sqlscan.NotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	company.CreatedAt = company.CreatedAt.UTC()
	return &company, nil
}

// List returns companies ordered by legal name.
func (r *CompanyRepository) List(ctx context.Context) ([]masterdata.Company, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("company repo: nil db")
	}
	query, args, err := builder.Select(companyColumns...).From(r.table).OrderBy("legal_name ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var companies []masterdata.Company
	if err := sqlscan.Select(ctx, r.db, &companies, query, args...); err != nil {
		return nil, err
	}
	return companies, nil
}

// Save upserts a company.
func (r *CompanyRepository) Save(ctx context.Context, company *masterdata.Company) error {
	if r == nil || r.db == nil {
		return errors.New("company repo: nil db")
	}
	if company == nil {
		return errors.New("company repo: nil company")
	}
	if company.ID == "" {
		company.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	legal_name,
	tax_id,
	sector,
	address,
	city,
	contact_name,
	contact_email,
	contact_phone
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9
)
ON CONFLICT (id)
DO UPDATE SET
	legal_name = EXCLUDED.legal_name,
	tax_id = EXCLUDED.tax_id,
	sector = EXCLUDED.sector,
	address = EXCLUDED.address,
	city = EXCLUDED.city,
	contact_name = EXCLUDED.contact_name,
	contact_email = EXCLUDED.contact_email,
	contact_phone = EXCLUDED.contact_phone
RETURNING created_at`, r.table)

	var createdAt time.Time
	if err := r.db.QueryRowContext(
		ctx,
		query,
		company.ID,
		company.LegalName,
		company.TaxID,
		company.Sector,
		company.Address,
		company.City,
		company.ContactName,
		company.ContactEmail,
		company.ContactPhone,
	).Scan(&createdAt); err != nil {
		return translate(err)
	}
	company.CreatedAt = createdAt.UTC()
	return nil
}

// Delete removes a company; projects referencing it make the call fail with ErrCompanyInUse.
func (r *CompanyRepository) Delete(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return errors.New("company repo: nil db")
	}
	result, err := r.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table), id)
	if err != nil {
		return translate(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return masterdata.ErrNotFound
	}
	return nil
}
