package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	masterdata "energy-audit/internal/masterdata/domain"
)

// CompanyRepository is an in-memory repository for demo/testing.
type CompanyRepository struct {
	mu   sync.RWMutex
	data map[string]masterdata.Company
}

// NewCompanyRepository constructs a repository.
func NewCompanyRepository() *CompanyRepository {
	return &CompanyRepository{data: make(map[string]masterdata.Company)}
}

// Get loads a company by id.
func (r *CompanyRepository) Get(ctx context.Context, id string) (*masterdata.Company, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	company, ok := r.data[id]
	if !ok {
		return nil, nil
	}
	return &company, nil
}

// List returns companies ordered by legal name.
func (r *CompanyRepository) List(ctx context.Context) ([]masterdata.Company, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]masterdata.Company, 0, len(r.data))
	for _, company := range r.data {
		result = append(result, company)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].LegalName < result[j].LegalName })
	return result, nil
}

// Save inserts or updates a company.
func (r *CompanyRepository) Save(ctx context.Context, company *masterdata.Company) error {
	_ = ctx
	if company == nil {
		return errors.New("company repo: nil company")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.data {
		if id != company.ID && strings.EqualFold(existing.TaxID, company.TaxID) {
			return masterdata.ErrDuplicate
		}
	}
	if company.ID == "" {
		company.ID = uuid.NewString()
	}
	if company.CreatedAt.IsZero() {
		company.CreatedAt = time.Now().UTC()
	}
	r.data[company.ID] = *company
	return nil
}

// Delete removes a company.
func (r *CompanyRepository) Delete(ctx context.Context, id string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return masterdata.ErrNotFound
	}
	delete(r.data, id)
	return nil
}
