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

// OrganizationRepository is an in-memory repository for demo/testing.
type OrganizationRepository struct {
	mu   sync.RWMutex
	data map[string]masterdata.Organization
}

// NewOrganizationRepository constructs a repository.
func NewOrganizationRepository() *OrganizationRepository {
	return &OrganizationRepository{data: make(map[string]masterdata.Organization)}
}

// Get loads an organization by id.
func (r *OrganizationRepository) Get(ctx context.Context, id string) (*masterdata.Organization, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	org, ok := r.data[id]
	if !ok {
		return nil, nil
	}
	return &org, nil
}

// List returns organizations ordered by name.
func (r *OrganizationRepository) List(ctx context.Context, activeOnly bool) ([]masterdata.Organization, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]masterdata.Organization, 0, len(r.data))
	for _, org := range r.data {
		if activeOnly && !org.Active {
			continue
		}
		result = append(result, org)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// Save inserts or updates an organization.
func (r *OrganizationRepository) Save(ctx context.Context, org *masterdata.Organization) error {
	_ = ctx
	if org == nil {
		return errors.New("organization repo: nil organization")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.data {
		if id == org.ID {
			continue
		}
		if strings.EqualFold(existing.Name, org.Name) || strings.EqualFold(existing.Code, org.Code) {
			return masterdata.ErrDuplicate
		}
	}
	if org.ID == "" {
		org.ID = uuid.NewString()
	}
	if org.CreatedAt.IsZero() {
		org.CreatedAt = time.Now().UTC()
	}
	r.data[org.ID] = *org
	return nil
}
