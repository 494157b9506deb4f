package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	energy "energy-audit/internal/energy/domain"
)

type recordKey struct {
	projectID string
	kind      energy.FuelKind
}

// RecordRepository is an in-memory repository for demo/testing.
type RecordRepository struct {
	mu   sync.RWMutex
	data map[recordKey]energy.Record
	now  func() time.Time
}

// NewRecordRepository constructs a repository.
func NewRecordRepository() *RecordRepository {
	return &RecordRepository{
		data: make(map[recordKey]energy.Record),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Upsert inserts or replaces the record of (project, kind) under one lock.
func (r *RecordRepository) Upsert(ctx context.Context, rec *energy.Record) error {
	_ = ctx
	if rec == nil {
		return errors.New("record repo: nil record")
	}
	if rec.ProjectID == "" {
		return energy.ErrEmptyProjectID
	}
	key := recordKey{projectID: rec.ProjectID, kind: rec.Kind}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	if existing, ok := r.data[key]; ok {
		rec.ID = existing.ID
		rec.CreatedAt = existing.CreatedAt
	} else {
		rec.ID = uuid.NewString()
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	r.data[key] = *rec
	return nil
}

// Get loads the record of a fuel in a project.
func (r *RecordRepository) Get(ctx context.Context, projectID string, kind energy.FuelKind) (*energy.Record, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.data[recordKey{projectID: projectID, kind: kind}]
	if !ok {
		return nil, energy.ErrRecordNotFound
	}
	return &rec, nil
}

// ListByProject returns the records of a project in fuel order.
func (r *RecordRepository) ListByProject(ctx context.Context, projectID string) ([]energy.Record, error) {
	grouped, err := r.ListByProjects(ctx, []string{projectID})
	if err != nil {
		return nil, err
	}
	return grouped[projectID], nil
}

// ListByProjects returns the records of many projects keyed by project id.
func (r *RecordRepository) ListByProjects(ctx context.Context, projectIDs []string) (map[string][]energy.Record, error) {
	_ = ctx
	wanted := make(map[string]struct{}, len(projectIDs))
	for _, id := range projectIDs {
		wanted[id] = struct{}{}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make(map[string][]energy.Record, len(projectIDs))
	for key, rec := range r.data {
		if _, ok := wanted[key.projectID]; ok {
			result[key.projectID] = append(result[key.projectID], rec)
		}
	}
	for _, records := range result {
		energy.SortRecords(records)
	}
	return result, nil
}
