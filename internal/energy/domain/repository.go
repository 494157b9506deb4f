package energy

import "context"

// Repository stores at most one record per (project, fuel kind).
type Repository interface {
	// Upsert inserts or replaces the record keyed by (ProjectID, Kind).
	// The stored identity and timestamps are written back into rec.
	Upsert(ctx context.Context, rec *Record) error
	Get(ctx context.Context, projectID string, kind FuelKind) (*Record, error)
	ListByProject(ctx context.Context, projectID string) ([]Record, error)
	// ListByProjects fetches records of many projects in one call, keyed by project id.
	ListByProjects(ctx context.Context, projectIDs []string) (map[string][]Record, error)
}
