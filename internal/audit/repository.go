package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"
)

var builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repository persists audit entries in audit_logs.
type Repository struct {
	db *sql.DB
}

// NewRepository constructs an audit repository.
func NewRepository(db *sql.DB) *Repository {
	if db == nil {
		return nil
	}
	return &Repository{db: db}
}

type entryRow struct {
	ID             string         `db:"id"`
	OrganizationID sql.NullString `db:"organization_id"`
	ProjectID      sql.NullString `db:"project_id"`
	Actor          string         `db:"actor"`
	Role           string         `db:"role"`
	Action         string         `db:"action"`
	ResourceType   string         `db:"resource_type"`
	ResourceID     string         `db:"resource_id"`
	Metadata       []byte         `db:"metadata"`
	PayloadDigest  string         `db:"payload_digest"`
	IP             string         `db:"ip"`
	UserAgent      string         `db:"user_agent"`
	CreatedAt      time.Time      `db:"created_at"`
}

// Log writes an audit entry.
func (r *Repository) Log(ctx context.Context, entry Entry) error {
	if r == nil || r.db == nil {
		return errors.New("audit repo: nil db")
	}
	if entry.ID == "" {
		entry.ID = NewID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.PayloadDigest == "" {
		entry.PayloadDigest = DigestJSON(entry.Metadata)
	}
	var metadata any
	if len(entry.Metadata) > 0 {
		metadata = []byte(entry.Metadata)
	}

	query, args, err := builder.Insert("audit_logs").
		Columns("id", "organization_id", "project_id", "actor", "role", "action", "resource_type", "resource_id",
			"metadata", "payload_digest", "ip", "user_agent", "created_at").
		Values(entry.ID, nullable(entry.OrganizationID), nullable(entry.ProjectID), entry.Actor, entry.Role, entry.Action,
			entry.ResourceType, entry.ResourceID, metadata, entry.PayloadDigest, entry.IP, entry.UserAgent, entry.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build audit insert: %w", err)
	}
	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

// ListByProject returns the project's entries, newest first.
func (r *Repository) ListByProject(ctx context.Context, projectID string, limit int) ([]Entry, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("audit repo: nil db")
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	query, args, err := builder.Select(
		"id", "organization_id", "project_id", "actor", "role", "action", "resource_type", "resource_id",
		"metadata", "payload_digest", "ip", "user_agent", "created_at",
	).From("audit_logs").
		Where(squirrel.Eq{"project_id": projectID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build audit query: %w", err)
	}
	var rows []entryRow
	if err := sqlscan.Select(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	out := make([]Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, Entry{
			ID:             row.ID,
			OrganizationID: row.OrganizationID.String,
			ProjectID:      row.ProjectID.String,
			Actor:          row.Actor,
			Role:           row.Role,
			Action:         row.Action,
			ResourceType:   row.ResourceType,
			ResourceID:     row.ResourceID,
			Metadata:       json.RawMessage(row.Metadata),
			PayloadDigest:  row.PayloadDigest,
			IP:             row.IP,
			UserAgent:      row.UserAgent,
			CreatedAt:      row.CreatedAt,
		})
	}
	return out, nil
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}
