package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"

	audits "energy-audit/internal/audits/domain"
)

// DocumentRepository is a Postgres implementation for document metadata.
type DocumentRepository struct {
	db *sql.DB
}

// NewDocumentRepository constructs a repository.
func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

type documentRow struct {
	ID          string       `db:"id"`
	ProjectID   string       `db:"project_id"`
	Description string       `db:"description"`
	StorageKey  string       `db:"storage_key"`
	FileName    string       `db:"file_name"`
	UploadedBy  string       `db:"uploaded_by"`
	UploadedAt  sql.NullTime `db:"uploaded_at"`
}

// Add stores document metadata.
func (r *DocumentRepository) Add(ctx context.Context, doc *audits.Document) error {
	if r == nil || r.db == nil {
		return errors.New("document repo: nil db")
	}
	if doc == nil {
		return errors.New("document repo: nil document")
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	return r.db.QueryRowContext(ctx, `
INSERT INTO project_documents (id, project_id, description, storage_key, file_name, uploaded_by)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING uploaded_at`,
		doc.ID, doc.ProjectID, doc.Description, doc.StorageKey, doc.FileName, doc.UploadedBy,
	).Scan(&doc.UploadedAt)
}

// ListByProject returns the documents of a project, newest first.
func (r *DocumentRepository) ListByProject(ctx context.Context, projectID string) ([]audits.Document, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("document repo: nil db")
	}
	query, args, err := builder.Select(
		"id", "project_id", "description", "storage_key", "file_name",
		"uploaded_by", "uploaded_at",
	).
		From("project_documents").
		Where("project_id = ?", projectID).
		OrderBy("uploaded_at DESC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var rows []documentRow
	if err := sqlscan.Select(ctx, r.db, &rows, query, args...); err != nil {
		return nil, err
	}
	docs := make([]audits.Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, audits.Document{
			ID:          row.ID,
			ProjectID:   row.ProjectID,
			Description: row.Description,
			StorageKey:  row.StorageKey,
			FileName:    row.FileName,
			UploadedBy:  row.UploadedBy,
			UploadedAt:  row.UploadedAt.Time.UTC(),
		})
	}
	return docs, nil
}
