package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	audits "energy-audit/internal/audits/domain"
)

// DocumentRepository is an in-memory repository for demo/testing.
type DocumentRepository struct {
	mu   sync.RWMutex
	data map[string][]audits.Document
}

// NewDocumentRepository constructs a repository.
func NewDocumentRepository() *DocumentRepository {
	return &DocumentRepository{data: make(map[string][]audits.Document)}
}

// Add stores document metadata.
func (r *DocumentRepository) Add(ctx context.Context, doc *audits.Document) error {
	_ = ctx
	if doc == nil {
		return errors.New("document repo: nil document")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now().UTC()
	}
	r.data[doc.ProjectID] = append(r.data[doc.ProjectID], *doc)
	return nil
}

// ListByProject returns the documents of a project, newest first.
func (r *DocumentRepository) ListByProject(ctx context.Context, projectID string) ([]audits.Document, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	docs := append([]audits.Document(nil), r.data[projectID]...)
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].UploadedAt.After(docs[j].UploadedAt) })
	return docs, nil
}
