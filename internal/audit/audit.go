package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"energy-audit/internal/auth"
	"energy-audit/internal/observability/logging"
)

// Entry represents an audit log entry.
type Entry struct {
	ID             string
	OrganizationID string
	ProjectID      string
	Actor          string
	Role           string
	Action         string
	ResourceType   string
	ResourceID     string
	Metadata       json.RawMessage
	PayloadDigest  string
	IP             string
	UserAgent      string
	CreatedAt      time.Time
}

// Logger writes audit entries.
type Logger interface {
	Log(ctx context.Context, entry Entry) error
}

// Store is a Logger that can also read a project's trail back.
type Store interface {
	Logger
	ListByProject(ctx context.Context, projectID string, limit int) ([]Entry, error)
}

// DefaultListLimit caps activity listings when no limit is given.
const DefaultListLimit = 50

// NewID generates a random audit id.
func NewID() string {
	return "audit-" + uuid.NewString()
}

// DigestJSON computes a SHA256 hex digest for metadata payloads.
func DigestJSON(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

type requestInfo struct {
	ip        string
	userAgent string
}

type requestKey struct{}

// WithRequest stores client address and user agent for later entries.
func WithRequest(ctx context.Context, ip, userAgent string) context.Context {
	return context.WithValue(ctx, requestKey{}, requestInfo{ip: ip, userAgent: userAgent})
}

// Record fills actor and request details from context and writes the entry.
// Failures are logged and never abort the audited operation.
func Record(ctx context.Context, logger Logger, entry Entry, metadata any) {
	if logger == nil {
		return
	}
	if identity, ok := auth.IdentityFromContext(ctx); ok {
		if entry.Actor == "" {
			entry.Actor = identity.UserID
		}
		if entry.Role == "" {
			entry.Role = string(identity.Role)
		}
	}
	if info, ok := ctx.Value(requestKey{}).(requestInfo); ok {
		entry.IP = info.ip
		entry.UserAgent = info.userAgent
	}
	if metadata != nil && len(entry.Metadata) == 0 {
		raw, err := json.Marshal(metadata)
		if err == nil {
			entry.Metadata = raw
		}
	}
	if err := logger.Log(ctx, entry); err != nil {
		logging.FromContext(ctx).WithComponent("audit").Warnw("audit log failed", "action", entry.Action, "error", err)
	}
}

// MemoryLogger keeps entries in memory for demo/testing.
type MemoryLogger struct {
	mu      sync.Mutex
	entries []Entry
}

// NewMemoryLogger constructs a logger.
func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

// Log stores the entry.
func (l *MemoryLogger) Log(ctx context.Context, entry Entry) error {
	_ = ctx
	if entry.ID == "" {
		entry.ID = NewID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.PayloadDigest == "" {
		entry.PayloadDigest = DigestJSON(entry.Metadata)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	return nil
}

// Entries returns a copy of the stored entries.
func (l *MemoryLogger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

// ListByProject returns the project's entries, newest first.
func (l *MemoryLogger) ListByProject(ctx context.Context, projectID string, limit int) ([]Entry, error) {
	_ = ctx
	if limit <= 0 {
		limit = DefaultListLimit
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, 0)
	for i := len(l.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if l.entries[i].ProjectID == projectID {
			out = append(out, l.entries[i])
		}
	}
	slices.SortStableFunc(out, func(a, b Entry) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}
