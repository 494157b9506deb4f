package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"energy-audit/internal/auth"
	masterdata "energy-audit/internal/masterdata/domain"
)

// UserRepository is an in-memory repository for demo/testing.
type UserRepository struct {
	mu   sync.RWMutex
	data map[string]masterdata.User
}

// NewUserRepository constructs a repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{data: make(map[string]masterdata.User)}
}

// Get loads a user by id.
func (r *UserRepository) Get(ctx context.Context, id string) (*masterdata.User, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.data[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// FindByLogin matches username or email, oldest account first.
func (r *UserRepository) FindByLogin(ctx context.Context, login string) (*masterdata.User, error) {
	_ = ctx
	login = strings.TrimSpace(login)
	if login == "" {
		return nil, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var found *masterdata.User
	for _, user := range r.data {
		if !strings.EqualFold(user.Username, login) && !strings.EqualFold(user.Email, login) {
			continue
		}
		if found == nil || user.CreatedAt.Before(found.CreatedAt) {
			candidate := user
			found = &candidate
		}
	}
	return found, nil
}

// List returns users matching the filter ordered by username.
func (r *UserRepository) List(ctx context.Context, filter masterdata.UserFilter) ([]masterdata.User, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]masterdata.User, 0, len(r.data))
	for _, user := range r.data {
		if filter.OrganizationID != "" && user.OrganizationID != filter.OrganizationID {
			continue
		}
		if filter.ActiveOnly && !user.Active {
			continue
		}
		if len(filter.Roles) > 0 && !hasRole(filter.Roles, user.Role) {
			continue
		}
		result = append(result, user)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Username < result[j].Username })
	return result, nil
}

// Save inserts or updates a user.
func (r *UserRepository) Save(ctx context.Context, user *masterdata.User) error {
	_ = ctx
	if user == nil {
		return errors.New("user repo: nil user")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.data {
		if id != user.ID && strings.EqualFold(existing.Username, user.Username) {
			return masterdata.ErrDuplicate
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	r.data[user.ID] = *user
	return nil
}

func hasRole(roles []auth.Role, role auth.Role) bool {
	for _, candidate := range roles {
		if candidate == role {
			return true
		}
	}
	return false
}
