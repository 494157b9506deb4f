package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"

	masterdata "energy-audit/internal/masterdata/domain"
)

const defaultUsersTable = "users"

// UserRepository is a Postgres implementation for user accounts.
type UserRepository struct {
	db    DBTX
	table string
}

// NewUserRepository constructs a repository.
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db, table: defaultUsersTable}
}

var userColumns = []string{
	"id", "username", "email", "first_name", "last_name", "position", "role",
	"COALESCE(organization_id, '') AS organization_id",
	"superuser", "active", "password_hash", "created_at", "updated_at",
}

// Get loads a user by id.
func (r *UserRepository) Get(ctx context.Context, id string) (*masterdata.User, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("user repo: nil db")
	}
	if id == "" {
		return nil, errors.New("user repo: empty id")
	}
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// FindByLogin matches username or email case-insensitively, oldest account first.
func (r *UserRepository) FindByLogin(ctx context.Context, login string) (*masterdata.User, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("user repo: nil db")
	}
	login = strings.ToLower(strings.TrimSpace(login))
	if login == "" {
		return nil, nil
	}
	return r.getOne(ctx, squirrel.Or{
		squirrel.Expr("LOWER(username) = ?", login),
		squirrel.Expr("LOWER(email) = ?", login),
	})
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*masterdata.User, error) {
	query, args, err := builder.Select(userColumns...).
		From(r.table).
		Where(where).
		OrderBy("created_at ASC", "id ASC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var user masterdata.User
	if err := sqlscan.Get(ctx, r.db, &user, query, args...); err != nil {
		if sqlscan.NotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()
	return &user, nil
}

// List returns users matching the filter ordered by username.
func (r *UserRepository) List(ctx context.Context, filter masterdata.UserFilter) ([]masterdata.User, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("user repo: nil db")
	}
	q := builder.Select(userColumns...).From(r.table).OrderBy("username ASC")
	if filter.OrganizationID != "" {
		q = q.Where(squirrel.Eq{"organization_id": filter.OrganizationID})
	}
	if len(filter.Roles) > 0 {
		roles := make([]string, 0, len(filter.Roles))
		for _, role := range filter.Roles {
			roles = append(roles, string(role))
		}
		q = q.Where(squirrel.Eq{"role": roles})
	}
	if filter.ActiveOnly {
		q = q.Where(squirrel.Eq{"active": true})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var users []masterdata.User
	if err := sqlscan.Select(ctx, r.db, &users, query, args...); err != nil {
		return nil, err
	}
	return users, nil
}

// Save upserts a user.
func (r *UserRepository) Save(ctx context.Context, user *masterdata.User) error {
	if r == nil || r.db == nil {
		return errors.New("user repo: nil db")
	}
	if user == nil {
		return errors.New("user repo: nil user")
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	username,
	email,
	first_name,
	last_name,
	position,
	role,
	organization_id,
	superuser,
	active,
	password_hash
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10, $11
)
ON CONFLICT (id)
DO UPDATE SET
	username = EXCLUDED.username,
	email = EXCLUDED.email,
	first_name = EXCLUDED.first_name,
	last_name = EXCLUDED.last_name,
	position = EXCLUDED.position,
	role = EXCLUDED.role,
	organization_id = EXCLUDED.organization_id,
	superuser = EXCLUDED.superuser,
	active = EXCLUDED.active,
	password_hash = EXCLUDED.password_hash,
	updated_at = NOW()
RETURNING created_at, updated_at`, r.table)

	var createdAt, updatedAt time.Time
	if err := r.db.QueryRowContext(
		ctx,
		query,
		user.ID,
		user.Username,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Position,
		string(user.Role),
		user.OrganizationID,
		user.Superuser,
		user.Active,
		user.PasswordHash,
	).Scan(&createdAt, &updatedAt); err != nil {
		return translate(err)
	}
	user.CreatedAt = createdAt.UTC()
	user.UpdatedAt = updatedAt.UTC()
	return nil
}
