package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"energy-audit/internal/access"
	"energy-audit/internal/audit"
	"energy-audit/internal/auth"
	masterdata "energy-audit/internal/masterdata/domain"
	"energy-audit/internal/observability/logging"
	"energy-audit/internal/observability/metrics"
	"energy-audit/internal/validation"
)

const minPasswordLength = 8

// DirectoryService manages organizations, companies and user accounts.
type DirectoryService struct {
	organizations masterdata.OrganizationRepository
	companies     masterdata.CompanyRepository
	users         masterdata.UserRepository
	news          masterdata.NewsRepository
	usage         masterdata.CompanyUsage
	auditLog      audit.Logger
	logger        *logging.Logger
	hashCost      int
}

// DirectoryOption configures the service.
type DirectoryOption func(*DirectoryService)

// WithHashCost overrides the bcrypt cost.
func WithHashCost(cost int) DirectoryOption {
	return func(s *DirectoryService) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.hashCost = cost
		}
	}
}

// WithAuditLogger records directory changes.
func WithAuditLogger(logger audit.Logger) DirectoryOption {
	return func(s *DirectoryService) { s.auditLog = logger }
}

// WithLogger sets the service logger.
func WithLogger(logger *logging.Logger) DirectoryOption {
	return func(s *DirectoryService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewDirectoryService constructs the service.
func NewDirectoryService(
	organizations masterdata.OrganizationRepository,
	companies masterdata.CompanyRepository,
	users masterdata.UserRepository,
	news masterdata.NewsRepository,
	usage masterdata.CompanyUsage,
	opts ...DirectoryOption,
) (*DirectoryService, error) {
	if organizations == nil || companies == nil || users == nil || news == nil {
		return nil, errors.New("directory service: nil repository")
	}
	if usage == nil {
		return nil, errors.New("directory service: nil company usage")
	}
	s := &DirectoryService{
		organizations: organizations,
		companies:     companies,
		users:         users,
		news:          news,
		usage:         usage,
		logger:        logging.Default(),
		hashCost:      bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("directory")
	return s, nil
}

func deny(action string) error {
	metrics.IncPermissionDenied(action)
	return access.ErrPermissionDenied
}

// ListOrganizations returns organizations ordered by name.
func (s *DirectoryService) ListOrganizations(ctx context.Context, activeOnly bool) ([]masterdata.Organization, error) {
	return s.organizations.List(ctx, activeOnly)
}

// GetOrganization loads one organization.
func (s *DirectoryService) GetOrganization(ctx context.Context, id string) (*masterdata.Organization, error) {
	org, err := s.organizations.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, masterdata.ErrNotFound
	}
	return org, nil
}

// CreateOrganization registers a new center.
func (s *DirectoryService) CreateOrganization(ctx context.Context, identity auth.Identity, org masterdata.Organization) (*masterdata.Organization, error) {
	if !access.CanManageOrganizations(identity) {
		return nil, deny("organization.create")
	}
	org.ID = ""
	org.Normalize()
	if err := org.Validate(); err != nil {
		return nil, err
	}
	if err := s.organizations.Save(ctx, &org); err != nil {
		return nil, fmt.Errorf("save organization: %w", err)
	}
	audit.Record(ctx, s.auditLog, audit.Entry{
		OrganizationID: org.ID,
		Action:         "organization.create",
		ResourceType:   "organization",
		ResourceID:     org.ID,
	}, map[string]string{"code": org.Code})
	return &org, nil
}

// PublishNews adds an item to the public news feed.
func (s *DirectoryService) PublishNews(ctx context.Context, identity auth.Identity, news masterdata.News) (*masterdata.News, error) {
	if !access.CanManageOrganizations(identity) {
		return nil, deny("news.publish")
	}
	news.ID = ""
	news.AuthorID = identity.UserID
	news.PublishedAt = time.Time{}
	news.Normalize()
	if err := news.Validate(); err != nil {
		return nil, err
	}
	if err := s.news.Save(ctx, &news); err != nil {
		if errors.Is(err, masterdata.ErrDuplicate) {
			return nil, validation.Field("news", "slug", "ya existe una noticia con este slug")
		}
		return nil, fmt.Errorf("save news: %w", err)
	}
	audit.Record(ctx, s.auditLog, audit.Entry{
		Action:       "news.publish",
		ResourceType: "news",
		ResourceID:   news.ID,
	}, map[string]string{"slug": news.Slug})
	return &news, nil
}

// ListCompanies returns the audited companies.
func (s *DirectoryService) ListCompanies(ctx context.Context, identity auth.Identity) ([]masterdata.Company, error) {
	if !access.CanCreateProject(identity) {
		return nil, deny("company.list")
	}
	return s.companies.List(ctx)
}

// CreateCompany registers a company.
func (s *DirectoryService) CreateCompany(ctx context.Context, identity auth.Identity, company masterdata.Company) (*masterdata.Company, error) {
	if !access.CanManageDirectory(identity) {
		return nil, deny("company.create")
	}
	company.ID = ""
	company.Normalize()
	if err := company.Validate(); err != nil {
		return nil, err
	}
	if err := s.companies.Save(ctx, &company); err != nil {
		if errors.Is(err, masterdata.ErrDuplicate) {
			return nil, validation.Field("company", "nit", "ya existe una empresa con este NIT")
		}
		return nil, fmt.Errorf("save company: %w", err)
	}
	audit.Record(ctx, s.auditLog, audit.Entry{
		Action:       "company.create",
		ResourceType: "company",
		ResourceID:   company.ID,
	}, map[string]string{"nit": company.TaxID})
	return &company, nil
}

// DeleteCompany removes a company that no project references.
func (s *DirectoryService) DeleteCompany(ctx context.Context, identity auth.Identity, id string) error {
	if !access.CanManageDirectory(identity) {
		return deny("company.delete")
	}
	company, err := s.companies.Get(ctx, id)
	if err != nil {
		return err
	}
	if company == nil {
		return masterdata.ErrNotFound
	}
	count, err := s.usage.CountByCompany(ctx, id)
	if err != nil {
		return fmt.Errorf("count company projects: %w", err)
	}
	if count > 0 {
		return masterdata.ErrCompanyInUse
	}
	if err := s.companies.Delete(ctx, id); err != nil {
		return err
	}
	audit.Record(ctx, s.auditLog, audit.Entry{
		Action:       "company.delete",
		ResourceType: "company",
		ResourceID:   id,
	}, nil)
	return nil
}

// GetUser loads one account.
func (s *DirectoryService) GetUser(ctx context.Context, id string) (*masterdata.User, error) {
	user, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, masterdata.ErrNotFound
	}
	return user, nil
}

// LoadIdentity resolves the current identity of an account for request
// authentication. Missing or inactive accounts yield auth.ErrInvalidToken.
func (s *DirectoryService) LoadIdentity(ctx context.Context, userID string) (auth.Identity, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("load user: %w", err)
	}
	if user == nil || !user.Active {
		return auth.Identity{}, auth.ErrInvalidToken
	}
	return user.Identity(), nil
}

// ListUsers returns the accounts the identity may manage.
func (s *DirectoryService) ListUsers(ctx context.Context, identity auth.Identity) ([]masterdata.User, error) {
	orgID, ok := access.UserManagementScope(identity)
	if !ok {
		return nil, deny("user.list")
	}
	return s.users.List(ctx, masterdata.UserFilter{OrganizationID: orgID})
}

// UserInput is the account form.
type UserInput struct {
	Username       string
	Email          string
	FirstName      string
	LastName       string
	Position       string
	Role           string
	OrganizationID string
	Password       string
}

// CreateUser registers an account. Center directors may only grant student
// or professor roles and always create users in their own organization.
func (s *DirectoryService) CreateUser(ctx context.Context, identity auth.Identity, input UserInput) (*masterdata.User, error) {
	scopeOrg, ok := access.UserManagementScope(identity)
	if !ok {
		return nil, deny("user.create")
	}
	role, ok := auth.NormalizeRole(input.Role)
	if !ok {
		return nil, validation.Field("user", "rol", "escoja una opción válida")
	}
	if err := access.ValidateAssignedRole(identity, role); err != nil {
		metrics.IncPermissionDenied("user.assign_role")
		return nil, err
	}

	user := masterdata.User{
		Username:       input.Username,
		Email:          input.Email,
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		Position:       input.Position,
		Role:           role,
		OrganizationID: input.OrganizationID,
		Active:         true,
	}
	if scopeOrg != "" {
		user.OrganizationID = scopeOrg
	}
	user.Normalize()
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkOrganization(ctx, user.OrganizationID); err != nil {
		return nil, err
	}
	hash, err := s.hashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash

	if err := s.users.Save(ctx, &user); err != nil {
		if errors.Is(err, masterdata.ErrDuplicate) {
			return nil, validation.Field("user", "username", "ya existe un usuario con este nombre")
		}
		return nil, fmt.Errorf("save user: %w", err)
	}
	s.logger.WithIdentity(ctx).Infow("user created", "user_id", user.ID, "role", user.Role, "organization_id", user.OrganizationID)
	audit.Record(ctx, s.auditLog, audit.Entry{
		OrganizationID: user.OrganizationID,
		Action:         "user.create",
		ResourceType:   "user",
		ResourceID:     user.ID,
	}, map[string]string{"role": string(user.Role)})
	return &user, nil
}

// UserPatch carries the account fields to change; nil fields are kept.
type UserPatch struct {
	Email          *string
	FirstName      *string
	LastName       *string
	Position       *string
	Role           *string
	OrganizationID *string
	Active         *bool
	Password       *string
}

// UpdateUser edits an account within the identity's management scope.
func (s *DirectoryService) UpdateUser(ctx context.Context, identity auth.Identity, id string, patch UserPatch) (*masterdata.User, error) {
	scopeOrg, ok := access.UserManagementScope(identity)
	if !ok {
		return nil, deny("user.update")
	}
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanManageUser(identity, user.Identity()) {
		return nil, deny("user.update")
	}

	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.FirstName != nil {
		user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		user.LastName = *patch.LastName
	}
	if patch.Position != nil {
		user.Position = *patch.Position
	}
	if patch.Active != nil {
		user.Active = *patch.Active
	}
	if patch.Role != nil {
		role, ok := auth.NormalizeRole(*patch.Role)
		if !ok {
			return nil, validation.Field("user", "rol", "escoja una opción válida")
		}
		if err := access.ValidateAssignedRole(identity, role); err != nil {
			metrics.IncPermissionDenied("user.assign_role")
			return nil, err
		}
		user.Role = role
	}
	if patch.OrganizationID != nil && scopeOrg == "" {
		user.OrganizationID = *patch.OrganizationID
	}
	user.Normalize()
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkOrganization(ctx, user.OrganizationID); err != nil {
		return nil, err
	}
	if patch.Password != nil {
		hash, err := s.hashPassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	audit.Record(ctx, s.auditLog, audit.Entry{
		OrganizationID: user.OrganizationID,
		Action:         "user.update",
		ResourceType:   "user",
		ResourceID:     user.ID,
	}, nil)
	return user, nil
}

// Authenticate matches a username or email and password against active accounts.
func (s *DirectoryService) Authenticate(ctx context.Context, login, password string) (*masterdata.User, error) {
	user, err := s.users.FindByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		return nil, err
	}
	if user == nil || !user.Active || user.PasswordHash == "" {
		return nil, masterdata.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, masterdata.ErrInvalidCredentials
	}
	return user, nil
}

// SeedSuperuser creates the bootstrap administrator when no account uses the username.
func (s *DirectoryService) SeedSuperuser(ctx context.Context, username, password string) error {
	existing, err := s.users.FindByLogin(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	hash, err := s.hashPassword(password)
	if err != nil {
		return err
	}
	user := masterdata.User{Username: username, Superuser: true, Active: true, PasswordHash: hash}
	user.Normalize()
	if err := user.Validate(); err != nil {
		return err
	}
	if err := s.users.Save(ctx, &user); err != nil {
		return fmt.Errorf("seed superuser: %w", err)
	}
	s.logger.Infow("superuser created", "username", user.Username)
	return nil
}

func (s *DirectoryService) checkOrganization(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	org, err := s.organizations.Get(ctx, id)
	if err != nil {
		return err
	}
	if org == nil {
		return validation.Field("user", "organizacion", "escoja una opción válida")
	}
	return nil
}

func (s *DirectoryService) hashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", validation.Field("user", "password", fmt.Sprintf("la contraseña debe tener al menos %d caracteres", minPasswordLength))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
