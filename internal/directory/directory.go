package directory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fixit-suporte/fixit-gateway/internal/backend"
	"github.com/fixit-suporte/fixit-gateway/internal/domain"
	apperrors "github.com/fixit-suporte/fixit-gateway/pkg/util"
)

// Directory merges the locally seeded accounts with whatever the backend
// returns for the same endpoint. On email collision the backend record
// wins. Local writes never reach the backend; that asymmetry is inherited
// behavior, kept on purpose.
type Directory struct {
	store      Store
	users      backend.UserAPI
	logger     *zap.Logger
	bcryptCost int
}

// New constructs the directory.
func New(store Store, users backend.UserAPI, logger *zap.Logger, bcryptCost int) *Directory {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Directory{store: store, users: users, logger: logger, bcryptCost: bcryptCost}
}

type seedAccount struct {
	id         string
	name       string
	email      string
	password   string
	telephone  string
	department string
	role       domain.Role
}

var bootstrapAccounts = []seedAccount{
	{id: "admin-1", name: "Administrador", email: domain.BootstrapAdminEmail, password: "admin123",
		telephone: "(11) 99999-9999", department: "ti", role: domain.RoleAdmin},
	{id: "tech-1", name: "Técnico Suporte", email: "tech@fixit.com", password: "tech123",
		telephone: "(11) 88888-8888", department: domain.SupportDepartment, role: domain.RoleTechnician},
	{id: "user-1", name: "Usuário Comum", email: "user@fixit.com", password: "user123",
		telephone: "(11) 77777-7777", department: "marketing", role: domain.RoleUser},
}

// Seed creates the three bootstrap accounts when their emails are absent.
// Idempotent; called on every startup.
func (d *Directory) Seed(ctx context.Context) error {
	for _, account := range bootstrapAccounts {
		existing, err := d.store.GetByEmail(ctx, account.email)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(account.password), d.bcryptCost)
		if err != nil {
			return err
		}
		user := domain.User{
			ID:           account.id,
			Name:         account.name,
			Email:        account.email,
			Telephone:    account.telephone,
			Department:   account.department,
			Role:         account.role,
			PasswordHash: string(hash),
			CreatedAt:    time.Now(),
		}
		if err := d.store.Put(ctx, user); err != nil {
			return err
		}
		if d.logger != nil {
			d.logger.Info("seeded bootstrap account", zap.String("email", account.email), zap.String("role", string(account.role)))
		}
	}
	return nil
}

// ListAll returns the union of local and backend accounts. A failing
// backend call silently degrades to local-only; no error propagates.
func (d *Directory) ListAll(ctx context.Context) ([]domain.User, error) {
	local, err := d.store.List(ctx)
	if err != nil {
		return nil, err
	}

	remote, err := d.users.ListUsers(ctx)
	if err != nil {
		if d.logger != nil {
			d.logger.Warn("backend user listing failed, using local accounts only", zap.Error(err))
		}
		return local, nil
	}

	merged := make([]domain.User, len(local))
	copy(merged, local)
	for _, remoteUser := range remote {
		replaced := false
		for i := range merged {
			if domain.Fold(merged[i].Email) == domain.Fold(remoteUser.Email) {
				merged[i] = remoteUser
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, remoteUser)
		}
	}
	return merged, nil
}

// Technicians returns every account eligible for incident assignment.
func (d *Directory) Technicians(ctx context.Context) ([]domain.User, error) {
	all, err := d.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	techs := make([]domain.User, 0)
	for _, user := range all {
		if user.Role == domain.RoleTechnician {
			techs = append(techs, user)
		}
	}
	return techs, nil
}

// TechnicianProfile carries the fields a new technician account needs.
type TechnicianProfile struct {
	Name      string
	Email     string
	Password  string
	Telephone string
}

// CreateTechnician appends a technician account to the local store. Role
// and department are forced; a duplicate email anywhere in the merged
// view rejects the request. The record is not written to the backend.
func (d *Directory) CreateTechnician(ctx context.Context, profile TechnicianProfile) (*domain.User, error) {
	name := strings.TrimSpace(profile.Name)
	email := strings.TrimSpace(profile.Email)
	if name == "" || email == "" || profile.Password == "" {
		return nil, apperrors.NewValidationError("name, email and password are required", nil)
	}

	all, err := d.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, existing := range all {
		if domain.Fold(existing.Email) == domain.Fold(email) {
			return nil, apperrors.NewConflict("email already in use", map[string]any{"email": email})
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(profile.Password), d.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		Telephone:    strings.TrimSpace(profile.Telephone),
		Department:   domain.SupportDepartment,
		Role:         domain.RoleTechnician,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := d.store.Put(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return &user, nil
}

// UserUpdate carries the editable profile fields. Role changes are the
// caller's responsibility to gate: a user must never change their own.
type UserUpdate struct {
	Name       string
	Email      string
	Telephone  string
	Department string
	Role       *domain.Role
}

// UpdateUser edits a local account. Backend-origin accounts cannot be
// edited durably; attempting to returns not-found here since there is no
// local record to change.
func (d *Directory) UpdateUser(ctx context.Context, id string, update UserUpdate) (*domain.User, error) {
	user, err := d.store.Get(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if user == nil {
		return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
	}

	if email := strings.TrimSpace(update.Email); email != "" && domain.Fold(email) != domain.Fold(user.Email) {
		all, err := d.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		for _, existing := range all {
			if existing.ID != id && domain.Fold(existing.Email) == domain.Fold(email) {
				return nil, apperrors.NewConflict("email already in use", map[string]any{"email": email})
			}
		}
		user.Email = email
	}
	if name := strings.TrimSpace(update.Name); name != "" {
		user.Name = name
	}
	if update.Telephone != "" {
		user.Telephone = update.Telephone
	}
	if update.Department != "" {
		user.Department = update.Department
	}
	if update.Role != nil {
		user.Role = *update.Role
	}
	// Technicians always live in the support department.
	if user.Role == domain.RoleTechnician {
		user.Department = domain.SupportDepartment
	}

	if err := d.store.Put(ctx, *user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// DeleteUser removes a local account. The bootstrap admin cannot be
// deleted.
func (d *Directory) DeleteUser(ctx context.Context, id string) error {
	user, err := d.store.Get(ctx, id)
	if err != nil {
		return apperrors.MapError(err)
	}
	if user == nil {
		return apperrors.NewNotFound("user", map[string]any{"user_id": id})
	}
	if user.Email == domain.BootstrapAdminEmail {
		return apperrors.NewForbidden("the bootstrap administrator cannot be deleted")
	}
	return apperrors.MapError(d.store.Delete(ctx, id))
}

// Authenticate checks a credential against the local accounts. It returns
// nil without error when the email is unknown locally, so callers can
// fall through to the backend login.
func (d *Directory) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := d.store.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == "" {
		return nil, nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(strings.TrimSpace(password))); err != nil {
		return nil, apperrors.NewUnauthorized("invalid email or password")
	}
	return user, nil
}
