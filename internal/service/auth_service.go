package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fixit-suporte/fixit-gateway/internal/auth"
	"github.com/fixit-suporte/fixit-gateway/internal/backend"
	"github.com/fixit-suporte/fixit-gateway/internal/directory"
	"github.com/fixit-suporte/fixit-gateway/internal/domain"
	"github.com/fixit-suporte/fixit-gateway/internal/session"
	apperrors "github.com/fixit-suporte/fixit-gateway/pkg/util"
)

// AuthService coordinates registration, login and profile flows. Login is
// local-first: the seeded accounts authenticate against the gateway's own
// store, everything else goes to the backend login endpoint.
type AuthService struct {
	directory *directory.Directory
	users     backend.UserAPI
	sessions  session.Store
	tokens    *auth.TokenManager
	logger    *zap.Logger
}

// AuthDependencies bundles requirements for the auth service.
type AuthDependencies struct {
	Directory *directory.Directory
	Users     backend.UserAPI
	Sessions  session.Store
	Tokens    *auth.TokenManager
	Logger    *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	return &AuthService{
		directory: deps.Directory,
		users:     deps.Users,
		sessions:  deps.Sessions,
		tokens:    deps.Tokens,
		logger:    deps.Logger,
	}
}

// Session is the result of a successful login or registration.
type Session struct {
	Actor     domain.User
	Token     string
	ExpiresAt time.Time
}

// RegisterInput carries the signup form fields.
type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	Telephone  string
	Department string
}

// Register creates a backend account and opens a session for it. New
// signups are always plain users; technicians are created by admins
// through the directory.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	if name == "" || email == "" || input.Password == "" {
		return nil, apperrors.NewValidationError("name, email and password are required", nil)
	}

	created, err := s.users.RegisterUser(ctx, domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: input.Password,
		Telephone:    strings.TrimSpace(input.Telephone),
		Department:   strings.TrimSpace(input.Department),
		Role:         domain.RoleUser,
	})
	if err != nil {
		return nil, err
	}
	return s.openSession(ctx, created)
}

// Login authenticates the actor. Seeded/local accounts are checked first;
// a miss or mismatch falls through to the backend login endpoint. Every
// failure collapses into the same generic rejection.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	password = strings.TrimSpace(password)
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password are required", nil)
	}

	actor, err := s.directory.Authenticate(ctx, email, password)
	if err != nil && !isUnauthorized(err) {
		return nil, err
	}
	if actor == nil {
		actor, err = s.users.LoginUser(ctx, email, password)
		if err != nil {
			s.logger.Debug("backend login failed", zap.String("email", email), zap.Error(err))
			return nil, apperrors.NewUnauthorized("invalid email or password")
		}
	}

	return s.openSession(ctx, actor)
}

// Logout discards the session.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// ProfileUpdate carries the self-service editable fields. Role is
// deliberately absent: an actor never changes their own role.
type ProfileUpdate struct {
	Name       string
	Email      string
	Telephone  string
	Department string
}

// UpdateProfile edits the actor's own record. Local accounts persist the
// change; backend-origin accounts update the session copy only, which is
// as durable as the old localStorage behavior was.
func (s *AuthService) UpdateProfile(ctx context.Context, sessionID string, actor *domain.User, update ProfileUpdate) (*domain.User, error) {
	if actor.Local {
		updated, err := s.directory.UpdateUser(ctx, actor.ID, directory.UserUpdate{
			Name:       update.Name,
			Email:      update.Email,
			Telephone:  update.Telephone,
			Department: update.Department,
		})
		if err != nil {
			return nil, err
		}
		if err := s.sessions.Set(ctx, sessionID, updated); err != nil {
			return nil, apperrors.MapError(err)
		}
		return updated, nil
	}

	copied := *actor
	if name := strings.TrimSpace(update.Name); name != "" {
		copied.Name = name
	}
	if email := strings.TrimSpace(update.Email); email != "" {
		copied.Email = email
	}
	if update.Telephone != "" {
		copied.Telephone = update.Telephone
	}
	if update.Department != "" {
		copied.Department = update.Department
	}
	if err := s.sessions.Set(ctx, sessionID, &copied); err != nil {
		return nil, apperrors.MapError(err)
	}
	return &copied, nil
}

func (s *AuthService) openSession(ctx context.Context, actor *domain.User) (*Session, error) {
	sessionID := uuid.NewString()
	if err := s.sessions.Set(ctx, sessionID, actor); err != nil {
		return nil, apperrors.MapError(err)
	}
	token, expiresAt, err := s.tokens.GenerateToken(sessionID, actor.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.logger.Info("session opened",
		zap.String("user_id", actor.ID),
		zap.String("role", string(actor.Role)))
	return &Session{Actor: actor.Sanitized(), Token: token, ExpiresAt: expiresAt}, nil
}

func isUnauthorized(err error) bool {
	var domainErr *apperrors.DomainError
	return errors.As(err, &domainErr) && domainErr.Code == "UNAUTHORIZED"
}
