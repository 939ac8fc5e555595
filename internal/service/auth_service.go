package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

// RegisterInput carries a signup request. Role defaults to citizen; agency
// accounts must reference an existing agency.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	AgencyID *int64
}

// LoginResult bundles the authenticated user with its token.
type LoginResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// AuthService handles account registration and credential checks.
type AuthService struct {
	users      repository.UserRepository
	agencies   repository.AgencyRepository
	tokens     *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// AuthDependencies bundles collaborators.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	AgencyRepo repository.AgencyRepository
	Tokens     *auth.TokenManager
	BcryptCost int
	Logger     *zap.Logger
}

// NewAuthService creates the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		agencies:   deps.AgencyRepo,
		tokens:     deps.Tokens,
		bcryptCost: deps.BcryptCost,
		logger:     deps.Logger,
	}
}

// Register creates an account and returns it with a fresh token.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*LoginResult, error) {
	user, err := s.buildUser(ctx, input, false)
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	if s.logger != nil {
		s.logger.Info("user registered", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
	}
	return s.issueToken(user)
}

// Login verifies credentials and issues a token carrying the caller triple.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return s.issueToken(user)
}

// GetUser fetches a single account.
func (s *AuthService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// ListUsers returns every account. Route-level middleware restricts this to
// admins.
func (s *AuthService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// CreateUser provisions an account with an explicit role, the admin path.
func (s *AuthService) CreateUser(ctx context.Context, input RegisterInput) (*domain.User, error) {
	user, err := s.buildUser(ctx, input, true)
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

func (s *AuthService) buildUser(ctx context.Context, input RegisterInput, roleRequired bool) (*domain.User, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" {
		return nil, apperrors.NewValidationError("name is required", nil)
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.NewValidationError("a valid email is required", nil)
	}
	if len(input.Password) < 6 {
		return nil, apperrors.NewValidationError("password must be at least 6 characters", nil)
	}

	role := domain.Role(input.Role)
	if input.Role == "" {
		if roleRequired {
			return nil, apperrors.NewValidationError("role is required", nil)
		}
		role = domain.RoleCitizen
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": input.Role})
	}

	var agencyID *int64
	if role == domain.RoleAgency {
		if input.AgencyID == nil {
			return nil, apperrors.NewValidationError("agency accounts require an agency id", nil)
		}
		if _, err := s.agencies.GetByID(ctx, *input.AgencyID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewValidationError("agency does not exist", map[string]any{"agency_id": *input.AgencyID})
			}
			return nil, apperrors.MapError(err)
		}
		agencyID = input.AgencyID
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewValidationError("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	return &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		AgencyID:     agencyID,
	}, nil
}

func (s *AuthService) issueToken(user *domain.User) (*LoginResult, error) {
	token, expiresAt, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}
