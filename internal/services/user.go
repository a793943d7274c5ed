package services

import (
	"context"
	"errors"
	"strings"

	"github.com/campushub/backend/internal/auth"
	"github.com/campushub/backend/internal/store"
	"github.com/campushub/backend/types"
)

// ErrInvalidRole is returned when a request names a role outside the
// closed set.
var ErrInvalidRole = errors.New("invalid role")

// ErrInvalidCredentials is the single failure login reports, whether
// the account is missing, deactivated, or the password wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
	UpdatePassword(ctx context.Context, id int, newHash string) error
	SoftDelete(ctx context.Context, id int) error
	List(ctx context.Context) ([]types.User, error)
}

// UserService encapsulates user use-cases.
type UserService struct {
	repo   UserRepository
	hasher *auth.PasswordHasher
}

func NewUserService(repo UserRepository, hasher *auth.PasswordHasher) *UserService {
	return &UserService{repo: repo, hasher: hasher}
}

// NormalizeEmail lowercases and trims an address. Every lookup and
// insert goes through this, which is what makes email uniqueness
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register hashes the raw password and creates the account. The role
// defaults to student; unknown role names are rejected. A duplicate
// email surfaces as store.ErrDuplicateEmail even when two
// registrations race.
func (s *UserService) Register(ctx context.Context, name, email, role, rawPassword string) (types.User, error) {
	userRole := types.RoleStudent
	if role != "" {
		if !types.ValidRole(role) {
			return types.User{}, ErrInvalidRole
		}
		userRole = types.Role(role)
	}

	hash, err := s.hasher.Hash(rawPassword)
	if err != nil {
		return types.User{}, err
	}

	return s.repo.Create(ctx, types.User{
		Name:         name,
		Email:        NormalizeEmail(email),
		Role:         userRole,
		PasswordHash: hash,
	})
}

// Authenticate verifies a password login. All failure causes collapse
// to ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, email, rawPassword string) (types.User, error) {
	user, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, err
	}
	if user.IsDeleted {
		return types.User{}, ErrInvalidCredentials
	}
	if !s.hasher.Verify(rawPassword, user.PasswordHash) {
		return types.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return s.repo.GetByEmail(ctx, NormalizeEmail(email))
}

func (s *UserService) Update(ctx context.Context, user types.User) (types.User, error) {
	if !types.ValidRole(string(user.Role)) {
		return types.User{}, ErrInvalidRole
	}
	return s.repo.Update(ctx, user)
}

func (s *UserService) SoftDelete(ctx context.Context, id int) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]types.User, error) {
	return s.repo.List(ctx)
}
