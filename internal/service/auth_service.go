package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/ewhamarket/backend/internal/common"
	"github.com/ewhamarket/backend/internal/domain"
)

// UserStore user record operations of the store
type UserStore interface {
	IsIDAvailable(ctx context.Context, id string) bool
	RegisterUser(ctx context.Context, user domain.User, pwHash string) bool
	Authenticate(ctx context.Context, id, pwHash string) bool
	GetUserInfo(ctx context.Context, id string) *domain.User
	UpdateProfileImage(ctx context.Context, id, path string) bool
	UpdateUserInfo(ctx context.Context, id, pwHash, email, phone string) bool
}

// AuthService authentication business logic
type AuthService interface {
	CheckID(ctx context.Context, id string) bool
	Signup(ctx context.Context, form *domain.SignupForm) error
	Login(ctx context.Context, form *domain.LoginForm) error
	GetMe(ctx context.Context, id string) (*domain.UserResponse, error)
	UpdateProfileImage(ctx context.Context, id, path string) error
	UpdateInfo(ctx context.Context, id string, form *domain.UserInfoForm) error
}

type authService struct {
	users UserStore
}

// NewAuthService creates a new AuthService
func NewAuthService(users UserStore) AuthService {
	return &authService{users: users}
}

// HashPassword returns the lowercase hex SHA-256 of the UTF-8 password.
// Stored hashes depend on this exact encoding.
func HashPassword(pw string) string {
	sum := sha256.Sum256([]byte(pw))
	return hex.EncodeToString(sum[:])
}

func (s *authService) CheckID(ctx context.Context, id string) bool {
	return s.users.IsIDAvailable(ctx, id)
}

// Signup registers a new user. The store re-checks the id itself.
func (s *authService) Signup(ctx context.Context, form *domain.SignupForm) error {
	user := domain.User{
		ID:    form.ID,
		Email: form.Email,
		Phone: form.Phone,
	}
	if s.users.RegisterUser(ctx, user, HashPassword(form.PW)) {
		return nil
	}
	// RegisterUser does not say why it failed
	if !s.users.IsIDAvailable(ctx, form.ID) {
		return common.ErrUserAlreadyExists
	}
	return common.ErrStoreUnavailable
}

func (s *authService) Login(ctx context.Context, form *domain.LoginForm) error {
	if !s.users.Authenticate(ctx, form.ID, HashPassword(form.PW)) {
		return common.ErrInvalidCredentials
	}
	return nil
}

func (s *authService) GetMe(ctx context.Context, id string) (*domain.UserResponse, error) {
	user := s.users.GetUserInfo(ctx, id)
	if user == nil {
		return nil, common.ErrUserNotFound
	}
	return user.ToResponse(), nil
}

func (s *authService) UpdateProfileImage(ctx context.Context, id, path string) error {
	if !s.users.UpdateProfileImage(ctx, id, path) {
		return common.ErrUserNotFound
	}
	return nil
}

// UpdateInfo changes email and phone; a non-empty PW also changes the password.
func (s *authService) UpdateInfo(ctx context.Context, id string, form *domain.UserInfoForm) error {
	pwHash := ""
	if form.PW != "" {
		pwHash = HashPassword(form.PW)
	}
	if !s.users.UpdateUserInfo(ctx, id, pwHash, form.Email, form.Phone) {
		return common.ErrUserNotFound
	}
	return nil
}
