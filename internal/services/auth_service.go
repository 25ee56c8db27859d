package services

import (
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/vaulty-hq/vaulty/internal/auth"
	"github.com/vaulty-hq/vaulty/internal/models"
	"github.com/vaulty-hq/vaulty/internal/repositories"
)

type AuthService struct {
	users  *repositories.UserRepository
	tokens *auth.TokenService
	logger *logrus.Logger
}

func NewAuthService(users *repositories.UserRepository, tokens *auth.TokenService, logger *logrus.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, logger: logger}
}

func (s *AuthService) Register(username, email, password string) (*models.User, error) {
	if len(password) < 8 {
		return nil, Validation("Password must be at least 8 characters")
	}

	existing, err := s.users.FindActiveByUsername(username)
	if err != nil {
		return nil, Internal("Failed to check username", err)
	}
	if existing != nil {
		return nil, Conflict("Username already exists")
	}

	existing, err = s.users.FindActiveByEmail(email)
	if err != nil {
		return nil, Internal("Failed to check email", err)
	}
	if existing != nil {
		return nil, Conflict("Email already exists")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, Internal("Failed to hash password", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
	}
	if err := s.users.Create(user); err != nil {
		// The unique indexes close the check-then-insert race window.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Conflict("Username or email already exists")
		}
		return nil, Internal("Failed to create user", err)
	}

	return user, nil
}

func (s *AuthService) Login(username, password string) (string, *models.User, error) {
	user, err := s.users.FindActiveByUsername(username)
	if err != nil {
		return "", nil, Internal("Failed to look up user", err)
	}
	if user == nil || !auth.VerifyPassword(password, user.PasswordHash) {
		return "", nil, Unauthorized("Invalid credentials")
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, Internal("Failed to create token", err)
	}
	return token, user, nil
}

// CurrentUser resolves a bearer token to its active account.
func (s *AuthService) CurrentUser(raw string) (*models.User, error) {
	claims, err := s.validate(raw)
	if err != nil {
		return nil, err
	}
	return s.loadClaimedUser(claims)
}

// Refresh validates the presented token, re-resolves the user and issues a
// new token with a fresh expiry. The presented token is NOT invalidated:
// both remain independently valid until their own expiry. That is a
// documented property of the stateless token design, not an accident.
func (s *AuthService) Refresh(raw string) (string, error) {
	claims, err := s.validate(raw)
	if err != nil {
		return "", err
	}

	user, err := s.loadClaimedUser(claims)
	if err != nil {
		return "", err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", Internal("Failed to create token", err)
	}
	return token, nil
}

// LoginWithGoogle finds or creates the account for a Google-authenticated
// email and issues a regular session token. Accounts created this way carry
// no usable password.
func (s *AuthService) LoginWithGoogle(email, name string) (string, *models.User, error) {
	user, err := s.users.FindActiveByEmail(email)
	if err != nil {
		return "", nil, Internal("Failed to look up user", err)
	}
	if user == nil {
		user = &models.User{
			Username: name,
			Email:    email,
			Role:     models.RoleUser,
		}
		if err := s.users.Create(user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return "", nil, Conflict("Username or email already exists")
			}
			return "", nil, Internal("Failed to create user", err)
		}
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, Internal("Failed to create token", err)
	}
	return token, user, nil
}

func (s *AuthService) validate(raw string) (*auth.TokenClaims, error) {
	claims, err := s.tokens.Validate(raw)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, Unauthorized("Token expired")
		}
		return nil, Unauthorized("Invalid token")
	}
	return claims, nil
}

func (s *AuthService) loadClaimedUser(claims *auth.TokenClaims) (*models.User, error) {
	p := &auth.Principal{User: claims}
	userID, ok := p.UserID()
	if !ok {
		return nil, Unauthorized("Invalid token")
	}

	user, err := s.users.FindActiveByID(userID)
	if err != nil {
		return nil, Internal("Failed to look up user", err)
	}
	if user == nil {
		return nil, NotFound("User not found")
	}
	return user, nil
}
