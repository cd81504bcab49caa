package core

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"truetime.service/internal/core/model"
	"truetime.service/internal/ports/repository"
)

// AuthService issues JWTs for the role-guarded API and manages
// application users.
type AuthService struct {
	users    repository.UserRepository
	secret   []byte
	tokenTTL time.Duration
}

// NewAuthService wires the auth service with the user store and the
// signing configuration.
func NewAuthService(users repository.UserRepository, secret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		users:    users,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

// Login verifies the credentials and returns a signed access token.
// Unknown users, wrong passwords and deactivated accounts are all
// reported as ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if IsNotFound(err) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if !user.IsActive {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":  user.Email,
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing access token: %w", err)
	}
	return signed, nil
}

// CreateUser hashes the password and stores a new active user.
func (s *AuthService) CreateUser(ctx context.Context, email, fullName, password string, role model.Role) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	return s.users.Create(ctx, repository.CreateUserParams{
		Email:          email,
		FullName:       fullName,
		HashedPassword: string(hash),
		Role:           role,
	})
}

func (s *AuthService) ListUsers(ctx context.Context) ([]*model.User, error) {
	return s.users.List(ctx)
}

func (s *AuthService) GetUser(ctx context.Context, email string) (*model.User, error) {
	return s.users.GetByEmail(ctx, email)
}
