package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"truetime.service/internal/core/model"
)

const testSecret = "unit-test-secret"

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserRepo) {
	t.Helper()
	users := &fakeUserRepo{}
	service := NewAuthService(users, testSecret, time.Hour)
	return service, users
}

func TestLoginIssuesTokenWithRoleClaim(t *testing.T) {
	service, _ := newAuthFixture(t)

	if _, err := service.CreateUser(context.Background(), "ada@example.com", "Ada Lovelace", "s3cret", model.RoleManager); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	token, err := service.Login(context.Background(), "ada@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		t.Fatalf("parsing issued token: %v", err)
	}
	if claims["sub"] != "ada@example.com" {
		t.Errorf("sub = %v, want ada@example.com", claims["sub"])
	}
	if claims["role"] != "manager" {
		t.Errorf("role = %v, want manager", claims["role"])
	}
}

func TestLoginWrongPassword(t *testing.T) {
	service, _ := newAuthFixture(t)
	service.CreateUser(context.Background(), "ada@example.com", "Ada Lovelace", "s3cret", model.RoleViewer)

	_, err := service.Login(context.Background(), "ada@example.com", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	service, _ := newAuthFixture(t)

	_, err := service.Login(context.Background(), "ghost@example.com", "anything")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginDeactivatedUser(t *testing.T) {
	service, users := newAuthFixture(t)
	service.CreateUser(context.Background(), "ada@example.com", "Ada Lovelace", "s3cret", model.RoleViewer)
	users.users[0].IsActive = false

	_, err := service.Login(context.Background(), "ada@example.com", "s3cret")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	service, _ := newAuthFixture(t)
	service.CreateUser(context.Background(), "ada@example.com", "Ada Lovelace", "s3cret", model.RoleViewer)

	_, err := service.CreateUser(context.Background(), "ada@example.com", "Ada Again", "other", model.RoleViewer)
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}
}
