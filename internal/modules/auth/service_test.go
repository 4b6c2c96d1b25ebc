package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hakimbenali/mizan-backend/internal/apperr"
	"github.com/hakimbenali/mizan-backend/internal/config"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	repo, err := NewJSONRepository(t.TempDir())
	if err != nil {
		t.Fatalf("NewJSONRepository: %v", err)
	}
	return NewService(repo, config.JWTConfig{Secret: "test-secret", ExpiresIn: time.Hour})
}

func TestRegisterDefaultsRole(t *testing.T) {
	s := newTestService(t)
	user, err := s.Register(context.Background(), "hakim", "s3cret99", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Role != RoleUser {
		t.Errorf("role = %q, want %q", user.Role, RoleUser)
	}
	if user.PasswordHash == "s3cret99" {
		t.Error("password stored in clear")
	}
}

func TestRegisterValidation(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name               string
		username, password string
		role               string
	}{
		{"empty username", "", "s3cret99", ""},
		{"empty password", "hakim", "", ""},
		{"short password", "hakim", "abc", ""},
		{"unknown role", "hakim", "s3cret99", "owner"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Register(ctx, tt.username, tt.password, tt.role); !apperr.IsValidation(err) {
				t.Errorf("err = %v, want validation error", err)
			}
		})
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	if _, err := s.Register(ctx, "hakim", "s3cret99", ""); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := s.Register(ctx, "hakim", "other999", ""); !apperr.IsValidation(err) {
		t.Errorf("duplicate username: err = %v, want validation error", err)
	}
}

func TestLoginAndVerify(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	registered, err := s.Register(ctx, "hakim", "s3cret99", RoleAdmin)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	session, err := s.Login(ctx, "hakim", "s3cret99")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if session.Token == "" {
		t.Fatal("empty token")
	}
	if session.User.ID != registered.ID {
		t.Errorf("session user = %v", session.User.ID)
	}

	claims, err := s.Verify(session.Token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Role != RoleAdmin {
		t.Errorf("role claim = %q", claims.Role)
	}
	if claims.Subject != registered.ID.String() {
		t.Errorf("subject = %q", claims.Subject)
	}
}

func TestLoginRejections(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	if _, err := s.Register(ctx, "hakim", "s3cret99", ""); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := s.Login(ctx, "hakim", "wrong-pass"); err == nil {
		t.Error("login with wrong password succeeded")
	}
	if _, err := s.Login(ctx, "nobody", "s3cret99"); err == nil {
		t.Error("login with unknown username succeeded")
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	if _, err := s.Register(ctx, "hakim", "s3cret99", ""); err != nil {
		t.Fatalf("Register: %v", err)
	}
	session, err := s.Login(ctx, "hakim", "s3cret99")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := s.Verify(session.Token + "x"); err == nil {
		t.Error("tampered token verified")
	}
}

func TestDelete(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	user, err := s.Register(ctx, "hakim", "s3cret99", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := s.Delete(ctx, user.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, user.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, uuid.New()); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown id: err = %v, want ErrNotFound", err)
	}
}
