package auth

import (
	"context"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/hakimbenali/mizan-backend/internal/apperr"
	"github.com/hakimbenali/mizan-backend/internal/config"
	"github.com/hakimbenali/mizan-backend/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// Service defines the interface for authentication-related business logic.
type Service interface {
	Register(ctx context.Context, username, password, role string) (*User, error)
	Login(ctx context.Context, username, password string) (*Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Verify(token string) (*Claims, error)
}

// Claims is the JWT payload: standard claims plus the account role.
type Claims struct {
	Role string `json:"role"`
	jwt.StandardClaims
}

type service struct {
	repo Repository
	cfg  config.JWTConfig
}

// NewService creates a new auth service.
func NewService(repo Repository, cfg config.JWTConfig) Service {
	return &service{repo: repo, cfg: cfg}
}

func (s *service) Register(ctx context.Context, username, password, role string) (*User, error) {
	if username == "" || password == "" {
		return nil, apperr.Validation("username and password are required")
	}
	if len(password) < 6 {
		return nil, apperr.Validation("password must be at least 6 characters")
	}
	if role == "" {
		role = RoleUser
	}
	if role != RoleAdmin && role != RoleUser {
		return nil, apperr.Validation("unknown role %q", role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *service) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.Validation("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Validation("invalid credentials")
	}

	expiresAt := time.Now().Add(s.cfg.ExpiresIn)
	claims := &Claims{
		Role: user.Role,
		StandardClaims: jwt.StandardClaims{
			Subject:   user.ID.String(),
			ExpiresAt: expiresAt.Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, err
	}

	return &Session{
		Token:     signed,
		User:      user,
		ExpiresAt: storage.Timestamp(expiresAt),
	}, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return apperr.ErrNotFound
	}
	return nil
}

// Verify parses and validates a signed token.
func (s *service) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperr.Validation("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, apperr.Validation("invalid token")
	}
	return claims, nil
}
