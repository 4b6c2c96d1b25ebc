package auth

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hakimbenali/mizan-backend/internal/apperr"
)

// Repository stores user accounts. Users live in their own file, outside the
// mirrored collections; accounts are machine-local.
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// storedUser is the on-disk shape. Unlike User it carries the password hash.
type storedUser struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type jsonRepository struct {
	path string
	mu   sync.Mutex
}

// NewJSONRepository stores users in users.json under the data directory.
func NewJSONRepository(dir string) (Repository, error) {
	r := &jsonRepository{path: filepath.Join(dir, "users.json")}
	if _, err := os.Stat(r.path); os.IsNotExist(err) {
		if err := r.write([]storedUser{}); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *jsonRepository) read() ([]storedUser, error) {
	raw, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return []storedUser{}, nil
	}
	if err != nil {
		return nil, &apperr.StorageError{Op: "read", Collection: "users", Err: err}
	}
	if len(raw) == 0 {
		return []storedUser{}, nil
	}
	var users []storedUser
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, &apperr.StorageError{Op: "decode", Collection: "users", Err: err}
	}
	return users, nil
}

func (r *jsonRepository) write(users []storedUser) error {
	raw, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return &apperr.StorageError{Op: "encode", Collection: "users", Err: err}
	}
	if err := os.WriteFile(r.path, raw, 0o600); err != nil {
		return &apperr.StorageError{Op: "write", Collection: "users", Err: err}
	}
	return nil
}

func (r *jsonRepository) Create(ctx context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.read()
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.Username == user.Username {
			return apperr.Validation("username %q is already taken", user.Username)
		}
	}
	users = append(users, storedUser(*user))
	return r.write(users)
}

func (r *jsonRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.read()
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Username == username {
			user := User(u)
			return &user, nil
		}
	}
	return nil, nil
}

func (r *jsonRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.read()
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.ID == id {
			user := User(u)
			return &user, nil
		}
	}
	return nil, nil
}

func (r *jsonRepository) List(ctx context.Context) ([]*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.read()
	if err != nil {
		return nil, err
	}
	out := make([]*User, 0, len(users))
	for _, u := range users {
		user := User(u)
		out = append(out, &user)
	}
	return out, nil
}

func (r *jsonRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.read()
	if err != nil {
		return false, err
	}
	kept := users[:0]
	for _, u := range users {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	if len(kept) == len(users) {
		return false, nil
	}
	return true, r.write(kept)
}
