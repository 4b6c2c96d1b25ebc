package expense

import (
	"context"

	"github.com/hakimbenali/mizan-backend/internal/storage"
)

// Repository defines expense data storage. Lookups return (nil, nil) when
// the id is absent.
type Repository interface {
	Create(ctx context.Context, fields storage.Record) (*Expense, error)
	// List returns all expenses, newest first.
	List(ctx context.Context) ([]*Expense, error)
	GetByID(ctx context.Context, id int64) (*Expense, error)
	Update(ctx context.Context, id int64, fields storage.Record) (*Expense, error)
	Delete(ctx context.Context, id int64) (bool, error)
	ByCategory(ctx context.Context, category string) ([]*Expense, error)
	InRange(ctx context.Context, from, to string) ([]*Expense, error)
}
