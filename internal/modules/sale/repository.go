package sale

import (
	"context"

	"github.com/hakimbenali/mizan-backend/internal/storage"
)

// Repository defines sale data storage.
type Repository interface {
	Create(ctx context.Context, fields storage.Record) (*Sale, error)
	// List returns all sales, newest first.
	List(ctx context.Context) ([]*Sale, error)
	GetByID(ctx context.Context, id int64) (*Sale, error)
	Delete(ctx context.Context, id int64) (bool, error)
	// InRange returns sales whose sale_date lies in [from, to], using the
	// store's range query operators on the stored timestamps.
	InRange(ctx context.Context, from, to string) ([]*Sale, error)
}
