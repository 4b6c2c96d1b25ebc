package product

import (
	"context"

	"github.com/hakimbenali/mizan-backend/internal/storage"
)

// Repository defines product data storage. Lookups return (nil, nil) when
// the id is absent; the service maps that to not-found.
type Repository interface {
	Create(ctx context.Context, fields storage.Record) (*Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context) ([]*Product, error)
	Update(ctx context.Context, id int64, fields storage.Record) (*Product, error)
}

// AdjustmentRepository defines the stock audit trail storage.
type AdjustmentRepository interface {
	Record(ctx context.Context, productID, weightGrams int64, adjustmentType, reason string) (*Adjustment, error)
	List(ctx context.Context, productID int64) ([]*Adjustment, error)
}
