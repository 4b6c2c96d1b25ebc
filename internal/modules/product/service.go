package product

import (
	"context"

	"github.com/hakimbenali/mizan-backend/internal/apperr"
	"github.com/hakimbenali/mizan-backend/internal/storage"
	"github.com/shopspring/decimal"
)

// Service defines product business logic. Input validation is the handler's
// job; the service enforces the stock invariant and keeps the audit trail.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context) ([]*Product, error)

	// AddStock and DeductStock each write exactly one adjustment record.
	// Stock update and adjustment append are two store mutations with no
	// shared transaction; a failure between them leaves the first in place.
	AddStock(ctx context.Context, id, grams int64, reason string) (*Product, error)
	DeductStock(ctx context.Context, id, grams int64, reason string) (*Product, error)

	UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) (*Product, error)
	Adjustments(ctx context.Context, productID int64) ([]*Adjustment, error)
}

// CreateRequest holds data for registering a product.
type CreateRequest struct {
	Name              string          `json:"name"`
	PricePerKg        decimal.Decimal `json:"pricePerKg"`
	InitialStockGrams int64           `json:"initialStockGrams"`
}

type service struct {
	repo        Repository
	adjustments AdjustmentRepository
}

// NewService creates a new product service.
func NewService(repo Repository, adjustments AdjustmentRepository) Service {
	return &service{repo: repo, adjustments: adjustments}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Product, error) {
	return s.repo.Create(ctx, storage.Record{
		"name":                req.Name,
		"price_per_kg":        req.PricePerKg,
		"current_stock_grams": req.InitialStockGrams,
	})
}

func (s *service) GetByID(ctx context.Context, id int64) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.ErrNotFound
	}
	return p, nil
}

func (s *service) List(ctx context.Context) ([]*Product, error) {
	return s.repo.List(ctx)
}

func (s *service) AddStock(ctx context.Context, id, grams int64, reason string) (*Product, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reason == "" {
		reason = "stock added"
	}
	updated, err := s.repo.Update(ctx, id, storage.Record{
		"current_stock_grams": p.CurrentStockGrams + grams,
	})
	if err != nil {
		return nil, err
	}
	if _, err := s.adjustments.Record(ctx, id, grams, AdjustmentAdd, reason); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) DeductStock(ctx context.Context, id, grams int64, reason string) (*Product, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.CurrentStockGrams < grams {
		return nil, apperr.ErrInsufficientStock
	}
	if reason == "" {
		reason = "sale"
	}
	updated, err := s.repo.Update(ctx, id, storage.Record{
		"current_stock_grams": p.CurrentStockGrams - grams,
	})
	if err != nil {
		return nil, err
	}
	if _, err := s.adjustments.Record(ctx, id, grams, AdjustmentRemove, reason); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) (*Product, error) {
	// Past sales carry their own price snapshot; this never rewrites them.
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, storage.Record{"price_per_kg": price})
}

func (s *service) Adjustments(ctx context.Context, productID int64) ([]*Adjustment, error) {
	return s.adjustments.List(ctx, productID)
}
