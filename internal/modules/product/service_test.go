package product

import (
	"context"
	"errors"
	"testing"

	"github.com/hakimbenali/mizan-backend/internal/apperr"
	"github.com/hakimbenali/mizan-backend/internal/storage"
	"github.com/shopspring/decimal"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	store, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	return NewService(NewJSONRepository(store), NewJSONAdjustmentRepository(store))
}

func mustCreate(t *testing.T, s Service, name string, price string, stock int64) *Product {
	t.Helper()
	p, err := s.Create(context.Background(), CreateRequest{
		Name:              name,
		PricePerKg:        decimal.RequireFromString(price),
		InitialStockGrams: stock,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return p
}

func TestCreateAndGet(t *testing.T) {
	s := newTestService(t)
	created := mustCreate(t, s, "Sugar", "20", 5000)

	if created.ID != 1 {
		t.Errorf("id = %d, want 1", created.ID)
	}
	got, err := s.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Sugar" {
		t.Errorf("name = %q", got.Name)
	}
	if !got.PricePerKg.Equal(decimal.RequireFromString("20")) {
		t.Errorf("price = %s, want 20", got.PricePerKg)
	}
	if got.CurrentStockGrams != 5000 {
		t.Errorf("stock = %d, want 5000", got.CurrentStockGrams)
	}
}

func TestGetByIDMissing(t *testing.T) {
	s := newTestService(t)
	_, err := s.GetByID(context.Background(), 99)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestAddStockWritesOneAdjustment(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	p := mustCreate(t, s, "Rice", "15", 1000)

	updated, err := s.AddStock(ctx, p.ID, 2000, "")
	if err != nil {
		t.Fatalf("AddStock: %v", err)
	}
	if updated.CurrentStockGrams != 3000 {
		t.Errorf("stock = %d, want 3000", updated.CurrentStockGrams)
	}

	adjustments, err := s.Adjustments(ctx, p.ID)
	if err != nil {
		t.Fatalf("Adjustments: %v", err)
	}
	if len(adjustments) != 1 {
		t.Fatalf("adjustments = %d, want 1", len(adjustments))
	}
	a := adjustments[0]
	if a.AdjustmentType != AdjustmentAdd || a.WeightGrams != 2000 {
		t.Errorf("adjustment = %+v", a)
	}
	if a.Reason != "stock added" {
		t.Errorf("default reason = %q", a.Reason)
	}
}

func TestDeductStock(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	p := mustCreate(t, s, "Flour", "10", 5000)

	updated, err := s.DeductStock(ctx, p.ID, 1500, "sale - invoice #1")
	if err != nil {
		t.Fatalf("DeductStock: %v", err)
	}
	if updated.CurrentStockGrams != 3500 {
		t.Errorf("stock = %d, want 3500", updated.CurrentStockGrams)
	}

	adjustments, err := s.Adjustments(ctx, p.ID)
	if err != nil {
		t.Fatalf("Adjustments: %v", err)
	}
	if len(adjustments) != 1 {
		t.Fatalf("adjustments = %d, want 1", len(adjustments))
	}
	if adjustments[0].AdjustmentType != AdjustmentRemove {
		t.Errorf("type = %q", adjustments[0].AdjustmentType)
	}
	if adjustments[0].Reason != "sale - invoice #1" {
		t.Errorf("reason = %q", adjustments[0].Reason)
	}
}

func TestDeductStockInsufficientLeavesStateUntouched(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	p := mustCreate(t, s, "Tea", "40", 300)

	_, err := s.DeductStock(ctx, p.ID, 500, "")
	if !errors.Is(err, apperr.ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}

	got, err := s.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.CurrentStockGrams != 300 {
		t.Errorf("stock = %d, must be unchanged after refusal", got.CurrentStockGrams)
	}
	adjustments, err := s.Adjustments(ctx, p.ID)
	if err != nil {
		t.Fatalf("Adjustments: %v", err)
	}
	if len(adjustments) != 0 {
		t.Errorf("adjustments = %d, refused deduction must not leave an audit record", len(adjustments))
	}
}

func TestDeductStockExactBalanceToZero(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	p := mustCreate(t, s, "Salt", "5", 1000)

	updated, err := s.DeductStock(ctx, p.ID, 1000, "")
	if err != nil {
		t.Fatalf("DeductStock: %v", err)
	}
	if updated.CurrentStockGrams != 0 {
		t.Errorf("stock = %d, want 0", updated.CurrentStockGrams)
	}
}

func TestUpdatePrice(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	p := mustCreate(t, s, "Coffee", "80", 2000)

	updated, err := s.UpdatePrice(ctx, p.ID, decimal.RequireFromString("95.5"))
	if err != nil {
		t.Fatalf("UpdatePrice: %v", err)
	}
	if !updated.PricePerKg.Equal(decimal.RequireFromString("95.5")) {
		t.Errorf("price = %s, want 95.5", updated.PricePerKg)
	}
	if _, err := s.UpdatePrice(ctx, 99, decimal.NewFromInt(1)); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing product: err = %v, want ErrNotFound", err)
	}
}

func TestListSortedByName(t *testing.T) {
	s := newTestService(t)
	mustCreate(t, s, "Zaatar", "30", 100)
	mustCreate(t, s, "Almonds", "120", 100)
	mustCreate(t, s, "Mint", "10", 100)

	products, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(products) != 3 {
		t.Fatalf("got %d products", len(products))
	}
	want := []string{"Almonds", "Mint", "Zaatar"}
	for i, name := range want {
		if products[i].Name != name {
			t.Errorf("products[%d] = %q, want %q", i, products[i].Name, name)
		}
	}
}
