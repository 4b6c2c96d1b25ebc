package sale

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hakimbenali/mizan-backend/internal/apperr"
	"github.com/hakimbenali/mizan-backend/internal/modules/product"
	"github.com/hakimbenali/mizan-backend/internal/storage"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type fixture struct {
	store    *storage.Store
	intents  *storage.IntentLog
	products product.Service
	sales    Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.New(dir)
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	intents, err := storage.NewIntentLog(dir)
	if err != nil {
		t.Fatalf("NewIntentLog: %v", err)
	}
	products := product.NewService(product.NewJSONRepository(store), product.NewJSONAdjustmentRepository(store))
	sales := NewService(NewJSONRepository(store), products, intents, zap.NewNop())
	return &fixture{store: store, intents: intents, products: products, sales: sales}
}

func (f *fixture) addProduct(t *testing.T, name, price string, stock int64) *product.Product {
	t.Helper()
	p, err := f.products.Create(context.Background(), product.CreateRequest{
		Name:              name,
		PricePerKg:        decimal.RequireFromString(price),
		InitialStockGrams: stock,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

func TestCreateSaleComputesTotalAndDeductsStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.addProduct(t, "Sugar", "20", 5000)

	created, err := f.sales.Create(ctx, p.ID, 1000)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !created.TotalAmount.Equal(decimal.RequireFromString("20")) {
		t.Errorf("total = %s, want 20 (1kg at 20/kg)", created.TotalAmount)
	}
	if !created.PricePerKg.Equal(decimal.RequireFromString("20")) {
		t.Errorf("frozen price = %s", created.PricePerKg)
	}
	if created.ProductName != "Sugar" {
		t.Errorf("product name = %q", created.ProductName)
	}

	got, err := f.products.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.CurrentStockGrams != 4000 {
		t.Errorf("stock = %d, want 4000", got.CurrentStockGrams)
	}

	adjustments, err := f.products.Adjustments(ctx, p.ID)
	if err != nil {
		t.Fatalf("Adjustments: %v", err)
	}
	if len(adjustments) != 1 {
		t.Fatalf("adjustments = %d, want exactly 1", len(adjustments))
	}
	if adjustments[0].AdjustmentType != product.AdjustmentRemove {
		t.Errorf("type = %q", adjustments[0].AdjustmentType)
	}

	pending, err := f.intents.Pending()
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending intents = %d, completed sale must clear its marker", len(pending))
	}
}

func TestCreateSaleFractionalWeight(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(t, "Saffron", "35.5", 1000)

	created, err := f.sales.Create(context.Background(), p.ID, 250)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !created.TotalAmount.Equal(decimal.RequireFromString("8.875")) {
		t.Errorf("total = %s, want 8.875", created.TotalAmount)
	}
}

func TestCreateSaleInsufficientStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.addProduct(t, "Honey", "60", 400)

	_, err := f.sales.Create(ctx, p.ID, 500)
	if !errors.Is(err, apperr.ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}

	sales, err := f.sales.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(sales) != 0 {
		t.Errorf("sales = %d, refused sale must not create a record", len(sales))
	}
}

func TestCreateSaleMissingProduct(t *testing.T) {
	f := newFixture(t)
	_, err := f.sales.Create(context.Background(), 42, 100)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestPriceChangeDoesNotRewritePastSales(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.addProduct(t, "Dates", "30", 5000)

	created, err := f.sales.Create(ctx, p.ID, 1000)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.products.UpdatePrice(ctx, p.ID, decimal.NewFromInt(50)); err != nil {
		t.Fatalf("UpdatePrice: %v", err)
	}

	got, err := f.sales.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.TotalAmount.Equal(decimal.RequireFromString("30")) {
		t.Errorf("total after price change = %s, want 30", got.TotalAmount)
	}
}

func TestCancelRestoresStockAndKeepsAuditTrail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.addProduct(t, "Sugar", "20", 5000)

	created, err := f.sales.Create(ctx, p.ID, 1000)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := f.sales.Cancel(ctx, created.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	got, err := f.products.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.CurrentStockGrams != 5000 {
		t.Errorf("stock = %d, want 5000 restored", got.CurrentStockGrams)
	}

	if _, err := f.sales.GetByID(ctx, created.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("cancelled sale still readable: %v", err)
	}

	adjustments, err := f.products.Adjustments(ctx, p.ID)
	if err != nil {
		t.Fatalf("Adjustments: %v", err)
	}
	if len(adjustments) != 2 {
		t.Fatalf("adjustments = %d, want remove + add", len(adjustments))
	}
}

func TestCancelMissingSale(t *testing.T) {
	f := newFixture(t)
	if err := f.sales.Cancel(context.Background(), 9); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListJoinsDeletedProductName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.addProduct(t, "Sugar", "20", 5000)
	if _, err := f.sales.Create(ctx, p.ID, 1000); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Remove the product behind the sale's back.
	if _, err := f.store.Delete(ctx, storage.CollectionProducts, p.ID); err != nil {
		t.Fatalf("delete product: %v", err)
	}

	sales, err := f.sales.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(sales) != 1 {
		t.Fatalf("sales = %d", len(sales))
	}
	if sales[0].ProductName != DeletedProductName {
		t.Errorf("product name = %q, want %q", sales[0].ProductName, DeletedProductName)
	}
}

func TestByDateAndTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.addProduct(t, "Sugar", "20", 10000)

	if _, err := f.sales.Create(ctx, p.ID, 1000); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.sales.Create(ctx, p.ID, 500); err != nil {
		t.Fatalf("Create: %v", err)
	}

	today := storage.DayKey(time.Now())
	sales, err := f.sales.ByDate(ctx, today)
	if err != nil {
		t.Fatalf("ByDate: %v", err)
	}
	if len(sales) != 2 {
		t.Errorf("today's sales = %d, want 2", len(sales))
	}

	total, err := f.sales.TotalByDate(ctx, today)
	if err != nil {
		t.Fatalf("TotalByDate: %v", err)
	}
	if !total.Equal(decimal.RequireFromString("30")) {
		t.Errorf("total = %s, want 30", total)
	}

	if _, err := f.sales.ByDate(ctx, "03/02/2026"); !apperr.IsValidation(err) {
		t.Errorf("malformed date: err = %v, want validation error", err)
	}
}

func TestTotalRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.addProduct(t, "Sugar", "20", 10000)
	if _, err := f.sales.Create(ctx, p.ID, 1000); err != nil {
		t.Fatalf("Create: %v", err)
	}

	today := storage.DayKey(time.Now())
	got, err := f.sales.TotalRange(ctx, today, today)
	if err != nil {
		t.Fatalf("TotalRange: %v", err)
	}
	if got.Count != 1 || !got.Total.Equal(decimal.RequireFromString("20")) {
		t.Errorf("range = %+v", got)
	}

	if _, err := f.sales.TotalRange(ctx, today, "2020-01-01"); !apperr.IsValidation(err) {
		t.Errorf("inverted range: err = %v, want validation error", err)
	}
}

func TestInvoice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.addProduct(t, "Sugar", "20", 5000)
	created, err := f.sales.Create(ctx, p.ID, 1500)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	invoice, err := f.sales.Invoice(ctx, created.ID)
	if err != nil {
		t.Fatalf("Invoice: %v", err)
	}
	if invoice.InvoiceNumber != "INV-000001" {
		t.Errorf("invoice number = %q", invoice.InvoiceNumber)
	}
	if invoice.WeightKg != 1.5 {
		t.Errorf("weight kg = %v", invoice.WeightKg)
	}
}

func TestRecoverIntentsReplaysMissingDeduction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.addProduct(t, "Sugar", "20", 5000)

	// Simulate a crash after the sale insert: record on disk, marker pending,
	// no stock deduction.
	record, err := f.store.Add(ctx, storage.CollectionSales, storage.Record{
		"product_id":   p.ID,
		"weight_grams": int64(1000),
		"price_per_kg": decimal.RequireFromString("20"),
		"total_amount": decimal.RequireFromString("20"),
		"sale_date":    storage.Timestamp(time.Now()),
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := f.intents.Begin(storage.IntentSale, storage.RecordID(record), p.ID, 1000); err != nil {
		t.Fatalf("Begin: %v", err)
	}

	if err := f.sales.RecoverIntents(ctx); err != nil {
		t.Fatalf("RecoverIntents: %v", err)
	}

	got, err := f.products.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.CurrentStockGrams != 4000 {
		t.Errorf("stock = %d, want 4000 after replay", got.CurrentStockGrams)
	}
	pending, err := f.intents.Pending()
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending = %d, recovered marker must be cleared", len(pending))
	}
}

func TestRecoverIntentsSkipsCompletedDeduction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.addProduct(t, "Sugar", "20", 5000)

	// Normal sale, then re-add its marker as if the crash hit between the
	// deduction and the marker removal.
	created, err := f.sales.Create(ctx, p.ID, 1000)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.intents.Begin(storage.IntentSale, created.ID, p.ID, 1000); err != nil {
		t.Fatalf("Begin: %v", err)
	}

	if err := f.sales.RecoverIntents(ctx); err != nil {
		t.Fatalf("RecoverIntents: %v", err)
	}

	got, err := f.products.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.CurrentStockGrams != 4000 {
		t.Errorf("stock = %d, replay of a completed deduction must not double-deduct", got.CurrentStockGrams)
	}
}

func TestRecoverIntentsCompletesInterruptedCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.addProduct(t, "Sugar", "20", 5000)
	created, err := f.sales.Create(ctx, p.ID, 1000)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Crash before either cancel step ran: marker pending, sale still there,
	// stock still deducted.
	if _, err := f.intents.Begin(storage.IntentCancelSale, created.ID, p.ID, 1000); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := f.sales.RecoverIntents(ctx); err != nil {
		t.Fatalf("RecoverIntents: %v", err)
	}

	got, err := f.products.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.CurrentStockGrams != 5000 {
		t.Errorf("stock = %d, want 5000 restored", got.CurrentStockGrams)
	}
	if _, err := f.sales.GetByID(ctx, created.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("sale still present after recovered cancel: %v", err)
	}
}
