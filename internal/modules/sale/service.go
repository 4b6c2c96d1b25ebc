package sale

import (
	"context"
	"fmt"
	"time"

	"github.com/hakimbenali/mizan-backend/internal/apperr"
	"github.com/hakimbenali/mizan-backend/internal/modules/product"
	"github.com/hakimbenali/mizan-backend/internal/storage"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service defines sale business logic.
//
// Create and Cancel are each two sequential store mutations with no
// compensating rollback; an intent marker around the pair makes a crash
// mid-sequence detectable and replayable, but a handled failure in the
// second step still leaves the first step's effect in place.
type Service interface {
	Create(ctx context.Context, productID, weightGrams int64) (*WithProduct, error)
	Cancel(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*WithProduct, error)
	GetByID(ctx context.Context, id int64) (*WithProduct, error)
	ByDate(ctx context.Context, date string) ([]*WithProduct, error)
	Today(ctx context.Context) ([]*WithProduct, error)
	TotalByDate(ctx context.Context, date string) (decimal.Decimal, error)
	TotalRange(ctx context.Context, startDate, endDate string) (*RangeTotal, error)
	Invoice(ctx context.Context, id int64) (*Invoice, error)

	// RecoverIntents replays the second step of any operation interrupted by
	// a crash. Called once at startup.
	RecoverIntents(ctx context.Context) error
}

type service struct {
	repo     Repository
	products product.Service
	intents  *storage.IntentLog
	log      *zap.Logger
}

// NewService creates a new sale service.
func NewService(repo Repository, products product.Service, intents *storage.IntentLog, log *zap.Logger) Service {
	return &service{repo: repo, products: products, intents: intents, log: log}
}

func saleReason(id int64) string   { return fmt.Sprintf("sale - invoice #%d", id) }
func cancelReason(id int64) string { return fmt.Sprintf("sale cancelled - invoice #%d", id) }

func (s *service) Create(ctx context.Context, productID, weightGrams int64) (*WithProduct, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.CurrentStockGrams < weightGrams {
		return nil, apperr.ErrInsufficientStock
	}

	total := p.PricePerKg.Mul(decimal.NewFromInt(weightGrams)).Div(decimal.NewFromInt(1000))
	created, err := s.repo.Create(ctx, storage.Record{
		"product_id":   productID,
		"weight_grams": weightGrams,
		"price_per_kg": p.PricePerKg,
		"total_amount": total,
		"sale_date":    storage.Timestamp(time.Now()),
	})
	if err != nil {
		return nil, err
	}

	intent, err := s.intents.Begin(storage.IntentSale, created.ID, productID, weightGrams)
	if err != nil {
		return nil, err
	}
	if _, err := s.products.DeductStock(ctx, productID, weightGrams, saleReason(created.ID)); err != nil {
		// The sale record stays in place (documented limitation); the marker
		// is cleared because the failure was handled, not a crash.
		if cerr := s.intents.Clear(intent.ID); cerr != nil {
			s.log.Warn("failed to clear sale intent", zap.String("intent_id", intent.ID), zap.Error(cerr))
		}
		return nil, err
	}
	if err := s.intents.Clear(intent.ID); err != nil {
		s.log.Warn("failed to clear sale intent", zap.String("intent_id", intent.ID), zap.Error(err))
	}

	return &WithProduct{Sale: *created, ProductName: p.Name}, nil
}

func (s *service) Cancel(ctx context.Context, id int64) error {
	sl, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if sl == nil {
		return apperr.ErrNotFound
	}

	intent, err := s.intents.Begin(storage.IntentCancelSale, sl.ID, sl.ProductID, sl.WeightGrams)
	if err != nil {
		return err
	}
	if _, err := s.products.AddStock(ctx, sl.ProductID, sl.WeightGrams, cancelReason(sl.ID)); err != nil {
		if cerr := s.intents.Clear(intent.ID); cerr != nil {
			s.log.Warn("failed to clear cancel intent", zap.String("intent_id", intent.ID), zap.Error(cerr))
		}
		return err
	}
	if _, err := s.repo.Delete(ctx, sl.ID); err != nil {
		return err
	}
	if err := s.intents.Clear(intent.ID); err != nil {
		s.log.Warn("failed to clear cancel intent", zap.String("intent_id", intent.ID), zap.Error(err))
	}
	return nil
}

func (s *service) List(ctx context.Context) ([]*WithProduct, error) {
	sales, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.join(ctx, sales)
}

func (s *service) GetByID(ctx context.Context, id int64) (*WithProduct, error) {
	sl, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sl == nil {
		return nil, apperr.ErrNotFound
	}
	joined, err := s.join(ctx, []*Sale{sl})
	if err != nil {
		return nil, err
	}
	return joined[0], nil
}

// ByDate filters to sales on one calendar day (YYYY-MM-DD, process-local
// zone).
func (s *service) ByDate(ctx context.Context, date string) ([]*WithProduct, error) {
	if _, err := time.ParseInLocation("2006-01-02", date, time.Local); err != nil {
		return nil, apperr.Validation("invalid date %q, expected YYYY-MM-DD", date)
	}
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]*WithProduct, 0, len(all))
	for _, sl := range all {
		if storage.DayKey(sl.SaleDate) == date {
			matched = append(matched, sl)
		}
	}
	return matched, nil
}

func (s *service) Today(ctx context.Context) ([]*WithProduct, error) {
	return s.ByDate(ctx, storage.DayKey(time.Now()))
}

func (s *service) TotalByDate(ctx context.Context, date string) (decimal.Decimal, error) {
	sales, err := s.ByDate(ctx, date)
	if err != nil {
		return decimal.Zero, err
	}
	return SumTotals(sales), nil
}

// TotalRange aggregates sales whose timestamps fall within the inclusive
// local-day range [startDate, endDate].
func (s *service) TotalRange(ctx context.Context, startDate, endDate string) (*RangeTotal, error) {
	from, to, err := rangeBounds(startDate, endDate)
	if err != nil {
		return nil, err
	}
	sales, err := s.repo.InRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, sl := range sales {
		total = total.Add(sl.TotalAmount)
	}
	return &RangeTotal{StartDate: startDate, EndDate: endDate, Total: total, Count: len(sales)}, nil
}

func (s *service) Invoice(ctx context.Context, id int64) (*Invoice, error) {
	sl, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Invoice{
		WithProduct:   *sl,
		WeightKg:      float64(sl.WeightGrams) / 1000,
		InvoiceNumber: fmt.Sprintf("INV-%06d", sl.ID),
		FormattedDate: sl.SaleDate.In(time.Local).Format("2006-01-02"),
	}, nil
}

func (s *service) RecoverIntents(ctx context.Context) error {
	pending, err := s.intents.Pending()
	if err != nil {
		return err
	}
	for _, intent := range pending {
		if err := s.recoverIntent(ctx, intent); err != nil {
			s.log.Error("intent recovery failed",
				zap.String("intent_id", intent.ID),
				zap.String("kind", string(intent.Kind)),
				zap.Int64("sale_id", intent.SaleID),
				zap.Error(err))
			continue
		}
		if err := s.intents.Clear(intent.ID); err != nil {
			return err
		}
	}
	return nil
}

// recoverIntent replays the missing second step of an interrupted operation.
// The reason string embedded in each adjustment carries the invoice id, so
// the presence of the matching adjustment tells whether the stock move
// already happened.
func (s *service) recoverIntent(ctx context.Context, intent *storage.Intent) error {
	sl, err := s.repo.GetByID(ctx, intent.SaleID)
	if err != nil {
		return err
	}

	switch intent.Kind {
	case storage.IntentSale:
		if sl == nil {
			// First step never made it to disk; nothing to replay.
			return nil
		}
		done, err := s.adjustmentExists(ctx, intent.ProductID, saleReason(intent.SaleID))
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		s.log.Info("replaying stock deduction for interrupted sale", zap.Int64("sale_id", intent.SaleID))
		_, err = s.products.DeductStock(ctx, intent.ProductID, intent.WeightGrams, saleReason(intent.SaleID))
		return err

	case storage.IntentCancelSale:
		if sl == nil {
			// Sale already deleted; the cancellation completed.
			return nil
		}
		done, err := s.adjustmentExists(ctx, intent.ProductID, cancelReason(intent.SaleID))
		if err != nil {
			return err
		}
		if !done {
			s.log.Info("replaying stock restore for interrupted cancellation", zap.Int64("sale_id", intent.SaleID))
			if _, err := s.products.AddStock(ctx, intent.ProductID, intent.WeightGrams, cancelReason(intent.SaleID)); err != nil {
				return err
			}
		}
		_, err = s.repo.Delete(ctx, intent.SaleID)
		return err

	default:
		return nil
	}
}

func (s *service) adjustmentExists(ctx context.Context, productID int64, reason string) (bool, error) {
	adjustments, err := s.products.Adjustments(ctx, productID)
	if err != nil {
		return false, err
	}
	for _, a := range adjustments {
		if a.Reason == reason {
			return true, nil
		}
	}
	return false, nil
}

func (s *service) join(ctx context.Context, sales []*Sale) ([]*WithProduct, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}
	joined := make([]*WithProduct, 0, len(sales))
	for _, sl := range sales {
		name, ok := names[sl.ProductID]
		if !ok {
			name = DeletedProductName
		}
		joined = append(joined, &WithProduct{Sale: *sl, ProductName: name})
	}
	return joined, nil
}

// SumTotals adds up the total_amount of a set of sales.
func SumTotals(sales []*WithProduct) decimal.Decimal {
	total := decimal.Zero
	for _, sl := range sales {
		total = total.Add(sl.TotalAmount)
	}
	return total
}

// rangeBounds converts an inclusive local-day range to stored-timestamp
// bounds.
func rangeBounds(startDate, endDate string) (string, string, error) {
	start, err := time.ParseInLocation("2006-01-02", startDate, time.Local)
	if err != nil {
		return "", "", apperr.Validation("invalid start date %q, expected YYYY-MM-DD", startDate)
	}
	end, err := time.ParseInLocation("2006-01-02", endDate, time.Local)
	if err != nil {
		return "", "", apperr.Validation("invalid end date %q, expected YYYY-MM-DD", endDate)
	}
	if end.Before(start) {
		return "", "", apperr.Validation("end date is before start date")
	}
	return storage.Timestamp(start), storage.Timestamp(end.AddDate(0, 0, 1).Add(-time.Millisecond)), nil
}
