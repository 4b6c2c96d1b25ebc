package expense

import (
	"context"
	"sort"
	"time"

	"github.com/hakimbenali/mizan-backend/internal/apperr"
	"github.com/hakimbenali/mizan-backend/internal/storage"
	"github.com/shopspring/decimal"
)

// Service defines expense business logic.
type Service interface {
	Create(ctx context.Context, description string, amount decimal.Decimal, category string) (*Expense, error)
	List(ctx context.Context) ([]*Expense, error)
	GetByID(ctx context.Context, id int64) (*Expense, error)
	Update(ctx context.Context, id int64, description string, amount decimal.Decimal, category string) (*Expense, error)
	Delete(ctx context.Context, id int64) error
	ByDate(ctx context.Context, date string) ([]*Expense, error)
	Today(ctx context.Context) ([]*Expense, error)
	TotalByDate(ctx context.Context, date string) (decimal.Decimal, error)
	TotalRange(ctx context.Context, startDate, endDate string) (*RangeTotal, error)
	ByCategory(ctx context.Context, category string) ([]*Expense, error)
	Categories(ctx context.Context) ([]string, error)
}

type service struct {
	repo Repository
}

// NewService creates a new expense service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, description string, amount decimal.Decimal, category string) (*Expense, error) {
	if category == "" {
		category = DefaultCategory
	}
	return s.repo.Create(ctx, storage.Record{
		"description":  description,
		"amount":       amount,
		"category":     category,
		"expense_date": storage.Timestamp(time.Now()),
	})
}

func (s *service) List(ctx context.Context) ([]*Expense, error) {
	return s.repo.List(ctx)
}

func (s *service) GetByID(ctx context.Context, id int64) (*Expense, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, apperr.ErrNotFound
	}
	return e, nil
}

func (s *service) Update(ctx context.Context, id int64, description string, amount decimal.Decimal, category string) (*Expense, error) {
	if category == "" {
		category = DefaultCategory
	}
	e, err := s.repo.Update(ctx, id, storage.Record{
		"description": description,
		"amount":      amount,
		"category":    category,
	})
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, apperr.ErrNotFound
	}
	return e, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return apperr.ErrNotFound
	}
	return nil
}

func (s *service) ByDate(ctx context.Context, date string) ([]*Expense, error) {
	if _, err := time.ParseInLocation("2006-01-02", date, time.Local); err != nil {
		return nil, apperr.Validation("invalid date %q, expected YYYY-MM-DD", date)
	}
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]*Expense, 0, len(all))
	for _, e := range all {
		if storage.DayKey(e.ExpenseDate) == date {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

func (s *service) Today(ctx context.Context) ([]*Expense, error) {
	return s.ByDate(ctx, storage.DayKey(time.Now()))
}

func (s *service) TotalByDate(ctx context.Context, date string) (decimal.Decimal, error) {
	expenses, err := s.ByDate(ctx, date)
	if err != nil {
		return decimal.Zero, err
	}
	return SumAmounts(expenses), nil
}

func (s *service) TotalRange(ctx context.Context, startDate, endDate string) (*RangeTotal, error) {
	start, err := time.ParseInLocation("2006-01-02", startDate, time.Local)
	if err != nil {
		return nil, apperr.Validation("invalid start date %q, expected YYYY-MM-DD", startDate)
	}
	end, err := time.ParseInLocation("2006-01-02", endDate, time.Local)
	if err != nil {
		return nil, apperr.Validation("invalid end date %q, expected YYYY-MM-DD", endDate)
	}
	if end.Before(start) {
		return nil, apperr.Validation("end date is before start date")
	}
	expenses, err := s.repo.InRange(ctx,
		storage.Timestamp(start),
		storage.Timestamp(end.AddDate(0, 0, 1).Add(-time.Millisecond)))
	if err != nil {
		return nil, err
	}
	return &RangeTotal{StartDate: startDate, EndDate: endDate, Total: SumAmounts(expenses), Count: len(expenses)}, nil
}

func (s *service) ByCategory(ctx context.Context, category string) ([]*Expense, error) {
	return s.repo.ByCategory(ctx, category)
}

func (s *service) Categories(ctx context.Context) ([]string, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(all))
	categories := make([]string, 0, len(all))
	for _, e := range all {
		if _, ok := seen[e.Category]; ok {
			continue
		}
		seen[e.Category] = struct{}{}
		categories = append(categories, e.Category)
	}
	sort.Strings(categories)
	return categories, nil
}

// SumAmounts adds up the amounts of a set of expenses.
func SumAmounts(expenses []*Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}
