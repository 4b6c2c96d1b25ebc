package expense

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCategory is applied when a request leaves the category empty.
const DefaultCategory = "general"

// Expense is one outgoing cost, independent of products and sales.
type Expense struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	ExpenseDate time.Time       `json:"expense_date"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// DayTotals is the response shape for per-date listings.
type DayTotals struct {
	Expenses []*Expense      `json:"expenses"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
	Date     string          `json:"date,omitempty"`
}

// RangeTotal is the response shape for range aggregation.
type RangeTotal struct {
	StartDate string          `json:"start_date"`
	EndDate   string          `json:"end_date"`
	Total     decimal.Decimal `json:"total"`
	Count     int             `json:"count"`
}
