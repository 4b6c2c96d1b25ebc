package sale

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is one sell-by-weight transaction. PricePerKg and TotalAmount are
// frozen at creation from the product's price at that moment; later price
// changes never touch past sales.
type Sale struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	WeightGrams int64           `json:"weight_grams"`
	PricePerKg  decimal.Decimal `json:"price_per_kg"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	SaleDate    time.Time       `json:"sale_date"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// WithProduct is a sale joined with its product's display name. Sales whose
// product has since been removed carry the DeletedProductName placeholder.
type WithProduct struct {
	Sale
	ProductName string `json:"product_name"`
}

// DeletedProductName is the display fallback for orphaned sales.
const DeletedProductName = "deleted product"

// Invoice is the printable payload for one sale.
type Invoice struct {
	WithProduct
	WeightKg      float64 `json:"weight_kg"`
	InvoiceNumber string  `json:"invoice_number"`
	FormattedDate string  `json:"formatted_date"`
}

// DayTotals is the response shape for per-date listings.
type DayTotals struct {
	Sales []*WithProduct  `json:"sales"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
	Date  string          `json:"date,omitempty"`
}

// RangeTotal is the response shape for range aggregation.
type RangeTotal struct {
	StartDate string          `json:"start_date"`
	EndDate   string          `json:"end_date"`
	Total     decimal.Decimal `json:"total"`
	Count     int             `json:"count"`
}
