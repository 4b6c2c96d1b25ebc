package product

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is an item sold by weight. Price is per kilogram; stock is held in
// grams and must never go negative.
type Product struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	PricePerKg        decimal.Decimal `json:"price_per_kg"`
	CurrentStockGrams int64           `json:"current_stock_grams"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Adjustment types.
const (
	AdjustmentAdd    = "add"
	AdjustmentRemove = "remove"
)

// Adjustment is one append-only audit record describing a stock change and
// its cause. Normal flow never updates or deletes these.
type Adjustment struct {
	ID             int64     `json:"id"`
	ProductID      int64     `json:"product_id"`
	WeightGrams    int64     `json:"weight_grams"`
	AdjustmentType string    `json:"adjustment_type"`
	Reason         string    `json:"reason"`
	AdjustmentDate time.Time `json:"adjustment_date"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
