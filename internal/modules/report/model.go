package report

import (
	"github.com/hakimbenali/mizan-backend/internal/modules/expense"
	"github.com/hakimbenali/mizan-backend/internal/modules/product"
	"github.com/hakimbenali/mizan-backend/internal/modules/sale"
	"github.com/shopspring/decimal"
)

// InventoryItem is a product augmented with derived stock figures.
type InventoryItem struct {
	product.Product
	StockKg    float64         `json:"stock_kg"`
	StockValue decimal.Decimal `json:"stock_value"`
}

// AdjustmentView is an audit record joined with its product's name.
type AdjustmentView struct {
	product.Adjustment
	ProductName string `json:"product_name"`
}

// DailyReport composes one calendar day's sales, expenses and the current
// inventory snapshot.
type DailyReport struct {
	Date      string           `json:"date"`
	Sales     SalesSection     `json:"sales"`
	Expenses  ExpensesSection  `json:"expenses"`
	Inventory InventorySection `json:"inventory"`
	Summary   DailySummary     `json:"summary"`
}

type SalesSection struct {
	Items []*sale.WithProduct `json:"items"`
	Total decimal.Decimal     `json:"total"`
	Count int                 `json:"count"`
}

type ExpensesSection struct {
	Items []*expense.Expense `json:"items"`
	Total decimal.Decimal    `json:"total"`
	Count int                `json:"count"`
}

type InventorySection struct {
	Items      []*InventoryItem `json:"items"`
	TotalValue decimal.Decimal  `json:"totalValue"`
	Count      int              `json:"count"`
}

type DailySummary struct {
	NetProfit     decimal.Decimal `json:"netProfit"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
}

// MonthlyReport buckets one month's sales and expenses by calendar day.
type MonthlyReport struct {
	Year         int             `json:"year"`
	Month        int             `json:"month"`
	DailyReports []*DayBucket    `json:"dailyReports"`
	Summary      MonthlySummary  `json:"summary"`
}

type DayBucket struct {
	Date          string          `json:"date"`
	SalesCount    int             `json:"sales_count"`
	DailySales    decimal.Decimal `json:"daily_sales"`
	DailyExpenses decimal.Decimal `json:"daily_expenses"`
}

type MonthlySummary struct {
	TotalSales       decimal.Decimal `json:"totalSales"`
	TotalExpenses    decimal.Decimal `json:"totalExpenses"`
	NetProfit        decimal.Decimal `json:"netProfit"`
	DaysWithSales    int             `json:"daysWithSales"`
	DaysWithExpenses int             `json:"daysWithExpenses"`
	TotalDays        int             `json:"totalDays"`
}

// Stats is the dashboard headline block.
type Stats struct {
	TotalProducts    int             `json:"totalProducts"`
	TodaySales       TodaySales      `json:"todaySales"`
	TodayExpenses    TodayExpenses   `json:"todayExpenses"`
	LowStockProducts int             `json:"lowStockProducts"`
	TodayProfit      decimal.Decimal `json:"todayProfit"`
}

type TodaySales struct {
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

type TodayExpenses struct {
	Total decimal.Decimal `json:"total"`
}

// LowStockReport lists products under a stock threshold, ascending by stock.
type LowStockReport struct {
	Products  []*InventoryItem `json:"products"`
	Threshold int64            `json:"threshold"`
	Count     int              `json:"count"`
}

// Dashboard is the single payload behind the main UI screen.
type Dashboard struct {
	Stats            *Stats              `json:"stats"`
	TodaySales       []*sale.WithProduct `json:"todaySales"`
	TodayExpenses    []*expense.Expense  `json:"todayExpenses"`
	LowStockProducts []*InventoryItem    `json:"lowStockProducts"`
	Summary          DashboardSummary    `json:"summary"`
}

type DashboardSummary struct {
	TodayProfit   decimal.Decimal `json:"todayProfit"`
	LowStockCount int             `json:"lowStockCount"`
	TotalProducts int             `json:"totalProducts"`
}

// ProductStats is the per-product slice of a monthly breakdown.
type ProductStats struct {
	ProductID         int64           `json:"product_id"`
	ProductName       string          `json:"product_name"`
	TotalWeightGrams  int64           `json:"total_weight_grams"`
	TotalWeightKg     float64         `json:"total_weight_kg"`
	TotalSales        decimal.Decimal `json:"total_sales"`
	SalesCount        int             `json:"sales_count"`
	AveragePricePerKg decimal.Decimal `json:"average_price_per_kg"`
}

// DailyExport is the flattened daily report used by the export endpoint.
type DailyExport struct {
	Date     string             `json:"date"`
	Sales    []ExportSaleRow    `json:"sales"`
	Expenses []ExportExpenseRow `json:"expenses"`
	Summary  DailySummary       `json:"summary"`
}

type ExportSaleRow struct {
	Product    string          `json:"product"`
	Weight     int64           `json:"weight"`
	PricePerKg decimal.Decimal `json:"pricePerKg"`
	Total      decimal.Decimal `json:"total"`
	Time       string          `json:"time"`
}

type ExportExpenseRow struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Time        string          `json:"time"`
}
