package report

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/hakimbenali/mizan-backend/internal/modules/expense"
	"github.com/hakimbenali/mizan-backend/internal/modules/product"
	"github.com/hakimbenali/mizan-backend/internal/modules/sale"
	"github.com/hakimbenali/mizan-backend/internal/storage"
	"github.com/shopspring/decimal"
)

// DefaultLowStockThresholdGrams flags products for the low-stock list.
const DefaultLowStockThresholdGrams = 1000

// Service derives reports by scanning the entity collections in memory.
// Everything here is O(n) over small single-store collections.
type Service interface {
	CurrentInventory(ctx context.Context) ([]*InventoryItem, error)
	Adjustments(ctx context.Context, productID int64) ([]*AdjustmentView, error)
	DailyReport(ctx context.Context, date string) (*DailyReport, error)
	MonthlyReport(ctx context.Context, year, month int) (*MonthlyReport, error)
	LowStock(ctx context.Context, thresholdGrams int64) (*LowStockReport, error)
	GeneralStats(ctx context.Context) (*Stats, error)
	Dashboard(ctx context.Context) (*Dashboard, error)
	ProductBreakdown(ctx context.Context, year, month int) ([]*ProductStats, error)
	ExportDaily(ctx context.Context, date string) (*DailyExport, error)
}

type service struct {
	products product.Service
	sales    sale.Service
	expenses expense.Service
}

// NewService creates a new reporting service over the entity services.
func NewService(products product.Service, sales sale.Service, expenses expense.Service) Service {
	return &service{products: products, sales: sales, expenses: expenses}
}

func (s *service) CurrentInventory(ctx context.Context) ([]*InventoryItem, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]*InventoryItem, 0, len(products))
	for _, p := range products {
		items = append(items, &InventoryItem{
			Product:    *p,
			StockKg:    roundKg(p.CurrentStockGrams),
			StockValue: stockValue(p),
		})
	}
	return items, nil
}

func (s *service) Adjustments(ctx context.Context, productID int64) ([]*AdjustmentView, error) {
	adjustments, err := s.products.Adjustments(ctx, productID)
	if err != nil {
		return nil, err
	}
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}
	views := make([]*AdjustmentView, 0, len(adjustments))
	for _, a := range adjustments {
		name, ok := names[a.ProductID]
		if !ok {
			name = sale.DeletedProductName
		}
		views = append(views, &AdjustmentView{Adjustment: *a, ProductName: name})
	}
	return views, nil
}

// DailyReport defaults to today when date is empty.
func (s *service) DailyReport(ctx context.Context, date string) (*DailyReport, error) {
	if date == "" {
		date = storage.DayKey(time.Now())
	}

	sales, err := s.sales.ByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenses.ByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	inventory, err := s.CurrentInventory(ctx)
	if err != nil {
		return nil, err
	}

	totalSales := sale.SumTotals(sales)
	totalExpenses := expense.SumAmounts(expenses)
	totalStockValue := decimal.Zero
	for _, item := range inventory {
		totalStockValue = totalStockValue.Add(item.StockValue)
	}

	return &DailyReport{
		Date:     date,
		Sales:    SalesSection{Items: sales, Total: totalSales, Count: len(sales)},
		Expenses: ExpensesSection{Items: expenses, Total: totalExpenses, Count: len(expenses)},
		Inventory: InventorySection{
			Items:      inventory,
			TotalValue: totalStockValue,
			Count:      len(inventory),
		},
		Summary: DailySummary{
			NetProfit:     totalSales.Sub(totalExpenses),
			TotalRevenue:  totalSales,
			TotalExpenses: totalExpenses,
		},
	}, nil
}

func (s *service) MonthlyReport(ctx context.Context, year, month int) (*MonthlyReport, error) {
	sales, err := s.sales.List(ctx)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenses.List(ctx)
	if err != nil {
		return nil, err
	}

	buckets := make(map[string]*DayBucket)
	bucket := func(day string) *DayBucket {
		b, ok := buckets[day]
		if !ok {
			b = &DayBucket{Date: day, DailySales: decimal.Zero, DailyExpenses: decimal.Zero}
			buckets[day] = b
		}
		return b
	}

	for _, sl := range sales {
		if !inMonth(sl.SaleDate, year, month) {
			continue
		}
		b := bucket(storage.DayKey(sl.SaleDate))
		b.SalesCount++
		b.DailySales = b.DailySales.Add(sl.TotalAmount)
	}
	for _, e := range expenses {
		if !inMonth(e.ExpenseDate, year, month) {
			continue
		}
		b := bucket(storage.DayKey(e.ExpenseDate))
		b.DailyExpenses = b.DailyExpenses.Add(e.Amount)
	}

	days := make([]*DayBucket, 0, len(buckets))
	for _, b := range buckets {
		days = append(days, b)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date > days[j].Date })

	summary := MonthlySummary{
		TotalSales:    decimal.Zero,
		TotalExpenses: decimal.Zero,
		TotalDays:     len(days),
	}
	for _, b := range days {
		summary.TotalSales = summary.TotalSales.Add(b.DailySales)
		summary.TotalExpenses = summary.TotalExpenses.Add(b.DailyExpenses)
		if b.SalesCount > 0 {
			summary.DaysWithSales++
		}
		if b.DailyExpenses.IsPositive() {
			summary.DaysWithExpenses++
		}
	}
	summary.NetProfit = summary.TotalSales.Sub(summary.TotalExpenses)

	return &MonthlyReport{Year: year, Month: month, DailyReports: days, Summary: summary}, nil
}

func (s *service) LowStock(ctx context.Context, thresholdGrams int64) (*LowStockReport, error) {
	if thresholdGrams <= 0 {
		thresholdGrams = DefaultLowStockThresholdGrams
	}
	inventory, err := s.CurrentInventory(ctx)
	if err != nil {
		return nil, err
	}
	low := make([]*InventoryItem, 0, len(inventory))
	for _, item := range inventory {
		if item.CurrentStockGrams < thresholdGrams {
			low = append(low, item)
		}
	}
	sort.Slice(low, func(i, j int) bool { return low[i].CurrentStockGrams < low[j].CurrentStockGrams })
	return &LowStockReport{Products: low, Threshold: thresholdGrams, Count: len(low)}, nil
}

func (s *service) GeneralStats(ctx context.Context) (*Stats, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}
	todaySales, err := s.sales.Today(ctx)
	if err != nil {
		return nil, err
	}
	todayExpenses, err := s.expenses.Today(ctx)
	if err != nil {
		return nil, err
	}
	lowStock, err := s.LowStock(ctx, DefaultLowStockThresholdGrams)
	if err != nil {
		return nil, err
	}

	salesTotal := sale.SumTotals(todaySales)
	expensesTotal := expense.SumAmounts(todayExpenses)

	return &Stats{
		TotalProducts:    len(products),
		TodaySales:       TodaySales{Count: len(todaySales), Total: salesTotal},
		TodayExpenses:    TodayExpenses{Total: expensesTotal},
		LowStockProducts: lowStock.Count,
		TodayProfit:      salesTotal.Sub(expensesTotal),
	}, nil
}

func (s *service) Dashboard(ctx context.Context) (*Dashboard, error) {
	stats, err := s.GeneralStats(ctx)
	if err != nil {
		return nil, err
	}
	todaySales, err := s.sales.Today(ctx)
	if err != nil {
		return nil, err
	}
	todayExpenses, err := s.expenses.Today(ctx)
	if err != nil {
		return nil, err
	}
	lowStock, err := s.LowStock(ctx, DefaultLowStockThresholdGrams)
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		Stats:            stats,
		TodaySales:       todaySales,
		TodayExpenses:    todayExpenses,
		LowStockProducts: lowStock.Products,
		Summary: DashboardSummary{
			TodayProfit:   stats.TodayProfit,
			LowStockCount: lowStock.Count,
			TotalProducts: stats.TotalProducts,
		},
	}, nil
}

func (s *service) ProductBreakdown(ctx context.Context, year, month int) ([]*ProductStats, error) {
	sales, err := s.sales.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := make(map[int64]*ProductStats)
	for _, sl := range sales {
		if !inMonth(sl.SaleDate, year, month) {
			continue
		}
		ps, ok := stats[sl.ProductID]
		if !ok {
			ps = &ProductStats{
				ProductID:   sl.ProductID,
				ProductName: sl.ProductName,
				TotalSales:  decimal.Zero,
			}
			stats[sl.ProductID] = ps
		}
		ps.TotalWeightGrams += sl.WeightGrams
		ps.TotalSales = ps.TotalSales.Add(sl.TotalAmount)
		ps.SalesCount++
	}

	breakdown := make([]*ProductStats, 0, len(stats))
	for _, ps := range stats {
		if ps.TotalWeightGrams > 0 {
			ps.AveragePricePerKg = ps.TotalSales.
				Div(decimal.NewFromInt(ps.TotalWeightGrams)).
				Mul(decimal.NewFromInt(1000))
		}
		ps.TotalWeightKg = roundKg(ps.TotalWeightGrams)
		breakdown = append(breakdown, ps)
	}
	sort.Slice(breakdown, func(i, j int) bool {
		return breakdown[i].TotalSales.GreaterThan(breakdown[j].TotalSales)
	})
	return breakdown, nil
}

func (s *service) ExportDaily(ctx context.Context, date string) (*DailyExport, error) {
	report, err := s.DailyReport(ctx, date)
	if err != nil {
		return nil, err
	}

	export := &DailyExport{Date: report.Date, Summary: report.Summary}
	for _, sl := range report.Sales.Items {
		export.Sales = append(export.Sales, ExportSaleRow{
			Product:    sl.ProductName,
			Weight:     sl.WeightGrams,
			PricePerKg: sl.PricePerKg,
			Total:      sl.TotalAmount,
			Time:       sl.SaleDate.In(time.Local).Format("15:04:05"),
		})
	}
	for _, e := range report.Expenses.Items {
		export.Expenses = append(export.Expenses, ExportExpenseRow{
			Description: e.Description,
			Amount:      e.Amount,
			Category:    e.Category,
			Time:        e.ExpenseDate.In(time.Local).Format("15:04:05"),
		})
	}
	return export, nil
}

func inMonth(t time.Time, year, month int) bool {
	local := t.In(time.Local)
	return local.Year() == year && int(local.Month()) == month
}

func stockValue(p *product.Product) decimal.Decimal {
	return p.PricePerKg.Mul(decimal.NewFromInt(p.CurrentStockGrams)).Div(decimal.NewFromInt(1000))
}

func roundKg(grams int64) float64 {
	return math.Round(float64(grams)/1000*1000) / 1000
}
