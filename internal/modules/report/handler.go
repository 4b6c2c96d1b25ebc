package report

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hakimbenali/mizan-backend/internal/apperr"
	"github.com/hakimbenali/mizan-backend/internal/web"
)

// Handler exposes inventory and reporting HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/inventory", func(r chi.Router) {
		r.Get("/current", h.currentInventory)
		r.Get("/daily-report", h.dailyReport)
		r.Get("/monthly-report/{year}/{month}", h.monthlyReport)
		r.Get("/low-stock", h.lowStock)
		r.Get("/stats", h.stats)
		r.Get("/adjustments", h.adjustments)
		r.Get("/dashboard", h.dashboard)
		r.Get("/export/daily", h.exportDaily)
		r.Get("/sales-report/{year}/{month}", h.salesReport)
	})
}

func (h *Handler) currentInventory(w http.ResponseWriter, r *http.Request) {
	inventory, err := h.service.CurrentInventory(r.Context())
	if err != nil {
		web.Fail(w, "failed to build inventory report", err)
		return
	}
	web.Respond(w, http.StatusOK, inventory)
}

func (h *Handler) dailyReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.DailyReport(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		web.Fail(w, "failed to build daily report", err)
		return
	}
	web.Respond(w, http.StatusOK, report)
}

func (h *Handler) monthlyReport(w http.ResponseWriter, r *http.Request) {
	year, month, ok := yearMonth(w, r)
	if !ok {
		return
	}
	report, err := h.service.MonthlyReport(r.Context(), year, month)
	if err != nil {
		web.Fail(w, "failed to build monthly report", err)
		return
	}
	web.Respond(w, http.StatusOK, report)
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	threshold := int64(DefaultLowStockThresholdGrams)
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			web.Fail(w, "invalid threshold", apperr.Validation("invalid threshold %q", raw))
			return
		}
		threshold = parsed
	}
	report, err := h.service.LowStock(r.Context(), threshold)
	if err != nil {
		web.Fail(w, "failed to list low-stock products", err)
		return
	}
	web.Respond(w, http.StatusOK, report)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GeneralStats(r.Context())
	if err != nil {
		web.Fail(w, "failed to build stats", err)
		return
	}
	web.Respond(w, http.StatusOK, stats)
}

func (h *Handler) adjustments(w http.ResponseWriter, r *http.Request) {
	var productID int64
	if raw := r.URL.Query().Get("productId"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			web.Fail(w, "invalid product id", apperr.Validation("invalid product id %q", raw))
			return
		}
		productID = parsed
	}
	adjustments, err := h.service.Adjustments(r.Context(), productID)
	if err != nil {
		web.Fail(w, "failed to list adjustments", err)
		return
	}
	web.Respond(w, http.StatusOK, adjustments)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.service.Dashboard(r.Context())
	if err != nil {
		web.Fail(w, "failed to build dashboard", err)
		return
	}
	web.Respond(w, http.StatusOK, dashboard)
}

func (h *Handler) exportDaily(w http.ResponseWriter, r *http.Request) {
	export, err := h.service.ExportDaily(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		web.Fail(w, "failed to export daily report", err)
		return
	}
	web.Respond(w, http.StatusOK, export)
}

// salesReport is the monthly report enriched with a per-product breakdown.
func (h *Handler) salesReport(w http.ResponseWriter, r *http.Request) {
	year, month, ok := yearMonth(w, r)
	if !ok {
		return
	}
	report, err := h.service.MonthlyReport(r.Context(), year, month)
	if err != nil {
		web.Fail(w, "failed to build sales report", err)
		return
	}
	breakdown, err := h.service.ProductBreakdown(r.Context(), year, month)
	if err != nil {
		web.Fail(w, "failed to build product breakdown", err)
		return
	}
	web.Respond(w, http.StatusOK, map[string]any{
		"year":             report.Year,
		"month":            report.Month,
		"dailyReports":     report.DailyReports,
		"summary":          report.Summary,
		"productBreakdown": breakdown,
	})
}

func yearMonth(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		web.Fail(w, "invalid year", apperr.Validation("invalid year"))
		return 0, 0, false
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		web.Fail(w, "invalid month", apperr.Validation("invalid month"))
		return 0, 0, false
	}
	return year, month, true
}
