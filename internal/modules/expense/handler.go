package expense

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hakimbenali/mizan-backend/internal/apperr"
	"github.com/hakimbenali/mizan-backend/internal/web"
	"github.com/shopspring/decimal"
)

// Handler exposes expense HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/expenses", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/today", h.today)
		r.Get("/date/{date}", h.byDate)
		r.Get("/category/{category}", h.byCategory)
		r.Get("/categories/all", h.categories)
		r.Get("/total/range", h.totalRange)
		r.Get("/{id}", h.getByID)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

type expenseRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
}

func (r expenseRequest) validate() error {
	if r.Description == "" || r.Amount.IsZero() {
		return apperr.Validation("description and amount are required")
	}
	if r.Amount.IsNegative() {
		return apperr.Validation("amount must be greater than zero")
	}
	return nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.Fail(w, "invalid request body", apperr.Validation("invalid request body: %v", err))
		return
	}
	if err := req.validate(); err != nil {
		web.Fail(w, err.Error(), err)
		return
	}
	e, err := h.service.Create(r.Context(), req.Description, req.Amount, req.Category)
	if err != nil {
		web.Fail(w, "failed to add expense", err)
		return
	}
	web.RespondMessage(w, http.StatusCreated, "expense added", e)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.service.List(r.Context())
	if err != nil {
		web.Fail(w, "failed to list expenses", err)
		return
	}
	web.Respond(w, http.StatusOK, expenses)
}

func (h *Handler) today(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.service.Today(r.Context())
	if err != nil {
		web.Fail(w, "failed to list today's expenses", err)
		return
	}
	web.Respond(w, http.StatusOK, DayTotals{Expenses: expenses, Total: SumAmounts(expenses), Count: len(expenses)})
}

func (h *Handler) byDate(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	expenses, err := h.service.ByDate(r.Context(), date)
	if err != nil {
		web.Fail(w, "failed to list expenses", err)
		return
	}
	web.Respond(w, http.StatusOK, DayTotals{Expenses: expenses, Total: SumAmounts(expenses), Count: len(expenses), Date: date})
}

func (h *Handler) byCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	expenses, err := h.service.ByCategory(r.Context(), category)
	if err != nil {
		web.Fail(w, "failed to list expenses", err)
		return
	}
	web.Respond(w, http.StatusOK, expenses)
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		web.Fail(w, "failed to list categories", err)
		return
	}
	web.Respond(w, http.StatusOK, categories)
}

func (h *Handler) totalRange(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("startDate")
	end := r.URL.Query().Get("endDate")
	if start == "" || end == "" {
		web.Fail(w, "start and end dates are required", apperr.Validation("start and end dates are required"))
		return
	}
	total, err := h.service.TotalRange(r.Context(), start, end)
	if err != nil {
		web.Fail(w, "failed to aggregate expenses", err)
		return
	}
	web.Respond(w, http.StatusOK, total)
}

func (h *Handler) getByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	e, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		web.Fail(w, "expense not found", err)
		return
	}
	web.Respond(w, http.StatusOK, e)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.Fail(w, "invalid request body", apperr.Validation("invalid request body: %v", err))
		return
	}
	if err := req.validate(); err != nil {
		web.Fail(w, err.Error(), err)
		return
	}
	e, err := h.service.Update(r.Context(), id, req.Description, req.Amount, req.Category)
	if err != nil {
		web.Fail(w, "failed to update expense", err)
		return
	}
	web.RespondMessage(w, http.StatusOK, "expense updated", e)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		web.Fail(w, "failed to delete expense", err)
		return
	}
	web.RespondMessage(w, http.StatusOK, "expense deleted", nil)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		web.Fail(w, "invalid id", apperr.Validation("invalid id"))
		return 0, false
	}
	return id, true
}
