package sale

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hakimbenali/mizan-backend/internal/apperr"
	"github.com/hakimbenali/mizan-backend/internal/web"
)

// Handler exposes sale HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/sales", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/today", h.today)
		r.Get("/date/{date}", h.byDate)
		r.Get("/total/range", h.totalRange)
		r.Get("/{id}", h.getByID)
		r.Delete("/{id}", h.cancel)
		r.Get("/{id}/invoice", h.invoice)
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductID   int64 `json:"productId"`
		WeightGrams int64 `json:"weightGrams"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		web.Fail(w, "invalid request body", apperr.Validation("invalid request body: %v", err))
		return
	}
	if body.ProductID == 0 || body.WeightGrams == 0 {
		web.Fail(w, "product id and weight in grams are required", apperr.Validation("product id and weight in grams are required"))
		return
	}
	if body.WeightGrams < 0 {
		web.Fail(w, "weight must be greater than zero", apperr.Validation("weight must be greater than zero"))
		return
	}
	sl, err := h.service.Create(r.Context(), body.ProductID, body.WeightGrams)
	if err != nil {
		web.Fail(w, "failed to record sale", err)
		return
	}
	web.RespondMessage(w, http.StatusCreated, "sale recorded", sl)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	sales, err := h.service.List(r.Context())
	if err != nil {
		web.Fail(w, "failed to list sales", err)
		return
	}
	web.Respond(w, http.StatusOK, sales)
}

func (h *Handler) today(w http.ResponseWriter, r *http.Request) {
	sales, err := h.service.Today(r.Context())
	if err != nil {
		web.Fail(w, "failed to list today's sales", err)
		return
	}
	web.Respond(w, http.StatusOK, DayTotals{Sales: sales, Total: SumTotals(sales), Count: len(sales)})
}

func (h *Handler) byDate(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	sales, err := h.service.ByDate(r.Context(), date)
	if err != nil {
		web.Fail(w, "failed to list sales", err)
		return
	}
	web.Respond(w, http.StatusOK, DayTotals{Sales: sales, Total: SumTotals(sales), Count: len(sales), Date: date})
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
		web.Fail(w, "failed to aggregate sales", err)
		return
	}
	web.Respond(w, http.StatusOK, total)
}

func (h *Handler) getByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	sl, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		web.Fail(w, "sale not found", err)
		return
	}
	web.Respond(w, http.StatusOK, sl)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Cancel(r.Context(), id); err != nil {
		web.Fail(w, "failed to cancel sale", err)
		return
	}
	web.RespondMessage(w, http.StatusOK, "sale cancelled", nil)
}

func (h *Handler) invoice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	inv, err := h.service.Invoice(r.Context(), id)
	if err != nil {
		web.Fail(w, "sale not found", err)
		return
	}
	web.Respond(w, http.StatusOK, inv)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		web.Fail(w, "invalid id", apperr.Validation("invalid id"))
		return 0, false
	}
	return id, true
}
