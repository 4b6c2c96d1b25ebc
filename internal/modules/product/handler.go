package product

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hakimbenali/mizan-backend/internal/apperr"
	"github.com/hakimbenali/mizan-backend/internal/web"
	"github.com/shopspring/decimal"
)

// Handler exposes product HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/products", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/{id}", h.getByID)
		r.Post("/{id}/stock", h.addStock)
		r.Put("/{id}/price", h.updatePrice)
		r.Get("/{id}/stock", h.currentStock)
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.Fail(w, "invalid request body", apperr.Validation("invalid request body: %v", err))
		return
	}
	if req.Name == "" || req.PricePerKg.IsZero() {
		web.Fail(w, "name and price per kg are required", apperr.Validation("name and price per kg are required"))
		return
	}
	if req.PricePerKg.IsNegative() {
		web.Fail(w, "price per kg must be greater than zero", apperr.Validation("price per kg must be greater than zero"))
		return
	}
	if req.InitialStockGrams < 0 {
		web.Fail(w, "initial stock cannot be negative", apperr.Validation("initial stock cannot be negative"))
		return
	}
	p, err := h.service.Create(r.Context(), req)
	if err != nil {
		web.Fail(w, "failed to add product", err)
		return
	}
	web.RespondMessage(w, http.StatusCreated, "product added", p)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.List(r.Context())
	if err != nil {
		web.Fail(w, "failed to list products", err)
		return
	}
	web.Respond(w, http.StatusOK, products)
}

func (h *Handler) getByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		web.Fail(w, "product not found", err)
		return
	}
	web.Respond(w, http.StatusOK, p)
}

func (h *Handler) addStock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		Grams  int64  `json:"grams"`
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		web.Fail(w, "invalid request body", apperr.Validation("invalid request body: %v", err))
		return
	}
	if body.Grams <= 0 {
		web.Fail(w, "grams must be greater than zero", apperr.Validation("grams must be greater than zero"))
		return
	}
	p, err := h.service.AddStock(r.Context(), id, body.Grams, body.Reason)
	if err != nil {
		web.Fail(w, "failed to add stock", err)
		return
	}
	web.RespondMessage(w, http.StatusOK, "stock added", p)
}

func (h *Handler) updatePrice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		PricePerKg decimal.Decimal `json:"pricePerKg"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		web.Fail(w, "invalid request body", apperr.Validation("invalid request body: %v", err))
		return
	}
	if !body.PricePerKg.IsPositive() {
		web.Fail(w, "price per kg must be greater than zero", apperr.Validation("price per kg must be greater than zero"))
		return
	}
	p, err := h.service.UpdatePrice(r.Context(), id, body.PricePerKg)
	if err != nil {
		web.Fail(w, "failed to update price", err)
		return
	}
	web.RespondMessage(w, http.StatusOK, "price updated", p)
}

func (h *Handler) currentStock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		web.Fail(w, "product not found", err)
		return
	}
	web.Respond(w, http.StatusOK, map[string]any{
		"product_id":          p.ID,
		"name":                p.Name,
		"current_stock_grams": p.CurrentStockGrams,
		"stock_kg":            float64(p.CurrentStockGrams) / 1000,
	})
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		web.Fail(w, "invalid id", apperr.Validation("invalid id"))
		return 0, false
	}
	return id, true
}
