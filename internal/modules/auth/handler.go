package auth

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hakimbenali/mizan-backend/internal/apperr"
	"github.com/hakimbenali/mizan-backend/internal/web"
)

// Handler exposes the user account HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/users", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.With(Protect(h.service)).Delete("/{id}", h.delete)
	})
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.Fail(w, "invalid request body", apperr.Validation("invalid request body: %v", err))
		return
	}
	user, err := h.service.Register(r.Context(), req.Username, req.Password, req.Role)
	if err != nil {
		web.Fail(w, "failed to register user", err)
		return
	}
	web.RespondMessage(w, http.StatusCreated, "user registered", user)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.Fail(w, "invalid request body", apperr.Validation("invalid request body: %v", err))
		return
	}
	session, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		web.FailStatus(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	web.RespondMessage(w, http.StatusOK, "login successful", session)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFrom(r.Context())
	if !ok || claims.Role != RoleAdmin {
		web.FailStatus(w, http.StatusForbidden, "admin role required")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		web.Fail(w, "invalid user id", apperr.Validation("invalid user id"))
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		web.Fail(w, "failed to delete user", err)
		return
	}
	web.RespondMessage(w, http.StatusOK, "user deleted", nil)
}
