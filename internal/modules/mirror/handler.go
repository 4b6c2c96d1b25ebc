package mirror

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hakimbenali/mizan-backend/internal/web"
)

// Handler exposes the backup and mirror HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/backup", func(r chi.Router) {
		r.Post("/upload", h.upload)
		r.Post("/download", h.download)
		r.Post("/sync", h.sync)
		r.Post("/local", h.local)
		r.Post("/smart", h.smart)
		r.Post("/reset-models", h.resetModels)
		r.Get("/status", h.status)
	})
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.SafeUpload(r.Context())
	if err != nil {
		web.Fail(w, "failed to upload data to MongoDB", err)
		return
	}
	web.RespondMessage(w, http.StatusOK, result.Message, result)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Download(r.Context())
	if err != nil {
		web.Fail(w, "failed to download data from MongoDB", err)
		return
	}
	web.RespondMessage(w, http.StatusOK, result.Message, result)
}

func (h *Handler) sync(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Sync(r.Context())
	if err != nil {
		web.Fail(w, "failed to synchronize data", err)
		return
	}
	web.RespondMessage(w, http.StatusOK, result.Message, result)
}

func (h *Handler) local(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.LocalBackup(r.Context())
	if err != nil {
		web.Fail(w, "failed to create local backup", err)
		return
	}
	web.RespondMessage(w, http.StatusOK, result.Message, result)
}

func (h *Handler) smart(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.SmartBackup(r.Context())
	if err != nil {
		web.Fail(w, "all backup methods failed", err)
		return
	}
	web.RespondMessage(w, http.StatusOK, result.Message, result)
}

func (h *Handler) resetModels(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ResetModels(r.Context()); err != nil {
		web.Fail(w, "failed to reset mirror state", err)
		return
	}
	web.RespondMessage(w, http.StatusOK, "mirror connection state reset", nil)
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	web.Respond(w, http.StatusOK, h.service.CheckConnection(r.Context()))
}
