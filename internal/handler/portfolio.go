package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ijwihub/studio-cms/internal/service"
)

// PortfolioHandler exposes portfolio works under /portfolio with the same
// routes and status codes as ServicesHandler.
type PortfolioHandler struct {
	portfolio *service.PortfolioService
	logger    *slog.Logger
}

func NewPortfolioHandler(portfolio *service.PortfolioService, logger *slog.Logger) *PortfolioHandler {
	return &PortfolioHandler{portfolio: portfolio, logger: logger}
}

func (h *PortfolioHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	works, err := h.portfolio.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, works)
}

func (h *PortfolioHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	work, err := h.portfolio.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, work)
}

func (h *PortfolioHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.WorkInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	work, err := h.portfolio.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, work)
}

func (h *PortfolioHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch service.WorkPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, err)
		return
	}

	work, err := h.portfolio.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, work)
}

func (h *PortfolioHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.portfolio.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
