// Package handler contains the HTTP handlers: JSON endpoints for content and
// auth, the server-rendered admin panel, and the health check.
//
// HANDLER RESPONSIBILITIES:
//  1. Parse the incoming HTTP request (path params, body, cookies)
//  2. Call the service layer
//  3. Write the HTTP response (status code, headers, body)
//
// Handlers hold no business rules; validation and error kinds come from the
// service layer and are mapped to status codes in response.go.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ijwihub/studio-cms/internal/service"
)

// ServicesHandler exposes the service catalogue.
//
//	GET    /services       → list (public)
//	GET    /services/{id}  → one  (public)
//	POST   /services       → create, 201
//	PUT    /services/{id}  → partial update, 200
//	DELETE /services/{id}  → 204
//
// The mutating routes sit behind auth.RequireAuth in the router.
type ServicesHandler struct {
	catalog *service.CatalogService
	logger  *slog.Logger
}

func NewServicesHandler(catalog *service.CatalogService, logger *slog.Logger) *ServicesHandler {
	return &ServicesHandler{catalog: catalog, logger: logger}
}

func (h *ServicesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	services, err := h.catalog.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, services)
}

func (h *ServicesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	svc, err := h.catalog.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, svc)
}

func (h *ServicesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.ServiceInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	svc, err := h.catalog.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, svc)
}

// HandleUpdate only touches the fields present in the body:
// {"price":"$150"} changes the price and nothing else.
func (h *ServicesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch service.ServicePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, err)
		return
	}

	svc, err := h.catalog.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, svc)
}

func (h *ServicesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
