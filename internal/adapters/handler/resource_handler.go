package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
	"github.com/AchilleasB/campus-events/event-service/internal/core/services"
)

type ResourceHandler struct {
	resources ports.ResourceRequestService
	resolver  *services.RoleResolver
	logger    *zap.Logger
}

func NewResourceHandler(resources ports.ResourceRequestService, resolver *services.RoleResolver, logger *zap.Logger) *ResourceHandler {
	return &ResourceHandler{resources: resources, resolver: resolver, logger: logger}
}

type resourceCatalogEntry struct {
	ID    domain.ResourceID `json:"id"`
	Label string            `json:"label"`
}

// Catalog lists the bookable resources in display order.
func (h *ResourceHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	entries := make([]resourceCatalogEntry, 0, len(domain.Resources))
	for _, id := range domain.Resources {
		entries = append(entries, resourceCatalogEntry{ID: id, Label: id.Label()})
	}
	respondData(w, http.StatusOK, entries, h.logger)
}

func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	reqs, err := h.resources.List(r.Context(), actorFrom(r, h.resolver), filter)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	if reqs == nil {
		reqs = []domain.ResourceRequest{}
	}
	respondData(w, http.StatusOK, reqs, h.logger)
}

func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.NewResourceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	created, err := h.resources.Submit(r.Context(), actorFrom(r, h.resolver), req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	respondData(w, http.StatusCreated, created, h.logger)
}

func (h *ResourceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	if err := h.resources.Decide(r.Context(), actorFrom(r, h.resolver), chi.URLParam(r, "id"), req.Status); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
