package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
	"github.com/AchilleasB/campus-events/event-service/internal/core/services"
)

type CollaborationHandler struct {
	collabs  ports.CollaborationService
	resolver *services.RoleResolver
	logger   *zap.Logger
}

func NewCollaborationHandler(collabs ports.CollaborationService, resolver *services.RoleResolver, logger *zap.Logger) *CollaborationHandler {
	return &CollaborationHandler{collabs: collabs, resolver: resolver, logger: logger}
}

func (h *CollaborationHandler) List(w http.ResponseWriter, r *http.Request) {
	collabs, err := h.collabs.List(r.Context(), actorFrom(r, h.resolver))
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	if collabs == nil {
		collabs = []domain.Collaboration{}
	}
	respondData(w, http.StatusOK, collabs, h.logger)
}

func (h *CollaborationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.NewCollaboration
	if err := decodeJSON(w, r, &req); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	collab, err := h.collabs.Request(r.Context(), actorFrom(r, h.resolver), req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	respondData(w, http.StatusCreated, collab, h.logger)
}
