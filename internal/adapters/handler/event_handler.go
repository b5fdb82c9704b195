package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
	"github.com/AchilleasB/campus-events/event-service/internal/core/services"
)

type EventHandler struct {
	events   ports.EventRequestService
	resolver *services.RoleResolver
	logger   *zap.Logger
}

func NewEventHandler(events ports.EventRequestService, resolver *services.RoleResolver, logger *zap.Logger) *EventHandler {
	return &EventHandler{events: events, resolver: resolver, logger: logger}
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	events, err := h.events.List(r.Context(), actorFrom(r, h.resolver), filter)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	if events == nil {
		events = []domain.EventRequest{}
	}
	respondData(w, http.StatusOK, events, h.logger)
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.NewEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	event, err := h.events.Submit(r.Context(), actorFrom(r, h.resolver), req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	respondData(w, http.StatusCreated, event, h.logger)
}

func (h *EventHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	if err := h.events.Decide(r.Context(), actorFrom(r, h.resolver), chi.URLParam(r, "id"), req.Status); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EventHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.events.Cancel(r.Context(), actorFrom(r, h.resolver), chi.URLParam(r, "id")); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
