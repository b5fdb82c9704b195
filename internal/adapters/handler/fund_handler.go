package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
	"github.com/AchilleasB/campus-events/event-service/internal/core/services"
)

type FundHandler struct {
	funds    ports.FundAnalysisService
	resolver *services.RoleResolver
	logger   *zap.Logger
}

func NewFundHandler(funds ports.FundAnalysisService, resolver *services.RoleResolver, logger *zap.Logger) *FundHandler {
	return &FundHandler{funds: funds, resolver: resolver, logger: logger}
}

func (h *FundHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	funds, err := h.funds.List(r.Context(), actorFrom(r, h.resolver), filter)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	if funds == nil {
		funds = []domain.FundAnalysis{}
	}
	respondData(w, http.StatusOK, funds, h.logger)
}

func (h *FundHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.NewFundAnalysis
	if err := decodeJSON(w, r, &req); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	fund, err := h.funds.Create(r.Context(), actorFrom(r, h.resolver), req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	respondData(w, http.StatusCreated, fund, h.logger)
}

func (h *FundHandler) Sections(w http.ResponseWriter, r *http.Request) {
	sections, err := h.funds.Sections(r.Context(), actorFrom(r, h.resolver), chi.URLParam(r, "id"))
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	if sections == nil {
		sections = []domain.FundAnalysisSection{}
	}
	respondData(w, http.StatusOK, sections, h.logger)
}

func (h *FundHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	if err := h.funds.Decide(r.Context(), actorFrom(r, h.resolver), chi.URLParam(r, "id"), req.Status); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
