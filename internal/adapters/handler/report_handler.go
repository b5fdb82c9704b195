package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/AchilleasB/campus-events/event-service/internal/adapters/export"
	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
	"github.com/AchilleasB/campus-events/event-service/internal/core/services"
)

type ReportHandler struct {
	reports  ports.ReportService
	resolver *services.RoleResolver
	logger   *zap.Logger
}

func NewReportHandler(reports ports.ReportService, resolver *services.RoleResolver, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, resolver: resolver, logger: logger}
}

func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reports.List(r.Context(), actorFrom(r, h.resolver))
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	if reports == nil {
		reports = []domain.Report{}
	}
	respondData(w, http.StatusOK, reports, h.logger)
}

func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	var draft domain.ReportDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	report, err := h.reports.Create(r.Context(), actorFrom(r, h.resolver), draft)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	respondData(w, http.StatusCreated, report, h.logger)
}

func (h *ReportHandler) Update(w http.ResponseWriter, r *http.Request) {
	var draft domain.ReportDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	report, err := h.reports.Update(r.Context(), actorFrom(r, h.resolver), chi.URLParam(r, "id"), draft)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	respondData(w, http.StatusOK, report, h.logger)
}

// Export downloads the report as a paginated HTML document.
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.Get(r.Context(), actorFrom(r, h.resolver), chi.URLParam(r, "id"))
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	doc, err := export.Render(*report)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.Body); err != nil {
		h.logger.Error("failed to write export", zap.String("report_id", report.ID), zap.Error(err))
	}
}
