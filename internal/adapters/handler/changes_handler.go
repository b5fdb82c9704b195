package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
	"github.com/AchilleasB/campus-events/event-service/internal/core/services"
)

const defaultHeartbeat = 25 * time.Second

// ChangesHandler streams a list over server-sent events. Every change signal
// for the table triggers a full refetch as the caller, and the whole list is
// sent again as a "snapshot" event.
type ChangesHandler struct {
	feed      ports.ChangeSubscriber
	resolver  *services.RoleResolver
	events    ports.EventRequestService
	resources ports.ResourceRequestService
	funds     ports.FundAnalysisService
	reports   ports.ReportService
	bookings  ports.BookingService
	collabs   ports.CollaborationService
	heartbeat time.Duration
	logger    *zap.Logger
}

type ChangeSources struct {
	Events         ports.EventRequestService
	Resources      ports.ResourceRequestService
	Funds          ports.FundAnalysisService
	Reports        ports.ReportService
	Bookings       ports.BookingService
	Collaborations ports.CollaborationService
}

func NewChangesHandler(feed ports.ChangeSubscriber, resolver *services.RoleResolver, src ChangeSources, logger *zap.Logger) *ChangesHandler {
	return &ChangesHandler{
		feed:      feed,
		resolver:  resolver,
		events:    src.Events,
		resources: src.Resources,
		funds:     src.Funds,
		reports:   src.Reports,
		bookings:  src.Bookings,
		collabs:   src.Collaborations,
		heartbeat: defaultHeartbeat,
		logger:    logger,
	}
}

// Stream serves GET /changes?table=<table>. List filters use the same query
// parameters as the list endpoints.
func (h *ChangesHandler) Stream(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r, h.resolver)
	table := r.URL.Query().Get("table")

	filter, err := filterFromQuery(r)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	switch table {
	case ports.TableEvents:
		streamList(h, w, r, table, func(ctx context.Context) ([]domain.EventRequest, error) {
			return h.events.List(ctx, actor, filter)
		}, func(e domain.EventRequest) string { return e.ID })
	case ports.TableResourceRequests:
		streamList(h, w, r, table, func(ctx context.Context) ([]domain.ResourceRequest, error) {
			return h.resources.List(ctx, actor, filter)
		}, func(e domain.ResourceRequest) string { return e.ID })
	case ports.TableFundAnalysis:
		streamList(h, w, r, table, func(ctx context.Context) ([]domain.FundAnalysis, error) {
			return h.funds.List(ctx, actor, filter)
		}, func(e domain.FundAnalysis) string { return e.ID })
	case ports.TableReports:
		streamList(h, w, r, table, func(ctx context.Context) ([]domain.Report, error) {
			return h.reports.List(ctx, actor)
		}, func(e domain.Report) string { return e.ID })
	case ports.TableBookings:
		resource := domain.ResourceID(r.URL.Query().Get("resource"))
		day := time.Now().UTC()
		if raw := r.URL.Query().Get("date"); raw != "" {
			if day, err = time.Parse(domain.DateLayout, raw); err != nil {
				HandleServiceError(w, domain.NewValidationError(domain.KindInvalidRange, "date", "must be YYYY-MM-DD"), h.logger)
				return
			}
		}
		streamList(h, w, r, table, func(ctx context.Context) ([]domain.CalendarBooking, error) {
			return h.bookings.Availability(ctx, actor, resource, day)
		}, func(e domain.CalendarBooking) string { return e.ID })
	case ports.TableCollaborations:
		streamList(h, w, r, table, func(ctx context.Context) ([]domain.Collaboration, error) {
			return h.collabs.List(ctx, actor)
		}, func(e domain.Collaboration) string { return e.ID })
	default:
		HandleServiceError(w, domain.NewValidationError(domain.KindInvalidRange, "table", "unknown table "+table), h.logger)
	}
}

func streamList[T any](h *ChangesHandler, w http.ResponseWriter, r *http.Request, table string, fetch func(context.Context) ([]T, error), key func(T) string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "internal", "streaming unsupported", h.logger)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	list := services.NewLiveList(fetch, key)
	// the first fetch also checks permissions, so it runs before any
	// headers are written or the feed is subscribed
	if err := list.Refresh(ctx); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	errs := make(chan error, 1)
	updates := list.Watch(ctx, h.feed, table, func(err error) {
		select {
		case errs <- err:
		default:
		}
	})
	// refetch once subscribed so the first snapshot includes writes that
	// landed before the subscription
	if err := list.Refresh(ctx); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, "snapshot", nonNil(list.Items())); err != nil {
		return
	}
	flusher.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	h.logger.Debug("change stream opened", zap.String("table", table))
	defer h.logger.Debug("change stream closed", zap.String("table", table))

	for {
		var err error
		select {
		case <-ctx.Done():
			return
		case items, ok := <-updates:
			if !ok {
				return
			}
			err = writeEvent(w, "snapshot", nonNil(items))
		case fetchErr := <-errs:
			status, code := StatusFor(fetchErr)
			err = writeEvent(w, "error", ErrorResponse{Error: code, Message: PublicMessage(fetchErr)})
			h.logger.Warn("change stream refetch failed", zap.String("table", table), zap.Int("status", status), zap.Error(fetchErr))
		case <-heartbeat.C:
			_, err = fmt.Fprint(w, ": keepalive\n\n")
		}
		if err != nil {
			return
		}
		flusher.Flush()
	}
}

func writeEvent(w http.ResponseWriter, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
