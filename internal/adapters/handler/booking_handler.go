package handler

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
	"github.com/AchilleasB/campus-events/event-service/internal/core/services"
)

type BookingHandler struct {
	bookings ports.BookingService
	resolver *services.RoleResolver
	logger   *zap.Logger
}

func NewBookingHandler(bookings ports.BookingService, resolver *services.RoleResolver, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{bookings: bookings, resolver: resolver, logger: logger}
}

// Availability lists bookings of ?resource= on ?date= (YYYY-MM-DD, today
// when omitted).
func (h *BookingHandler) Availability(w http.ResponseWriter, r *http.Request) {
	resource := domain.ResourceID(r.URL.Query().Get("resource"))
	day := time.Now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse(domain.DateLayout, raw)
		if err != nil {
			HandleServiceError(w, domain.NewValidationError(domain.KindInvalidRange, "date", "must be YYYY-MM-DD"), h.logger)
			return
		}
		day = parsed
	}

	bookings, err := h.bookings.Availability(r.Context(), actorFrom(r, h.resolver), resource, day)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	if bookings == nil {
		bookings = []domain.CalendarBooking{}
	}
	respondData(w, http.StatusOK, bookings, h.logger)
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.NewBooking
	if err := decodeJSON(w, r, &req); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	booking, err := h.bookings.Book(r.Context(), actorFrom(r, h.resolver), req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	respondData(w, http.StatusCreated, booking, h.logger)
}
