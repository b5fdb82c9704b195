package ports

import (
	"context"
	"time"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
)

// Tables that emit change notifications.
const (
	TableEvents           = "events"
	TableResourceRequests = "resource_requests"
	TableFundAnalysis     = "fund_analysis"
	TableReports          = "reports"
	TableBookings         = "calendar_bookings"
	TableCollaborations   = "collaborations"
)

// ChangeSubscriber delivers an opaque "table changed" signal. The returned
// function unsubscribes and must be called when the listener goes away.
type ChangeSubscriber interface {
	Subscribe(table string, fn func()) (unsubscribe func())
}

// StatusChangedEvent is written to the outbox when a reviewer decides on a
// request, and relayed to the message broker.
type StatusChangedEvent struct {
	Entity    string        `json:"entity"`
	EntityID  string        `json:"entity_id"`
	OwnerID   string        `json:"owner_id"`
	Status    domain.Status `json:"status"`
	ChangedBy string        `json:"changed_by"`
	ChangedAt time.Time     `json:"changed_at"`
}

// OutboxEventType is the event_type column value of status change rows.
const OutboxEventType = "request.status_changed"

type StatusEventPublisher interface {
	PublishStatusChanged(ctx context.Context, evt StatusChangedEvent) error
}
