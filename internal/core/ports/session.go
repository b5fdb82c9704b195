package ports

import (
	"context"
	"time"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
)

// SessionRecord is the server-side half of a browser session. It is the
// only place an override token is kept.
type SessionRecord struct {
	ID        string                `json:"id"`
	Principal domain.Principal      `json:"principal"`
	Override  *domain.OverrideToken `json:"override,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
	ExpiresAt time.Time             `json:"expires_at"`
}

type SessionStore interface {
	Save(ctx context.Context, record SessionRecord) error
	// Get returns domain.ErrNotFound for unknown or expired sessions.
	Get(ctx context.Context, id string) (*SessionRecord, error)
	Delete(ctx context.Context, id string) error
}
