package domain

import "time"

type CalendarBooking struct {
	ID         string     `json:"id"`
	ResourceID ResourceID `json:"resource_id"`
	Title      string     `json:"title"`
	Start      time.Time  `json:"start"`
	End        time.Time  `json:"end"`
	UserID     string     `json:"user_id"`
	CreatedAt  time.Time  `json:"created_at"`
}

type NewBooking struct {
	ResourceID ResourceID `json:"resource_id" validate:"required"`
	Title      string     `json:"title" validate:"notblank"`
	Start      time.Time  `json:"start" validate:"required"`
	End        time.Time  `json:"end" validate:"required"`
}

type Collaboration struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	EventName string    `json:"event_name"`
	Message   string    `json:"message,omitempty"`
	Status    Status    `json:"status"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type NewCollaboration struct {
	EventID string `json:"event_id" validate:"required,uuid"`
	Message string `json:"message"`
}
