package domain

import "time"

// Status is shared by every reviewable request.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// IsDecision reports whether s can be set by a reviewer.
func (s Status) IsDecision() bool {
	return s == StatusApproved || s == StatusRejected
}

// EventRequest is never deleted. Cancelling moves it to rejected.
type EventRequest struct {
	ID          string    `json:"id"`
	Association string    `json:"association"`
	EventName   string    `json:"event_name"`
	Date        time.Time `json:"date"`
	Description string    `json:"description,omitempty"`
	Status      Status    `json:"status"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type NewEventRequest struct {
	Association string `json:"association" validate:"notblank"`
	EventName   string `json:"event_name" validate:"notblank"`
	Date        string `json:"date" validate:"required"`
	Description string `json:"description"`
}

// ResourceID identifies a bookable campus resource.
type ResourceID string

const (
	ResourceMBASeminarHall  ResourceID = "mba-seminar-hall"
	ResourceMainSeminarHall ResourceID = "main-seminar-hall"
	ResourceCCFLab          ResourceID = "ccf-lab"
	ResourceAuditorium      ResourceID = "auditorium"
	ResourcePESField        ResourceID = "pes-field"
)

// Resources is the fixed catalog in display order.
var Resources = []ResourceID{
	ResourceMBASeminarHall,
	ResourceMainSeminarHall,
	ResourceCCFLab,
	ResourceAuditorium,
	ResourcePESField,
}

var resourceLabels = map[ResourceID]string{
	ResourceMBASeminarHall:  "MBA Seminar Hall",
	ResourceMainSeminarHall: "Main Seminar Hall",
	ResourceCCFLab:          "CCF Lab",
	ResourceAuditorium:      "Auditorium",
	ResourcePESField:        "PES Field",
}

func (r ResourceID) Valid() bool {
	_, ok := resourceLabels[r]
	return ok
}

func (r ResourceID) Label() string {
	if l, ok := resourceLabels[r]; ok {
		return l
	}
	return string(r)
}

type ResourceRequest struct {
	ID        string       `json:"id"`
	EventName string       `json:"event_name"`
	Date      time.Time    `json:"date"`
	Resources []ResourceID `json:"resources"`
	Status    Status       `json:"status"`
	UserID    string       `json:"user_id"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

type NewResourceRequest struct {
	EventName string       `json:"event_name" validate:"notblank"`
	Date      string       `json:"date" validate:"required"`
	Resources []ResourceID `json:"resources"`
}

// DateLayout is the calendar date format accepted from forms and the API.
const DateLayout = "2006-01-02"
