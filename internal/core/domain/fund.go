package domain

import (
	"math"
	"time"
)

// Amounts are stored in minor currency units so that the header total is an
// exact sum of its sections.
type FundAnalysis struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	EventID     string    `json:"event_id"`
	Title       string    `json:"title"`
	TotalAmount int64     `json:"total_amount"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type FundAnalysisSection struct {
	ID             string    `json:"id"`
	FundAnalysisID string    `json:"fund_analysis_id"`
	SectionName    string    `json:"section_name"`
	Amount         int64     `json:"amount"`
	Position       int       `json:"position"`
	CreatedAt      time.Time `json:"created_at"`
}

type NewFundSection struct {
	SectionName string `json:"section_name" validate:"notblank"`
	Amount      int64  `json:"amount" validate:"gte=0"`
}

type NewFundAnalysis struct {
	EventID  string           `json:"event_id" validate:"required,uuid"`
	Title    string           `json:"title" validate:"notblank"`
	Sections []NewFundSection `json:"sections" validate:"required,min=1,dive"`
}

// Total is the derived header amount. ok is false when the sections do not
// sum within int64.
func (n NewFundAnalysis) Total() (total int64, ok bool) {
	for _, s := range n.Sections {
		if s.Amount < 0 || s.Amount > math.MaxInt64-total {
			return 0, false
		}
		total += s.Amount
	}
	return total, true
}
