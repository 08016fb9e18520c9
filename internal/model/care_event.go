package model

import "time"

// CareEvent is an observation logged about a care subject, such as an
// elderly relative.
type CareEvent struct {
	ID           int64     `json:"id"`
	FamilyID     int64     `json:"family_id"`
	RecordedBy   int64     `json:"recorded_by"`
	Subject      string    `json:"subject"`
	OccurredAt   time.Time `json:"occurred_at"`
	Severity     string    `json:"severity"`
	Category     *string   `json:"category"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
	RecorderName string    `json:"recorder_name"`
}
