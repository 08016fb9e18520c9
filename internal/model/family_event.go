package model

import "time"

type FamilyEvent struct {
	ID          int64      `json:"id"`
	FamilyID    int64      `json:"family_id"`
	CreatedBy   int64      `json:"created_by"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	CreatedAt   time.Time  `json:"created_at"`
	CreatorName string     `json:"created_by_name"`
}
