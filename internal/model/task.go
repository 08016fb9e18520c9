package model

import "time"

const (
	TaskStatusUnclaimed  = "unclaimed"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task history actions.
const (
	TaskActionCreated       = "created"
	TaskActionVolunteered   = "volunteered"
	TaskActionUnvolunteered = "unvolunteered"
	TaskActionCompleted     = "completed"
	TaskActionReassigned    = "reassigned"
)

func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Task struct {
	ID            int64      `json:"id"`
	FamilyID      int64      `json:"family_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Priority      string     `json:"priority"`
	Status        string     `json:"status"`
	CreatedBy     int64      `json:"created_by"`
	VolunteerID   *int64     `json:"volunteer_id"`
	VolunteeredAt *time.Time `json:"volunteered_at"`
	CompletedAt   *time.Time `json:"completed_at"`
	DueDate       *time.Time `json:"due_date"`
	CreatedAt     time.Time  `json:"created_at"`
	CreatorName   string     `json:"creator_name"`
	VolunteerName *string    `json:"volunteer_name"`
}

type TaskHistory struct {
	ID        int64     `json:"id"`
	TaskID    int64     `json:"task_id"`
	UserID    int64     `json:"user_id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}
