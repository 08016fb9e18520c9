package model

import "time"

type FairnessStat struct {
	UserID         int64  `json:"user_id"`
	UserName       string `json:"user_name"`
	CompletedCount int    `json:"completed_count"`
}

// OpenTask is the condensed task shape of the open-tasks report.
type OpenTask struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Priority      string     `json:"priority"`
	CreatorName   string     `json:"creator_name"`
	VolunteerName *string    `json:"volunteer_name"`
	DueDate       *time.Time `json:"due_date"`
	CreatedAt     time.Time  `json:"created_at"`
}

func NewOpenTask(t Task) OpenTask {
	return OpenTask{
		ID:            t.ID,
		Title:         t.Title,
		Priority:      t.Priority,
		CreatorName:   t.CreatorName,
		VolunteerName: t.VolunteerName,
		DueDate:       t.DueDate,
		CreatedAt:     t.CreatedAt,
	}
}
