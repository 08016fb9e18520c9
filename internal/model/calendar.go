package model

import "time"

const (
	CalendarItemTask  = "task"
	CalendarItemEvent = "event"
)

// CalendarTask is a task with a due date inside the requested window.
type CalendarTask struct {
	ID            int64     `json:"id"`
	Type          string    `json:"type"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	DueDate       time.Time `json:"due_date"`
	Priority      string    `json:"priority"`
	Status        string    `json:"status"`
	CreatorName   string    `json:"creator_name"`
	VolunteerName *string   `json:"volunteer_name"`
}

// CalendarEvent is a family event overlapping the requested window.
type CalendarEvent struct {
	ID          int64      `json:"id"`
	Type        string     `json:"type"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	CreatorName string     `json:"creator_name"`
}

func NewCalendarTask(t Task) CalendarTask {
	ct := CalendarTask{
		ID:            t.ID,
		Type:          CalendarItemTask,
		Title:         t.Title,
		Description:   t.Description,
		Priority:      t.Priority,
		Status:        t.Status,
		CreatorName:   t.CreatorName,
		VolunteerName: t.VolunteerName,
	}
	if t.DueDate != nil {
		ct.DueDate = *t.DueDate
	}
	return ct
}

func NewCalendarEvent(e FamilyEvent) CalendarEvent {
	return CalendarEvent{
		ID:          e.ID,
		Type:        CalendarItemEvent,
		Title:       e.Title,
		Description: e.Description,
		StartDate:   e.StartDate,
		EndDate:     e.EndDate,
		CreatorName: e.CreatorName,
	}
}
