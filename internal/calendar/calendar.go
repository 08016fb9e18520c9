// Package calendar derives the date windows of the month and week views and
// merges calendar tasks and events into one timeline.
package calendar

import (
	"fmt"
	"sort"
	"time"

	"github.com/dukerupert/familist/internal/model"
)

type View string

const (
	Month View = "month"
	Week  View = "week"
)

func ParseView(s string) (View, error) {
	switch View(s) {
	case Month, Week:
		return View(s), nil
	}
	return "", fmt.Errorf("unknown calendar view %q (want month or week)", s)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 999999999, t.Location())
}

// Range returns the inclusive window shown for ref. The month view runs
// from the Sunday on or before the 1st to the Saturday on or after the
// last day. The week view runs Monday to Sunday.
func Range(ref time.Time, view View) (start, end time.Time) {
	if view == Week {
		day := startOfDay(ref)
		offset := (int(day.Weekday()) + 6) % 7 // days since Monday
		start = day.AddDate(0, 0, -offset)
		return start, endOfDay(start.AddDate(0, 0, 6))
	}

	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	last := first.AddDate(0, 1, -1)
	start = first.AddDate(0, 0, -int(first.Weekday()))
	end = endOfDay(last.AddDate(0, 0, int(time.Saturday-last.Weekday())))
	return start, end
}

// QueryBounds formats a window as the start_date and end_date parameters of
// GET /api/calendar.
func QueryBounds(start, end time.Time) (string, string) {
	return start.Format(time.DateOnly), end.Format(time.DateOnly)
}

// Shift moves ref by n months or weeks. Month shifts land on the 1st so
// that Jan 31 + 1 month is in February.
func Shift(ref time.Time, view View, n int) time.Time {
	if view == Week {
		return ref.AddDate(0, 0, 7*n)
	}
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	return first.AddDate(0, n, 0)
}

// Days lists midnight of every day from start through end.
func Days(start, end time.Time) []time.Time {
	var days []time.Time
	for d := startOfDay(start); !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Item is one entry of the merged timeline. Exactly one of Task and Event
// is set.
type Item struct {
	Date  time.Time
	Task  *model.CalendarTask
	Event *model.CalendarEvent
}

func (it Item) Title() string {
	if it.Task != nil {
		return it.Task.Title
	}
	return it.Event.Title
}

// Occurs reports whether the item shows on day. Dates are compared by
// calendar date, each in its own location: the API sends wall-clock dates
// as UTC, so a task due 2024-03-05T00:00Z is on Mar 5 whatever the local
// zone. Events without an end date cover their start day only.
func (it Item) Occurs(day time.Time) bool {
	d := civil(day)
	if it.Task != nil {
		return civil(it.Date).Equal(d)
	}
	last := it.Date
	if it.Event.EndDate != nil {
		last = *it.Event.EndDate
	}
	return !civil(it.Date).After(d) && !civil(last).Before(d)
}

// civil maps t's calendar date onto UTC midnight.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Merge orders tasks by due date and events by start date in one sequence.
// Ties keep tasks before events and otherwise the input order.
func Merge(tasks []model.CalendarTask, events []model.CalendarEvent) []Item {
	items := make([]Item, 0, len(tasks)+len(events))
	for i := range tasks {
		items = append(items, Item{Date: tasks[i].DueDate, Task: &tasks[i]})
	}
	for i := range events {
		items = append(items, Item{Date: events[i].StartDate, Event: &events[i]})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date.Before(items[j].Date)
	})
	return items
}

// OnDay filters items to those that occur on day.
func OnDay(items []Item, day time.Time) []Item {
	var out []Item
	for _, it := range items {
		if it.Occurs(day) {
			out = append(out, it)
		}
	}
	return out
}

// FormatEventDates renders an event's dates: the start alone when there is
// no end date, "start – end" otherwise. Times are shown only when they are
// not midnight.
func FormatEventDates(start time.Time, end *time.Time) string {
	if end == nil {
		return formatDate(start)
	}
	return formatDate(start) + " – " + formatDate(*end)
}

func formatDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 {
		return t.Format("Jan 2, 2006")
	}
	return t.Format("Jan 2, 2006 15:04")
}
