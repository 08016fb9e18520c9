package calendar

import (
	"testing"
	"time"

	"github.com/dukerupert/familist/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMonthRange(t *testing.T) {
	tests := []struct {
		ref        time.Time
		start, end string
	}{
		{date(2024, 3, 15), "2024-02-25", "2024-04-06"},
		{date(2024, 9, 1), "2024-09-01", "2024-10-05"}, // the 1st is a Sunday
		{date(2023, 9, 30), "2023-08-27", "2023-09-30"}, // the last day is a Saturday
		{date(2024, 2, 29), "2024-01-28", "2024-03-02"},
	}
	for _, tt := range tests {
		start, end := Range(tt.ref, Month)
		s, e := QueryBounds(start, end)
		if s != tt.start || e != tt.end {
			t.Errorf("Range(%s) = %s..%s, want %s..%s", tt.ref.Format(time.DateOnly), s, e, tt.start, tt.end)
		}
		if end.Hour() != 23 || end.Minute() != 59 || end.Nanosecond() != 999999999 {
			t.Errorf("end = %v, want end of day", end)
		}
	}
}

func TestMonthRangeProperties(t *testing.T) {
	for d := date(2023, 1, 1); d.Before(date(2025, 1, 1)); d = d.AddDate(0, 0, 3) {
		start, end := Range(d, Month)
		if start.Weekday() != time.Sunday || end.Weekday() != time.Saturday {
			t.Fatalf("%s: weekdays %v..%v", d.Format(time.DateOnly), start.Weekday(), end.Weekday())
		}
		first := date(d.Year(), d.Month(), 1)
		if first.Before(start) || first.After(end) || d.After(end) {
			t.Fatalf("%s: %v..%v does not contain the month start", d.Format(time.DateOnly), start, end)
		}
	}
}

func TestWeekRange(t *testing.T) {
	tests := []struct {
		ref        time.Time
		start, end string
	}{
		{date(2024, 3, 13), "2024-03-11", "2024-03-17"}, // Wednesday
		{date(2024, 3, 11), "2024-03-11", "2024-03-17"}, // Monday
		{date(2024, 3, 17), "2024-03-11", "2024-03-17"}, // Sunday belongs to the week before
		{date(2024, 12, 31), "2024-12-30", "2025-01-05"},
	}
	for _, tt := range tests {
		s, e := QueryBounds(Range(tt.ref, Week))
		if s != tt.start || e != tt.end {
			t.Errorf("Range(%s, week) = %s..%s, want %s..%s", tt.ref.Format(time.DateOnly), s, e, tt.start, tt.end)
		}
	}
}

func TestShift(t *testing.T) {
	if got := Shift(date(2024, 1, 31), Month, 1); !got.Equal(date(2024, 2, 1)) {
		t.Errorf("month shift = %v", got)
	}
	if got := Shift(date(2024, 1, 15), Month, -2); !got.Equal(date(2023, 11, 1)) {
		t.Errorf("month shift back = %v", got)
	}
	if got := Shift(date(2024, 3, 13), Week, -1); !got.Equal(date(2024, 3, 6)) {
		t.Errorf("week shift = %v", got)
	}
}

func TestDays(t *testing.T) {
	days := Days(Range(date(2024, 3, 13), Week))
	if len(days) != 7 || !days[0].Equal(date(2024, 3, 11)) || !days[6].Equal(date(2024, 3, 17)) {
		t.Errorf("days = %v", days)
	}
	if n := len(Days(Range(date(2024, 3, 15), Month))); n != 42 {
		t.Errorf("March 2024 grid = %d days, want 42", n)
	}
}

func TestMerge(t *testing.T) {
	tasks := []model.CalendarTask{
		{ID: 1, Title: "late task", DueDate: date(2024, 3, 20)},
		{ID: 2, Title: "tie task", DueDate: date(2024, 3, 10)},
	}
	events := []model.CalendarEvent{
		{ID: 3, Title: "tie event", StartDate: date(2024, 3, 10)},
		{ID: 4, Title: "early event", StartDate: date(2024, 3, 1)},
	}

	items := Merge(tasks, events)
	want := []string{"early event", "tie task", "tie event", "late task"}
	if len(items) != len(want) {
		t.Fatalf("items = %d", len(items))
	}
	for i, w := range want {
		if items[i].Title() != w {
			t.Errorf("items[%d] = %q, want %q", i, items[i].Title(), w)
		}
	}
}

func TestOccurs(t *testing.T) {
	end := date(2024, 3, 3)
	items := Merge(
		[]model.CalendarTask{{Title: "due", DueDate: time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC)}},
		[]model.CalendarEvent{
			{Title: "span", StartDate: date(2024, 3, 1), EndDate: &end},
			{Title: "single", StartDate: date(2024, 3, 1)},
		},
	)

	counts := map[string]int{}
	for _, day := range Days(date(2024, 2, 28), date(2024, 3, 5)) {
		for _, it := range OnDay(items, day) {
			counts[it.Title()]++
		}
	}
	if counts["due"] != 1 || counts["span"] != 3 || counts["single"] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestOccursWestOfUTC(t *testing.T) {
	ny := time.FixedZone("EST", -5*60*60)
	items := Merge(
		[]model.CalendarTask{{Title: "due", DueDate: date(2024, 3, 5)}},
		[]model.CalendarEvent{{Title: "party", StartDate: date(2024, 3, 1)}},
	)

	start, end := Range(time.Date(2024, 3, 10, 12, 0, 0, 0, ny), Month)
	shown := map[string]string{}
	for _, day := range Days(start, end) {
		for _, it := range OnDay(items, day) {
			if prev, ok := shown[it.Title()]; ok {
				t.Errorf("%s shown on %s and %s", it.Title(), prev, day.Format(time.DateOnly))
			}
			shown[it.Title()] = day.Format(time.DateOnly)
		}
	}
	if shown["due"] != "2024-03-05" {
		t.Errorf("task due 2024-03-05 shown on %q", shown["due"])
	}
	if shown["party"] != "2024-03-01" {
		t.Errorf("event on 2024-03-01 shown on %q", shown["party"])
	}
	if got := FormatEventDates(items[0].Event.StartDate, nil); got != "Mar 1, 2024" {
		t.Errorf("label = %q, want the grid day", got)
	}
}

func TestFormatEventDates(t *testing.T) {
	if got := FormatEventDates(date(2024, 3, 1), nil); got != "Mar 1, 2024" {
		t.Errorf("single = %q", got)
	}
	end := time.Date(2024, 3, 2, 18, 30, 0, 0, time.UTC)
	if got := FormatEventDates(date(2024, 3, 1), &end); got != "Mar 1, 2024 – Mar 2, 2024 18:30" {
		t.Errorf("range = %q", got)
	}
}

func TestParseView(t *testing.T) {
	if v, err := ParseView("week"); err != nil || v != Week {
		t.Errorf("week: %v %v", v, err)
	}
	if _, err := ParseView("year"); err == nil {
		t.Error("year should be rejected")
	}
}
