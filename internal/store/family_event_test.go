package store

import (
	"testing"
	"time"
)

func TestFamilyEventCRUD(t *testing.T) {
	db := setupTestDB(t)
	es := NewFamilyEventStore(db)
	f, admin := seedFamily(t, db, "Cohen", "admin@example.com")

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	e, err := es.Create(f.ID, admin.ID, "Seder", nil, start, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if e.EndDate != nil {
		t.Errorf("end_date = %v, want nil", e.EndDate)
	}
	if !e.StartDate.Equal(start) {
		t.Errorf("start_date = %v, want %v", e.StartDate, start)
	}

	end := start.AddDate(0, 0, 2)
	desc := "bring wine"
	e, err = es.Update(e.ID, "Seder week", &desc, start, &end)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if e.EndDate == nil || !e.EndDate.Equal(end) || e.Description == nil || *e.Description != desc {
		t.Errorf("update not applied: %+v", e)
	}

	if err := es.Delete(e.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, _ := es.GetByID(e.ID)
	if got != nil {
		t.Errorf("expected event to be gone")
	}
}

func TestFamilyEventOverlap(t *testing.T) {
	db := setupTestDB(t)
	es := NewFamilyEventStore(db)
	f, admin := seedFamily(t, db, "Cohen", "admin@example.com")

	day := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }
	end5 := day(5)
	spanning, _ := es.Create(f.ID, admin.ID, "trip", nil, day(1), &end5)
	single, _ := es.Create(f.ID, admin.ID, "dentist", nil, day(10), nil)
	es.Create(f.ID, admin.ID, "earlier", nil, day(2), nil)

	events, err := es.ListOverlapping(f.ID, day(4), day(12))
	if err != nil {
		t.Fatalf("list overlapping: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(events), events)
	}
	if events[0].ID != spanning.ID || events[1].ID != single.ID {
		t.Errorf("got [%d %d], want [%d %d]", events[0].ID, events[1].ID, spanning.ID, single.ID)
	}
}
