package store

import (
	"testing"
	"time"
)

func TestCareEventListSince(t *testing.T) {
	db := setupTestDB(t)
	cs := NewCareEventStore(db)
	f, admin := seedFamily(t, db, "Cohen", "admin@example.com")

	now := time.Now().UTC()
	cat := "medication"
	recent, err := cs.Create(f.ID, admin.ID, "Grandma", now.Add(-time.Hour), "low", &cat, "took pills")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if recent.RecorderName != admin.Name {
		t.Errorf("recorder_name = %q, want %q", recent.RecorderName, admin.Name)
	}
	other, _ := cs.Create(f.ID, admin.ID, "Grandpa", now.Add(-2*time.Hour), "high", nil, "fell")
	cs.Create(f.ID, admin.ID, "Grandma", now.AddDate(0, -3, 0), "medium", nil, "old")

	events, err := cs.ListSince(f.ID, now.AddDate(0, 0, -30), "")
	if err != nil {
		t.Fatalf("list since: %v", err)
	}
	if len(events) != 2 || events[0].ID != recent.ID || events[1].ID != other.ID {
		t.Fatalf("events = %+v, want recent then other", events)
	}

	events, _ = cs.ListSince(f.ID, now.AddDate(0, 0, -30), "Grandpa")
	if len(events) != 1 || events[0].Subject != "Grandpa" {
		t.Errorf("filtered = %+v, want only Grandpa", events)
	}
}
