package store

import (
	"testing"
	"time"
)

func TestNotificationClaimOnce(t *testing.T) {
	db := setupTestDB(t)
	ns := NewNotificationLogStore(db)
	f, _ := seedFamily(t, db, "Cohen", "admin@example.com")

	first, err := ns.Claim(f.ID, "due_tomorrow", "task-1", "2024-03-01")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if !first {
		t.Fatal("first claim should succeed")
	}
	again, _ := ns.Claim(f.ID, "due_tomorrow", "task-1", "2024-03-01")
	if again {
		t.Error("second claim for the same day should be rejected")
	}
	nextDay, _ := ns.Claim(f.ID, "due_tomorrow", "task-1", "2024-03-02")
	if !nextDay {
		t.Error("claim for a different day should succeed")
	}

	if err := ns.Cleanup(time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	afterCleanup, _ := ns.Claim(f.ID, "due_tomorrow", "task-1", "2024-03-01")
	if !afterCleanup {
		t.Error("claim after cleanup should succeed")
	}
}
