package store

import (
	"testing"
	"time"

	"github.com/dukerupert/familist/internal/model"
)

func TestBackupLifecycle(t *testing.T) {
	bs := NewBackupStore(setupTestDB(t))

	b, err := bs.Create("backup-2024.db.enc", "backups/backup-2024.db.enc", nil)
	if err != nil {
		t.Fatalf("create backup: %v", err)
	}
	if b.Status != model.BackupStatusPending || b.Restorable() {
		t.Errorf("status = %q, want %q", b.Status, model.BackupStatusPending)
	}
	if b.RequestedBy != nil {
		t.Errorf("requested by = %v, want nil for a scheduled run", *b.RequestedBy)
	}

	if err := bs.UpdateStatus(b.ID, model.BackupStatusFailed, "upload failed"); err != nil {
		t.Fatalf("update status: %v", err)
	}
	got, _ := bs.GetByID(b.ID)
	if got.Status != model.BackupStatusFailed || got.ErrorMessage != "upload failed" {
		t.Errorf("got %+v, want failed with message", got)
	}

	if err := bs.UpdateCompleted(b.ID, 2048); err != nil {
		t.Fatalf("update completed: %v", err)
	}
	got, _ = bs.GetByID(b.ID)
	if !got.Restorable() || got.SizeBytes != 2048 || got.CompletedAt == nil {
		t.Errorf("got %+v, want completed with size", got)
	}
}

func TestBackupDeleteOlderThan(t *testing.T) {
	bs := NewBackupStore(setupTestDB(t))

	old, _ := bs.Create("old.db.enc", "backups/old.db.enc", nil)
	bs.db.Exec(`UPDATE backups SET created_at = ? WHERE id = ?`, time.Now().UTC().AddDate(0, 0, -60), old.ID)
	bs.Create("new.db.enc", "backups/new.db.enc", nil)

	keys, err := bs.DeleteOlderThan(time.Now().UTC().AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("delete older than: %v", err)
	}
	if len(keys) != 1 || keys[0] != "backups/old.db.enc" {
		t.Errorf("keys = %v, want [backups/old.db.enc]", keys)
	}
	list, _ := bs.List(10)
	if len(list) != 1 {
		t.Errorf("remaining = %d, want 1", len(list))
	}
}
