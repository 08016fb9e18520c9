package store

import (
	"errors"
	"testing"

	"github.com/dukerupert/familist/internal/model"
)

func TestFamilyCreateWithAdmin(t *testing.T) {
	db := setupTestDB(t)
	f, admin := seedFamily(t, db, "Cohen", "admin@example.com")

	if f.Name != "Cohen" {
		t.Errorf("name = %q, want %q", f.Name, "Cohen")
	}
	if admin.Role != model.RoleAdmin {
		t.Errorf("role = %q, want %q", admin.Role, model.RoleAdmin)
	}
	if admin.FamilyID == nil || *admin.FamilyID != f.ID {
		t.Errorf("family_id = %v, want %d", admin.FamilyID, f.ID)
	}
}

func TestFamilyCreateWhenAlreadyMember(t *testing.T) {
	db := setupTestDB(t)
	fs := NewFamilyStore(db)
	_, admin := seedFamily(t, db, "Cohen", "admin@example.com")

	if _, err := fs.CreateWithAdmin("Second", admin.ID); !errors.Is(err, ErrAlreadyInFamily) {
		t.Fatalf("err = %v, want ErrAlreadyInFamily", err)
	}

	families, err := fs.List()
	if err != nil {
		t.Fatalf("list families: %v", err)
	}
	if len(families) != 1 {
		t.Errorf("families = %d, want 1 (failed create must roll back)", len(families))
	}
}

func TestFamilyListNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	fs := NewFamilyStore(db)
	first, _ := seedFamily(t, db, "First", "a@example.com")
	second, _ := seedFamily(t, db, "Second", "b@example.com")

	families, err := fs.List()
	if err != nil {
		t.Fatalf("list families: %v", err)
	}
	if len(families) != 2 {
		t.Fatalf("len = %d, want 2", len(families))
	}
	if families[0].ID != second.ID || families[1].ID != first.ID {
		t.Errorf("order = [%d %d], want [%d %d]", families[0].ID, families[1].ID, second.ID, first.ID)
	}
}

func TestFamilyGetByIDNotFound(t *testing.T) {
	fs := NewFamilyStore(setupTestDB(t))
	f, err := fs.GetByID(99)
	if err != nil {
		t.Fatalf("get family: %v", err)
	}
	if f != nil {
		t.Errorf("expected nil, got %+v", f)
	}
}
