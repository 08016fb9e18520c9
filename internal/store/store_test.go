package store

import (
	"database/sql"
	"testing"

	"github.com/dukerupert/familist/internal/database"
	"github.com/dukerupert/familist/internal/model"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// seedFamily creates a family whose first member (returned) is its admin.
func seedFamily(t *testing.T, db *sql.DB, name, adminEmail string) (*model.Family, *model.User) {
	t.Helper()
	us := NewUserStore(db)
	fs := NewFamilyStore(db)

	admin, err := us.Create(adminEmail, "hash", "Admin "+name, model.RoleMember)
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	f, err := fs.CreateWithAdmin(name, admin.ID)
	if err != nil {
		t.Fatalf("create family: %v", err)
	}
	admin, _ = us.GetByID(admin.ID)
	return f, admin
}

func seedMember(t *testing.T, db *sql.DB, familyID int64, email, name string) *model.User {
	t.Helper()
	u, err := NewUserStore(db).CreateInFamily(familyID, email, "hash", name, model.RoleMember)
	if err != nil {
		t.Fatalf("create member %s: %v", email, err)
	}
	return u
}
