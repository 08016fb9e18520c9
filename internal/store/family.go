package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/familist/internal/model"
)

type FamilyStore struct {
	db *sql.DB
}

func NewFamilyStore(db *sql.DB) *FamilyStore {
	return &FamilyStore{db: db}
}

func scanFamily(scanner interface{ Scan(...any) error }) (*model.Family, error) {
	var f model.Family
	if err := scanner.Scan(&f.ID, &f.Name, &f.CreatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

const familyCols = `id, name, created_at`

// CreateWithAdmin creates a family and makes adminID its first ADMIN in one
// transaction. Returns ErrAlreadyInFamily if adminID is already a member of
// a family.
func (s *FamilyStore) CreateWithAdmin(name string, adminID int64) (*model.Family, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`INSERT INTO families (name, created_at) VALUES (?, ?)`, name, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("insert family: %w", err)
	}
	familyID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	res, err := tx.Exec(
		`UPDATE users SET family_id = ?, role = ? WHERE id = ? AND family_id IS NULL`,
		familyID, model.RoleAdmin, adminID,
	)
	if err != nil {
		return nil, fmt.Errorf("assign admin: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrAlreadyInFamily
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit family: %w", err)
	}
	return s.GetByID(familyID)
}

func (s *FamilyStore) GetByID(id int64) (*model.Family, error) {
	row := s.db.QueryRow(`SELECT `+familyCols+` FROM families WHERE id = ?`, id)
	f, err := scanFamily(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get family: %w", err)
	}
	return f, nil
}

// List returns every family, newest first.
func (s *FamilyStore) List() ([]model.Family, error) {
	rows, err := s.db.Query(`SELECT ` + familyCols + ` FROM families ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list families: %w", err)
	}
	defer rows.Close()

	var families []model.Family
	for rows.Next() {
		f, err := scanFamily(rows)
		if err != nil {
			return nil, fmt.Errorf("scan family: %w", err)
		}
		families = append(families, *f)
	}
	return families, rows.Err()
}

// ListIDsWithUnclaimedTasks returns the families that have at least one
// unclaimed task.
func (s *FamilyStore) ListIDsWithUnclaimedTasks() ([]int64, error) {
	rows, err := s.db.Query(
		`SELECT DISTINCT family_id FROM tasks WHERE status = ? ORDER BY family_id`, model.TaskStatusUnclaimed,
	)
	if err != nil {
		return nil, fmt.Errorf("list families with unclaimed tasks: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan family id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
