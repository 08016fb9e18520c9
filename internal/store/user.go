package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/familist/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var familyID sql.NullInt64
	err := scanner.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &familyID, &u.Role, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	if familyID.Valid {
		u.FamilyID = &familyID.Int64
	}
	return &u, nil
}

const userCols = `id, email, password_hash, name, family_id, role, created_at`

// NormalizeEmail lowercases and trims an address before it is stored or looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts a user without a family. Returns ErrEmailTaken when the
// address is already registered.
func (s *UserStore) Create(email, passwordHash, name, role string) (*model.User, error) {
	if role == "" {
		role = model.RoleMember
	}
	result, err := s.db.Exec(
		`INSERT INTO users (email, password_hash, name, role, created_at) VALUES (?, ?, ?, ?, ?)`,
		NormalizeEmail(email), passwordHash, name, role, time.Now().UTC(),
	)
	if isUniqueViolation(err) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

// CreateInFamily inserts a user that is already a member of familyID.
func (s *UserStore) CreateInFamily(familyID int64, email, passwordHash, name, role string) (*model.User, error) {
	result, err := s.db.Exec(
		`INSERT INTO users (email, password_hash, name, family_id, role, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		NormalizeEmail(email), passwordHash, name, familyID, role, time.Now().UTC(),
	)
	if isUniqueViolation(err) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("insert family user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByEmail(email string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE email = ?`, NormalizeEmail(email))
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// ListByFamily returns family members, oldest account first.
func (s *UserStore) ListByFamily(familyID int64) ([]model.User, error) {
	rows, err := s.db.Query(`SELECT `+userCols+` FROM users WHERE family_id = ? ORDER BY created_at ASC, id ASC`, familyID)
	if err != nil {
		return nil, fmt.Errorf("list family users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// JoinFamily attaches a family-less user to familyID with the given role.
// Returns ErrAlreadyInFamily if the user is already a member somewhere.
func (s *UserStore) JoinFamily(userID, familyID int64, role string) (*model.User, error) {
	result, err := s.db.Exec(
		`UPDATE users SET family_id = ?, role = ? WHERE id = ? AND family_id IS NULL`,
		familyID, role, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("join family: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, ErrAlreadyInFamily
	}
	return s.GetByID(userID)
}

func (s *UserStore) UpdateRole(id int64, role string) (*model.User, error) {
	_, err := s.db.Exec(`UPDATE users SET role = ? WHERE id = ?`, role, id)
	if err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) CountAdmins(familyID int64) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM users WHERE family_id = ? AND role = ?`, familyID, model.RoleAdmin,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return n, nil
}
