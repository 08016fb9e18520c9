package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/familist/internal/model"
)

type FamilyEventStore struct {
	db *sql.DB
}

func NewFamilyEventStore(db *sql.DB) *FamilyEventStore {
	return &FamilyEventStore{db: db}
}

func scanFamilyEvent(scanner interface{ Scan(...any) error }) (*model.FamilyEvent, error) {
	var e model.FamilyEvent
	var description sql.NullString
	var endDate sql.NullTime
	err := scanner.Scan(&e.ID, &e.FamilyID, &e.CreatedBy, &e.Title, &description, &e.StartDate, &endDate,
		&e.CreatedAt, &e.CreatorName)
	if err != nil {
		return nil, err
	}
	if description.Valid {
		e.Description = &description.String
	}
	if endDate.Valid {
		e.EndDate = &endDate.Time
	}
	return &e, nil
}

const familyEventSelect = `SELECT e.id, e.family_id, e.created_by, e.title, e.description, e.start_date, e.end_date,
	e.created_at, COALESCE(u.name, 'Unknown')
	FROM family_events e LEFT JOIN users u ON u.id = e.created_by`

func (s *FamilyEventStore) Create(familyID, createdBy int64, title string, description *string, start time.Time, end *time.Time) (*model.FamilyEvent, error) {
	result, err := s.db.Exec(
		`INSERT INTO family_events (family_id, created_by, title, description, start_date, end_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		familyID, createdBy, title, description, start.UTC(), utcPtr(end), time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert family event: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *FamilyEventStore) GetByID(id int64) (*model.FamilyEvent, error) {
	row := s.db.QueryRow(familyEventSelect+` WHERE e.id = ?`, id)
	e, err := scanFamilyEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get family event: %w", err)
	}
	return e, nil
}

func (s *FamilyEventStore) Update(id int64, title string, description *string, start time.Time, end *time.Time) (*model.FamilyEvent, error) {
	_, err := s.db.Exec(
		`UPDATE family_events SET title = ?, description = ?, start_date = ?, end_date = ? WHERE id = ?`,
		title, description, start.UTC(), utcPtr(end), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update family event: %w", err)
	}
	return s.GetByID(id)
}

func (s *FamilyEventStore) Delete(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM family_events WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete family event: %w", err)
	}
	return nil
}

func (s *FamilyEventStore) ListByFamily(familyID int64) ([]model.FamilyEvent, error) {
	return s.list(familyEventSelect+` WHERE e.family_id = ? ORDER BY e.start_date ASC, e.id ASC`, familyID)
}

// ListOverlapping returns events that start on or before end and have not
// finished before start. An event without an end date lasts a single day.
func (s *FamilyEventStore) ListOverlapping(familyID int64, start, end time.Time) ([]model.FamilyEvent, error) {
	return s.list(
		familyEventSelect+` WHERE e.family_id = ? AND e.start_date <= ? AND COALESCE(e.end_date, e.start_date) >= ?
		 ORDER BY e.start_date ASC, e.id ASC`,
		familyID, end.UTC(), start.UTC(),
	)
}

func (s *FamilyEventStore) list(query string, args ...any) ([]model.FamilyEvent, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list family events: %w", err)
	}
	defer rows.Close()

	var events []model.FamilyEvent
	for rows.Next() {
		e, err := scanFamilyEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan family event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}
