package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/familist/internal/model"
)

type CareEventStore struct {
	db *sql.DB
}

func NewCareEventStore(db *sql.DB) *CareEventStore {
	return &CareEventStore{db: db}
}

func scanCareEvent(scanner interface{ Scan(...any) error }) (*model.CareEvent, error) {
	var e model.CareEvent
	var category sql.NullString
	err := scanner.Scan(&e.ID, &e.FamilyID, &e.RecordedBy, &e.Subject, &e.OccurredAt, &e.Severity,
		&category, &e.Description, &e.CreatedAt, &e.RecorderName)
	if err != nil {
		return nil, err
	}
	if category.Valid {
		e.Category = &category.String
	}
	return &e, nil
}

const careEventSelect = `SELECT e.id, e.family_id, e.recorded_by, e.subject, e.occurred_at, e.severity,
	e.category, e.description, e.created_at, COALESCE(u.name, 'Unknown')
	FROM care_events e LEFT JOIN users u ON u.id = e.recorded_by`

func (s *CareEventStore) Create(familyID, recordedBy int64, subject string, occurredAt time.Time, severity string, category *string, description string) (*model.CareEvent, error) {
	result, err := s.db.Exec(
		`INSERT INTO care_events (family_id, recorded_by, subject, occurred_at, severity, category, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		familyID, recordedBy, subject, occurredAt.UTC(), severity, category, description, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert care event: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *CareEventStore) GetByID(id int64) (*model.CareEvent, error) {
	row := s.db.QueryRow(careEventSelect+` WHERE e.id = ?`, id)
	e, err := scanCareEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get care event: %w", err)
	}
	return e, nil
}

// ListSince returns the family's care events that occurred at or after
// since, newest first. An empty subject matches every subject.
func (s *CareEventStore) ListSince(familyID int64, since time.Time, subject string) ([]model.CareEvent, error) {
	query := careEventSelect + ` WHERE e.family_id = ? AND e.occurred_at >= ?`
	args := []any{familyID, since.UTC()}
	if subject != "" {
		query += ` AND e.subject = ?`
		args = append(args, subject)
	}
	query += ` ORDER BY e.occurred_at DESC, e.id DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list care events: %w", err)
	}
	defer rows.Close()

	var events []model.CareEvent
	for rows.Next() {
		e, err := scanCareEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan care event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}
