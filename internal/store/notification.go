package store

import (
	"database/sql"
	"fmt"
	"time"
)

// NotificationLogStore remembers which scheduled notifications were already
// delivered, keyed by family, kind, reference and calendar day.
type NotificationLogStore struct {
	db *sql.DB
}

func NewNotificationLogStore(db *sql.DB) *NotificationLogStore {
	return &NotificationLogStore{db: db}
}

// Claim records a delivery and reports whether this call was the first for
// the key. A false result means the notification was already sent.
func (s *NotificationLogStore) Claim(familyID int64, kind, refID, day string) (bool, error) {
	result, err := s.db.Exec(
		`INSERT OR IGNORE INTO notification_log (family_id, kind, ref_id, sent_on, created_at) VALUES (?, ?, ?, ?, ?)`,
		familyID, kind, refID, day, time.Now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("record notification: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

// Cleanup deletes log rows created before the given time.
func (s *NotificationLogStore) Cleanup(before time.Time) error {
	if _, err := s.db.Exec(`DELETE FROM notification_log WHERE created_at < ?`, before.UTC()); err != nil {
		return fmt.Errorf("cleanup notification log: %w", err)
	}
	return nil
}
