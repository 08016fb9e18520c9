package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/familist/internal/model"
)

type ReportStore struct {
	db *sql.DB
}

func NewReportStore(db *sql.DB) *ReportStore {
	return &ReportStore{db: db}
}

// Fairness counts completed tasks per family member. When since is non-nil
// only completions at or after it are counted. Every member appears, members
// with no completions included, highest count first.
func (s *ReportStore) Fairness(familyID int64, since *time.Time) ([]model.FairnessStat, error) {
	join := `LEFT JOIN tasks t ON t.volunteer_id = u.id AND t.family_id = u.family_id AND t.status = ?`
	args := []any{model.TaskStatusCompleted}
	if since != nil {
		join += ` AND t.completed_at >= ?`
		args = append(args, since.UTC())
	}
	args = append(args, familyID)

	rows, err := s.db.Query(
		`SELECT u.id, u.name, COUNT(t.id) AS completed_count
		 FROM users u `+join+`
		 WHERE u.family_id = ?
		 GROUP BY u.id, u.name
		 ORDER BY completed_count DESC, u.name ASC, u.id ASC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("fairness report: %w", err)
	}
	defer rows.Close()

	var stats []model.FairnessStat
	for rows.Next() {
		var st model.FairnessStat
		if err := rows.Scan(&st.UserID, &st.UserName, &st.CompletedCount); err != nil {
			return nil, fmt.Errorf("scan fairness stat: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}
