package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/familist/internal/model"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var volunteerID sql.NullInt64
	var volunteeredAt, completedAt, dueDate sql.NullTime
	var volunteerName sql.NullString
	err := scanner.Scan(
		&t.ID, &t.FamilyID, &t.Title, &t.Description, &t.Priority, &t.Status, &t.CreatedBy,
		&volunteerID, &volunteeredAt, &completedAt, &dueDate, &t.CreatedAt,
		&t.CreatorName, &volunteerName,
	)
	if err != nil {
		return nil, err
	}
	if volunteerID.Valid {
		t.VolunteerID = &volunteerID.Int64
	}
	if volunteeredAt.Valid {
		t.VolunteeredAt = &volunteeredAt.Time
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}
	if dueDate.Valid {
		t.DueDate = &dueDate.Time
	}
	if volunteerName.Valid {
		t.VolunteerName = &volunteerName.String
	}
	return &t, nil
}

const taskSelect = `SELECT t.id, t.family_id, t.title, t.description, t.priority, t.status, t.created_by,
	t.volunteer_id, t.volunteered_at, t.completed_at, t.due_date, t.created_at,
	COALESCE(c.name, 'Unknown'), v.name
	FROM tasks t
	LEFT JOIN users c ON c.id = t.created_by
	LEFT JOIN users v ON v.id = t.volunteer_id`

const taskBoardOrder = ` ORDER BY CASE t.status
	WHEN 'unclaimed' THEN 1 WHEN 'in_progress' THEN 2 WHEN 'completed' THEN 3 ELSE 4 END, t.id DESC`

func (s *TaskStore) queryTasks(query string, args ...any) ([]model.Task, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func recordHistory(tx *sql.Tx, taskID, userID int64, action string, at time.Time) error {
	_, err := tx.Exec(
		`INSERT INTO task_history (task_id, user_id, action, timestamp) VALUES (?, ?, ?, ?)`,
		taskID, userID, action, at,
	)
	if err != nil {
		return fmt.Errorf("insert task history: %w", err)
	}
	return nil
}

// Create inserts an unclaimed task and records its creation in the history.
func (s *TaskStore) Create(familyID, createdBy int64, title, description, priority string, dueDate *time.Time) (*model.Task, error) {
	if priority == "" {
		priority = model.PriorityMedium
	}
	now := time.Now().UTC()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO tasks (family_id, title, description, priority, status, created_by, due_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		familyID, title, description, priority, model.TaskStatusUnclaimed, createdBy, utcPtr(dueDate), now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	if err := recordHistory(tx, id, createdBy, model.TaskActionCreated, now); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit task: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) GetByID(id int64) (*model.Task, error) {
	row := s.db.QueryRow(taskSelect+` WHERE t.id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// ListByFamily returns the family's tasks in board order: unclaimed, then in
// progress, then completed, newest first within each status.
func (s *TaskStore) ListByFamily(familyID int64) ([]model.Task, error) {
	tasks, err := s.queryTasks(taskSelect+` WHERE t.family_id = ?`+taskBoardOrder, familyID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskStore) ListByStatus(familyID int64, status string) ([]model.Task, error) {
	tasks, err := s.queryTasks(taskSelect+` WHERE t.family_id = ? AND t.status = ? ORDER BY t.id DESC`, familyID, status)
	if err != nil {
		return nil, fmt.Errorf("list tasks by status: %w", err)
	}
	return tasks, nil
}

// ListDueBetween returns the family's tasks whose due date falls in [start, end].
func (s *TaskStore) ListDueBetween(familyID int64, start, end time.Time) ([]model.Task, error) {
	tasks, err := s.queryTasks(
		taskSelect+` WHERE t.family_id = ? AND t.due_date IS NOT NULL AND t.due_date >= ? AND t.due_date <= ?
		 ORDER BY t.due_date ASC, t.id ASC`,
		familyID, start.UTC(), end.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks due between: %w", err)
	}
	return tasks, nil
}

// ListInProgressDueBetween returns in-progress tasks across all families
// whose due date falls in [start, end).
func (s *TaskStore) ListInProgressDueBetween(start, end time.Time) ([]model.Task, error) {
	tasks, err := s.queryTasks(
		taskSelect+` WHERE t.status = ? AND t.volunteer_id IS NOT NULL
		 AND t.due_date >= ? AND t.due_date < ? ORDER BY t.family_id, t.id`,
		model.TaskStatusInProgress, start.UTC(), end.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list in-progress tasks due between: %w", err)
	}
	return tasks, nil
}

// Update replaces the editable fields of a task.
func (s *TaskStore) Update(id int64, title, description, priority string, dueDate *time.Time) (*model.Task, error) {
	_, err := s.db.Exec(
		`UPDATE tasks SET title = ?, description = ?, priority = ?, due_date = ? WHERE id = ?`,
		title, description, priority, utcPtr(dueDate), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return s.GetByID(id)
}

// Volunteer claims an unclaimed task for userID. The claim is a single
// conditional update, so of two concurrent volunteers exactly one wins and
// the other gets ErrTaskUnavailable.
func (s *TaskStore) Volunteer(id, userID int64) (*model.Task, error) {
	now := time.Now().UTC()
	err := s.transition(id, userID, model.TaskActionVolunteered, now, ErrTaskUnavailable,
		`UPDATE tasks SET status = ?, volunteer_id = ?, volunteered_at = ?
		 WHERE id = ? AND status = ? AND volunteer_id IS NULL`,
		model.TaskStatusInProgress, userID, now, id, model.TaskStatusUnclaimed,
	)
	if err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// Unvolunteer releases a task claimed by userID back to unclaimed.
func (s *TaskStore) Unvolunteer(id, userID int64) (*model.Task, error) {
	now := time.Now().UTC()
	err := s.transition(id, userID, model.TaskActionUnvolunteered, now, ErrNotVolunteer,
		`UPDATE tasks SET status = ?, volunteer_id = NULL, volunteered_at = NULL
		 WHERE id = ? AND volunteer_id = ? AND status = ?`,
		model.TaskStatusUnclaimed, id, userID, model.TaskStatusInProgress,
	)
	if err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// Complete marks a task claimed by userID as completed.
func (s *TaskStore) Complete(id, userID int64) (*model.Task, error) {
	now := time.Now().UTC()
	err := s.transition(id, userID, model.TaskActionCompleted, now, ErrNotVolunteer,
		`UPDATE tasks SET status = ?, completed_at = ?
		 WHERE id = ? AND volunteer_id = ? AND status = ?`,
		model.TaskStatusCompleted, now, id, userID, model.TaskStatusInProgress,
	)
	if err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// Reassign hands the task to volunteerID, or returns it to unclaimed when
// volunteerID is nil. Completed tasks are reopened.
func (s *TaskStore) Reassign(id, actorID int64, volunteerID *int64) (*model.Task, error) {
	now := time.Now().UTC()
	var err error
	if volunteerID == nil {
		err = s.transition(id, actorID, model.TaskActionReassigned, now, nil,
			`UPDATE tasks SET status = ?, volunteer_id = NULL, volunteered_at = NULL, completed_at = NULL WHERE id = ?`,
			model.TaskStatusUnclaimed, id,
		)
	} else {
		err = s.transition(id, actorID, model.TaskActionReassigned, now, nil,
			`UPDATE tasks SET status = ?, volunteer_id = ?, volunteered_at = ?, completed_at = NULL WHERE id = ?`,
			model.TaskStatusInProgress, *volunteerID, now, id,
		)
	}
	if err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// transition runs a status update and its history row in one transaction.
// When the update matches no rows, noMatch is returned (if non-nil).
func (s *TaskStore) transition(id, userID int64, action string, at time.Time, noMatch error, query string, args ...any) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("%s task: %w", action, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 && noMatch != nil {
		return noMatch
	}
	if err := recordHistory(tx, id, userID, action, at); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *TaskStore) ListHistory(taskID int64) ([]model.TaskHistory, error) {
	rows, err := s.db.Query(
		`SELECT id, task_id, user_id, action, timestamp FROM task_history WHERE task_id = ? ORDER BY id ASC`, taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("list task history: %w", err)
	}
	defer rows.Close()

	var history []model.TaskHistory
	for rows.Next() {
		var h model.TaskHistory
		if err := rows.Scan(&h.ID, &h.TaskID, &h.UserID, &h.Action, &h.Timestamp); err != nil {
			return nil, fmt.Errorf("scan task history: %w", err)
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

func utcPtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
