// Package board groups a family's tasks the way the task board shows them.
package board

import (
	"sort"

	"github.com/dukerupert/familist/internal/model"
)

// CompletedLimit is how many completed tasks the board shows.
const CompletedLimit = 10

// Groups holds disjoint task groups in input order. Anomalies collects
// in-progress tasks without a volunteer; they are in no other group.
type Groups struct {
	Unclaimed []model.Task
	Mine      []model.Task
	Others    []model.Task
	Completed []model.Task
	Anomalies []model.Task
}

// Partition splits tasks by status and, for in-progress tasks, by whether
// userID is the volunteer. Tasks with an unknown status are dropped.
func Partition(tasks []model.Task, userID int64) Groups {
	var g Groups
	for _, t := range tasks {
		switch t.Status {
		case model.TaskStatusUnclaimed:
			g.Unclaimed = append(g.Unclaimed, t)
		case model.TaskStatusInProgress:
			switch {
			case t.VolunteerID == nil:
				g.Anomalies = append(g.Anomalies, t)
			case *t.VolunteerID == userID:
				g.Mine = append(g.Mine, t)
			default:
				g.Others = append(g.Others, t)
			}
		case model.TaskStatusCompleted:
			g.Completed = append(g.Completed, t)
		}
	}
	return g
}

// Board is the display view of Groups.
type Board struct {
	Groups
	CompletedTotal int
}

// NewBoard partitions tasks and keeps only the CompletedLimit most recently
// completed tasks.
func NewBoard(tasks []model.Task, userID int64) Board {
	g := Partition(tasks, userID)
	b := Board{Groups: g, CompletedTotal: len(g.Completed)}

	completed := make([]model.Task, len(g.Completed))
	copy(completed, g.Completed)
	sort.SliceStable(completed, func(i, j int) bool {
		return completedBefore(completed[i], completed[j])
	})
	if len(completed) > CompletedLimit {
		completed = completed[:CompletedLimit]
	}
	b.Completed = completed
	return b
}

// completedBefore orders by completed_at descending, then id descending.
// Tasks missing completed_at sort last.
func completedBefore(a, b model.Task) bool {
	switch {
	case a.CompletedAt == nil && b.CompletedAt == nil:
	case a.CompletedAt == nil:
		return false
	case b.CompletedAt == nil:
		return true
	case !a.CompletedAt.Equal(*b.CompletedAt):
		return a.CompletedAt.After(*b.CompletedAt)
	}
	return a.ID > b.ID
}

// Len returns the number of tasks shown across the visible groups.
func (b Board) Len() int {
	return len(b.Unclaimed) + len(b.Mine) + len(b.Others) + len(b.Completed)
}
