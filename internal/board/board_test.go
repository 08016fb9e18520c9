package board

import (
	"testing"
	"time"

	"github.com/dukerupert/familist/internal/model"
)

func ptr[T any](v T) *T { return &v }

func task(id int64, status string, volunteer *int64) model.Task {
	return model.Task{ID: id, Status: status, VolunteerID: volunteer, Priority: model.PriorityMedium}
}

func ids(tasks []model.Task) []int64 {
	out := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPartition(t *testing.T) {
	tasks := []model.Task{
		task(1, model.TaskStatusUnclaimed, nil),
		task(2, model.TaskStatusInProgress, ptr(int64(2))),
		task(3, model.TaskStatusInProgress, ptr(int64(9))),
		task(4, model.TaskStatusCompleted, ptr(int64(2))),
		task(5, model.TaskStatusInProgress, nil),
		task(6, "archived", nil),
		task(7, model.TaskStatusUnclaimed, nil),
	}

	g := Partition(tasks, 2)

	checks := []struct {
		name string
		got  []model.Task
		want []int64
	}{
		{"unclaimed", g.Unclaimed, []int64{1, 7}},
		{"mine", g.Mine, []int64{2}},
		{"others", g.Others, []int64{3}},
		{"completed", g.Completed, []int64{4}},
		{"anomalies", g.Anomalies, []int64{5}},
	}
	for _, c := range checks {
		if got := ids(c.got); !equalIDs(got, c.want) {
			t.Errorf("%s = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestPartitionDisjointAndExhaustive(t *testing.T) {
	statuses := []string{model.TaskStatusUnclaimed, model.TaskStatusInProgress, model.TaskStatusCompleted, "bogus"}
	volunteers := []*int64{nil, ptr(int64(1)), ptr(int64(2)), ptr(int64(3))}

	var tasks []model.Task
	id := int64(1)
	for _, s := range statuses {
		for _, v := range volunteers {
			tasks = append(tasks, task(id, s, v))
			id++
		}
	}

	g := Partition(tasks, 2)
	seen := make(map[int64]int)
	for _, group := range [][]model.Task{g.Unclaimed, g.Mine, g.Others, g.Completed} {
		for _, t := range group {
			seen[t.ID]++
		}
	}

	for _, tk := range tasks {
		known := tk.Status != "bogus"
		anomaly := tk.Status == model.TaskStatusInProgress && tk.VolunteerID == nil
		want := 0
		if known && !anomaly {
			want = 1
		}
		if seen[tk.ID] != want {
			t.Errorf("task %d (%s) appears %d times, want %d", tk.ID, tk.Status, seen[tk.ID], want)
		}
	}
}

func TestVolunteerMovesTaskToMine(t *testing.T) {
	before := []model.Task{task(5, model.TaskStatusUnclaimed, nil)}
	after := []model.Task{task(5, model.TaskStatusInProgress, ptr(int64(2)))}

	if g := Partition(before, 2); len(g.Unclaimed) != 1 || len(g.Mine) != 0 {
		t.Errorf("before: %+v", g)
	}
	if g := Partition(after, 2); len(g.Unclaimed) != 0 || len(g.Mine) != 1 {
		t.Errorf("after: %+v", g)
	}
}

func TestNewBoardCapsCompleted(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	var tasks []model.Task
	for i := 1; i <= 12; i++ {
		tk := task(int64(i), model.TaskStatusCompleted, ptr(int64(2)))
		tk.CompletedAt = ptr(base.Add(time.Duration(i) * time.Hour))
		tasks = append(tasks, tk)
	}
	// Same completion time as task 12; the higher id sorts first.
	tie := task(13, model.TaskStatusCompleted, ptr(int64(2)))
	tie.CompletedAt = ptr(base.Add(12 * time.Hour))
	tasks = append(tasks, tie)
	tasks = append(tasks, task(14, model.TaskStatusCompleted, nil))

	b := NewBoard(tasks, 2)
	if b.CompletedTotal != 14 {
		t.Errorf("CompletedTotal = %d, want 14", b.CompletedTotal)
	}
	want := []int64{13, 12, 11, 10, 9, 8, 7, 6, 5, 4}
	if got := ids(b.Completed); !equalIDs(got, want) {
		t.Errorf("completed = %v, want %v", got, want)
	}
	if b.Len() != CompletedLimit {
		t.Errorf("Len = %d", b.Len())
	}
}
