package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dukerupert/familist/internal/model"
)

type taskResponse struct {
	Task *model.Task `json:"task"`
}

func (c *Client) Tasks(ctx context.Context) ([]model.Task, error) {
	var out struct {
		Tasks []model.Task `json:"tasks"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/tasks", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

type NewTask struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty"`
	DueDate     string `json:"dueDate,omitempty"`
}

func (c *Client) CreateTask(ctx context.Context, t NewTask) (*model.Task, error) {
	var out taskResponse
	if err := c.do(ctx, http.MethodPost, "/api/tasks", nil, t, &out); err != nil {
		return nil, err
	}
	return out.Task, nil
}

// TaskPatch lists the fields to change. Nil fields are left alone.
// ClearDueDate removes the due date and wins over DueDate.
type TaskPatch struct {
	Title        *string
	Description  *string
	Priority     *string
	DueDate      *string
	ClearDueDate bool
}

func (p TaskPatch) body() map[string]any {
	body := make(map[string]any)
	if p.Title != nil {
		body["title"] = *p.Title
	}
	if p.Description != nil {
		body["description"] = *p.Description
	}
	if p.Priority != nil {
		body["priority"] = *p.Priority
	}
	switch {
	case p.ClearDueDate:
		body["dueDate"] = nil
	case p.DueDate != nil:
		body["dueDate"] = *p.DueDate
	}
	return body
}

func (c *Client) UpdateTask(ctx context.Context, id int64, patch TaskPatch) (*model.Task, error) {
	var out taskResponse
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/tasks/%d", id), nil, patch.body(), &out); err != nil {
		return nil, err
	}
	return out.Task, nil
}

func (c *Client) transition(ctx context.Context, id int64, action string, in any) (*model.Task, error) {
	var out taskResponse
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/tasks/%d/%s", id, action), nil, in, &out); err != nil {
		return nil, err
	}
	return out.Task, nil
}

func (c *Client) Volunteer(ctx context.Context, id int64) (*model.Task, error) {
	return c.transition(ctx, id, "volunteer", nil)
}

func (c *Client) Unvolunteer(ctx context.Context, id int64) (*model.Task, error) {
	return c.transition(ctx, id, "unvolunteer", nil)
}

func (c *Client) Complete(ctx context.Context, id int64) (*model.Task, error) {
	return c.transition(ctx, id, "complete", nil)
}

// Reassign hands the task to volunteerID, or back to the pool when nil.
func (c *Client) Reassign(ctx context.Context, id int64, volunteerID *int64) (*model.Task, error) {
	return c.transition(ctx, id, "reassign", map[string]*int64{"volunteerId": volunteerID})
}

func (c *Client) TaskHistory(ctx context.Context, id int64) ([]model.TaskHistory, error) {
	var out struct {
		History []model.TaskHistory `json:"history"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/tasks/%d/history", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return out.History, nil
}

type FairnessReport struct {
	Period  string               `json:"period"`
	Stats   []model.FairnessStat `json:"stats"`
	Members []model.User         `json:"members"`
}

// Fairness calls GET /api/reports/fairness. An empty period uses the
// server default.
func (c *Client) Fairness(ctx context.Context, period string) (*FairnessReport, error) {
	var q url.Values
	if period != "" {
		q = url.Values{"period": {period}}
	}
	var out FairnessReport
	if err := c.do(ctx, http.MethodGet, "/api/reports/fairness", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type OpenTasks struct {
	Unclaimed  []model.OpenTask `json:"unclaimed"`
	InProgress []model.OpenTask `json:"in_progress"`
}

func (c *Client) OpenTasks(ctx context.Context) (*OpenTasks, error) {
	var out OpenTasks
	if err := c.do(ctx, http.MethodGet, "/api/reports/open", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
