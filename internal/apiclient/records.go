package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dukerupert/familist/internal/model"
)

// CareEvents lists care records from the last months (server default when
// zero), optionally for one subject.
func (c *Client) CareEvents(ctx context.Context, months int, subject string) ([]model.CareEvent, error) {
	q := url.Values{}
	if months > 0 {
		q.Set("months", strconv.Itoa(months))
	}
	if subject != "" {
		q.Set("subject", subject)
	}
	var out struct {
		Events []model.CareEvent `json:"events"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/events", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Events, nil
}

type NewCareEvent struct {
	Subject     string  `json:"subject"`
	OccurredAt  string  `json:"occurred_at"`
	Severity    string  `json:"severity"`
	Category    *string `json:"category,omitempty"`
	Description string  `json:"description"`
}

func (c *Client) CreateCareEvent(ctx context.Context, e NewCareEvent) (*model.CareEvent, error) {
	var out model.CareEvent
	if err := c.do(ctx, http.MethodPost, "/api/events", nil, e, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) FamilyEvents(ctx context.Context) ([]model.FamilyEvent, error) {
	var out struct {
		Events []model.FamilyEvent `json:"events"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/family-events", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Events, nil
}

// FamilyEventInput is the body of family event create and update. Dates
// are YYYY-MM-DD or YYYY-MM-DDTHH:MM.
type FamilyEventInput struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	StartDate   string  `json:"start_date"`
	EndDate     *string `json:"end_date,omitempty"`
}

func (c *Client) CreateFamilyEvent(ctx context.Context, in FamilyEventInput) (*model.FamilyEvent, error) {
	var out model.FamilyEvent
	if err := c.do(ctx, http.MethodPost, "/api/family-events", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateFamilyEvent(ctx context.Context, id int64, in FamilyEventInput) (*model.FamilyEvent, error) {
	var out model.FamilyEvent
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/family-events/%d", id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteFamilyEvent(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/family-events/%d", id), nil, nil, nil)
}

type CalendarItems struct {
	Tasks  []model.CalendarTask  `json:"tasks"`
	Events []model.CalendarEvent `json:"events"`
}

// Calendar calls GET /api/calendar with YYYY-MM-DD bounds.
func (c *Client) Calendar(ctx context.Context, startDate, endDate string) (*CalendarItems, error) {
	q := url.Values{"start_date": {startDate}, "end_date": {endDate}}
	var out CalendarItems
	if err := c.do(ctx, http.MethodGet, "/api/calendar", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Threads(ctx context.Context) ([]model.ChatThread, error) {
	var out struct {
		Threads []model.ChatThread `json:"threads"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/chat/threads", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Threads, nil
}

func (c *Client) CreateThread(ctx context.Context, title string) (*model.ChatThread, error) {
	var out model.ChatThread
	if err := c.do(ctx, http.MethodPost, "/api/chat/threads", nil, map[string]string{"title": title}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type ThreadDetail struct {
	Thread   model.ChatThread    `json:"thread"`
	Messages []model.ChatMessage `json:"messages"`
}

func (c *Client) Thread(ctx context.Context, id int64) (*ThreadDetail, error) {
	var out ThreadDetail
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/chat/threads/%d", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SendMessage(ctx context.Context, threadID int64, text string) (*model.ChatMessage, error) {
	var out model.ChatMessage
	path := fmt.Sprintf("/api/chat/threads/%d/messages", threadID)
	if err := c.do(ctx, http.MethodPost, path, nil, map[string]string{"message": text}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
