package model

import "time"

type ChatThread struct {
	ID          int64        `json:"id"`
	FamilyID    int64        `json:"family_id"`
	CreatedBy   int64        `json:"created_by"`
	Title       string       `json:"title"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	CreatorName string       `json:"created_by_name"`
	LastMessage *ChatMessage `json:"last_message,omitempty"`
}

type ChatMessage struct {
	ID         int64     `json:"id"`
	ThreadID   int64     `json:"thread_id"`
	SenderID   int64     `json:"sender_id"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
	SenderName string    `json:"sender_name"`
}
