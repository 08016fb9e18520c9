package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/familist/internal/model"
)

type ChatStore struct {
	db *sql.DB
}

func NewChatStore(db *sql.DB) *ChatStore {
	return &ChatStore{db: db}
}

func scanThread(scanner interface{ Scan(...any) error }) (*model.ChatThread, error) {
	var t model.ChatThread
	err := scanner.Scan(&t.ID, &t.FamilyID, &t.CreatedBy, &t.Title, &t.CreatedAt, &t.UpdatedAt, &t.CreatorName)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func scanMessage(scanner interface{ Scan(...any) error }) (*model.ChatMessage, error) {
	var m model.ChatMessage
	err := scanner.Scan(&m.ID, &m.ThreadID, &m.SenderID, &m.Message, &m.CreatedAt, &m.SenderName)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

const threadSelect = `SELECT t.id, t.family_id, t.created_by, t.title, t.created_at, t.updated_at, COALESCE(u.name, 'Unknown')
	FROM chat_threads t LEFT JOIN users u ON u.id = t.created_by`

const messageSelect = `SELECT m.id, m.thread_id, m.sender_id, m.message, m.created_at, COALESCE(u.name, 'Unknown')
	FROM chat_messages m LEFT JOIN users u ON u.id = m.sender_id`

func (s *ChatStore) CreateThread(familyID, createdBy int64, title string) (*model.ChatThread, error) {
	now := time.Now().UTC()
	result, err := s.db.Exec(
		`INSERT INTO chat_threads (family_id, created_by, title, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		familyID, createdBy, title, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert chat thread: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetThread(id)
}

func (s *ChatStore) GetThread(id int64) (*model.ChatThread, error) {
	row := s.db.QueryRow(threadSelect+` WHERE t.id = ?`, id)
	t, err := scanThread(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chat thread: %w", err)
	}
	return t, nil
}

// ListThreads returns the family's threads, most recently active first, each
// with its latest message attached.
func (s *ChatStore) ListThreads(familyID int64) ([]model.ChatThread, error) {
	rows, err := s.db.Query(threadSelect+` WHERE t.family_id = ? ORDER BY t.updated_at DESC, t.id DESC`, familyID)
	if err != nil {
		return nil, fmt.Errorf("list chat threads: %w", err)
	}
	var threads []model.ChatThread
	for rows.Next() {
		t, err := scanThread(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan chat thread: %w", err)
		}
		threads = append(threads, *t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat threads: %w", err)
	}

	for i := range threads {
		last, err := s.lastMessage(threads[i].ID)
		if err != nil {
			return nil, err
		}
		threads[i].LastMessage = last
	}
	return threads, nil
}

func (s *ChatStore) lastMessage(threadID int64) (*model.ChatMessage, error) {
	row := s.db.QueryRow(messageSelect+` WHERE m.thread_id = ? ORDER BY m.id DESC LIMIT 1`, threadID)
	m, err := scanMessage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get last chat message: %w", err)
	}
	return m, nil
}

// AddMessage appends a message and bumps the thread's updated_at.
func (s *ChatStore) AddMessage(threadID, senderID int64, text string) (*model.ChatMessage, error) {
	now := time.Now().UTC()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO chat_messages (thread_id, sender_id, message, created_at) VALUES (?, ?, ?, ?)`,
		threadID, senderID, text, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert chat message: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	if _, err := tx.Exec(`UPDATE chat_threads SET updated_at = ? WHERE id = ?`, now, threadID); err != nil {
		return nil, fmt.Errorf("touch chat thread: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit chat message: %w", err)
	}

	row := s.db.QueryRow(messageSelect+` WHERE m.id = ?`, id)
	m, err := scanMessage(row)
	if err != nil {
		return nil, fmt.Errorf("get chat message: %w", err)
	}
	return m, nil
}

// ListMessages returns a thread's messages in the order they were sent.
func (s *ChatStore) ListMessages(threadID int64) ([]model.ChatMessage, error) {
	rows, err := s.db.Query(messageSelect+` WHERE m.thread_id = ? ORDER BY m.created_at ASC, m.id ASC`, threadID)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	defer rows.Close()

	var messages []model.ChatMessage
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		messages = append(messages, *m)
	}
	return messages, rows.Err()
}
