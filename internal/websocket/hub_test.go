package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"
)

// mockClient creates a Client with a send channel but no real connection.
func mockClient(hub *Hub, familyID int64) *Client {
	return &Client{
		hub:      hub,
		familyID: familyID,
		send:     make(chan []byte, sendBufferSize),
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub, 1)
	c2 := mockClient(hub, 2)
	hub.Register(c1)
	hub.Register(c2)

	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	hub.Unregister(c1)
	if got := hub.FamilyClientCount(1); got != 0 {
		t.Fatalf("family 1 clients = %d, want 0", got)
	}
	// double unregister must not panic on the closed channel
	hub.Unregister(c1)

	hub.Unregister(c2)
	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestBroadcastToFamilyIsScoped(t *testing.T) {
	hub := NewHub(slog.Default())

	mine := mockClient(hub, 1)
	sibling := mockClient(hub, 1)
	other := mockClient(hub, 2)
	hub.Register(mine)
	hub.Register(sibling)
	hub.Register(other)

	hub.BroadcastToFamily(1, NewMessage("task", "volunteered", 42, map[string]any{"user_id": float64(7)}))

	for _, c := range []*Client{mine, sibling} {
		select {
		case data := <-c.send:
			var got Message
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got.Type != "task_volunteered" || got.ID != 42 {
				t.Errorf("got %+v", got)
			}
			if got.Extra["user_id"] != float64(7) {
				t.Errorf("extra = %v", got.Extra)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatal("timeout waiting for message")
		}
	}

	select {
	case data := <-other.send:
		t.Errorf("other family received %s", data)
	default:
	}
}

func TestBroadcastEmptyFamily(t *testing.T) {
	hub := NewHub(slog.Default())
	hub.BroadcastToFamily(9, NewMessage("chat_message", "created", 1, nil))
}

func TestBroadcastFullBuffer(t *testing.T) {
	hub := NewHub(slog.Default())

	c := mockClient(hub, 1)
	hub.Register(c)

	for i := 0; i < sendBufferSize; i++ {
		hub.BroadcastToFamily(1, NewMessage("task", "created", int64(i), nil))
	}
	hub.BroadcastToFamily(1, NewMessage("task", "dropped", 999, nil))

	if got := len(c.send); got != sendBufferSize {
		t.Errorf("buffered = %d, want %d", got, sendBufferSize)
	}
	hub.Unregister(c)
}

func TestNewMessage(t *testing.T) {
	msg := NewMessage("family_event", "updated", 5, nil)
	if msg.Type != "family_event_updated" {
		t.Errorf("type = %s", msg.Type)
	}
	if msg.Entity != "family_event" || msg.Action != "updated" || msg.ID != 5 {
		t.Errorf("got %+v", msg)
	}
}

func TestConcurrentAccess(t *testing.T) {
	hub := NewHub(slog.Default())
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(fam int64) {
			defer wg.Done()
			c := mockClient(hub, fam)
			hub.Register(c)
			hub.BroadcastToFamily(fam, NewMessage("task", "created", 0, nil))
			for {
				select {
				case <-c.send:
				default:
					hub.Unregister(c)
					return
				}
			}
		}(int64(i % 3))
	}

	wg.Wait()

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("expected 0 clients after concurrent test, got %d", got)
	}
}
