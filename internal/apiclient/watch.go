package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	ws "github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/dukerupert/familist/internal/websocket"
)

// Watch streams the family's change notifications to fn until ctx is done
// or the connection drops. It returns nil when ctx is cancelled.
func (c *Client) Watch(ctx context.Context, fn func(websocket.Message)) error {
	wsURL := c.baseURL + "/api/ws"
	switch {
	case strings.HasPrefix(wsURL, "https://"):
		wsURL = "wss://" + strings.TrimPrefix(wsURL, "https://")
	case strings.HasPrefix(wsURL, "http://"):
		wsURL = "ws://" + strings.TrimPrefix(wsURL, "http://")
	}

	header := http.Header{}
	token := c.token()
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, resp, err := ws.Dial(ctx, wsURL, &ws.DialOptions{HTTPHeader: header})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized && token != "" {
			c.tokens.Clear()
			return ErrUnauthorized
		}
		if resp != nil {
			return &APIError{Status: resp.StatusCode, Message: fmt.Sprintf("websocket handshake failed with status %d", resp.StatusCode)}
		}
		return fmt.Errorf("dial websocket: %w", err)
	}
	defer conn.CloseNow()

	for {
		var msg websocket.Message
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				conn.Close(ws.StatusNormalClosure, "")
				return nil
			}
			return fmt.Errorf("read notification: %w", err)
		}
		fn(msg)
	}
}
