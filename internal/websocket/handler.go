package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/familist/internal/auth"
)

// HandleWebSocket upgrades an authenticated request and subscribes the
// connection to its family's notifications. It must sit behind RequireAuth
// and RequireFamily.
func HandleWebSocket(hub *Hub, originPatterns []string, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ac, ok := auth.FromContext(r.Context())
		if !ok || ac.FamilyID == 0 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			logger.Warn("websocket accept", "error", err)
			return
		}

		logger.Debug("websocket connected", "family_id", ac.FamilyID, "user_id", ac.UserID)
		NewClient(hub, conn, ac.FamilyID, ac.UserID).Run(r.Context())
		logger.Debug("websocket disconnected", "family_id", ac.FamilyID, "user_id", ac.UserID)
	}
}
