package handler

import "net/http"

// Health handles GET /api/health
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "FamiList API is running",
	})
}

// DebugHealth handles GET /api/debug/health. It is only routed in debug mode.
func DebugHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "debug": true})
}
