package httpapi

import (
	"net/http"
	"time"

	"jobfeed-engine/internal/feed"
)

type HealthHandler struct {
	Session *feed.Session
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"ok":   true,
		"time": time.Now().UTC().Format(time.RFC3339),
	}
	if h.Session != nil {
		body["feed_state"] = h.Session.Snapshot().State
	}
	writeJSON(w, body)
}
