package httpapi

import (
	"encoding/json"
	"net/http"
)

// Error codes shared with the UI.
const (
	CodeFeedUnavailable = "feed_unavailable"
	CodeStoreError      = "store_error"
	CodeNotFound        = "not_found"
	CodeInvalidID       = "invalid_id"
	CodeInvalidJSON     = "invalid_json"
	CodeNoPhone         = "no_phone"
)

// HintBookmarksAvailable accompanies feed failures.
const HintBookmarksAvailable = "bookmarks remain available at /bookmarks"

type APIError struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
		Hint      string `json:"hint,omitempty"`
	} `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	WriteErrorHint(w, r, status, code, message, "")
}

func WriteErrorHint(w http.ResponseWriter, r *http.Request, status int, code, message, hint string) {
	var e APIError
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = RequestIDFrom(r.Context())
	e.Error.Hint = hint
	WriteJSON(w, status, e)
}
