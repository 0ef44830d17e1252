package events

import (
	"encoding/json"
	"time"
)

// Event types pushed to /events subscribers.
const (
	TypePing            = "ping"
	TypeFeedLoaded      = "feed_loaded"
	TypeFeedExhausted   = "feed_exhausted"
	TypeFeedError       = "feed_error"
	TypeBookmarkSaved   = "bookmark_saved"
	TypeBookmarkRemoved = "bookmark_removed"
	TypeBookmarkError   = "bookmark_error"
)

// Version is bumped when a payload changes shape.
const Version = 1

type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

type FeedLoaded struct {
	Page     int  `json:"page"`
	Fetched  int  `json:"fetched"`
	Accepted int  `json:"accepted"`
	Total    int  `json:"total"`
	Reload   bool `json:"reload"`
}

type FeedExhausted struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

type FeedError struct {
	Page    int    `json:"page"`
	Message string `json:"message"`
}

type BookmarkChanged struct {
	ID int64 `json:"id"`
}

// BookmarkError reports a failed save or remove. Op is "save" or "remove".
type BookmarkError struct {
	ID      int64  `json:"id"`
	Op      string `json:"op"`
	Message string `json:"message"`
}

func MakeEvent(reqID, typ string, v int, data any) string {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	e := Event{
		Type:      typ,
		Version:   v,
		At:        time.Now().UTC(),
		RequestID: reqID,
		Data:      raw,
	}
	b, _ := json.Marshal(e)
	return string(b)
}
