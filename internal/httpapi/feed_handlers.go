package httpapi

import (
	"context"
	"net/http"
	"sort"

	"jobfeed-engine/internal/bookmark"
	"jobfeed-engine/internal/events"
	"jobfeed-engine/internal/feed"
	"jobfeed-engine/internal/logger"
	"jobfeed-engine/internal/view"
)

type FeedHandler struct {
	Session   *feed.Session
	Bookmarks *bookmark.Store
	Hub       *events.Hub
	Log       logger.Logger
}

type feedResponse struct {
	State      feed.State       `json:"state"`
	Page       int              `json:"page"`
	Exhausted  bool             `json:"exhausted"`
	LastError  string           `json:"last_error,omitempty"`
	Jobs       []view.CardModel `json:"jobs"`
	Bookmarked []int64          `json:"bookmarked"`
}

type loadResponse struct {
	feed.LoadResult
	Total  int          `json:"total"`
	Notice *feed.Notice `json:"notice,omitempty"`
}

func (h FeedHandler) Get(w http.ResponseWriter, r *http.Request) {
	snap := h.Session.Snapshot()
	writeJSON(w, feedResponse{
		State:      snap.State,
		Page:       snap.Page,
		Exhausted:  snap.Exhausted,
		LastError:  snap.LastError,
		Jobs:       view.Cards(snap.Postings),
		Bookmarked: h.bookmarkedIDs(r.Context()),
	})
}

func (h FeedHandler) Reload(w http.ResponseWriter, r *http.Request) {
	res, err := h.Session.Reload(r.Context())
	h.respond(w, r, res, err, true)
}

func (h FeedHandler) More(w http.ResponseWriter, r *http.Request) {
	res, err := h.Session.LoadMore(r.Context())
	h.respond(w, r, res, err, false)
}

func (h FeedHandler) respond(w http.ResponseWriter, r *http.Request, res feed.LoadResult, err error, reload bool) {
	reqID := RequestIDFrom(r.Context())

	if err != nil {
		h.Hub.Emit(reqID, events.TypeFeedError, events.FeedError{Page: res.Page, Message: err.Error()})

		WriteErrorHint(w, r, http.StatusBadGateway, CodeFeedUnavailable, err.Error(), HintBookmarksAvailable)
		return
	}

	if res.Skipped {
		WriteJSON(w, http.StatusAccepted, loadResponse{LoadResult: res})
		return
	}

	total := len(h.Session.Snapshot().Postings)
	h.Hub.Emit(reqID, events.TypeFeedLoaded, events.FeedLoaded{
		Page:     res.Page,
		Fetched:  res.Fetched,
		Accepted: res.Accepted,
		Total:    total,
		Reload:   reload,
	})

	out := loadResponse{LoadResult: res, Total: total}
	if n, ok := h.Session.TakeNotice(); ok {
		out.Notice = &n
		h.Hub.Emit(reqID, events.TypeFeedExhausted, events.FeedExhausted{Title: n.Title, Message: n.Message})
	}
	WriteJSON(w, http.StatusOK, out)
}

// bookmarkedIDs lets the list mark saved rows. A store failure only costs
// the markers, so it is logged rather than failing the feed.
func (h FeedHandler) bookmarkedIDs(ctx context.Context) []int64 {
	out := []int64{}
	if h.Bookmarks == nil {
		return out
	}
	ids, err := h.Bookmarks.IDs(ctx)
	if err != nil {
		h.Log.Warn("list bookmarked ids", logger.Error(err))
		return out
	}
	for id := range ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
