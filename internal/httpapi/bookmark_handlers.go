package httpapi

import (
	"errors"
	"net/http"

	"jobfeed-engine/internal/bookmark"
	"jobfeed-engine/internal/events"
	"jobfeed-engine/internal/feed"
	"jobfeed-engine/internal/logger"
	"jobfeed-engine/internal/view"
)

type BookmarksHandler struct {
	Session *feed.Session
	List    *bookmark.List
	Hub     *events.Hub
	Log     logger.Logger
}

type bookmarksResponse struct {
	State     feed.State       `json:"state"`
	LastError string           `json:"last_error,omitempty"`
	Jobs      []view.CardModel `json:"jobs"`
}

// Index re-reads the store so entries saved elsewhere show up.
func (h BookmarksHandler) Index(w http.ResponseWriter, r *http.Request) {
	if err := h.List.Refresh(r.Context()); err != nil {
		h.Log.Error("refresh bookmarks", logger.Error(err))
		WriteError(w, r, http.StatusInternalServerError, CodeStoreError, err.Error())
		return
	}
	snap := h.List.Snapshot()
	writeJSON(w, bookmarksResponse{
		State:     snap.State,
		LastError: snap.LastError,
		Jobs:      view.Cards(snap.Jobs),
	})
}

// Save bookmarks a posting from the loaded feed.
func (h BookmarksHandler) Save(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r.URL.Path, "/bookmarks/", "")
	if !ok {
		WriteError(w, r, http.StatusBadRequest, CodeInvalidID, "invalid id")
		return
	}
	job, ok := h.Session.Posting(id)
	if !ok {
		WriteError(w, r, http.StatusNotFound, CodeNotFound, "job is not in the loaded feed")
		return
	}
	if err := h.List.Save(r.Context(), job); err != nil {
		h.Log.Error("save bookmark", logger.Int64("id", id), logger.Error(err))
		h.Hub.Emit(RequestIDFrom(r.Context()), events.TypeBookmarkError, events.BookmarkError{ID: id, Op: "save", Message: err.Error()})
		status := http.StatusInternalServerError
		if errors.Is(err, bookmark.ErrInvalidID) {
			status = http.StatusBadRequest
		}
		WriteError(w, r, status, CodeStoreError, err.Error())
		return
	}

	h.Hub.Emit(RequestIDFrom(r.Context()), events.TypeBookmarkSaved, events.BookmarkChanged{ID: id})
	writeJSON(w, map[string]any{"ok": true, "id": id})
}

// Remove deletes a bookmark. Removing one that does not exist succeeds.
func (h BookmarksHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r.URL.Path, "/bookmarks/", "")
	if !ok {
		WriteError(w, r, http.StatusBadRequest, CodeInvalidID, "invalid id")
		return
	}
	if err := h.List.Remove(r.Context(), id); err != nil {
		h.Log.Error("remove bookmark", logger.Int64("id", id), logger.Error(err))
		h.Hub.Emit(RequestIDFrom(r.Context()), events.TypeBookmarkError, events.BookmarkError{ID: id, Op: "remove", Message: err.Error()})
		WriteError(w, r, http.StatusInternalServerError, CodeStoreError, err.Error())
		return
	}

	h.Hub.Emit(RequestIDFrom(r.Context()), events.TypeBookmarkRemoved, events.BookmarkChanged{ID: id})
	writeJSON(w, map[string]any{"ok": true, "id": id})
}
