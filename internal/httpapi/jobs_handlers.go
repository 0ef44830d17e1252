package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"

	"jobfeed-engine/internal/bookmark"
	"jobfeed-engine/internal/config"
	"jobfeed-engine/internal/domain"
	"jobfeed-engine/internal/feed"
	"jobfeed-engine/internal/view"
)

type JobsHandler struct {
	Session   *feed.Session
	Bookmarks *bookmark.Store
	CfgVal    *atomic.Value // stores config.Config
}

type detailResponse struct {
	view.DetailModel
	Bookmarked bool `json:"bookmarked"`
}

// Detail serves GET /jobs/{id}.
func (h JobsHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r.URL.Path, "/jobs/", "")
	if !ok {
		WriteError(w, r, http.StatusBadRequest, CodeInvalidID, "invalid id")
		return
	}
	job, bookmarked, err := h.lookup(r.Context(), id)
	if err != nil {
		h.writeLookupErr(w, r, err)
		return
	}
	writeJSON(w, detailResponse{DetailModel: view.Detail(job), Bookmarked: bookmarked})
}

// Dial serves POST /jobs/{id}/dial?platform=.
func (h JobsHandler) Dial(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r.URL.Path, "/jobs/", "/dial")
	if !ok {
		WriteError(w, r, http.StatusBadRequest, CodeInvalidID, "invalid id")
		return
	}
	job, _, err := h.lookup(r.Context(), id)
	if err != nil {
		h.writeLookupErr(w, r, err)
		return
	}

	platform := strings.TrimSpace(r.URL.Query().Get("platform"))
	if platform == "" && h.CfgVal != nil {
		platform = h.CfgVal.Load().(config.Config).App.Platform
	}

	uri, err := view.DialURI(job.WhatsAppNo, platform)
	if errors.Is(err, view.ErrNoPhone) {
		WriteError(w, r, http.StatusUnprocessableEntity, CodeNoPhone, err.Error())
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	writeJSON(w, map[string]any{"id": id, "uri": uri})
}

// lookup prefers the loaded feed copy and falls back to the bookmark. A
// store failure only matters when the feed does not have the posting.
func (h JobsHandler) lookup(ctx context.Context, id int64) (domain.JobPosting, bool, error) {
	job, inFeed := h.Session.Posting(id)
	bookmarked := false

	if h.Bookmarks != nil {
		saved, err := h.Bookmarks.Get(ctx, id)
		switch {
		case err == nil:
			bookmarked = true
			if !inFeed {
				job = saved
			}
		case errors.Is(err, bookmark.ErrNotFound):
		case !inFeed:
			return domain.JobPosting{}, false, err
		}
	}

	if !inFeed && !bookmarked {
		return domain.JobPosting{}, false, bookmark.ErrNotFound
	}
	return job, bookmarked, nil
}

func (h JobsHandler) writeLookupErr(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, bookmark.ErrNotFound) {
		WriteError(w, r, http.StatusNotFound, CodeNotFound, "job not found")
		return
	}
	WriteError(w, r, http.StatusInternalServerError, CodeStoreError, err.Error())
}
