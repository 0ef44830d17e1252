package feed

import (
	"context"
	"sync"
	"time"

	"jobfeed-engine/internal/domain"
	"jobfeed-engine/internal/logger"
)

// PageLoader is the remote side of a feed session. *Client implements it.
type PageLoader interface {
	LoadPage(ctx context.Context, page int) ([]domain.JobPosting, error)
}

// Notice is a one-shot user-visible message.
type Notice struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

var NoMoreJobs = Notice{Title: "No More Jobs", Message: "There are no more jobs to load."}

type LoadResult struct {
	Page      int  `json:"page"`
	Fetched   int  `json:"fetched"`
	Accepted  int  `json:"accepted"`
	Exhausted bool `json:"exhausted"`
	// Skipped is set when another load was already in flight and nothing
	// was requested.
	Skipped bool `json:"skipped"`
}

// Snapshot is a copy of the feed state, safe to hold after the call.
type Snapshot struct {
	State     State               `json:"state"`
	Page      int                 `json:"page"`
	Exhausted bool                `json:"exhausted"`
	LastError string              `json:"last_error,omitempty"`
	Postings  []domain.JobPosting `json:"postings"`
}

// Session is one continuous feed-browsing interaction: the ordered postings
// loaded so far, the page counter and the ids seen since the last full
// reload. At most one page load is in flight at a time.
type Session struct {
	loader  PageLoader
	log     logger.Logger
	timeout time.Duration

	mu        sync.Mutex
	state     State
	postings  []domain.JobPosting
	seen      IDSet
	page      int
	exhausted bool
	notice    *Notice
	lastErr   string
}

// NewSession returns an Idle session. timeout bounds each load; zero
// leaves it to the loader and ctx.
func NewSession(loader PageLoader, timeout time.Duration, log logger.Logger) *Session {
	if log == nil {
		log = logger.NewNop()
	}
	return &Session{
		loader:  loader,
		log:     log.With(logger.String("component", "feed_session")),
		timeout: timeout,
		seen:    IDSet{},
	}
}

// Reload discards the session and loads page 1 again. If the load fails
// the previous postings and seen set are kept.
func (s *Session) Reload(ctx context.Context) (LoadResult, error) {
	return s.load(ctx, true)
}

// LoadMore loads the page after the last successfully loaded one and
// appends the postings not seen before.
func (s *Session) LoadMore(ctx context.Context) (LoadResult, error) {
	return s.load(ctx, false)
}

func (s *Session) load(ctx context.Context, reload bool) (LoadResult, error) {
	s.mu.Lock()
	if !s.state.CanLoad() {
		s.mu.Unlock()
		s.log.Debug("load skipped, another load in flight", logger.Bool("reload", reload))
		return LoadResult{Skipped: true}, nil
	}
	page := s.page + 1
	if reload {
		page = 1
	}
	s.state = Loading
	s.mu.Unlock()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	fetched, err := s.loader.LoadPage(ctx, page)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.state = Error
		s.lastErr = err.Error()
		s.log.Warn("feed load failed",
			logger.Int("page", page),
			logger.Bool("reload", reload),
			logger.Error(err),
		)
		return LoadResult{Page: page}, err
	}

	var accepted []domain.JobPosting
	if reload {
		fresh := IDSet{}
		accepted = Accept(fresh, fetched)
		s.seen = fresh
		s.postings = accepted
		s.exhausted = false
		s.notice = nil
	} else {
		accepted = Accept(s.seen, fetched)
		s.postings = append(s.postings, accepted...)
	}

	s.page = page
	s.lastErr = ""
	s.state = Loaded

	if len(accepted) == 0 {
		if !s.exhausted {
			n := NoMoreJobs
			s.notice = &n
		}
		s.exhausted = true
	} else {
		s.exhausted = false
	}

	s.log.Info("feed page loaded",
		logger.Int("page", page),
		logger.Int("fetched", len(fetched)),
		logger.Int("accepted", len(accepted)),
		logger.Int("total", len(s.postings)),
		logger.Bool("exhausted", s.exhausted),
	)

	return LoadResult{
		Page:      page,
		Fetched:   len(fetched),
		Accepted:  len(accepted),
		Exhausted: s.exhausted,
	}, nil
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	postings := make([]domain.JobPosting, len(s.postings))
	copy(postings, s.postings)
	return Snapshot{
		State:     s.state,
		Page:      s.page,
		Exhausted: s.exhausted,
		LastError: s.lastErr,
		Postings:  postings,
	}
}

// Posting returns a loaded posting by id.
func (s *Session) Posting(id int64) (domain.JobPosting, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.postings {
		if p.ID == id {
			return p, true
		}
	}
	return domain.JobPosting{}, false
}

// TakeNotice returns the pending notice, if any, and clears it.
func (s *Session) TakeNotice() (Notice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.notice == nil {
		return Notice{}, false
	}
	n := *s.notice
	s.notice = nil
	return n, true
}
