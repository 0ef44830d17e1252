package bookmark

import (
	"context"
	"sync"

	"jobfeed-engine/internal/domain"
	"jobfeed-engine/internal/feed"
)

// Snapshot is a copy of the bookmark screen state.
type Snapshot struct {
	State     feed.State          `json:"state"`
	LastError string              `json:"last_error,omitempty"`
	Jobs      []domain.JobPosting `json:"jobs"`
}

// List is the in-memory reflection of the bookmark screen. Removals hit the
// store first and the in-memory copy under the same lock, so a reader never
// sees the two disagree.
type List struct {
	store *Store

	mu      sync.Mutex
	state   feed.State
	jobs    []domain.JobPosting
	lastErr string
}

func NewList(s *Store) *List {
	return &List{store: s}
}

// Refresh re-reads every bookmark from the store. On failure the previous
// list is kept. A refresh started while another is in flight is a no-op.
func (l *List) Refresh(ctx context.Context) error {
	l.mu.Lock()
	if !l.state.CanLoad() {
		l.mu.Unlock()
		return nil
	}
	l.state = feed.Loading
	l.mu.Unlock()

	jobs, err := l.store.ListAll(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()

	if err != nil {
		l.state = feed.Error
		l.lastErr = err.Error()
		return err
	}
	l.jobs = jobs
	l.lastErr = ""
	l.state = feed.Loaded
	return nil
}

// Remove deletes id from the store, then from the in-memory list.
func (l *List) Remove(ctx context.Context, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.Remove(ctx, id); err != nil {
		return err
	}
	kept := l.jobs[:0:0]
	for _, j := range l.jobs {
		if j.ID != id {
			kept = append(kept, j)
		}
	}
	l.jobs = kept
	return nil
}

// Save stores job and reflects it in the list without a full refresh.
func (l *List) Save(ctx context.Context, job domain.JobPosting) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.Save(ctx, job); err != nil {
		return err
	}
	for i, j := range l.jobs {
		if j.ID == job.ID {
			l.jobs[i] = job
			return nil
		}
	}
	l.jobs = append(l.jobs, job)
	return nil
}

func (l *List) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	jobs := make([]domain.JobPosting, len(l.jobs))
	copy(jobs, l.jobs)
	return Snapshot{State: l.state, LastError: l.lastErr, Jobs: jobs}
}
