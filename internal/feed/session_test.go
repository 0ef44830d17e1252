package feed_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobfeed-engine/internal/domain"
	"jobfeed-engine/internal/feed"
	"jobfeed-engine/internal/logger"
)

// pagesLoader serves canned pages; pages beyond the map return nothing.
type pagesLoader struct {
	mu    sync.Mutex
	pages map[int][]domain.JobPosting
	errs  map[int]error
	calls []int
}

func (l *pagesLoader) LoadPage(_ context.Context, page int) ([]domain.JobPosting, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, page)
	if err := l.errs[page]; err != nil {
		return nil, err
	}
	return l.pages[page], nil
}

func (l *pagesLoader) setErr(page int, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.errs == nil {
		l.errs = map[int]error{}
	}
	l.errs[page] = err
}

func postingsRange(from, to int64) []domain.JobPosting {
	var out []domain.JobPosting
	for id := from; id <= to; id++ {
		out = append(out, posting(id))
	}
	return out
}

func ids(ps []domain.JobPosting) []int64 {
	out := make([]int64, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestSession_RepeatedPageExhaustsFeed(t *testing.T) {
	t.Parallel()

	loader := &pagesLoader{pages: map[int][]domain.JobPosting{
		1: postingsRange(1, 20),
		2: postingsRange(1, 20),
	}}
	s := feed.NewSession(loader, 0, logger.NewNop())
	ctx := context.Background()

	res, err := s.Reload(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, res.Accepted)
	assert.False(t, res.Exhausted)

	snap := s.Snapshot()
	assert.Len(t, snap.Postings, 20)
	assert.False(t, snap.Exhausted)
	assert.Equal(t, feed.Loaded, snap.State)

	res, err = s.LoadMore(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Page)
	assert.Zero(t, res.Accepted)
	assert.True(t, res.Exhausted)

	snap = s.Snapshot()
	assert.Len(t, snap.Postings, 20)
	assert.True(t, snap.Exhausted)
	assert.Equal(t, 2, snap.Page)
}

func TestSession_NoticeIsOneShot(t *testing.T) {
	t.Parallel()

	loader := &pagesLoader{pages: map[int][]domain.JobPosting{1: postingsRange(1, 3)}}
	s := feed.NewSession(loader, 0, logger.NewNop())
	ctx := context.Background()

	_, err := s.Reload(ctx)
	require.NoError(t, err)
	_, ok := s.TakeNotice()
	assert.False(t, ok)

	_, err = s.LoadMore(ctx) // page 2 empty
	require.NoError(t, err)
	n, ok := s.TakeNotice()
	require.True(t, ok)
	assert.Equal(t, feed.NoMoreJobs, n)

	_, ok = s.TakeNotice()
	assert.False(t, ok)

	_, err = s.LoadMore(ctx) // page 3 empty, flag already set
	require.NoError(t, err)
	_, ok = s.TakeNotice()
	assert.False(t, ok)
	assert.True(t, s.Snapshot().Exhausted)
	assert.Len(t, s.Snapshot().Postings, 3)
}

func TestSession_NoDuplicatesAcrossPages(t *testing.T) {
	t.Parallel()

	loader := &pagesLoader{pages: map[int][]domain.JobPosting{
		1: postingsRange(1, 10),
		2: postingsRange(6, 15),
		3: append(postingsRange(14, 18), postingsRange(1, 2)...),
	}}
	s := feed.NewSession(loader, 0, logger.NewNop())
	ctx := context.Background()

	_, err := s.LoadMore(ctx)
	require.NoError(t, err)
	_, err = s.LoadMore(ctx)
	require.NoError(t, err)
	_, err = s.LoadMore(ctx)
	require.NoError(t, err)

	got := ids(s.Snapshot().Postings)
	seen := map[int64]bool{}
	for _, id := range got {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Equal(t, postingsRangeIDs(1, 18), got)
	assert.Equal(t, []int{1, 2, 3}, loader.calls)
}

func postingsRangeIDs(from, to int64) []int64 { return ids(postingsRange(from, to)) }

func TestSession_LaterPageClearsExhaustion(t *testing.T) {
	t.Parallel()

	loader := &pagesLoader{pages: map[int][]domain.JobPosting{
		1: postingsRange(1, 2),
		3: postingsRange(3, 4),
	}}
	s := feed.NewSession(loader, 0, logger.NewNop())
	ctx := context.Background()

	_, _ = s.Reload(ctx)
	res, _ := s.LoadMore(ctx)
	assert.True(t, res.Exhausted)

	res, err := s.LoadMore(ctx)
	require.NoError(t, err)
	assert.False(t, res.Exhausted)
	assert.Len(t, s.Snapshot().Postings, 4)
}

func TestSession_RejectsPostingsWithoutPrimaryDetails(t *testing.T) {
	t.Parallel()

	bare := posting(2)
	bare.PrimaryDetails = nil
	blank := posting(3)
	blank.PrimaryDetails = &domain.PrimaryDetails{}
	noID := posting(0)

	loader := &pagesLoader{pages: map[int][]domain.JobPosting{
		1: {posting(1), bare, blank, noID},
		2: {posting(2)},
	}}
	s := feed.NewSession(loader, 0, logger.NewNop())
	ctx := context.Background()

	_, err := s.Reload(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids(s.Snapshot().Postings))

	// id 2 was rejected, not seen, so a complete copy is accepted later.
	_, err = s.LoadMore(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids(s.Snapshot().Postings))
}

func TestSession_FailureKeepsPostings(t *testing.T) {
	t.Parallel()

	loader := &pagesLoader{pages: map[int][]domain.JobPosting{
		1: postingsRange(1, 5),
		2: postingsRange(6, 8),
	}}
	s := feed.NewSession(loader, 0, logger.NewNop())
	ctx := context.Background()

	_, err := s.Reload(ctx)
	require.NoError(t, err)

	boom := &feed.FetchError{Page: 2, Status: 503}
	loader.setErr(2, boom)

	_, err = s.LoadMore(ctx)
	require.ErrorIs(t, err, boom)

	snap := s.Snapshot()
	assert.Equal(t, feed.Error, snap.State)
	assert.Contains(t, snap.LastError, "status 503")
	assert.Len(t, snap.Postings, 5)
	assert.Equal(t, 1, snap.Page)

	// Retry re-requests the same page.
	loader.setErr(2, nil)
	res, err := s.LoadMore(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Page)
	assert.Len(t, s.Snapshot().Postings, 8)
	assert.Empty(t, s.Snapshot().LastError)
}

func TestSession_ReloadFailureKeepsSession(t *testing.T) {
	t.Parallel()

	loader := &pagesLoader{pages: map[int][]domain.JobPosting{
		1: postingsRange(1, 5),
		2: postingsRange(6, 7),
	}}
	s := feed.NewSession(loader, 0, logger.NewNop())
	ctx := context.Background()

	_, _ = s.Reload(ctx)
	_, _ = s.LoadMore(ctx)

	loader.setErr(1, errors.New("offline"))
	_, err := s.Reload(ctx)
	require.Error(t, err)
	assert.Len(t, s.Snapshot().Postings, 7)

	// Seen set survived: page 2 again yields nothing new.
	loader.setErr(1, nil)
	loader.pages[3] = postingsRange(6, 7)
	res, err := s.LoadMore(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Accepted)
}

func TestSession_ReloadResetsSeenSet(t *testing.T) {
	t.Parallel()

	loader := &pagesLoader{pages: map[int][]domain.JobPosting{
		1: postingsRange(1, 3),
		2: postingsRange(1, 3),
	}}
	s := feed.NewSession(loader, 0, logger.NewNop())
	ctx := context.Background()

	_, _ = s.Reload(ctx)
	_, _ = s.LoadMore(ctx)
	require.True(t, s.Snapshot().Exhausted)

	res, err := s.Reload(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Accepted)

	snap := s.Snapshot()
	assert.False(t, snap.Exhausted)
	assert.Equal(t, 1, snap.Page)
	assert.Equal(t, []int64{1, 2, 3}, ids(snap.Postings))
}

// blockingLoader holds every call until release is closed.
type blockingLoader struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
	calls   int
	mu      sync.Mutex
}

func (l *blockingLoader) LoadPage(ctx context.Context, page int) ([]domain.JobPosting, error) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	l.once.Do(func() { close(l.started) })
	select {
	case <-l.release:
		return postingsRange(1, 2), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestSession_ReentrantLoadIsNoop(t *testing.T) {
	t.Parallel()

	loader := &blockingLoader{started: make(chan struct{}), release: make(chan struct{})}
	s := feed.NewSession(loader, 0, logger.NewNop())
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := s.Reload(ctx)
		done <- err
	}()

	<-loader.started
	assert.Equal(t, feed.Loading, s.Snapshot().State)

	res, err := s.LoadMore(ctx)
	require.NoError(t, err)
	assert.True(t, res.Skipped)

	res, err = s.Reload(ctx)
	require.NoError(t, err)
	assert.True(t, res.Skipped)

	close(loader.release)
	require.NoError(t, <-done)

	loader.mu.Lock()
	assert.Equal(t, 1, loader.calls)
	loader.mu.Unlock()
	assert.Len(t, s.Snapshot().Postings, 2)
}

func TestSession_TimeoutSurfacesAsError(t *testing.T) {
	t.Parallel()

	loader := &blockingLoader{started: make(chan struct{}), release: make(chan struct{})}
	s := feed.NewSession(loader, 20*time.Millisecond, logger.NewNop())

	_, err := s.Reload(context.Background())
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, feed.Error, s.Snapshot().State)
}

func TestSession_Posting(t *testing.T) {
	t.Parallel()

	loader := &pagesLoader{pages: map[int][]domain.JobPosting{1: postingsRange(1, 3)}}
	s := feed.NewSession(loader, 0, logger.NewNop())
	_, _ = s.Reload(context.Background())

	p, ok := s.Posting(2)
	require.True(t, ok)
	assert.Equal(t, "Job 2", p.Title)

	_, ok = s.Posting(99)
	assert.False(t, ok)
}

func TestAccept_RejectsNonPositiveIDs(t *testing.T) {
	t.Parallel()

	seen := feed.IDSet{}
	got := feed.Accept(seen, []domain.JobPosting{posting(-5), posting(0), posting(4)})

	assert.Equal(t, []int64{4}, ids(got))
	assert.False(t, seen.Has(-5))
	assert.True(t, seen.Has(4))
}
