// Package bookmark persists postings the user wants to keep, one key-value
// entry per posting.
package bookmark

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"jobfeed-engine/internal/domain"
	"jobfeed-engine/internal/logger"
	"jobfeed-engine/internal/store"
)

// KV is the persistence engine behind the bookmark store. store.DB and
// store.Redis implement it.
type KV interface {
	Put(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

var (
	ErrNotFound  = errors.New("bookmark not found")
	ErrInvalidID = errors.New("posting id must be positive")
)

// StoreError wraps every persistence failure.
type StoreError struct {
	Op  string
	Key string
	Err error
}

func (e *StoreError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("bookmark %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("bookmark %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

type Store struct {
	kv  KV
	log logger.Logger
}

func NewStore(kv KV, log logger.Logger) *Store {
	if log == nil {
		log = logger.NewNop()
	}
	return &Store{kv: kv, log: log.With(logger.String("component", "bookmarks"))}
}

// Save writes job under job_<id>, overwriting any previous copy.
func (s *Store) Save(ctx context.Context, job domain.JobPosting) error {
	if job.ID <= 0 {
		return &StoreError{Op: "save", Err: ErrInvalidID}
	}
	key := job.Key()
	b, err := json.Marshal(job)
	if err != nil {
		return &StoreError{Op: "save", Key: key, Err: err}
	}
	if err := s.kv.Put(ctx, key, b); err != nil {
		return &StoreError{Op: "save", Key: key, Err: err}
	}
	s.log.Info("bookmark saved", logger.Int64("id", job.ID))
	return nil
}

// Remove deletes the bookmark for id. Removing a missing bookmark succeeds.
func (s *Store) Remove(ctx context.Context, id int64) error {
	key := domain.BookmarkKey(id)
	if err := s.kv.Delete(ctx, key); err != nil {
		return &StoreError{Op: "remove", Key: key, Err: err}
	}
	s.log.Info("bookmark removed", logger.Int64("id", id))
	return nil
}

// Get returns one bookmark or ErrNotFound.
func (s *Store) Get(ctx context.Context, id int64) (domain.JobPosting, error) {
	key := domain.BookmarkKey(id)
	b, err := s.kv.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return domain.JobPosting{}, ErrNotFound
	}
	if err != nil {
		return domain.JobPosting{}, &StoreError{Op: "get", Key: key, Err: err}
	}
	job, err := decodeEntry(key, b)
	if err != nil {
		return domain.JobPosting{}, &StoreError{Op: "get", Key: key, Err: err}
	}
	return job, nil
}

// ListAll returns every bookmark in store enumeration order. Each key is
// read on its own; a key deleted mid-listing is skipped, and entries that
// fail to decode are logged and left out.
func (s *Store) ListAll(ctx context.Context) ([]domain.JobPosting, error) {
	keys, err := s.kv.Keys(ctx, domain.BookmarkKeyPrefix)
	if err != nil {
		return nil, &StoreError{Op: "list", Err: err}
	}

	entries := make([]entry, 0, len(keys))
	for _, key := range keys {
		b, err := s.kv.Get(ctx, key)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, &StoreError{Op: "list", Key: key, Err: err}
		}
		entries = append(entries, entry{key: key, value: b})
	}

	jobs, skipped := decodeEntries(entries)
	for _, sk := range skipped {
		s.log.Warn("skipping corrupt bookmark", logger.String("key", sk.key), logger.Error(sk.err))
	}
	return jobs, nil
}

// IDs returns the set of bookmarked ids.
func (s *Store) IDs(ctx context.Context) (map[int64]bool, error) {
	keys, err := s.kv.Keys(ctx, domain.BookmarkKeyPrefix)
	if err != nil {
		return nil, &StoreError{Op: "list", Err: err}
	}
	out := make(map[int64]bool, len(keys))
	for _, k := range keys {
		if id, ok := domain.IDFromBookmarkKey(k); ok {
			out[id] = true
		}
	}
	return out, nil
}
