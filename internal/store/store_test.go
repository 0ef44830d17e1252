package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobfeed-engine/internal/store"
)

type kv interface {
	Put(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

func openSQLite(t *testing.T) kv {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "jobfeed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func openRedis(t *testing.T) kv {
	t.Helper()
	mr := miniredis.RunT(t)
	r, err := store.OpenRedis(store.RedisConfig{Address: mr.Addr(), Namespace: "jobfeed:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestBackends(t *testing.T) {
	backends := map[string]func(*testing.T) kv{
		"sqlite": openSQLite,
		"redis":  openRedis,
	}

	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			t.Run("put get overwrite", func(t *testing.T) {
				s := open(t)
				ctx := context.Background()

				require.NoError(t, s.Put(ctx, "job_1", []byte(`{"id":1}`)))
				require.NoError(t, s.Put(ctx, "job_1", []byte(`{"id":1,"title":"x"}`)))

				b, err := s.Get(ctx, "job_1")
				require.NoError(t, err)
				assert.JSONEq(t, `{"id":1,"title":"x"}`, string(b))
			})

			t.Run("get missing", func(t *testing.T) {
				s := open(t)
				_, err := s.Get(context.Background(), "job_404")
				assert.ErrorIs(t, err, store.ErrNotFound)
			})

			t.Run("delete is idempotent", func(t *testing.T) {
				s := open(t)
				ctx := context.Background()

				require.NoError(t, s.Put(ctx, "job_2", []byte(`{}`)))
				require.NoError(t, s.Delete(ctx, "job_2"))
				require.NoError(t, s.Delete(ctx, "job_2"))

				_, err := s.Get(ctx, "job_2")
				assert.ErrorIs(t, err, store.ErrNotFound)
			})

			t.Run("keys filters by prefix", func(t *testing.T) {
				s := open(t)
				ctx := context.Background()

				require.NoError(t, s.Put(ctx, "job_3", []byte(`{}`)))
				require.NoError(t, s.Put(ctx, "job_1", []byte(`{}`)))
				require.NoError(t, s.Put(ctx, "settings", []byte(`{}`)))
				require.NoError(t, s.Put(ctx, "jobx9", []byte(`{}`)))

				keys, err := s.Keys(ctx, "job_")
				require.NoError(t, err)
				assert.ElementsMatch(t, []string{"job_1", "job_3"}, keys)

				again, err := s.Keys(ctx, "job_")
				require.NoError(t, err)
				assert.Equal(t, keys, again)
			})
		})
	}
}

func TestSQLite_KeysInInsertionOrder(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()

	for _, k := range []string{"job_30", "job_4", "job_100"} {
		require.NoError(t, s.Put(ctx, k, []byte(`{}`)))
	}
	// overwrite keeps position
	require.NoError(t, s.Put(ctx, "job_30", []byte(`{"v":2}`)))

	keys, err := s.Keys(ctx, "job_")
	require.NoError(t, err)
	assert.Equal(t, []string{"job_30", "job_4", "job_100"}, keys)
}

func TestSQLite_MigrateIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobfeed.db")

	db, err := store.Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Put(context.Background(), "job_1", []byte(`{}`)))
	require.NoError(t, db.Close())

	db, err = store.Open(path)
	require.NoError(t, err)
	defer db.Close()

	keys, err := db.Keys(context.Background(), "job_")
	require.NoError(t, err)
	assert.Equal(t, []string{"job_1"}, keys)
}

func TestRedis_NamespaceIsolation(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.Set("job_7", "outside namespace")

	r, err := store.OpenRedis(store.RedisConfig{Address: mr.Addr(), Namespace: "jobfeed:"})
	require.NoError(t, err)
	defer r.Close()

	ctx := context.Background()
	require.NoError(t, r.Put(ctx, "job_8", []byte(`{}`)))

	keys, err := r.Keys(ctx, "job_")
	require.NoError(t, err)
	assert.Equal(t, []string{"job_8"}, keys)
	assert.True(t, mr.Exists("jobfeed:job_8"))
}

func TestOpenRedis_EmptyAddress(t *testing.T) {
	_, err := store.OpenRedis(store.RedisConfig{})
	assert.ErrorIs(t, err, store.ErrEmptyAddress)
}
