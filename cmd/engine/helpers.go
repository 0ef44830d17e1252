package main

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"jobfeed-engine/internal/bookmark"
	"jobfeed-engine/internal/config"
	"jobfeed-engine/internal/events"
	"jobfeed-engine/internal/feed"
	"jobfeed-engine/internal/logger"
	"jobfeed-engine/internal/secrets"
	"jobfeed-engine/internal/store"
)

// openKV opens the configured bookmark backend.
func openKV(cfg config.Config, dir string) (bookmark.KV, io.Closer, error) {
	switch cfg.Storage.Backend {
	case config.BackendRedis:
		pw, err := secrets.GetRedisPassword(secrets.RedisKeyringAccount(cfg))
		if err != nil {
			return nil, nil, err
		}
		r, err := store.OpenRedis(store.RedisConfig{
			Address:   cfg.Storage.Redis.Address,
			Password:  pw,
			DB:        cfg.Storage.Redis.DB,
			Namespace: cfg.Storage.Redis.Namespace,
		})
		if err != nil {
			return nil, nil, err
		}
		return r, r, nil
	default:
		path := cfg.Storage.SQLiteFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		db, err := store.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	}
}

// warmUp loads the first feed page and the bookmark list so the UI has
// something to show on first paint.
func warmUp(ctx context.Context, session *feed.Session, list *bookmark.List, hub *events.Hub, log logger.Logger) {
	if err := list.Refresh(ctx); err != nil {
		log.Warn("initial bookmark read failed", logger.Error(err))
	}

	res, err := session.Reload(ctx)
	if err != nil {
		log.Warn("initial feed load failed", logger.Error(err))
		hub.Emit("", events.TypeFeedError, events.FeedError{Page: res.Page, Message: err.Error()})
		return
	}
	hub.Emit("", events.TypeFeedLoaded, events.FeedLoaded{
		Page:     res.Page,
		Fetched:  res.Fetched,
		Accepted: res.Accepted,
		Total:    res.Accepted,
		Reload:   true,
	})
	if n, ok := session.TakeNotice(); ok {
		hub.Emit("", events.TypeFeedExhausted, events.FeedExhausted{Title: n.Title, Message: n.Message})
	}
}

func serverDone(srv *http.Server) <-chan struct{} {
	done := make(chan struct{})
	var once sync.Once
	srv.RegisterOnShutdown(func() { once.Do(func() { close(done) }) })
	return done
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// shutdownToken uses JOBFEED_SHUTDOWN_TOKEN when set, otherwise a fresh
// token written to <dataDir>/engine.token for the shell to read.
func shutdownToken(dataDir string) (string, error) {
	if t := strings.TrimSpace(os.Getenv("JOBFEED_SHUTDOWN_TOKEN")); t != "" {
		return t, nil
	}
	t, err := randomToken(32)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dataDir, "engine.token"), []byte(t), 0o600); err != nil {
		return "", err
	}
	return t, nil
}

func shutdownHandler(token *string, srv *http.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		// Local-only guard (covers typical desktop usage)
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			// RemoteAddr can sometimes be just a host; fall back safely
			host = r.RemoteAddr
		}
		if host != "127.0.0.1" && host != "::1" && host != "localhost" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		// Token guard
		got := r.Header.Get("X-Shutdown-Token")
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(*token)) != 1 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		// Respond immediately, then shutdown asynchronously
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("shutting down\n"))

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}
}
