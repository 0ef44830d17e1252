package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"jobfeed-engine/internal/bookmark"
	"jobfeed-engine/internal/config"
	"jobfeed-engine/internal/events"
	"jobfeed-engine/internal/feed"
	"jobfeed-engine/internal/httpapi"
	"jobfeed-engine/internal/logger"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	// Engine data dir: use env if provided (the shell can pass one), else local folder.
	dataDir := os.Getenv("JOBFEED_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		exitf("create data dir: %v", err)
	}

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		exitf("config bootstrap failed: %v", err)
	}

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		cfg, err := config.Load(userCfgPath)
		if err != nil {
			return cfg, err
		}
		config.ApplyEnv(&cfg)
		cfg, vr := config.NormalizeAndValidate(cfg)
		if !vr.OK() {
			return cfg, fmt.Errorf("invalid config: %s", strings.Join(vr.Errors, "; "))
		}
		return cfg, nil
	}
	cfg, err := loadCfg()
	if err != nil {
		exitf("config load failed (%s): %v", userCfgPath, err)
	}
	cfgVal.Store(cfg)

	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		exitf("logger: %v", err)
	}
	defer func() { _ = log.Sync() }()

	_, vr := config.NormalizeAndValidate(cfg)
	for _, w := range vr.Warnings {
		log.Warn("config warning", logger.String("warning", w))
	}

	storageDir := dataDir
	if cfg.App.DataDir != "" {
		storageDir = cfg.App.DataDir
	}

	// One engine per data dir: two writers on the same store would race.
	lock := flock.New(filepath.Join(storageDir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatal("acquire data dir lock", logger.Error(err))
	}
	if !locked {
		log.Fatal("another engine is already using this data dir", logger.String("dir", storageDir))
	}
	defer func() { _ = lock.Unlock() }()

	kv, closeKV, err := openKV(cfg, storageDir)
	if err != nil {
		log.Fatal("open bookmark store", logger.String("backend", cfg.Storage.Backend), logger.Error(err))
	}
	defer func() { _ = closeKV.Close() }()

	limiter := feed.NewHostLimiter(cfg.Feed.RequestsPerSecond, cfg.Feed.Burst)
	client := feed.NewClient(feed.Config{
		Endpoint:  cfg.Feed.Endpoint,
		UserAgent: cfg.Feed.UserAgent,
		Timeout:   cfg.RequestTimeout(),
	}, limiter, log)
	session := feed.NewSession(client, cfg.RequestTimeout(), log)

	bookmarks := bookmark.NewStore(kv, log)
	list := bookmark.NewList(bookmarks)
	hub := events.NewHub()

	mux := httpapi.NewMux(httpapi.Deps{
		Session:     session,
		Bookmarks:   bookmarks,
		List:        list,
		Hub:         hub,
		Log:         log,
		CfgVal:      &cfgVal,
		UserCfgPath: userCfgPath,
		LoadCfg:     loadCfg,
	})

	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(cfg.App.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal("listen", logger.String("addr", addr), logger.Error(err))
	}

	srv := &http.Server{
		ReadHeaderTimeout: 5 * time.Second,
	}

	token, err := shutdownToken(dataDir)
	if err != nil {
		log.Fatal("shutdown token", logger.Error(err))
	}
	mux.HandleFunc("/shutdown", shutdownHandler(&token, srv))
	srv.Handler = httpapi.Chain(mux,
		httpapi.RequestID,
		httpapi.Recover(log),
		httpapi.AccessLog(log),
		httpapi.Cors,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("engine listening",
		logger.String("addr", "http://"+addr),
		logger.String("config", userCfgPath),
		logger.String("backend", cfg.Storage.Backend),
		logger.String("feed", cfg.Feed.Endpoint),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		warmUp(gctx, session, list, hub, log)
		return nil
	})

	// srv.Shutdown from /shutdown ends Serve without cancelling gctx.
	done := serverDone(srv)
	go func() {
		<-done
		stop()
	}()

	if err := g.Wait(); err != nil {
		log.Error("engine stopped with error", logger.Error(err))
		return
	}
	log.Info("engine stopped")
}

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
