package httpapi

import (
	"sync/atomic"

	"jobfeed-engine/internal/bookmark"
	"jobfeed-engine/internal/config"
	"jobfeed-engine/internal/events"
	"jobfeed-engine/internal/feed"
	"jobfeed-engine/internal/logger"
)

type Deps struct {
	Session   *feed.Session
	Bookmarks *bookmark.Store
	List      *bookmark.List

	Hub *events.Hub
	Log logger.Logger

	// Atomic stores
	CfgVal *atomic.Value // stores config.Config

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)
}

func (d Deps) logger() logger.Logger {
	if d.Log == nil {
		return logger.NewNop()
	}
	return d.Log
}
