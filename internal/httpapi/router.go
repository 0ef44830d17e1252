package httpapi

import "net/http"

// NewMux returns the raw mux so main() can still attach /shutdown (needs srv+token).
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()
	log := d.logger()

	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: HealthHandler{Session: d.Session}.Health,
	}))

	// Feed
	fh := FeedHandler{Session: d.Session, Bookmarks: d.Bookmarks, Hub: d.Hub, Log: log}
	mux.HandleFunc("/feed", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: fh.Get,
	}))
	mux.HandleFunc("/feed/reload", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: fh.Reload,
	}))
	mux.HandleFunc("/feed/more", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: fh.More,
	}))

	// Detail (expects /jobs/{id} and /jobs/{id}/dial)
	jh := JobsHandler{Session: d.Session, Bookmarks: d.Bookmarks, CfgVal: d.CfgVal}
	mux.HandleFunc("/jobs/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  jh.Detail,
		http.MethodPost: jh.Dial,
	}))

	// Bookmarks
	bh := BookmarksHandler{Session: d.Session, List: d.List, Hub: d.Hub, Log: log}
	mux.HandleFunc("/bookmarks", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: bh.Index,
	}))
	mux.HandleFunc("/bookmarks/", methodMux(map[string]http.HandlerFunc{
		http.MethodPost:   bh.Save,
		http.MethodDelete: bh.Remove,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
		Log:         log,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// Secrets (use cfgVal, NOT a snapshot cfg)
	sh := SecretsHandler{CfgVal: d.CfgVal}
	mux.HandleFunc("/api/secrets/redis", methodMux(map[string]http.HandlerFunc{
		http.MethodPost:   sh.SetRedisPassword,
		http.MethodDelete: sh.DeleteRedisPassword,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	return mux
}
