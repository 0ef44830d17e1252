package config

import (
	"fmt"
	"net/url"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a trimmed, lower-cased copy of cfg and the
// problems found in it.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	out.App.Platform = strings.ToLower(strings.TrimSpace(out.App.Platform))
	out.Feed.Endpoint = strings.TrimSpace(out.Feed.Endpoint)
	out.Storage.Backend = strings.ToLower(strings.TrimSpace(out.Storage.Backend))
	out.Storage.Redis.Address = strings.TrimSpace(out.Storage.Redis.Address)
	out.Logging.Level = strings.ToLower(strings.TrimSpace(out.Logging.Level))

	if out.Storage.Backend == "" {
		out.Storage.Backend = BackendSQLite
	}
	if out.App.Platform == "" {
		out.App.Platform = "android"
	}

	// ---- Validation rules ----

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}
	switch out.App.Platform {
	case "android", "ios":
	default:
		res.addErr("app.platform must be android or ios, got %q", out.App.Platform)
	}

	if out.Feed.Endpoint == "" {
		res.addErr("feed.endpoint is required")
	} else if u, err := url.Parse(out.Feed.Endpoint); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		res.addErr("feed.endpoint must be an absolute http(s) URL")
	} else if u.Scheme == "http" {
		res.addWarn("feed.endpoint uses plain http")
	}
	if out.Feed.RequestTimeoutSeconds <= 0 {
		res.addErr("feed.request_timeout_seconds must be > 0")
	} else if out.Feed.RequestTimeoutSeconds > 120 {
		res.addWarn("feed.request_timeout_seconds is very high (%d); the feed may look stuck while loading.", out.Feed.RequestTimeoutSeconds)
	}
	if out.Feed.RequestsPerSecond < 0 {
		res.addErr("feed.requests_per_second must be >= 0 (0 disables limiting)")
	}
	if out.Feed.Burst < 0 {
		res.addErr("feed.burst must be >= 0")
	}

	switch out.Storage.Backend {
	case BackendSQLite:
		if strings.TrimSpace(out.Storage.SQLiteFile) == "" {
			res.addErr("storage.sqlite_file is required when storage.backend=sqlite")
		}
	case BackendRedis:
		if out.Storage.Redis.Address == "" {
			res.addErr("storage.redis.address is required when storage.backend=redis")
		}
		if out.Storage.Redis.Namespace == "" {
			res.addWarn("storage.redis.namespace is empty; bookmarks share the keyspace with other data.")
		}
	default:
		res.addErr("storage.backend must be sqlite or redis, got %q", out.Storage.Backend)
	}

	switch out.Logging.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		res.addWarn("logging.level %q is unknown; using info.", out.Logging.Level)
	}

	return out, res
}
