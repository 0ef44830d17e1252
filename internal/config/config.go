package config

import (
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type Config struct {
	App struct {
		Port    int    `yaml:"port" json:"port"`
		DataDir string `yaml:"data_dir" json:"data_dir"`
		// Platform selects the dial URI scheme: "android" (tel:) or "ios" (telprompt:).
		Platform string `yaml:"platform" json:"platform"`
	} `yaml:"app" json:"app"`

	Feed struct {
		Endpoint              string  `yaml:"endpoint" json:"endpoint"`
		RequestTimeoutSeconds int     `yaml:"request_timeout_seconds" json:"request_timeout_seconds"`
		RequestsPerSecond     float64 `yaml:"requests_per_second" json:"requests_per_second"`
		Burst                 int     `yaml:"burst" json:"burst"`
		UserAgent             string  `yaml:"user_agent" json:"user_agent"`
	} `yaml:"feed" json:"feed"`

	Storage struct {
		Backend    string `yaml:"backend" json:"backend"`
		SQLiteFile string `yaml:"sqlite_file" json:"sqlite_file"`
		Redis      struct {
			Address   string `yaml:"address" json:"address"`
			DB        int    `yaml:"db" json:"db"`
			Namespace string `yaml:"namespace" json:"namespace"`
			// Password lives in the OS keyring under this account.
			KeyringAccount string `yaml:"keyring_account" json:"keyring_account"`
		} `yaml:"redis" json:"redis"`
	} `yaml:"storage" json:"storage"`

	Logging struct {
		Level       string `yaml:"level" json:"level"`
		Development bool   `yaml:"development" json:"development"`
	} `yaml:"logging" json:"logging"`
}

// Default is the configuration written on first run when no template exists.
func Default() Config {
	var cfg Config
	cfg.App.Port = 38471
	cfg.App.Platform = "android"
	cfg.Feed.Endpoint = "https://testapi.getlokalapp.com/common/jobs"
	cfg.Feed.RequestTimeoutSeconds = 20
	cfg.Feed.RequestsPerSecond = 2
	cfg.Feed.Burst = 2
	cfg.Storage.Backend = BackendSQLite
	cfg.Storage.SQLiteFile = "jobfeed.db"
	cfg.Storage.Redis.Namespace = "jobfeed:"
	cfg.Logging.Level = "info"
	return cfg
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Feed.RequestTimeoutSeconds) * time.Second
}

func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

// ApplyEnv overrides file values with JOBFEED_* environment variables.
func ApplyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("JOBFEED_DATA_DIR")); v != "" {
		cfg.App.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv("JOBFEED_ENDPOINT")); v != "" {
		cfg.Feed.Endpoint = v
	}
	if v := strings.TrimSpace(os.Getenv("JOBFEED_LOG_LEVEL")); v != "" {
		cfg.Logging.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("JOBFEED_REDIS_ADDRESS")); v != "" {
		cfg.Storage.Redis.Address = v
	}
}
