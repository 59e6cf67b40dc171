package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "CATALOGCTL"

// Config holds the runtime settings read from CATALOGCTL_* environment
// variables. Command line flags take precedence over these values.
type Config struct {
	ServerUrl string `envconfig:"SERVER_URL" default:""`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	PollInterval    time.Duration `envconfig:"POLL_INTERVAL" default:"1s"`
	BulkDeleteGrace time.Duration `envconfig:"BULK_DELETE_GRACE" default:"2s"`
	ImportGrace     time.Duration `envconfig:"IMPORT_GRACE" default:"0s"`

	AlertTTL time.Duration `envconfig:"ALERT_TTL" default:"5s"`
	PageSize int           `envconfig:"PAGE_SIZE" default:"10"`

	// HistoryFile is the sqlite database keeping started jobs. Empty means
	// $HOME/.catalogctl/jobs.db.
	HistoryFile string `envconfig:"HISTORY_FILE" default:""`
}

func New() (*Config, error) {
	cfg := new(Config)
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the values New uses when no variable is set.
func Default() *Config {
	return &Config{
		LogLevel:        "info",
		PollInterval:    time.Second,
		BulkDeleteGrace: 2 * time.Second,
		AlertTTL:        5 * time.Second,
		PageSize:        10,
	}
}
