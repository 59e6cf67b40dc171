package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/productimporter/catalogctl/internal/alerts"
	"github.com/productimporter/catalogctl/internal/client"
	"github.com/productimporter/catalogctl/internal/config"
	"github.com/productimporter/catalogctl/internal/dashboard"
	"github.com/productimporter/catalogctl/internal/jobs"
	"github.com/productimporter/catalogctl/internal/presenter"
	"github.com/productimporter/catalogctl/internal/store"
	"github.com/productimporter/catalogctl/pkg/log"
	"github.com/productimporter/catalogctl/pkg/metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

type GlobalOptions struct {
	ServerUrl      string
	ConfigFilePath string
	LogLevel       string
	HistoryFile    string

	settings    *config.Config
	settingsErr error
}

// DefaultGlobalOptions seeds the flag defaults from CATALOGCTL_* variables.
func DefaultGlobalOptions() GlobalOptions {
	settings, err := config.New()
	if err != nil {
		settings = config.Default()
	}
	return GlobalOptions{
		ServerUrl:      settings.ServerUrl,
		ConfigFilePath: client.DefaultClientConfigPath(),
		LogLevel:       settings.LogLevel,
		HistoryFile:    defaultHistoryFile(settings),
		settings:       settings,
		settingsErr:    err,
	}
}

func (o *GlobalOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.ServerUrl, "server-url", "u", o.ServerUrl, "Address of the catalog server (overrides the config file)")
	fs.StringVar(&o.ConfigFilePath, "config", o.ConfigFilePath, "Path to the client config file")
	fs.StringVar(&o.LogLevel, "log-level", o.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&o.HistoryFile, "history-file", o.HistoryFile, "Path to the job history database (empty disables the history)")
}

func defaultHistoryFile(settings *config.Config) string {
	if settings.HistoryFile != "" {
		return settings.HistoryFile
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".catalogctl", "jobs.db")
}

// OpenHistory opens the job history database. The returned func closes it.
func (o *GlobalOptions) OpenHistory() (*store.History, func(), error) {
	if o.HistoryFile == "" {
		return nil, nil, fmt.Errorf("job history is disabled")
	}
	db, err := store.InitDB(o.HistoryFile)
	if err != nil {
		return nil, nil, fmt.Errorf("opening job history: %w", err)
	}
	s, err := store.NewStore(db)
	if err != nil {
		return nil, nil, fmt.Errorf("migrating job history: %w", err)
	}
	closeFn := func() {
		if err := s.Close(); err != nil {
			zap.S().Named("history").Warnw("failed to close job history", "error", err)
		}
	}
	return store.NewHistory(s, nil), closeFn, nil
}

// historyOptions enables the job history on a dashboard when it can be
// opened. A history that cannot be opened is only logged.
func (o *GlobalOptions) historyOptions() ([]dashboard.Option, func()) {
	if o.HistoryFile == "" {
		return nil, func() {}
	}
	history, closeFn, err := o.OpenHistory()
	if err != nil {
		zap.S().Named("history").Warnw("job history disabled", "error", err)
		return nil, func() {}
	}
	return []dashboard.Option{dashboard.WithHistory(history)}, closeFn
}

func (o *GlobalOptions) Complete(cmd *cobra.Command, args []string) error {
	if o.settingsErr != nil {
		return fmt.Errorf("reading environment: %w", o.settingsErr)
	}
	zap.ReplaceGlobals(log.InitLog(log.ParseLevel(o.LogLevel)))
	return nil
}

func (o *GlobalOptions) Validate(args []string) error {
	return nil
}

// Client builds a catalog client. The server url comes from the flag or
// environment when set, from the config file otherwise.
func (o *GlobalOptions) Client() (*client.CatalogClient, error) {
	if o.ServerUrl == "" {
		return client.NewFromConfigFile(o.ConfigFilePath)
	}
	cfg := client.NewDefault()
	if fileCfg, err := client.ParseConfigFile(o.ConfigFilePath); err == nil {
		cfg = fileCfg
	}
	cfg.Service.Server = o.ServerUrl
	return client.NewFromConfig(cfg)
}

// Dashboard wires a dashboard rendering to view and printing alerts on
// stderr. The returned queue must be closed once the command is done.
func (o *GlobalOptions) Dashboard(backend dashboard.Backend, view dashboard.View, indicator presenter.Indicator, opts ...dashboard.Option) (*dashboard.Dashboard, *alerts.Queue) {
	if indicator == nil {
		indicator = presenter.NewLogIndicator(zap.S().Named("progress"))
	}
	sink := alerts.NewTerminalSink(os.Stderr)
	if printer, ok := indicator.(alerts.LinePrinter); ok {
		sink.WithPrinter(printer)
	}
	queue := alerts.NewQueue(sink, alerts.WithTTL(o.settings.AlertTTL))
	opts = append([]dashboard.Option{
		dashboard.WithState(dashboard.NewViewState(o.settings.PageSize)),
		dashboard.WithPollInterval(o.settings.PollInterval),
		dashboard.WithGrace(jobs.KindBulkDelete, o.settings.BulkDeleteGrace),
		dashboard.WithGrace(jobs.KindImport, o.settings.ImportGrace),
	}, opts...)
	return dashboard.New(backend, view, indicator, queue, opts...), queue
}

// JobOptions are shared by commands that follow a background job.
type JobOptions struct {
	NoProgress  bool
	Timeout     time.Duration
	MetricsFile string
}

func (o *JobOptions) Bind(fs *pflag.FlagSet) {
	fs.BoolVar(&o.NoProgress, "no-progress", o.NoProgress, "Log progress lines instead of drawing a progress bar")
	fs.DurationVar(&o.Timeout, "timeout", o.Timeout, "Stop following the job after this long (0 waits until it ends)")
	fs.StringVar(&o.MetricsFile, "metrics-file", o.MetricsFile, "Write job metrics to this file in the Prometheus text format")
}

// WriteMetrics writes the collected metrics when --metrics-file is set.
func (o *JobOptions) WriteMetrics() {
	if o.MetricsFile == "" {
		return
	}
	if err := metrics.WriteTextfile(o.MetricsFile); err != nil {
		zap.S().Named("metrics").Warnw("failed to write metrics", "path", o.MetricsFile, "error", err)
	}
}

// Indicator returns the progress display for this command.
func (o *JobOptions) Indicator(ctx context.Context, out io.Writer) presenter.Indicator {
	if o.NoProgress {
		return presenter.NewLogIndicator(zap.S().Named("progress"))
	}
	return presenter.NewTeaIndicator(ctx, out)
}

// Context bounds ctx by the timeout, if one was given.
func (o *JobOptions) Context(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.Timeout)
}
