package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/productimporter/catalogctl/internal/dashboard"
	"github.com/productimporter/catalogctl/internal/jobs"
	"github.com/productimporter/catalogctl/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

type WatchOptions struct {
	GlobalOptions
	JobOptions
}

func DefaultWatchOptions() *WatchOptions {
	return &WatchOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdWatch() *cobra.Command {
	o := DefaultWatchOptions()
	cmd := &cobra.Command{
		Use:   fmt.Sprintf("watch (%s) [TASK_ID]", strings.Join(jobKinds(), " | ")),
		Short: "Follow a running import or bulk delete until it ends",
		Long: "Follow a running import or bulk delete until it ends.\n" +
			"Without a task id the newest unfinished job of that kind in the job history is resumed.",
		Example: "watch import 3f2b8c1e-tasks\n" +
			"watch bulk-delete 9a7d0c42-tasks --timeout 10m\n" +
			"watch import",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context(), args)
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *WatchOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)
	o.JobOptions.Bind(fs)
}

func (o *WatchOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if !validJobKind(args[0]) {
		return fmt.Errorf("job kind must be one of %s", strings.Join(jobKinds(), ", "))
	}
	if len(args) > 1 && strings.TrimSpace(args[1]) == "" {
		return fmt.Errorf("task id must not be empty")
	}
	return nil
}

func (o *WatchOptions) Run(ctx context.Context, args []string) error {
	kind, err := jobs.ParseKind(args[0])
	if err != nil {
		return err
	}

	var opts []dashboard.Option
	history, closeHistory, historyErr := o.OpenHistory()
	if historyErr == nil {
		defer closeHistory()
		opts = append(opts, dashboard.WithHistory(history))
	} else if o.HistoryFile != "" {
		zap.S().Named("history").Warnw("job history disabled", "error", historyErr)
	}

	handle := jobs.Handle{Kind: kind}
	if len(args) > 1 {
		handle.TrackingID = strings.TrimSpace(args[1])
	} else {
		if historyErr != nil {
			return fmt.Errorf("no task id given: %w", historyErr)
		}
		if handle, err = unresolved(ctx, history, kind); err != nil {
			return err
		}
	}

	c, err := o.Client()
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	ctx, cancel := o.JobOptions.Context(ctx)
	defer cancel()
	defer o.WriteMetrics()

	d, queue := o.Dashboard(c, dashboard.NewRenderer(os.Stdout, dashboard.FormatTable), o.Indicator(ctx, os.Stderr), opts...)
	defer queue.Close()

	outcome, err := d.WatchJob(ctx, handle)
	if err != nil {
		return fmt.Errorf("watching %s: %w", handle, err)
	}
	return outcomeError(outcome)
}

// unresolved looks up the newest unfinished job of kind in the history.
func unresolved(ctx context.Context, history *store.History, kind jobs.Kind) (jobs.Handle, error) {
	handle, err := history.Unresolved(ctx, kind)
	if errors.Is(err, store.ErrRecordNotFound) {
		return jobs.Handle{}, fmt.Errorf("no unfinished %s job in the job history, give a task id", kind)
	}
	return handle, err
}
