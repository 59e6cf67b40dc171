package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/productimporter/catalogctl/internal/dashboard"
	"github.com/productimporter/catalogctl/internal/jobs"
	"github.com/productimporter/catalogctl/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type ImportOptions struct {
	GlobalOptions
	JobOptions

	File string
}

func DefaultImportOptions() *ImportOptions {
	return &ImportOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdImport() *cobra.Command {
	o := DefaultImportOptions()
	cmd := &cobra.Command{
		Use:          "import --file FILE",
		Short:        "Import products from a CSV file and follow the import",
		Example:      "import --file products.csv",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context(), args)
		},
	}
	o.Bind(cmd.Flags())
	util.Must(cmd.MarkFlagRequired("file"))
	return cmd
}

func (o *ImportOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)
	o.JobOptions.Bind(fs)

	fs.StringVarP(&o.File, "file", "f", o.File, "Path to the CSV file to import (required)")
}

func (o *ImportOptions) Run(ctx context.Context, args []string) error {
	c, err := o.Client()
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	f, err := os.Open(o.File)
	if err != nil {
		return fmt.Errorf("opening import file: %w", err)
	}
	defer f.Close()

	ctx, cancel := o.JobOptions.Context(ctx)
	defer cancel()

	historyOpts, closeHistory := o.historyOptions()
	defer closeHistory()
	defer o.WriteMetrics()

	d, queue := o.Dashboard(c, dashboard.NewRenderer(os.Stdout, dashboard.FormatTable), o.Indicator(ctx, os.Stderr), historyOpts...)
	defer queue.Close()

	outcome, err := d.ImportFile(ctx, o.File, f)
	if err != nil {
		return fmt.Errorf("importing %s: %w", o.File, err)
	}
	return outcomeError(outcome)
}

// outcomeError makes a failed job fail the command.
func outcomeError(outcome jobs.Outcome) error {
	if outcome.State == jobs.OutcomeFailure {
		return fmt.Errorf("job failed: %s", outcome.Reason)
	}
	return nil
}
