package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/productimporter/catalogctl/internal/dashboard"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type DeleteOptions struct {
	GlobalOptions
	JobOptions

	Yes bool

	in  io.Reader
	out io.Writer
}

func DefaultDeleteOptions() *DeleteOptions {
	return &DeleteOptions{
		GlobalOptions: DefaultGlobalOptions(),
		in:            os.Stdin,
		out:           os.Stdout,
	}
}

func NewCmdDelete() *cobra.Command {
	o := DefaultDeleteOptions()
	cmd := &cobra.Command{
		Use:   "delete (products | product/ID | webhook/ID)",
		Short: "Delete one product, every product, or a webhook.",
		Example: "delete products --yes\n" +
			"delete product/12\n" +
			"delete webhook/3",
		Args: cobra.ExactArgs(1),
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

func (o *DeleteOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)
	o.JobOptions.Bind(fs)

	fs.BoolVarP(&o.Yes, "yes", "y", o.Yes, "Do not ask for confirmation")
}

func (o *DeleteOptions) Complete(cmd *cobra.Command, args []string) error {
	if err := o.GlobalOptions.Complete(cmd, args); err != nil {
		return err
	}
	o.in = cmd.InOrStdin()
	o.out = cmd.OutOrStdout()
	return nil
}

func (o *DeleteOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}

	kind, id, err := parseAndValidateKindId(args[0])
	if err != nil {
		return err
	}
	if kind == WebhookKind && id == nil {
		return fmt.Errorf("deleting all %s is not supported, name one with %s/ID", plural(kind), kind)
	}
	return nil
}

func (o *DeleteOptions) Run(ctx context.Context, args []string) error {
	kind, id, err := parseAndValidateKindId(args[0])
	if err != nil {
		return err
	}

	question := fmt.Sprintf("Are you sure you want to delete this %s?", kind)
	if id == nil {
		question = fmt.Sprintf("Are you sure you want to delete ALL %s? This action cannot be undone.", plural(kind))
	}
	if !o.Yes {
		ok, err := confirm(o.in, o.out, question)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(o.out, "Aborted.")
			return nil
		}
	}

	c, err := o.Client()
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	ctx, cancel := o.JobOptions.Context(ctx)
	defer cancel()

	historyOpts, closeHistory := o.historyOptions()
	defer closeHistory()
	defer o.WriteMetrics()

	d, queue := o.Dashboard(c, dashboard.NewRenderer(o.out, dashboard.FormatTable), o.Indicator(ctx, os.Stderr), historyOpts...)
	defer queue.Close()

	switch {
	case kind == ProductKind && id == nil:
		outcome, err := d.BulkDelete(ctx)
		if err != nil {
			return fmt.Errorf("deleting %s: %w", plural(kind), err)
		}
		return outcomeError(outcome)
	case kind == ProductKind:
		if err := d.DeleteProduct(ctx, *id); err != nil {
			return fmt.Errorf("deleting %s/%d: %w", kind, *id, err)
		}
	case kind == WebhookKind:
		if err := d.DeleteWebhook(ctx, *id); err != nil {
			return fmt.Errorf("deleting %s/%d: %w", kind, *id, err)
		}
	default:
		return fmt.Errorf("unsupported resource kind: %s", kind)
	}
	return nil
}
