package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/productimporter/catalogctl/internal/dashboard"
	"github.com/productimporter/catalogctl/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thoas/go-funk"
)

type GetOptions struct {
	GlobalOptions

	Output      string
	Page        int
	PageSize    int
	Sku         string
	Name        string
	Active      string
	Description string
}

func DefaultGetOptions() *GetOptions {
	o := &GetOptions{
		GlobalOptions: DefaultGlobalOptions(),
		Output:        dashboard.FormatTable,
		Page:          1,
	}
	o.PageSize = o.settings.PageSize
	return o
}

func NewCmdGet() *cobra.Command {
	o := DefaultGetOptions()
	cmd := &cobra.Command{
		Use:   "get (products | product/ID | webhooks | jobs)",
		Short: "Display one or many resources.",
		Example: "get products --page 2 --sku AB- --active true\n" +
			"get product/12 -o yaml\n" +
			"get webhooks -o json\n" +
			"get jobs",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd, args)
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *GetOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVarP(&o.Output, "output", "o", o.Output, fmt.Sprintf("Output format. One of: (%s).", strings.Join(dashboard.LegalFormats, ", ")))
	fs.IntVar(&o.Page, "page", o.Page, "Page of the product list")
	fs.IntVar(&o.PageSize, "page-size", o.PageSize, "Products per page")
	fs.StringVar(&o.Sku, "sku", o.Sku, "Only products whose SKU contains this text")
	fs.StringVar(&o.Name, "name", o.Name, "Only products whose name contains this text")
	fs.StringVar(&o.Active, "active", o.Active, "Only active (true) or inactive (false) products")
	fs.StringVar(&o.Description, "description", o.Description, "Only products whose description contains this text")
}

func (o *GetOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}

	if args[0] != JobsResource {
		if _, _, err := parseAndValidateKindId(args[0]); err != nil {
			return err
		}
	}
	if !funk.ContainsString(dashboard.LegalFormats, o.Output) {
		return fmt.Errorf("output format must be one of %s", strings.Join(dashboard.LegalFormats, ", "))
	}
	if o.Page < 1 {
		return fmt.Errorf("--page must be at least 1")
	}
	if o.PageSize < 1 {
		return fmt.Errorf("--page-size must be at least 1")
	}
	if _, err := parseActive(o.Active); err != nil {
		return err
	}
	return nil
}

func (o *GetOptions) Run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	renderer := dashboard.NewRenderer(cmd.OutOrStdout(), o.Output)
	if args[0] == JobsResource {
		return o.listJobs(ctx, renderer)
	}

	c, err := o.Client()
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	kind, id, err := parseAndValidateKindId(args[0])
	if err != nil {
		return err
	}

	switch {
	case kind == ProductKind && id != nil:
		product, err := c.GetProduct(ctx, *id)
		if err != nil {
			return fmt.Errorf("reading %s/%d: %w", kind, *id, err)
		}
		renderer.ShowProduct(product)
		return nil
	case kind == ProductKind:
		return o.listProducts(ctx, c, renderer)
	case kind == WebhookKind && id == nil:
		d, queue := o.Dashboard(c, renderer, nil)
		defer queue.Close()
		if err := d.ShowTab(ctx, dashboard.TabWebhooks); err != nil {
			return fmt.Errorf("listing %s: %w", plural(kind), err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported resource: %s", args[0])
	}
}

func (o *GetOptions) listProducts(ctx context.Context, c dashboard.Backend, renderer *dashboard.Renderer) error {
	active, err := parseActive(o.Active)
	if err != nil {
		return err
	}
	state := dashboard.NewViewState(o.PageSize)
	state.ApplyFilters(dashboard.Filters{
		SKU:         o.Sku,
		Name:        o.Name,
		Active:      active,
		Description: o.Description,
	})
	if err := state.SetPage(o.Page); err != nil {
		return err
	}

	d, queue := o.Dashboard(c, renderer, nil, dashboard.WithState(state))
	defer queue.Close()
	if err := d.ShowTab(ctx, dashboard.TabProducts); err != nil {
		return fmt.Errorf("listing %s: %w", plural(ProductKind), err)
	}
	return nil
}

func (o *GetOptions) listJobs(ctx context.Context, renderer *dashboard.Renderer) error {
	if o.HistoryFile == "" {
		return fmt.Errorf("job history is disabled")
	}
	db, err := store.InitDB(o.HistoryFile)
	if err != nil {
		return fmt.Errorf("opening job history: %w", err)
	}
	s, err := store.NewStore(db)
	if err != nil {
		return fmt.Errorf("migrating job history: %w", err)
	}
	defer s.Close()

	list, err := s.Job().List(ctx, store.NewJobQueryFilter())
	if err != nil {
		return fmt.Errorf("listing %s: %w", JobsResource, err)
	}
	renderer.ShowJobs(list)
	return nil
}
