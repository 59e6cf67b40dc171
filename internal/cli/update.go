package cli

import (
	"context"
	"fmt"
	"os"

	api "github.com/productimporter/catalogctl/api/v1alpha1"
	"github.com/productimporter/catalogctl/internal/dashboard"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type UpdateOptions struct {
	GlobalOptions

	Sku         string
	Name        string
	Description string
	Active      bool

	changed func(name string) bool
}

func DefaultUpdateOptions() *UpdateOptions {
	return &UpdateOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdUpdate() *cobra.Command {
	o := DefaultUpdateOptions()
	cmd := &cobra.Command{
		Use:     "update product/ID [--sku SKU] [--name NAME] [--description TEXT] [--active=BOOL]",
		Short:   "Update a product. Fields without a flag keep their value.",
		Example: "update product/12 --name 'Blue widget' --active=false",
		Args:    cobra.ExactArgs(1),
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

func (o *UpdateOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)
	bindProductFlags(fs, &o.Sku, &o.Name, &o.Description, &o.Active)
}

func (o *UpdateOptions) Complete(cmd *cobra.Command, args []string) error {
	if err := o.GlobalOptions.Complete(cmd, args); err != nil {
		return err
	}
	o.changed = cmd.Flags().Changed
	return nil
}

func (o *UpdateOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	kind, id, err := parseAndValidateKindId(args[0])
	if err != nil {
		return err
	}
	if kind != ProductKind || id == nil {
		return fmt.Errorf("only product/ID can be updated")
	}
	return nil
}

func (o *UpdateOptions) Run(ctx context.Context, args []string) error {
	_, id, err := parseAndValidateKindId(args[0])
	if err != nil {
		return err
	}

	c, err := o.Client()
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	renderer := dashboard.NewRenderer(os.Stdout, dashboard.FormatTable)
	d, queue := o.Dashboard(c, renderer, nil)
	defer queue.Close()

	current, err := d.EditProduct(ctx, *id)
	if err != nil {
		return fmt.Errorf("reading %s/%d: %w", ProductKind, *id, err)
	}
	if _, err := d.SaveProduct(ctx, o.merge(current)); err != nil {
		return fmt.Errorf("updating %s/%d: %w", ProductKind, *id, err)
	}
	return nil
}

// merge applies the flags that were set on top of the stored product.
func (o *UpdateOptions) merge(current *api.Product) api.ProductUpdate {
	update := api.ProductUpdate{
		Sku:         current.Sku,
		Name:        current.Name,
		Description: current.Description,
		Active:      current.Active,
	}
	if o.changed == nil {
		return update
	}
	if o.changed("sku") {
		update.Sku = o.Sku
	}
	if o.changed("name") {
		update.Name = o.Name
	}
	if o.changed("description") {
		description := o.Description
		update.Description = &description
	}
	if o.changed("active") {
		update.Active = o.Active
	}
	return update
}
