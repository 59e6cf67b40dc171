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

func NewCmdCreate() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a resource",
	}
	cmd.AddCommand(NewCmdCreateProduct())
	cmd.AddCommand(NewCmdCreateWebhook())
	return cmd
}

type CreateProductOptions struct {
	GlobalOptions

	Sku         string
	Name        string
	Description string
	Active      bool
}

func DefaultCreateProductOptions() *CreateProductOptions {
	return &CreateProductOptions{
		GlobalOptions: DefaultGlobalOptions(),
		Active:        true,
	}
}

func NewCmdCreateProduct() *cobra.Command {
	o := DefaultCreateProductOptions()
	cmd := &cobra.Command{
		Use:     "product --sku SKU --name NAME",
		Short:   "Create a product",
		Example: "create product --sku AB-1 --name Widget --description 'Blue widget'",
		Args:    cobra.NoArgs,
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

func (o *CreateProductOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)
	bindProductFlags(fs, &o.Sku, &o.Name, &o.Description, &o.Active)
}

func bindProductFlags(fs *pflag.FlagSet, sku, name, description *string, active *bool) {
	fs.StringVar(sku, "sku", *sku, "Product SKU")
	fs.StringVar(name, "name", *name, "Product name")
	fs.StringVar(description, "description", *description, "Product description")
	fs.BoolVar(active, "active", *active, "Whether the product is active")
}

func (o *CreateProductOptions) Run(ctx context.Context, args []string) error {
	c, err := o.Client()
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	d, queue := o.Dashboard(c, dashboard.NewRenderer(os.Stdout, dashboard.FormatTable), nil)
	defer queue.Close()

	product := api.ProductCreate{Sku: o.Sku, Name: o.Name, Active: o.Active}
	if o.Description != "" {
		product.Description = &o.Description
	}
	if _, err := d.SaveProduct(ctx, product); err != nil {
		return fmt.Errorf("creating %s: %w", ProductKind, err)
	}
	return nil
}

type CreateWebhookOptions struct {
	GlobalOptions

	Url       string
	EventType string
	Enabled   bool
}

func DefaultCreateWebhookOptions() *CreateWebhookOptions {
	return &CreateWebhookOptions{
		GlobalOptions: DefaultGlobalOptions(),
		Enabled:       true,
	}
}

func NewCmdCreateWebhook() *cobra.Command {
	o := DefaultCreateWebhookOptions()
	cmd := &cobra.Command{
		Use:     "webhook --url URL --event-type TYPE",
		Short:   "Register a webhook",
		Example: "create webhook --url https://example.com/hooks/catalog --event-type product.created",
		Args:    cobra.NoArgs,
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

func (o *CreateWebhookOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVar(&o.Url, "url", o.Url, "Address the backend calls")
	fs.StringVar(&o.EventType, "event-type", o.EventType, "Event that triggers the webhook, e.g. product.created")
	fs.BoolVar(&o.Enabled, "enabled", o.Enabled, "Whether the webhook is enabled")
}

func (o *CreateWebhookOptions) Run(ctx context.Context, args []string) error {
	c, err := o.Client()
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	d, queue := o.Dashboard(c, dashboard.NewRenderer(os.Stdout, dashboard.FormatTable), nil)
	defer queue.Close()

	webhook := api.WebhookCreate{Url: o.Url, EventType: o.EventType, Enabled: o.Enabled}
	if _, err := d.SaveWebhook(ctx, webhook); err != nil {
		return fmt.Errorf("creating %s: %w", WebhookKind, err)
	}
	return nil
}
