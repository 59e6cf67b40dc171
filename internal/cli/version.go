package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/productimporter/catalogctl/pkg/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thoas/go-funk"
	"sigs.k8s.io/yaml"
)

type VersionOptions struct {
	Output string
}

func DefaultVersionOptions() *VersionOptions {
	return &VersionOptions{
		Output: "",
	}
}

func NewCmdVersion() *cobra.Command {
	o := DefaultVersionOptions()
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print catalogctl version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context(), args)
		},
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *VersionOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.Output, "output", "o", o.Output, "Output format. One of: (json, yaml).")
}

func (o *VersionOptions) Validate(args []string) error {
	if len(o.Output) > 0 && !funk.ContainsString([]string{"json", "yaml"}, o.Output) {
		return fmt.Errorf("output format must be one of %s", strings.Join([]string{"json", "yaml"}, ", "))
	}
	return nil
}

func (o *VersionOptions) Run(ctx context.Context, args []string) error {
	versionInfo := version.Get()
	switch o.Output {
	case "json":
		out, err := json.Marshal(versionInfo)
		if err != nil {
			return fmt.Errorf("marshalling version: %w", err)
		}
		fmt.Println(string(out))
	case "yaml":
		out, err := yaml.Marshal(versionInfo)
		if err != nil {
			return fmt.Errorf("marshalling version: %w", err)
		}
		fmt.Print(string(out))
	default:
		fmt.Printf("catalogctl Version: %s\n", versionInfo.String())
	}
	return nil
}
