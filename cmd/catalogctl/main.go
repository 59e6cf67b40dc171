package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/productimporter/catalogctl/internal/cli"
	"github.com/productimporter/catalogctl/pkg/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	logger := log.InitLog(zap.NewAtomicLevelAt(zapcore.InfoLevel))
	undo := zap.ReplaceGlobals(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewCatalogCtlCommand().ExecuteContext(ctx)
	cancel()

	_ = zap.L().Sync()
	undo()
	if err != nil {
		os.Exit(1)
	}
}

func NewCatalogCtlCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalogctl [flags] [options]",
		Short: "catalogctl manages the product catalog and follows its import and bulk delete jobs.",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
			os.Exit(1)
		},
	}
	cmd.AddCommand(cli.NewCmdImport())
	cmd.AddCommand(cli.NewCmdGet())
	cmd.AddCommand(cli.NewCmdCreate())
	cmd.AddCommand(cli.NewCmdUpdate())
	cmd.AddCommand(cli.NewCmdDelete())
	cmd.AddCommand(cli.NewCmdWatch())
	cmd.AddCommand(cli.NewCmdConfigure())
	cmd.AddCommand(cli.NewCmdVersion())

	return cmd
}
