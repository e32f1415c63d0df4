package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"expopanel/internal/interfaces/cli/account"
	"expopanel/internal/interfaces/cli/app"
	"expopanel/internal/interfaces/cli/records"
	"expopanel/internal/shared/version"
)

func main() {
	opts := &app.Options{}

	rootCmd := &cobra.Command{
		Use:           "expopanel",
		Short:         "Expopanel - trade show administration client",
		Long:          `Expopanel manages exhibitors, their staff accounts, the event agenda and banners of a trade show backend.`,
		Version:       version.Current(),
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&opts.Output, "output", "o", "table", "Output format (table, yaml, json)")

	rootCmd.AddCommand(
		account.NewLoginCommand(opts),
		account.NewLogoutCommand(opts),
		account.NewWhoamiCommand(opts),
		account.NewMenuCommand(opts),
		records.NewRequestsCommand(opts),
	)
	rootCmd.AddCommand(records.NewCommands(opts)...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		if !app.IsReported(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
