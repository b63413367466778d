package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// envFile is an optional .env file loaded before reading the environment.
	envFile string
	// logLevel overrides LOG_LEVEL when set.
	logLevel string

	rootCmd = &cobra.Command{
		Use:   "arrangement-bot",
		Short: "Run the arrangement negotiation bot.",
		Long: `Starts the Telegram bot that negotiates arrangements between two parties.

Configuration is read from the environment (TELEGRAM_TOKEN, TIMEZONE, TARGET_GROUPS, ...)
and optionally from a .env file passed with --env-file.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return run(ctx, envFile, logLevel)
		},
		SilenceUsage: true,
	}
)

// Execute runs the bot CLI and exits with non-zero status on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&envFile, "env-file", "e", ".env", "path to .env file")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "log level override (debug, info, warn, error)")
}
