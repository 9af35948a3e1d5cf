package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"nagato/internal/config"
	"nagato/internal/logging"
)

var timeout time.Duration

var rootCmd = &cobra.Command{
	Use:           "nagato",
	Short:         "A book-recommending microblog bot",
	Long:          "Answers mentions with greetings, the timeline speed, random phrases and book recommendations.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Abort the command after this long (0 disables)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(refollowCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(repliesCmd)
}

// commandContext returns a context cancelled by SIGINT/SIGTERM or the --timeout flag.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	if timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

// loadConfig reads the environment and installs the process logger.
func loadConfig() (*config.Config, *slog.Logger) {
	cfg := config.Load()
	logger := logging.New(cfg, os.Stderr, &http.Client{Timeout: cfg.HTTPTimeout})
	slog.SetDefault(logger)
	return cfg, logger
}
