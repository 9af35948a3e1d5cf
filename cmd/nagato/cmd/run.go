package cmd

import (
	"time"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one pass: answer a mention, maybe post, refollow",
	Long: "Answers the oldest unanswered mention, posts a random phrase with probability " +
		"1/RANDOM_POST_ODDS, logs the home timeline speed and, with REFOLLOW_ENABLED, " +
		"reconciles followers. Metrics are pushed when PUSHGATEWAY_URL is set.",
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	cfg, logger := loadConfig()
	a := newApp(cfg, logger)
	defer a.Close()

	started := time.Now()
	defer func() {
		a.recorder.MarkRun(started, time.Now())
		a.push()
	}()

	api, err := a.api(ctx)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return err
	}
	b, err := a.bot(ctx, api, botOptions{replies: true, refollow: cfg.RefollowEnabled})
	if err != nil {
		logger.Error("failed to start", "error", err)
		return err
	}

	if _, err := b.Run(ctx); err != nil {
		logger.Error("an error occurred while running the bot", "error", err)
		return err
	}
	return nil
}
