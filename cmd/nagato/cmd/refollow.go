package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"nagato/internal/jobs"
)

var refollowCmd = &cobra.Command{
	Use:   "refollow",
	Short: "Follow back followers and unfollow accounts that do not follow back",
	RunE:  runRefollow,
}

func runRefollow(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	cfg, logger := loadConfig()
	a := newApp(cfg, logger)
	defer a.Close()
	defer a.push()

	api, err := a.api(ctx)
	if err != nil {
		return err
	}

	result, err := jobs.NewRefollower(api, a.recorder, logger, time.Second).Run(ctx)
	fmt.Fprintf(cmd.OutOrStdout(), "followed %d, unfollowed %d, failed %d\n",
		len(result.Followed), len(result.Unfollowed), result.Failed)
	if err != nil {
		logger.Error("refollow failed", "error", err)
		return err
	}
	return nil
}
