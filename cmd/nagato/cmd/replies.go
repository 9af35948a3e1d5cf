package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var repliesLimit int

var repliesCmd = &cobra.Command{
	Use:   "replies",
	Short: "List the most recent replies from the reply log",
	RunE:  runReplies,
}

func init() {
	repliesCmd.Flags().IntVarP(&repliesLimit, "limit", "n", 20, "Number of replies to show")
}

func runReplies(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	cfg, logger := loadConfig()
	a := newApp(cfg, logger)
	defer a.Close()

	store, err := a.replyStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errNoReplyStore
	}

	replies, err := store.RecentReplies(ctx, repliesLimit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STATUS\tUSER\tINTENT\tREPLIED\tTEXT")
	for _, r := range replies {
		text := r.Text
		if r.URL != "" {
			text += " " + r.URL
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.StatusID, r.UserID, r.Intent, r.RepliedAt.Local().Format(time.DateTime), text)
	}
	return w.Flush()
}
