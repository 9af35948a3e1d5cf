package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"nagato/internal/models"
)

var showKeyphrases bool

var recommendCmd = &cobra.Command{
	Use:   "recommend <user-id>",
	Short: "Recommend a book for a user without posting anything",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecommend,
}

func init() {
	recommendCmd.Flags().BoolVar(&showKeyphrases, "keyphrases", false, "Also print the extracted key phrases")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	cfg, logger := loadConfig()
	a := newApp(cfg, logger)
	defer a.Close()

	api, err := a.api(ctx)
	if err != nil {
		return err
	}
	b, err := a.bot(ctx, api, botOptions{})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if showKeyphrases {
		keyphrases, err := b.UserKeyphrases(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "key phrases: %s\n", strings.Join(keyphrases, ", "))
	}

	book, err := b.RecommendBook(ctx, args[0])
	if err != nil {
		return err
	}
	if book == nil {
		fmt.Fprintln(out, models.UnknownBook)
		return nil
	}
	fmt.Fprintln(out, book.String())
	return nil
}
