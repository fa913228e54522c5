package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/kamusis/kbot/internal/knowledge"
	"github.com/kamusis/kbot/internal/match"
	"github.com/spf13/cobra"
)

var (
	flagAskThreshold float64
	flagAskTop       int
	flagAskNoHistory bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a single question",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().Float64Var(&flagAskThreshold, "threshold", match.DefaultThreshold, "Minimum similarity for a knowledge base answer")
	askCmd.Flags().IntVar(&flagAskTop, "top", 0, "Also list the N closest knowledge base questions")
	askCmd.Flags().BoolVar(&flagAskNoHistory, "no-history", false, "Do not record the exchange in the history")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	b, err := newBot(cfg, !flagAskNoHistory)
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	reply, err := b.Respond(query)
	if err != nil {
		return err
	}
	fmt.Println(reply.Text)

	if reply.Match != nil {
		printInfo(string(reply.Kind), fmt.Sprintf("matched %q (confidence %.2f)", reply.Match.Entry.Question, reply.Match.Confidence))
	} else {
		printInfo(string(reply.Kind), "answered without the knowledge base")
	}

	if flagAskTop > 0 {
		ranked := match.Rank(knowledge.Normalize(query), b.Knowledge().Entries(), flagAskTop)
		printCandidates(os.Stdout, ranked, cfg.Threshold)
	}
	return nil
}

// printCandidates lists ranked entries, flagging those at or above threshold.
func printCandidates(out io.Writer, ranked []match.Result, threshold float64) {
	fmt.Fprintf(out, "\nClosest questions (threshold %.2f):\n", threshold)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for i, r := range ranked {
		mark := " "
		if r.Confidence >= threshold {
			mark = "✓"
		}
		fmt.Fprintf(w, "  %d.\t%s\t[%.3f]\t%s\t(%s)\n", i+1, mark, r.Confidence, r.Entry.Question, r.Entry.Category)
	}
	_ = w.Flush()
}
