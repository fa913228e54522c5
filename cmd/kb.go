package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/kamusis/kbot/internal/importer"
	"github.com/kamusis/kbot/internal/knowledge"
	"github.com/spf13/cobra"
)

var (
	flagKBSearchLimit int
	flagKBSource      string
)

var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Inspect the knowledge base",
}

var kbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show entry counts per category",
	Args:  cobra.NoArgs,
	RunE:  runKBStats,
}

var kbSearchCmd = &cobra.Command{
	Use:   "search <terms>",
	Short: "List entries containing every term",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runKBSearch,
}

var kbTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Run the knowledge base self test",
	Args:  cobra.NoArgs,
	RunE:  runKBTest,
}

var kbImportCmd = &cobra.Command{
	Use:   "import <file-or-dir>",
	Short: "Copy knowledge files into the knowledge directory",
	Long: `Validate and copy JSON/YAML knowledge files into the configured knowledge
directory. Each file becomes a category named after it.

Identical files are skipped. A file that differs from one already present is
stored as <name>.conflict-<source>.<ext> and ignored until resolved; run
'kbot doctor fix' to discard them.`,
	Args: cobra.ExactArgs(1),
	RunE: runKBImport,
}

func init() {
	kbImportCmd.Flags().StringVar(&flagKBSource, "source", "import", "Label used in conflict file names")
	kbSearchCmd.Flags().IntVar(&flagKBSearchLimit, "limit", 20, "Maximum number of entries to list (0 = all)")
	kbCmd.AddCommand(kbStatsCmd, kbSearchCmd, kbTestCmd, kbImportCmd)
	rootCmd.AddCommand(kbCmd)
}

func runKBStats(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	kb := loadKnowledge(cfg)

	printSection("Knowledge base")
	fmt.Printf("\nSource: %s\nEntries: %d\n\n", cfg.KnowledgePath, kb.Len())
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, s := range kb.Stats() {
		sample := "-"
		if s.Sample != nil {
			sample = fmt.Sprintf("%q -> %q", s.Sample.Question, truncate(s.Sample.Answer, 50))
		}
		fmt.Fprintf(w, "  %s\t%d\t%s\n", s.Name, s.Count, sample)
	}
	return w.Flush()
}

func runKBSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	kb := loadKnowledge(cfg)

	query := strings.Join(args, " ")
	hits := knowledge.Search(kb.Entries(), query, flagKBSearchLimit)
	fmt.Printf("\nkbot kb search %q\n\n", query)
	fmt.Printf("Results (%d found):\n", len(hits))
	for i, e := range hits {
		fmt.Printf("  %d. [%s] %s\n", i+1, e.Category, e.Question)
		fmt.Printf("     - %s\n", truncate(e.Answer, 100))
	}
	return nil
}

func runKBTest(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	b, err := newBot(cfg, false)
	if err != nil {
		return err
	}
	msg, res := b.SelfTest()
	if res == nil {
		printWarn("", msg)
		return nil
	}
	printOK("", msg)
	return nil
}

func runKBImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	dst := cfg.KnowledgePath
	if knowledge.IsKnowledgeFile(dst) {
		return fmt.Errorf("knowledge_path %s is a single file; point it at a directory to import", dst)
	}

	res, err := importer.Import(args[0], dst, flagKBSource)
	if err != nil {
		return err
	}

	printSection("kbot kb import")
	fmt.Println()
	printOK("", fmt.Sprintf("%d file(s) imported (%d entries)", res.Imported, res.Entries))
	if res.Skipped > 0 {
		printSkip("", fmt.Sprintf("%d identical file(s) skipped", res.Skipped))
	}
	for _, c := range res.Conflicts {
		printWarn("", fmt.Sprintf("conflict: %s kept, incoming saved as %s", c.Original, c.Conflict))
	}
	for _, inv := range res.Invalid {
		printErr("", fmt.Sprintf("invalid: %v", inv.Err))
	}
	if len(res.Invalid) > 0 {
		return fmt.Errorf("%d file(s) failed validation", len(res.Invalid))
	}
	return nil
}

// truncate shortens s to n runes, appending "..." when cut.
func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "..."
}
