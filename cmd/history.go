package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/kamusis/kbot/internal/history"
	"github.com/spf13/cobra"
)

var flagHistoryOut string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show, clear or export the conversation history",
}

var historyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the conversation history",
	Args:  cobra.NoArgs,
	RunE:  runHistoryShow,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every recorded message",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClear,
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the history as JSON",
	Args:  cobra.NoArgs,
	RunE:  runHistoryExport,
}

func init() {
	historyExportCmd.Flags().StringVarP(&flagHistoryOut, "out", "o", "", "Output file (default chatbot-conversation-<date>.json, - for stdout)")
	historyCmd.AddCommand(historyShowCmd, historyClearCmd, historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}

func historyStore(cmd *cobra.Command) (*history.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.HistoryPath == "" {
		return nil, fmt.Errorf("history_path is not configured")
	}
	return history.NewStore(cfg.HistoryPath), nil
}

func runHistoryShow(cmd *cobra.Command, _ []string) error {
	st, err := historyStore(cmd)
	if err != nil {
		return err
	}
	msgs, err := st.Load()
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		printSkip("", "no conversation recorded yet")
		return nil
	}
	for _, m := range msgs {
		who := "you"
		if m.Type == history.TypeBot {
			who = "kbot"
		}
		fmt.Printf("[%s] %s> %s\n", m.Timestamp.Local().Format("2006-01-02 15:04"), who, m.Message)
	}
	return nil
}

func runHistoryClear(cmd *cobra.Command, _ []string) error {
	st, err := historyStore(cmd)
	if err != nil {
		return err
	}
	if err := st.Clear(); err != nil {
		return err
	}
	printOK("", fmt.Sprintf("history cleared: %s", st.Path()))
	return nil
}

func runHistoryExport(cmd *cobra.Command, _ []string) error {
	st, err := historyStore(cmd)
	if err != nil {
		return err
	}
	now := time.Now()
	if flagHistoryOut == "-" {
		return st.Export(os.Stdout, now)
	}
	out := flagHistoryOut
	if out == "" {
		out = history.ExportFileName(now)
	}
	if err := exportHistory(st, out, now); err != nil {
		return err
	}
	printOK("", fmt.Sprintf("history exported: %s", out))
	return nil
}

// exportHistory writes an export of st to path.
func exportHistory(st *history.Store, path string, now time.Time) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", path, err)
	}
	if err := st.Export(f, now); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
