package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var flagLogLevel string

var rootCmd = &cobra.Command{
	Use:          "kbot",
	Short:        "Offline knowledge-base chatbot",
	SilenceUsage: true, // don't print usage on operational errors
	Long: `kbot answers questions from a local question/answer knowledge base using
fuzzy matching, solves simple arithmetic and tells the time and date.
Configuration lives in ~/.kbot/kbot.yaml.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return setupLogger(flagLogLevel)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagLogLevel, "log-level", "l", "warn", "Logging level (debug, info, warn, error)")
}

// setupLogger installs a stderr text logger at the given level as slog's default.
func setupLogger(levelStr string) error {
	var level slog.Level
	switch strings.ToLower(levelStr) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// Execute is called by main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
