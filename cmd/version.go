package cmd

import (
	"fmt"
	"runtime"

	"github.com/kamusis/kbot/internal/bot"
	"github.com/kamusis/kbot/internal/calc"
	"github.com/kamusis/kbot/internal/config"
	"github.com/kamusis/kbot/internal/match"
	"github.com/spf13/cobra"
)

// Set with -ldflags "-X github.com/kamusis/kbot/cmd.version=...".
var (
	version   = "dev"
	commit    = ""
	buildDate = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show kbot version and build information",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(_ *cobra.Command, _ []string) error {
	cfgPath, err := config.ConfigPath()
	if err != nil {
		cfgPath = "n/a"
	}
	fmt.Printf("kbot %s\n", version)
	fmt.Printf("  Commit:        %s\n", emptyAsNA(commit))
	fmt.Printf("  Build Date:    %s\n", emptyAsNA(buildDate))
	fmt.Printf("  Go / Platform: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	fmt.Printf("  Config:        %s\n", cfgPath)
	fmt.Printf("  Matcher:       Levenshtein similarity, default threshold %.2f\n", match.DefaultThreshold)
	fmt.Printf("  Limits:        %d characters per message, nesting depth %d\n", bot.MaxMessageRunes, calc.MaxDepth)
	return nil
}

func emptyAsNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}
