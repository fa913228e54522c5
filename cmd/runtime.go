package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kamusis/kbot/internal/bot"
	"github.com/kamusis/kbot/internal/config"
	"github.com/kamusis/kbot/internal/history"
	"github.com/kamusis/kbot/internal/knowledge"
	"github.com/kamusis/kbot/internal/match"
	"github.com/spf13/cobra"
)

// loadConfig loads and validates the config, applying a --threshold flag when the
// command has one and it was set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("cannot load config: %w\nRun 'kbot init' first.", err)
	}
	if f := cmd.Flags().Lookup("threshold"); f != nil && f.Changed {
		t, err := cmd.Flags().GetFloat64("threshold")
		if err != nil {
			return nil, err
		}
		cfg.Threshold = t
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadKnowledge loads the configured knowledge base, falling back to the built-in
// one with a warning when it cannot be read.
func loadKnowledge(cfg *config.Config) *knowledge.Base {
	kb, err := knowledge.Load(cfg.KnowledgePath)
	if err != nil {
		printWarn("", fmt.Sprintf("cannot load knowledge base, using built-in fallback: %v", err))
		return knowledge.Fallback(time.Now())
	}
	slog.Info("knowledge base loaded", "path", cfg.KnowledgePath, "entries", kb.Len())
	return kb
}

// newBot builds the bot for cfg. History is attached unless withHistory is false
// or no history path is configured.
func newBot(cfg *config.Config, withHistory bool, opts ...bot.Option) (*bot.Bot, error) {
	m := match.New(match.WithThreshold(cfg.Threshold), match.WithLogger(slog.Default()))
	all := []bot.Option{bot.WithMatcher(m), bot.WithLogger(slog.Default())}
	if withHistory && cfg.HistoryPath != "" {
		all = append(all, bot.WithHistory(history.NewStore(cfg.HistoryPath)))
	}
	return bot.New(loadKnowledge(cfg), append(all, opts...)...)
}
