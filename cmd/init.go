package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kamusis/kbot/internal/config"
	"github.com/kamusis/kbot/internal/knowledge"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create ~/.kbot with a default config and knowledge base",
	Long: `Initialize kbot's home directory at ~/.kbot/.

Creates, when missing:
  ~/.kbot/kbot.yaml                          default configuration
  ~/.kbot/.env                               commented KBOT_* override template
  ~/.kbot/knowledge/comprehensive.json       starter knowledge base`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(_ *cobra.Command, _ []string) error {
	// ── 1. Resolve ~/.kbot directory ──────────────────────────────────────────
	kbotDir, err := config.KbotDir()
	if err != nil {
		return err
	}
	cfgPath, err := config.ConfigPath()
	if err != nil {
		return err
	}

	// ── 2. Create ~/.kbot/ if it doesn't exist ────────────────────────────────
	if err := os.MkdirAll(kbotDir, 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", kbotDir, err)
	}
	printOK("", fmt.Sprintf("kbot directory ready: %s", kbotDir))

	// ── 3. Write kbot.yaml if missing ─────────────────────────────────────────
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		cfg, err := config.DefaultConfig()
		if err != nil {
			return err
		}
		if err := config.Save(cfg); err != nil {
			return err
		}
		printOK("", fmt.Sprintf("Config written: %s", cfgPath))
	} else {
		printSkip("", fmt.Sprintf("Config already exists: %s", cfgPath))
	}

	// ── 4. Write .env template if missing ─────────────────────────────────────
	envPath, err := config.DotEnvPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		if err := config.EnsureDotEnvTemplate(); err != nil {
			return err
		}
		printOK("", fmt.Sprintf(".env template written: %s", envPath))
	} else {
		printSkip("", fmt.Sprintf(".env already exists: %s", envPath))
	}

	// ── 5. Seed the knowledge directory ───────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := seedKnowledge(cfg.KnowledgePath); err != nil {
		return err
	}

	fmt.Println("\n✓  kbot init complete. Run 'kbot doctor' to verify your environment.")
	return nil
}

// seedKnowledge writes the built-in comprehensive entries to dir when it holds no
// knowledge files yet. A knowledge path pointing at a file is left alone.
func seedKnowledge(dir string) error {
	if knowledge.IsKnowledgeFile(dir) {
		printSkip("", fmt.Sprintf("knowledge_path is a file, not seeding: %s", dir))
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", dir, err)
	}
	if cats, err := knowledge.LoadDir(dir); err == nil && len(cats) > 0 {
		printSkip("", fmt.Sprintf("Knowledge base already present: %s", dir))
		return nil
	}

	type record struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
	}
	var records []record
	for _, e := range knowledge.Starter() {
		records = append(records, record{Question: e.Question, Answer: e.Answer})
	}
	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(dir, knowledge.CategoryComprehensive+".json")
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	printOK("", fmt.Sprintf("Knowledge base written: %s (%d entries)", path, len(records)))
	return nil
}
