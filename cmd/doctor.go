package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kamusis/kbot/internal/config"
	"github.com/kamusis/kbot/internal/history"
	"github.com/kamusis/kbot/internal/importer"
	"github.com/kamusis/kbot/internal/knowledge"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run pre-flight environment checks",
	Long: `Check that kbot's config, knowledge base and history file are usable.
Run this command when something seems wrong, or before filing a bug report.`,
	RunE: runDoctor,
}

func init() {
	doctorCmd.AddCommand(doctorFixCmd)
	rootCmd.AddCommand(doctorCmd)
}

var doctorFixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Automatically fix detected issues",
	Long: `Fix detected issues in the kbot environment.

Currently fixes:
  - Unresolved import conflicts: deletes all .conflict-* files from the knowledge directory

Run 'kbot doctor' first to see what will be fixed.`,
	RunE: runDoctorFix,
}

func runDoctorFix(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	printSection("kbot doctor fix")

	fmt.Println("\n[ Unresolved conflicts ]")
	conflicts, err := importer.FindConflicts(cfg.KnowledgePath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("cannot scan %s: %w", cfg.KnowledgePath, err)
	}
	if len(conflicts) == 0 {
		printOK("", "no conflict files found, nothing to fix")
		return nil
	}

	var failed int
	for _, rel := range conflicts {
		full := filepath.Join(cfg.KnowledgePath, rel)
		if err := os.Remove(full); err != nil {
			printErr("", fmt.Sprintf("cannot delete %s: %v", rel, err))
			failed++
		} else {
			printOK("", fmt.Sprintf("deleted %s", rel))
		}
	}

	fmt.Println()
	if failed > 0 {
		return fmt.Errorf("%d file(s) could not be deleted", failed)
	}
	fmt.Printf("  ✓  %d conflict file(s) removed.\n", len(conflicts))
	return nil
}

func runDoctor(_ *cobra.Command, _ []string) error {
	allOK := true
	failD := func(format string, args ...any) {
		printErr("", fmt.Sprintf(format, args...))
		allOK = false
	}

	printSection("kbot doctor")
	fmt.Println()

	// ── Check 1: config file ──────────────────────────────────────────────────
	fmt.Println("[ kbot.yaml ]")
	cfgPath, err := config.ConfigPath()
	if err != nil {
		failD("cannot determine home directory: %v", err)
	} else if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		printWarn("", fmt.Sprintf("%s not found, using defaults (run 'kbot init' to create it)", cfgPath))
	} else {
		printOK("", fmt.Sprintf("found: %s", cfgPath))
	}
	cfg, loadErr := config.Load()
	if loadErr == nil {
		loadErr = cfg.Validate()
	}
	if loadErr != nil {
		failD("invalid config: %v", loadErr)
	} else {
		printOK("", fmt.Sprintf("threshold %.2f", cfg.Threshold))
	}
	fmt.Println()

	// ── Check 2: knowledge base ───────────────────────────────────────────────
	fmt.Println("[ Knowledge base ]")
	if loadErr == nil {
		kb, err := knowledge.Load(cfg.KnowledgePath)
		if err != nil {
			failD("%v", err)
			printInfo("", fmt.Sprintf("chat will use the built-in fallback (%d entries)", knowledge.Fallback(time.Now()).Len()))
		} else {
			printOK("", fmt.Sprintf("%d entries in %d categories: %s", kb.Len(), len(kb.Categories()), cfg.KnowledgePath))
		}
	} else {
		printWarn("", "skipped (kbot.yaml not loaded)")
	}
	fmt.Println()

	// ── Check 3: unresolved import conflicts ──────────────────────────────────
	fmt.Println("[ Unresolved conflicts ]")
	if loadErr == nil {
		conflicts, err := importer.FindConflicts(cfg.KnowledgePath)
		switch {
		case err != nil && os.IsNotExist(err):
			printSkip("", "knowledge directory does not exist")
		case err != nil:
			failD("cannot scan %s: %v", cfg.KnowledgePath, err)
		case len(conflicts) == 0:
			printOK("", "no unresolved conflict files found")
		default:
			for _, c := range conflicts {
				printWarn("", c)
			}
			fmt.Printf("\n  ⚠  %d unresolved conflict file(s) found.\n", len(conflicts))
			fmt.Println("     Merge what you need into the original files, then run 'kbot doctor fix'.")
			allOK = false
		}
	} else {
		printWarn("", "skipped (kbot.yaml not loaded)")
	}
	fmt.Println()

	// ── Check 4: history file ─────────────────────────────────────────────────
	fmt.Println("[ History ]")
	switch {
	case loadErr != nil:
		printWarn("", "skipped (kbot.yaml not loaded)")
	case cfg.HistoryPath == "":
		printSkip("", "history disabled (history_path is empty)")
	default:
		if err := checkHistoryWritable(cfg.HistoryPath); err != nil {
			failD("%v", err)
		} else {
			printOK("", fmt.Sprintf("writable: %s", cfg.HistoryPath))
		}
	}
	fmt.Println()

	// ── Summary ───────────────────────────────────────────────────────────────
	fmt.Println("===================")
	if allOK {
		fmt.Println("✓  All checks passed. kbot is ready to use.")
	} else {
		fmt.Fprintln(os.Stderr, "✗  One or more checks failed. See details above.")
		return fmt.Errorf("doctor found issues")
	}
	return nil
}

// checkHistoryWritable verifies that the history file parses and that its
// directory accepts new files.
func checkHistoryWritable(path string) error {
	if _, err := history.NewStore(path).Load(); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", dir, err)
	}
	f, err := os.CreateTemp(dir, ".kbot-doctor-*")
	if err != nil {
		return fmt.Errorf("history directory is not writable: %w", err)
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}
