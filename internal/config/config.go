package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the in-memory representation of ~/.kbot/kbot.yaml.
type Config struct {
	KnowledgePath string  `yaml:"knowledge_path"`
	Threshold     float64 `yaml:"threshold"`
	HistoryPath   string  `yaml:"history_path,omitempty"`
	ServerAddr    string  `yaml:"server_addr,omitempty"`
}

// Environment keys that override values from kbot.yaml.
const (
	EnvKnowledgePath = "KBOT_KNOWLEDGE_PATH"
	EnvThreshold     = "KBOT_THRESHOLD"
	EnvHistoryPath   = "KBOT_HISTORY_PATH"
	EnvServerAddr    = "KBOT_SERVER_ADDR"
)

// KbotDir returns the absolute path to ~/.kbot/.
func KbotDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".kbot"), nil
}

// ConfigPath returns the absolute path to ~/.kbot/kbot.yaml.
func ConfigPath() (string, error) {
	dir, err := KbotDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "kbot.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// DefaultConfig returns the default Config written on first kbot init.
func DefaultConfig() (*Config, error) {
	dir, err := KbotDir()
	if err != nil {
		return nil, err
	}
	return &Config{
		KnowledgePath: filepath.Join(dir, "knowledge"),
		Threshold:     0.6,
		HistoryPath:   filepath.Join(dir, "history.json"),
		ServerAddr:    "127.0.0.1:8080",
	}, nil
}

// Load reads ~/.kbot/kbot.yaml on top of the defaults and applies environment
// overrides. A missing file is not an error.
func Load() (*Config, error) {
	cfg, err := DefaultConfig()
	if err != nil {
		return nil, err
	}
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
		}
	}

	if err := cfg.ApplyOverrides(); err != nil {
		return nil, err
	}
	// Expand ~ in paths at load time.
	if cfg.KnowledgePath, err = ExpandPath(cfg.KnowledgePath); err != nil {
		return nil, err
	}
	if cfg.HistoryPath, err = ExpandPath(cfg.HistoryPath); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyOverrides replaces fields with values from the environment or ~/.kbot/.env.
func (c *Config) ApplyOverrides() error {
	values := map[string]*string{
		EnvKnowledgePath: &c.KnowledgePath,
		EnvHistoryPath:   &c.HistoryPath,
		EnvServerAddr:    &c.ServerAddr,
	}
	for key, dst := range values {
		v, err := GetConfigValue(key)
		if err != nil {
			return err
		}
		if v != "" {
			*dst = v
		}
	}

	v, err := GetConfigValue(EnvThreshold)
	if err != nil {
		return err
	}
	if v != "" {
		t, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvThreshold, v, err)
		}
		c.Threshold = t
	}
	return nil
}

// Validate checks that the config can drive the chatbot.
func (c *Config) Validate() error {
	if math.IsNaN(c.Threshold) || c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("threshold must be within [0,1], got %v", c.Threshold)
	}
	if strings.TrimSpace(c.KnowledgePath) == "" {
		return fmt.Errorf("knowledge_path is not set")
	}
	return nil
}

// Save marshals cfg and writes it to ~/.kbot/kbot.yaml.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}
