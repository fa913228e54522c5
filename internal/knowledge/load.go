package knowledge

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kamusis/kbot/internal/match"
	"gopkg.in/yaml.v3"
)

// ValidationError reports a knowledge record that lacks a question or an answer.
type ValidationError struct {
	Path  string
	Index int
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: entry %d: missing %s", e.Path, e.Index, e.Field)
}

type record struct {
	Question *string `json:"question" yaml:"question"`
	Answer   *string `json:"answer" yaml:"answer"`
}

// ConflictMarker tags the copies kbot kb import writes when an incoming file
// differs from one already in the knowledge directory. Such files are not loaded.
const ConflictMarker = ".conflict-"

// IsKnowledgeFile reports whether path has an extension LoadFile understands and
// is not an unresolved import conflict.
func IsKnowledgeFile(path string) bool {
	if strings.Contains(filepath.Base(path), ConflictMarker) {
		return false
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// LoadFile reads a JSON array or YAML sequence of {question, answer} records and
// assigns every entry to category. Questions are normalized. The first record
// without a question or answer fails the whole file.
func LoadFile(path, category string) ([]match.Entry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read knowledge file %s: %w", path, err)
	}

	var records []record
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(b, &records); err != nil {
			return nil, fmt.Errorf("invalid knowledge JSON %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &records); err != nil {
			return nil, fmt.Errorf("invalid knowledge YAML %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported knowledge file type: %s", path)
	}

	out := make([]match.Entry, 0, len(records))
	for i, r := range records {
		if r.Question == nil || strings.TrimSpace(*r.Question) == "" {
			return nil, &ValidationError{Path: path, Index: i, Field: "question"}
		}
		if r.Answer == nil || strings.TrimSpace(*r.Answer) == "" {
			return nil, &ValidationError{Path: path, Index: i, Field: "answer"}
		}
		out = append(out, match.Entry{
			Question: Normalize(*r.Question),
			Answer:   *r.Answer,
			Category: category,
		})
	}
	return out, nil
}

// LoadDir scans dir recursively for knowledge files. Each file becomes a category
// named after its base name without extension, in lexical path order.
func LoadDir(dir string) ([]Category, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot stat knowledge directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("knowledge path is not a directory: %s", dir)
	}

	var out []Category
	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsKnowledgeFile(path) {
			return nil
		}
		name := strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))
		entries, err := LoadFile(path, name)
		if err != nil {
			return err
		}
		out = append(out, Category{Name: name, Entries: entries})
		return nil
	}
	if err := filepath.WalkDir(dir, walkFn); err != nil {
		return nil, fmt.Errorf("cannot load knowledge directory: %w", err)
	}
	return out, nil
}

// Load reads path, which is either a single knowledge file (loaded as the
// comprehensive category) or a directory of them, and merges the result with the
// built-in categories. A loaded category named like a built-in one replaces it.
func Load(path string) (*Base, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot stat knowledge path %s: %w", path, err)
	}

	var loaded []Category
	if info.IsDir() {
		loaded, err = LoadDir(path)
		if err != nil {
			return nil, err
		}
	} else {
		entries, err := LoadFile(path, CategoryComprehensive)
		if err != nil {
			return nil, err
		}
		loaded = []Category{{Name: CategoryComprehensive, Entries: entries}}
	}
	if len(loaded) == 0 {
		return nil, fmt.Errorf("no knowledge files found under %s", path)
	}

	byName := make(map[string]Category, len(loaded))
	for _, c := range loaded {
		byName[c.Name] = c
	}

	defaults := WithDefaults().Categories()
	cats := make([]Category, 0, len(loaded)+len(defaults))
	if c, ok := byName[CategoryComprehensive]; ok {
		cats = append(cats, c)
	}
	builtin := map[string]bool{CategoryComprehensive: true}
	for _, d := range defaults {
		builtin[d.Name] = true
		if c, ok := byName[d.Name]; ok {
			cats = append(cats, c)
			continue
		}
		cats = append(cats, d)
	}
	for _, c := range loaded {
		if !builtin[c.Name] {
			cats = append(cats, c)
		}
	}
	return NewBase(cats...), nil
}
