// Package importer copies knowledge files into the kbot knowledge directory,
// validating each file first and resolving name clashes by MD5 fingerprint.
package importer

import (
	"crypto/md5"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kamusis/kbot/internal/knowledge"
)

// ConflictPair records a conflict found during import.
type ConflictPair struct {
	Original string // path of the file already in the knowledge directory
	Conflict string // path where the incoming conflicting version was stored
	Source   string // source label
}

// Invalid records a knowledge file that failed validation and was not copied.
type Invalid struct {
	Path string
	Err  error
}

// Result is returned by Import.
type Result struct {
	Conflicts []ConflictPair
	Invalid   []Invalid
	Imported  int // number of files actually copied
	Skipped   int // identical duplicates skipped
	Entries   int // entries across every copied file
}

// Import copies the knowledge file at src, or every knowledge file below the
// directory src, into dstDir. Files that do not load are reported in
// Result.Invalid and left out. A file that already exists with different content
// is stored next to it under a conflict name built from source.
func Import(src, dstDir, source string) (*Result, error) {
	info, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("cannot stat %s: %w", src, err)
	}
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create %s: %w", dstDir, err)
	}

	result := &Result{}
	if !info.IsDir() {
		if !knowledge.IsKnowledgeFile(src) {
			return nil, fmt.Errorf("not a knowledge file (want .json, .yaml or .yml): %s", src)
		}
		return result, importFile(src, filepath.Join(dstDir, filepath.Base(src)), source, result)
	}

	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !knowledge.IsKnowledgeFile(path) {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		return importFile(path, filepath.Join(dstDir, rel), source, result)
	})
	return result, err
}

func importFile(path, dst, source string, result *Result) error {
	entries, err := knowledge.LoadFile(path, "")
	if err != nil {
		result.Invalid = append(result.Invalid, Invalid{Path: path, Err: err})
		return nil
	}

	if _, err := os.Stat(dst); err == nil {
		srcMD5, err := fileMD5(path)
		if err != nil {
			return fmt.Errorf("md5 %s: %w", path, err)
		}
		dstMD5, err := fileMD5(dst)
		if err != nil {
			return fmt.Errorf("md5 %s: %w", dst, err)
		}
		if srcMD5 == dstMD5 {
			result.Skipped++
			return nil
		}
		conflictDst := ConflictPath(dst, source)
		if err := copyFile(path, conflictDst); err != nil {
			return fmt.Errorf("conflict copy %s → %s: %w", path, conflictDst, err)
		}
		result.Conflicts = append(result.Conflicts, ConflictPair{
			Original: dst,
			Conflict: conflictDst,
			Source:   source,
		})
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	if err := copyFile(path, dst); err != nil {
		return fmt.Errorf("copy %s → %s: %w", path, dst, err)
	}
	result.Imported++
	result.Entries += len(entries)
	return nil
}

// ConflictPath builds the conflict filename for an incoming file by inserting
// the conflict marker and source before the final extension.
//
//	faq.json       → faq.conflict-laptop.json
//	trivia.en.yaml → trivia.en.conflict-laptop.yaml
func ConflictPath(original, source string) string {
	ext := filepath.Ext(original)
	base := strings.TrimSuffix(original, ext)
	return base + knowledge.ConflictMarker + source + ext
}

// FindConflicts returns the conflict files below dir as paths relative to it.
func FindConflicts(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.Contains(d.Name(), knowledge.ConflictMarker) {
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			out = append(out, rel)
		}
		return nil
	})
	return out, err
}

// fileMD5 returns the hex-encoded MD5 digest of the file at path.
func fileMD5(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// copyFile copies src to dst, preserving permissions.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
