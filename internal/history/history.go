// Package history persists the chatbot conversation to a JSON file.
//
// Every read-modify-write holds an exclusive lock on "<path>.lock", so several kbot
// processes (a chat session and a server, say) can share one history file.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// Message author types.
const (
	TypeUser = "user"
	TypeBot  = "bot"
)

// Message is one line of the conversation.
type Message struct {
	ID        string    `json:"id,omitempty"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage returns a message with a fresh ID.
func NewMessage(typ, text string, at time.Time) Message {
	return Message{
		ID:        uuid.NewString(),
		Type:      typ,
		Message:   text,
		Timestamp: at.UTC(),
	}
}

// Export is the document written by Store.Export.
type Export struct {
	ExportDate   string    `json:"exportDate"`
	Conversation []Message `json:"conversation"`
}

// ExportFileName returns the conventional name of an export taken at now.
func ExportFileName(now time.Time) string {
	return fmt.Sprintf("chatbot-conversation-%s.json", now.Format("2006-01-02"))
}

// Store is a conversation history backed by a JSON array on disk.
type Store struct {
	path        string
	lockTimeout time.Duration
}

// NewStore returns a store for path. The file is created on first append.
func NewStore(path string) *Store {
	return &Store{path: path, lockTimeout: 5 * time.Second}
}

// Path returns the history file path.
func (s *Store) Path() string {
	return s.path
}

// Load returns all stored messages. A missing file is an empty history.
func (s *Store) Load() ([]Message, error) {
	var out []Message
	err := s.withLock(func() error {
		var err error
		out, err = s.read()
		return err
	})
	return out, err
}

// Append adds msgs to the end of the history.
func (s *Store) Append(msgs ...Message) error {
	if len(msgs) == 0 {
		return nil
	}
	return s.withLock(func() error {
		cur, err := s.read()
		if err != nil {
			return err
		}
		return s.write(append(cur, msgs...))
	})
}

// Clear removes every message.
func (s *Store) Clear() error {
	return s.withLock(func() error {
		return s.write([]Message{})
	})
}

// Export writes the history as an export document to w.
func (s *Store) Export(w io.Writer, now time.Time) error {
	msgs, err := s.Load()
	if err != nil {
		return err
	}
	if msgs == nil {
		msgs = []Message{}
	}
	doc := Export{ExportDate: now.UTC().Format(time.RFC3339), Conversation: msgs}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if _, err := w.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("cannot write export: %w", err)
	}
	return nil
}

func (s *Store) read() ([]Message, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []Message{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read history %s: %w", s.path, err)
	}
	if len(b) == 0 {
		return []Message{}, nil
	}
	var out []Message
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("invalid history JSON %s: %w", s.path, err)
	}
	return out, nil
}

// write replaces the history file via a temp file in the same directory.
func (s *Store) write(msgs []Message) error {
	b, err := json.Marshal(msgs)
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("cannot create temp history file: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("cannot write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("cannot replace history %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) withLock(fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("cannot create history dir: %w", err)
	}
	lockPath := s.path + ".lock"
	l := flock.New(lockPath)
	deadline := time.Now().Add(s.lockTimeout)
	for {
		locked, err := l.TryLock()
		if err != nil {
			return fmt.Errorf("cannot acquire history lock: %w", err)
		}
		if locked {
			break
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("history is locked by another process (lock: %s)", lockPath)
		}
		time.Sleep(50 * time.Millisecond)
	}
	defer func() { _ = l.Unlock() }()
	return fn()
}
