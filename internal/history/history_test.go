package history

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_LoadMissing(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "history.json"))
	msgs, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestStore_AppendLoadClear(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "nested", "history.json"))
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, s.Append(NewMessage(TypeUser, "hi", at), NewMessage(TypeBot, "Hello!", at)))
	require.NoError(t, s.Append(NewMessage(TypeUser, "bye", at)))

	msgs, err := s.Load()
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, TypeUser, msgs[0].Type)
	assert.Equal(t, "Hello!", msgs[1].Message)
	assert.Equal(t, at, msgs[2].Timestamp)
	assert.NotEmpty(t, msgs[0].ID)
	assert.NotEqual(t, msgs[0].ID, msgs[1].ID)

	require.NoError(t, s.Clear())
	msgs, err = s.Load()
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestStore_ConcurrentAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	const writers, perWriter = 4, 10

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := NewStore(path)
			for i := 0; i < perWriter; i++ {
				assert.NoError(t, s.Append(NewMessage(TypeUser, "msg", time.Now())))
			}
		}()
	}
	wg.Wait()

	msgs, err := NewStore(path).Load()
	require.NoError(t, err)
	assert.Len(t, msgs, writers*perWriter)
}

func TestStore_LockTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	held := flock.New(path + ".lock")
	locked, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer func() { _ = held.Unlock() }()

	s := NewStore(path)
	s.lockTimeout = 100 * time.Millisecond
	err = s.Append(NewMessage(TypeUser, "hi", time.Now()))
	assert.ErrorContains(t, err, "locked by another process")
}

func TestStore_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := NewStore(path).Load()
	assert.Error(t, err)
}

func TestStore_Export(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "history.json"))
	at := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	require.NoError(t, s.Append(NewMessage(TypeUser, "what is dna?", at)))

	var buf bytes.Buffer
	require.NoError(t, s.Export(&buf, at))

	var doc Export
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "2026-05-06T07:08:09Z", doc.ExportDate)
	require.Len(t, doc.Conversation, 1)
	assert.Equal(t, "what is dna?", doc.Conversation[0].Message)
	assert.Contains(t, buf.String(), "\n  \"conversation\"")

	assert.Equal(t, "chatbot-conversation-2026-05-06.json", ExportFileName(at))
}

func TestStore_ExportEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewStore(filepath.Join(t.TempDir(), "h.json")).Export(&buf, time.Now()))
	assert.Contains(t, buf.String(), `"conversation": []`)
}
