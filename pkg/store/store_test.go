package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sessions.json")
	s, err := New(path, opts...)
	require.NoError(t, err)
	return s
}

func TestNew_InitializesEmptyJournal(t *testing.T) {
	s := setupTestStore(t)

	raw, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	var doc map[string][]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Len(t, doc["sessions"], 0)
}

func TestNew_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")

	s1, err := New(path)
	require.NoError(t, err)

	_, err = s1.Append(context.Background(), []string{"😀"}, "first")
	require.NoError(t, err)

	// Reopening must not clobber existing sessions.
	s2, err := New(path)
	require.NoError(t, err)

	sessions, err := s2.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestAppend_RoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	emojis := []string{"😊", "🌟", "🎉"}
	notes := "a starry celebration"

	id, err := s.Append(ctx, emojis, notes)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, emojis, got.Emojis)
	assert.Equal(t, notes, got.Notes)
}

func TestAppend_EmptyNotes(t *testing.T) {
	s := setupTestStore(t)

	id, err := s.Append(context.Background(), []string{"🐢"}, "")
	require.NoError(t, err)

	got, err := s.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, got.Notes)
}

func TestAppend_TimestampFormat(t *testing.T) {
	fixed := time.Date(2025, 3, 14, 9, 26, 53, 589793000, time.UTC)
	s := setupTestStore(t, WithClock(func() time.Time { return fixed }))

	id, err := s.Append(context.Background(), []string{"🕰️"}, "")
	require.NoError(t, err)

	got, err := s.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-14T09:26:53.589793Z", got.Timestamp)

	// Microsecond precision with a trailing Z is the viewer contract.
	assert.Regexp(t, regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{6}Z$`), got.Timestamp)

	ts, err := got.Time()
	require.NoError(t, err)
	assert.True(t, ts.Equal(fixed.Truncate(time.Microsecond)))
}

func TestAppendWithID_SuppliedID(t *testing.T) {
	s := setupTestStore(t)

	id, err := s.AppendWithID(context.Background(), "my-session", []string{"🚀"}, "launch")
	require.NoError(t, err)
	assert.Equal(t, "my-session", id)
}

func TestAppendWithID_DuplicateRejected(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.AppendWithID(ctx, "dup", []string{"🍀"}, "")
	require.NoError(t, err)

	_, err = s.AppendWithID(ctx, "dup", []string{"🍁"}, "")
	assert.ErrorIs(t, err, ErrDuplicateID)

	// The failed append must not change the journal.
	sessions, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestGet_NotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList_GrowsByOnePerAppend(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		_, err := s.Append(ctx, []string{"🌈"}, "note")
		require.NoError(t, err)

		sessions, err := s.List(ctx)
		require.NoError(t, err)
		assert.Len(t, sessions, i)
	}
}

func TestList_PreservesInsertionOrder(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	ids := make([]string, 0, 4)
	for _, notes := range []string{"a", "b", "c", "d"} {
		id, err := s.Append(ctx, []string{"🧩"}, notes)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	sessions, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 4)
	for i, session := range sessions {
		assert.Equal(t, ids[i], session.ID)
	}
}

func TestCorruptJournal_BackedUpAndReset(t *testing.T) {
	s := setupTestStore(t)

	corrupt := []byte(`{"sessions": [{"broken`)
	require.NoError(t, os.WriteFile(s.Path(), corrupt, 0o600))

	sessions, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions)

	backup, err := os.ReadFile(s.Path() + backupSuffix)
	require.NoError(t, err)
	assert.Equal(t, corrupt, backup)

	// The canonical file is valid again.
	raw, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	_, err = parseDocument(raw)
	assert.NoError(t, err)
}

func TestCorruptJournal_WrongShapeRecovered(t *testing.T) {
	s := setupTestStore(t)

	// Valid JSON, wrong structure: sessions holds a bare string.
	require.NoError(t, os.WriteFile(s.Path(), []byte(`{"sessions": ["nope"]}`), 0o600))

	sessions, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions)

	_, err = os.Stat(s.Path() + backupSuffix)
	assert.NoError(t, err)
}

func TestConcurrentAppends_NoLostUpdates(t *testing.T) {
	// Separate Store values against one path model independent
	// processes contending for the same journal lock.
	path := filepath.Join(t.TempDir(), "sessions.json")
	ctx := context.Background()

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := New(path)
			if err != nil {
				errs <- err
				return
			}
			if _, err := s.Append(ctx, []string{"⚡"}, "concurrent"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	s, err := New(path)
	require.NoError(t, err)
	sessions, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, writers)

	seen := make(map[string]bool, writers)
	for _, session := range sessions {
		assert.False(t, seen[session.ID], "duplicate session id %s", session.ID)
		seen[session.ID] = true
	}
}

func TestLockTimeout_FailsFast(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")

	s, err := New(path, WithLockTimeout(50*time.Millisecond))
	require.NoError(t, err)

	blocked, err := New(path, WithLockTimeout(50*time.Millisecond))
	require.NoError(t, err)

	// Hold the lock as if from another process.
	unlock, err := s.acquireLock(context.Background())
	require.NoError(t, err)
	defer unlock()

	_, err = blocked.Append(context.Background(), []string{"⏳"}, "")
	assert.ErrorIs(t, err, ErrLockTimeout)
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.Append(context.Background(), []string{"🧹"}, "")
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	for _, entry := range entries {
		name := entry.Name()
		assert.Contains(t, []string{"sessions.json", "sessions.json.lock"}, name)
	}
}
