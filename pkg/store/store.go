// Package store persists emoji story sessions to a single JSON journal
// on disk. The journal is append-only: every write rewrites the whole
// document through a temp file and an atomic rename, and every read or
// write runs under an inter-process advisory lock so independent
// processes can share one journal without torn records.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/renameio/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hikaru/emojitale/internal/observability"
)

const (
	lockSuffix   = ".lock"
	backupSuffix = ".backup"

	// lockRetryDelay is how often a blocked caller re-attempts the
	// advisory lock.
	lockRetryDelay = 25 * time.Millisecond
)

var (
	// ErrNotFound is returned by Get when no session has the requested ID.
	ErrNotFound = errors.New("session not found")

	// ErrDuplicateID is returned by AppendWithID when the supplied ID is
	// already present in the journal.
	ErrDuplicateID = errors.New("session id already exists")

	// ErrLockTimeout is returned when the journal lock could not be
	// acquired within the configured bound.
	ErrLockTimeout = errors.New("timed out waiting for journal lock")
)

// Store owns one journal file and its sibling lock and backup artifacts.
type Store struct {
	path        string
	lockPath    string
	backupPath  string
	lockTimeout time.Duration // 0 means block indefinitely
	logger      zerolog.Logger
	now         func() time.Time
	newID       func() string
}

// Option configures a Store.
type Option func(*Store)

// WithLockTimeout bounds how long journal operations wait for the
// inter-process lock. Zero (the default) blocks indefinitely.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) { s.lockTimeout = d }
}

// WithLogger sets the logger used by the store.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the session ID generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// New opens the journal at path, creating it with an empty document if
// it does not exist yet. Failure to create the journal is fatal.
func New(path string, opts ...Option) (*Store, error) {
	observability.EnsureRegistered()

	s := &Store{
		path:       path,
		lockPath:   path + lockSuffix,
		backupPath: path + backupSuffix,
		logger:     log.Logger,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	if err := s.ensureInitialized(context.Background()); err != nil {
		return nil, err
	}

	s.logger.Info().Str("path", path).Msg("Session store opened")
	return s, nil
}

// Path returns the journal file path.
func (s *Store) Path() string {
	return s.path
}

// ensureInitialized creates the journal with an empty document when the
// file is missing. Idempotent.
func (s *Store) ensureInitialized(ctx context.Context) error {
	unlock, err := s.acquireLock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat journal: %w", err)
	}

	if err := s.writeDocument(&document{Sessions: []Session{}}); err != nil {
		return fmt.Errorf("initialize journal: %w", err)
	}
	s.logger.Info().Str("path", s.path).Msg("Journal initialized")
	return nil
}

// acquireLock takes the exclusive inter-process lock, honoring the
// configured wait policy. The returned func releases the lock.
func (s *Store) acquireLock(ctx context.Context) (func(), error) {
	if s.lockTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.lockTimeout)
		defer cancel()
	}

	fl := flock.New(s.lockPath)
	ok, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrLockTimeout, s.lockTimeout)
		}
		return nil, fmt.Errorf("acquire journal lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("acquire journal lock %s: not acquired", s.lockPath)
	}

	return func() {
		if err := fl.Unlock(); err != nil {
			s.logger.Error().Err(err).Str("lock", s.lockPath).Msg("Failed to release journal lock")
		}
	}, nil
}

// Append journals a new session with a generated ID and returns it.
func (s *Store) Append(ctx context.Context, emojis []string, notes string) (string, error) {
	return s.AppendWithID(ctx, "", emojis, notes)
}

// AppendWithID journals a new session under the supplied ID, generating
// one when id is empty. The whole document is rewritten atomically.
func (s *Store) AppendWithID(ctx context.Context, id string, emojis []string, notes string) (string, error) {
	start := time.Now()
	defer func() {
		observability.RecordSessionSave(time.Since(start))
	}()

	if id == "" {
		id = s.newID()
	}

	session := Session{
		ID:        id,
		Timestamp: s.now().UTC().Format(timestampLayout),
		Emojis:    emojis,
		Notes:     notes,
	}

	unlock, err := s.acquireLock(ctx)
	if err != nil {
		return "", err
	}
	defer unlock()

	doc, err := s.readDocument()
	if err != nil {
		return "", err
	}

	for _, existing := range doc.Sessions {
		if existing.ID == id {
			return "", fmt.Errorf("%w: %s", ErrDuplicateID, id)
		}
	}

	doc.Sessions = append(doc.Sessions, session)
	if err := s.writeDocument(doc); err != nil {
		return "", err
	}

	observability.SetJournalSessions(len(doc.Sessions))
	s.logger.Info().
		Str("session_id", id).
		Int("emojis", len(emojis)).
		Msg("Session saved")

	return id, nil
}

// Get returns the session with the given ID, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range doc.Sessions {
		if doc.Sessions[i].ID == id {
			return &doc.Sessions[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// List returns all journaled sessions in storage order.
func (s *Store) List(ctx context.Context) ([]Session, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Sessions, nil
}

// load reads the document under the lock and records metrics.
func (s *Store) load(ctx context.Context) (*document, error) {
	start := time.Now()
	defer func() {
		observability.RecordSessionLoad(time.Since(start))
	}()

	unlock, err := s.acquireLock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	doc, err := s.readDocument()
	if err != nil {
		return nil, err
	}
	observability.SetJournalSessions(len(doc.Sessions))
	return doc, nil
}

// readDocument reads and parses the journal. The caller must hold the
// lock. A missing file is reinitialized; corrupt bytes are preserved in
// the backup sibling and replaced with an empty document, so a corrupt
// journal never fails the caller.
func (s *Store) readDocument() (*document, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.logger.Warn().Str("path", s.path).Msg("Journal missing, reinitializing")
		empty := &document{Sessions: []Session{}}
		if err := s.writeDocument(empty); err != nil {
			return nil, err
		}
		return empty, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}

	doc, err := parseDocument(raw)
	if err != nil {
		s.logger.Error().Err(err).Str("path", s.path).Msg("Journal corrupt")
		return s.recoverCorrupt(raw)
	}
	return doc, nil
}

// recoverCorrupt preserves the unparseable bytes in the backup sibling
// and reinitializes the journal with an empty document.
func (s *Store) recoverCorrupt(raw []byte) (*document, error) {
	if err := os.WriteFile(s.backupPath, raw, 0o600); err != nil {
		return nil, fmt.Errorf("back up corrupt journal: %w", err)
	}
	s.logger.Info().Str("backup", s.backupPath).Msg("Corrupt journal backed up")

	empty := &document{Sessions: []Session{}}
	if err := s.writeDocument(empty); err != nil {
		return nil, err
	}
	return empty, nil
}

// writeDocument rewrites the whole journal atomically: serialize to a
// temp sibling, fsync, then rename onto the canonical path. Readers see
// either the old or the new document in full, never a mixture. The
// caller must hold the lock.
func (s *Store) writeDocument(doc *document) error {
	pending, err := renameio.NewPendingFile(s.path, renameio.WithPermissions(0o600))
	if err != nil {
		return fmt.Errorf("create pending journal file: %w", err)
	}
	defer func() {
		// Removes the temp file when the replace never happened.
		if err := pending.Cleanup(); err != nil {
			s.logger.Debug().Err(err).Msg("cleanup pending journal file")
		}
	}()

	enc := json.NewEncoder(pending)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode journal: %w", err)
	}

	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace journal: %w", err)
	}
	return nil
}
