// Package snapshot persists in-progress game engine state so a session
// survives transient teardown (page reload, tab switch) without
// double-counting practice records.
//
// Snapshots live in an embedded BadgerDB under one key per engine type
// and user; each user has at most one resumable in-progress session of
// each type.
// An envelope carries a schema version and a wall-clock timestamp: loads
// reject snapshots older than the configured TTL or written by a different
// schema version, and the same TTL is handed to Badger so stale entries
// expire even if never read.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// SchemaVersion is bumped whenever the serialized engine state changes
// shape. Old snapshots are discarded rather than misparsed.
const SchemaVersion = 1

// ErrNoSnapshot is returned when no resumable snapshot exists: nothing was
// saved, the entry expired, it is stale, or it was written by another
// schema version.
var ErrNoSnapshot = errors.New("no resumable snapshot")

// Key prefixes for the per-engine snapshot slots; engines append the
// owning user's id.
const (
	KeyFlashcard = "engine/flashcard"
	KeyQuiz      = "engine/quiz"
)

type envelope struct {
	Version   int             `json:"version"`
	Timestamp int64           `json:"timestamp"` // milliseconds since epoch
	State     json.RawMessage `json:"state"`
}

// Store is a BadgerDB-backed snapshot store.
type Store struct {
	db  *badger.DB
	ttl time.Duration
	now func() time.Time
}

// New creates a store over an open Badger database. Snapshots older than
// ttl are treated as stale.
func New(db *badger.DB, ttl time.Duration) *Store {
	return &Store{db: db, ttl: ttl, now: time.Now}
}

// Open opens a persistent Badger database at path, creating the directory
// if needed. Badger's internal logging is routed to the zap logger.
func Open(path string, logger *zap.Logger) (*badger.DB, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}

	opts := badger.DefaultOptions(path).
		WithNumVersionsToKeep(1).
		WithLogger(&badgerLogger{logger: logger.Sugar()})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}

	return db, nil
}

// OpenInMemory opens an in-memory Badger database. Used by tests.
func OpenInMemory() (*badger.DB, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory snapshot db: %w", err)
	}

	return db, nil
}

// Save serializes state under the given engine key with the current
// timestamp. The entry carries the staleness window as its TTL.
func (s *Store) Save(key string, state any) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal snapshot state: %w", err)
	}

	env := envelope{
		Version:   SchemaVersion,
		Timestamp: s.now().UnixMilli(),
		State:     raw,
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal snapshot envelope: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), data).WithTTL(s.ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	return nil
}

// Load restores state from the given engine key. Stale and
// version-mismatched snapshots are discarded and reported as ErrNoSnapshot.
func (s *Store) Load(key string, state any) error {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNoSnapshot
		}
		return fmt.Errorf("load snapshot: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		// An unreadable snapshot is treated the same as a missing one.
		_ = s.Clear(key)
		return ErrNoSnapshot
	}

	if env.Version != SchemaVersion {
		_ = s.Clear(key)
		return ErrNoSnapshot
	}

	age := s.now().Sub(time.UnixMilli(env.Timestamp))
	if age > s.ttl {
		_ = s.Clear(key)
		return ErrNoSnapshot
	}

	if err := json.Unmarshal(env.State, state); err != nil {
		return fmt.Errorf("unmarshal snapshot state: %w", err)
	}

	return nil
}

// Clear removes the snapshot under the given engine key.
func (s *Store) Clear(key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	return nil
}

// badgerLogger adapts zap to Badger's Logger interface.
type badgerLogger struct {
	logger *zap.SugaredLogger
}

func (l *badgerLogger) Errorf(format string, args ...interface{})   { l.logger.Errorf(format, args...) }
func (l *badgerLogger) Warningf(format string, args ...interface{}) { l.logger.Warnf(format, args...) }
func (l *badgerLogger) Infof(format string, args ...interface{})    { l.logger.Debugf(format, args...) }
func (l *badgerLogger) Debugf(format string, args ...interface{})   { l.logger.Debugf(format, args...) }
