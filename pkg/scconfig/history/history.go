// Package history stores completed reconciliation runs in a Badger
// database so past verify and apply results can be listed and inspected.
//
// Keys are run/<unix-nano, zero padded>/<id>, so a forward iteration visits
// runs oldest first. Values are JSON-encoded Run values.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/jamesainslie/scconfig/pkg/scconfig/engine"
	"github.com/jamesainslie/scconfig/pkg/scconfig/trace"
	"github.com/jamesainslie/scconfig/pkg/scconfig/types"
)

var (
	// ErrNotFound is returned when no run matches an ID.
	ErrNotFound = errors.New("run not found")

	// ErrAmbiguousID is returned when an ID prefix matches several runs.
	ErrAmbiguousID = errors.New("ambiguous run id")
)

const keyPrefix = "run/"

// Run is a stored reconciliation run.
type Run struct {
	ID        string               `json:"id" yaml:"id"`
	Timestamp time.Time            `json:"timestamp" yaml:"timestamp"`
	Mode      types.Mode           `json:"mode" yaml:"mode"`
	Target    types.SearchProvider `json:"target" yaml:"target"`
	Role      types.Role           `json:"role" yaml:"role"`
	WebRoot   string               `json:"web_root" yaml:"web_root"`
	Manifest  string               `json:"manifest,omitempty" yaml:"manifest,omitempty"`
	Duration  time.Duration        `json:"duration" yaml:"duration"`
	Summary   engine.Summary       `json:"summary" yaml:"summary"`
	Records   []trace.Record       `json:"records,omitempty" yaml:"records,omitempty"`
}

// NewRun captures a report as a Run with a fresh ID.
func NewRun(report *engine.Report) *Run {
	return &Run{
		ID:        uuid.NewString(),
		Timestamp: report.StartedAt.UTC(),
		Mode:      report.Mode,
		Target:    report.Target,
		Role:      report.Role,
		WebRoot:   report.WebRoot,
		Manifest:  report.Manifest,
		Duration:  report.Duration,
		Summary:   report.Summary,
		Records:   report.Records,
	}
}

// ShortID returns the first eight characters of the ID.
func (r *Run) ShortID() string {
	if len(r.ID) > 8 {
		return r.ID[:8]
	}
	return r.ID
}

// Report rebuilds the engine report the run was created from.
func (r *Run) Report() *engine.Report {
	return &engine.Report{
		Records:   r.Records,
		Summary:   r.Summary,
		Mode:      r.Mode,
		Target:    r.Target,
		Role:      r.Role,
		WebRoot:   r.WebRoot,
		Manifest:  r.Manifest,
		StartedAt: r.Timestamp,
		Duration:  r.Duration,
	}
}

func (r *Run) key() []byte {
	return []byte(fmt.Sprintf("%s%020d/%s", keyPrefix, r.Timestamp.UnixNano(), r.ID))
}

// idFromKey returns the ID part of a run key.
func idFromKey(key []byte) string {
	k := string(key)
	if i := strings.LastIndexByte(k, '/'); i >= 0 {
		return k[i+1:]
	}
	return k
}

// Store wraps Badger for run history.
type Store struct {
	db        *badger.DB
	retention time.Duration
}

// Options configures a Store.
type Options struct {
	// Retention is the TTL of saved runs. Zero keeps runs forever.
	Retention time.Duration
}

// Open opens or creates a history store at path.
func Open(path string, opts Options) (*Store, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	bopts := badger.DefaultOptions(path)
	bopts.Logger = nil

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("opening history store: %w", err)
	}
	return &Store{db: db, retention: opts.Retention}, nil
}

// OpenInMemory opens a store that is discarded on Close.
func OpenInMemory(opts Options) (*Store, error) {
	bopts := badger.DefaultOptions("").WithInMemory(true)
	bopts.Logger = nil

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("opening in-memory history store: %w", err)
	}
	return &Store{db: db, retention: opts.Retention}, nil
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores run.
func (s *Store) Save(run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now().UTC()
	}

	value, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encoding run: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(run.key(), value)
		if s.retention > 0 {
			e = e.WithTTL(s.retention)
		}
		return txn.SetEntry(e)
	})
}

// Get returns the run whose ID equals id or starts with it.
func (s *Store) Get(id string) (*Run, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}

	var run *Run
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		var match []byte
		ambiguous := false
		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().Key()
			runID := idFromKey(key)
			if runID == id {
				match = it.Item().KeyCopy(nil)
				ambiguous = false
				break
			}
			if strings.HasPrefix(runID, id) {
				if match != nil {
					ambiguous = true
					continue
				}
				match = it.Item().KeyCopy(nil)
			}
		}
		if ambiguous {
			return fmt.Errorf("%w: %s", ErrAmbiguousID, id)
		}
		if match == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}

		item, err := txn.Get(match)
		if err != nil {
			return err
		}
		run = &Run{}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, run)
		})
	})
	if err != nil {
		return nil, err
	}
	return run, nil
}

// List returns up to limit runs, newest first. Records are omitted; use
// Get for the full run. A limit of zero or less returns every run.
func (s *Store) List(limit int) ([]*Run, error) {
	var runs []*Run

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration seeks to the last key <= seek.
		seek := []byte(keyPrefix + "\xff")
		prefix := []byte(keyPrefix)
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			run := &Run{}
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, run)
			}); err != nil {
				return fmt.Errorf("decoding run %s: %w", idFromKey(it.Item().Key()), err)
			}
			run.Records = nil
			runs = append(runs, run)

			if limit > 0 && len(runs) >= limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return runs, nil
}

// Cleanup deletes runs older than the cutoff and returns how many were
// removed.
func (s *Store) Cleanup(olderThan time.Time) (int, error) {
	cutoff := []byte(fmt.Sprintf("%s%020d", keyPrefix, olderThan.UnixNano()))

	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			if string(key) >= string(cutoff) {
				break
			}
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if len(keys) == 0 {
		return 0, nil
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range keys {
		if err := wb.Delete(key); err != nil {
			return 0, err
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, err
	}
	return len(keys), nil
}
