package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/kicad-web-opener/kicad-web-opener/internal/domain"
)

// Ensure Store implements domain.History
var _ domain.History = (*Store)(nil)

// Options contains history store options
type Options struct {
	Directory string
	InMemory  bool
	// Logger enables badger's own logging
	Logger bool
}

// Store keeps the list of opened projects in BadgerDB
type Store struct {
	db  *badger.DB
	now func() time.Time
}

// DefaultDirectory returns ~/.kicad-web-opener/history
func DefaultDirectory() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".kicad-web-opener", "history"), nil
}

// Open opens or creates the history store
func Open(opts Options) (*Store, error) {
	var badgerOpts badger.Options

	if opts.InMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if opts.Directory == "" {
			dir, err := DefaultDirectory()
			if err != nil {
				return nil, err
			}
			opts.Directory = dir
		}

		if err := os.MkdirAll(opts.Directory, 0755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}

		badgerOpts = badger.DefaultOptions(opts.Directory).
			WithNumVersionsToKeep(1).
			WithValueLogFileSize(16 << 20)
	}

	if !opts.Logger {
		badgerOpts = badgerOpts.WithLogger(nil)
	}

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Record stores entry. A zero OpenedAt is set to the current time.
func (s *Store) Record(ctx context.Context, entry domain.HistoryEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if entry.OpenedAt.IsZero() {
		entry.OpenedAt = s.now()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode history entry: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(EntryKey(entry.OpenedAt, entry.SourceURL), data)
	})
}

// Recent returns up to limit entries, newest first. A limit of zero or
// less returns every entry.
func (s *Store) Recent(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	var entries []domain.HistoryEntry

	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(PrefixOpened)
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		seek := append(append([]byte{}, prefix...), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var entry domain.HistoryEntry
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			})
			if err != nil {
				return fmt.Errorf("decode history entry %s: %w", it.Item().Key(), err)
			}

			entries = append(entries, entry)
			if limit > 0 && len(entries) >= limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// Clear removes every entry
func (s *Store) Clear() error {
	return s.db.DropPrefix([]byte(PrefixOpened))
}

// Close releases store resources
func (s *Store) Close() error {
	return s.db.Close()
}
