package repositories

import (
	"fmt"
	"io"
	"os"

	"github.com/dgraph-io/badger/v4"
)

// Store owns the Badger database behind the local collection store.
type Store struct {
	db       *badger.DB
	dbPath   string
	isTestDB bool

	Users    *BadgerUserRepository
	Posts    *BadgerPostRepository
	Comments *BadgerCommentRepository
}

// Open opens or creates the database at path. An empty path creates a
// throwaway database in a temporary directory that Close removes.
func Open(path string) (*Store, error) {
	isTest := false
	if path == "" {
		tempPath, err := os.MkdirTemp("", "postboard_test_db_")
		if err != nil {
			return nil, fmt.Errorf("error creating temp dir: %w", err)
		}
		path = tempPath
		isTest = true
	}
	opts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithNumVersionsToKeep(1)
	if isTest {
		opts = opts.WithSyncWrites(false).WithNumGoroutines(1)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db at %s: %w", path, err)
	}
	return &Store{
		db:       db,
		dbPath:   path,
		isTestDB: isTest,
		Users:    NewBadgerUserRepository(db),
		Posts:    NewBadgerPostRepository(db),
		Comments: NewBadgerCommentRepository(db),
	}, nil
}

// Path returns the database directory.
func (s *Store) Path() string { return s.dbPath }

// Close closes the database and removes a throwaway one.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return err
	}
	if s.isTestDB {
		if err := os.RemoveAll(s.dbPath); err != nil {
			return fmt.Errorf("failed to cleanup test database: %w", err)
		}
	}
	return nil
}

// Clear drops every record and sequence.
func (s *Store) Clear() error {
	return s.db.DropAll()
}

// Backup writes a full backup to w.
func (s *Store) Backup(w io.Writer) error {
	_, err := s.db.Backup(w, 0)
	return err
}

// Restore loads a backup written by Backup.
func (s *Store) Restore(r io.Reader) error {
	return s.db.Load(r, 4)
}
