// Package bbolt provides a BoltDB-backed table store.
package bbolt

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"github.com/louisbranch/conquest-engine/internal/storage"
)

const tableBucket = "tables"

// Store provides a BoltDB-backed conquest table store.
type Store struct {
	db *bbolt.DB
}

// Open opens a BoltDB-backed store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	store := &Store{db: db}
	if err := store.ensureBucket(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Put persists an encoded conquest table under the given name.
func (s *Store) Put(ctx context.Context, name string, encoded []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("table name is required")
	}
	if len(encoded) == 0 {
		return fmt.Errorf("encoded table is required")
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(tableBucket))
		if bucket == nil {
			return fmt.Errorf("bucket %q is missing", tableBucket)
		}
		return bucket.Put([]byte(name), encoded)
	})
	if err != nil {
		return fmt.Errorf("put table %q: %w", name, err)
	}
	return nil
}

// Get loads the encoded conquest table stored under the given name.
func (s *Store) Get(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	var encoded []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(tableBucket))
		if bucket == nil {
			return fmt.Errorf("bucket %q is missing", tableBucket)
		}
		stored := bucket.Get([]byte(name))
		if stored == nil {
			return storage.ErrNotFound
		}
		// Bolt memory is only valid inside the transaction.
		encoded = make([]byte, len(stored))
		copy(encoded, stored)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return encoded, nil
}

func (s *Store) ensureBucket() error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(tableBucket))
		return err
	})
	if err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}
	return nil
}
