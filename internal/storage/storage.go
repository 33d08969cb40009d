// Package storage defines persistence interfaces for encoded conquest
// tables.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// DefaultTableName is the well-known key the engine reads at startup.
const DefaultTableName = "conquest"

// TableStore persists encoded conquest tables by name.
type TableStore interface {
	Put(ctx context.Context, name string, encoded []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
	Close() error
}
