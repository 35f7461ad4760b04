// Package store persists the wallet's secret material as opaque blobs under
// string keys.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = errors.New("key not found")

// Store is a durable key/blob store. SetMany must apply all of its values or
// none of them. A successful write is durable when the call returns.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetMany(ctx context.Context, values map[string][]byte) error
	Remove(ctx context.Context, keys ...string) error
}
