// Package objstore provides a thin adapter over a key/object blob store.
// The production implementation talks to an S3-compatible backend (MinIO in
// development); an in-memory implementation backs tests.
package objstore

import "context"

// Client is the minimal object-store surface the version store needs:
// put a blob, get a blob, list keys by prefix.
type Client interface {
	// Put stores body under key, overwriting any existing object.
	Put(ctx context.Context, key string, body []byte) error

	// Get returns the object stored under key, or common.ErrorNotFound
	// if no such object exists.
	Get(ctx context.Context, key string) ([]byte, error)

	// List returns all keys starting with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}
