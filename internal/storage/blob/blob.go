// Package blob provides key-addressed binary object storage.
package blob

import (
	"context"
	"io"
)

// PutInput describes an object to store.
type PutInput struct {
	Key         string
	Body        io.Reader
	Size        int64
	ContentType string
	// Metadata values must already be strings; callers are responsible for
	// encoding anything structured before handing it over.
	Metadata map[string]string
}

// Store is a key-addressed blob store.
type Store interface {
	Put(ctx context.Context, in PutInput) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}
