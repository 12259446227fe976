// Package storage contains document content storage backends: a local directory (default)
// and an S3-compatible object store. Both stream content; neither buffers whole files in memory.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrObjectNotFound is returned when the requested key has no stored content.
var ErrObjectNotFound = errors.New("object not found")

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1.
// When Size is known, a stream of any other length fails the write.
// ContentType and Metadata are optional.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
// Location is the backend-specific address of the content (absolute path or s3:// URL).
type ObjectInfo struct {
	Key          string
	Location     string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is the content store used by the document service.
// Methods use context and streaming readers; implementations are safe for concurrent use.
type Storage interface {
	// Put stores the content of r under key and reports the number of bytes written.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get opens the content of key for streaming. The caller must close the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes the object; a missing object yields ErrObjectNotFound.
	Delete(ctx context.Context, key string) error
}
