// Package storage keeps the audio blobs a session produces. Local disk stands
// in for browser object URLs; S3 backs the share flow with presigned links.
package storage

import (
	"context"
	"io"
)

// Storage defines where result blobs live and how they are shared.
type Storage interface {
	// SaveBlob writes data to a new file and returns its path.
	// The name is used as a hint for the filename.
	SaveBlob(ctx context.Context, name string, data io.Reader) (path string, err error)

	// OpenBlob opens a saved blob. The caller closes the returned ReadCloser.
	OpenBlob(ctx context.Context, path string) (io.ReadCloser, error)

	// Revoke removes blobs that are no longer referenced.
	// It continues past individual failures and returns the first error.
	Revoke(ctx context.Context, paths ...string) error

	// Publish uploads data under key and returns a URL others can open.
	// Returns ErrS3NotConfigured if no bucket is configured.
	Publish(ctx context.Context, key string, data io.Reader, contentType string) (url string, err error)
}
