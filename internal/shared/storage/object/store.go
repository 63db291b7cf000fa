package object

import (
	"context"
	"io"
)

// ObjectStore defines the contract for saving, retrieving, and removing
// binary objects. Uploads in this service are short-lived, so Remove is part
// of the contract: every saved object must be removable on all exit paths.
type ObjectStore interface {
	Save(ctx context.Context, namespace string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Remove(ctx context.Context, storageKey string) error
}
