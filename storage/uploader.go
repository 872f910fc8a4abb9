package storage

import (
	"context"
	"io"
)

// StoredObject describes an asset after it landed in the object store.
// Checksum is the store's content hash, usable for cache validation.
type StoredObject struct {
	Key       string
	PublicURL string
	Checksum  string
}

// FileUploader abstracts the object store holding contingent logo assets.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*StoredObject, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}
