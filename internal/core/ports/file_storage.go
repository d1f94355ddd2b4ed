package ports

import (
	"context"
	"io"
	"time"
)

// FileStorage is the file storage collaborator used by image upload.
type FileStorage interface {
	// Store writes data under path and returns its public URL.
	Store(ctx context.Context, path string, data []byte, contentType string) (string, error)
	// Remove deletes the object at path. Removing a missing object is not an error.
	Remove(ctx context.Context, path string) error
	// PublicURL returns the URL under which path is (or would be) served.
	PublicURL(path string) string
}

// FileSource opens stored objects for serving. Open returns
// domain.ErrNotFound for unknown paths.
type FileSource interface {
	Open(ctx context.Context, path string) (*StoredFile, error)
}

// StoredFile is an open stored object. The caller closes Body.
type StoredFile struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
	ModTime     time.Time
}

// ImageUpload is an image file received from an admin.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}
