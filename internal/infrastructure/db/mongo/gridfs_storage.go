package mongo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
)

const metadataContentType = "content_type"

// GridFSStorage keeps product images in a GridFS bucket. The object path is
// used as both the file id and the file name; files are served by the API
// under urlPrefix.
type GridFSStorage struct {
	db        *mongo.Database
	urlPrefix string
}

// NewGridFSStorage returns a storage whose public URLs are urlPrefix + "/" + path.
func NewGridFSStorage(db *mongo.Database, urlPrefix string) *GridFSStorage {
	return &GridFSStorage{db: db, urlPrefix: strings.TrimRight(urlPrefix, "/")}
}

func (s *GridFSStorage) Store(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	bucket, err := s.bucket(ctx)
	if err != nil {
		return "", err
	}

	opts := options.GridFSUpload().SetMetadata(bson.D{{Key: metadataContentType, Value: contentType}})
	if err := bucket.UploadFromStreamWithID(path, path, bytes.NewReader(data), opts); err != nil {
		return "", fmt.Errorf("gridfs upload %s: %w", path, err)
	}
	return s.PublicURL(path), nil
}

func (s *GridFSStorage) Remove(ctx context.Context, path string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	bucket, err := s.bucket(ctx)
	if err != nil {
		return err
	}
	if err := bucket.DeleteContext(ctx, path); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
		return fmt.Errorf("gridfs delete %s: %w", path, err)
	}
	return nil
}

func (s *GridFSStorage) PublicURL(path string) string {
	return s.urlPrefix + "/" + strings.TrimLeft(path, "/")
}

// Open streams a stored file. The read deadline is taken from ctx.
func (s *GridFSStorage) Open(ctx context.Context, path string) (*ports.StoredFile, error) {
	bucket, err := s.bucket(ctx)
	if err != nil {
		return nil, err
	}

	stream, err := bucket.OpenDownloadStream(path)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("gridfs open %s: %w", path, err)
	}

	file := stream.GetFile()
	contentType := "application/octet-stream"
	if len(file.Metadata) > 0 {
		if ct, ok := file.Metadata.Lookup(metadataContentType).StringValueOK(); ok && ct != "" {
			contentType = ct
		}
	}

	return &ports.StoredFile{
		Body:        stream,
		ContentType: contentType,
		Size:        file.Length,
		ModTime:     file.UploadDate,
	}, nil
}

// bucket returns a fresh bucket handle; deadlines are per-handle state and
// must not be shared between requests.
func (s *GridFSStorage) bucket(ctx context.Context) (*gridfs.Bucket, error) {
	bucket, err := gridfs.NewBucket(s.db, options.GridFSBucket().SetName(imageBucket))
	if err != nil {
		return nil, fmt.Errorf("gridfs bucket: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = bucket.SetWriteDeadline(deadline)
		_ = bucket.SetReadDeadline(deadline)
	}
	return bucket, nil
}
