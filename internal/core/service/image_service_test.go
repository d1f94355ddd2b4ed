package service

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
)

const testBaseURL = "http://files.test/images/"

type stubStorage struct {
	mu        sync.Mutex
	objects   map[string]string // path -> content type
	removed   []string
	storeErr  error
	removeErr error
}

func newStubStorage() *stubStorage {
	return &stubStorage{objects: make(map[string]string)}
}

func (s *stubStorage) Store(_ context.Context, path string, _ []byte, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.storeErr != nil {
		return "", s.storeErr
	}
	s.objects[path] = contentType
	return testBaseURL + path, nil
}

func (s *stubStorage) Remove(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.removeErr != nil {
		return s.removeErr
	}
	delete(s.objects, path)
	s.removed = append(s.removed, path)
	return nil
}

func (s *stubStorage) PublicURL(path string) string {
	return testBaseURL + path
}

func (s *stubStorage) has(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[path]
	return ok
}

// pngBytes is a PNG signature followed by an IHDR chunk header; enough for
// content sniffing.
var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x02, 0x00, 0x00, 0x00, 0x90, 0x77, 0x53, 0xde,
}

func TestImageService_Upload_StoresUnderProductsFolder(t *testing.T) {
	storage := newStubStorage()
	svc := NewImageService(storage, discardLogger)

	url, err := svc.Upload(context.Background(), ports.ImageUpload{Filename: "photo.PNG", Data: pngBytes}, "prod-1")

	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^http://files\.test/images/products/prod-1-[0-9a-f]{12}\.png$`), url)
	objectPath := strings.TrimPrefix(url, testBaseURL)
	assert.True(t, storage.has(objectPath))
	assert.Equal(t, "image/png", storage.objects[objectPath])
	assert.True(t, svc.Owns(url))
}

func TestImageService_Upload_WithoutProductUsesTimestamp(t *testing.T) {
	svc := NewImageService(newStubStorage(), discardLogger)
	svc.now = func() time.Time { return time.UnixMilli(1767225600000) }

	url, err := svc.Upload(context.Background(), ports.ImageUpload{Data: pngBytes}, "")

	require.NoError(t, err)
	assert.Contains(t, url, "/products/1767225600000-")
	assert.True(t, strings.HasSuffix(url, ".png"), "extension falls back to the sniffed type: %s", url)
}

func TestImageService_Upload_ExtensionFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"photo.JPEG", ".jpeg"},
		{"cat.png?v=1", ".png"},
		{"a.png#x", ".png"},
		{"archive.tar.verylong", ".png"},
		{"noext", ".png"},
		{"trailing.", ".png"},
	}

	for _, tc := range tests {
		svc := NewImageService(newStubStorage(), discardLogger)
		url, err := svc.Upload(context.Background(), ports.ImageUpload{Filename: tc.filename, Data: pngBytes}, "prod-1")
		require.NoError(t, err, tc.filename)
		assert.Regexp(t, regexp.MustCompile(`/products/prod-1-[0-9a-f]{12}`+regexp.QuoteMeta(tc.want)+`$`), url, tc.filename)
	}
}

func TestImageService_Upload_RejectsNonImage(t *testing.T) {
	storage := newStubStorage()
	svc := NewImageService(storage, discardLogger)

	_, err := svc.Upload(context.Background(), ports.ImageUpload{Filename: "notes.png", Data: []byte("just some text, not a picture")}, "prod-1")

	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, storage.objects)
}

func TestImageService_Upload_RejectsOversize(t *testing.T) {
	storage := newStubStorage()
	svc := NewImageService(storage, discardLogger)
	data := append(append([]byte{}, pngBytes...), bytes.Repeat([]byte{0}, MaxImageSize)...)

	_, err := svc.Upload(context.Background(), ports.ImageUpload{Filename: "big.png", Data: data}, "prod-1")

	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, storage.objects)
}

func TestImageService_Upload_RejectsEmpty(t *testing.T) {
	svc := NewImageService(newStubStorage(), discardLogger)

	_, err := svc.Upload(context.Background(), ports.ImageUpload{Filename: "empty.png"}, "prod-1")

	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestImageService_Upload_StorageFailure(t *testing.T) {
	storage := newStubStorage()
	storage.storeErr = errors.New("bucket unavailable")
	svc := NewImageService(storage, discardLogger)

	_, err := svc.Upload(context.Background(), ports.ImageUpload{Filename: "a.png", Data: pngBytes}, "prod-1")

	require.ErrorIs(t, err, domain.ErrWrite)
}

func TestImageService_Delete_UsesLastPathSegment(t *testing.T) {
	storage := newStubStorage()
	svc := NewImageService(storage, discardLogger)
	ctx := context.Background()

	url, err := svc.Upload(ctx, ports.ImageUpload{Filename: "a.png", Data: pngBytes}, "prod-1")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, url))

	require.Len(t, storage.removed, 1)
	assert.Equal(t, strings.TrimPrefix(url, testBaseURL), storage.removed[0])
	assert.Empty(t, storage.objects)
}

func TestImageService_Delete_Invalid(t *testing.T) {
	storage := newStubStorage()
	svc := NewImageService(storage, discardLogger)

	require.ErrorIs(t, svc.Delete(context.Background(), ""), domain.ErrValidation)

	storage.removeErr = errors.New("denied")
	require.ErrorIs(t, svc.Delete(context.Background(), testBaseURL+"products/x.png"), domain.ErrWrite)
}

func TestImageService_Owns(t *testing.T) {
	svc := NewImageService(newStubStorage(), discardLogger)

	assert.True(t, svc.Owns(testBaseURL+"products/a.png"))
	assert.False(t, svc.Owns("https://cdn.example.com/products/a.png"))
	assert.False(t, svc.Owns(""))
}
