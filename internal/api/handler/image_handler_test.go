package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
)

type stubFiles struct {
	files  map[string]string
	opened string
	err    error
}

func (s *stubFiles) Open(_ context.Context, path string) (*ports.StoredFile, error) {
	s.opened = path
	if s.err != nil {
		return nil, s.err
	}
	body, ok := s.files[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &ports.StoredFile{
		Body:        io.NopCloser(strings.NewReader(body)),
		ContentType: "image/png",
		Size:        int64(len(body)),
		ModTime:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}, nil
}

func TestImageHandler_Serve(t *testing.T) {
	files := &stubFiles{files: map[string]string{"products/p1-abc.png": "png-bytes"}}
	h := NewImageHandler(files)

	c, rec := newTestContext(http.MethodGet, "/images/products/p1-abc.png", "")
	withParam(c, "*", "products/p1-abc.png")
	require.NoError(t, h.Serve(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png-bytes", rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "9", rec.Header().Get("Content-Length"))
	assert.Equal(t, "Fri, 02 Jan 2026 03:04:05 GMT", rec.Header().Get("Last-Modified"))
	assert.Equal(t, imageCacheControl, rec.Header().Get("Cache-Control"))
}

func TestImageHandler_Missing(t *testing.T) {
	h := NewImageHandler(&stubFiles{})

	c, _ := newTestContext(http.MethodGet, "/images/products/nope.png", "")
	withParam(c, "*", "products/nope.png")
	requireHTTPError(t, h.Serve(c), http.StatusNotFound)
}

func TestImageHandler_StorageFailure(t *testing.T) {
	boom := errors.New("gridfs unavailable")
	h := NewImageHandler(&stubFiles{err: boom})

	c, _ := newTestContext(http.MethodGet, "/images/products/a.png", "")
	withParam(c, "*", "products/a.png")
	assert.ErrorIs(t, h.Serve(c), boom)
}

func TestImageHandler_PathIsCleaned(t *testing.T) {
	files := &stubFiles{}
	h := NewImageHandler(files)

	c, _ := newTestContext(http.MethodGet, "/images/x", "")
	withParam(c, "*", "../../etc/passwd")
	_ = h.Serve(c)
	assert.Equal(t, "etc/passwd", files.opened)
}

func TestCleanObjectPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"products/a.png", "products/a.png", true},
		{"products//b.png", "products/b.png", true},
		{"products/../c.png", "c.png", true},
		{"", "", false},
		{"/", "", false},
		{"..", "", false},
	}
	for _, tc := range tests {
		got, ok := cleanObjectPath(tc.in)
		assert.Equal(t, tc.ok, ok, "in=%q", tc.in)
		assert.Equal(t, tc.want, got, "in=%q", tc.in)
	}
}
