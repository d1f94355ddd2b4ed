package handler

import (
	"errors"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
)

const imageCacheControl = "public, max-age=86400"

// ImageHandler serves stored product images for storage backends without a
// public endpoint of their own.
type ImageHandler struct {
	files ports.FileSource
}

func NewImageHandler(files ports.FileSource) *ImageHandler {
	return &ImageHandler{files: files}
}

// Serve handles GET /images/*.
//
// @Summary      Download a product image
// @Tags         images
// @Produce      octet-stream
// @Param        path  path  string  true  "Object path, e.g. products/<id>-<suffix>.png"
// @Success      200
// @Failure      404   {object}  errorResponse
// @Router       /images/{path} [get]
func (h *ImageHandler) Serve(c echo.Context) error {
	p, ok := cleanObjectPath(c.Param("*"))
	if !ok {
		return domain.ErrNotFound
	}

	f, err := h.files.Open(c.Request().Context(), p)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "image not found")
		}
		return err
	}
	defer f.Body.Close()

	hdr := c.Response().Header()
	hdr.Set("Cache-Control", imageCacheControl)
	if f.Size > 0 {
		hdr.Set(echo.HeaderContentLength, strconv.FormatInt(f.Size, 10))
	}
	if !f.ModTime.IsZero() {
		hdr.Set(echo.HeaderLastModified, f.ModTime.UTC().Format(http.TimeFormat))
	}
	contentType := f.ContentType
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	return c.Stream(http.StatusOK, contentType, f.Body)
}

// cleanObjectPath normalises a wildcard path. Cleaning it as a rooted path
// resolves any ".." segments inside the storage root.
func cleanObjectPath(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	p := strings.TrimPrefix(path.Clean("/"+raw), "/")
	if p == "" {
		return "", false
	}
	return p, true
}
