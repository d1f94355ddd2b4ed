package service

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
)

const (
	// MaxImageSize is the largest accepted product image (5 MiB).
	MaxImageSize = 5 << 20

	imageFolder = "products"
)

// clientExtension is the shape of a filename extension kept as given.
var clientExtension = regexp.MustCompile(`^\.[a-z0-9]{1,5}$`)

// ImageService validates product images and moves them in and out of file
// storage.
type ImageService struct {
	storage ports.FileStorage
	log     zerolog.Logger
	now     func() time.Time
}

func NewImageService(storage ports.FileStorage, log zerolog.Logger) *ImageService {
	return &ImageService{storage: storage, log: log, now: time.Now}
}

// Upload validates the image and stores it under
// products/<productID or unix millis>-<random>.<ext>, returning its public URL.
// Non-image payloads and payloads above MaxImageSize are rejected before
// storage is called.
func (s *ImageService) Upload(ctx context.Context, upload ports.ImageUpload, productID string) (string, error) {
	if len(upload.Data) == 0 {
		return "", fmt.Errorf("%w: empty image", domain.ErrValidation)
	}
	if len(upload.Data) > MaxImageSize {
		return "", fmt.Errorf("%w: image is %d bytes, limit is %d", domain.ErrValidation, len(upload.Data), MaxImageSize)
	}

	detected := mimetype.Detect(upload.Data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return "", fmt.Errorf("%w: %s is not an image", domain.ErrValidation, detected.String())
	}

	prefix := productID
	if prefix == "" {
		prefix = strconv.FormatInt(s.now().UnixMilli(), 10)
	}
	name := fmt.Sprintf("%s-%s%s", prefix, randomSuffix(), extension(upload.Filename, detected))
	objectPath := path.Join(imageFolder, name)

	url, err := s.storage.Store(ctx, objectPath, upload.Data, detected.String())
	if err != nil {
		return "", fmt.Errorf("%w: store image %s: %w", domain.ErrWrite, objectPath, err)
	}

	s.log.Info().Str("path", objectPath).Int("bytes", len(upload.Data)).Msg("image stored")
	return url, nil
}

// Delete removes the image a public URL points to. Only the last path segment
// of the URL is used.
func (s *ImageService) Delete(ctx context.Context, url string) error {
	name := path.Base(strings.TrimRight(url, "/"))
	if name == "." || name == "/" || name == "" {
		return fmt.Errorf("%w: no file name in %q", domain.ErrValidation, url)
	}
	objectPath := path.Join(imageFolder, name)
	if err := s.storage.Remove(ctx, objectPath); err != nil {
		return fmt.Errorf("%w: remove image %s: %w", domain.ErrWrite, objectPath, err)
	}
	s.log.Info().Str("path", objectPath).Msg("image removed")
	return nil
}

// Owns reports whether url was issued by our storage.
func (s *ImageService) Owns(url string) bool {
	return url != "" && strings.HasPrefix(url, s.storage.PublicURL(imageFolder+"/"))
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// extension keeps the uploaded file's extension when it is a short
// alphanumeric one, falling back to the one of the detected type.
func extension(filename string, detected *mimetype.MIME) string {
	if ext := strings.ToLower(path.Ext(filename)); clientExtension.MatchString(ext) {
		return ext
	}
	return detected.Extension()
}
