package screenshelf

import (
	"context"
	"errors"
	"image"
)

const (
	ThumbnailWidth  = 320
	ThumbnailHeight = 180

	JPEGContentType = "image/jpeg"
	SVGContentType  = "image/svg+xml"
)

var (
	// ErrUnsupportedFormat is returned by a [NativeThumbnailer] that can't handle a file.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrGenerationFailure is returned when neither a thumbnail nor a placeholder is available.
	ErrGenerationFailure = errors.New("couldn't generate thumbnail")
)

// Image is a displayable thumbnail.
type Image struct {
	Key         CacheKey
	ContentType string
	Data        []byte
	// Placeholder is true for synthetic images. They are never cached.
	Placeholder bool
}

// NativeThumbnailer requests a thumbnail from the platform. A nil image with a nil error
// means that the platform produced an empty result.
type NativeThumbnailer interface {
	Generate(ctx context.Context, path string, width, height int) (image.Image, error)
}
