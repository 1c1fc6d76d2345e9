package thumbnails

import (
	"context"
	"image"

	"github.com/ShoshinNikita/screenshelf/screenshelf"
)

// NoopThumbnailer is used when native thumbnails are disabled or the platform
// tool is not installed.
type NoopThumbnailer struct{}

var _ screenshelf.NativeThumbnailer = NoopThumbnailer{}

func (NoopThumbnailer) Generate(context.Context, string, int, int) (image.Image, error) {
	return nil, screenshelf.ErrUnsupportedFormat
}
