package thumbnails

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"golang.org/x/image/draw"
)

const jpegQuality = 80

// encodeJPEG fits the image into maxWidth x maxHeight and encodes it as JPEG.
func encodeJPEG(img image.Image, maxWidth, maxHeight int) ([]byte, error) {
	if width, height, shouldResize := thumbnailSize(img.Bounds(), maxWidth, maxHeight); shouldResize {
		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
		img = dst
	}

	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("couldn't encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// thumbnailSize calculates new width and height preserving original aspect ratio.
// If the current width and height are less than the max ones, it will return
// shouldResize = false.
func thumbnailSize(bounds image.Rectangle, maxWidth, maxHeight int) (newWidth, newHeight int, shouldResize bool) {
	origWidth := bounds.Dx()
	origHeight := bounds.Dy()

	// Resizing is not required.
	if maxWidth >= origWidth && maxHeight >= origHeight {
		return 0, 0, false
	}

	newWidth = maxWidth
	newHeight = origHeight * maxWidth / origWidth
	if newHeight > maxHeight {
		newWidth = origWidth * maxHeight / origHeight
		newHeight = maxHeight
	}

	return max(newWidth, 1), max(newHeight, 1), true
}
