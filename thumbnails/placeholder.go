package thumbnails

import (
	"fmt"
	"html"
	"path/filepath"
	"unicode/utf8"

	"github.com/ShoshinNikita/screenshelf/screenshelf"
)

const maxPlaceholderNameLength = 36

const placeholderTemplate = `<svg xmlns="http://www.w3.org/2000/svg" width="%[1]d" height="%[2]d" viewBox="0 0 %[1]d %[2]d">` +
	`<rect width="100%%" height="100%%" fill="#2b2b2b"/>` +
	`<polygon points="145,70 145,110 180,90" fill="#8a8a8a"/>` +
	`<text x="50%%" y="150" fill="#d0d0d0" font-family="sans-serif" font-size="14" text-anchor="middle">%[3]s</text>` +
	`</svg>`

// newPlaceholder returns an SVG image with the name of the source file.
func newPlaceholder(key screenshelf.CacheKey, sourcePath string) screenshelf.Image {
	name := filepath.Base(sourcePath)
	if utf8.RuneCountInString(name) > maxPlaceholderNameLength {
		name = string([]rune(name)[:maxPlaceholderNameLength-1]) + "…"
	}

	svg := fmt.Sprintf(placeholderTemplate, screenshelf.ThumbnailWidth, screenshelf.ThumbnailHeight, html.EscapeString(name))

	return screenshelf.Image{
		Key:         key,
		ContentType: screenshelf.SVGContentType,
		Data:        []byte(svg),
		Placeholder: true,
	}
}
