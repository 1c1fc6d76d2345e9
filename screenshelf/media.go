package screenshelf

import (
	"errors"
	"path/filepath"
	"strings"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrMalformedRange = errors.New("malformed range")
)

const (
	WebmContentType = "video/webm"
	MP4ContentType  = "video/mp4"
)

// VideoExts contains extensions of recordings.
var VideoExts = []string{".webm", ".mp4"}

// GetFileExt returns the filename extension in lower case with leading dot (.webm).
func GetFileExt(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// GetVideoContentType returns the MIME type of a recording. Unknown extensions
// are treated as mp4.
func GetVideoContentType(path string) string {
	if GetFileExt(path) == ".webm" {
		return WebmContentType
	}
	return MP4ContentType
}
