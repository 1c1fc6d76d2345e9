// Package library lists and saves recordings in a user directory.
package library

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/ShoshinNikita/screenshelf/pkg/fsx"
	"github.com/ShoshinNikita/screenshelf/pkg/misc"
	"github.com/ShoshinNikita/screenshelf/pkg/rlog"
	"github.com/ShoshinNikita/screenshelf/screenshelf"
)

var ErrInvalidFilename = errors.New("invalid filename")

type Video struct {
	Name string `json:"name"`
	Path string `json:"path"`
	// CreatedAt is the modification time of the file. Birth time is not available on
	// all platforms, and recordings are never modified after saving.
	CreatedAt         time.Time `json:"created_at"`
	Size              int64     `json:"size"`
	HumanReadableSize string    `json:"human_readable_size"`
}

type Library struct{}

func NewLibrary() *Library {
	return &Library{}
}

// List returns recordings of the directory, newest first. Hidden files are skipped.
// It returns an empty list if the directory doesn't exist.
func (l *Library) List(dir string) ([]Video, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Video{}, nil
		}
		return nil, fmt.Errorf("couldn't read dir: %w", err)
	}

	videos := make([]Video, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !isVideoFilename(name) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				// Removed in the meantime.
				continue
			}
			return nil, fmt.Errorf("couldn't get info of %q: %w", name, err)
		}

		videos = append(videos, Video{
			Name:              name,
			Path:              filepath.Join(dir, name),
			CreatedAt:         info.ModTime(),
			Size:              info.Size(),
			HumanReadableSize: misc.FormatFileSize(info.Size()),
		})
	}

	slices.SortStableFunc(videos, func(a, b Video) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})

	return videos, nil
}

func isVideoFilename(name string) bool {
	// Covers '._' files created by macOS too.
	if strings.HasPrefix(name, ".") {
		return false
	}
	return slices.Contains(screenshelf.VideoExts, screenshelf.GetFileExt(name))
}

// Save writes the recording to dir/filename and returns the path of the file.
// An existing file is replaced.
func (l *Library) Save(dir, filename string, r io.Reader) (string, error) {
	if err := checkFilename(filename); err != nil {
		return "", err
	}

	path := filepath.Join(dir, filename)
	if err := fsx.WriteFileAtomic(path, r, 0o644); err != nil {
		return "", fmt.Errorf("couldn't save recording: %w", err)
	}

	rlog.Infof("recording was saved to %q", path)

	return path, nil
}

func checkFilename(filename string) error {
	switch {
	case filename == "", filename == ".", filename == "..":
		return fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	case strings.ContainsAny(filename, `/\`):
		return fmt.Errorf("%w: %q contains path separators", ErrInvalidFilename, filename)
	}
	return nil
}
