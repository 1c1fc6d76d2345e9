package library

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLibrary_List(t *testing.T) {
	t.Parallel()

	t.Run("filter and sort", func(t *testing.T) {
		r := require.New(t)

		dir := t.TempDir()
		now := time.Now().Truncate(time.Second)

		for name, age := range map[string]time.Duration{
			"old.webm":       3 * time.Hour,
			"new.mp4":        time.Minute,
			"middle.WEBM":    time.Hour,
			".hidden.webm":   0,
			"._resource.mp4": 0,
			"notes.txt":      0,
			"video.mkv":      0,
			"webm":           0,
		} {
			path := filepath.Join(dir, name)
			r.NoError(os.WriteFile(path, make([]byte, 1536), 0o600))
			r.NoError(os.Chtimes(path, now.Add(-age), now.Add(-age)))
		}
		r.NoError(os.Mkdir(filepath.Join(dir, "dir.mp4"), 0o700))

		videos, err := NewLibrary().List(dir)
		r.NoError(err)

		var names []string
		for _, v := range videos {
			names = append(names, v.Name)

			r.Equal(filepath.Join(dir, v.Name), v.Path)
			r.EqualValues(1536, v.Size)
			r.Equal("1.5 KiB", v.HumanReadableSize)
		}
		r.Equal([]string{"new.mp4", "middle.WEBM", "old.webm"}, names)
		r.True(videos[0].CreatedAt.Equal(now.Add(-time.Minute)))
	})

	t.Run("missing dir", func(t *testing.T) {
		r := require.New(t)

		videos, err := NewLibrary().List(filepath.Join(t.TempDir(), "missing"))
		r.NoError(err)
		r.NotNil(videos)
		r.Empty(videos)
	})

	t.Run("empty dir", func(t *testing.T) {
		videos, err := NewLibrary().List(t.TempDir())
		require.NoError(t, err)
		require.Empty(t, videos)
	})
}

func TestLibrary_Save(t *testing.T) {
	t.Parallel()

	t.Run("save", func(t *testing.T) {
		r := require.New(t)

		dir := t.TempDir()
		lib := NewLibrary()

		path, err := lib.Save(dir, "recording 1.webm", strings.NewReader("video data"))
		r.NoError(err)
		r.Equal(filepath.Join(dir, "recording 1.webm"), path)

		data, err := os.ReadFile(path)
		r.NoError(err)
		r.Equal("video data", string(data))

		videos, err := lib.List(dir)
		r.NoError(err)
		r.Len(videos, 1)
		r.Equal("recording 1.webm", videos[0].Name)
	})

	t.Run("invalid filename", func(t *testing.T) {
		dir := t.TempDir()

		for _, filename := range []string{"", ".", "..", "../1.webm", "a/b.webm", `a\b.webm`} {
			_, err := NewLibrary().Save(dir, filename, strings.NewReader("x"))
			require.ErrorIs(t, err, ErrInvalidFilename, filename)
		}

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Empty(t, entries)
	})

	t.Run("missing dir", func(t *testing.T) {
		_, err := NewLibrary().Save(filepath.Join(t.TempDir(), "missing"), "1.webm", strings.NewReader("x"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}
