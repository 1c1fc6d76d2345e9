package cache

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ShoshinNikita/screenshelf/screenshelf"
	"github.com/stretchr/testify/require"
)

func TestDiskCache(t *testing.T) {
	t.Parallel()

	r := require.New(t)

	tempDir := t.TempDir()

	key := screenshelf.NewCacheKey("/home/user/Видео/запись 1.webm")

	cache, err := NewDiskCache(filepath.Join(tempDir, "thumbnails"))
	r.NoError(err)
	r.Equal(filepath.Join(tempDir, "thumbnails"), cache.Dir())

	path := cache.generateFilepath(key)
	r.Equal(filepath.Join(tempDir, "thumbnails", key.String()+".jpg"), path)

	t.Run("remove", func(t *testing.T) {
		r := require.New(t)

		r.False(checkFile(t, cache, key))
		r.ErrorIs(cache.Check(key), screenshelf.ErrCacheMiss)

		err := cache.Write(key, strings.NewReader("hello world"))
		r.NoError(err)
		r.True(checkFile(t, cache, key))
		r.NoError(cache.Check(key))

		r.NoError(cache.Remove(key))
		r.False(checkFile(t, cache, key))
	})

	t.Run("read", func(t *testing.T) {
		r := require.New(t)

		err := cache.Write(key, strings.NewReader("hello world"))
		r.NoError(err)

		rc, err := cache.Open(key)
		r.NoError(err)

		data, err := io.ReadAll(rc)
		r.NoError(err)
		r.Equal("hello world", string(data))

		r.NoError(rc.Close())
	})
}

func TestDiskCache_CreateDirTwice(t *testing.T) {
	t.Parallel()

	r := require.New(t)

	dir := filepath.Join(t.TempDir(), "a", "b")
	for range 2 {
		_, err := NewDiskCache(dir)
		r.NoError(err)
	}
	info, err := os.Stat(dir)
	r.NoError(err)
	r.True(info.IsDir())
}

func TestDiskCache_FailedWrite(t *testing.T) {
	t.Parallel()

	r := require.New(t)

	cache, err := NewDiskCache(t.TempDir())
	r.NoError(err)

	key := screenshelf.NewCacheKey("/videos/1.mp4")
	r.NoError(cache.Write(key, strings.NewReader("old content")))

	err = cache.Write(key, io.MultiReader(strings.NewReader("new"), errReader{}))
	r.Error(err)

	// The previous entry must stay untouched, and no temp files must be left.
	rc, err := cache.Open(key)
	r.NoError(err)
	data, err := io.ReadAll(rc)
	r.NoError(err)
	r.NoError(rc.Close())
	r.Equal("old content", string(data))

	entries, err := os.ReadDir(cache.Dir())
	r.NoError(err)
	r.Len(entries, 1)
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) {
	return 0, errors.New("disk is full")
}

func checkFile(t *testing.T, cache *DiskCache, key screenshelf.CacheKey) bool {
	rc, err := cache.Open(key)
	if errors.Is(err, screenshelf.ErrCacheMiss) {
		return false
	}
	require.NoError(t, err)
	rc.Close()
	return true
}
