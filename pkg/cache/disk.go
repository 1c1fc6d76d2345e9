package cache

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ShoshinNikita/screenshelf/pkg/fsx"
	"github.com/ShoshinNikita/screenshelf/pkg/metrics"
	"github.com/ShoshinNikita/screenshelf/screenshelf"
)

const fileExt = ".jpg"

// DiskCache stores entries in a single flat directory. Every entry is
// a file named '<key>.jpg'.
type DiskCache struct {
	absDir string
}

var _ screenshelf.Cache = (*DiskCache)(nil)

// NewDiskCache creates the cache directory if needed. It is safe to call it for
// an existing directory.
func NewDiskCache(dir string) (*DiskCache, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("couldn't get absolute path: %w", err)
	}
	if err := os.MkdirAll(absDir, 0o700); err != nil {
		return nil, fmt.Errorf("couldn't create cache dir %q: %w", absDir, err)
	}
	return &DiskCache{
		absDir: absDir,
	}, nil
}

// Dir returns the absolute path of the cache directory.
func (c *DiskCache) Dir() string {
	return c.absDir
}

// Open return an [io.ReadCloser] with cache content. If the file is not cached, it returns [screenshelf.ErrCacheMiss].
func (c *DiskCache) Open(key screenshelf.CacheKey) (io.ReadCloser, error) {
	file, err := os.Open(c.generateFilepath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			metrics.CacheMisses.Inc()
			return nil, screenshelf.ErrCacheMiss
		}

		metrics.CacheErrors.Inc()
		return nil, err
	}

	metrics.CacheHits.Inc()
	return file, nil
}

// Check can be used to check whether a file is cached. If the file is not cached, it returns [screenshelf.ErrCacheMiss].
func (c *DiskCache) Check(key screenshelf.CacheKey) error {
	_, err := os.Stat(c.generateFilepath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return screenshelf.ErrCacheMiss
		}
		return err
	}
	return nil
}

// Write copies the content of the passed [io.Reader] to the cache file associated with the key.
// Readers never see a partially written entry. Concurrent writes of the same key are allowed:
// the last rename wins.
func (c *DiskCache) Write(key screenshelf.CacheKey, r io.Reader) error {
	return fsx.WriteFileAtomic(c.generateFilepath(key), r, 0o600)
}

// Remove removes the cache file associated with the key. To remove cache files
// over time use [Cleaner].
func (c *DiskCache) Remove(key screenshelf.CacheKey) error {
	return os.Remove(c.generateFilepath(key))
}

// generateFilepath generates a filepath of pattern '<dir>/<key>.jpg'.
func (c *DiskCache) generateFilepath(key screenshelf.CacheKey) string {
	return filepath.Join(c.absDir, key.String()+fileExt)
}
