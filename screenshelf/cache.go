package screenshelf

import (
	"crypto/md5" //nolint:gosec
	"encoding/hex"
	"errors"
	"io"
	"path/filepath"

	"golang.org/x/text/unicode/norm"
)

// CacheKey is a lowercase hex digest of a canonical source path.
type CacheKey string

// NewCacheKey returns the key of a source file. The path is cleaned and normalized to NFC,
// so equal paths always produce equal keys.
func NewCacheKey(sourcePath string) CacheKey {
	path := norm.NFC.String(filepath.Clean(sourcePath))

	hash := md5.Sum([]byte(path)) //nolint:gosec
	return CacheKey(hex.EncodeToString(hash[:]))
}

func (k CacheKey) String() string {
	return string(k)
}

var (
	ErrCacheMiss = errors.New("cache miss")
)

type Cache interface {
	Open(key CacheKey) (io.ReadCloser, error)
	Check(key CacheKey) error
	Write(key CacheKey, r io.Reader) error
	Remove(key CacheKey) error
}
