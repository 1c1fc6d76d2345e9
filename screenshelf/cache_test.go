package screenshelf

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewCacheKey(t *testing.T) {
	t.Parallel()

	t.Run("format", func(t *testing.T) {
		r := require.New(t)

		key := NewCacheKey("/home/user/Videos/recording.webm")
		r.Regexp(regexp.MustCompile(`^[0-9a-f]{32}$`), key.String())
		r.Equal(CacheKey("e652d3d790d63b29b5f68bbaa606cc1b"), key)
	})

	t.Run("determinism", func(t *testing.T) {
		paths := []string{
			"/home/user/Videos/recording.webm",
			"/home/user/Videos/recording.mp4",
			"/home/user/Videos/My Recording 1.webm",
			"/home/user/Videos/My  Recording 1.webm",
			"/home/user/Видео/запись.webm",
			"/home/user/ビデオ/録画 2.mp4",
			"C:/Users/user/Videos/recording.webm",
		}
		for i, p1 := range paths {
			for j, p2 := range paths {
				k1, k2 := NewCacheKey(p1), NewCacheKey(p2)
				if i == j {
					require.Equal(t, k1, k2, "same path %q", p1)
				} else {
					require.NotEqual(t, k1, k2, "different paths %q and %q", p1, p2)
				}
			}
		}
	})

	t.Run("canonical paths", func(t *testing.T) {
		r := require.New(t)

		r.Equal(NewCacheKey("/videos/a.webm"), NewCacheKey("/videos/./a.webm"))
		r.Equal(NewCacheKey("/videos/a.webm"), NewCacheKey("/videos//x/../a.webm"))

		// "é" as a single code point and as "e" + combining acute accent.
		r.Equal(NewCacheKey("/videos/caf\u00e9.webm"), NewCacheKey("/videos/cafe\u0301.webm"))
	})
}
