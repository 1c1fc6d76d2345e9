package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ShoshinNikita/screenshelf/pkg/cache"
	"github.com/ShoshinNikita/screenshelf/screenshelf"
	"github.com/ShoshinNikita/screenshelf/thumbnails"
	"github.com/stretchr/testify/require"
)

func TestSafeShutdown(t *testing.T) {
	r := require.New(t)
	ctx := context.Background()

	err := safeShutdown(ctx, nil)
	r.NoError(err)

	err = safeShutdown(ctx, (*testShutdowner)(nil))
	r.NoError(err)

	err = safeShutdown(ctx, new(testShutdowner))
	r.Equal(err.Error(), "test")

	err = safeShutdown(ctx, cache.NoopCleaner{})
	r.NoError(err)
}

type testShutdowner struct{}

func (*testShutdowner) Shutdown(context.Context) error { return errors.New("test") }

func TestApp_Prepare(t *testing.T) {
	t.Parallel()

	newConfig := func(t *testing.T) screenshelf.Config {
		return screenshelf.Config{
			ServerPort:                8080,
			Dir:                       filepath.Join(t.TempDir(), "app"),
			VideosDir:                 t.TempDir(),
			Thumbnailer:               screenshelf.ThumbnailerNone,
			ThumbnailsPlaceholderExts: screenshelf.ExtList{".webm"},
			ThumbnailsGenerateTimeout: time.Second,
		}
	}

	t.Run("default", func(t *testing.T) {
		r := require.New(t)

		cfg := newConfig(t)
		app := NewApp(cfg)
		r.NoError(app.Prepare())

		info, err := os.Stat(cfg.ThumbnailsDir())
		r.NoError(err)
		r.True(info.IsDir())

		r.IsType(thumbnails.NoopThumbnailer{}, app.thumbnailer)
		r.IsType(&cache.NoopCleaner{}, app.cacheCleaner)
		r.NotNil(app.server)

		r.NoError(app.Shutdown(context.Background()))

		// Startup must be idempotent.
		app = NewApp(cfg)
		r.NoError(app.Prepare())
		r.NoError(app.Shutdown(context.Background()))
	})

	t.Run("cache cleaner", func(t *testing.T) {
		r := require.New(t)

		cfg := newConfig(t)
		cfg.ThumbnailsCacheMaxAge = time.Hour

		app := NewApp(cfg)
		r.NoError(app.Prepare())
		r.IsType(&cache.Cleaner{}, app.cacheCleaner)

		r.NoError(app.Shutdown(context.Background()))
	})

	t.Run("invalid settings file", func(t *testing.T) {
		r := require.New(t)

		cfg := newConfig(t)
		r.NoError(os.MkdirAll(cfg.Dir, 0o700))
		r.NoError(os.WriteFile(cfg.SettingsFile(), []byte("- invalid"), 0o600))

		app := NewApp(cfg)
		r.ErrorContains(app.Prepare(), "couldn't prepare settings")

		// Shutdown must work after failed Prepare.
		r.NoError(app.Shutdown(context.Background()))
	})

	t.Run("shutdown without prepare", func(t *testing.T) {
		require.NoError(t, NewApp(newConfig(t)).Shutdown(context.Background()))
	})
}
