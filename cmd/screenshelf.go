package cmd

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"sync"

	"github.com/ShoshinNikita/screenshelf/library"
	"github.com/ShoshinNikita/screenshelf/media"
	"github.com/ShoshinNikita/screenshelf/pkg/cache"
	"github.com/ShoshinNikita/screenshelf/pkg/rlog"
	"github.com/ShoshinNikita/screenshelf/screenshelf"
	"github.com/ShoshinNikita/screenshelf/settings"
	"github.com/ShoshinNikita/screenshelf/thumbnails"
	"github.com/ShoshinNikita/screenshelf/web"
)

type App struct {
	cfg screenshelf.Config

	thumbnailCache *cache.DiskCache
	cacheCleaner   shutdowner
	thumbnailer    screenshelf.NativeThumbnailer

	settingsStore *settings.Store

	server *web.Server
}

func NewApp(cfg screenshelf.Config) *App {
	return &App{
		cfg: cfg,
	}
}

func (a *App) Prepare() (err error) {
	if err := os.MkdirAll(a.cfg.Dir, 0o700); err != nil {
		return fmt.Errorf("couldn't create app data dir %q: %w", a.cfg.Dir, err)
	}

	// Thumbnails
	a.thumbnailCache, err = cache.NewDiskCache(a.cfg.ThumbnailsDir())
	if err != nil {
		return fmt.Errorf("couldn't prepare disk cache for thumbnails: %w", err)
	}

	if a.cfg.ThumbnailsCacheMaxAge > 0 || a.cfg.ThumbnailsCacheSize > 0 {
		a.cacheCleaner = cache.NewCleaner(
			a.thumbnailCache.Dir(), a.cfg.ThumbnailsCacheMaxAge, a.cfg.ThumbnailsCacheSize.Bytes(),
		)
	} else {
		rlog.Debug("thumbnail cache cleaner is disabled")

		a.cacheCleaner = cache.NewNoopCleaner()
	}

	a.thumbnailer, err = newThumbnailer(a.cfg.Thumbnailer)
	if err != nil {
		return err
	}

	resolver := thumbnails.NewResolver(
		a.thumbnailCache, a.thumbnailer, a.cfg.ThumbnailsPlaceholderExts, a.cfg.ThumbnailsGenerateTimeout,
	)

	// Settings
	a.settingsStore, err = settings.Open(a.cfg.SettingsFile())
	if err != nil {
		return fmt.Errorf("couldn't prepare settings: %w", err)
	}

	// Web Server
	a.server = web.NewServer(a.cfg, resolver, media.NewServer(), library.NewLibrary(), a.settingsStore)

	return nil
}

// newThumbnailer returns the thumbnailer of the passed kind. If the platform thumbnailer
// was selected automatically and it is not installed, only placeholders will be available.
func newThumbnailer(kind screenshelf.ThumbnailerKind) (screenshelf.NativeThumbnailer, error) {
	if kind == screenshelf.ThumbnailerNone {
		rlog.Info("thumbnailer is disabled")
		return thumbnails.NoopThumbnailer{}, nil
	}

	resolvedKind := thumbnails.ResolveThumbnailerKind(kind)
	if err := thumbnails.CheckDeps(resolvedKind); err != nil {
		if kind != screenshelf.ThumbnailerAuto {
			return nil, err
		}

		rlog.Warnf("%s, thumbnails will be replaced with placeholders", err)
		return thumbnails.NoopThumbnailer{}, nil
	}

	rlog.Infof("use %q thumbnailer", resolvedKind)

	return thumbnails.NewCommandThumbnailer(resolvedKind), nil
}

func (a *App) Start(onError func()) <-chan struct{} {
	done := make(chan struct{})

	go func() {
		var wg sync.WaitGroup
		for name, s := range map[string]interface{ Start() error }{
			"web server": a.server,
		} {
			wg.Add(1)
			go func() {
				defer wg.Done()

				if err := s.Start(); err != nil {
					rlog.Errorf("%s error: %s", name, err)
					onError()
				}
			}()
		}
		wg.Wait()

		close(done)
	}()

	return done
}

// Shutdown shutdowns all components. It is safe to call this method even if Prepare has failed.
func (a *App) Shutdown(ctx context.Context) error {
	var failed int
	for _, v := range []struct {
		name string
		s    shutdowner
	}{
		{"web server", a.server},
		{"thumbnail cache cleaner", a.cacheCleaner},
	} {
		err := safeShutdown(ctx, v.s)
		if err != nil {
			failed++
			rlog.Errorf("couldn't gracefully shutdown %s: %s", v.name, err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("couldn't gracefully shutdown %d component(s), see logs for more info", failed)
	}
	return nil
}

type shutdowner interface {
	Shutdown(context.Context) error
}

// safeShutdown calls Shutdown method only on initialized components.
func safeShutdown(ctx context.Context, s shutdowner) error {
	v := reflect.ValueOf(s)
	if !v.IsValid() || (v.Kind() == reflect.Pointer && v.IsNil()) {
		return nil
	}
	return s.Shutdown(ctx)
}
