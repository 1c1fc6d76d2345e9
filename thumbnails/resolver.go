package thumbnails

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"sync"
	"time"

	"github.com/ShoshinNikita/screenshelf/pkg/metrics"
	"github.com/ShoshinNikita/screenshelf/pkg/rlog"
	"github.com/ShoshinNikita/screenshelf/screenshelf"
)

//go:generate mockgen -destination=mock_thumbnailer_test.go -package=thumbnails github.com/ShoshinNikita/screenshelf/screenshelf NativeThumbnailer

var errEmptyThumbnail = errors.New("thumbnailer returned an empty image")

// Resolver returns thumbnails for source files. Generated thumbnails are cached, so
// the platform thumbnailer is called only once per path.
type Resolver struct {
	cache           screenshelf.Cache
	thumbnailer     screenshelf.NativeThumbnailer
	placeholderExts screenshelf.ExtList
	generateTimeout time.Duration

	inProgressMu sync.Mutex
	inProgress   map[screenshelf.CacheKey]*generation
}

// generation is shared by all requests for the same key.
type generation struct {
	done chan struct{}
	img  screenshelf.Image
	err  error
}

func NewResolver(
	cache screenshelf.Cache, thumbnailer screenshelf.NativeThumbnailer,
	placeholderExts screenshelf.ExtList, generateTimeout time.Duration,
) *Resolver {

	return &Resolver{
		cache:           cache,
		thumbnailer:     thumbnailer,
		placeholderExts: placeholderExts,
		generateTimeout: generateTimeout,
		//
		inProgress: make(map[screenshelf.CacheKey]*generation),
	}
}

// Resolve returns a thumbnail for the passed path:
//
//  1. a cached JPEG, if it exists;
//  2. a new JPEG generated by the platform thumbnailer, it is saved to the cache;
//  3. an SVG placeholder for formats without native thumbnails, it is never cached.
//
// Otherwise it returns [screenshelf.ErrGenerationFailure].
//
// Concurrent calls for the same path share a single generation. The generation is not
// interrupted when ctx is cancelled, Resolve just stops waiting for it.
func (s *Resolver) Resolve(ctx context.Context, sourcePath string) (screenshelf.Image, error) {
	key := screenshelf.NewCacheKey(sourcePath)

	img, err := s.openCached(key)
	if err == nil {
		return img, nil
	}
	if !errors.Is(err, screenshelf.ErrCacheMiss) {
		rlog.Warnf("couldn't read cached thumbnail for %q, generate a new one: %s", sourcePath, err)
	}

	gen, isNew := s.startGeneration(key)
	if isNew {
		go func() {
			ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.generateTimeout)
			defer cancel()

			gen.img, gen.err = s.generate(ctx, key, sourcePath)
			s.finishGeneration(key, gen)
		}()
	} else {
		metrics.ThumbnailsCoalesced.Inc()
	}

	select {
	case <-gen.done:
		return gen.img, gen.err
	case <-ctx.Done():
		return screenshelf.Image{}, ctx.Err()
	}
}

func (s *Resolver) startGeneration(key screenshelf.CacheKey) (gen *generation, isNew bool) {
	s.inProgressMu.Lock()
	defer s.inProgressMu.Unlock()

	if gen, ok := s.inProgress[key]; ok {
		return gen, false
	}
	gen = &generation{
		done: make(chan struct{}),
	}
	s.inProgress[key] = gen
	return gen, true
}

func (s *Resolver) finishGeneration(key screenshelf.CacheKey, gen *generation) {
	s.inProgressMu.Lock()
	delete(s.inProgress, key)
	s.inProgressMu.Unlock()

	close(gen.done)
}

func (s *Resolver) openCached(key screenshelf.CacheKey) (screenshelf.Image, error) {
	rc, err := s.cache.Open(key)
	if err != nil {
		return screenshelf.Image{}, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return screenshelf.Image{}, fmt.Errorf("couldn't read cache file: %w", err)
	}
	return screenshelf.Image{
		Key:         key,
		ContentType: screenshelf.JPEGContentType,
		Data:        data,
	}, nil
}

func (s *Resolver) generate(ctx context.Context, key screenshelf.CacheKey, sourcePath string) (screenshelf.Image, error) {
	// Another generation could have finished between the cache check and the start of this one.
	if img, err := s.openCached(key); err == nil {
		return img, nil
	}

	now := time.Now()
	thumbnail, err := s.thumbnailer.Generate(ctx, sourcePath, screenshelf.ThumbnailWidth, screenshelf.ThumbnailHeight)
	if err == nil && isEmptyImage(thumbnail) {
		err = errEmptyThumbnail
	}
	if err != nil {
		if s.placeholderExts.Contains(screenshelf.GetFileExt(sourcePath)) {
			metrics.ThumbnailsPlaceholders.Inc()
			rlog.Debugf("use placeholder for %q: %s", sourcePath, err)

			return newPlaceholder(key, sourcePath), nil
		}

		metrics.ThumbnailsErrors.Inc()
		rlog.Errorf("couldn't generate thumbnail for %q: %s", sourcePath, err)

		return screenshelf.Image{}, fmt.Errorf("%w: %w", screenshelf.ErrGenerationFailure, err)
	}

	data, err := encodeJPEG(thumbnail, screenshelf.ThumbnailWidth, screenshelf.ThumbnailHeight)
	if err != nil {
		metrics.ThumbnailsErrors.Inc()
		return screenshelf.Image{}, fmt.Errorf("%w: %w", screenshelf.ErrGenerationFailure, err)
	}

	dur := time.Since(now)
	metrics.ThumbnailsGenerated.Inc()
	metrics.ThumbnailsGenerateDuration.Observe(dur.Seconds())
	metrics.ThumbnailsSizes.Observe(float64(len(data)))
	rlog.Debugf("thumbnail for %q was generated in %s, size: %d bytes", sourcePath, dur, len(data))

	// The request must not fail because of the cache.
	if err := s.cache.Write(key, bytes.NewReader(data)); err != nil {
		metrics.CacheWriteErrors.Inc()
		rlog.Errorf("couldn't save thumbnail for %q: %s", sourcePath, err)
	}

	return screenshelf.Image{
		Key:         key,
		ContentType: screenshelf.JPEGContentType,
		Data:        data,
	}, nil
}

func isEmptyImage(img image.Image) bool {
	return img == nil || img.Bounds().Empty()
}
