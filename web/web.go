// Package web maps HTTP requests to thumbnails, media streaming and the library API.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/ShoshinNikita/screenshelf/library"
	"github.com/ShoshinNikita/screenshelf/media"
	"github.com/ShoshinNikita/screenshelf/pkg/rlog"
	"github.com/ShoshinNikita/screenshelf/screenshelf"
	"github.com/ShoshinNikita/screenshelf/settings"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const thumbnailMaxAge = 30 * 24 * time.Hour

type ThumbnailResolver interface {
	Resolve(ctx context.Context, sourcePath string) (screenshelf.Image, error)
}

type MediaServer interface {
	Serve(sourcePath, rangeHeader string) *media.Response
}

type Library interface {
	List(dir string) ([]library.Video, error)
	Save(dir, filename string, r io.Reader) (string, error)
}

type SettingsStore interface {
	Get(key string) (value any, ok bool)
	Set(key string, value any) error
	Delete(key string) error
}

type Server struct {
	httpServer *http.Server
	router     *chi.Mux

	videosDir string

	thumbnails ThumbnailResolver
	media      MediaServer
	library    Library
	settings   SettingsStore
}

func NewServer(
	cfg screenshelf.Config,
	thumbnails ThumbnailResolver, media MediaServer, library Library, settings SettingsStore,
) *Server {

	s := &Server{
		router:    chi.NewRouter(),
		videosDir: cfg.VideosDir,
		//
		thumbnails: thumbnails,
		media:      media,
		library:    library,
		settings:   settings,
	}

	s.router.Use(loggingMiddleware)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/media/*", s.handleMedia)
	s.router.Get("/thumbnail/*", s.handleThumbnail)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/videos", s.handleListVideos)
		r.Post("/videos", s.handleSaveVideo)

		r.Get("/settings/{key}", s.handleGetSetting)
		r.Put("/settings/{key}", s.handleSetSetting)
		r.Delete("/settings/{key}", s.handleDeleteSetting)
	})

	// Debug
	s.router.Handle("/debug/metrics", promhttp.Handler())

	// Only local clients are expected.
	s.httpServer = &http.Server{
		Addr:              "localhost:" + strconv.Itoa(cfg.ServerPort),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	rlog.Infof("start web server on %q", s.httpServer.Addr)

	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleMedia streams the file. It supports 'Range' header.
func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	path, err := sourcePathFromRequest(r, "/media/")
	if err != nil {
		writeBadRequestError(w, "%s", err)
		return
	}

	resp := s.media.Serve(path, r.Header.Get("Range"))
	for name, values := range resp.Header {
		w.Header()[name] = values
	}
	if resp.Body == nil {
		writeError(w, resp.StatusCode, "couldn't serve media: %s", resp.Err)
		return
	}
	defer resp.Body.Close()

	w.WriteHeader(resp.StatusCode)

	// Headers are already sent, so errors can only be logged.
	if _, err := io.Copy(w, resp.Body); err != nil && r.Context().Err() == nil {
		rlog.Errorf("couldn't stream %q: %s", path, err)
	}
}

// handleThumbnail returns the thumbnail of the file.
func (s *Server) handleThumbnail(w http.ResponseWriter, r *http.Request) {
	path, err := sourcePathFromRequest(r, "/thumbnail/")
	if err != nil {
		writeBadRequestError(w, "%s", err)
		return
	}

	img, err := s.thumbnails.Resolve(r.Context(), path)
	if err != nil {
		if r.Context().Err() != nil {
			// Client is gone.
			return
		}
		writeInternalServerError(w, "Error generating thumbnail: %s", err)
		return
	}

	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	if img.Placeholder {
		// A real thumbnail can appear later.
		w.Header().Set("Cache-Control", "no-cache")
	} else {
		// Thumbnails are immutable, so the key can be used as ETag.
		setCacheHeaders(w, thumbnailMaxAge, img.Key.String())

		if r.Header.Get("If-None-Match") == w.Header().Get("ETag") {
			w.Header().Del("Content-Length")
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	w.Write(img.Data)
}

func (s *Server) handleListVideos(w http.ResponseWriter, r *http.Request) {
	dir, err := s.videosDirFromRequest(r)
	if err != nil {
		writeBadRequestError(w, "%s", err)
		return
	}

	videos, err := s.library.List(dir)
	if err != nil {
		writeInternalServerError(w, "couldn't list videos: %s", err)
		return
	}

	writeJSON(w, http.StatusOK, videos)
}

func (s *Server) handleSaveVideo(w http.ResponseWriter, r *http.Request) {
	dir, err := s.videosDirFromRequest(r)
	if err != nil {
		writeBadRequestError(w, "%s", err)
		return
	}

	path, err := s.library.Save(dir, r.URL.Query().Get("filename"), r.Body)
	if err != nil {
		if errors.Is(err, library.ErrInvalidFilename) {
			writeBadRequestError(w, "%s", err)
			return
		}
		writeInternalServerError(w, "couldn't save video: %s", err)
		return
	}

	writeJSON(w, http.StatusCreated, SaveVideoResponse{Path: path})
}

func (s *Server) handleGetSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	value, ok := s.settings.Get(key)
	if !ok {
		writeError(w, http.StatusNotFound, "setting %q is not set", key)
		return
	}

	writeJSON(w, http.StatusOK, value)
}

func (s *Server) handleSetSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var value any
	if err := json.NewDecoder(r.Body).Decode(&value); err != nil {
		writeBadRequestError(w, "invalid json: %s", err)
		return
	}

	if err := s.settings.Set(key, value); err != nil {
		if errors.Is(err, settings.ErrInvalidKey) {
			writeBadRequestError(w, "%s", err)
			return
		}
		writeInternalServerError(w, "couldn't save setting: %s", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	if err := s.settings.Delete(key); err != nil {
		writeInternalServerError(w, "couldn't delete setting: %s", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// sourcePathFromRequest returns the decoded path that follows the prefix. For example,
// '/media/%2Fhome%2Fuser%2F1.webm' and '/media//home/user/1.webm' point to '/home/user/1.webm'.
func sourcePathFromRequest(r *http.Request, prefix string) (string, error) {
	path := strings.TrimPrefix(r.URL.Path, prefix)
	if runtime.GOOS == "windows" {
		// '/C:/Users/...'
		path = filepath.FromSlash(strings.TrimPrefix(path, "/"))
	}
	return checkAbsPath(path)
}

func (s *Server) videosDirFromRequest(r *http.Request) (string, error) {
	dir := r.URL.Query().Get("dir")
	if dir == "" {
		dir = s.videosDir
	}
	return checkAbsPath(dir)
}

func checkAbsPath(path string) (string, error) {
	if path == "" {
		return "", errors.New("path can't be empty")
	}
	if !filepath.IsAbs(path) {
		return "", fmt.Errorf("path must be absolute: %q", path)
	}
	return path, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		rlog.Errorf("couldn't encode response: %s", err)
	}
}

func writeBadRequestError(w http.ResponseWriter, format string, a ...any) {
	writeError(w, http.StatusBadRequest, format, a...)
}

func writeInternalServerError(w http.ResponseWriter, format string, a ...any) {
	writeError(w, http.StatusInternalServerError, format, a...)
}

func writeError(w http.ResponseWriter, code int, format string, a ...any) {
	http.Error(w, fmt.Sprintf(format, a...), code)
}
