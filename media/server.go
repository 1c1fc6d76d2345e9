// Package media serves recordings with support of byte ranges, so players can seek.
package media

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/ShoshinNikita/screenshelf/pkg/metrics"
	"github.com/ShoshinNikita/screenshelf/pkg/rlog"
	"github.com/ShoshinNikita/screenshelf/screenshelf"
	"github.com/prometheus/client_golang/prometheus"
)

type Server struct{}

func NewServer() *Server {
	return &Server{}
}

// Response is a framed response for a media request. Body is nil for error responses.
// The caller must close Body.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
	// Err explains non-success status codes.
	Err error
}

// Serve returns a response for the passed file and the value of 'Range' header.
// The file is opened only when Body is read.
func (s *Server) Serve(sourcePath, rangeHeader string) *Response {
	info, err := os.Stat(sourcePath)
	if err == nil && info.IsDir() {
		err = errors.New("path is a directory")
	}
	if err != nil {
		incMediaRequests("not_found")
		rlog.Debugf("couldn't stat media file %q: %s", sourcePath, err)

		return &Response{
			StatusCode: http.StatusNotFound,
			Header:     http.Header{},
			Err:        fmt.Errorf("%w: %w", screenshelf.ErrNotFound, err),
		}
	}

	size := info.Size()
	header := http.Header{}
	header.Set("Accept-Ranges", "bytes")
	header.Set("Content-Type", screenshelf.GetVideoContentType(sourcePath))

	if rangeHeader == "" {
		incMediaRequests("full")

		header.Set("Content-Length", strconv.FormatInt(size, 10))
		return &Response{
			StatusCode: http.StatusOK,
			Header:     header,
			Body:       newFileReader(sourcePath, 0, size),
		}
	}

	byteRange, err := ParseRange(rangeHeader, size)
	if err != nil {
		incMediaRequests("unsatisfiable")

		header.Del("Content-Type")
		header.Set("Content-Range", "bytes */"+strconv.FormatInt(size, 10))
		return &Response{
			StatusCode: http.StatusRequestedRangeNotSatisfiable,
			Header:     header,
			Err:        fmt.Errorf("invalid range %q: %w", rangeHeader, err),
		}
	}

	incMediaRequests("partial")

	header.Set("Content-Range", byteRange.ContentRange(size))
	header.Set("Content-Length", strconv.FormatInt(byteRange.Length(), 10))
	return &Response{
		StatusCode: http.StatusPartialContent,
		Header:     header,
		Body:       newFileReader(sourcePath, byteRange.Start, byteRange.Length()),
	}
}

func incMediaRequests(kind string) {
	metrics.MediaRequests.With(prometheus.Labels{"kind": kind}).Inc()
}

// fileReader reads length bytes from offset of the file. The file is opened on the first read.
type fileReader struct {
	path   string
	offset int64
	length int64

	file *os.File
	r    io.Reader
}

func newFileReader(path string, offset, length int64) *fileReader {
	return &fileReader{
		path:   path,
		offset: offset,
		length: length,
	}
}

func (r *fileReader) Read(p []byte) (int, error) {
	if r.r == nil {
		if err := r.open(); err != nil {
			return 0, err
		}
	}

	n, err := r.r.Read(p)
	metrics.MediaBytesServed.Add(float64(n))
	return n, err
}

func (r *fileReader) open() error {
	f, err := os.Open(r.path)
	if err != nil {
		return fmt.Errorf("couldn't open file: %w", err)
	}
	if _, err := f.Seek(r.offset, io.SeekStart); err != nil {
		f.Close()
		return fmt.Errorf("couldn't seek file: %w", err)
	}

	r.file = f
	r.r = io.LimitReader(f, r.length)
	return nil
}

func (r *fileReader) Close() error {
	if r.file == nil {
		return nil
	}
	return r.file.Close()
}
