package media

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ShoshinNikita/screenshelf/screenshelf"
)

// ByteRange is an inclusive range of bytes.
type ByteRange struct {
	Start int64
	End   int64
}

func (r ByteRange) Length() int64 {
	return r.End - r.Start + 1
}

// ContentRange returns the value of 'Content-Range' header.
func (r ByteRange) ContentRange(size int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End, size)
}

// ErrUnsatisfiableRange is returned for syntactically valid ranges that don't overlap the file.
var ErrUnsatisfiableRange = errors.New("range not satisfiable")

// Only the first range of a multi-range header is used.
var rangeRegex = regexp.MustCompile(`^bytes=(\d*)-(\d*)(?:,.*)?$`)

// ParseRange parses 'Range' header for a file of the passed size. The end beyond
// the file is clamped to size-1.
func ParseRange(value string, size int64) (ByteRange, error) {
	parts := rangeRegex.FindStringSubmatch(strings.TrimSpace(value))
	if parts == nil {
		return ByteRange{}, screenshelf.ErrMalformedRange
	}
	rawStart, rawEnd := parts[1], parts[2]

	if rawStart == "" {
		// Suffix range: 'bytes=-500' means the last 500 bytes.
		if rawEnd == "" {
			return ByteRange{}, screenshelf.ErrMalformedRange
		}
		suffix, err := strconv.ParseInt(rawEnd, 10, 64)
		if err != nil {
			return ByteRange{}, fmt.Errorf("%w: invalid suffix length: %w", screenshelf.ErrMalformedRange, err)
		}
		if suffix == 0 || size == 0 {
			return ByteRange{}, ErrUnsatisfiableRange
		}
		return ByteRange{
			Start: max(size-suffix, 0),
			End:   size - 1,
		}, nil
	}

	start, err := strconv.ParseInt(rawStart, 10, 64)
	if err != nil {
		return ByteRange{}, fmt.Errorf("%w: invalid start: %w", screenshelf.ErrMalformedRange, err)
	}

	end := size - 1
	if rawEnd != "" {
		end, err = strconv.ParseInt(rawEnd, 10, 64)
		if err != nil {
			return ByteRange{}, fmt.Errorf("%w: invalid end: %w", screenshelf.ErrMalformedRange, err)
		}
		end = min(end, size-1)
	}

	if start >= size || start > end {
		return ByteRange{}, ErrUnsatisfiableRange
	}
	return ByteRange{Start: start, End: end}, nil
}
