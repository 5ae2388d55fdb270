package logs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"

	"osassist/internal/resources"
)

// DefaultMaxBytes caps a single read when the request does not set MaxBytes.
const DefaultMaxBytes uint64 = 64 * 1024

// ErrResourcesNotFound is returned when the log base directory cannot be located.
var ErrResourcesNotFound = resources.ErrNotFound

// TailRequest selects what a single read returns.
type TailRequest struct {
	// Offset is the cursor returned by the previous call; zero reads from the start.
	Offset uint64 `json:"offset,omitempty"`
	// MaxBytes caps bytes read from disk. Nil means DefaultMaxBytes; zero is
	// legal and always yields an empty read.
	MaxBytes *uint64 `json:"max_bytes,omitempty"`
	// LastLines switches a zero-offset request to tail-from-end mode.
	LastLines int `json:"last_lines,omitempty"`
}

// Cap returns a MaxBytes value for TailRequest literals.
func Cap(n uint64) *uint64 {
	return &n
}

func (r TailRequest) limit(fallback uint64) uint64 {
	if r.MaxBytes != nil {
		return *r.MaxBytes
	}
	return fallback
}

func (r TailRequest) tailMode() bool {
	return r.LastLines > 0 && r.Offset == 0
}

// LogChunk is the result of one read.
type LogChunk struct {
	Content string `json:"content"`
	// Offset is the file length observed by this read; pass it back next time.
	Offset uint64 `json:"offset"`
	Path   string `json:"path"`
}

// IOError wraps a failed open/stat/read on an existing log file.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s log file %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// DecodeError reports a byte window that is not valid UTF-8.
type DecodeError struct {
	Path   string
	Offset uint64
	Length uint64
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode log file %s at bytes %d-%d: %v", e.Path, e.Offset, e.Offset+e.Length, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Tail reads the next chunk of path according to req. A missing file is not
// an error and yields an empty chunk with a zero offset.
func Tail(path string, req TailRequest) (LogChunk, error) {
	return tailFile(path, req, DefaultMaxBytes)
}

func tailFile(path string, req TailRequest, defaultMax uint64) (LogChunk, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return LogChunk{Path: path}, nil
		}
		return LogChunk{}, &IOError{Op: "open", Path: path, Err: err}
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return LogChunk{}, &IOError{Op: "stat", Path: path, Err: err}
	}
	if info.IsDir() {
		return LogChunk{}, &IOError{Op: "stat", Path: path, Err: errors.New("is a directory")}
	}
	size := uint64(info.Size())
	limit := req.limit(defaultMax)

	if req.tailMode() {
		toRead := min(size, limit)
		readStart := size - toRead
		text, err := readWindow(file, path, readStart, toRead)
		if err != nil {
			return LogChunk{}, err
		}
		return LogChunk{
			Content: lastLines(text, req.LastLines, readStart > 0),
			Offset:  size,
			Path:    path,
		}, nil
	}

	start := req.Offset
	if start > size {
		// Truncated or rotated since the caller's last read.
		start = size - min(size, limit)
	}
	text, err := readWindow(file, path, start, min(size-start, limit))
	if err != nil {
		return LogChunk{}, err
	}
	return LogChunk{Content: text, Offset: size, Path: path}, nil
}

func readWindow(file *os.File, path string, start, length uint64) (string, error) {
	if length == 0 {
		return "", nil
	}
	buf := make([]byte, length)
	n, err := io.ReadFull(io.NewSectionReader(file, int64(start), int64(length)), buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", &IOError{Op: "read", Path: path, Err: err}
	}
	// A short read means the producer truncated the file after our stat.
	buf = buf[:n]

	valid, _, err := transform.Bytes(encoding.UTF8Validator, buf)
	if err != nil {
		return "", &DecodeError{Path: path, Offset: start, Length: uint64(n), Err: err}
	}
	return string(valid), nil
}

// lastLines keeps the final n lines of window. When the window did not start
// at the beginning of the file its first line may be a fragment; if the kept
// slice still begins with that line, everything through the first newline is
// dropped, and a slice without any newline is discarded entirely.
func lastLines(window string, n int, startedMidFile bool) string {
	text := strings.ReplaceAll(window, "\r", "")
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	from := max(0, len(lines)-n)
	content := strings.Join(lines[from:], "\n")
	if !startedMidFile || from > 0 {
		return content
	}
	idx := strings.IndexByte(content, '\n')
	if idx < 0 {
		return ""
	}
	return content[idx+1:]
}
