package logs

import (
	"context"
	"time"

	"osassist/internal/resources"
)

// Reader tails the assistant log wherever the resources locator finds it.
type Reader struct {
	locator  *resources.Locator
	logName  string
	maxBytes uint64
}

// NewReader builds a Reader for logName. A zero maxBytes selects
// DefaultMaxBytes for requests that do not set their own cap.
func NewReader(locator *resources.Locator, logName string, maxBytes uint64) *Reader {
	if maxBytes == 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Reader{locator: locator, logName: logName, maxBytes: maxBytes}
}

// Path resolves the log file location without touching the file.
func (r *Reader) Path() (string, error) {
	return r.locator.LogPath(r.logName)
}

// Tail resolves the log path and reads the next chunk. It returns
// ErrResourcesNotFound when no resources directory exists.
func (r *Reader) Tail(req TailRequest) (LogChunk, error) {
	path, err := r.Path()
	if err != nil {
		return LogChunk{}, err
	}
	return tailFile(path, req, r.maxBytes)
}

// TailFunc performs one read; Reader.Tail and APIClient calls both fit.
type TailFunc func(TailRequest) (LogChunk, error)

// Follow polls fetch every interval, starting with req and continuing in
// forward mode from each returned offset. The first chunk is handed to fn
// even when empty; later chunks only when they carry content. Follow returns
// when ctx is done or when fetch or fn fails, and never advances the cursor
// past a failed read.
func Follow(ctx context.Context, fetch TailFunc, req TailRequest, interval time.Duration, fn func(LogChunk) error) error {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	first := true
	for {
		chunk, err := fetch(req)
		if err != nil {
			return err
		}
		if first || chunk.Content != "" {
			if err := fn(chunk); err != nil {
				return err
			}
		}
		first = false
		req.Offset = chunk.Offset
		req.LastLines = 0

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
