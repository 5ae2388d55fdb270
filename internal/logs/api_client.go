package logs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var ErrAPIUnavailable = errors.New("log API unavailable")

// APIError carries the message the panel HTTP API returned with a failure status.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api logs returned status %d", e.Status)
	}
	return fmt.Sprintf("api logs returned status %d: %s", e.Status, e.Message)
}

// APIClient reads log chunks from a running panel's HTTP API.
type APIClient struct {
	base *url.URL
	http *http.Client
}

// NewAPIClient returns nil when bind is empty so callers can fall back to
// reading the file directly.
func NewAPIClient(bind string) (*APIClient, error) {
	bind = strings.TrimSpace(bind)
	if bind == "" {
		return nil, nil
	}
	if !strings.Contains(bind, "://") {
		bind = "http://" + bind
	}
	base, err := url.Parse(bind)
	if err != nil {
		return nil, err
	}
	base.Path = ""
	base.RawQuery = ""
	base.Fragment = ""

	return &APIClient{
		base: base,
		http: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Fetch performs one tail request against /api/logs.
func (c *APIClient) Fetch(ctx context.Context, req TailRequest) (LogChunk, error) {
	if c == nil {
		return LogChunk{}, ErrAPIUnavailable
	}

	values := url.Values{}
	if req.Offset > 0 {
		values.Set("offset", strconv.FormatUint(req.Offset, 10))
	}
	if req.MaxBytes != nil {
		values.Set("max_bytes", strconv.FormatUint(*req.MaxBytes, 10))
	}
	if req.LastLines > 0 {
		values.Set("last_lines", strconv.Itoa(req.LastLines))
	}

	endpoint := c.base.ResolveReference(&url.URL{Path: "/api/logs", RawQuery: values.Encode()})
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return LogChunk{}, err
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return LogChunk{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		return LogChunk{}, &APIError{Status: resp.StatusCode, Message: payload.Error}
	}

	var chunk LogChunk
	if err := json.NewDecoder(resp.Body).Decode(&chunk); err != nil {
		return LogChunk{}, err
	}
	return chunk, nil
}

// TailFunc adapts the client to Follow using ctx for every request.
func (c *APIClient) TailFunc(ctx context.Context) TailFunc {
	return func(req TailRequest) (LogChunk, error) {
		return c.Fetch(ctx, req)
	}
}

// IsAPIUnavailable reports whether err means nothing is listening on the API bind.
func IsAPIUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		err = urlErr.Err
	}
	var opErr *net.OpError
	return errors.Is(err, ErrAPIUnavailable) || errors.As(err, &opErr)
}
