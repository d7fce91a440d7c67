package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
)

// Loader resolves a stream URL into a decoded, seekable source.
type Loader interface {
	Load(ctx context.Context, url string) (beep.StreamSeekCloser, beep.Format, error)
}

// DefaultMaxStreamBytes caps how much of a stream is buffered in memory.
const DefaultMaxStreamBytes = 64 << 20

// ErrStreamTooLarge is returned when a stream exceeds HTTPLoader.MaxBytes.
var ErrStreamTooLarge = errors.New("stream exceeds buffer limit")

// HTTPLoader downloads a stream into memory and decodes it as MP3.
// Buffering the whole file keeps the decoder seekable.
type HTTPLoader struct {
	Client   *http.Client
	MaxBytes int64
}

// NewHTTPLoader returns a loader with the given per-request timeout.
func NewHTTPLoader(timeout time.Duration) *HTTPLoader {
	return &HTTPLoader{
		Client:   &http.Client{Timeout: timeout},
		MaxBytes: DefaultMaxStreamBytes,
	}
}

// StreamError reports a non-200 stream response.
type StreamError struct {
	URL        string
	StatusCode int
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("stream %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Load fetches url and decodes it.
func (l *HTTPLoader) Load(ctx context.Context, url string) (beep.StreamSeekCloser, beep.Format, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("create request: %w", err)
	}

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("fetch stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, beep.Format{}, &StreamError{URL: url, StatusCode: resp.StatusCode}
	}

	limit := l.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxStreamBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("read stream: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, beep.Format{}, fmt.Errorf("%w: %s is over %d bytes", ErrStreamTooLarge, url, limit)
	}

	return Decode(data)
}

// Decode decodes an in-memory MP3.
func Decode(data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	s, format, err := mp3.Decode(nopCloser{bytes.NewReader(data)})
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("decode: %w", err)
	}
	return s, format, nil
}

type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }
