package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ava-labs/checkpoint-indexer/pkg/metrics"
)

// BlobEncodingBCS is the leading byte of a checkpoint blob whose remainder is BCS.
const BlobEncodingBCS byte = 1

// ErrNotAvailable is returned when the endpoint has not produced the checkpoint yet.
var ErrNotAvailable = errors.New("checkpoint not available yet")

// Client fetches the BCS bytes of one checkpoint.
type Client interface {
	Fetch(ctx context.Context, seq uint64) ([]byte, error)
}

// StatusError is an unexpected HTTP status from the checkpoint endpoint.
type StatusError struct {
	Sequence uint64
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch checkpoint %d: unexpected status %d", e.Sequence, e.Code)
}

// HTTPClient reads checkpoints from a bucket-style endpoint serving {endpoint}/{seq}.chk.
type HTTPClient struct {
	endpoint string
	http     *http.Client
	metrics  *metrics.Metrics
}

// NewHTTPClient creates a client for endpoint. m may be nil.
func NewHTTPClient(endpoint string, timeout time.Duration, m *metrics.Metrics) (*HTTPClient, error) {
	if endpoint == "" {
		return nil, errors.New("invalid endpoint: must not be empty")
	}
	if timeout <= 0 {
		return nil, errors.New("invalid timeout: must be greater than 0")
	}
	return &HTTPClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     &http.Client{Timeout: timeout},
		metrics:  m,
	}, nil
}

// URL returns the location of checkpoint seq.
func (c *HTTPClient) URL(seq uint64) string {
	return c.endpoint + "/" + strconv.FormatUint(seq, 10) + ".chk"
}

// Fetch downloads checkpoint seq and strips the blob encoding byte.
func (c *HTTPClient) Fetch(ctx context.Context, seq uint64) ([]byte, error) {
	start := time.Now()
	b, err := c.fetch(ctx, seq)
	if !errors.Is(err, ErrNotAvailable) {
		c.metrics.RecordFetch(err, time.Since(start).Seconds())
	}
	return b, err
}

func (c *HTTPClient) fetch(ctx context.Context, seq uint64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(seq), nil)
	if err != nil {
		return nil, fmt.Errorf("build request for checkpoint %d: %w", seq, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch checkpoint %d: %w", seq, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("checkpoint %d: %w", seq, ErrNotAvailable)
	default:
		return nil, &StatusError{Sequence: seq, Code: resp.StatusCode}
	}

	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read checkpoint %d: %w", seq, err)
	}
	if len(blob) == 0 {
		return nil, fmt.Errorf("checkpoint %d: empty blob", seq)
	}
	if blob[0] != BlobEncodingBCS {
		return nil, fmt.Errorf("checkpoint %d: unsupported blob encoding %d", seq, blob[0])
	}
	return blob[1:], nil
}
