package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

type GetOptions struct {
	MaxSize  int
	Timeout  time.Duration
	Cache    bool
	CacheTTL time.Duration

	// Key to cache the response under. Defaults to the URL. Useful
	// when the URL carries something that changes between
	// otherwise identical requests, like a rotating API key.
	CacheKey string

	// Skip the cache lookup, but still cache the response. Used
	// to refresh entries ahead of their expiry.
	Refresh bool

	// Checks a freshly downloaded body. If it fails, Get returns
	// its error as is and nothing is cached. Cached bodies are
	// not checked again.
	Validate func(body []byte) error
}

func (o GetOptions) key(url string) string {
	if o.CacheKey != "" {
		return o.CacheKey
	}
	return url
}

// A thing capable of downloading a file, optionally with caching
type Downloader interface {
	Get(ctx context.Context, url string, headers map[string]string, options GetOptions) ([]byte, error)
}

// Returned by HTTPGet for non-200 responses.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d", e.StatusCode)
}

// HTTPGet, followed by options.Validate.
func fetch(ctx context.Context, url string, headers map[string]string, options GetOptions) ([]byte, error) {
	body, err := HTTPGet(ctx, url, headers, options)
	if err != nil {
		return nil, err
	}

	if options.Validate != nil {
		if err := options.Validate(body); err != nil {
			return nil, err
		}
	}

	return body, nil
}

// Gets a file. Doesn't cache or validate. Provided as convenience for
// implementing custom Downloaders.
func HTTPGet(ctx context.Context, url string, headers map[string]string, options GetOptions) ([]byte, error) {
	client := &http.Client{
		Timeout: options.Timeout,
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	for k, v := range headers {
		req.Header.Add(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	var reader io.Reader = resp.Body
	if options.MaxSize > 0 {
		reader = io.LimitReader(resp.Body, int64(options.MaxSize))
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}

	return body, nil
}
