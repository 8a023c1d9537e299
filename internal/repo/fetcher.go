package repo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"
)

// PageResult carries the raw outcome of one page fetch.
type PageResult struct {
	StatusCode int
	Body       string
	Elapsed    time.Duration
	FinalURL   string
	Redirects  int
}

// PageFetcher retrieves product pages over HTTP. Redirects are followed
// up to a cap and counted; the count feeds redirect-loop detection.
type PageFetcher struct {
	transport    http.RoundTripper
	timeout      time.Duration
	userAgent    string
	maxRedirects int
	maxBodyBytes int64
}

// NewPageFetcher constructs a fetcher with a bounded per-request timeout.
func NewPageFetcher(timeout time.Duration, userAgent string, maxRedirects int, maxBodyBytes int64) *PageFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxRedirects <= 0 {
		maxRedirects = 10
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = 2 << 20
	}
	return &PageFetcher{
		transport:    http.DefaultTransport,
		timeout:      timeout,
		userAgent:    userAgent,
		maxRedirects: maxRedirects,
		maxBodyBytes: maxBodyBytes,
	}
}

// Fetch issues a GET and returns the final response. Network failures
// and timeouts return an error; any HTTP status is a valid result for
// classification.
func (f *PageFetcher) Fetch(ctx context.Context, url string, headers map[string]string) (PageResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return PageResult{}, fmt.Errorf("build request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	// The redirect counter is per call, so the client is assembled per
	// call around the shared transport.
	var redirects atomic.Int32
	client := &http.Client{
		Transport: f.transport,
		Timeout:   f.timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if int(redirects.Add(1)) > f.maxRedirects {
				// Surface the last response rather than erroring so the
				// classifier sees the loop.
				return http.ErrUseLastResponse
			}
			return nil
		},
	}

	start := time.Now()
	resp, err := client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return PageResult{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return PageResult{}, fmt.Errorf("read body: %w", err)
	}

	finalURL := url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return PageResult{
		StatusCode: resp.StatusCode,
		Body:       string(body),
		Elapsed:    elapsed,
		FinalURL:   finalURL,
		Redirects:  int(redirects.Load()),
	}, nil
}
