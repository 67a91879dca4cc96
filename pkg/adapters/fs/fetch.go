package fs

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/aretw0/wxrmd/pkg/core"
)

// UserAgent is sent with every image request.
const UserAgent = "wxrmd"

var percentEscape = regexp.MustCompile(`%[0-9A-Fa-f]{2}`)

// Fetcher downloads the bytes behind a URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// StatusError is returned for a response outside the 2xx range.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// HTTPFetcher fetches images over HTTP with retries and exponential backoff.
type HTTPFetcher struct {
	client *retryablehttp.Client
}

// NewHTTPFetcher builds a fetcher from the retry and TLS settings in cfg.
func NewHTTPFetcher(cfg core.Config, logger *slog.Logger) *HTTPFetcher {
	if logger == nil {
		logger = slog.Default()
	}

	client := retryablehttp.NewClient()
	client.RetryMax = cfg.Retries
	client.RetryWaitMin = 250 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.Logger = logger.With("component", "fetcher")
	// the last response is kept so its status can be reported
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.HTTPClient.Timeout = 60 * time.Second

	if !cfg.StrictSSL {
		if transport, ok := client.HTTPClient.Transport.(*http.Transport); ok {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402 -- opt-in via strict_ssl
		}
	}
	return &HTTPFetcher{client: client}
}

// Fetch downloads rawURL. A URL without percent escapes is encoded first.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	target := encodeURL(rawURL)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body of %s: %w", rawURL, err)
	}
	return data, nil
}

func encodeURL(rawURL string) string {
	if percentEscape.MatchString(rawURL) {
		return rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.String()
}
