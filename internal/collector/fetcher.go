package collector

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"TrendScope/internal/model"
)

// ErrNoData is returned when a provider has no bars for the requested range.
var ErrNoData = errors.New("no data returned")

// Fetcher defines the interface for fetching daily bars.
// start is inclusive, end is exclusive; bars are returned in ascending date order.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.Bar, error)
	Name() string
}

// newHTTPClient builds the client shared by the HTTP fetchers with optional proxy support.
func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
