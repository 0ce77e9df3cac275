package http_client

import (
	"net/http"
	"time"
)

// DefaultTimeout bounds every request made by the http dependency.
const DefaultTimeout = 30 * time.Second

// NewClient returns a pooled *http.Client. Dependencies that talk HTTP
// share one per build.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
