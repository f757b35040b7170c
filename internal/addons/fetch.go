// Package addons provides the stages that install cluster addons: CNI,
// ingress-nginx, cert-manager, metrics-server, and the optional helm CLI.
// Manifest-based addons are fetched over HTTP and server-side applied
// through the cluster API handle.
package addons

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kubeuno/kubeuno/internal/config"
	"github.com/kubeuno/kubeuno/internal/util/retry"
)

// FetchFunc downloads the content behind a URL. Stages take it as a
// parameter so tests can substitute canned manifests.
type FetchFunc func(ctx context.Context, url string) ([]byte, error)

// Fetcher downloads addon manifests with bounded retry. Transient transport
// errors and non-2xx responses are retried with exponential backoff.
type Fetcher struct {
	client  *http.Client
	retries int
	delay   time.Duration
}

// NewFetcher creates a fetcher using the configured retry budget.
func NewFetcher(timeouts *config.Timeouts) *Fetcher {
	return &Fetcher{
		client:  &http.Client{Timeout: 30 * time.Second},
		retries: timeouts.FetchRetries,
		delay:   timeouts.FetchRetryDelay,
	}
}

// Fetch downloads the URL, retrying on failure.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var body []byte

	err := retry.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return retry.Fatal(err)
		}

		resp, err := f.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("GET %s returned %s", url, resp.Status)
		}

		body, err = io.ReadAll(resp.Body)
		return err
	}, retry.WithMaxRetries(f.retries), retry.WithInitialDelay(f.delay))
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	return body, nil
}
