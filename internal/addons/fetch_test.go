package addons

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubeuno/kubeuno/internal/config"
)

func newTestFetcher() *Fetcher {
	return &Fetcher{
		client:  http.DefaultClient,
		retries: 2,
		delay:   time.Millisecond,
	}
}

func TestFetcher_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("kind: ConfigMap"))
	}))
	defer server.Close()

	body, err := newTestFetcher().Fetch(t.Context(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, []byte("kind: ConfigMap"), body)
}

func TestFetcher_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	body, err := newTestFetcher().Fetch(t.Context(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), body)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetcher_ExhaustsRetryBudget(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestFetcher().Fetch(t.Context(), server.URL)
	assert.Error(t, err)
	// Initial attempt plus two retries.
	assert.Equal(t, int32(3), calls.Load())
}

func TestNewFetcher_UsesConfiguredBudget(t *testing.T) {
	timeouts := &config.Timeouts{FetchRetries: 7, FetchRetryDelay: 4 * time.Second}
	fetcher := NewFetcher(timeouts)
	assert.Equal(t, 7, fetcher.retries)
	assert.Equal(t, 4*time.Second, fetcher.delay)
}
