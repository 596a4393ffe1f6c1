package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/dqs/internal/ingest"
	"github.com/wonny/dqs/pkg/config"
	"github.com/wonny/dqs/pkg/httputil"
	"github.com/wonny/dqs/pkg/logger"
)

func newTestFetcher(maxBytes int64) *Fetcher {
	client := httputil.New(config.FetchConfig{
		RequestsPerSecond: 100,
		Timeout:           5 * time.Second,
	}, logger.Nop()).WithRetry(0, time.Millisecond)
	return NewFetcher(client, maxBytes, logger.Nop())
}

func newIndexServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/data/index.html", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body>
			<a href="payments.csv">payments</a>
			<a href="/exports/ledger.CSV#top">ledger</a>
			<a href="payments.csv">again</a>
			<a href="readme.txt">readme</a>
			<a href="mailto:x@example.com">mail</a>
			<a href="https://other.example.com/remote.csv">remote</a>
		</body></html>`))
	})
	mux.HandleFunc("/data/payments.csv", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("transaction_id,amount\nTX1,10\nTX2,20\n"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestIsRemote(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://example.com/a.csv", true},
		{"http://example.com/a.csv", true},
		{"ftp://example.com/a.csv", false},
		{"data/a.csv", false},
		{"/abs/a.csv", false},
		{"C:\\data\\a.csv", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsRemote(tt.in), tt.in)
	}
}

func TestFetch(t *testing.T) {
	srv := newIndexServer(t)
	f := newTestFetcher(1 << 20)

	table, err := f.Fetch(context.Background(), srv.URL+"/data/payments.csv", ingest.LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"transaction_id", "amount"}, table.Columns)
	assert.Equal(t, 2, table.NumRows())
}

func TestFetch_Errors(t *testing.T) {
	srv := newIndexServer(t)

	_, err := newTestFetcher(1<<20).Fetch(context.Background(), srv.URL+"/data/missing.csv", ingest.LoadOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ingest.ErrSourceMissing))

	_, err = newTestFetcher(8).Fetch(context.Background(), srv.URL+"/data/payments.csv", ingest.LoadOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, httputil.ErrTooLarge))
	var ie *ingest.IngestError
	assert.True(t, errors.As(err, &ie))
}

func TestDiscoverLinks(t *testing.T) {
	srv := newIndexServer(t)
	f := newTestFetcher(1 << 20)

	links, err := f.DiscoverLinks(context.Background(), srv.URL+"/data/index.html")
	require.NoError(t, err)
	assert.Equal(t, []string{
		srv.URL + "/data/payments.csv",
		srv.URL + "/exports/ledger.CSV",
		"https://other.example.com/remote.csv",
	}, links)

	for _, l := range links {
		assert.False(t, strings.Contains(l, "#"))
	}
}
