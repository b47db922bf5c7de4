package fetcher_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/rules_sri/fetcher"
)

func newFetcher(tb testing.TB, cfg fetcher.Config) *fetcher.Fetcher {
	tb.Helper()

	fe, err := fetcher.New(cfg)
	require.NoError(tb, err)

	return fe
}

func TestFetch_returns_exact_body(t *testing.T) {
	t.Parallel()

	body := []byte("console.log('x');\n\x00\xff")

	var gotMode, gotUA, gotCache string

	ts := httptest.NewServer(
		http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				gotMode = r.Header.Get("Sec-Fetch-Mode")
				gotUA = r.Header.Get("User-Agent")
				gotCache = r.Header.Get("Cache-Control")

				_, _ = w.Write(body)
			},
		),
	)
	defer ts.Close()

	fe := newFetcher(t, fetcher.Config{UserAgent: "sri-test"})

	got, err := fe.Fetch(context.Background(), ts.URL+"/app.js")

	require.NoError(t, err)
	assert.Equal(t, body, got)
	assert.Equal(t, "cors", gotMode)
	assert.Equal(t, "sri-test", gotUA)
	assert.Empty(t, gotCache)
}

func TestFetch_not_found(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	fe := newFetcher(t, fetcher.Config{})

	got, err := fe.Fetch(context.Background(), ts.URL+"/missing.js")

	assert.Nil(t, got)

	var fe404 *fetcher.FetchError
	require.ErrorAs(t, err, &fe404)
	assert.Equal(t, http.StatusNotFound, fe404.StatusCode)
	assert.Equal(t, "Not Found", fe404.Reason)
	assert.ErrorContains(t, err, "HTTP 404: Not Found")
}

func TestFetch_server_error(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(
		http.HandlerFunc(
			func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
		),
	)
	defer ts.Close()

	fe := newFetcher(t, fetcher.Config{})

	_, err := fe.Fetch(context.Background(), ts.URL)

	var fErr *fetcher.FetchError
	require.ErrorAs(t, err, &fErr)
	assert.Equal(t, http.StatusBadGateway, fErr.StatusCode)
}

func TestFetch_no_retry(t *testing.T) {
	t.Parallel()

	calls := 0

	ts := httptest.NewServer(
		http.HandlerFunc(
			func(w http.ResponseWriter, _ *http.Request) {
				calls++

				w.WriteHeader(http.StatusServiceUnavailable)
			},
		),
	)
	defer ts.Close()

	fe := newFetcher(t, fetcher.Config{})

	_, err := fe.Fetch(context.Background(), ts.URL)

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestFetch_transport_error(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.NotFoundHandler())
	addr := ts.URL
	ts.Close()

	fe := newFetcher(t, fetcher.Config{})

	_, err := fe.Fetch(context.Background(), addr)

	var fErr *fetcher.FetchError
	require.ErrorAs(t, err, &fErr)
	assert.Zero(t, fErr.StatusCode)
	assert.Error(t, fErr.Err)
}

func TestFetch_context_cancelled(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})

	ts := httptest.NewServer(
		http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-release:
				case <-r.Context().Done():
				}
			},
		),
	)
	defer ts.Close()
	defer close(release)

	fe := newFetcher(t, fetcher.Config{})

	ctx, cancel := context.WithTimeout(
		context.Background(), 50*time.Millisecond,
	)
	defer cancel()

	_, err := fe.Fetch(ctx, ts.URL)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFetch_unsupported_scheme(t *testing.T) {
	t.Parallel()

	fe := newFetcher(t, fetcher.Config{})

	for _, raw := range []string{"ftp://example.com/a.js", "file:///etc/hosts", "app.js"} {
		_, err := fe.Fetch(context.Background(), raw)

		var fErr *fetcher.FetchError
		require.ErrorAs(t, err, &fErr, raw)
		assert.ErrorIs(t, err, fetcher.ErrUnsupportedScheme, raw)
	}
}

func TestFetch_malformed_url(t *testing.T) {
	t.Parallel()

	fe := newFetcher(t, fetcher.Config{})

	_, err := fe.Fetch(context.Background(), "http://[::1")

	var fErr *fetcher.FetchError
	assert.ErrorAs(t, err, &fErr)
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pa := filepath.Join(dir, "bundle.js")
	require.NoError(t, os.WriteFile(pa, []byte("test"), 0o600))

	got, err := fetcher.ReadFile(pa)

	require.NoError(t, err)
	assert.Equal(t, []byte("test"), got)
}

func TestReadFile_missing(t *testing.T) {
	t.Parallel()

	_, err := fetcher.ReadFile("/nonexistent/bundle.js")

	var fErr *fetcher.FetchError
	require.ErrorAs(t, err, &fErr)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSplitRef(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		escaped string
		wantPa  string
		wantRef string
	}{
		{name: "no ref", escaped: "js/app.js", wantPa: "js/app.js"},
		{name: "ref", escaped: "js/app.js@v1", wantPa: "js/app.js", wantRef: "v1"},
		{name: "escaped at", escaped: "img/logo%402x.png", wantPa: "img/logo@2x.png"},
		{
			name:    "escaped at with ref",
			escaped: "img/logo%402x.png@main",
			wantPa:  "img/logo@2x.png",
			wantRef: "main",
		},
		{name: "at in directory", escaped: "v@1/app.js", wantPa: "v@1/app.js"},
		{name: "escaped ref", escaped: "app.js@feature%2Fx", wantPa: "app.js", wantRef: "feature/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pa, ref, err := fetcher.SplitRef(tt.escaped)

			require.NoError(t, err)
			assert.Equal(t, tt.wantPa, pa)
			assert.Equal(t, tt.wantRef, ref)
		})
	}
}

func TestSplitRef_bad_escape(t *testing.T) {
	t.Parallel()

	_, _, err := fetcher.SplitRef("js/app%zz.js")

	require.Error(t, err)
}
