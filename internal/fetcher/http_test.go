package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sepbatch-test", r.Header.Get("User-Agent"))
		w.Write([]byte("flux data")) //nolint:errcheck
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "goes13", "2012.csv")
	f := New(Options{UserAgent: "sepbatch-test", RatePerSec: 100, Burst: 10})

	require.NoError(t, f.Download(context.Background(), srv.URL, dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "flux data", string(data))

	// Temp file cleaned up.
	entries, err := os.ReadDir(filepath.Dir(dest))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDownload_SkipsExisting(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "archive.csv")
	require.NoError(t, os.WriteFile(dest, []byte("already here"), 0o644))

	f := New(Options{RatePerSec: 100})
	require.NoError(t, f.Download(context.Background(), srv.URL, dest))

	assert.Equal(t, int64(0), hits.Load(), "existing file must not be re-fetched")
	data, _ := os.ReadFile(dest)
	assert.Equal(t, "already here", string(data))
}

func TestDownload_RetriesThenSucceeds(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("ok")) //nolint:errcheck
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "archive.csv")
	f := New(Options{MaxRetries: 2, RatePerSec: 100, Burst: 10})

	require.NoError(t, f.Download(context.Background(), srv.URL, dest))
	assert.Equal(t, int64(2), hits.Load())
}

func TestDownload_ExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "archive.csv")
	f := New(Options{MaxRetries: 1, RatePerSec: 100, Burst: 10})

	err := f.Download(context.Background(), srv.URL, dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr), "failed download leaves nothing behind")
}
