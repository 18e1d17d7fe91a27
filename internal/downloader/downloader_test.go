package downloader

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apressdl/pkg/logger"
	"apressdl/pkg/portal"
	"apressdl/pkg/storage"
)

// newFileServer serves fixed content for any download path and counts hits
func newFileServer(t *testing.T, content string) (*httptest.Server, *int64) {
	t.Helper()

	var hits int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		fmt.Fprint(w, content)
	}))
	return server, &hits
}

func newTestDownloader(t *testing.T, serverURL, baseDir string, overwrite bool) (*Downloader, *logger.TestLogger) {
	t.Helper()

	log := logger.NewTestLogger()
	client, err := portal.NewClient(serverURL, log)
	require.NoError(t, err)

	store, err := storage.NewManager(baseDir)
	require.NoError(t, err)

	return New(client, store, log, overwrite), log
}

func TestDownloadProduct(t *testing.T) {
	server, hits := newFileServer(t, "book contents")
	defer server.Close()

	baseDir := t.TempDir()
	d, _ := newTestDownloader(t, server.URL, baseDir, false)

	product := &portal.Product{
		Title: "C++ Primer: 5th Edition!",
		Links: map[string]string{
			"pdf":  server.URL + "/d/1/pdf",
			"epub": server.URL + "/d/1/epub",
		},
	}

	require.NoError(t, d.DownloadProduct(context.Background(), product))
	assert.EqualValues(t, 2, atomic.LoadInt64(hits))

	dir := filepath.Join(baseDir, "C++_Primer_5th_Edition_")
	for _, ext := range []string{"pdf", "epub"} {
		data, err := os.ReadFile(filepath.Join(dir, "C++_Primer_5th_Edition_."+ext))
		require.NoError(t, err)
		assert.Equal(t, "book contents", string(data))
	}
}

func TestDownloadProductSkipsExistingFiles(t *testing.T) {
	server, hits := newFileServer(t, "book contents")
	defer server.Close()

	baseDir := t.TempDir()
	d, log := newTestDownloader(t, server.URL, baseDir, false)

	product := &portal.Product{
		Title: "Pro Go",
		Links: map[string]string{"pdf": server.URL + "/d/1/pdf"},
	}

	require.NoError(t, d.DownloadProduct(context.Background(), product))
	require.EqualValues(t, 1, atomic.LoadInt64(hits))

	// Second run finds the file on disk and issues no download request.
	require.NoError(t, d.DownloadProduct(context.Background(), product))
	assert.EqualValues(t, 1, atomic.LoadInt64(hits))
	assert.True(t, log.HasMessageContaining("not re-downloading"))
}

func TestDownloadProductOverwrite(t *testing.T) {
	server, hits := newFileServer(t, "fresh contents")
	defer server.Close()

	baseDir := t.TempDir()
	d, _ := newTestDownloader(t, server.URL, baseDir, true)

	// Seed a stale file where the download will land.
	dir := filepath.Join(baseDir, "Pro_Go")
	require.NoError(t, os.MkdirAll(dir, 0755))
	stale := filepath.Join(dir, "Pro_Go.pdf")
	require.NoError(t, os.WriteFile(stale, []byte("stale"), 0644))

	product := &portal.Product{
		Title: "Pro Go",
		Links: map[string]string{"pdf": server.URL + "/d/1/pdf"},
	}

	require.NoError(t, d.DownloadProduct(context.Background(), product))
	assert.EqualValues(t, 1, atomic.LoadInt64(hits))

	data, err := os.ReadFile(stale)
	require.NoError(t, err)
	assert.Equal(t, "fresh contents", string(data))
}

func TestDownloadProductServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	baseDir := t.TempDir()
	d, _ := newTestDownloader(t, server.URL, baseDir, false)

	product := &portal.Product{
		Title: "Broken Book",
		Links: map[string]string{"pdf": server.URL + "/d/1/pdf"},
	}

	err := d.DownloadProduct(context.Background(), product)
	require.Error(t, err)

	var portalErr *portal.Error
	require.ErrorAs(t, err, &portalErr)
	assert.Equal(t, portal.ErrorTypeServerError, portalErr.Type)
}

func TestDownloadProductNoFormats(t *testing.T) {
	server, hits := newFileServer(t, "never served")
	defer server.Close()

	baseDir := t.TempDir()
	d, _ := newTestDownloader(t, server.URL, baseDir, false)

	product := &portal.Product{Title: "Listing Only", Links: map[string]string{}}

	require.NoError(t, d.DownloadProduct(context.Background(), product))
	assert.EqualValues(t, 0, atomic.LoadInt64(hits))

	// The product directory is still created.
	info, err := os.Stat(filepath.Join(baseDir, "Listing_Only"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestDownloadProductCancellation(t *testing.T) {
	server, hits := newFileServer(t, "book contents")
	defer server.Close()

	baseDir := t.TempDir()
	d, _ := newTestDownloader(t, server.URL, baseDir, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	product := &portal.Product{
		Title: "Pro Go",
		Links: map[string]string{"pdf": server.URL + "/d/1/pdf"},
	}

	err := d.DownloadProduct(ctx, product)
	assert.ErrorIs(t, err, context.Canceled)
	assert.EqualValues(t, 0, atomic.LoadInt64(hits))
}
