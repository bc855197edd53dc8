package fetch

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/navigation"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/weburl"
)

func newTestFetcher(cfg Config) *Fetcher {
	cfg.Timeout = 5 * time.Second
	return New(cfg)
}

func request(t *testing.T, raw string) *navigation.Request {
	t.Helper()
	rec, err := weburl.Parse(raw, nil)
	require.NoError(t, err)
	return &navigation.Request{URL: rec, Method: http.MethodGet, Cache: navigation.CacheDefault}
}

func TestLoadHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><head><title>Home</title><base href="/static/"></head><body>hi</body></html>`))
	}))
	defer srv.Close()

	resp, err := newTestFetcher(Config{}).Load(context.Background(), request(t, srv.URL+"/"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "text/html", resp.ContentType)
	assert.Equal(t, "Home", resp.Title)
	assert.Equal(t, "/static/", resp.BaseHref)
	assert.False(t, resp.NoStore)
	assert.Contains(t, resp.HTML, "hi")
}

func TestLoadGzipAndCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Accept-Encoding"), "gzip")
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		gz.Write([]byte("<html><title>caf\xe9</title></html>"))
		gz.Close()
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		w.Header().Set("Content-Encoding", "gzip")
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	resp, err := newTestFetcher(Config{}).Load(context.Background(), request(t, srv.URL))
	require.NoError(t, err)
	assert.Equal(t, "café", resp.Title)
}

func TestLoadNoStoreAndReloadHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Cache-Control", "private, no-store")
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<p>x</p>"))
	}))
	defer srv.Close()

	req := request(t, srv.URL)
	req.Cache = navigation.CacheReload
	req.Referrer = "https://example.com/from"
	resp, err := newTestFetcher(Config{UserAgent: "navigator-test"}).Load(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.NoStore)
	assert.Equal(t, "no-cache", got.Get("Cache-Control"))
	assert.Equal(t, "https://example.com/from", got.Get("Referer"))
	assert.Equal(t, "navigator-test", got.Get("User-Agent"))
}

func TestLoadFollowsRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new?x=1", http.StatusFound)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<title>New</title>"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := newTestFetcher(Config{}).Load(context.Background(), request(t, srv.URL+"/old"))
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/new?x=1", resp.URL)
	assert.Equal(t, "New", resp.Title)
}

func TestLoadServerErrorStillReturnsPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("<title>Oops</title>"))
	}))
	defer srv.Close()

	f := newTestFetcher(Config{})
	resp, err := f.Load(context.Background(), request(t, srv.URL))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	assert.Equal(t, "Oops", resp.Title)

	states := f.Client().BreakerStates()
	assert.Equal(t, "closed", states[weburl.MustParse(srv.URL).Origin()])
}

func TestLoadConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	target := srv.URL
	srv.Close()

	_, err := newTestFetcher(Config{}).Load(context.Background(), request(t, target))
	require.Error(t, err)
}

func TestLoadSanitize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<p>ok</p><script>alert(1)</script>`))
	}))
	defer srv.Close()

	resp, err := newTestFetcher(Config{Sanitize: true}).Load(context.Background(), request(t, srv.URL))
	require.NoError(t, err)
	assert.Contains(t, resp.HTML, "<p>ok</p>")
	assert.NotContains(t, resp.HTML, "script")
}

func TestLoadAbout(t *testing.T) {
	f := newTestFetcher(Config{})
	resp, err := f.Load(context.Background(), request(t, "about:blank"))
	require.NoError(t, err)
	assert.Equal(t, "about:blank", resp.URL)
	assert.Equal(t, "text/html", resp.ContentType)
	assert.Empty(t, resp.HTML)

	_, err = f.Load(context.Background(), request(t, "about:config"))
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
}

func TestLoadData(t *testing.T) {
	f := newTestFetcher(Config{})

	resp, err := f.Load(context.Background(), request(t, "data:text/html;base64,PHRpdGxlPkQ8L3RpdGxlPg=="))
	require.NoError(t, err)
	assert.Equal(t, "text/html", resp.ContentType)
	assert.Equal(t, "D", resp.Title)

	resp, err = f.Load(context.Background(), request(t, "data:,Hello%20World#frag"))
	require.NoError(t, err)
	assert.Equal(t, "text/plain", resp.ContentType)
	assert.Equal(t, "Hello World", resp.HTML)

	_, err = f.Load(context.Background(), request(t, "data:text/plain;base64,@@@"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("<title>Local</title>"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "deep.txt"), []byte("deep"), 0o644))

	_, err := newTestFetcher(Config{}).Load(context.Background(), request(t, "file:///index.html"))
	assert.ErrorIs(t, err, ErrFileDisabled)

	f := newTestFetcher(Config{AllowFile: true, FileRoot: root})
	resp, err := f.Load(context.Background(), request(t, "file:///index.html"))
	require.NoError(t, err)
	assert.Equal(t, "Local", resp.Title)

	resp, err = f.Load(context.Background(), request(t, "file:///"))
	require.NoError(t, err)
	assert.Equal(t, "text/html", resp.ContentType)
	assert.Equal(t, "Index of /", resp.Title)
	assert.Contains(t, resp.HTML, `href="index.html"`)
	assert.Contains(t, resp.HTML, `href="sub/"`)
	assert.NotContains(t, resp.HTML, "deep.txt")

	// ".." cannot escape the root
	_, err = f.Load(context.Background(), request(t, "file:///../../etc/passwd"))
	assert.Error(t, err)
}

func TestLoadUnsupportedScheme(t *testing.T) {
	_, err := newTestFetcher(Config{}).Load(context.Background(), request(t, "mailto:someone@example.com"))
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
}

func TestIsNoStore(t *testing.T) {
	assert.True(t, isNoStore([]string{"max-age=0, NO-STORE"}))
	assert.True(t, isNoStore([]string{"public", "no-store"}))
	assert.False(t, isNoStore([]string{"no-cache", "max-age=60"}))
	assert.False(t, isNoStore(nil))
}
