package fetch

import (
	"context"
	"encoding/base64"
	"fmt"
	"html"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"

	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/navigation"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/weburl"
)

func loadAbout(req *navigation.Request) (*navigation.Response, error) {
	switch req.URL.Pathname() {
	case "blank", "srcdoc":
		return &navigation.Response{
			URL:         req.URL.Href(),
			Status:      http.StatusOK,
			ContentType: "text/html",
		}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, req.URL.Href())
}

// loadData decodes a data: URL. The media type defaults to
// text/plain;charset=US-ASCII when absent.
func (f *Fetcher) loadData(req *navigation.Request) (*navigation.Response, error) {
	input := strings.TrimPrefix(req.URL.HrefWithoutFragment(), "data:")
	meta, payload, ok := strings.Cut(input, ",")
	if !ok {
		return nil, fmt.Errorf("malformed data: URL")
	}
	body := weburl.PercentDecodeBytes(payload)

	meta = strings.TrimSpace(meta)
	if i := strings.LastIndexByte(meta, ';'); i >= 0 && strings.EqualFold(strings.TrimSpace(meta[i+1:]), "base64") {
		meta = meta[:i]
		compact := strings.Map(func(r rune) rune {
			if r == ' ' || r == '\t' || r == '\n' || r == '\f' || r == '\r' {
				return -1
			}
			return r
		}, string(body))
		compact = strings.TrimRight(compact, "=")
		decoded, err := base64.RawStdEncoding.DecodeString(compact)
		if err != nil {
			return nil, fmt.Errorf("data: URL base64: %w", err)
		}
		body = decoded
	}
	if strings.HasPrefix(meta, ";") {
		meta = "text/plain" + meta
	}
	if meta == "" {
		meta = "text/plain;charset=US-ASCII"
	}
	return f.buildResponse(req.URL.Href(), http.StatusOK, meta, false, body), nil
}

// loadFile serves a local file, or a listing for a directory.
func (f *Fetcher) loadFile(ctx context.Context, req *navigation.Request) (*navigation.Response, error) {
	if !f.cfg.AllowFile {
		return nil, ErrFileDisabled
	}
	p, err := f.filePath(req.URL)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("file: %w", err)
	}
	if info.IsDir() {
		listing, err := listDir(ctx, p)
		if err != nil {
			return nil, err
		}
		return f.buildResponse(req.URL.Href(), http.StatusOK, "text/html; charset=utf-8", false,
			[]byte(renderListing(req.URL.Pathname(), listing))), nil
	}
	if info.Size() > f.cfg.MaxBodyBytes {
		return nil, fmt.Errorf("file: %s exceeds %d bytes", p, f.cfg.MaxBodyBytes)
	}
	body, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("file: %w", err)
	}
	return f.buildResponse(req.URL.Href(), http.StatusOK, "", false, body), nil
}

// filePath maps a file: URL onto the filesystem, confined to FileRoot when set.
func (f *Fetcher) filePath(u weburl.Record) (string, error) {
	clean := path.Clean("/" + weburl.PercentDecode(u.Pathname()))
	if f.cfg.FileRoot == "" {
		return filepath.FromSlash(clean), nil
	}
	root, err := filepath.Abs(f.cfg.FileRoot)
	if err != nil {
		return "", fmt.Errorf("file root: %w", err)
	}
	return filepath.Join(root, filepath.FromSlash(clean)), nil
}

type dirEntry struct {
	Name  string
	IsDir bool
}

// listDir returns the immediate children of dir, sorted by name.
func listDir(ctx context.Context, dir string) ([]dirEntry, error) {
	var (
		mu      sync.Mutex
		entries []dirEntry
	)
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if p == dir {
			return nil
		}
		mu.Lock()
		entries = append(entries, dirEntry{Name: d.Name(), IsDir: d.IsDir()})
		mu.Unlock()
		if d.IsDir() {
			return fastwalk.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	slices.SortFunc(entries, func(a, b dirEntry) int { return strings.Compare(a.Name, b.Name) })
	return entries, nil
}

func renderListing(urlPath string, entries []dirEntry) string {
	if !strings.HasSuffix(urlPath, "/") {
		urlPath += "/"
	}
	var b strings.Builder
	title := "Index of " + html.EscapeString(weburl.PercentDecode(urlPath))
	b.WriteString("<!DOCTYPE html><html><head><meta charset=\"utf-8\"><title>")
	b.WriteString(title)
	b.WriteString("</title><base href=\"")
	b.WriteString(html.EscapeString(urlPath))
	b.WriteString("\"></head><body><h1>")
	b.WriteString(title)
	b.WriteString("</h1><ul>")
	for _, e := range entries {
		name, href := e.Name, weburl.PercentEncode(e.Name)
		if e.IsDir {
			name += "/"
			href += "/"
		}
		b.WriteString(`<li><a href="`)
		b.WriteString(html.EscapeString(href))
		b.WriteString(`">`)
		b.WriteString(html.EscapeString(name))
		b.WriteString("</a></li>")
	}
	b.WriteString("</ul></body></html>")
	return b.String()
}
