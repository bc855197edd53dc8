package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/weburl"
)

func TestLocationGetters(t *testing.T) {
	c, _, rec := newTestController(t)
	open(t, c, rec, "https://example.test:8080/a/b?x=1#frag")
	l := c.Location()

	assert.Equal(t, "https://example.test:8080/a/b?x=1#frag", l.Href())
	assert.Equal(t, "https://example.test:8080", l.Origin())
	assert.Equal(t, "https:", l.Protocol())
	assert.Equal(t, "example.test:8080", l.Host())
	assert.Equal(t, "example.test", l.Hostname())
	assert.Equal(t, "8080", l.Port())
	assert.Equal(t, "/a/b", l.Pathname())
	assert.Equal(t, "?x=1", l.Search())
	assert.Equal(t, "#frag", l.Hash())
}

func TestLocationSetHash(t *testing.T) {
	c, loader, rec := newTestController(t)
	open(t, c, rec, "https://example.test/page")
	l := c.Location()

	require.NoError(t, l.SetHash(ctx, "#intro"))
	assert.Equal(t, "https://example.test/page#intro", l.Href())
	assert.Equal(t, []string{EventHashChange}, eventTypes(rec.take()))

	require.NoError(t, l.SetHash(ctx, "intro"))
	assert.Empty(t, rec.take(), "same fragment is not a navigation")
	assert.Equal(t, 2, c.History().Length())

	require.NoError(t, l.SetHash(ctx, ""))
	assert.Equal(t, "https://example.test/page#", l.Href())
	assert.Equal(t, 1, loader.count())
}

func TestLocationSetSearchNavigates(t *testing.T) {
	c, loader, rec := newTestController(t)
	open(t, c, rec, "https://example.test/page#f")

	require.NoError(t, c.Location().SetSearch(ctx, "q=a b"))

	assert.Equal(t, "https://example.test/page?q=a%20b", loader.last().URL.Href())
	assert.Equal(t, "https://example.test/page?q=a%20b#f", c.URL().Href())
	assert.Equal(t, 2, c.History().Length())
}

func TestLocationComponentSetters(t *testing.T) {
	tests := []struct {
		name string
		set  func(l *Location) error
		want string
	}{
		{"pathname", func(l *Location) error { return l.SetPathname(ctx, "/x y") }, "https://example.test/x%20y"},
		{"port", func(l *Location) error { return l.SetPort(ctx, "8443") }, "https://example.test:8443/start"},
		{"host", func(l *Location) error { return l.SetHost(ctx, "other.test:81") }, "https://other.test:81/start"},
		{"hostname", func(l *Location) error { return l.SetHostname(ctx, "EXAMPLE.org") }, "https://example.org/start"},
		{"protocol", func(l *Location) error { return l.SetProtocol(ctx, "http") }, "http://example.test/start"},
		{"href", func(l *Location) error { return l.SetHref(ctx, "../up") }, "https://example.test/up"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, loader, rec := newTestController(t)
			open(t, c, rec, "https://example.test/start")

			require.NoError(t, tt.set(c.Location()))

			assert.Equal(t, tt.want, c.URL().Href())
			assert.Equal(t, 2, loader.count())
			assert.Equal(t, 2, c.History().Length())
		})
	}
}

func TestLocationSetProtocolIgnoresNonHTTP(t *testing.T) {
	c, loader, rec := newTestController(t)
	open(t, c, rec, "https://example.test/start")

	require.NoError(t, c.Location().SetProtocol(ctx, "ftp"))

	assert.Equal(t, 1, loader.count())
	assert.Equal(t, "https://example.test/start", c.URL().Href())
}

func TestLocationOpaqueURLIgnoresHostSetters(t *testing.T) {
	c, loader, rec := newTestController(t)
	open(t, c, rec, "mailto:someone@example.test")

	require.NoError(t, c.Location().SetHost(ctx, "example.test"))
	require.NoError(t, c.Location().SetPathname(ctx, "/x"))

	assert.Equal(t, 1, loader.count())
	assert.Equal(t, "mailto:someone@example.test", c.URL().Href())
}

func TestLocationReplace(t *testing.T) {
	c, loader, rec := newTestController(t)
	open(t, c, rec, "https://example.test/one")

	require.NoError(t, c.Location().Replace(ctx, "/two"))

	entries, _ := c.Entries()
	assert.Equal(t, []string{"https://example.test/two"}, hrefs(entries))
	assert.Equal(t, 2, loader.count())
}

func TestLocationAssignRejectsBadURL(t *testing.T) {
	c, _, rec := newTestController(t)
	open(t, c, rec, "https://example.test/one")

	err := c.Location().Assign(ctx, "http://[::1")

	assert.ErrorIs(t, err, weburl.ErrInvalidURL)
	assert.Equal(t, "https://example.test/one", c.Location().Href())
}
