package navigation

import (
	"context"
	"strings"

	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/weburl"
)

// Location reflects the document URL of a browsing context. Reads always
// go to the controller; writes turn into navigations.
type Location struct {
	c *Controller
}

// Location returns the location facade.
func (c *Controller) Location() *Location {
	return &Location{c: c}
}

func (l *Location) url() *weburl.URL { return weburl.FromRecord(l.c.URL()) }

func (l *Location) Href() string     { return l.c.URL().Href() }
func (l *Location) String() string   { return l.Href() }
func (l *Location) Origin() string   { return l.url().Origin() }
func (l *Location) Protocol() string { return l.url().Protocol() }
func (l *Location) Host() string     { return l.url().Host() }
func (l *Location) Hostname() string { return l.url().Hostname() }
func (l *Location) Port() string     { return l.url().Port() }
func (l *Location) Pathname() string { return l.url().Pathname() }
func (l *Location) Search() string   { return l.url().Search() }
func (l *Location) Hash() string     { return l.url().Hash() }

// Assign navigates to raw, resolved against the document base URL.
func (l *Location) Assign(ctx context.Context, raw string) error {
	return l.c.NavigateURL(ctx, raw, false)
}

// SetHref is Assign.
func (l *Location) SetHref(ctx context.Context, raw string) error {
	return l.Assign(ctx, raw)
}

// Replace navigates to raw without adding a history entry.
func (l *Location) Replace(ctx context.Context, raw string) error {
	return l.c.NavigateURL(ctx, raw, true)
}

// Reload reloads the document; forceGet bypasses caches.
func (l *Location) Reload(ctx context.Context, forceGet bool) error {
	return l.c.Reload(ctx, forceGet)
}

// SetProtocol changes the scheme. Results other than http(s) are ignored.
func (l *Location) SetProtocol(ctx context.Context, v string) error {
	u := l.url()
	u.SetProtocol(v)
	if s := u.Record().Scheme; s != "http" && s != "https" {
		return nil
	}
	return l.navigate(ctx, u)
}

func (l *Location) SetHost(ctx context.Context, v string) error {
	return l.component(ctx, func(u *weburl.URL) { u.SetHost(v) })
}

func (l *Location) SetHostname(ctx context.Context, v string) error {
	return l.component(ctx, func(u *weburl.URL) { u.SetHostname(v) })
}

func (l *Location) SetPort(ctx context.Context, v string) error {
	return l.component(ctx, func(u *weburl.URL) { u.SetPort(v) })
}

func (l *Location) SetPathname(ctx context.Context, v string) error {
	return l.component(ctx, func(u *weburl.URL) { u.SetPathname(v) })
}

func (l *Location) SetSearch(ctx context.Context, v string) error {
	u := l.url()
	u.SetSearch(v)
	return l.navigate(ctx, u)
}

// SetHash navigates to the fragment v. Unlike URL.SetHash an empty value
// leaves an empty fragment, and setting the current fragment does nothing.
func (l *Location) SetHash(ctx context.Context, v string) error {
	cur := l.c.URL()
	u := weburl.FromRecord(cur)
	if v = strings.TrimPrefix(v, "#"); v == "" {
		next := cur.Clone()
		empty := ""
		next.Fragment = &empty
		u = weburl.FromRecord(next)
	} else {
		u.SetHash(v)
	}
	if u.Record().FragmentEqual(cur) {
		return nil
	}
	return l.navigate(ctx, u)
}

// component applies a URL setter to a copy of the document URL and
// navigates to the result. Opaque-path URLs have no host, port or path to set.
func (l *Location) component(ctx context.Context, set func(*weburl.URL)) error {
	u := l.url()
	if u.Record().CannotBeABase {
		return nil
	}
	set(u)
	return l.navigate(ctx, u)
}

func (l *Location) navigate(ctx context.Context, u *weburl.URL) error {
	return l.c.Navigate(ctx, u.Record(), false)
}
