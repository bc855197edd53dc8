package navigation

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/navigator/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/history"
)

var ctx = context.Background()

func hrefs(entries []history.Entry) []string {
	out := []string{}
	for _, e := range entries {
		out = append(out, e.URL.Href())
	}
	return out
}

func TestInitialDocumentIsAboutBlank(t *testing.T) {
	c, loader, _ := newTestController(t)

	assert.Equal(t, "about:blank", c.URL().Href())
	assert.Equal(t, 1, c.History().Length())
	assert.Zero(t, loader.count())
}

func TestFirstNavigationReplacesInitialEntry(t *testing.T) {
	c, loader, rec := newTestController(t)

	require.NoError(t, c.NavigateURL(ctx, "https://example.test/page", false))

	entries, cursor := c.Entries()
	assert.Equal(t, []string{"https://example.test/page"}, hrefs(entries))
	assert.Equal(t, 0, cursor)
	assert.Equal(t, 1, loader.count())
	assert.Empty(t, loader.last().Referrer)
	assert.Equal(t, []string{EventLoad}, eventTypes(rec.take()))
	assert.Equal(t, []string{"about:blank"}, loader.unloaded)
}

func TestFullNavigationPushes(t *testing.T) {
	c, loader, rec := newTestController(t)
	open(t, c, rec, "https://example.test/one#top")

	require.NoError(t, c.NavigateURL(ctx, "two", false))

	entries, cursor := c.Entries()
	assert.Equal(t, []string{"https://example.test/one#top", "https://example.test/two"}, hrefs(entries))
	assert.Equal(t, 1, cursor)
	req := loader.last()
	assert.Equal(t, "https://example.test/two", req.URL.Href())
	assert.Equal(t, "https://example.test/one", req.Referrer)
	assert.Equal(t, CacheDefault, req.Cache)
	assert.Equal(t, "GET", req.Method)
}

func TestRequestNeverCarriesFragment(t *testing.T) {
	c, loader, rec := newTestController(t)
	open(t, c, rec, "https://example.test/a#frag")

	assert.Equal(t, "https://example.test/a", loader.last().URL.Href())
	assert.Equal(t, "https://example.test/a#frag", c.URL().Href())
}

func TestFragmentNavigationDoesNotFetch(t *testing.T) {
	c, loader, rec := newTestController(t)
	open(t, c, rec, "https://example.test/page")
	before := loader.count()

	require.NoError(t, c.NavigateURL(ctx, "#section", false))

	assert.Equal(t, before, loader.count())
	assert.Equal(t, 2, c.History().Length())
	events := rec.take()
	require.Len(t, events, 1)
	assert.Equal(t, EventHashChange, events[0].Type)
	assert.Equal(t, "https://example.test/page", events[0].OldURL)
	assert.Equal(t, "https://example.test/page#section", events[0].NewURL)
	assert.Equal(t, "win_test", events[0].WindowID)
}

func TestIdenticalFragmentURLReplacesWithoutEvent(t *testing.T) {
	c, loader, rec := newTestController(t)
	open(t, c, rec, "https://example.test/page#a")
	before := loader.count()

	require.NoError(t, c.NavigateURL(ctx, "https://example.test/page#a", false))

	assert.Equal(t, before, loader.count())
	assert.Equal(t, 1, c.History().Length())
	assert.Empty(t, rec.take())
}

func TestNavigatingToCurrentURLReloadsInPlace(t *testing.T) {
	c, loader, rec := newTestController(t)
	open(t, c, rec, "https://example.test/one")
	open(t, c, rec, "https://example.test/two")

	require.NoError(t, c.NavigateURL(ctx, "https://example.test/two", false))

	assert.Equal(t, 3, loader.count())
	assert.Equal(t, 2, c.History().Length())
}

func TestJavascriptURLIsIgnored(t *testing.T) {
	c, loader, rec := newTestController(t)
	open(t, c, rec, "https://example.test/")

	require.NoError(t, c.NavigateURL(ctx, "javascript:alert(1)", false))

	assert.Equal(t, 1, loader.count())
	assert.Equal(t, "https://example.test/", c.URL().Href())
}

func TestUnparsableTargetFails(t *testing.T) {
	c, _, rec := newTestController(t)
	open(t, c, rec, "https://example.test/")

	err := c.NavigateURL(ctx, "https://exa mple.test/", false)
	require.Error(t, err)
	assert.Equal(t, "https://example.test/", c.URL().Href())
}

func TestTraverseOutOfRangeIsNoop(t *testing.T) {
	c, loader, rec := newTestController(t)
	open(t, c, rec, "https://example.test/one")
	open(t, c, rec, "https://example.test/two")
	before := loader.count()

	require.NoError(t, c.Traverse(ctx, 1000))
	require.NoError(t, c.Traverse(ctx, -1000))
	require.NoError(t, c.Forward(ctx))

	assert.Equal(t, before, loader.count())
	assert.Empty(t, rec.take())
	_, cursor := c.Entries()
	assert.Equal(t, 1, cursor)
}

func TestPushStateThenBackFiresPopstateWithClone(t *testing.T) {
	c, loader, rec := newTestController(t)
	open(t, c, rec, "https://example.test/foo.html")
	before := loader.count()

	state := map[string]any{"hi": "there"}
	require.NoError(t, c.PushState(state, "", "bar.html"))
	assert.Equal(t, "https://example.test/bar.html", c.URL().Href())
	assert.Empty(t, rec.take(), "pushState fires nothing")
	state["hi"] = "changed"

	require.NoError(t, c.Back(ctx))
	require.NoError(t, c.Forward(ctx))

	assert.Equal(t, before, loader.count())
	events := rec.take()
	require.Equal(t, []string{EventPopState, EventPopState}, eventTypes(events))
	assert.Nil(t, events[0].State)
	assert.Equal(t, map[string]any{"hi": "there"}, events[1].State)

	got, err := c.State()
	require.NoError(t, err)
	got.(map[string]any)["hi"] = "mutated"
	again, err := c.State()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"hi": "there"}, again)
}

func TestTraverseFiresHashchangeBeforePopstate(t *testing.T) {
	c, _, rec := newTestController(t)
	open(t, c, rec, "https://example.test/page")
	require.NoError(t, c.NavigateURL(ctx, "#a", false))
	rec.take()

	require.NoError(t, c.Back(ctx))

	events := rec.take()
	require.Equal(t, []string{EventHashChange, EventPopState}, eventTypes(events))
	assert.Equal(t, "https://example.test/page#a", events[0].OldURL)
	assert.Equal(t, "https://example.test/page", events[0].NewURL)
	assert.Equal(t, "https://example.test/page", c.URL().Href())
}

func TestTraverseAcrossDocumentsLoads(t *testing.T) {
	c, loader, rec := newTestController(t)
	open(t, c, rec, "https://example.test/one")
	open(t, c, rec, "https://example.test/two")
	first := c.Document().ID

	require.NoError(t, c.Back(ctx))

	assert.Equal(t, 3, loader.count())
	assert.Equal(t, "https://example.test/one", loader.last().URL.Href())
	entries, cursor := c.Entries()
	assert.Equal(t, 0, cursor)
	assert.Len(t, entries, 2, "traversal does not push")
	assert.Equal(t, []string{EventLoad}, eventTypes(rec.take()))
	assert.NotEqual(t, first, c.Document().ID)
	assert.Equal(t, c.Document().ID, entries[0].DocumentID)
}

func TestTraverseToFragmentEntryOfReplacedDocument(t *testing.T) {
	tests := []struct {
		name      string
		noStore   bool
		wantFetch bool
		wantTypes []string
	}{
		{name: "cacheable restores in place", wantTypes: []string{EventHashChange, EventPopState}},
		{name: "no-store refetches", noStore: true, wantFetch: true, wantTypes: []string{EventLoad}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, loader, rec := newTestController(t)
			loader.page("https://example.test/page", Response{Status: 200, NoStore: tt.noStore})
			open(t, c, rec, "https://example.test/page")
			require.NoError(t, c.NavigateURL(ctx, "#a", false))
			require.NoError(t, c.Reload(ctx, false))
			rec.take()
			before := loader.count()

			require.NoError(t, c.Back(ctx))

			assert.Equal(t, tt.wantFetch, loader.count() > before)
			assert.Equal(t, tt.wantTypes, eventTypes(rec.take()))
			assert.Equal(t, "https://example.test/page", c.URL().Href())
		})
	}
}

func TestTraverseWithinNoStoreDocumentRefetches(t *testing.T) {
	c, loader, rec := newTestController(t)
	loader.page("https://example.test/page", Response{Status: 200, NoStore: true})
	open(t, c, rec, "https://example.test/page")
	require.NoError(t, c.NavigateURL(ctx, "#a", false))
	rec.take()
	before := loader.count()

	require.NoError(t, c.Back(ctx))

	assert.Equal(t, before+1, loader.count())
	assert.Equal(t, "https://example.test/page", loader.last().URL.Href())
	assert.Equal(t, []string{EventLoad}, eventTypes(rec.take()))
	assert.Equal(t, "https://example.test/page", c.URL().Href())
	entries, cursor := c.Entries()
	assert.Len(t, entries, 2)
	assert.Equal(t, 0, cursor)
}

func TestNoStoreDocumentRestoresItsPushedEntries(t *testing.T) {
	c, loader, rec := newTestController(t)
	loader.page("https://example.test/a", Response{Status: 200, NoStore: true})
	open(t, c, rec, "https://example.test/a")
	require.NoError(t, c.PushState(nil, "", "/b"))
	before := loader.count()

	require.NoError(t, c.Back(ctx))

	assert.Equal(t, before, loader.count())
	assert.Equal(t, []string{EventPopState}, eventTypes(rec.take()))
	assert.Equal(t, "https://example.test/a", c.URL().Href())
}

func TestReloadCacheModes(t *testing.T) {
	c, loader, rec := newTestController(t)
	open(t, c, rec, "https://example.test/page")

	require.NoError(t, c.Reload(ctx, false))
	assert.Equal(t, CacheDefault, loader.last().Cache)
	require.NoError(t, c.Location().Reload(ctx, true))
	assert.Equal(t, CacheReload, loader.last().Cache)
	require.NoError(t, c.History().Go(ctx, 0))
	assert.Equal(t, CacheDefault, loader.last().Cache)

	assert.Equal(t, 4, loader.count())
	assert.Equal(t, 1, c.History().Length())
}

func TestReloadFragmentRetention(t *testing.T) {
	tests := []struct {
		name    string
		noStore bool
		keep    bool
		want    string
	}{
		{name: "cacheable keeps fragment", keep: false, want: "https://example.test/page#f"},
		{name: "no-store keeps fragment by default", noStore: true, keep: true, want: "https://example.test/page#f"},
		{name: "no-store drops fragment when configured", noStore: true, keep: false, want: "https://example.test/page"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, loader, rec := newTestController(t, WithReloadKeepsFragmentOnNoStore(tt.keep))
			loader.page("https://example.test/page", Response{Status: 200, NoStore: tt.noStore})
			open(t, c, rec, "https://example.test/page#f")

			require.NoError(t, c.Reload(ctx, false))

			assert.Equal(t, tt.want, c.URL().Href())
			entries, cursor := c.Entries()
			assert.Equal(t, tt.want, entries[cursor].URL.Href())
		})
	}
}

func TestNewerNavigationSupersedesInFlight(t *testing.T) {
	c, loader, rec := newTestController(t)
	open(t, c, rec, "https://example.test/start")
	loader.gate("https://example.test/slow")

	errc := make(chan error, 1)
	go func() { errc <- c.NavigateURL(ctx, "/slow", false) }()
	require.Eventually(t, func() bool { return loader.count() == 2 }, time.Second, time.Millisecond)

	require.NoError(t, c.NavigateURL(ctx, "/fast", false))

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(time.Second):
		t.Fatal("superseded navigation did not return")
	}
	entries, _ := c.Entries()
	assert.Equal(t, []string{"https://example.test/start", "https://example.test/fast"}, hrefs(entries))
	assert.Equal(t, "https://example.test/fast", c.URL().Href())
	assert.Equal(t, []string{EventLoad}, eventTypes(rec.take()))
}

func TestFailedLoadLeavesHistoryUntouched(t *testing.T) {
	c, loader, rec := newTestController(t)
	open(t, c, rec, "https://example.test/one")
	loader.fail(errors.New("connection refused"))

	err := c.NavigateURL(ctx, "/two", false)

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, "https://example.test/two", netErr.URL)
	assert.Equal(t, "https://example.test/one", c.URL().Href())
	assert.Equal(t, 1, c.History().Length())
	assert.Empty(t, rec.take())
}

func TestPolicyBlocksNavigation(t *testing.T) {
	policy, err := NewPolicy("*.ads.test/**")
	require.NoError(t, err)
	c, loader, rec := newTestController(t, WithPolicy(policy))
	open(t, c, rec, "https://example.test/")

	err = c.NavigateURL(ctx, "https://track.ads.test/pixel", false)

	assert.ErrorIs(t, err, ErrBlocked)
	assert.Equal(t, 1, loader.count())
}

func TestRedirectKeepsRequestedFragment(t *testing.T) {
	c, loader, rec := newTestController(t)
	loader.page("https://example.test/old", Response{Status: 200, URL: "https://example.test/new"})

	open(t, c, rec, "https://example.test/old#frag")

	assert.Equal(t, "https://example.test/new#frag", c.URL().Href())
	entries, _ := c.Entries()
	assert.Equal(t, "https://example.test/new#frag", entries[0].URL.Href())
}

func TestBaseHrefResolvesRelativeURLs(t *testing.T) {
	c, loader, rec := newTestController(t)
	loader.page("https://example.test/docs/page", Response{Status: 200, BaseHref: "/assets/", Title: "Docs"})
	open(t, c, rec, "https://example.test/docs/page")

	u, err := c.Resolve("img.png")
	require.NoError(t, err)
	assert.Equal(t, "https://example.test/assets/img.png", u.Href())
	assert.Equal(t, "Docs", c.Document().Title)

	require.NoError(t, c.PushState(nil, "", "other"))
	assert.Equal(t, "https://example.test/assets/other", c.URL().Href())
}

func TestMaxEntriesCapsHistory(t *testing.T) {
	c, _, rec := newTestController(t, WithMaxEntries(2))
	open(t, c, rec, "https://example.test/1")
	open(t, c, rec, "https://example.test/2")
	open(t, c, rec, "https://example.test/3")

	entries, cursor := c.Entries()
	assert.Equal(t, []string{"https://example.test/2", "https://example.test/3"}, hrefs(entries))
	assert.Equal(t, 1, cursor)
}

func TestHistoryUnboundedByDefault(t *testing.T) {
	c, _, rec := newTestController(t)
	open(t, c, rec, "https://example.test/0")
	for i := 1; i <= 60; i++ {
		require.NoError(t, c.PushState(nil, "", fmt.Sprintf("/%d", i)))
	}

	entries, cursor := c.Entries()
	assert.Len(t, entries, 61)
	assert.Equal(t, 60, cursor)
	assert.Equal(t, "https://example.test/0", entries[0].URL.Href())
}

func TestClosedControllerRejects(t *testing.T) {
	c, _, rec := newTestController(t)
	open(t, c, rec, "https://example.test/")
	c.Close()

	assert.ErrorIs(t, c.NavigateURL(ctx, "/x", false), ErrClosed)
	assert.ErrorIs(t, c.Traverse(ctx, -1), ErrClosed)
	assert.ErrorIs(t, c.PushState(nil, ""), ErrClosed)
	assert.ErrorIs(t, c.Reload(ctx, false), ErrClosed)
}

func TestListenerMayTraverseFromHandler(t *testing.T) {
	loader := newFakeLoader()
	target := NewEventTarget()
	c := NewController("win_test", loader, target)
	t.Cleanup(c.Close)

	require.NoError(t, c.NavigateURL(ctx, "https://example.test/page", false))
	require.NoError(t, c.NavigateURL(ctx, "#a", false))
	require.NoError(t, c.NavigateURL(ctx, "#b", false))

	var seen []string
	target.AddListenerOnce(EventPopState, func(Event) {
		require.NoError(t, c.Back(ctx))
	})
	target.AddListener(EventHashChange, func(ev Event) { seen = append(seen, ev.NewURL) })

	require.NoError(t, c.Back(ctx))

	assert.Equal(t, []string{"https://example.test/page#a", "https://example.test/page"}, seen)
	assert.Equal(t, "https://example.test/page", c.URL().Href())
}

func TestListenerPanicDoesNotStallEvents(t *testing.T) {
	loader := newFakeLoader()
	target := NewEventTarget()
	c := NewController("win_test", loader, target)
	t.Cleanup(c.Close)

	target.AddListenerOnce(EventLoad, func(Event) { panic("listener failed") })
	var loads []string
	target.AddListener(EventLoad, func(ev Event) { loads = append(loads, ev.NewURL) })

	assert.Panics(t, func() { _ = c.NavigateURL(ctx, "https://example.test/one", false) })
	assert.Equal(t, "https://example.test/one", c.URL().Href())

	require.NoError(t, c.NavigateURL(ctx, "https://example.test/two", false))
	assert.Equal(t, []string{"https://example.test/two"}, loads)
}

func TestNavigationMetrics(t *testing.T) {
	m := monitoring.NewMetrics()
	c, _, rec := newTestController(t, WithMetrics(m))
	open(t, c, rec, "https://example.test/")
	require.NoError(t, c.NavigateURL(ctx, "#x", false))
	require.NoError(t, c.Traverse(ctx, 5))

	snap := m.Snapshot()
	assert.EqualValues(t, 2, snap.Navigations)
	assert.EqualValues(t, 0, snap.FailedNavigation)
}
