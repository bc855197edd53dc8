package document

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/microcosm-cc/bluemonday"
)

// MaxHTMLSize bounds the markup accepted by Parse.
const MaxHTMLSize = 10 * 1024 * 1024

// Refresh is a parsed <meta http-equiv="refresh">.
type Refresh struct {
	Delay int    `json:"delay"`
	URL   string `json:"url,omitempty"`
}

// Info is what navigation reads from a document.
type Info struct {
	Title    string   `json:"title"`
	BaseHref string   `json:"base_href,omitempty"`
	Refresh  *Refresh `json:"refresh,omitempty"`
	Links    []string `json:"links,omitempty"`
}

// Parse extracts Info from markup.
func Parse(html string) (*Info, error) {
	if len(html) > MaxHTMLSize {
		return nil, fmt.Errorf("html exceeds maximum size of %d bytes", MaxHTMLSize)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	info := &Info{Title: collapseWhitespace(doc.Find("title").First().Text())}
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		info.BaseHref = strings.TrimSpace(href)
	}
	doc.Find("meta[http-equiv]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !strings.EqualFold(s.AttrOr("http-equiv", ""), "refresh") {
			return true
		}
		info.Refresh = parseRefresh(s.AttrOr("content", ""))
		return info.Refresh == nil
	})
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		info.Links = append(info.Links, strings.TrimSpace(s.AttrOr("href", "")))
	})
	return info, nil
}

// parseRefresh reads "5; url=/next". A missing URL means reload.
func parseRefresh(content string) *Refresh {
	content = strings.TrimSpace(content)
	end := 0
	for end < len(content) && (content[end] >= '0' && content[end] <= '9' || content[end] == '.') {
		end++
	}
	if end == 0 {
		return nil
	}
	delay, err := strconv.Atoi(strings.SplitN(content[:end], ".", 2)[0])
	if err != nil {
		return nil
	}
	r := &Refresh{Delay: delay}
	rest := strings.TrimLeft(content[end:], " \t\n\r;,")
	if len(rest) >= 3 && strings.EqualFold(rest[:3], "url") {
		rest = strings.TrimLeft(rest[3:], " \t\n\r")
		if !strings.HasPrefix(rest, "=") {
			return r
		}
		rest = strings.TrimLeft(rest[1:], " \t\n\r")
	}
	if len(rest) > 0 && (rest[0] == '\'' || rest[0] == '"') {
		q := rest[0]
		rest = rest[1:]
		if i := strings.IndexByte(rest, q); i >= 0 {
			rest = rest[:i]
		}
	}
	r.URL = strings.TrimSpace(rest)
	return r
}

// XPath evaluates expr against markup and returns the text of every match.
func XPath(html, expr string) ([]string, error) {
	root, err := htmlquery.Parse(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	nodes, err := htmlquery.QueryAll(root, expr)
	if err != nil {
		return nil, fmt.Errorf("xpath %q: %w", expr, err)
	}
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, strings.TrimSpace(htmlquery.InnerText(n)))
	}
	return out, nil
}

// Select returns the text of every element matching a CSS selector.
func Select(html, selector string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	out := []string{}
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, collapseWhitespace(s.Text()))
	})
	return out, nil
}

var sanitizer = bluemonday.UGCPolicy()

// Sanitize strips scripts, handlers and unsafe URLs from markup.
func Sanitize(html string) string {
	return sanitizer.Sanitize(html)
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
