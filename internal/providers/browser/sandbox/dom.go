package sandbox

import (
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// DOM is a read-mostly document proxy over the window's current markup.
// Attribute and text writes apply to the parsed tree and are recorded as
// changes; they never reach the navigation state.
type DOM struct {
	doc     *goquery.Document
	changes []DOMChange
	mu      sync.Mutex
}

// Element is a snapshot of one matched element.
type Element struct {
	TagName     string
	ID          string
	ClassName   string
	TextContent string
	Attributes  map[string]string

	sel      *goquery.Selection
	selector string
	dom      *DOM
}

// NewDOM parses markup into a document proxy.
func NewDOM(html string) (*DOM, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &DOM{doc: doc, changes: []DOMChange{}}, nil
}

// Title returns the trimmed text of the first <title>.
func (d *DOM) Title() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return strings.TrimSpace(d.doc.Find("title").First().Text())
}

// Query finds elements by CSS selector. Invalid selectors match nothing.
func (d *DOM) Query(selector string) []*Element {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []*Element
	d.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, d.element(s, selector))
	})
	return out
}

func (d *DOM) element(s *goquery.Selection, selector string) *Element {
	e := &Element{
		TagName:     strings.ToUpper(goquery.NodeName(s)),
		TextContent: s.Text(),
		Attributes:  map[string]string{},
		sel:         s,
		selector:    selector,
		dom:         d,
	}
	if n := s.Get(0); n != nil {
		for _, a := range n.Attr {
			e.Attributes[a.Key] = a.Val
		}
	}
	e.ID = e.Attributes["id"]
	e.ClassName = e.Attributes["class"]
	return e
}

// GetChanges returns accumulated DOM changes
func (d *DOM) GetChanges() []DOMChange {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]DOMChange{}, d.changes...)
}

// RecordChange adds a DOM change
func (d *DOM) RecordChange(change DOMChange) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.changes = append(d.changes, change)
}

// GetAttribute retrieves attribute value
func (e *Element) GetAttribute(name string) (string, bool) {
	v, ok := e.Attributes[strings.ToLower(name)]
	return v, ok
}

// SetAttribute sets attribute value and records change
func (e *Element) SetAttribute(name, value string) {
	name = strings.ToLower(name)
	e.Attributes[name] = value
	e.dom.mu.Lock()
	e.sel.SetAttr(name, value)
	e.dom.mu.Unlock()
	e.dom.RecordChange(DOMChange{Type: "set_attribute", Selector: e.selector, Property: name, Value: value})
}

// SetText replaces the element's children with text and records change
func (e *Element) SetText(value string) {
	e.TextContent = value
	e.dom.mu.Lock()
	e.sel.SetText(value)
	e.dom.mu.Unlock()
	e.dom.RecordChange(DOMChange{Type: "set_text", Selector: e.selector, Property: "textContent", Value: value})
}
