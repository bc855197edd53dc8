package weburl

import (
	"iter"
	"slices"
	"strings"
	"unicode/utf16"
)

// Pair is one name/value entry of a query.
type Pair struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SearchParams is an ordered multimap of query pairs. When bound to a URL
// every mutation writes the serialization back into the URL's query, and
// query changes made through the URL are picked up on next access.
type SearchParams struct {
	list  []Pair
	owner *URL
	gen   uint64
}

// NewSearchParams creates an unbound view from a query string. A leading
// "?" is ignored.
func NewSearchParams(init string) *SearchParams {
	return &SearchParams{list: ParseQuery(strings.TrimPrefix(init, "?"))}
}

// NewSearchParamsFromPairs creates an unbound view holding a copy of pairs.
func NewSearchParamsFromPairs(pairs []Pair) *SearchParams {
	return &SearchParams{list: slices.Clone(pairs)}
}

// NewSearchParamsFromMap creates an unbound view from a map. Keys are sorted
// so the resulting order does not depend on map iteration.
func NewSearchParamsFromMap(m map[string]string) *SearchParams {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	list := make([]Pair, 0, len(keys))
	for _, k := range keys {
		list = append(list, Pair{Name: k, Value: m[k]})
	}
	return &SearchParams{list: list}
}

func (p *SearchParams) sync() {
	if p.owner == nil || (p.list != nil && p.gen == p.owner.queryGen) {
		return
	}
	q := ""
	if p.owner.rec.Query != nil {
		q = *p.owner.rec.Query
	}
	p.list = ParseQuery(q)
	if p.list == nil {
		p.list = []Pair{}
	}
	p.gen = p.owner.queryGen
}

func (p *SearchParams) update() {
	if p.owner == nil {
		return
	}
	p.owner.setQueryFromParams(p.String())
	p.gen = p.owner.queryGen
}

// Size returns the number of pairs.
func (p *SearchParams) Size() int {
	p.sync()
	return len(p.list)
}

// Append adds a pair at the end.
func (p *SearchParams) Append(name, value string) {
	p.sync()
	p.list = append(p.list, Pair{Name: name, Value: value})
	p.update()
}

// Delete removes every pair named name, or only those also matching value
// when one is given.
func (p *SearchParams) Delete(name string, value ...string) {
	p.sync()
	p.list = slices.DeleteFunc(p.list, func(e Pair) bool {
		return e.Name == name && (len(value) == 0 || e.Value == value[0])
	})
	p.update()
}

// Get returns the first value for name.
func (p *SearchParams) Get(name string) (string, bool) {
	p.sync()
	for _, e := range p.list {
		if e.Name == name {
			return e.Value, true
		}
	}
	return "", false
}

// GetAll returns every value for name in order.
func (p *SearchParams) GetAll(name string) []string {
	p.sync()
	out := []string{}
	for _, e := range p.list {
		if e.Name == name {
			out = append(out, e.Value)
		}
	}
	return out
}

// Has reports whether a pair named name (and matching value, if given) exists.
func (p *SearchParams) Has(name string, value ...string) bool {
	p.sync()
	return slices.ContainsFunc(p.list, func(e Pair) bool {
		return e.Name == name && (len(value) == 0 || e.Value == value[0])
	})
}

// Set replaces the first pair named name and drops the rest, or appends
// when there is none.
func (p *SearchParams) Set(name, value string) {
	p.sync()
	found := false
	out := p.list[:0]
	for _, e := range p.list {
		if e.Name != name {
			out = append(out, e)
			continue
		}
		if !found {
			found = true
			out = append(out, Pair{Name: name, Value: value})
		}
	}
	p.list = out
	if !found {
		p.list = append(p.list, Pair{Name: name, Value: value})
	}
	p.update()
}

// Sort orders pairs by name, comparing UTF-16 code units. Equal names keep
// their relative order.
func (p *SearchParams) Sort() {
	p.sync()
	slices.SortStableFunc(p.list, func(a, b Pair) int {
		return compareUTF16(a.Name, b.Name)
	})
	p.update()
}

// All iterates over the pairs in order.
func (p *SearchParams) All() iter.Seq2[string, string] {
	p.sync()
	snapshot := slices.Clone(p.list)
	return func(yield func(string, string) bool) {
		for _, e := range snapshot {
			if !yield(e.Name, e.Value) {
				return
			}
		}
	}
}

// Pairs returns a copy of the pairs.
func (p *SearchParams) Pairs() []Pair {
	p.sync()
	return slices.Clone(p.list)
}

// String serializes the pairs as application/x-www-form-urlencoded.
func (p *SearchParams) String() string {
	p.sync()
	return SerializeQuery(p.list)
}

// ParseQuery parses application/x-www-form-urlencoded input.
func ParseQuery(input string) []Pair {
	var out []Pair
	for _, seq := range strings.Split(input, "&") {
		if seq == "" {
			continue
		}
		name, value, _ := strings.Cut(seq, "=")
		out = append(out, Pair{
			Name:  PercentDecode(strings.ReplaceAll(name, "+", " ")),
			Value: PercentDecode(strings.ReplaceAll(value, "+", " ")),
		})
	}
	return out
}

// SerializeQuery renders pairs as application/x-www-form-urlencoded.
func SerializeQuery(pairs []Pair) string {
	var b strings.Builder
	for i, e := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(percentEncodeString(e.Name, inFormURLEncodedSet, true))
		b.WriteByte('=')
		b.WriteString(percentEncodeString(e.Value, inFormURLEncodedSet, true))
	}
	return b.String()
}

func compareUTF16(a, b string) int {
	ua := utf16.Encode([]rune(a))
	ub := utf16.Encode([]rune(b))
	return slices.Compare(ua, ub)
}
