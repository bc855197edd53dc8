package weburl

import (
	"strconv"
	"strings"
)

// specialSchemes maps each special scheme to its default port (-1 for none)
var specialSchemes = map[string]int{
	"ftp":   21,
	"file":  -1,
	"http":  80,
	"https": 443,
	"ws":    80,
	"wss":   443,
}

// IsSpecialScheme reports whether scheme is one of ftp, file, http, https, ws, wss.
func IsSpecialScheme(scheme string) bool {
	_, ok := specialSchemes[scheme]
	return ok
}

// DefaultPort returns the default port for scheme, or -1.
func DefaultPort(scheme string) int {
	if p, ok := specialSchemes[scheme]; ok {
		return p
	}
	return -1
}

// Record is a parsed URL. A nil Query or Fragment means the component is
// absent, which serializes differently from an empty one. Port is -1 when
// absent and never equals the scheme's default port.
type Record struct {
	Scheme   string
	Username string
	Password string
	Host     Host
	Port     int
	Path     []string
	// OpaquePath holds the path when CannotBeABase is set (e.g. mailto:, data:).
	OpaquePath    string
	CannotBeABase bool
	Query         *string
	Fragment      *string
}

func newRecord() Record {
	return Record{Port: -1}
}

// Clone returns a deep copy.
func (r Record) Clone() Record {
	out := r
	if r.Path != nil {
		out.Path = append([]string(nil), r.Path...)
	}
	if r.Query != nil {
		q := *r.Query
		out.Query = &q
	}
	if r.Fragment != nil {
		f := *r.Fragment
		out.Fragment = &f
	}
	return out
}

// IsSpecial reports whether the scheme is special.
func (r Record) IsSpecial() bool {
	return IsSpecialScheme(r.Scheme)
}

// IncludesCredentials reports whether username or password is non-empty.
func (r Record) IncludesCredentials() bool {
	return r.Username != "" || r.Password != ""
}

// CannotHaveCredentialsOrPort reports whether the userinfo and port setters must be ignored.
func (r Record) CannotHaveCredentialsOrPort() bool {
	return r.Host.IsNull() || r.Host.Kind == HostEmpty || r.Scheme == "file"
}

func (r *Record) shortenPath() {
	if r.Scheme == "file" && len(r.Path) == 1 && isNormalizedWindowsDriveLetter(r.Path[0]) {
		return
	}
	if len(r.Path) > 0 {
		r.Path = r.Path[:len(r.Path)-1]
	}
}

// stripTrailingSpacesFromOpaquePath applies once query and fragment are both absent.
func (r *Record) stripTrailingSpacesFromOpaquePath() {
	if !r.CannotBeABase || r.Fragment != nil || r.Query != nil {
		return
	}
	r.OpaquePath = strings.TrimRight(r.OpaquePath, " ")
}

// Href serializes the record.
func (r Record) Href() string {
	return r.serialize(false)
}

// String implements fmt.Stringer.
func (r Record) String() string {
	return r.serialize(false)
}

// HrefWithoutFragment serializes the record with the fragment excluded.
func (r Record) HrefWithoutFragment() string {
	return r.serialize(true)
}

func (r Record) serialize(excludeFragment bool) string {
	var b strings.Builder
	b.WriteString(r.Scheme)
	b.WriteByte(':')
	if !r.Host.IsNull() {
		b.WriteString("//")
		if r.IncludesCredentials() {
			b.WriteString(r.Username)
			if r.Password != "" {
				b.WriteByte(':')
				b.WriteString(r.Password)
			}
			b.WriteByte('@')
		}
		b.WriteString(r.Host.String())
		if r.Port >= 0 {
			b.WriteByte(':')
			b.WriteString(strconv.Itoa(r.Port))
		}
	} else if !r.CannotBeABase && len(r.Path) > 1 && r.Path[0] == "" {
		// keeps "web+demo:/.//not-a-host/" from reparsing with a host
		b.WriteString("/.")
	}
	b.WriteString(r.Pathname())
	if r.Query != nil {
		b.WriteByte('?')
		b.WriteString(*r.Query)
	}
	if !excludeFragment && r.Fragment != nil {
		b.WriteByte('#')
		b.WriteString(*r.Fragment)
	}
	return b.String()
}

// Pathname serializes the path.
func (r Record) Pathname() string {
	if r.CannotBeABase {
		return r.OpaquePath
	}
	var b strings.Builder
	for _, seg := range r.Path {
		b.WriteByte('/')
		b.WriteString(seg)
	}
	return b.String()
}

// Protocol returns the scheme followed by ":".
func (r Record) Protocol() string {
	return r.Scheme + ":"
}

// Hostname returns the serialized host, or "" when absent.
func (r Record) Hostname() string {
	if r.Host.IsNull() {
		return ""
	}
	return r.Host.String()
}

// HostPort returns the serialized host plus ":port" when a port is set.
func (r Record) HostPort() string {
	if r.Host.IsNull() {
		return ""
	}
	if r.Port < 0 {
		return r.Host.String()
	}
	return r.Host.String() + ":" + strconv.Itoa(r.Port)
}

// PortString returns the port as decimal text, or "".
func (r Record) PortString() string {
	if r.Port < 0 {
		return ""
	}
	return strconv.Itoa(r.Port)
}

// Search returns "?" plus the query, or "" when the query is absent or empty.
func (r Record) Search() string {
	if r.Query == nil || *r.Query == "" {
		return ""
	}
	return "?" + *r.Query
}

// Hash returns "#" plus the fragment, or "" when the fragment is absent or empty.
func (r Record) Hash() string {
	if r.Fragment == nil || *r.Fragment == "" {
		return ""
	}
	return "#" + *r.Fragment
}

// Equal reports whether two records serialize identically.
func (r Record) Equal(o Record) bool {
	return r.serialize(false) == o.serialize(false)
}

// EqualExceptFragment reports whether two records differ at most in their fragment.
func (r Record) EqualExceptFragment(o Record) bool {
	return r.serialize(true) == o.serialize(true)
}

// FragmentEqual compares fragments, treating absent and empty as distinct.
func (r Record) FragmentEqual(o Record) bool {
	if r.Fragment == nil || o.Fragment == nil {
		return r.Fragment == nil && o.Fragment == nil
	}
	return *r.Fragment == *o.Fragment
}

// Origin computes the record's origin.
func (r Record) Origin() Origin {
	switch r.Scheme {
	case "blob":
		inner, err := Parse(r.Pathname(), nil)
		if err == nil && (inner.Scheme == "http" || inner.Scheme == "https") {
			return inner.Origin()
		}
		return Origin{Opaque: true}
	case "ftp", "http", "https", "ws", "wss":
		return Origin{Scheme: r.Scheme, Host: r.Host, Port: r.Port}
	default:
		return Origin{Opaque: true}
	}
}

// Origin is either an opaque origin or a scheme/host/port tuple.
type Origin struct {
	Opaque bool
	Scheme string
	Host   Host
	Port   int
}

// String serializes the origin; opaque origins serialize as "null".
func (o Origin) String() string {
	if o.Opaque {
		return "null"
	}
	s := o.Scheme + "://" + o.Host.String()
	if o.Port >= 0 {
		s += ":" + strconv.Itoa(o.Port)
	}
	return s
}

// SameOrigin reports whether two tuple origins match. Opaque origins are
// never the same as one another.
func (o Origin) SameOrigin(other Origin) bool {
	if o.Opaque || other.Opaque {
		return false
	}
	return o.Scheme == other.Scheme && o.Host.Equal(other.Host) && o.Port == other.Port
}
