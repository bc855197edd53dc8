package weburl

import (
	"strings"

	"github.com/bytedance/sonic"
)

// URL is a mutable URL object. Component setters never fail loudly: input
// that does not parse leaves the URL unchanged. Only SetHref reports errors.
type URL struct {
	rec Record
	// queryGen advances whenever the query is replaced from outside the
	// bound SearchParams, which then reparses lazily.
	queryGen uint64
	params   *SearchParams
}

// New parses input, optionally against base, into a URL object.
func New(input string, base ...string) (*URL, error) {
	var baseRec *Record
	if len(base) > 0 {
		b, err := Parse(base[0], nil)
		if err != nil {
			return nil, err
		}
		baseRec = &b
	}
	rec, err := Parse(input, baseRec)
	if err != nil {
		return nil, err
	}
	return &URL{rec: rec}, nil
}

// MustParse is like New but panics on error. Intended for fixtures.
func MustParse(input string) *URL {
	u, err := New(input)
	if err != nil {
		panic(err)
	}
	return u
}

// FromRecord wraps a copy of rec.
func FromRecord(rec Record) *URL {
	return &URL{rec: rec.Clone()}
}

// CanParse reports whether input (optionally against base) parses.
func CanParse(input string, base ...string) bool {
	_, err := New(input, base...)
	return err == nil
}

// Record returns a copy of the underlying record.
func (u *URL) Record() Record {
	return u.rec.Clone()
}

// commit installs next and invalidates the search params when the query moved.
func (u *URL) commit(next Record) {
	if !sameQuery(u.rec.Query, next.Query) {
		u.queryGen++
	}
	u.rec = next
}

func sameQuery(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// setWith runs the parser in override mode on a copy and keeps whatever it
// managed to set before stopping, mirroring in-place mutation.
func (u *URL) setWith(input string, override state, prepare func(*Record) bool) {
	next := u.rec.Clone()
	if prepare != nil && !prepare(&next) {
		return
	}
	if err := basicParse(input, nil, &next, override); err != nil {
		next = u.keepPartial(next, err)
	}
	u.commit(next)
}

// keepPartial decides what survives a failed override parse. Only a port
// failure after a successful host parse leaves anything behind.
func (u *URL) keepPartial(next Record, err error) Record {
	if pe, ok := err.(*ParseError); ok && pe.Reason == reasonInvalidPort && !next.Host.Equal(u.rec.Host) {
		next.Port = u.rec.Port
		return next
	}
	return u.rec.Clone()
}

func (u *URL) Href() string { return u.rec.Href() }

// String implements fmt.Stringer.
func (u *URL) String() string { return u.rec.Href() }

// MarshalJSON serializes the URL as its href.
func (u *URL) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(u.rec.Href())
}

// SetHref replaces the whole URL. Unlike the other setters it reports failure.
func (u *URL) SetHref(v string) error {
	rec, err := Parse(v, nil)
	if err != nil {
		return err
	}
	u.commit(rec)
	u.queryGen++
	return nil
}

func (u *URL) Origin() string { return u.rec.Origin().String() }

func (u *URL) Protocol() string { return u.rec.Protocol() }

func (u *URL) SetProtocol(v string) {
	u.setWith(v+":", stateSchemeStart, nil)
}

func (u *URL) Username() string { return u.rec.Username }

func (u *URL) SetUsername(v string) {
	if u.rec.CannotHaveCredentialsOrPort() {
		return
	}
	next := u.rec.Clone()
	next.Username = percentEncodeString(v, inUserinfoSet, false)
	u.commit(next)
}

func (u *URL) Password() string { return u.rec.Password }

func (u *URL) SetPassword(v string) {
	if u.rec.CannotHaveCredentialsOrPort() {
		return
	}
	next := u.rec.Clone()
	next.Password = percentEncodeString(v, inUserinfoSet, false)
	u.commit(next)
}

func (u *URL) Host() string { return u.rec.HostPort() }

func (u *URL) SetHost(v string) {
	if u.rec.CannotBeABase {
		return
	}
	u.setWith(v, stateHost, nil)
}

func (u *URL) Hostname() string { return u.rec.Hostname() }

func (u *URL) SetHostname(v string) {
	if u.rec.CannotBeABase {
		return
	}
	u.setWith(v, stateHostname, nil)
}

func (u *URL) Port() string { return u.rec.PortString() }

// SetPort clears the port for "", otherwise parses leading digits.
func (u *URL) SetPort(v string) {
	if u.rec.CannotHaveCredentialsOrPort() {
		return
	}
	if v == "" {
		next := u.rec.Clone()
		next.Port = -1
		u.commit(next)
		return
	}
	u.setWith(v, statePort, nil)
}

func (u *URL) Pathname() string { return u.rec.Pathname() }

func (u *URL) SetPathname(v string) {
	if u.rec.CannotBeABase {
		return
	}
	u.setWith(v, statePathStart, func(r *Record) bool {
		r.Path = nil
		return true
	})
}

func (u *URL) Search() string { return u.rec.Search() }

// SetSearch clears the query for "", otherwise replaces it (a leading "?" is dropped).
func (u *URL) SetSearch(v string) {
	if v == "" {
		next := u.rec.Clone()
		next.Query = nil
		next.stripTrailingSpacesFromOpaquePath()
		u.commit(next)
		return
	}
	v = strings.TrimPrefix(v, "?")
	u.setWith(v, stateQuery, func(r *Record) bool {
		empty := ""
		r.Query = &empty
		return true
	})
	// the list is rebuilt even when the query text is unchanged
	u.queryGen++
}

func (u *URL) Hash() string { return u.rec.Hash() }

// SetHash clears the fragment for "", otherwise replaces it (a leading "#" is dropped).
func (u *URL) SetHash(v string) {
	if v == "" {
		next := u.rec.Clone()
		next.Fragment = nil
		next.stripTrailingSpacesFromOpaquePath()
		u.commit(next)
		return
	}
	v = strings.TrimPrefix(v, "#")
	u.setWith(v, stateFragment, func(r *Record) bool {
		empty := ""
		r.Fragment = &empty
		return true
	})
}

// SearchParams returns the live view bound to this URL. The same view is
// returned on every call.
func (u *URL) SearchParams() *SearchParams {
	if u.params == nil {
		u.params = &SearchParams{owner: u}
		u.params.sync()
	}
	return u.params
}

// setQueryFromParams is the write-back path used by the bound SearchParams.
func (u *URL) setQueryFromParams(serialized string) {
	next := u.rec.Clone()
	if serialized == "" {
		next.Query = nil
		next.stripTrailingSpacesFromOpaquePath()
	} else {
		next.Query = &serialized
	}
	u.rec = next
}
