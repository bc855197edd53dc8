package weburl

import (
	"strconv"
	"strings"
)

const eof rune = -1

type state int

const (
	noOverride state = iota
	stateSchemeStart
	stateScheme
	stateNoScheme
	stateSpecialRelativeOrAuthority
	statePathOrAuthority
	stateRelative
	stateRelativeSlash
	stateSpecialAuthoritySlashes
	stateSpecialAuthorityIgnoreSlashes
	stateAuthority
	stateHost
	stateHostname
	statePort
	stateFile
	stateFileSlash
	stateFileHost
	statePathStart
	statePath
	stateOpaquePath
	stateQuery
	stateFragment
)

// Parse parses input against an optional base. The result is always absolute.
func Parse(input string, base *Record) (Record, error) {
	url := newRecord()
	if err := basicParse(input, base, &url, noOverride); err != nil {
		return Record{}, err
	}
	return url, nil
}

// ParseRef parses ref relative to base, which must itself be absolute.
func ParseRef(ref, base string) (Record, error) {
	b, err := Parse(base, nil)
	if err != nil {
		return Record{}, err
	}
	return Parse(ref, &b)
}

type parser struct {
	input    []rune
	pointer  int
	base     *Record
	url      *Record
	state    state
	override state
	buffer   []rune

	atSignSeen        bool
	insideBrackets    bool
	passwordTokenSeen bool
}

// errStop ends an override parse successfully.
type stopError struct{}

func (stopError) Error() string { return "stop" }

var errStop error = stopError{}

func basicParse(input string, base *Record, url *Record, override state) error {
	if override == noOverride {
		input = strings.TrimFunc(input, isC0ControlOrSpace)
	}
	input = strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, input)

	p := &parser{
		input:    []rune(input),
		base:     base,
		url:      url,
		override: override,
		state:    override,
	}
	if override == noOverride {
		p.state = stateSchemeStart
	}

	for {
		c := p.at(p.pointer)
		err := p.step(c)
		if err == errStop {
			return nil
		}
		if err != nil {
			return &ParseError{Input: input, Reason: err.Error()}
		}
		if p.pointer >= len(p.input) {
			return nil
		}
		p.pointer++
	}
}

func (p *parser) at(i int) rune {
	if i < 0 || i >= len(p.input) {
		return eof
	}
	return p.input[i]
}

func (p *parser) remaining() []rune {
	if p.pointer+1 >= len(p.input) {
		return nil
	}
	return p.input[p.pointer+1:]
}

func (p *parser) remainingStartsWith(s string) bool {
	return strings.HasPrefix(string(p.remaining()), s)
}

func (p *parser) special() bool {
	return p.url.IsSpecial()
}

func (p *parser) step(c rune) error {
	switch p.state {
	case stateSchemeStart:
		return p.schemeStart(c)
	case stateScheme:
		return p.scheme(c)
	case stateNoScheme:
		return p.noScheme(c)
	case stateSpecialRelativeOrAuthority:
		if c == '/' && p.remainingStartsWith("/") {
			p.state = stateSpecialAuthorityIgnoreSlashes
			p.pointer++
		} else {
			p.state = stateRelative
			p.pointer--
		}
	case statePathOrAuthority:
		if c == '/' {
			p.state = stateAuthority
		} else {
			p.state = statePath
			p.pointer--
		}
	case stateRelative:
		return p.relative(c)
	case stateRelativeSlash:
		if p.special() && (c == '/' || c == '\\') {
			p.state = stateSpecialAuthorityIgnoreSlashes
		} else if c == '/' {
			p.state = stateAuthority
		} else {
			p.url.Username = p.base.Username
			p.url.Password = p.base.Password
			p.url.Host = p.base.Host
			p.url.Port = p.base.Port
			p.state = statePath
			p.pointer--
		}
	case stateSpecialAuthoritySlashes:
		if c == '/' && p.remainingStartsWith("/") {
			p.state = stateSpecialAuthorityIgnoreSlashes
			p.pointer++
		} else {
			p.state = stateSpecialAuthorityIgnoreSlashes
			p.pointer--
		}
	case stateSpecialAuthorityIgnoreSlashes:
		if c != '/' && c != '\\' {
			p.state = stateAuthority
			p.pointer--
		}
	case stateAuthority:
		return p.authority(c)
	case stateHost, stateHostname:
		return p.host(c)
	case statePort:
		return p.port(c)
	case stateFile:
		return p.file(c)
	case stateFileSlash:
		return p.fileSlash(c)
	case stateFileHost:
		return p.fileHost(c)
	case statePathStart:
		return p.pathStart(c)
	case statePath:
		return p.path(c)
	case stateOpaquePath:
		p.opaquePath(c)
	case stateQuery:
		p.query(c)
	case stateFragment:
		if c != eof {
			var b strings.Builder
			b.WriteString(*p.url.Fragment)
			appendEncodedRune(&b, c, inFragmentSet)
			*p.url.Fragment = b.String()
		}
	}
	return nil
}

func (p *parser) schemeStart(c rune) error {
	switch {
	case isASCIIAlpha(c):
		p.buffer = append(p.buffer, toLowerASCII(c))
		p.state = stateScheme
	case p.override == noOverride:
		p.state = stateNoScheme
		p.pointer--
	default:
		return failure(reasonMissingScheme)
	}
	return nil
}

func (p *parser) scheme(c rune) error {
	if isASCIIAlphanumeric(c) || c == '+' || c == '-' || c == '.' {
		p.buffer = append(p.buffer, toLowerASCII(c))
		return nil
	}
	if c != ':' {
		if p.override == noOverride {
			p.buffer = p.buffer[:0]
			p.state = stateNoScheme
			p.pointer = -1
			return nil
		}
		return failure(reasonMissingScheme)
	}

	buf := string(p.buffer)
	if p.override != noOverride {
		if IsSpecialScheme(p.url.Scheme) != IsSpecialScheme(buf) {
			return errStop
		}
		if (p.url.IncludesCredentials() || p.url.Port >= 0) && buf == "file" {
			return errStop
		}
		if p.url.Scheme == "file" && p.url.Host.Kind == HostEmpty {
			return errStop
		}
	}
	p.url.Scheme = buf
	if p.override != noOverride {
		if p.url.Port == DefaultPort(p.url.Scheme) {
			p.url.Port = -1
		}
		return errStop
	}
	p.buffer = p.buffer[:0]

	switch {
	case p.url.Scheme == "file":
		p.state = stateFile
	case p.special() && p.base != nil && p.base.Scheme == p.url.Scheme:
		p.state = stateSpecialRelativeOrAuthority
	case p.special():
		p.state = stateSpecialAuthoritySlashes
	case p.remainingStartsWith("/"):
		p.state = statePathOrAuthority
		p.pointer++
	default:
		p.url.CannotBeABase = true
		p.url.OpaquePath = ""
		p.url.Path = nil
		p.state = stateOpaquePath
	}
	return nil
}

func (p *parser) noScheme(c rune) error {
	if p.base == nil || (p.base.CannotBeABase && c != '#') {
		return failure(reasonRelativeNoBase)
	}
	if p.base.CannotBeABase && c == '#' {
		p.url.Scheme = p.base.Scheme
		p.url.CannotBeABase = true
		p.url.OpaquePath = p.base.OpaquePath
		p.url.Query = cloneString(p.base.Query)
		empty := ""
		p.url.Fragment = &empty
		p.state = stateFragment
		return nil
	}
	if p.base.Scheme != "file" {
		p.state = stateRelative
	} else {
		p.state = stateFile
	}
	p.pointer--
	return nil
}

func (p *parser) relative(c rune) error {
	p.url.Scheme = p.base.Scheme
	if c == '/' {
		p.state = stateRelativeSlash
		return nil
	}
	if p.special() && c == '\\' {
		p.state = stateRelativeSlash
		return nil
	}
	p.url.Username = p.base.Username
	p.url.Password = p.base.Password
	p.url.Host = p.base.Host
	p.url.Port = p.base.Port
	p.url.Path = append([]string(nil), p.base.Path...)
	p.url.Query = cloneString(p.base.Query)
	switch c {
	case '?':
		empty := ""
		p.url.Query = &empty
		p.state = stateQuery
	case '#':
		empty := ""
		p.url.Fragment = &empty
		p.state = stateFragment
	case eof:
	default:
		p.url.Query = nil
		p.url.shortenPath()
		p.state = statePath
		p.pointer--
	}
	return nil
}

func (p *parser) authority(c rune) error {
	if c == '@' {
		if p.atSignSeen {
			p.buffer = append([]rune("%40"), p.buffer...)
		}
		p.atSignSeen = true
		var user, pass strings.Builder
		user.WriteString(p.url.Username)
		pass.WriteString(p.url.Password)
		for _, r := range p.buffer {
			if r == ':' && !p.passwordTokenSeen {
				p.passwordTokenSeen = true
				continue
			}
			if p.passwordTokenSeen {
				appendEncodedRune(&pass, r, inUserinfoSet)
			} else {
				appendEncodedRune(&user, r, inUserinfoSet)
			}
		}
		p.url.Username = user.String()
		p.url.Password = pass.String()
		p.buffer = p.buffer[:0]
		return nil
	}
	if c == eof || c == '/' || c == '?' || c == '#' || (p.special() && c == '\\') {
		if p.atSignSeen && len(p.buffer) == 0 {
			return failure(reasonCredentialsHost)
		}
		p.pointer -= len(p.buffer) + 1
		p.buffer = p.buffer[:0]
		p.state = stateHost
		return nil
	}
	p.buffer = append(p.buffer, c)
	return nil
}

func (p *parser) host(c rune) error {
	if p.override != noOverride && p.url.Scheme == "file" {
		p.pointer--
		p.state = stateFileHost
		return nil
	}
	if c == ':' && !p.insideBrackets {
		if len(p.buffer) == 0 {
			return failure(reasonEmptyHost)
		}
		if p.override == stateHostname {
			return errStop
		}
		h, err := parseHost(string(p.buffer), !p.special())
		if err != nil {
			return err
		}
		p.url.Host = h
		p.buffer = p.buffer[:0]
		p.state = statePort
		return nil
	}
	if c == eof || c == '/' || c == '?' || c == '#' || (p.special() && c == '\\') {
		p.pointer--
		if p.special() && len(p.buffer) == 0 {
			return failure(reasonEmptyHost)
		}
		if p.override != noOverride && len(p.buffer) == 0 &&
			(p.url.IncludesCredentials() || p.url.Port >= 0) {
			return errStop
		}
		h, err := parseHost(string(p.buffer), !p.special())
		if err != nil {
			return err
		}
		p.url.Host = h
		p.buffer = p.buffer[:0]
		p.state = statePathStart
		if p.override != noOverride {
			return errStop
		}
		return nil
	}
	if c == '[' {
		p.insideBrackets = true
	}
	if c == ']' {
		p.insideBrackets = false
	}
	p.buffer = append(p.buffer, c)
	return nil
}

func (p *parser) port(c rune) error {
	if isASCIIDigit(c) {
		p.buffer = append(p.buffer, c)
		return nil
	}
	if c == eof || c == '/' || c == '?' || c == '#' || (p.special() && c == '\\') || p.override != noOverride {
		if len(p.buffer) != 0 {
			digits := strings.TrimLeft(string(p.buffer), "0")
			if len(digits) > 5 {
				return failure(reasonInvalidPort)
			}
			port := 0
			if digits != "" {
				port, _ = strconv.Atoi(digits)
			}
			if port > 65535 {
				return failure(reasonInvalidPort)
			}
			if port == DefaultPort(p.url.Scheme) {
				p.url.Port = -1
			} else {
				p.url.Port = port
			}
			p.buffer = p.buffer[:0]
			if p.override != noOverride {
				return errStop
			}
		}
		if p.override != noOverride {
			return failure(reasonInvalidPort)
		}
		p.state = statePathStart
		p.pointer--
		return nil
	}
	return failure(reasonInvalidPort)
}

func (p *parser) file(c rune) error {
	p.url.Scheme = "file"
	p.url.Host = Host{Kind: HostEmpty}
	if c == '/' || c == '\\' {
		p.state = stateFileSlash
		return nil
	}
	if p.base != nil && p.base.Scheme == "file" {
		p.url.Host = p.base.Host
		p.url.Path = append([]string(nil), p.base.Path...)
		p.url.Query = cloneString(p.base.Query)
		switch c {
		case '?':
			empty := ""
			p.url.Query = &empty
			p.state = stateQuery
		case '#':
			empty := ""
			p.url.Fragment = &empty
			p.state = stateFragment
		case eof:
		default:
			p.url.Query = nil
			if !startsWithWindowsDriveLetter(p.input[p.pointer:]) {
				p.url.shortenPath()
			} else {
				p.url.Path = nil
			}
			p.state = statePath
			p.pointer--
		}
		return nil
	}
	p.state = statePath
	p.pointer--
	return nil
}

func (p *parser) fileSlash(c rune) error {
	if c == '/' || c == '\\' {
		p.state = stateFileHost
		return nil
	}
	if p.base != nil && p.base.Scheme == "file" {
		p.url.Host = p.base.Host
		if !startsWithWindowsDriveLetter(p.input[p.pointer:]) &&
			len(p.base.Path) > 0 && isNormalizedWindowsDriveLetter(p.base.Path[0]) {
			p.url.Path = append(p.url.Path, p.base.Path[0])
		}
	}
	p.state = statePath
	p.pointer--
	return nil
}

func (p *parser) fileHost(c rune) error {
	if c == eof || c == '/' || c == '\\' || c == '?' || c == '#' {
		p.pointer--
		if p.override == noOverride && isWindowsDriveLetter(string(p.buffer)) {
			p.state = statePath
			return nil
		}
		if len(p.buffer) == 0 {
			p.url.Host = Host{Kind: HostEmpty}
			if p.override != noOverride {
				return errStop
			}
			p.state = statePathStart
			return nil
		}
		h, err := parseHost(string(p.buffer), !p.special())
		if err != nil {
			return err
		}
		if h.Kind == HostDomain && h.Name == "localhost" {
			h = Host{Kind: HostEmpty}
		}
		p.url.Host = h
		if p.override != noOverride {
			return errStop
		}
		p.buffer = p.buffer[:0]
		p.state = statePathStart
		return nil
	}
	p.buffer = append(p.buffer, c)
	return nil
}

func (p *parser) pathStart(c rune) error {
	switch {
	case p.special():
		p.state = statePath
		if c != '/' && c != '\\' {
			p.pointer--
		}
	case p.override == noOverride && c == '?':
		empty := ""
		p.url.Query = &empty
		p.state = stateQuery
	case p.override == noOverride && c == '#':
		empty := ""
		p.url.Fragment = &empty
		p.state = stateFragment
	case c != eof:
		p.state = statePath
		if c != '/' {
			p.pointer--
		}
	case p.override != noOverride && p.url.Host.IsNull():
		p.url.Path = append(p.url.Path, "")
	}
	return nil
}

func (p *parser) path(c rune) error {
	atEnd := c == eof || c == '/' || (p.special() && c == '\\') ||
		(p.override == noOverride && (c == '?' || c == '#'))
	if !atEnd {
		var b strings.Builder
		appendEncodedRune(&b, c, inPathSet)
		p.buffer = append(p.buffer, []rune(b.String())...)
		return nil
	}

	buf := string(p.buffer)
	slash := c == '/' || (p.special() && c == '\\')
	switch {
	case isDoubleDotSegment(buf):
		p.url.shortenPath()
		if !slash {
			p.url.Path = append(p.url.Path, "")
		}
	case isSingleDotSegment(buf) && !slash:
		p.url.Path = append(p.url.Path, "")
	case !isSingleDotSegment(buf):
		if p.url.Scheme == "file" && len(p.url.Path) == 0 && isWindowsDriveLetter(buf) {
			buf = buf[:1] + ":"
		}
		p.url.Path = append(p.url.Path, buf)
	}
	p.buffer = p.buffer[:0]

	switch c {
	case '?':
		empty := ""
		p.url.Query = &empty
		p.state = stateQuery
	case '#':
		empty := ""
		p.url.Fragment = &empty
		p.state = stateFragment
	}
	return nil
}

func (p *parser) opaquePath(c rune) {
	switch c {
	case '?':
		empty := ""
		p.url.Query = &empty
		p.state = stateQuery
	case '#':
		empty := ""
		p.url.Fragment = &empty
		p.state = stateFragment
	case eof:
	default:
		var b strings.Builder
		b.WriteString(p.url.OpaquePath)
		appendEncodedRune(&b, c, inC0ControlSet)
		p.url.OpaquePath = b.String()
	}
}

func (p *parser) query(c rune) {
	if (p.override == noOverride && c == '#') || c == eof {
		set := encodeSet(inQuerySet)
		if p.special() {
			set = inSpecialQuerySet
		}
		if p.url.Query == nil {
			empty := ""
			p.url.Query = &empty
		}
		*p.url.Query += percentEncodeString(string(p.buffer), set, false)
		p.buffer = p.buffer[:0]
		if c == '#' {
			empty := ""
			p.url.Fragment = &empty
			p.state = stateFragment
		}
		return
	}
	p.buffer = append(p.buffer, c)
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func isC0ControlOrSpace(r rune) bool {
	return r >= 0 && r <= 0x20
}

func isASCIIAlpha(r rune) bool {
	return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
}

func isASCIIDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isASCIIAlphanumeric(r rune) bool {
	return isASCIIAlpha(r) || isASCIIDigit(r)
}

func isASCIIHexDigit(r rune) bool {
	return isASCIIDigit(r) || ('a' <= r && r <= 'f') || ('A' <= r && r <= 'F')
}

func toLowerASCII(r rune) rune {
	if 'A' <= r && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

func isWindowsDriveLetter(s string) bool {
	return len(s) == 2 && isASCIIAlpha(rune(s[0])) && (s[1] == ':' || s[1] == '|')
}

func isNormalizedWindowsDriveLetter(s string) bool {
	return len(s) == 2 && isASCIIAlpha(rune(s[0])) && s[1] == ':'
}

func startsWithWindowsDriveLetter(in []rune) bool {
	if len(in) < 2 || !isASCIIAlpha(in[0]) || (in[1] != ':' && in[1] != '|') {
		return false
	}
	if len(in) == 2 {
		return true
	}
	switch in[2] {
	case '/', '\\', '?', '#':
		return true
	}
	return false
}

func isSingleDotSegment(s string) bool {
	return s == "." || strings.EqualFold(s, "%2e")
}

func isDoubleDotSegment(s string) bool {
	switch strings.ToLower(s) {
	case "..", ".%2e", "%2e.", "%2e%2e":
		return true
	}
	return false
}
