package weburl

import (
	"strings"
	"unicode/utf8"
)

// encodeSet reports whether a UTF-8 byte must be percent-encoded.
type encodeSet func(b byte) bool

func inC0ControlSet(b byte) bool {
	return b < 0x20 || b > 0x7e
}

func inFragmentSet(b byte) bool {
	return inC0ControlSet(b) || b == ' ' || b == '"' || b == '<' || b == '>' || b == '`'
}

func inQuerySet(b byte) bool {
	return inC0ControlSet(b) || b == ' ' || b == '"' || b == '#' || b == '<' || b == '>'
}

func inSpecialQuerySet(b byte) bool {
	return inQuerySet(b) || b == '\''
}

func inPathSet(b byte) bool {
	return inQuerySet(b) || b == '?' || b == '`' || b == '{' || b == '}'
}

func inUserinfoSet(b byte) bool {
	if inPathSet(b) {
		return true
	}
	switch b {
	case '/', ':', ';', '=', '@', '[', '\\', ']', '^', '|':
		return true
	}
	return false
}

func inComponentSet(b byte) bool {
	return inUserinfoSet(b) || b == '$' || b == '%' || b == '&' || b == '+' || b == ','
}

func inFormURLEncodedSet(b byte) bool {
	return inComponentSet(b) || b == '!' || b == '\'' || b == '(' || b == ')' || b == '~'
}

const upperHex = "0123456789ABCDEF"

func appendPercentByte(b *strings.Builder, c byte) {
	b.WriteByte('%')
	b.WriteByte(upperHex[c>>4])
	b.WriteByte(upperHex[c&0x0f])
}

// appendEncodedRune writes r to b, percent-encoding each UTF-8 byte in set.
func appendEncodedRune(b *strings.Builder, r rune, set encodeSet) {
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], r)
	for _, c := range buf[:n] {
		if set(c) {
			appendPercentByte(b, c)
		} else {
			b.WriteByte(c)
		}
	}
}

func percentEncodeString(s string, set encodeSet, spaceAsPlus bool) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case spaceAsPlus && c == ' ':
			b.WriteByte('+')
		case set(c):
			appendPercentByte(&b, c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// PercentEncode encodes s with the component encode set, as encodeURIComponent would.
func PercentEncode(s string) string {
	return percentEncodeString(s, inComponentSet, false)
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// percentDecode decodes %XX sequences and leaves malformed ones as-is.
func percentDecode(s string) []byte {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '%' && i+2 < len(s) {
			hi, ok1 := unhex(s[i+1])
			lo, ok2 := unhex(s[i+2])
			if ok1 && ok2 {
				out = append(out, hi<<4|lo)
				i += 2
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

// PercentDecodeBytes decodes s without any UTF-8 interpretation.
func PercentDecodeBytes(s string) []byte {
	return percentDecode(s)
}

// PercentDecode decodes s and replaces invalid UTF-8 with U+FFFD.
func PercentDecode(s string) string {
	return decodeUTF8Lossy(percentDecode(s))
}

// decodeUTF8Lossy replaces every byte of an invalid sequence with U+FFFD.
func decodeUTF8Lossy(p []byte) string {
	if utf8.Valid(p) {
		return string(p)
	}
	var b strings.Builder
	b.Grow(len(p))
	for len(p) > 0 {
		r, size := utf8.DecodeRune(p)
		if r == utf8.RuneError && size == 1 {
			b.WriteRune(utf8.RuneError)
		} else {
			b.Write(p[:size])
		}
		p = p[size:]
	}
	return b.String()
}
