package weburl

import (
	"strconv"
	"strings"

	"golang.org/x/net/idna"
)

// HostKind identifies the variant held by a Host.
type HostKind uint8

const (
	// HostNull means the URL has no authority at all.
	HostNull HostKind = iota
	HostEmpty
	HostDomain
	HostIPv4
	HostIPv6
	HostOpaque
)

// Host is a parsed host. Name is set for HostDomain and HostOpaque.
type Host struct {
	Kind HostKind
	Name string
	IPv4 uint32
	IPv6 [8]uint16
}

// IsNull reports whether there is no host.
func (h Host) IsNull() bool {
	return h.Kind == HostNull
}

// Equal compares two hosts by value.
func (h Host) Equal(o Host) bool {
	return h == o
}

// String serializes the host.
func (h Host) String() string {
	switch h.Kind {
	case HostDomain, HostOpaque:
		return h.Name
	case HostIPv4:
		return serializeIPv4(h.IPv4)
	case HostIPv6:
		return "[" + serializeIPv6(h.IPv6) + "]"
	}
	return ""
}

var idnaProfile = idna.New(
	idna.MapForLookup(),
	idna.BidiRule(),
	idna.Transitional(false),
	idna.StrictDomainName(false),
	idna.CheckHyphens(false),
	idna.CheckJoiners(true),
	idna.VerifyDNSLength(false),
)

func isForbiddenHostCodePoint(r rune) bool {
	switch r {
	case 0x00, '\t', '\n', '\r', ' ', '#', '/', ':', '<', '>', '?', '@', '[', '\\', ']', '^', '|':
		return true
	}
	return false
}

func isForbiddenDomainCodePoint(r rune) bool {
	return isForbiddenHostCodePoint(r) || (r >= 0 && r <= 0x1f) || r == '%' || r == 0x7f
}

// parseHost parses the host portion of an authority. isOpaque selects the
// non-special-scheme grammar.
func parseHost(input string, isOpaque bool) (Host, error) {
	if strings.HasPrefix(input, "[") {
		if !strings.HasSuffix(input, "]") || len(input) < 2 {
			return Host{}, failure(reasonInvalidIPv6)
		}
		addr, err := parseIPv6(input[1 : len(input)-1])
		if err != nil {
			return Host{}, err
		}
		return Host{Kind: HostIPv6, IPv6: addr}, nil
	}
	if isOpaque {
		return parseOpaqueHost(input)
	}

	domain := decodeUTF8Lossy(percentDecode(input))
	ascii, err := domainToASCII(domain)
	if err != nil {
		return Host{}, err
	}
	for _, r := range ascii {
		if isForbiddenDomainCodePoint(r) {
			return Host{}, failure(reasonForbiddenHost)
		}
	}
	if endsInANumber(ascii) {
		v4, err := parseIPv4(ascii)
		if err != nil {
			return Host{}, err
		}
		return Host{Kind: HostIPv4, IPv4: v4}, nil
	}
	return Host{Kind: HostDomain, Name: ascii}, nil
}

func parseOpaqueHost(input string) (Host, error) {
	for _, r := range input {
		if isForbiddenHostCodePoint(r) {
			return Host{}, failure(reasonForbiddenHost)
		}
	}
	if input == "" {
		return Host{Kind: HostEmpty}, nil
	}
	return Host{Kind: HostOpaque, Name: percentEncodeString(input, inC0ControlSet, false)}, nil
}

func domainToASCII(domain string) (string, error) {
	if isPlainASCIIDomain(domain) {
		if domain == "" {
			return "", failure(reasonEmptyHost)
		}
		return strings.ToLower(domain), nil
	}
	out, err := idnaProfile.ToASCII(domain)
	if err != nil {
		return "", failure(reasonInvalidDomain)
	}
	if out == "" {
		return "", failure(reasonEmptyHost)
	}
	return out, nil
}

// isPlainASCIIDomain reports whether domain needs no IDNA processing.
func isPlainASCIIDomain(domain string) bool {
	for i := 0; i < len(domain); i++ {
		if domain[i] >= 0x80 {
			return false
		}
	}
	lower := strings.ToLower(domain)
	if strings.HasPrefix(lower, "xn--") || strings.Contains(lower, ".xn--") {
		return false
	}
	return true
}

func endsInANumber(s string) bool {
	parts := strings.Split(s, ".")
	if parts[len(parts)-1] == "" {
		if len(parts) == 1 {
			return false
		}
		parts = parts[:len(parts)-1]
	}
	last := parts[len(parts)-1]
	if last != "" && strings.Trim(last, "0123456789") == "" {
		return true
	}
	_, ok := parseIPv4Number(last)
	return ok
}

const ipv4Overflow = 1<<32 + 1

// parseIPv4Number parses a decimal, 0-prefixed octal or 0x-prefixed hex
// number. Values beyond 2^32 saturate so range checks still fail.
func parseIPv4Number(s string) (uint64, bool) {
	if s == "" {
		return 0, false
	}
	radix := uint64(10)
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		s = s[2:]
		radix = 16
	} else if len(s) >= 2 && s[0] == '0' {
		s = s[1:]
		radix = 8
	}
	if s == "" {
		return 0, true
	}
	var n uint64
	for i := 0; i < len(s); i++ {
		d, ok := unhex(s[i])
		if !ok || uint64(d) >= radix {
			return 0, false
		}
		n = n*radix + uint64(d)
		if n > 1<<32 {
			n = ipv4Overflow
		}
	}
	return n, true
}

func parseIPv4(s string) (uint32, error) {
	parts := strings.Split(s, ".")
	if parts[len(parts)-1] == "" && len(parts) > 1 {
		parts = parts[:len(parts)-1]
	}
	if len(parts) > 4 {
		return 0, failure(reasonInvalidIPv4)
	}
	numbers := make([]uint64, 0, len(parts))
	for _, p := range parts {
		n, ok := parseIPv4Number(p)
		if !ok {
			return 0, failure(reasonInvalidIPv4)
		}
		numbers = append(numbers, n)
	}
	for _, n := range numbers[:len(numbers)-1] {
		if n > 255 {
			return 0, failure(reasonInvalidIPv4)
		}
	}
	last := numbers[len(numbers)-1]
	if last >= uint64(1)<<(8*(5-len(numbers))) {
		return 0, failure(reasonInvalidIPv4)
	}
	ipv4 := last
	for i, n := range numbers[:len(numbers)-1] {
		ipv4 += n << (8 * (3 - i))
	}
	return uint32(ipv4), nil
}

func serializeIPv4(addr uint32) string {
	var b strings.Builder
	for i := 3; i >= 0; i-- {
		b.WriteString(strconv.Itoa(int(addr >> (8 * i) & 0xff)))
		if i != 0 {
			b.WriteByte('.')
		}
	}
	return b.String()
}

func parseIPv6(input string) ([8]uint16, error) {
	var addr [8]uint16
	fail := failure(reasonInvalidIPv6)
	in := []rune(input)
	at := func(i int) rune {
		if i < len(in) {
			return in[i]
		}
		return eof
	}

	pieceIndex, compress, pointer := 0, -1, 0
	if at(0) == ':' {
		if at(1) != ':' {
			return addr, fail
		}
		pointer += 2
		pieceIndex++
		compress = pieceIndex
	}

	for at(pointer) != eof {
		if pieceIndex == 8 {
			return addr, fail
		}
		if at(pointer) == ':' {
			if compress != -1 {
				return addr, fail
			}
			pointer++
			pieceIndex++
			compress = pieceIndex
			continue
		}

		value, length := 0, 0
		for length < 4 && isASCIIHexDigit(at(pointer)) {
			d, _ := unhex(byte(at(pointer)))
			value = value*0x10 + int(d)
			pointer++
			length++
		}

		if at(pointer) == '.' {
			if length == 0 {
				return addr, fail
			}
			pointer -= length
			if pieceIndex > 6 {
				return addr, fail
			}
			numbersSeen := 0
			for at(pointer) != eof {
				piece := -1
				if numbersSeen > 0 {
					if at(pointer) == '.' && numbersSeen < 4 {
						pointer++
					} else {
						return addr, fail
					}
				}
				if !isASCIIDigit(at(pointer)) {
					return addr, fail
				}
				for isASCIIDigit(at(pointer)) {
					n := int(at(pointer) - '0')
					switch piece {
					case -1:
						piece = n
					case 0:
						return addr, fail
					default:
						piece = piece*10 + n
					}
					if piece > 255 {
						return addr, fail
					}
					pointer++
				}
				addr[pieceIndex] = addr[pieceIndex]*0x100 + uint16(piece)
				numbersSeen++
				if numbersSeen == 2 || numbersSeen == 4 {
					pieceIndex++
				}
			}
			if numbersSeen != 4 {
				return addr, fail
			}
			break
		} else if at(pointer) == ':' {
			pointer++
			if at(pointer) == eof {
				return addr, fail
			}
		} else if at(pointer) != eof {
			return addr, fail
		}
		addr[pieceIndex] = uint16(value)
		pieceIndex++
	}

	if compress != -1 {
		swaps := pieceIndex - compress
		pieceIndex = 7
		for pieceIndex != 0 && swaps > 0 {
			addr[pieceIndex], addr[compress+swaps-1] = addr[compress+swaps-1], addr[pieceIndex]
			pieceIndex--
			swaps--
		}
	} else if pieceIndex != 8 {
		return addr, fail
	}
	return addr, nil
}

func serializeIPv6(addr [8]uint16) string {
	// first longest run of two or more zero pieces
	compress, bestLen := -1, 1
	for i := 0; i < 8; {
		if addr[i] != 0 {
			i++
			continue
		}
		j := i
		for j < 8 && addr[j] == 0 {
			j++
		}
		if j-i > bestLen {
			compress, bestLen = i, j-i
		}
		i = j
	}

	var b strings.Builder
	ignore0 := false
	for i := 0; i < 8; i++ {
		if ignore0 && addr[i] == 0 {
			continue
		}
		ignore0 = false
		if compress == i {
			if i == 0 {
				b.WriteString("::")
			} else {
				b.WriteByte(':')
			}
			ignore0 = true
			continue
		}
		b.WriteString(strconv.FormatUint(uint64(addr[i]), 16))
		if i != 7 {
			b.WriteByte(':')
		}
	}
	return b.String()
}
