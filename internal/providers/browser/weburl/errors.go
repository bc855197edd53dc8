package weburl

import (
	"errors"
	"fmt"
)

// ErrInvalidURL is returned when input cannot be parsed into a URL.
var ErrInvalidURL = errors.New("invalid URL")

// ParseError describes why a parse failed.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("TypeError: failed to parse URL %q: %s", e.Input, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return ErrInvalidURL
}

// failure reasons
const (
	reasonMissingScheme   = "missing scheme"
	reasonRelativeNoBase  = "relative URL without a base"
	reasonInvalidHost     = "invalid host"
	reasonEmptyHost       = "empty host"
	reasonInvalidPort     = "invalid port"
	reasonInvalidIPv4     = "invalid IPv4 address"
	reasonInvalidIPv6     = "invalid IPv6 address"
	reasonInvalidDomain   = "invalid domain"
	reasonForbiddenHost   = "forbidden host code point"
	reasonCredentialsHost = "credentials without host"
)

// failure carries a reason out of the state machine.
type failure string

func (e failure) Error() string { return string(e) }
