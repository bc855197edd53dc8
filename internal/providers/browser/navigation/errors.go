package navigation

import (
	"errors"
	"fmt"

	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/clone"
)

var (
	// ErrSuperseded is returned by a full navigation whose result was
	// discarded because a newer navigation started.
	ErrSuperseded = errors.New("navigation superseded")
	// ErrBlocked is returned when policy forbids the target URL.
	ErrBlocked = errors.New("navigation blocked by policy")
	// ErrClosed is returned once the browsing context has been discarded.
	ErrClosed = errors.New("browsing context closed")
	// ErrSecurity is matched by every *SecurityError.
	ErrSecurity = errors.New("SecurityError")
	// ErrDataClone is returned for history state that cannot be cloned.
	ErrDataClone = clone.ErrDataClone
)

// SecurityError reports a URL that may not replace the document URL.
type SecurityError struct {
	URL    string
	Reason string
}

func (e *SecurityError) Error() string {
	return fmt.Sprintf("SecurityError: %s (%s)", e.Reason, e.URL)
}

// Is lets errors.Is match ErrSecurity.
func (e *SecurityError) Is(target error) bool {
	return target == ErrSecurity
}

// NetworkError wraps a Loader failure.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("load %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
