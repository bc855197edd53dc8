package navigation

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/weburl"
)

// Policy blocks full navigations whose target matches a glob. Patterns are
// matched against "host/path" with doublestar syntax, so "*.ads.test/**"
// blocks every path under any subdomain of ads.test. A pattern containing
// "://" is matched against "scheme://host/path" instead.
type Policy struct {
	patterns []string
}

// NewPolicy validates patterns and builds a policy.
func NewPolicy(patterns ...string) (*Policy, error) {
	p := &Policy{}
	for _, pat := range patterns {
		pat = strings.TrimSpace(pat)
		if pat == "" {
			continue
		}
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("invalid navigation pattern %q", pat)
		}
		p.patterns = append(p.patterns, pat)
	}
	return p, nil
}

// Patterns returns the configured patterns.
func (p *Policy) Patterns() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.patterns...)
}

// Blocks reports whether u matches any pattern. A nil policy blocks nothing.
func (p *Policy) Blocks(u weburl.Record) bool {
	if p == nil || len(p.patterns) == 0 {
		return false
	}
	hostPath := u.HostPort() + u.Pathname()
	full := u.Scheme + "://" + hostPath
	for _, pat := range p.patterns {
		subject := hostPath
		if strings.Contains(pat, "://") {
			subject = full
		}
		if ok, _ := doublestar.Match(pat, subject); ok {
			return true
		}
	}
	return false
}
