package sandbox

import (
	"time"

	"github.com/GriffinCanCode/AgentOS/navigator/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/navigation"
)

// Config defines sandbox configuration
type Config struct {
	Timeout          time.Duration // Execution timeout
	MaxCallStackSize int           // goja call stack limit
	MaxLogs          int           // Console entries kept per execution
	EnableConsole    bool          // Allow console.log/warn/error
	EnableDOM        bool          // Expose a read-mostly document proxy
	// MaxEventRounds bounds how many times queued events are drained after
	// the script returns. Listeners that keep navigating stop here.
	MaxEventRounds int
}

// Result holds execution result
type Result struct {
	Value      any                `json:"value"`
	Console    []LogEntry         `json:"console"`
	DOMChanges []DOMChange        `json:"dom_changes,omitempty"`
	Events     []navigation.Event `json:"events,omitempty"`
	Duration   time.Duration      `json:"duration"`
}

// LogEntry represents console output
type LogEntry struct {
	Level   string    `json:"level"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// DOMChange represents a DOM modification
type DOMChange struct {
	Type     string `json:"type"`
	Selector string `json:"selector"`
	Property string `json:"property"`
	Value    any    `json:"value"`
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		Timeout:          5 * time.Second,
		MaxCallStackSize: 1024,
		MaxLogs:          1000,
		EnableConsole:    true,
		EnableDOM:        true,
		MaxEventRounds:   16,
	}
}

// FromConfig builds a sandbox Config from application configuration.
func FromConfig(cfg *config.Config) Config {
	c := DefaultConfig()
	if d := cfg.Sandbox.Timeout.Std(); d > 0 {
		c.Timeout = d
	}
	if cfg.Sandbox.MaxLogs > 0 {
		c.MaxLogs = cfg.Sandbox.MaxLogs
	}
	return c
}
