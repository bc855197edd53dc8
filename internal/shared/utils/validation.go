package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/bytedance/sonic"
)

// Byte limits.
const (
	MaxJSONSize   = 1 * 1024 * 1024 // request bodies
	MaxStateSize  = 640 * 1024      // serialized history state
	MaxScriptSize = 256 * 1024      // sandbox script source
	MaxURLLength  = 8 * 1024        // navigation targets
	MaxStateDepth = 32
)

// Rune limits.
const (
	MaxIDLength       = 128
	MaxTitleLength    = 1024
	MaxCategoryLength = 64
	MaxQueryLength    = 2048
)

// ErrInvalid is wrapped by every error this package returns.
var ErrInvalid = errors.New("invalid input")

// FieldError names the request field that failed validation.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string { return e.Field + " " + e.Reason }

func (e *FieldError) Unwrap() error { return ErrInvalid }

func fieldErr(field, format string, args ...any) error {
	return &FieldError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// rule describes a bounded text field. A nil pattern accepts any runes.
type rule struct {
	min, max int
	pattern  *regexp.Regexp
	charset  string
}

var (
	idRule       = rule{min: 1, max: MaxIDLength, pattern: regexp.MustCompile(`^[a-zA-Z0-9_-]+$`), charset: "alphanumeric, hyphens, and underscores"}
	toolIDRule   = rule{min: 1, max: MaxIDLength, pattern: regexp.MustCompile(`^[a-zA-Z0-9._-]+$`), charset: "alphanumeric, dots, hyphens, and underscores"}
	categoryRule = rule{max: MaxCategoryLength, pattern: regexp.MustCompile(`^[a-z0-9-]+$`), charset: "lowercase letters, numbers, and hyphens"}
	titleRule    = rule{max: MaxTitleLength}
	queryRule    = rule{min: 1, max: MaxQueryLength}
)

func (r rule) check(field, value string, required bool) error {
	if value == "" {
		if required {
			return fieldErr(field, "is required")
		}
		return nil
	}
	n := utf8.RuneCountInString(value)
	switch {
	case n < r.min:
		return fieldErr(field, "must be at least %d characters", r.min)
	case n > r.max:
		return fieldErr(field, "must not exceed %d characters", r.max)
	case strings.IndexByte(value, 0) >= 0:
		return fieldErr(field, "contains a NUL byte")
	case r.pattern != nil && !r.pattern.MatchString(value):
		return fieldErr(field, "contains invalid characters (only %s allowed)", r.charset)
	}
	return nil
}

// ValidateID checks window and document ids.
func ValidateID(id, fieldName string, required bool) error {
	return idRule.check(fieldName, id, required)
}

// ValidateToolID checks "service.tool" ids.
func ValidateToolID(id, fieldName string, required bool) error {
	return toolIDRule.check(fieldName, id, required)
}

func ValidateCategory(category string, required bool) error {
	return categoryRule.check("category", category, required)
}

func ValidateTitle(title string) error {
	return titleRule.check("title", title, false)
}

func ValidateQuery(query string) error {
	return queryRule.check("query", query, true)
}

// ValidateURL bounds a navigation target by bytes. The URL parser strips
// control characters itself, so only NUL is rejected here.
func ValidateURL(raw, fieldName string, required bool) error {
	switch {
	case raw == "" && required:
		return fieldErr(fieldName, "is required")
	case len(raw) > MaxURLLength:
		return fieldErr(fieldName, "must not exceed %d bytes", MaxURLLength)
	case strings.IndexByte(raw, 0) >= 0:
		return fieldErr(fieldName, "contains a NUL byte")
	}
	return nil
}

func ValidateScript(script string) error {
	if script == "" {
		return fieldErr("script", "is required")
	}
	if len(script) > MaxScriptSize {
		return fieldErr("script", "size %d bytes exceeds maximum %d bytes", len(script), MaxScriptSize)
	}
	return nil
}

// ValidateState bounds history state decoded from a request body by
// nesting depth and encoded size.
func ValidateState(state any) error {
	if d := depth(state, MaxStateDepth+1); d > MaxStateDepth {
		return fieldErr("state", "nesting depth exceeds maximum %d", MaxStateDepth)
	}
	data, err := sonic.Marshal(state)
	if err != nil {
		return fieldErr("state", "is not encodable: %v", err)
	}
	if len(data) > MaxStateSize {
		return fieldErr("state", "size %d bytes exceeds maximum %d bytes", len(data), MaxStateSize)
	}
	return nil
}

// depth returns the container nesting of v, stopping once limit is reached.
func depth(v any, limit int) int {
	if limit <= 0 {
		return 0
	}
	deepest := 0
	switch c := v.(type) {
	case map[string]any:
		for _, child := range c {
			deepest = max(deepest, 1+depth(child, limit-1))
		}
	case []any:
		for _, child := range c {
			deepest = max(deepest, 1+depth(child, limit-1))
		}
	}
	return deepest
}
