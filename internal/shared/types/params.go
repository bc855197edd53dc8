package types

import (
	"fmt"
	"math"
)

// Success wraps data in a successful result. The nil error lets providers
// write `return types.Success(...)` directly.
func Success(data map[string]any) (*Result, error) {
	return &Result{Success: true, Data: data}, nil
}

// Failure reports a tool-level failure. The call itself did not error.
func Failure(message string) (*Result, error) {
	return &Result{Error: &message}, nil
}

func Failuref(format string, args ...any) (*Result, error) {
	return Failure(fmt.Sprintf(format, args...))
}

// lookup returns the value under key, treating an explicit null as absent.
func lookup(params map[string]any, key string) (any, bool) {
	v, ok := params[key]
	return v, ok && v != nil
}

// GetString reads a string parameter. A required parameter must be present
// and non-empty.
func GetString(params map[string]any, key string, required bool) (string, error) {
	v, ok := lookup(params, key)
	if !ok {
		if required {
			return "", fmt.Errorf("%s parameter required", key)
		}
		return "", nil
	}
	s, isString := v.(string)
	switch {
	case !isString:
		return "", fmt.Errorf("%s must be string", key)
	case required && s == "":
		return "", fmt.Errorf("%s cannot be empty", key)
	}
	return s, nil
}

// GetBool reads a bool parameter, returning def when absent or mistyped.
func GetBool(params map[string]any, key string, def bool) bool {
	if b, ok := params[key].(bool); ok {
		return b
	}
	return def
}

// GetInt reads an integral parameter. JSON numbers decode as float64, so
// whole floats are accepted and fractional ones rejected.
func GetInt(params map[string]any, key string, def int) (int, error) {
	v, ok := lookup(params, key)
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if math.Trunc(n) != n || math.IsInf(n, 0) {
			return 0, fmt.Errorf("%s must be an integer", key)
		}
		return int(n), nil
	}
	return 0, fmt.Errorf("%s must be number", key)
}

// GetMap reads an object parameter; anything else yields nil.
func GetMap(params map[string]any, key string) map[string]any {
	m, _ := params[key].(map[string]any)
	return m
}
