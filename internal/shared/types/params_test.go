package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetString(t *testing.T) {
	params := map[string]any{"url": "https://a.test", "empty": "", "n": 1.0}

	v, err := GetString(params, "url", true)
	require.NoError(t, err)
	assert.Equal(t, "https://a.test", v)

	_, err = GetString(params, "missing", true)
	assert.EqualError(t, err, "missing parameter required")

	_, err = GetString(params, "empty", true)
	assert.Error(t, err)

	_, err = GetString(params, "n", false)
	assert.EqualError(t, err, "n must be string")

	v, err = GetString(params, "missing", false)
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestGetInt(t *testing.T) {
	params := map[string]any{"delta": -2.0, "frac": 1.5, "s": "x"}

	v, err := GetInt(params, "delta", 0)
	require.NoError(t, err)
	assert.Equal(t, -2, v)

	v, err = GetInt(params, "missing", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = GetInt(params, "frac", 0)
	assert.Error(t, err)
	_, err = GetInt(params, "s", 0)
	assert.Error(t, err)
}

func TestResults(t *testing.T) {
	res, err := Success(map[string]any{"ok": true})
	require.NoError(t, err)
	assert.True(t, res.Success)

	res, err = Failuref("bad %s", "thing")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "bad thing", *res.Error)

	var c *Context
	assert.Equal(t, "", c.Window())
	w := "win-1"
	assert.Equal(t, "win-1", (&Context{WindowID: &w}).Window())
}

func TestToolIDs(t *testing.T) {
	svc := Service{Tools: []Tool{{ID: "url.parse"}, {ID: "url.resolve"}}}
	assert.Equal(t, []string{"url.parse", "url.resolve"}, svc.ToolIDs())
	assert.Empty(t, Service{}.ToolIDs())
}
