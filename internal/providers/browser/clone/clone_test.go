package clone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeNil(t *testing.T) {
	b, err := Serialize(nil)
	require.NoError(t, err)
	assert.Nil(t, b)

	v, err := b.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestValueIsFreshCopy(t *testing.T) {
	state := map[string]any{"hi": "there", "n": []any{1.0, 2.0}}
	b, err := Serialize(state)
	require.NoError(t, err)

	first, err := b.Value()
	require.NoError(t, err)
	second, err := b.Value()
	require.NoError(t, err)

	assert.Equal(t, state, first)
	assert.Equal(t, first, second)

	first.(map[string]any)["hi"] = "mutated"
	assert.Equal(t, "there", second.(map[string]any)["hi"])
	assert.Equal(t, "there", state["hi"])
}

func TestRejectsFunctions(t *testing.T) {
	_, err := Serialize(map[string]any{"fn": func() {}})
	assert.ErrorIs(t, err, ErrDataClone)

	_, err = Serialize(make(chan int))
	assert.ErrorIs(t, err, ErrDataClone)
}

func TestRejectsCycles(t *testing.T) {
	m := map[string]any{}
	m["self"] = m
	_, err := Serialize(m)
	assert.ErrorIs(t, err, ErrDataClone)
}

func TestSharedReferencesAreAllowed(t *testing.T) {
	shared := []any{"x"}
	v, err := Clone(map[string]any{"a": shared, "b": shared})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": []any{"x"}, "b": []any{"x"}}, v)
}
