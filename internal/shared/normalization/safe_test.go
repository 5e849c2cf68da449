package normalization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsArray_NonArrayInputsYieldFallback(t *testing.T) {
	t.Parallel()

	inputs := []any{"string", 42.0, map[string]any{}, nil, true}
	for _, input := range inputs {
		got := AsArray(input, nil)
		require.NotNil(t, got, "input %#v", input)
		assert.Empty(t, got, "input %#v", input)
	}

	fallback := []any{"x"}
	assert.Equal(t, fallback, AsArray(12.5, fallback))
}

func TestAsArray_ReturnsArrayUnchanged(t *testing.T) {
	t.Parallel()

	input := []any{"a", 1.0, nil}
	assert.Equal(t, input, AsArray(input, []any{"unused"}))
}

func TestAsBoolAndAsString_RequireExactTypes(t *testing.T) {
	t.Parallel()

	assert.True(t, AsBool(true, false))
	assert.False(t, AsBool(false, true))
	assert.True(t, AsBool("true", true))
	assert.False(t, AsBool(1.0, false))

	assert.Equal(t, "hi", AsString("hi", "x"))
	assert.Equal(t, "", AsString("", "x"))
	assert.Equal(t, "x", AsString(5.0, "x"))
	assert.Equal(t, "x", AsString(nil, "x"))
}

func TestPick_ResolvesAliasesInOrder(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 5.0, Pick(map[string]any{"sent_count": 5.0}, []string{"sentCount", "sent_count"}, 0))
	assert.Equal(t, 0, Pick(map[string]any{}, []string{"sentCount", "sent_count"}, 0))
	assert.Equal(t, 1.0, Pick(map[string]any{"sentCount": 1.0, "sent_count": 2.0}, []string{"sentCount", "sent_count"}, 0))
	assert.Equal(t, 2.0, Pick(map[string]any{"sentCount": nil, "sent_count": 2.0}, []string{"sentCount", "sent_count"}, 0))
	assert.Equal(t, "fb", Pick(nil, []string{"a"}, "fb"))
	assert.Equal(t, "fb", Pick([]any{1.0}, []string{"0"}, "fb"))
	assert.Equal(t, "fb", Pick("text", []string{"a"}, "fb"))
}

func TestPickTypedHelpers(t *testing.T) {
	t.Parallel()

	obj := map[string]any{
		"count":   "12",
		"rate":    0.25,
		"name":    7.0,
		"flag":    true,
		"nested":  map[string]any{"k": "v"},
		"tags":    []any{"a", 3.0, "b"},
		"missing": nil,
	}

	assert.Equal(t, 12, PickInt(obj, []string{"count"}, 0))
	assert.Equal(t, 0.25, PickFloat(obj, []string{"rate"}, 0))
	assert.Equal(t, "anon", PickString(obj, []string{"name"}, "anon"))
	assert.True(t, PickBool(obj, []string{"flag"}, false))
	assert.Equal(t, map[string]any{"k": "v"}, PickMap(obj, "nested"))
	assert.Equal(t, map[string]any{}, PickMap(obj, "missing"))
	assert.Equal(t, []string{"a", "b"}, PickStringSlice(obj, "tags"))
	assert.Equal(t, []string{}, PickStringSlice(obj, "missing"))

	assert.Nil(t, PickOptionalString(obj, "missing"))
	assert.Nil(t, PickOptionalString(obj, "name"))
	require.NotNil(t, PickOptionalInt(obj, "count"))
	assert.Equal(t, 12, *PickOptionalInt(obj, "count"))
	assert.Nil(t, PickOptionalInt(obj, "flag"))
	require.NotNil(t, PickOptionalBool(obj, "flag"))
	assert.True(t, *PickOptionalBool(obj, "flag"))
}

func TestMapFromPayload_UnwrapsDataEnvelope(t *testing.T) {
	t.Parallel()

	inner := map[string]any{"id": "1"}
	assert.Equal(t, inner, MapFromPayload(map[string]any{"data": inner}))
	assert.Equal(t, map[string]any{"id": "2"}, MapFromPayload(map[string]any{"id": "2"}))
	assert.Nil(t, MapFromPayload([]any{}))
	assert.Nil(t, MapFromPayload(nil))
}

func TestAsIntAndAsFloat64(t *testing.T) {
	cases := []struct {
		name  string
		input any
		i     int
		f     float64
	}{
		{name: "float", input: 3.9, i: 3, f: 3.9},
		{name: "int", input: 4, i: 4, f: 4},
		{name: "numeric string", input: " 7.5 ", i: 7, f: 7.5},
		{name: "garbage string", input: "abc", i: -1, f: -1},
		{name: "bool", input: true, i: -1, f: -1},
		{name: "nil", input: nil, i: -1, f: -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.i, AsInt(tc.input, -1))
			assert.Equal(t, tc.f, AsFloat64(tc.input, -1))
		})
	}
}
