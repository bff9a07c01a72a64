package textclean

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitiseText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"clean", "text", "text"},
		{"nul removed not replaced", "Hello\x00World", "HelloWorld"},
		{"multiple nul", "\x00a\x00\x00b\x00", "ab"},
		{"invalid utf8 dropped", "ok\xffok", "okok"},
		{"whitespace untouched", "a  b", "a  b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitiseText(tt.in))
		})
	}
}

func TestSanitiseMetadata_Nil(t *testing.T) {
	out := SanitiseMetadata(nil)
	require.NotNil(t, out)
	assert.Empty(t, out)
}

func TestSanitiseMetadata_Nested(t *testing.T) {
	in := map[string]any{
		"title\x00": "Re\x00port",
		"count":     3,
		"ratio":     0.5,
		"ok":        true,
		"missing":   nil,
		"tags":      []any{"a\x00", 1, nil, []any{"deep\x00"}},
		"names":     []string{"x\x00"},
		"attrs":     map[string]string{"k\x00": "v\x00"},
		"rows":      []map[string]any{{"cell": "c\x00"}},
		"nested": map[string]any{
			"level2": map[string]any{
				"level3": []any{map[string]any{"leaf": "\x00leaf"}},
			},
		},
	}

	out := SanitiseMetadata(in)

	assert.Equal(t, "Report", out["title"])
	assert.Equal(t, 3, out["count"])
	assert.Equal(t, 0.5, out["ratio"])
	assert.Equal(t, true, out["ok"])
	assert.Contains(t, out, "missing")
	assert.Nil(t, out["missing"])
	assert.Equal(t, []any{"a", 1, nil, []any{"deep"}}, out["tags"])
	assert.Equal(t, []string{"x"}, out["names"])
	assert.Equal(t, map[string]string{"k": "v"}, out["attrs"])
	assert.Equal(t, []any{map[string]any{"cell": "c"}}, out["rows"])

	leaf := out["nested"].(map[string]any)["level2"].(map[string]any)["level3"].([]any)[0].(map[string]any)["leaf"]
	assert.Equal(t, "leaf", leaf)

	assertNoNUL(t, out)
}

func TestSanitiseMetadata_DoesNotAliasInput(t *testing.T) {
	in := map[string]any{"tags": []any{"a"}}
	out := SanitiseMetadata(in)
	out["tags"].([]any)[0] = "b"
	assert.Equal(t, "a", in["tags"].([]any)[0])
}

func TestSanitiseValue_Scalars(t *testing.T) {
	type custom struct{ Name string }

	assert.Nil(t, SanitiseValue(nil))
	assert.Equal(t, 42, SanitiseValue(42))
	assert.Equal(t, int64(7), SanitiseValue(int64(7)))
	assert.Equal(t, false, SanitiseValue(false))
	assert.Equal(t, custom{Name: "x\x00"}, SanitiseValue(custom{Name: "x\x00"}))
	assert.Equal(t, "s", SanitiseValue("s\x00"))
}

func TestSanitiseValue_OtherContainerTypes(t *testing.T) {
	type label string

	tests := []struct {
		name     string
		in       any
		expected any
	}{
		{
			name:     "map of string slices",
			in:       map[string][]string{"x\x00": {"a\x00b"}},
			expected: map[string][]string{"x": {"ab"}},
		},
		{
			name:     "slice of string maps",
			in:       []map[string]string{{"k": "v\x00"}},
			expected: []map[string]string{{"k": "v"}},
		},
		{
			name:     "nested string slices",
			in:       [][]string{{"p\x00"}, nil},
			expected: [][]string{{"p"}, nil},
		},
		{
			name:     "map of any slices",
			in:       map[string][]any{"k": {"v\x00", 1}},
			expected: map[string][]any{"k": {"v", 1}},
		},
		{
			name:     "array of strings",
			in:       [2]string{"a\x00", "b"},
			expected: [2]string{"a", "b"},
		},
		{
			name:     "named string type",
			in:       label("l\x00"),
			expected: label("l"),
		},
		{
			name:     "int slice untouched",
			in:       []int{1, 2},
			expected: []int{1, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out any
			require.NotPanics(t, func() { out = SanitiseValue(tt.in) })
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestSanitiseMetadata_OtherContainersDoNotAliasInput(t *testing.T) {
	in := map[string]any{"h": map[string][]string{"x": {"a"}}}

	out := SanitiseMetadata(in)
	out["h"].(map[string][]string)["x"][0] = "b"

	assert.Equal(t, "a", in["h"].(map[string][]string)["x"][0])
}

func TestSanitiseValue_DeepNestingTotal(t *testing.T) {
	var v any = "bottom\x00"
	for i := 0; i < 200; i++ {
		if i%2 == 0 {
			v = []any{v, "x\x00"}
		} else {
			v = map[string]any{"k\x00": v}
		}
	}

	var out any
	assert.NotPanics(t, func() { out = SanitiseValue(v) })
	assertNoNUL(t, out)
}

func assertNoNUL(t *testing.T, v any) {
	t.Helper()
	switch val := v.(type) {
	case string:
		assert.False(t, strings.Contains(val, "\x00"), "NUL in %q", val)
	case map[string]any:
		for k, item := range val {
			assert.False(t, strings.Contains(k, "\x00"), "NUL in key %q", k)
			assertNoNUL(t, item)
		}
	case []any:
		for _, item := range val {
			assertNoNUL(t, item)
		}
	case []string:
		for _, item := range val {
			assertNoNUL(t, item)
		}
	case map[string]string:
		for k, item := range val {
			assertNoNUL(t, k)
			assertNoNUL(t, item)
		}
	}
}
