package sqf

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValues(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want any
	}{
		{"empty array", "[]", []any{}},
		{"numbers", "[1,2,3]", []any{1.0, 2.0, 3.0}},
		{"whitespace", " [ 10 , 20 ,30 ] ", []any{10.0, 20.0, 30.0}},
		{"negative and float", "[-1.5,2e3,+4]", []any{-1.5, 2000.0, 4.0}},
		{"hex", "[0x1F,$ff]", []any{31.0, 255.0}},
		{"dollar hex", "$1F", 31.0},
		{"negative dollar hex", "[-$10]", []any{-16.0}},
		{"double quoted", `"hello"`, "hello"},
		{"escaped double quote", `"say ""hi"""`, `say "hi"`},
		{"single quoted", `'it''s'`, "it's"},
		{"booleans", "[true,FALSE]", []any{true, false}},
		{"nil", "[nil,any]", []any{nil, nil}},
		{"nested", `[["a",1],[["b"]]]`, []any{[]any{"a", 1.0}, []any{[]any{"b"}}}},
		{"comma inside string", `["a,b"]`, []any{"a,b"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		name string
		in   string
	}{
		{"empty input", ""},
		{"unterminated array", "[1,2"},
		{"unterminated string", `["abc`},
		{"missing comma", "[1 2]"},
		{"trailing input", "[1] [2]"},
		{"unknown identifier", "[player]"},
		{"code", `[call {hint "x"}]`},
		{"bad number", "[1.2.3]"},
		{"dollar without digits", "[$]"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.in)
			require.Error(t, err)

			var syntaxErr *SyntaxError
			assert.True(t, errors.As(err, &syntaxErr))
		})
	}
}

func TestParseDepthLimit(t *testing.T) {
	deep := strings.Repeat("[", maxDepth+1) + strings.Repeat("]", maxDepth+1)
	_, err := Parse(deep)
	require.Error(t, err)

	ok := strings.Repeat("[", maxDepth) + strings.Repeat("]", maxDepth)
	_, err = Parse(ok)
	require.NoError(t, err)
}

func TestParseArray(t *testing.T) {
	arr, err := ParseArray("[1]")
	require.NoError(t, err)
	assert.Equal(t, []any{1.0}, arr)

	_, err = ParseArray(`"x"`)
	require.Error(t, err)
}

func TestFormat(t *testing.T) {
	testCases := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "nil"},
		{"ints", []any{1, int64(2), uint8(3)}, "[1,2,3]"},
		{"floats", []any{1.5, 2.0}, "[1.5,2]"},
		{"string with quotes", `a "b"`, `"a ""b"""`},
		{"string slice", []string{"x", "y"}, `["x","y"]`},
		{"nested", []any{true, []any{"s", nil}}, `[true,["s",nil]]`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Format(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := Format(map[string]int{})
	assert.Error(t, err)
}

func TestFormatParseAgree(t *testing.T) {
	in := []any{"player_42", 10.0, []any{true, "x,y", nil}, []any{}}
	s, err := Format(in)
	require.NoError(t, err)

	out, err := Parse(s)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSerializeList(t *testing.T) {
	assert.Equal(t, "[]", SerializeList(nil))
	assert.Equal(t, `["a",1]`, SerializeList([]string{`"a"`, "1"}))
}
