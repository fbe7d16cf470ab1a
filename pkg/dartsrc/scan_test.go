package dartsrc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchingClose(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		open     int
		expected int
	}{
		{
			name:     "simple parens",
			text:     "f(a, b)",
			open:     1,
			expected: 6,
		},
		{
			name:     "nested mixed brackets",
			text:     "({'a': [1, 2]})",
			open:     0,
			expected: 14,
		},
		{
			name:     "brackets inside strings are ignored",
			text:     "('(' + \")\")",
			open:     0,
			expected: 10,
		},
		{
			name:     "brackets inside comments are ignored",
			text:     "(a // )\n)",
			open:     0,
			expected: 8,
		},
		{
			name:     "escaped quote does not end string",
			text:     `('it\'s )')`,
			open:     0,
			expected: 10,
		},
		{
			name:     "interpolation with nested quotes stays in the string",
			text:     `('${m['k']})')`,
			open:     0,
			expected: 13,
		},
		{
			name:     "unbalanced",
			text:     "(a, (b)",
			open:     0,
			expected: -1,
		},
		{
			name:     "not an opener",
			text:     "abc",
			open:     1,
			expected: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MatchingClose(tt.text, tt.open))
		})
	}
}

func TestFindCode(t *testing.T) {
	text := "// await http.post(\nprint('http.post(');\nawait http.post(x);"
	idx := FindCode(text, "http.post(", 0)
	require.NotEqual(t, -1, idx)
	assert.Equal(t, 3, LineNumber(text, idx))

	assert.Equal(t, -1, FindCode(text, "http.post(", idx+1))
	assert.Equal(t, -1, FindCode(text, "", 0))
}

func TestSplitTopLevel(t *testing.T) {
	parts := SplitTopLevel("a, f(b, c), [d, e], 'f, g'", ',')
	assert.Equal(t, []string{"a", " f(b, c)", " [d, e]", " 'f, g'"}, parts)
}

func TestDepth(t *testing.T) {
	assert.Equal(t, 1, Depth("final r = await http.post("))
	assert.Equal(t, -2, Depth("});"))
	assert.Equal(t, 0, Depth("print('(((');"))
	assert.Equal(t, 0, Depth("print('Error: ${result['error']} (');"))
}

func TestLineHelpers(t *testing.T) {
	text := "one\n    two\nthree"
	i := 8
	assert.Equal(t, 4, LineStart(text, i))
	assert.Equal(t, 11, LineEnd(text, i))
	assert.Equal(t, 2, LineNumber(text, i))
	assert.Equal(t, "    ", Indent(text[LineStart(text, i):LineEnd(text, i)]))
	assert.Equal(t, len(text), LineEnd(text, 13))
}
