package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRewriteStrings(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		old      string
		new      string
		expected any
		modified bool
	}{
		{
			name:     "bare string cannot be modified",
			input:    "${adapter}.getData",
			old:      "${adapter}",
			new:      "SupabaseAdapter",
			expected: "${adapter}.getData",
			modified: false,
		},
		{
			name:     "empty placeholder is ignored",
			input:    map[string]any{"replace": "x"},
			old:      "",
			new:      "y",
			expected: map[string]any{"replace": "x"},
			modified: false,
		},
		{
			name: "replace inside map values",
			input: map[string]any{
				"replace": "await ${adapter}.deleteData(",
				"name":    "unchanged",
			},
			old: "${adapter}",
			new: "SupabaseAdapter",
			expected: map[string]any{
				"replace": "await SupabaseAdapter.deleteData(",
				"name":    "unchanged",
			},
			modified: true,
		},
		{
			name: "replace every occurrence in slice elements",
			input: []any{
				"${adapter}.addData(${adapter}.table)",
				"other-value",
			},
			old: "${adapter}",
			new: "Db",
			expected: []any{
				"Db.addData(Db.table)",
				"other-value",
			},
			modified: true,
		},
		{
			name: "replace in nested rule lists",
			input: map[string]any{
				"extra_rules": []any{
					map[string]any{
						"name":    "legacy-helper",
						"pattern": `LegacyApi\.call\(`,
						"replace": "${adapter}.call(",
					},
				},
			},
			old: "${adapter}",
			new: "SupabaseAdapter",
			expected: map[string]any{
				"extra_rules": []any{
					map[string]any{
						"name":    "legacy-helper",
						"pattern": `LegacyApi\.call\(`,
						"replace": "SupabaseAdapter.call(",
					},
				},
			},
			modified: true,
		},
		{
			name: "nested structures traversed but no match",
			input: map[string]any{
				"outer": map[string]any{
					"inner": []any{
						"some-other-value",
						"another-value",
					},
					"field": "unchanged",
				},
				"top": "also-unchanged",
			},
			old: "${adapter}",
			new: "SupabaseAdapter",
			expected: map[string]any{
				"outer": map[string]any{
					"inner": []any{
						"some-other-value",
						"another-value",
					},
					"field": "unchanged",
				},
				"top": "also-unchanged",
			},
			modified: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			modified := RewriteStrings(tt.input, tt.old, tt.new)
			assert.Equal(t, tt.modified, modified)
			assert.Equal(t, tt.expected, tt.input)
		})
	}
}
