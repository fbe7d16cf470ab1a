package rewrite

import "strings"

// RewriteStrings recursively traverses decoded configuration data and
// replaces every occurrence of old inside string values with new.
// Returns true if any replacements were made.
func RewriteStrings(data any, old, new string) bool {
	if old == "" {
		return false
	}
	modified := false

	switch v := data.(type) {
	case string:
		// Can't modify strings in place, caller must handle
		return false

	case map[string]any:
		for key, value := range v {
			if str, ok := value.(string); ok && strings.Contains(str, old) {
				v[key] = strings.ReplaceAll(str, old, new)
				modified = true
			} else if RewriteStrings(value, old, new) {
				modified = true
			}
		}

	case []any:
		for i, value := range v {
			if str, ok := value.(string); ok && strings.Contains(str, old) {
				v[i] = strings.ReplaceAll(str, old, new)
				modified = true
			} else if RewriteStrings(value, old, new) {
				modified = true
			}
		}
	}

	return modified
}
