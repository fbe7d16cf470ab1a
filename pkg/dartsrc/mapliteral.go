package dartsrc

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrNotMapLiteral is returned when the input is not a single balanced {...} literal.
	ErrNotMapLiteral = errors.New("not a map literal")
	// ErrUnsupportedEntry is returned for entries that are not 'key': value pairs,
	// such as spreads or collection-if elements.
	ErrUnsupportedEntry = errors.New("unsupported map literal entry")
)

// Entry is one key/value pair of a map literal. Value is the verbatim,
// trimmed source text of the value expression.
type Entry struct {
	Key   string
	Value string
}

// Entries preserves the source order of a map literal.
type Entries []Entry

// Get returns the value stored under key.
func (e Entries) Get(key string) (string, bool) {
	for _, entry := range e {
		if entry.Key == key {
			return entry.Value, true
		}
	}
	return "", false
}

// Keys returns the keys in source order.
func (e Entries) Keys() []string {
	keys := make([]string, 0, len(e))
	for _, entry := range e {
		keys = append(keys, entry.Key)
	}
	return keys
}

// ParseMapLiteral decodes a map literal whose keys are string literals, e.g.
// {'operation': 'get', 'where': [...]}. Values are not interpreted.
func ParseMapLiteral(text string) (Entries, error) {
	text = strings.TrimSpace(text)
	if text == "" || text[0] != '{' {
		return nil, ErrNotMapLiteral
	}
	if MatchingClose(text, 0) != len(text)-1 {
		return nil, ErrNotMapLiteral
	}

	var entries Entries
	for _, part := range SplitTopLevel(text[1:len(text)-1], ',') {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := SplitTopLevel(part, ':')
		if len(kv) < 2 {
			return nil, errors.Wrapf(ErrUnsupportedEntry, "%q", part)
		}
		key, ok := Unquote(strings.TrimSpace(kv[0]))
		if !ok {
			return nil, errors.Wrapf(ErrUnsupportedEntry, "non-literal key %q", strings.TrimSpace(kv[0]))
		}
		// Only the first top-level colon separates key and value; the rest
		// belong to the value (e.g. conditional expressions).
		value := strings.TrimSpace(part[len(kv[0])+1:])
		if value == "" {
			return nil, errors.Wrapf(ErrUnsupportedEntry, "empty value for %q", key)
		}
		entries = append(entries, Entry{Key: key, Value: value})
	}
	return entries, nil
}

// Unquote returns the content of a simple single- or double-quoted literal
// without interpolation.
func Unquote(lit string) (string, bool) {
	if len(lit) < 2 {
		return "", false
	}
	q := lit[0]
	if (q != '\'' && q != '"') || lit[len(lit)-1] != q {
		return "", false
	}
	inner := lit[1 : len(lit)-1]
	if strings.ContainsAny(inner, "$\\") || strings.IndexByte(inner, q) >= 0 {
		return "", false
	}
	return inner, true
}
