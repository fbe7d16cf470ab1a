// Package dartsrc holds the small amount of Dart-aware text scanning the
// migration rules need: bracket matching, top-level splitting and map
// literal decoding. It deliberately stops short of parsing the language.
package dartsrc

import "strings"

// scanCode calls fn for every byte of text from position from onwards that is
// code, i.e. not part of a string literal or a comment. Iteration stops when
// fn returns false; the returned index is the position fn stopped at, or
// len(text) if the input was exhausted.
func scanCode(text string, from int, fn func(i int, c byte) bool) int {
	i := from
	for i < len(text) {
		c := text[i]
		switch {
		case c == '/' && i+1 < len(text) && text[i+1] == '/':
			nl := strings.IndexByte(text[i:], '\n')
			if nl < 0 {
				return len(text)
			}
			i += nl
			continue
		case c == '/' && i+1 < len(text) && text[i+1] == '*':
			end := strings.Index(text[i+2:], "*/")
			if end < 0 {
				return len(text)
			}
			i += end + 4
			continue
		case c == '\'' || c == '"':
			i = skipString(text, i)
			continue
		}
		if !fn(i, c) {
			return i
		}
		i++
	}
	return len(text)
}

// skipString returns the index just past the string literal starting at i.
// Unterminated literals run to the end of the text.
func skipString(text string, i int) int {
	q := text[i]
	raw := i > 0 && text[i-1] == 'r'
	if strings.HasPrefix(text[i:], strings.Repeat(string(q), 3)) {
		delim := text[i : i+3]
		end := strings.Index(text[i+3:], delim)
		if end < 0 {
			return len(text)
		}
		return i + 3 + end + 3
	}
	for j := i + 1; j < len(text); j++ {
		switch text[j] {
		case '\\':
			if !raw {
				j++
			}
		case '$':
			if !raw && j+1 < len(text) && text[j+1] == '{' {
				j = skipInterpolation(text, j+1) - 1
			}
		case q:
			return j + 1
		case '\n':
			// Single-quoted literals cannot span lines; treat as terminated.
			return j
		}
	}
	return len(text)
}

// skipInterpolation returns the index just past the brace closing the
// ${...} interpolation opened at text[open].
func skipInterpolation(text string, open int) int {
	depth := 0
	for j := open; j < len(text); {
		switch c := text[j]; {
		case c == '\'' || c == '"':
			j = skipString(text, j)
			continue
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return j + 1
			}
		case c == '\n':
			return j
		}
		j++
	}
	return len(text)
}

func isOpen(c byte) bool {
	return c == '(' || c == '[' || c == '{'
}

func isClose(c byte) bool {
	return c == ')' || c == ']' || c == '}'
}

// MatchingClose returns the index of the bracket closing the one at
// text[open], or -1 if text[open] is not an opening bracket or the brackets
// never balance.
func MatchingClose(text string, open int) int {
	if open < 0 || open >= len(text) || !isOpen(text[open]) {
		return -1
	}
	depth := 0
	found := -1
	scanCode(text, open, func(i int, c byte) bool {
		switch {
		case isOpen(c):
			depth++
		case isClose(c):
			depth--
			if depth == 0 {
				found = i
				return false
			}
		}
		return true
	})
	return found
}

// FindCode returns the index of the first occurrence of sub at or after from
// that is not inside a string literal or comment, or -1.
func FindCode(text, sub string, from int) int {
	if sub == "" {
		return -1
	}
	found := -1
	scanCode(text, from, func(i int, c byte) bool {
		if c == sub[0] && strings.HasPrefix(text[i:], sub) {
			found = i
			return false
		}
		return true
	})
	return found
}

// SplitTopLevel splits text on sep wherever sep occurs outside brackets,
// strings and comments.
func SplitTopLevel(text string, sep byte) []string {
	var parts []string
	depth, last := 0, 0
	scanCode(text, 0, func(i int, c byte) bool {
		switch {
		case isOpen(c):
			depth++
		case isClose(c):
			depth--
		case c == sep && depth == 0:
			parts = append(parts, text[last:i])
			last = i + 1
		}
		return true
	})
	return append(parts, text[last:])
}

// Depth returns the net number of unclosed brackets in line.
func Depth(line string) int {
	depth := 0
	scanCode(line, 0, func(_ int, c byte) bool {
		switch {
		case isOpen(c):
			depth++
		case isClose(c):
			depth--
		}
		return true
	})
	return depth
}

// LineStart returns the offset of the first byte of the line containing i.
func LineStart(text string, i int) int {
	return strings.LastIndexByte(text[:i], '\n') + 1
}

// LineEnd returns the offset of the newline ending the line containing i, or
// len(text) for the last line.
func LineEnd(text string, i int) int {
	if nl := strings.IndexByte(text[i:], '\n'); nl >= 0 {
		return i + nl
	}
	return len(text)
}

// LineNumber returns the 1-based line number of offset i.
func LineNumber(text string, i int) int {
	return strings.Count(text[:i], "\n") + 1
}

// Indent returns the leading whitespace of line.
func Indent(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}
