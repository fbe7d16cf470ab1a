package rewrite

import "fmt"

// Flag marks a location a rule recognised but deliberately left alone.
type Flag struct {
	Rule   string
	Line   int
	Reason string
}

func (f Flag) String() string {
	return fmt.Sprintf("line %d: %s (%s)", f.Line, f.Reason, f.Rule)
}

// Context carries state between the rules of a single pipeline run.
type Context struct {
	path    string
	current string
	hits    map[string]int
	values  map[string]any
	flags   []Flag
}

// NewContext returns a fresh context for rewriting the file at path.
func NewContext(path string) *Context {
	return &Context{
		path:   path,
		hits:   make(map[string]int),
		values: make(map[string]any),
	}
}

// Path is the file being rewritten, possibly empty for in-memory text.
func (c *Context) Path() string {
	return c.path
}

// Hits returns how many occurrences the named rule rewrote so far.
func (c *Context) Hits(rule string) int {
	return c.hits[rule]
}

// Set stores a value for later rules.
func (c *Context) Set(key string, value any) {
	c.values[key] = value
}

// Get returns a value stored by an earlier rule.
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Flag records a location the current rule could not or would not rewrite.
func (c *Context) Flag(line int, format string, args ...any) {
	c.flags = append(c.flags, Flag{
		Rule:   c.current,
		Line:   line,
		Reason: fmt.Sprintf(format, args...),
	})
}

// Flags returns everything flagged so far.
func (c *Context) Flags() []Flag {
	return c.flags
}
