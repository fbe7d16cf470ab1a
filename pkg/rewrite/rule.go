package rewrite

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// Rule is a single find-and-replace step. Apply returns the rewritten text
// and the number of occurrences it rewrote; a rule that does not match must
// return the text unchanged and zero.
type Rule interface {
	Name() string
	Apply(ctx *Context, text string) (string, int)
}

type literalRule struct {
	name string
	old  string
	new  string
}

// Literal replaces every occurrence of old with new.
func Literal(name, old, new string) Rule {
	return &literalRule{name: name, old: old, new: new}
}

func (r *literalRule) Name() string {
	return r.name
}

func (r *literalRule) Apply(_ *Context, text string) (string, int) {
	if r.old == "" || r.old == r.new {
		return text, 0
	}
	n := strings.Count(text, r.old)
	if n == 0 {
		return text, 0
	}
	return strings.ReplaceAll(text, r.old, r.new), n
}

type regexpRule struct {
	name string
	re   *regexp.Regexp
	repl string
}

// Regexp replaces every match of pattern with repl, which may reference
// submatches using $1 or ${name} syntax.
func Regexp(name, pattern, repl string) (Rule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "compiling rule %s", name)
	}
	return &regexpRule{name: name, re: re, repl: repl}, nil
}

// MustRegexp is like Regexp but panics if pattern does not compile. It is
// meant for rules built from constant patterns.
func MustRegexp(name, pattern, repl string) Rule {
	r, err := Regexp(name, pattern, repl)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *regexpRule) Name() string {
	return r.name
}

func (r *regexpRule) Apply(_ *Context, text string) (string, int) {
	n := len(r.re.FindAllStringIndex(text, -1))
	if n == 0 {
		return text, 0
	}
	out := r.re.ReplaceAllString(text, r.repl)
	if out == text {
		return text, 0
	}
	return out, n
}

type funcRule struct {
	name string
	fn   func(ctx *Context, text string) (string, int)
}

// Func wraps an arbitrary rewrite function, for rules that need more than a
// single pattern (scanners, stateful line walks).
func Func(name string, fn func(ctx *Context, text string) (string, int)) Rule {
	return &funcRule{name: name, fn: fn}
}

func (r *funcRule) Name() string {
	return r.name
}

func (r *funcRule) Apply(ctx *Context, text string) (string, int) {
	return r.fn(ctx, text)
}

type guardedRule struct {
	Rule
	cond func(ctx *Context) bool
}

// When runs rule only if cond holds at the time the rule is reached.
func When(cond func(ctx *Context) bool, rule Rule) Rule {
	return &guardedRule{Rule: rule, cond: cond}
}

func (r *guardedRule) Apply(ctx *Context, text string) (string, int) {
	if !r.cond(ctx) {
		return text, 0
	}
	return r.Rule.Apply(ctx, text)
}

// HitsAtLeast returns a condition that holds once the named rule has
// rewritten at least n occurrences during the current run.
func HitsAtLeast(rule string, n int) func(ctx *Context) bool {
	return func(ctx *Context) bool {
		return ctx.Hits(rule) >= n
	}
}
