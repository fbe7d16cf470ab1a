package legacycall

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/enabletech/adaptermigrate/pkg/rewrite"
)

var decodeBinding = regexp.MustCompile(`\b([A-Za-z_]\w*)\s*=\s*(?:json\.decode|jsonDecode)\(\s*([A-Za-z_]\w*)\.body\s*\)`)

type replacement struct {
	re   *regexp.Regexp
	repl string
}

func (r replacement) apply(text string) (string, int) {
	n := len(r.re.FindAllStringIndex(text, -1))
	if n == 0 {
		return text, 0
	}
	return r.re.ReplaceAllLiteralString(text, r.repl), n
}

func rx(format string, names ...string) *regexp.Regexp {
	args := make([]any, 0, len(names))
	for _, n := range names {
		args = append(args, regexp.QuoteMeta(n))
	}
	return regexp.MustCompile(fmt.Sprintf(format, args...))
}

// responseRule rewrites HTTP response handling of the variables returned by
// source into adapter result handling. Adapter writes return a map carrying
// 'success' and 'message'; reads return the rows directly and throw on
// failure. Names are matched file-wide, so a variable or decoded alias that
// the file binds to anything else is flagged and left alone.
func responseRule(name string, source func(ctx *rewrite.Context, text string) []Migrated, opts Options) rewrite.Rule {
	return rewrite.Func(name, func(ctx *rewrite.Context, text string) (string, int) {
		migrated := source(ctx, text)
		if len(migrated) == 0 {
			return text, 0
		}

		targets := make(map[string]*target)
		for _, m := range migrated {
			if m.Target == "" {
				continue
			}
			t, ok := targets[m.Target]
			if !ok {
				t = &target{line: m.Line, ops: make(map[bool]bool)}
				targets[m.Target] = t
			}
			t.ops[m.Operation == "get"] = true
			t.isGet = m.Operation == "get"
		}

		legacy := legacyTargets(text, opts)
		sources := decodeSources(text)
		decodes := decodeCounts(text)
		adapterBound := adapterBindings(text, opts)
		original := text

		names := make([]string, 0, len(targets))
		for n := range targets {
			names = append(names, n)
		}
		sort.Strings(names)

		total := 0
		for _, v := range names {
			t := targets[v]
			if legacy[v] {
				ctx.Flag(t.line, "%s is also bound to a legacy call; response handling left unchanged", v)
				continue
			}
			if bindings(original, v) > adapterBound[v] {
				ctx.Flag(t.line, "%s is also bound to other values; response handling left unchanged", v)
				continue
			}

			var aliases []string
			for alias, from := range sources {
				if !from[v] {
					continue
				}
				if legacy[alias] || !sameKind(from, targets, legacy) {
					ctx.Flag(t.line, "%s is decoded from unrelated responses; left unchanged", alias)
					continue
				}
				if bindings(original, alias) > decodes[alias] {
					ctx.Flag(t.line, "%s is also bound to other values; left unchanged", alias)
					continue
				}
				aliases = append(aliases, alias)
			}
			sort.Strings(aliases)

			reps := []replacement{
				{rx(`(?m)^[ \t]*(?:debugPrint|print)\([^;\n]*\b%s\.(?:statusCode|body)\b[^\n]*\);[ \t]*\n`, v), ""},
				{rx(`(?:json\.decode|jsonDecode)\(\s*%s\.body\s*\)`, v), v},
			}
			switch {
			case len(t.ops) > 1:
				ctx.Flag(t.line, "%s holds both read and write results; status checks left unchanged", v)
			case t.isGet:
				reps = append(reps,
					replacement{rx(`\b%s\.statusCode\s*==\s*200\b`, v), "true"},
					replacement{rx(`\b%s\.statusCode\s*!=\s*200\b`, v), "false"},
				)
				for _, a := range aliases {
					reps = append(reps,
						replacement{rx(`\b%s\['success'\]\s*==\s*true\s*&&\s*%s\['data'\]\.isNotEmpty\b`, a, a), a + ".isNotEmpty"},
						replacement{rx(`\b%s\['success'\]\s*==\s*true\b`, a), "true"},
						replacement{rx(`\b%s\['data'\]`, a), a},
					)
				}
			default:
				reps = append(reps,
					replacement{rx(`\b%s\.statusCode\s*==\s*200\b`, v), v + "['success'] == true"},
					replacement{rx(`\b%s\.statusCode\s*!=\s*200\b`, v), v + "['success'] != true"},
				)
				for _, n := range append([]string{v}, aliases...) {
					reps = append(reps, replacement{rx(`\b%s\['error'\]`, n), n + "['message']"})
				}
			}

			for _, r := range reps {
				var n int
				text, n = r.apply(text)
				total += n
			}
		}
		return text, total
	})
}

type target struct {
	line  int
	ops   map[bool]bool
	isGet bool
}

// sameKind reports whether every response in from was migrated and all of
// them are of the same kind (read or write).
func sameKind(from map[string]bool, targets map[string]*target, legacy map[string]bool) bool {
	kinds := make(map[bool]bool)
	for src := range from {
		t, ok := targets[src]
		if !ok || legacy[src] || len(t.ops) > 1 {
			return false
		}
		kinds[t.isGet] = true
	}
	return len(kinds) == 1
}

// legacyTargets returns variables still assigned from the legacy client.
func legacyTargets(text string, opts Options) map[string]bool {
	re := rx(`\b([A-Za-z_]\w*)\s*=\s*await\s+%s\.\w+\(`, opts.client())
	out := make(map[string]bool)
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		out[m[1]] = true
	}
	return out
}

// decodeSources maps each variable bound to a decoded response body to the
// response variables it is decoded from.
func decodeSources(text string) map[string]map[string]bool {
	out := make(map[string]map[string]bool)
	for _, m := range decodeBinding.FindAllStringSubmatch(text, -1) {
		if out[m[1]] == nil {
			out[m[1]] = make(map[string]bool)
		}
		out[m[1]][m[2]] = true
	}
	return out
}

// decodeCounts returns how often each variable is bound to a decoded body.
func decodeCounts(text string) map[string]int {
	out := make(map[string]int)
	for _, m := range decodeBinding.FindAllStringSubmatch(text, -1) {
		out[m[1]]++
	}
	return out
}

// adapterBindings returns how often each variable is bound to an adapter
// call.
func adapterBindings(text string, opts Options) map[string]int {
	re := rx(`\b([A-Za-z_]\w*)\s*=\s*await\s+%s\.\w+\(`, opts.Adapter)
	out := make(map[string]int)
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		out[m[1]]++
	}
	return out
}

// bindings counts the assignments and initialised declarations of name.
// Property assignments and comparisons are not bindings.
func bindings(text, name string) int {
	return len(rx(`(?:^|[^\w$.])%s\s*=[^=>]`, name).FindAllStringIndex(text, -1))
}
