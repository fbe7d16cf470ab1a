package legacycall

import (
	"regexp"
	"strings"

	"github.com/enabletech/adaptermigrate/pkg/dartsrc"
	"github.com/enabletech/adaptermigrate/pkg/rewrite"
)

var duplicateTimeout = `\)\.timeout\(Duration\(seconds:\s*\d+\)\);\s*\)\.timeout\(Duration\(seconds:\s*\d+\)\);`

func adapterCallPattern(opts Options) *regexp.Regexp {
	return rx(`(?:\b([A-Za-z_]\w*)\s*=\s*)?await\s+%s\.(\w+)\(`, opts.Adapter)
}

// adapterCallsInText treats every adapter call already in the text as a
// migrated call, so cleanup can fix the response handling around it.
func adapterCallsInText(opts Options) func(ctx *rewrite.Context, text string) []Migrated {
	re := adapterCallPattern(opts)
	return func(_ *rewrite.Context, text string) []Migrated {
		var out []Migrated
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			if m[2] < 0 {
				continue
			}
			op, ok := OperationFor(text[m[4]:m[5]])
			if !ok {
				continue
			}
			out = append(out, Migrated{
				Target:    text[m[2]:m[3]],
				Operation: op,
				Line:      dartsrc.LineNumber(text, m[0]),
			})
		}
		return out
	}
}

// statusTailRule repairs `final rows = await Adapter.getData(...);200) {`,
// the remains of a status check whose head was consumed by an earlier
// rewrite, into a check on the returned rows.
func statusTailRule(opts Options) rewrite.Rule {
	re := rx(`(?s)((?:final|var)\s+([A-Za-z_]\w*)\s*=\s*await\s+%s\.getData\([^;]*\);)[ \t]*\d+\)\s*\{`, opts.Adapter)
	return rewrite.Func(RuleStatusTail, func(_ *rewrite.Context, text string) (string, int) {
		matches := re.FindAllStringSubmatchIndex(text, -1)
		if len(matches) == 0 {
			return text, 0
		}
		var b strings.Builder
		last := 0
		for _, m := range matches {
			start := dartsrc.LineStart(text, m[2])
			indent := dartsrc.Indent(text[start:dartsrc.LineEnd(text, start)])
			b.WriteString(text[last:m[3]])
			b.WriteString("\n" + indent + "if (" + text[m[4]:m[5]] + ".isNotEmpty) {")
			last = m[1]
		}
		b.WriteString(text[last:])
		return b.String(), len(matches)
	})
}

// staleFragmentsRule removes what earlier partial rewrites left behind
// directly after an adapter call: the tail of the replaced request
// (Uri.parse, headers, body, `).timeout(...)`) or a second, stale copy of the
// legacy call assigning the same variable. It walks the file line by line
// with a single "inside stale block" flag, skipping until the statement's
// closing semicolon.
func staleFragmentsRule(opts Options) rewrite.Rule {
	adapterCall := adapterCallPattern(opts)
	legacyAssign := rx(`\b([A-Za-z_]\w*)\s*=\s*await\s+%s`, opts.LegacyCall)

	isFragmentStart := func(lines []string, i int, lastTarget string) bool {
		trimmed := strings.TrimSpace(lines[i])
		switch {
		case strings.HasPrefix(trimmed, "Uri.parse("):
			return strings.Contains(trimmed, opts.Endpoint)
		case strings.HasPrefix(trimmed, "headers:"), strings.HasPrefix(trimmed, ").timeout("):
			return true
		case strings.HasPrefix(trimmed, "body:"):
			return strings.Contains(trimmed, "json.encode(") || strings.Contains(trimmed, "jsonEncode(")
		}
		m := legacyAssign.FindStringSubmatch(trimmed)
		if m == nil || lastTarget == "" || m[1] != lastTarget {
			return false
		}
		return strings.Contains(trimmed, opts.Endpoint) ||
			(i+1 < len(lines) && strings.Contains(lines[i+1], opts.Endpoint))
	}

	return rewrite.Func(RuleStaleFragments, func(ctx *rewrite.Context, text string) (string, int) {
		lines := strings.SplitAfter(text, "\n")
		var (
			out        strings.Builder
			removed    int
			inAdapter  bool
			after      bool
			lastTarget string
			depth      int

			inStale    bool
			staleStart int
			stale      []string
		)
		endsStatement := func(line string, depth int) bool {
			return depth <= 0 && dartsrc.FindCode(line, ";", 0) >= 0
		}
		abandon := func() {
			ctx.Flag(staleStart, "leftover legacy fragment does not end cleanly; kept")
			for _, l := range stale {
				out.WriteString(l)
			}
			inStale, stale = false, nil
			after = false
		}

		for i, line := range lines {
			if inStale {
				stale = append(stale, line)
				depth += dartsrc.Depth(line)
				switch {
				case endsStatement(line, depth):
					inStale, stale = false, nil
					removed++
				case depth < -1:
					abandon()
				}
				continue
			}
			if inAdapter {
				out.WriteString(line)
				depth += dartsrc.Depth(line)
				if endsStatement(line, depth) {
					inAdapter, after = false, true
				}
				continue
			}
			if after {
				if strings.TrimSpace(line) == "" {
					out.WriteString(line)
					continue
				}
				if isFragmentStart(lines, i, lastTarget) {
					depth = dartsrc.Depth(line)
					if endsStatement(line, depth) {
						removed++
						continue
					}
					inStale, staleStart, stale = true, i+1, []string{line}
					continue
				}
				after = false
			}
			if m := adapterCall.FindStringSubmatch(line); m != nil {
				lastTarget = m[1]
				depth = dartsrc.Depth(line)
				if endsStatement(line, depth) {
					after = true
				} else {
					inAdapter = true
				}
			}
			out.WriteString(line)
		}
		if inStale {
			abandon()
		}
		if removed == 0 {
			return text, 0
		}
		return out.String(), removed
	})
}
