package legacycall

import (
	"regexp"
	"strings"

	"github.com/enabletech/adaptermigrate/pkg/dartsrc"
)

// Form is the statement shape a legacy call appears in.
type Form int

const (
	// FormExpression is a bare `await http.post(...);` statement.
	FormExpression Form = iota
	// FormDeclaration declares the result: `final r = await ...`.
	FormDeclaration
	// FormAssignment assigns to an existing variable: `r = await ...`.
	FormAssignment
	// FormReturn returns the result: `return await ...`.
	FormReturn
)

// Call is one legacy API call statement found in a file.
type Call struct {
	// Start is the offset of the first byte of the statement's line and End
	// the offset just past its terminating semicolon.
	Start, End int
	Line       int
	Indent     string
	Form       Form
	// Keyword is "final" or "var" for declarations.
	Keyword   string
	Target    string
	Operation string
	Body      dartsrc.Entries
}

// Skipped is a legacy call that was recognised but not understood.
type Skipped struct {
	Line   int
	Reason string
}

var (
	awaitTail  = regexp.MustCompile(`^(.*?)\bawait\s+$`)
	identifier = regexp.MustCompile(`^[A-Za-z_$][\w$]*$`)
	typeName   = regexp.MustCompile(`^([A-Za-z_$][\w$]*)(?:\.[A-Za-z_$][\w$]*)?(?:<[\w$<>,\s?.]*>)?\??$`)

	declModifiers = map[string]bool{"final": true, "var": true, "late": true}

	// Words that can precede a variable name on a line without declaring it.
	reservedWords = map[string]bool{
		"if": true, "else": true, "for": true, "while": true, "do": true,
		"switch": true, "case": true, "default": true, "try": true,
		"catch": true, "finally": true, "return": true, "throw": true,
		"new": true, "const": true, "await": true, "async": true,
		"yield": true, "in": true, "is": true, "as": true, "assert": true,
		"break": true, "continue": true, "this": true, "super": true,
		"null": true, "true": true, "false": true,
	}

	// Chained calls that may follow the legacy call without changing what
	// the statement means for the adapter.
	allowedChains = map[string]bool{"timeout": true}
)

// FindCalls returns every legacy call in text in source order, plus the
// legacy calls it had to leave alone.
func FindCalls(text string, opts Options) ([]Call, []Skipped) {
	var (
		calls   []Call
		skipped []Skipped
	)
	from := 0
	for {
		idx := dartsrc.FindCode(text, opts.LegacyCall, from)
		if idx < 0 {
			break
		}
		from = idx + len(opts.LegacyCall)
		if idx > 0 && (isIdentByte(text[idx-1]) || text[idx-1] == '.') {
			continue
		}
		call, reason := parseCall(text, idx, opts)
		if reason != "" {
			skipped = append(skipped, Skipped{Line: dartsrc.LineNumber(text, idx), Reason: reason})
			continue
		}
		calls = append(calls, *call)
		from = call.End
	}
	return calls, skipped
}

func parseCall(text string, idx int, opts Options) (*Call, string) {
	open := idx + len(opts.LegacyCall) - 1
	closeIdx := dartsrc.MatchingClose(text, open)
	if closeIdx < 0 {
		return nil, "unbalanced brackets in call"
	}
	args := text[open+1 : closeIdx]
	if !strings.Contains(args, opts.Endpoint) {
		return nil, "call does not target " + opts.Endpoint
	}

	end, reason := statementEnd(text, closeIdx+1)
	if reason != "" {
		return nil, reason
	}

	lineStart := dartsrc.LineStart(text, idx)
	call := &Call{
		Start: lineStart,
		End:   end,
		Line:  dartsrc.LineNumber(text, idx),
	}
	if reason := parsePrefix(text[lineStart:idx], call); reason != "" {
		return nil, reason
	}

	body, reason := parseBody(args)
	if reason != "" {
		return nil, reason
	}
	op, ok := body.Get("operation")
	if !ok {
		return nil, "request body has no operation"
	}
	if call.Operation, ok = dartsrc.Unquote(op); !ok {
		return nil, "operation is not a string literal"
	}
	call.Body = body
	return call, ""
}

// statementEnd skips permitted method chains after the call and returns the
// offset just past the terminating semicolon.
func statementEnd(text string, pos int) (int, string) {
	for {
		pos = skipSpace(text, pos)
		if pos >= len(text) || text[pos] != '.' {
			break
		}
		nameStart := pos + 1
		nameEnd := nameStart
		for nameEnd < len(text) && isIdentByte(text[nameEnd]) {
			nameEnd++
		}
		name := text[nameStart:nameEnd]
		if !allowedChains[name] {
			return 0, "call is chained with ." + name
		}
		if nameEnd >= len(text) || text[nameEnd] != '(' {
			return 0, "unexpected text after ." + name
		}
		closeIdx := dartsrc.MatchingClose(text, nameEnd)
		if closeIdx < 0 {
			return 0, "unbalanced brackets in ." + name
		}
		pos = closeIdx + 1
	}
	if pos >= len(text) || text[pos] != ';' {
		return 0, "call is not a complete statement"
	}
	return pos + 1, ""
}

func parsePrefix(prefix string, call *Call) string {
	call.Indent = dartsrc.Indent(prefix)
	m := awaitTail.FindStringSubmatch(prefix[len(call.Indent):])
	if m == nil {
		return "result is not awaited at the start of a statement"
	}
	head := strings.TrimSpace(m[1])
	switch {
	case head == "":
		call.Form = FormExpression
		return ""
	case head == "return":
		call.Form = FormReturn
		return ""
	case !strings.HasSuffix(head, "="):
		return "unsupported statement shape"
	}

	lhs := strings.TrimSpace(strings.TrimSuffix(head, "="))
	if lhs == "" || strings.ContainsAny(lhs[len(lhs)-1:], "=!<>+-*/&|?~%^") {
		return "unsupported assignment operator"
	}
	fields := strings.Fields(lhs)
	target := fields[len(fields)-1]
	if !identifier.MatchString(target) {
		return "assignment target is not a plain variable"
	}
	call.Target = target
	if len(fields) == 1 {
		call.Form = FormAssignment
		return ""
	}

	call.Form = FormDeclaration
	return parseDeclaration(fields[:len(fields)-1], call)
}

// parseDeclaration accepts modifiers optionally followed by a type before
// the declared name. Anything else means the line holds more than one
// statement or a control-flow header, which a rewrite from the line start
// would destroy.
func parseDeclaration(words []string, call *Call) string {
	call.Keyword = "final"
	i := 0
	for ; i < len(words) && declModifiers[words[i]]; i++ {
		if words[i] == "var" {
			call.Keyword = "var"
		}
	}
	typ := strings.Join(words[i:], " ")
	if typ == "" {
		return ""
	}
	m := typeName.FindStringSubmatch(typ)
	if m == nil || reservedWords[m[1]] || call.Keyword == "var" {
		return "statement shares its line with other code"
	}
	return ""
}

func parseBody(args string) (dartsrc.Entries, string) {
	for _, arg := range dartsrc.SplitTopLevel(args, ',') {
		arg = strings.TrimSpace(arg)
		if !strings.HasPrefix(arg, "body:") {
			continue
		}
		value := strings.TrimSpace(strings.TrimPrefix(arg, "body:"))
		var open int
		switch {
		case strings.HasPrefix(value, "json.encode("):
			open = len("json.encode")
		case strings.HasPrefix(value, "jsonEncode("):
			open = len("jsonEncode")
		default:
			return nil, "request body is not JSON encoded inline"
		}
		if dartsrc.MatchingClose(value, open) != len(value)-1 {
			return nil, "request body is not JSON encoded inline"
		}
		entries, err := dartsrc.ParseMapLiteral(value[open+1 : len(value)-1])
		if err != nil {
			return nil, "request body: " + err.Error()
		}
		return entries, ""
	}
	return nil, "call has no body argument"
}

func skipSpace(text string, pos int) int {
	for pos < len(text) && strings.IndexByte(" \t\r\n", text[pos]) >= 0 {
		pos++
	}
	return pos
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
