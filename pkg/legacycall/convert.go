package legacycall

import (
	"strings"

	"github.com/pkg/errors"
)

// ErrNotConvertible is returned for calls whose body the adapter has no
// equivalent for. Such calls are left in place and flagged.
var ErrNotConvertible = errors.New("call cannot be converted")

type operation struct {
	method   string
	params   []string
	required []string
}

// Parameters are emitted in this order regardless of their order in the
// legacy request body.
var operations = map[string]operation{
	"get": {
		method: "getData",
		params: []string{"table", "where", "fields", "orderBy", "limit", "offset"},
	},
	"add": {
		method:   "addData",
		params:   []string{"table", "data"},
		required: []string{"data"},
	},
	"update": {
		method:   "updateData",
		params:   []string{"table", "data", "where"},
		required: []string{"data", "where"},
	},
	"delete": {
		method:   "deleteData",
		params:   []string{"table", "where"},
		required: []string{"where"},
	},
}

// MethodFor returns the adapter method replacing a legacy operation.
func MethodFor(op string) (string, bool) {
	o, ok := operations[op]
	return o.method, ok
}

// OperationFor returns the legacy operation an adapter method replaces.
func OperationFor(method string) (string, bool) {
	for op, o := range operations {
		if o.method == method {
			return op, true
		}
	}
	return "", false
}

// Convert renders the adapter call statement replacing call.
func Convert(call Call, opts Options) (string, error) {
	op, ok := operations[call.Operation]
	if !ok {
		return "", errors.Wrapf(ErrNotConvertible, "unknown operation %q", call.Operation)
	}

	allowed := map[string]bool{"operation": true}
	for _, p := range op.params {
		allowed[p] = true
	}
	for _, key := range call.Body.Keys() {
		if !allowed[key] {
			return "", errors.Wrapf(ErrNotConvertible, "%s request has unsupported key %q", call.Operation, key)
		}
	}
	if _, ok := call.Body.Get("table"); !ok {
		return "", errors.Wrapf(ErrNotConvertible, "%s request has no table", call.Operation)
	}
	for _, key := range op.required {
		if _, ok := call.Body.Get(key); !ok {
			return "", errors.Wrapf(ErrNotConvertible, "%s request has no %s", call.Operation, key)
		}
	}

	var b strings.Builder
	b.WriteString(call.Indent)
	switch call.Form {
	case FormDeclaration:
		b.WriteString(call.Keyword + " " + call.Target + " = ")
	case FormAssignment:
		b.WriteString(call.Target + " = ")
	case FormReturn:
		b.WriteString("return ")
	}
	b.WriteString("await " + opts.Adapter + "." + op.method + "(\n")
	for _, p := range op.params {
		value, ok := call.Body.Get(p)
		if !ok {
			continue
		}
		// An empty filter on a read is the same as no filter.
		if call.Operation == "get" && p == "where" && strings.Join(strings.Fields(value), "") == "[]" {
			continue
		}
		b.WriteString(call.Indent + "  " + p + ": " + value + ",\n")
	}
	b.WriteString(call.Indent + ");")
	return b.String(), nil
}
