package legacycall

import (
	"testing"

	"github.com/enabletech/adaptermigrate/pkg/dartsrc"
	"github.com/stretchr/testify/assert"
)

func body(kv ...string) dartsrc.Entries {
	var out dartsrc.Entries
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, dartsrc.Entry{Key: kv[i], Value: kv[i+1]})
	}
	return out
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name     string
		call     Call
		expected string
		err      string
	}{
		{
			name: "get emits parameters in adapter order",
			call: Call{
				Indent: "    ", Form: FormDeclaration, Keyword: "final", Target: "rows", Operation: "get",
				Body: body("operation", "'get'", "limit", "10", "table", "'members'",
					"where", "[{'column': 'id', 'value': id}]", "orderBy", "'name'"),
			},
			expected: "    final rows = await SupabaseAdapter.getData(\n" +
				"      table: 'members',\n" +
				"      where: [{'column': 'id', 'value': id}],\n" +
				"      orderBy: 'name',\n" +
				"      limit: 10,\n" +
				"    );",
		},
		{
			name: "empty where on get is dropped",
			call: Call{
				Form: FormAssignment, Target: "rows", Operation: "get",
				Body: body("operation", "'get'", "table", "'t'", "where", "[ ]"),
			},
			expected: "rows = await SupabaseAdapter.getData(\n  table: 't',\n);",
		},
		{
			name: "add keeps var keyword",
			call: Call{
				Indent: "  ", Form: FormDeclaration, Keyword: "var", Target: "res", Operation: "add",
				Body: body("operation", "'add'", "table", "'orders'", "data", "{'item': item}"),
			},
			expected: "  var res = await SupabaseAdapter.addData(\n    table: 'orders',\n    data: {'item': item},\n  );",
		},
		{
			name: "update as return",
			call: Call{
				Form: FormReturn, Operation: "update",
				Body: body("operation", "'update'", "table", "'t'", "where", "w", "data", "d"),
			},
			expected: "return await SupabaseAdapter.updateData(\n  table: 't',\n  data: d,\n  where: w,\n);",
		},
		{
			name: "delete as expression statement",
			call: Call{
				Form: FormExpression, Operation: "delete",
				Body: body("operation", "'delete'", "table", "'t'", "where", "w"),
			},
			expected: "await SupabaseAdapter.deleteData(\n  table: 't',\n  where: w,\n);",
		},
		{
			name: "unknown operation",
			call: Call{Operation: "query", Body: body("operation", "'query'", "table", "'t'")},
			err:  `unknown operation "query"`,
		},
		{
			name: "unsupported key",
			call: Call{Operation: "get", Body: body("operation", "'get'", "table", "'t'", "join", "'x'")},
			err:  `unsupported key "join"`,
		},
		{
			name: "missing table",
			call: Call{Operation: "delete", Body: body("operation", "'delete'", "where", "w")},
			err:  "no table",
		},
		{
			name: "add without data",
			call: Call{Operation: "add", Body: body("operation", "'add'", "table", "'t'")},
			err:  "no data",
		},
		{
			name: "update without where",
			call: Call{Operation: "update", Body: body("operation", "'update'", "table", "'t'", "data", "d")},
			err:  "no where",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Convert(tt.call, DefaultOptions())
			if tt.err != "" {
				assert.ErrorIs(t, err, ErrNotConvertible)
				assert.Contains(t, err.Error(), tt.err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestMethodMapping(t *testing.T) {
	for op, method := range map[string]string{
		"get":    "getData",
		"add":    "addData",
		"update": "updateData",
		"delete": "deleteData",
	} {
		got, ok := MethodFor(op)
		assert.True(t, ok)
		assert.Equal(t, method, got)

		back, ok := OperationFor(method)
		assert.True(t, ok)
		assert.Equal(t, op, back)
	}

	_, ok := MethodFor("select")
	assert.False(t, ok)
	_, ok = OperationFor("fetch")
	assert.False(t, ok)
}
