package legacycall

import (
	"strings"

	"github.com/enabletech/adaptermigrate/pkg/rewrite"
)

const migratedKey = "legacycall.migrated"

// Migrated records a legacy call that was replaced by an adapter call.
type Migrated struct {
	Target    string
	Operation string
	Line      int
}

func callRule(opts Options) rewrite.Rule {
	return rewrite.Func(RuleLegacyCalls, func(ctx *rewrite.Context, text string) (string, int) {
		calls, skipped := FindCalls(text, opts)
		for _, s := range skipped {
			ctx.Flag(s.Line, "%s", s.Reason)
		}

		var (
			b        strings.Builder
			last     int
			migrated []Migrated
		)
		for _, call := range calls {
			replacement, err := Convert(call, opts)
			if err != nil {
				ctx.Flag(call.Line, "%s", err.Error())
				continue
			}
			b.WriteString(text[last:call.Start])
			b.WriteString(replacement)
			last = call.End
			migrated = append(migrated, Migrated{
				Target:    call.Target,
				Operation: call.Operation,
				Line:      call.Line,
			})
		}
		if len(migrated) == 0 {
			return text, 0
		}
		b.WriteString(text[last:])
		ctx.Set(migratedKey, migrated)
		return b.String(), len(migrated)
	})
}

func migratedFromContext(ctx *rewrite.Context, _ string) []Migrated {
	v, ok := ctx.Get(migratedKey)
	if !ok {
		return nil
	}
	return v.([]Migrated)
}
