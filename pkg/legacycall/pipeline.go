package legacycall

import (
	"github.com/enabletech/adaptermigrate/pkg/rewrite"
)

// Rule names, as reported in per-file hit counts and flags.
const (
	RuleLegacyCalls      = "legacy-calls"
	RuleResponses        = "responses"
	RuleAdapterImport    = "adapter-import"
	RuleHTTPImport       = "http-import"
	RuleDuplicateTimeout = "duplicate-timeout"
	RuleStaleFragments   = "stale-fragments"
	RuleStatusTail       = "status-tail"
	RuleAdapterResponses = "adapter-responses"
)

// MigrationPipeline replaces legacy calls with adapter calls. Everything after
// the call rule only runs when a call was migrated, so files without a
// convertible call come out byte for byte identical.
func MigrationPipeline(opts Options) *rewrite.Pipeline {
	migrated := rewrite.HitsAtLeast(RuleLegacyCalls, 1)
	return rewrite.NewPipeline("migrate",
		callRule(opts),
		rewrite.When(migrated, responseRule(RuleResponses, migratedFromContext, opts)),
		rewrite.When(migrated, addImportRule(opts)),
		rewrite.When(migrated, dropHTTPImportRule(opts)),
	)
}

// CleanupPipeline repairs files left half migrated by earlier rewrites.
func CleanupPipeline(opts Options) *rewrite.Pipeline {
	repaired := func(ctx *rewrite.Context) bool {
		return ctx.Hits(RuleDuplicateTimeout)+ctx.Hits(RuleStaleFragments)+ctx.Hits(RuleStatusTail) > 0
	}
	return rewrite.NewPipeline("cleanup",
		rewrite.MustRegexp(RuleDuplicateTimeout, duplicateTimeout, ");"),
		staleFragmentsRule(opts),
		statusTailRule(opts),
		responseRule(RuleAdapterResponses, adapterCallsInText(opts), opts),
		rewrite.When(repaired, dropHTTPImportRule(opts)),
	)
}
