package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/enabletech/adaptermigrate/pkg/migration"
	"github.com/enabletech/adaptermigrate/pkg/rewrite"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSummary(dryRun bool) *migration.Summary {
	return &migration.Summary{
		Pipeline: "migrate",
		DryRun:   dryRun,
		Results: []migration.FileResult{
			{
				Path:     "lib/a.dart",
				Status:   migration.StatusMigrated,
				Hits:     []rewrite.Hit{{Rule: "legacy-calls", Count: 2}, {Rule: "adapter-import", Count: 1}},
				Inserted: 6,
				Deleted:  4,
				Diff:     "--- a/lib/a.dart\n+++ b/lib/a.dart\n",
			},
			{
				Path:     "lib/b.dart",
				Status:   migration.StatusPartial,
				Hits:     []rewrite.Hit{{Rule: "legacy-calls", Count: 1}},
				Residual: 1,
				Flags:    []rewrite.Flag{{Rule: "legacy-calls", Line: 12, Reason: "request has no table"}},
				Inserted: 3,
				Deleted:  1,
			},
			{Path: "lib/c.dart", Status: migration.StatusUnchanged},
			{Path: "lib/d.dart", Status: migration.StatusResidual, Residual: 2},
			{Path: "lib/gone.dart", Status: migration.StatusNotFound},
			{Path: "lib/dir.dart", Status: migration.StatusFailed, Err: errors.New("is a directory")},
		},
	}
}

func TestFileLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, true)
	for _, res := range sampleSummary(false).Results {
		p.File(res, false)
	}

	assert.Equal(t, `processed lib/a.dart (3 rewrites)
processed lib/b.dart (1 rewrite, 1 residual marker)
    line 12: request has no table (legacy-calls)
no change needed lib/c.dart
no change possible lib/d.dart (2 residual markers)
not found lib/gone.dart
failed lib/dir.dart: is a directory
`, buf.String())
}

func TestDryRunWording(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, true)
	summary := sampleSummary(true)

	p.File(summary.Results[0], true)
	p.File(summary.Results[2], true)
	assert.Equal(t, "would process lib/a.dart (3 rewrites)\nno change needed lib/c.dart\n", buf.String())

	buf.Reset()
	require.NoError(t, p.Summary(summary))
	assert.Contains(t, buf.String(), "2 files would change, 2 files left with residual markers, 1 location left for manual review\n")
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, true).Summary(sampleSummary(false)))
	out := buf.String()

	assert.Contains(t, strings.ToUpper(out), "STATUS")
	for _, cell := range []string{"migrated", "partial", "unchanged", "residual", "not found", "failed"} {
		assert.Contains(t, out, cell)
	}
	assert.Contains(t, out, "2 files changed, 2 files left with residual markers")
	assert.Contains(t, out, "\nFully migrated:\n  lib/a.dart\n")
	assert.Contains(t, out, "\nPartially migrated:\n  lib/b.dart\n")
	assert.Contains(t, out, "\nNot migrated:\n  lib/d.dart\n")
}

func TestDiffs(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, true).Diffs(sampleSummary(false))
	assert.Equal(t, "--- a/lib/a.dart\n+++ b/lib/a.dart\n", buf.String())
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "0 files", plural(0, "file"))
	assert.Equal(t, "1 file", plural(1, "file"))
	assert.Equal(t, "3 rewrites", plural(3, "rewrite"))
}
