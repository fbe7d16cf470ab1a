// Package report prints migration results for people: one status line per
// file as it is processed and a summary at the end.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/enabletech/adaptermigrate/pkg/migration"
	"github.com/fatih/color"
	"github.com/mitchellh/go-wordwrap"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
)

const flagWidth = 96

// Printer writes reports to an output stream.
type Printer struct {
	out io.Writer

	ok, warn, bad, faint *color.Color
}

// NewPrinter returns a printer writing to out, colored unless noColor is set.
func NewPrinter(out io.Writer, noColor bool) *Printer {
	p := &Printer{
		out:   out,
		ok:    color.New(color.FgGreen),
		warn:  color.New(color.FgYellow),
		bad:   color.New(color.FgRed, color.Bold),
		faint: color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.ok, p.warn, p.bad, p.faint} {
		if noColor {
			c.DisableColor()
		} else {
			c.EnableColor()
		}
	}
	return p
}

// File prints the status line of one file and the locations the rules left
// alone in it.
func (p *Printer) File(res migration.FileResult, dryRun bool) {
	processed := "processed"
	if dryRun && res.Status.Changed() {
		processed = "would process"
	}

	switch res.Status {
	case migration.StatusMigrated:
		p.ok.Fprintf(p.out, "%s %s", processed, res.Path)
		fmt.Fprintf(p.out, " (%s)\n", plural(res.Rewrites(), "rewrite"))
	case migration.StatusPartial:
		p.warn.Fprintf(p.out, "%s %s", processed, res.Path)
		fmt.Fprintf(p.out, " (%s, %s)\n", plural(res.Rewrites(), "rewrite"), plural(res.Residual, "residual marker"))
	case migration.StatusUnchanged:
		p.faint.Fprintf(p.out, "no change needed %s\n", res.Path)
	case migration.StatusResidual:
		p.warn.Fprintf(p.out, "no change possible %s", res.Path)
		fmt.Fprintf(p.out, " (%s)\n", plural(res.Residual, "residual marker"))
	case migration.StatusNotFound:
		p.bad.Fprintf(p.out, "not found %s\n", res.Path)
	case migration.StatusFailed:
		p.bad.Fprintf(p.out, "failed %s", res.Path)
		fmt.Fprintf(p.out, ": %v\n", res.Err)
	}
	for _, f := range res.Flags {
		lines := strings.Split(wordwrap.WrapString(f.String(), flagWidth), "\n")
		p.faint.Fprintf(p.out, "    %s\n", strings.Join(lines, "\n      "))
	}
}

// Diffs prints the unified diff of every changed file that has one.
func (p *Printer) Diffs(summary *migration.Summary) {
	for _, res := range summary.Results {
		if res.Diff == "" {
			continue
		}
		fmt.Fprint(p.out, res.Diff)
	}
}

// Summary prints the totals of a run, followed by the fully and partially
// migrated files.
func (p *Printer) Summary(summary *migration.Summary) error {
	fmt.Fprintln(p.out)
	table := tablewriter.NewWriter(p.out)
	table.Header("Status", "Files", "Inserted", "Deleted")
	for _, status := range []migration.Status{
		migration.StatusMigrated,
		migration.StatusPartial,
		migration.StatusUnchanged,
		migration.StatusResidual,
		migration.StatusNotFound,
		migration.StatusFailed,
	} {
		files, inserted, deleted := 0, 0, 0
		for _, r := range summary.Results {
			if r.Status == status {
				files++
				inserted += r.Inserted
				deleted += r.Deleted
			}
		}
		if files == 0 {
			continue
		}
		if err := table.Append([]string{status.String(), strconv.Itoa(files), strconv.Itoa(inserted), strconv.Itoa(deleted)}); err != nil {
			return errors.Wrap(err, "building summary table")
		}
	}
	if err := table.Render(); err != nil {
		return errors.Wrap(err, "rendering summary table")
	}

	verb := "changed"
	if summary.DryRun {
		verb = "would change"
	}
	fmt.Fprintf(p.out, "\n%s %s, %s left with residual markers",
		plural(summary.Changed(), "file"), verb, plural(summary.WithResidual(), "file"))
	if n := summary.Flagged(); n > 0 {
		fmt.Fprintf(p.out, ", %s left for manual review", plural(n, "location"))
	}
	fmt.Fprintln(p.out)

	p.list("Fully migrated", p.ok, summary.Paths(migration.StatusMigrated))
	p.list("Partially migrated", p.warn, summary.Paths(migration.StatusPartial))
	p.list("Not migrated", p.warn, summary.Paths(migration.StatusResidual))
	return nil
}

func (p *Printer) list(title string, c *color.Color, paths []string) {
	if len(paths) == 0 {
		return
	}
	fmt.Fprintf(p.out, "\n%s:\n", title)
	for _, path := range paths {
		c.Fprintf(p.out, "  %s\n", path)
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
