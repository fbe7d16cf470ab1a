package migration

import (
	"github.com/enabletech/adaptermigrate/pkg/rewrite"
)

// Status is the outcome of processing one file.
type Status int

const (
	// StatusUnchanged means no rule matched and no residual marker is left.
	StatusUnchanged Status = iota
	// StatusMigrated means the file changed and no residual marker is left.
	StatusMigrated
	// StatusPartial means the file changed but residual markers remain.
	StatusPartial
	// StatusResidual means nothing could be rewritten but markers are present.
	StatusResidual
	// StatusNotFound means the file does not exist.
	StatusNotFound
	// StatusFailed means the file could not be read or written.
	StatusFailed
)

var statusNames = map[Status]string{
	StatusUnchanged: "unchanged",
	StatusMigrated:  "migrated",
	StatusPartial:   "partial",
	StatusResidual:  "residual",
	StatusNotFound:  "not found",
	StatusFailed:    "failed",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// Changed reports whether the status stands for a rewritten file.
func (s Status) Changed() bool {
	return s == StatusMigrated || s == StatusPartial
}

// FileResult describes what happened to one file.
type FileResult struct {
	Path   string
	Status Status
	// Written is false for changed files in dry-run mode.
	Written bool
	Hits    []rewrite.Hit
	Flags   []rewrite.Flag
	// MarkersBefore and Residual count the marker before and after rewriting.
	MarkersBefore int
	Residual      int
	// Diff is the unified diff of the change, only filled when requested.
	Diff              string
	Inserted, Deleted int
	Err               error
}

// Rewrites returns the number of rewrites across all rules.
func (r *FileResult) Rewrites() int {
	total := 0
	for _, h := range r.Hits {
		total += h.Count
	}
	return total
}

// Summary aggregates the results of a run in processing order.
type Summary struct {
	Pipeline string
	DryRun   bool
	Results  []FileResult
}

// Count returns the number of files with the given status.
func (s *Summary) Count(status Status) int {
	n := 0
	for _, r := range s.Results {
		if r.Status == status {
			n++
		}
	}
	return n
}

// Changed returns the number of rewritten files.
func (s *Summary) Changed() int {
	return s.Count(StatusMigrated) + s.Count(StatusPartial)
}

// WithResidual returns the number of files that still contain the marker.
func (s *Summary) WithResidual() int {
	return s.Count(StatusPartial) + s.Count(StatusResidual)
}

// Paths returns the paths of files with one of the given statuses.
func (s *Summary) Paths(statuses ...Status) []string {
	var out []string
	for _, r := range s.Results {
		for _, st := range statuses {
			if r.Status == st {
				out = append(out, r.Path)
				break
			}
		}
	}
	return out
}

// Flagged returns the number of locations left alone across all files.
func (s *Summary) Flagged() int {
	n := 0
	for _, r := range s.Results {
		n += len(r.Flags)
	}
	return n
}
