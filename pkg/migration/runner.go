// Package migration applies a rewrite pipeline to files and writes back the
// ones that changed.
package migration

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/enabletech/adaptermigrate/pkg/fileset"
	"github.com/enabletech/adaptermigrate/pkg/logging"
	"github.com/enabletech/adaptermigrate/pkg/rewrite"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

var log = logging.LoggerForModule()

// Runner rewrites files with a pipeline.
type Runner struct {
	fs           afero.Fs
	pipeline     *rewrite.Pipeline
	marker       string
	dryRun       bool
	diff         bool
	backupSuffix string
}

// Option configures a Runner.
type Option func(*Runner)

// WithDryRun computes results without writing files.
func WithDryRun(dryRun bool) Option {
	return func(r *Runner) {
		r.dryRun = dryRun
	}
}

// WithDiff fills FileResult.Diff for changed files.
func WithDiff(diff bool) Option {
	return func(r *Runner) {
		r.diff = diff
	}
}

// WithBackupSuffix keeps a copy of every overwritten file at path+suffix.
func WithBackupSuffix(suffix string) Option {
	return func(r *Runner) {
		r.backupSuffix = suffix
	}
}

// NewRunner returns a runner applying pipeline and counting marker as the
// residual legacy idiom.
func NewRunner(fs afero.Fs, pipeline *rewrite.Pipeline, marker string, opts ...Option) *Runner {
	r := &Runner{
		fs:       fs,
		pipeline: pipeline,
		marker:   marker,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ProcessFile rewrites a single file. Failures are reported in the result;
// the original file is left untouched when anything goes wrong.
func (r *Runner) ProcessFile(path string) FileResult {
	res := FileResult{Path: path}

	info, err := r.fs.Stat(path)
	if os.IsNotExist(err) {
		res.Status = StatusNotFound
		return res
	}
	if err == nil && info.IsDir() {
		err = errors.New("is a directory")
	}
	if err != nil {
		return failed(res, errors.Wrapf(err, "inspecting %s", path))
	}
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return failed(res, errors.Wrapf(err, "reading %s", path))
	}

	text := string(data)
	out := r.pipeline.Run(path, text)
	res.Hits = out.Hits
	res.Flags = out.Flags
	res.MarkersBefore = r.countMarker(text)
	res.Residual = r.countMarker(out.Text)

	for _, f := range out.Flags {
		log.Debugf("%s: %s", path, f)
	}

	if !out.Changed {
		res.Status = StatusUnchanged
		if res.Residual > 0 {
			res.Status = StatusResidual
		}
		return res
	}

	res.Status = StatusMigrated
	if res.Residual > 0 {
		res.Status = StatusPartial
	}
	res.Inserted, res.Deleted = lineStats(text, out.Text)
	if r.diff {
		if res.Diff, err = unifiedDiff(path, text, out.Text); err != nil {
			log.Warnf("Could not diff %s: %v", path, err)
		}
	}
	if r.dryRun {
		return res
	}

	if r.backupSuffix != "" {
		if err := afero.WriteFile(r.fs, path+r.backupSuffix, data, info.Mode().Perm()); err != nil {
			return failed(res, errors.Wrapf(err, "backing up %s", path))
		}
	}
	if err := writeAtomic(r.fs, path, []byte(out.Text), info.Mode().Perm()); err != nil {
		return failed(res, err)
	}
	res.Written = true
	return res
}

// Run processes every file of sel in order. Missing files are reported as
// not found. Cancelling ctx stops the run between files; the summary then
// covers the files processed so far. The returned error aggregates per-file
// failures.
func (r *Runner) Run(ctx context.Context, sel *fileset.Selection) (*Summary, error) {
	summary := &Summary{Pipeline: r.pipeline.Name(), DryRun: r.dryRun}
	for _, path := range sel.Missing {
		summary.Results = append(summary.Results, FileResult{Path: path, Status: StatusNotFound})
	}

	var errList *multierror.Error
	for _, path := range sel.Files {
		if err := ctx.Err(); err != nil {
			return summary, errors.Wrap(err, "migration interrupted")
		}
		res := r.ProcessFile(path)
		switch res.Status {
		case StatusFailed:
			log.Errorf("Failed to process %s: %v", path, res.Err)
			errList = multierror.Append(errList, res.Err)
		case StatusMigrated, StatusPartial:
			log.Debugf("Rewrote %s: %d rewrites, %d residual markers", path, res.Rewrites(), res.Residual)
		}
		summary.Results = append(summary.Results, res)
	}
	log.Infof("%s: %d of %d files changed, %d with residual markers",
		summary.Pipeline, summary.Changed(), len(summary.Results), summary.WithResidual())
	return summary, errList.ErrorOrNil()
}

func (r *Runner) countMarker(text string) int {
	if r.marker == "" {
		return 0
	}
	return strings.Count(text, r.marker)
}

func failed(res FileResult, err error) FileResult {
	res.Status = StatusFailed
	res.Err = err
	return res
}

// writeAtomic replaces path with data by writing a temporary file next to it
// and renaming it into place.
func writeAtomic(fs afero.Fs, path string, data []byte, perm os.FileMode) (err error) {
	tmp, err := afero.TempFile(fs, filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "creating temporary file for %s", path)
	}
	defer func() {
		if err != nil {
			_ = fs.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "writing %s", tmp.Name())
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", tmp.Name())
	}
	if err = fs.Chmod(tmp.Name(), perm); err != nil {
		return errors.Wrapf(err, "setting mode of %s", tmp.Name())
	}
	if err = fs.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "replacing %s", path)
	}
	return nil
}
