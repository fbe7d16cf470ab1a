package cmd

import (
	"context"
	"io"
	"os"

	"github.com/enabletech/adaptermigrate/pkg/config"
	"github.com/enabletech/adaptermigrate/pkg/env"
	"github.com/enabletech/adaptermigrate/pkg/fileset"
	"github.com/enabletech/adaptermigrate/pkg/legacycall"
	"github.com/enabletech/adaptermigrate/pkg/logging"
	"github.com/enabletech/adaptermigrate/pkg/migration"
	"github.com/enabletech/adaptermigrate/pkg/report"
	"github.com/enabletech/adaptermigrate/pkg/rewrite"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// DefaultTarget is processed when no paths are given.
const DefaultTarget = "lib"

const checkPipeline = "check"

var (
	log = logging.LoggerForModule()

	// ErrStrict is returned in --strict mode when files failed or legacy
	// calls remain.
	ErrStrict = errors.New("migration incomplete")
)

// MigrateCommand replaces legacy calls with adapter calls.
func MigrateCommand(fs afero.Fs) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [paths...]",
		Short: "Rewrite legacy API calls into adapter calls",
		Long: `Rewrites every http.post call against the legacy endpoint into the matching
adapter call, adapts status checks and decoded bodies of the result, adds the
adapter import and drops the http import once it is unused.

Paths may be files or directories; directories are searched recursively for
files with the configured extension, skipping backups. Defaults to ./` + DefaultTarget + `.`,
		RunE: func(c *cobra.Command, args []string) error {
			return runPipeline(c, fs, args, config.PipelineMigrate, legacycall.MigrationPipeline)
		},
	}
}

// CleanupCommand repairs files left half migrated by earlier rewrites.
func CleanupCommand(fs afero.Fs) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup [paths...]",
		Short: "Repair leftovers of earlier partial migrations",
		Long: `Removes request fragments and stale legacy calls left directly after adapter
calls, collapses duplicated timeouts, repairs broken status checks and adapts
the response handling of existing adapter calls.`,
		RunE: func(c *cobra.Command, args []string) error {
			return runPipeline(c, fs, args, config.PipelineCleanup, legacycall.CleanupPipeline)
		},
	}
}

// CheckCommand reports residual legacy calls without changing anything.
func CheckCommand(fs afero.Fs) *cobra.Command {
	return &cobra.Command{
		Use:   "check [paths...]",
		Short: "Report files still containing legacy calls",
		RunE: func(c *cobra.Command, args []string) error {
			return runPipeline(c, fs, args, checkPipeline, func(legacycall.Options) *rewrite.Pipeline {
				return rewrite.NewPipeline(checkPipeline)
			})
		},
	}
}

func runPipeline(c *cobra.Command, fs afero.Fs, args []string, name string, build func(legacycall.Options) *rewrite.Pipeline) error {
	cfg, err := config.Load(fs, c.Flags())
	if err != nil {
		return err
	}
	if len(args) == 0 {
		args = []string{DefaultTarget}
	}

	sel, err := fileset.Select(fs, cfg.Selection(args))
	if err != nil {
		return errors.Wrap(err, "selecting files")
	}
	if sel.Len() == 0 {
		log.Warnf("No %s files found in %v", cfg.Extension, args)
	}

	pipeline := build(cfg.Options())
	if name != checkPipeline {
		extra, err := cfg.RulesFor(name)
		if err != nil {
			return err
		}
		pipeline.Append(extra...)
	}

	runner := migration.NewRunner(fs, pipeline, cfg.Marker,
		migration.WithDryRun(cfg.DryRun || name == checkPipeline),
		migration.WithDiff(cfg.Diff),
		migration.WithBackupSuffix(cfg.BackupSuffix),
	)
	summary, runErr := runner.Run(c.Context(), sel)
	if errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded) {
		return runErr
	}

	printer := report.NewPrinter(c.OutOrStdout(), colorDisabled(c.OutOrStdout()))
	for _, res := range summary.Results {
		printer.File(res, summary.DryRun)
	}
	if cfg.Diff {
		printer.Diffs(summary)
	}
	if err := printer.Summary(summary); err != nil {
		return err
	}

	if cfg.Strict && (runErr != nil || summary.WithResidual() > 0 || summary.Count(migration.StatusNotFound) > 0) {
		return errors.Wrapf(ErrStrict, "%d failed, %d with residual markers, %d not found",
			summary.Count(migration.StatusFailed), summary.WithResidual(), summary.Count(migration.StatusNotFound))
	}
	return nil
}

// colorDisabled reports whether output to w should be plain text.
func colorDisabled(w io.Writer) bool {
	if env.NoColor.BooleanSetting() {
		return true
	}
	f, ok := w.(*os.File)
	return !ok || !term.IsTerminal(int(f.Fd()))
}
