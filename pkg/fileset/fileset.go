// Package fileset selects the source files a migration run operates on.
package fileset

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/enabletech/adaptermigrate/pkg/logging"
	"github.com/gobwas/glob"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

const (
	// DefaultExtension is the extension of files picked up from directories.
	DefaultExtension = ".dart"

	backupMarker = "backup"
)

var log = logging.LoggerForModule()

// Spec describes which files to select.
type Spec struct {
	// Targets are file or directory paths. Directories are walked recursively.
	Targets []string
	// Extension filters files found in directories. Explicit file targets are
	// taken regardless of their extension.
	Extension string
	// Exclude holds glob patterns matched against the slash separated path
	// and against the base name. ** crosses directories.
	Exclude []string
}

// Selection is the outcome of Select.
type Selection struct {
	// Files are the selected files, sorted and free of duplicates.
	Files []string
	// Missing are explicit targets that do not exist.
	Missing []string
}

// Len returns the number of selected and missing files.
func (s *Selection) Len() int {
	return len(s.Files) + len(s.Missing)
}

// Select resolves spec against fs.
func Select(fs afero.Fs, spec Spec) (*Selection, error) {
	if spec.Extension == "" {
		spec.Extension = DefaultExtension
	}
	excludes, err := compileExcludes(spec.Exclude)
	if err != nil {
		return nil, err
	}

	var (
		sel     Selection
		errList *multierror.Error
		seen    = make(map[string]bool)
	)
	add := func(path string) {
		path = filepath.Clean(path)
		if !seen[path] {
			seen[path] = true
			sel.Files = append(sel.Files, path)
		}
	}

	for _, target := range spec.Targets {
		info, err := fs.Stat(target)
		if os.IsNotExist(err) {
			sel.Missing = append(sel.Missing, target)
			continue
		}
		if err != nil {
			errList = multierror.Append(errList, errors.Wrapf(err, "inspecting %s", target))
			continue
		}
		if !info.IsDir() {
			if excludes.match(target) {
				log.Debugf("Skipping excluded file %s", target)
				continue
			}
			add(target)
			continue
		}

		err = afero.Walk(fs, target, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if path != target && excludes.match(path) {
				log.Debugf("Skipping excluded path %s", path)
				if info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if info.IsDir() || filepath.Ext(path) != spec.Extension {
				return nil
			}
			if strings.Contains(strings.ToLower(path), backupMarker) {
				log.Debugf("Skipping backup file %s", path)
				return nil
			}
			add(path)
			return nil
		})
		if err != nil {
			errList = multierror.Append(errList, errors.Wrapf(err, "walking %s", target))
		}
	}

	sort.Strings(sel.Files)
	return &sel, errList.ErrorOrNil()
}

type globs []glob.Glob

func compileExcludes(patterns []string) (globs, error) {
	out := make(globs, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, errors.Wrapf(err, "invalid exclude pattern %q", p)
		}
		out = append(out, g)
	}
	return out, nil
}

func (g globs) match(path string) bool {
	slashed := filepath.ToSlash(filepath.Clean(path))
	base := filepath.Base(path)
	for _, pattern := range g {
		if pattern.Match(slashed) || pattern.Match(base) {
			return true
		}
	}
	return false
}
