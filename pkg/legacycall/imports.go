package legacycall

import (
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/enabletech/adaptermigrate/pkg/dartsrc"
	"github.com/enabletech/adaptermigrate/pkg/rewrite"
	"github.com/pkg/errors"
)

var importDirective = regexp.MustCompile(`(?m)^import\s+['"][^'"]+['"][^;]*;[^\n]*`)

// AdapterImportPath returns the import path of the adapter as seen from the
// file at filePath.
func AdapterImportPath(filePath string, opts Options) (string, error) {
	if opts.ImportStyle != ImportRelative {
		return opts.AdapterImport, nil
	}
	parts := strings.Split(filepath.ToSlash(filePath), "/")
	lib := -1
	for i, p := range parts[:len(parts)-1] {
		if p == "lib" {
			lib = i
		}
	}
	if lib < 0 {
		return "", errors.Errorf("%s is not inside a lib directory", filePath)
	}
	depth := len(parts) - lib - 2
	return strings.Repeat("../", depth) + strings.TrimPrefix(opts.AdapterImport, "/"), nil
}

func addImportRule(opts Options) rewrite.Rule {
	return rewrite.Func(RuleAdapterImport, func(ctx *rewrite.Context, text string) (string, int) {
		if strings.Contains(text, path.Base(opts.AdapterImport)) {
			return text, 0
		}
		importPath, err := AdapterImportPath(ctx.Path(), opts)
		if err != nil {
			ctx.Flag(1, "adapter import not added: %v", err)
			return text, 0
		}
		directive := "import '" + importPath + "';"

		locs := importDirective.FindAllStringIndex(text, -1)
		if len(locs) == 0 {
			return directive + "\n\n" + text, 1
		}
		end := locs[len(locs)-1][1]
		return text[:end] + "\n" + directive + text[end:], 1
	})
}

func dropHTTPImportRule(opts Options) rewrite.Rule {
	directive := regexp.MustCompile(`(?m)^import\s+['"]` + regexp.QuoteMeta(opts.HTTPImport) + `['"][^;\n]*;[ \t]*(?:\n|$)`)
	return rewrite.Func(RuleHTTPImport, func(_ *rewrite.Context, text string) (string, int) {
		loc := directive.FindStringIndex(text)
		if loc == nil {
			return text, 0
		}
		rest := text[:loc[0]] + text[loc[1]:]
		if usesClient(rest, opts.client()) {
			return text, 0
		}
		return rest, 1
	})
}

// usesClient reports whether code in text still refers to client, e.g. http.get(.
func usesClient(text, client string) bool {
	prefix := client + "."
	for from := 0; ; {
		idx := dartsrc.FindCode(text, prefix, from)
		if idx < 0 {
			return false
		}
		if idx == 0 || !isIdentByte(text[idx-1]) && text[idx-1] != '.' {
			return true
		}
		from = idx + len(prefix)
	}
}
