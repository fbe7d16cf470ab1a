// Package legacycall recognises calls to the legacy PHP data API,
//
//	final response = await http.post(
//	  Uri.parse('https://example.com/dynamic_api.php'),
//	  headers: {...},
//	  body: json.encode({'operation': 'get', 'table': 'members', ...}),
//	).timeout(Duration(seconds: 15));
//
// and rewrites them into calls on the backend adapter, together with the
// response handling and imports around them.
package legacycall

import (
	"strings"

	"github.com/pkg/errors"
)

// ImportStyle selects how the adapter import is spelled.
type ImportStyle string

const (
	// ImportAbsolute uses the configured import path verbatim.
	ImportAbsolute ImportStyle = "absolute"
	// ImportRelative turns the import path into a ../ path relative to the
	// file, counted from the enclosing lib/ directory.
	ImportRelative ImportStyle = "relative"
)

// Options describe both sides of the migration.
type Options struct {
	// Adapter is the class whose static methods replace the legacy calls.
	Adapter string
	// AdapterImport is the import path of the adapter, e.g. /services/supabase_adapter.dart.
	AdapterImport string
	ImportStyle   ImportStyle
	// Endpoint is a substring identifying the legacy API URL.
	Endpoint string
	// LegacyCall is the call prefix of the legacy idiom, including the open paren.
	LegacyCall string
	// HTTPImport is the package path of the http client import to drop once unused.
	HTTPImport string
}

// DefaultOptions returns the settings of the cafe24 to Supabase migration.
func DefaultOptions() Options {
	return Options{
		Adapter:       "SupabaseAdapter",
		AdapterImport: "/services/supabase_adapter.dart",
		ImportStyle:   ImportAbsolute,
		Endpoint:      "dynamic_api.php",
		LegacyCall:    "http.post(",
		HTTPImport:    "package:http/http.dart",
	}
}

// Validate checks that the options can drive the rules.
func (o Options) Validate() error {
	switch {
	case o.Adapter == "":
		return errors.New("adapter class name must not be empty")
	case o.AdapterImport == "":
		return errors.New("adapter import must not be empty")
	case o.Endpoint == "":
		return errors.New("legacy endpoint must not be empty")
	case !strings.HasSuffix(o.LegacyCall, "("):
		return errors.Errorf("legacy call %q must end with an opening parenthesis", o.LegacyCall)
	}
	switch o.ImportStyle {
	case ImportAbsolute, ImportRelative:
	default:
		return errors.Errorf("unknown import style %q", o.ImportStyle)
	}
	return nil
}

// client returns the identifier the legacy call is made on, e.g. "http".
func (o Options) client() string {
	name := strings.TrimSuffix(o.LegacyCall, "(")
	if idx := strings.IndexByte(name, '.'); idx >= 0 {
		return name[:idx]
	}
	return name
}
