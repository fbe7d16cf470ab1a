// Package cmd implements the adaptermigrate command line.
package cmd

import (
	"github.com/enabletech/adaptermigrate/pkg/config"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// NewRootCommand returns the adaptermigrate command tree operating on fs.
func NewRootCommand(fs afero.Fs) *cobra.Command {
	root := &cobra.Command{
		Use:   "adaptermigrate",
		Short: "Migrate legacy dynamic_api.php calls to the backend adapter",
		Long: `adaptermigrate rewrites http.post calls against the legacy PHP data API
into calls on the backend adapter (getData, addData, updateData, deleteData),
fixes the response handling around them and reports every call it had to
leave for manual review.

Files are only written when they change. Per-file failures and residual
legacy calls are reported but do not fail the run unless --strict is set.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.AddFlags(root.PersistentFlags())

	root.AddCommand(
		MigrateCommand(fs),
		CleanupCommand(fs),
		CheckCommand(fs),
		ConfigCommand(fs),
	)
	return root
}
