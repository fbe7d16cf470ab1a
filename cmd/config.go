package cmd

import (
	"github.com/enabletech/adaptermigrate/pkg/config"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// ConfigCommand prints the effective configuration.
func ConfigCommand(fs afero.Fs) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Long: `Prints the configuration after merging flags, ADAPTERMIGRATE_* environment
variables and the configuration file. The output can be saved and passed back
with --config.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := config.Load(fs, c.Flags())
			if err != nil {
				return err
			}
			return cfg.WriteYAML(c.OutOrStdout())
		},
	}
}
