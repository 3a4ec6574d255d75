package cli

import (
	"github.com/spf13/cobra"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the reaction legend for the configured catalog",
		Args:  cobra.NoArgs,
		RunE:  runCatalog,
	}
	addFormatFlag(cmd)
	return cmd
}

func runCatalog(cmd *cobra.Command, args []string) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	cat, err := cfg.LoadCatalog()
	if err != nil {
		return err
	}
	binding, err := newBinding(cfg, cat)
	if err != nil {
		return err
	}
	return WriteLegend(cmd.OutOrStdout(), binding.Legend(), format)
}
