package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize agriledger storage",
		Long:  "Create the configuration file and data directory, then initialize the storage backend.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, cfg, err := a.attach()
			if err != nil {
				return err
			}
			if err := ledger.Detach(); err != nil {
				return sysError(fmt.Errorf("finalize storage: %w", err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "agriledger initialized (backend=%s, data_dir=%s, config_dir=%s)\n",
				cfg.Backend, cfg.DataDir, a.configDir)
			return nil
		},
	}
}
