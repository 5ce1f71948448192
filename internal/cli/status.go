package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/agriledger/internal/service"
)

// statusReport is the --json form of the status command.
type statusReport struct {
	Backend   string `json:"backend"`
	DataDir   string `json:"data_dir"`
	LastID    uint64 `json:"last_id"`
	ConfigDir string `json:"config_dir"`
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active backend and the last issued identifier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.ledgerConfig()
			if err != nil {
				return err
			}
			return a.withService(cmd, func(ctx context.Context, svc *service.Service) error {
				last, err := svc.LastIssuedID(ctx)
				if err != nil {
					return sysError(err)
				}
				report := statusReport{Backend: cfg.Backend, DataDir: cfg.DataDir, LastID: last, ConfigDir: a.configDir}
				if a.jsonMode {
					return writeJSON(cmd.OutOrStdout(), report)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "backend: %s\ndata_dir: %s\nconfig_dir: %s\nlast_id: %d\n",
					report.Backend, report.DataDir, report.ConfigDir, report.LastID)
				return nil
			})
		},
	}
}
