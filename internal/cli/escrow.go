package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/agriledger/internal/service"
	"github.com/mesh-intelligence/agriledger/pkg/types"
)

func newEscrowCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "escrow",
		Short: "Hold and show escrows against debts",
	}
	cmd.AddCommand(newEscrowCreateCmd(a), newEscrowGetCmd(a))
	return cmd
}

func newEscrowCreateCmd(a *app) *cobra.Command {
	var payload types.EscrowPayload
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Hold an amount in escrow against a debt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd, func(ctx context.Context, svc *service.Service) error {
				escrow, err := svc.CreateEscrow(ctx, payload)
				if err != nil {
					return fromService(err)
				}
				return a.printRecord(cmd, escrow)
			})
		},
	}
	cmd.Flags().Uint64Var(&payload.DebtID, "debt-id", 0, "debt the escrow is held against")
	cmd.Flags().Uint64Var(&payload.Amount, "amount", 0, "amount held")
	return cmd
}

func newEscrowGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <debt-id>",
		Short: "Show the escrow held against a debt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			debtID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withService(cmd, func(ctx context.Context, svc *service.Service) error {
				escrow, err := svc.GetEscrow(ctx, debtID)
				if err != nil {
					return fromService(err)
				}
				return a.printRecord(cmd, escrow)
			})
		},
	}
}
