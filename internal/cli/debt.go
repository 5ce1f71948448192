package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/agriledger/internal/service"
	"github.com/mesh-intelligence/agriledger/pkg/types"
)

func newDebtCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "debt",
		Short: "Add, update and show debts",
	}
	cmd.AddCommand(newDebtAddCmd(a), newDebtGetCmd(a), newDebtUpdateCmd(a))
	return cmd
}

func debtPayloadFlags(cmd *cobra.Command, p *types.DebtPayload) {
	cmd.Flags().StringVar(&p.Debtor, "debtor", "", "party that owes the amount")
	cmd.Flags().StringVar(&p.Creditor, "creditor", "", "party that is owed the amount")
	cmd.Flags().Uint64Var(&p.Amount, "amount", 0, "amount owed")
}

func newDebtAddCmd(a *app) *cobra.Command {
	var payload types.DebtPayload
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new debt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd, func(ctx context.Context, svc *service.Service) error {
				debt, err := svc.AddDebt(ctx, payload)
				if err != nil {
					return fromService(err)
				}
				if debt == nil {
					return a.emptyResult(cmd, "debt")
				}
				return a.printRecord(cmd, *debt)
			})
		},
	}
	debtPayloadFlags(cmd, &payload)
	return cmd
}

func newDebtGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a debt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withService(cmd, func(ctx context.Context, svc *service.Service) error {
				debt, err := svc.GetDebt(ctx, id)
				if err != nil {
					return fromService(err)
				}
				return a.printRecord(cmd, debt)
			})
		},
	}
}

func newDebtUpdateCmd(a *app) *cobra.Command {
	var payload types.DebtPayload
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace the parties and amount of a debt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withService(cmd, func(ctx context.Context, svc *service.Service) error {
				debt, err := svc.UpdateDebt(ctx, id, payload)
				if err != nil {
					return fromService(err)
				}
				return a.printRecord(cmd, debt)
			})
		},
	}
	debtPayloadFlags(cmd, &payload)
	return cmd
}
