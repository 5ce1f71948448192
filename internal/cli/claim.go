package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/agriledger/internal/service"
	"github.com/mesh-intelligence/agriledger/pkg/types"
)

func newClaimCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claim",
		Short: "Submit and show insurance claims",
	}
	cmd.AddCommand(newClaimSubmitCmd(a), newClaimGetCmd(a))
	return cmd
}

func newClaimSubmitCmd(a *app) *cobra.Command {
	var payload types.InsuranceClaimPayload
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a claim against a crop insurance policy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd, func(ctx context.Context, svc *service.Service) error {
				claim, err := svc.SubmitInsuranceClaim(ctx, payload)
				if err != nil {
					return fromService(err)
				}
				return a.printRecord(cmd, claim)
			})
		},
	}
	cmd.Flags().Uint64Var(&payload.InsuranceID, "insurance-id", 0, "policy the claim is filed against")
	cmd.Flags().Uint64Var(&payload.ClaimAmount, "amount", 0, "claimed amount")
	return cmd
}

func newClaimGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <claim-id>",
		Short: "Show an insurance claim",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withService(cmd, func(ctx context.Context, svc *service.Service) error {
				claim, err := svc.GetInsuranceClaim(ctx, id)
				if err != nil {
					return fromService(err)
				}
				return a.printRecord(cmd, claim)
			})
		},
	}
}
