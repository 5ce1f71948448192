package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/agriledger/internal/service"
	"github.com/mesh-intelligence/agriledger/pkg/types"
)

func newInsuranceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insurance",
		Short: "Purchase and show crop insurance policies",
	}
	cmd.AddCommand(newInsurancePurchaseCmd(a), newInsuranceGetCmd(a))
	return cmd
}

func newInsurancePurchaseCmd(a *app) *cobra.Command {
	var payload types.CropInsurancePayload
	cmd := &cobra.Command{
		Use:   "purchase",
		Short: "Purchase a crop insurance policy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd, func(ctx context.Context, svc *service.Service) error {
				policy, err := svc.PurchaseCropInsurance(ctx, payload)
				if err != nil {
					return fromService(err)
				}
				if policy == nil {
					return a.emptyResult(cmd, "crop insurance")
				}
				return a.printRecord(cmd, *policy)
			})
		},
	}
	cmd.Flags().StringVar(&payload.Farmer, "farmer", "", "insured farmer")
	cmd.Flags().StringVar(&payload.CropType, "crop-type", "", "insured crop")
	cmd.Flags().Uint64Var(&payload.CoverageAmount, "coverage", 0, "coverage amount")
	cmd.Flags().Uint64Var(&payload.CoverageStartDate, "start", 0, "coverage start date")
	cmd.Flags().Uint64Var(&payload.CoverageEndDate, "end", 0, "coverage end date")
	return cmd
}

func newInsuranceGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a crop insurance policy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withService(cmd, func(ctx context.Context, svc *service.Service) error {
				policy, err := svc.GetCropInsurance(ctx, id)
				if err != nil {
					return fromService(err)
				}
				return a.printRecord(cmd, policy)
			})
		},
	}
}
