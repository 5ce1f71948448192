package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/agriledger/pkg/types"
)

// printRecord writes v as indented JSON in --json mode and as key: value
// lines otherwise.
func (a *app) printRecord(cmd *cobra.Command, v any) error {
	out := cmd.OutOrStdout()
	if a.jsonMode {
		return writeJSON(out, v)
	}
	switch r := v.(type) {
	case types.Debt:
		fmt.Fprintf(out, "id: %d\ndebtor: %s\ncreditor: %s\namount: %d\ncreated_at: %d\n",
			r.ID, r.Debtor, r.Creditor, r.Amount, r.CreatedAt)
	case types.Escrow:
		fmt.Fprintf(out, "debt_id: %d\namount: %d\ncreated_at: %d\n", r.DebtID, r.Amount, r.CreatedAt)
	case types.CropInsurance:
		fmt.Fprintf(out, "id: %d\nfarmer: %s\ncrop_type: %s\ncoverage_amount: %d\ncoverage_start_date: %d\ncoverage_end_date: %d\n",
			r.ID, r.Farmer, r.CropType, r.CoverageAmount, r.CoverageStartDate, r.CoverageEndDate)
	case types.InsuranceClaim:
		fmt.Fprintf(out, "claim_id: %d\ninsurance_id: %d\nclaim_amount: %d\nclaim_date: %d\n",
			r.ClaimID, r.InsuranceID, r.ClaimAmount, r.ClaimDate)
	default:
		return writeJSON(out, v)
	}
	return nil
}

// emptyResult reports an operation that produced no record. In --json mode
// the result is also printed as null.
func (a *app) emptyResult(cmd *cobra.Command, kind string) error {
	if a.jsonMode {
		fmt.Fprintln(cmd.OutOrStdout(), "null")
	}
	return userError(fmt.Errorf("no %s created: invalid input", kind))
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysError(fmt.Errorf("encode output: %w", err))
	}
	fmt.Fprintln(w, string(data))
	return nil
}

var errInvalidID = errors.New("id must be a non-negative integer")

// parseID parses a positional identifier argument.
func parseID(arg string) (uint64, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, userError(fmt.Errorf("%w: %q", errInvalidID, arg))
	}
	return id, nil
}
