package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"zipper.com/internal/application/usecase"
	"zipper.com/internal/domain/entity"
)

var referencesBalances []string //nolint:gochecknoglobals

var referencesCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "references <address>...",
	Short: "Build read-only account references for a verify instruction.",
	Long: "Prints the account references for the given base58 addresses, in order. " +
		"With --balances, prints a complete verify instruction instead.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addrs, err := entity.ParseAddresses(args)
		if err != nil {
			return err
		}

		var out any = usecase.BuildReferences(addrs)
		if len(referencesBalances) > 0 {
			balances, err := parseBalances(referencesBalances)
			if err != nil {
				return err
			}
			out = usecase.NewVerifyInstruction(addrs, balances)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func parseBalances(values []string) ([]uint64, error) {
	balances := make([]uint64, len(values))
	for i, v := range values {
		b, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: balance %d: %q", entity.ErrInvalidBalanceAmount, i, v)
		}
		balances[i] = b
	}
	return balances, nil
}

func init() { //nolint:gochecknoinits
	referencesCmd.Flags().StringSliceVar(&referencesBalances, "balances", nil,
		"expected minimum balances, positionally matched with the addresses")
	rootCmd.AddCommand(referencesCmd)
}
