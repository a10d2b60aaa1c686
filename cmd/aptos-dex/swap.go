package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	swapDI "github.com/fd1az/aptos-dex/business/swap/di"
	swapdomain "github.com/fd1az/aptos-dex/business/swap/domain"
	"github.com/fd1az/aptos-dex/internal/apperror"
)

func newSwapCmd() *cobra.Command {
	var (
		slippage  string
		noConfirm bool
	)

	cmd := &cobra.Command{
		Use:   "swap <amount> <from> [to] <to>",
		Short: "Quote and submit a swap through the configured wallet",
		Long: `Quote a swap, ask for confirmation and submit it with the configured
wallet. The minimum received is enforced on chain.

Examples:
  aptos-dex swap 1.5 APT USDC
  aptos-dex swap 100 USDC to APT --slippage 1 --yes
  aptos-dex swap 1 APT USDC --wallet bridge`,
		Args: pairArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.jsonOutput && !noConfirm {
				return apperror.Validation(apperror.CodeInvalidInput, "--json requires --yes")
			}

			ctx, cancel := signalContext()
			defer cancel()

			a, err := bootstrap(ctx, bootOptions{console: true})
			if err != nil {
				return err
			}
			defer a.Close()

			q, err := quote(ctx, a, args, slippage)
			if err != nil {
				return err
			}

			if !flags.jsonOutput {
				displayQuote(q)
				if a.cfg.Contract.Address == "" {
					color.Yellow("No swap contract configured: a demo transfer will be submitted instead.\n\n")
				}
				if !noConfirm && !confirm("Submit this swap?") {
					fmt.Println("\nSwap cancelled.")
					return nil
				}
			}

			stop := startSpinner("Waiting for wallet and confirmation...")
			outcome, err := swapDI.GetSubmitter(a.mono.Services()).Swap(ctx, swapdomain.SwapRequestFromQuote(q))
			stop()

			if flags.jsonOutput {
				if outcome != nil {
					printJSON(map[string]any{"quote": q, "outcome": outcome})
				}
				return err
			}
			displayOutcome(outcome)
			return err
		},
	}
	cmd.Flags().StringVarP(&slippage, "slippage", "s", "", "Slippage tolerance in percent (default from config)")
	cmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "Skip confirmation prompt")
	return cmd
}
