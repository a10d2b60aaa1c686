package main

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/fd1az/aptos-dex/business/swap/app"
	swapDI "github.com/fd1az/aptos-dex/business/swap/di"
	swapdomain "github.com/fd1az/aptos-dex/business/swap/domain"
	"github.com/fd1az/aptos-dex/internal/apperror"
	"github.com/fd1az/aptos-dex/internal/asset"
)

func newLiquidityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "liquidity",
		Short: "Inspect and manage pool liquidity",
	}
	cmd.AddCommand(newReservesCmd(), newAddLiquidityCmd(), newRemoveLiquidityCmd())
	return cmd
}

// pair resolves the first two args as tokens.
func pair(a *application, args []string) (*asset.Token, *asset.Token, error) {
	x, err := resolveToken(a.mono.Registry(), args[0])
	if err != nil {
		return nil, nil, err
	}
	y, err := resolveToken(a.mono.Registry(), args[1])
	if err != nil {
		return nil, nil, err
	}
	return x, y, nil
}

func newReservesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reserves <tokenA> <tokenB>",
		Short: "Show pool reserves and the implied price",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			a, err := bootstrap(ctx, bootOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			x, y, err := pair(a, args)
			if err != nil {
				return err
			}

			stop := startSpinner("Reading pool...")
			r, err := swapDI.GetLiquidity(a.mono.Services()).Reserves(ctx, x, y)
			stop()
			if err != nil {
				return err
			}

			resA, resB, price := decimal.Zero, decimal.Zero, decimal.Zero
			if !r.Empty() {
				resA = asset.NewAmount(x, r.A).ToDecimal()
				resB = asset.NewAmount(y, r.B).ToDecimal()
				price = resB.DivRound(resA, swapdomain.Places)
			}

			if flags.jsonOutput {
				printJSON(map[string]any{
					"tokenA":   x.Symbol(),
					"tokenB":   y.Symbol(),
					"reserveA": resA.String(),
					"reserveB": resB.String(),
					"price":    swapdomain.Fixed6(price),
				})
				return nil
			}

			fmt.Printf("\n  %s/%s pool\n\n", x.Symbol(), y.Symbol())
			fmt.Printf("  %-6s %s\n", x.Symbol(), resA.String())
			fmt.Printf("  %-6s %s\n", y.Symbol(), resB.String())
			if r.Empty() {
				fmt.Println("\n  Pool has no liquidity yet.")
			} else {
				fmt.Printf("\n  1 %s = %s %s\n", x.Symbol(), swapdomain.Fixed6(price), y.Symbol())
			}
			fmt.Println()
			return nil
		},
	}
}

func newAddLiquidityCmd() *cobra.Command {
	var noConfirm bool

	cmd := &cobra.Command{
		Use:   "add <tokenA> <tokenB> <amountA> [amountB]",
		Short: "Deposit both tokens into a pool",
		Long: `Deposit both tokens into a pool. When amountB is omitted it is derived
from the current pool ratio.

Examples:
  aptos-dex liquidity add APT USDC 10 100
  aptos-dex liquidity add APT USDC 10`,
		Args: cobra.RangeArgs(3, 4),
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

			x, y, err := pair(a, args)
			if err != nil {
				return err
			}
			liquidity := swapDI.GetLiquidity(a.mono.Services())

			amountA := args[2]
			amountB := ""
			if len(args) == 4 {
				amountB = args[3]
			} else if amountB, err = ratioAmount(ctx, liquidity, x, y, amountA); err != nil {
				return err
			}

			if !flags.jsonOutput && !noConfirm &&
				!confirm(fmt.Sprintf("Add %s %s and %s %s to the pool?", amountA, x.Symbol(), amountB, y.Symbol())) {
				fmt.Println("\nCancelled.")
				return nil
			}

			stop := startSpinner("Waiting for wallet and confirmation...")
			outcome, err := liquidity.Add(ctx, x, y, amountA, amountB)
			stop()
			return reportOutcome(outcome, err)
		},
	}
	cmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "Skip confirmation prompt")
	return cmd
}

func newRemoveLiquidityCmd() *cobra.Command {
	var noConfirm bool

	cmd := &cobra.Command{
		Use:   "remove <tokenA> <tokenB> <lpAmount>",
		Short: "Burn LP tokens and withdraw both sides",
		Args:  cobra.ExactArgs(3),
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

			x, y, err := pair(a, args)
			if err != nil {
				return err
			}

			if !flags.jsonOutput && !noConfirm &&
				!confirm(fmt.Sprintf("Remove %s LP from the %s/%s pool?", args[2], x.Symbol(), y.Symbol())) {
				fmt.Println("\nCancelled.")
				return nil
			}

			stop := startSpinner("Waiting for wallet and confirmation...")
			outcome, err := swapDI.GetLiquidity(a.mono.Services()).Remove(ctx, x, y, args[2])
			stop()
			return reportOutcome(outcome, err)
		},
	}
	cmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "Skip confirmation prompt")
	return cmd
}

func ratioAmount(ctx context.Context, l *app.Liquidity, x, y *asset.Token, amountA string) (string, error) {
	amt, err := decimal.NewFromString(amountA)
	if err != nil {
		return "", apperror.Validation(apperror.CodeInvalidAmount, amountA)
	}
	r, err := l.Reserves(ctx, x, y)
	if err != nil {
		return "", err
	}
	b, err := app.QuoteAmountB(x, y, amt, r)
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

func reportOutcome(outcome *swapdomain.Outcome, err error) error {
	if flags.jsonOutput {
		if outcome != nil {
			printJSON(outcome)
		}
		return err
	}
	displayOutcome(outcome)
	return err
}
