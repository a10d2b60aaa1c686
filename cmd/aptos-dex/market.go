package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	pricingDI "github.com/fd1az/aptos-dex/business/pricing/di"
	swapDI "github.com/fd1az/aptos-dex/business/swap/di"
	swapdomain "github.com/fd1az/aptos-dex/business/swap/domain"
	"github.com/fd1az/aptos-dex/internal/apperror"
	"github.com/fd1az/aptos-dex/internal/asset"
)

func newTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "tokens",
		Aliases: []string{"list-tokens"},
		Short:   "List tokens available on the configured network",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			a, err := bootstrap(ctx, bootOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			tokens := a.mono.Registry().All()
			if flags.jsonOutput {
				out := make([]map[string]any, 0, len(tokens))
				for _, t := range tokens {
					out = append(out, tokenJSON(t))
				}
				printJSON(out)
				return nil
			}

			fmt.Printf("\nTokens on %s:\n\n", color.CyanString(a.cfg.Network.Name))
			fmt.Printf("  %-6s %-18s %-8s %-10s %s\n", "Symbol", "Name", "Decimals", "Verified", "Coin type")
			fmt.Printf("  %s\n", strings.Repeat("─", 90))
			for _, t := range tokens {
				verified := color.GreenString("yes")
				if !t.IsVerified() {
					verified = color.YellowString("no")
				}
				fmt.Printf("  %-6s %-18s %-8d %-19s %s\n", t.Symbol(), t.Name(), t.Decimals(), verified, t.CoinType())
			}
			fmt.Println()
			return nil
		},
	}
}

func tokenJSON(t *asset.Token) map[string]any {
	return map[string]any{
		"symbol":   t.Symbol(),
		"name":     t.Name(),
		"decimals": t.Decimals(),
		"coinType": t.CoinType().String(),
		"verified": t.IsVerified(),
		"logoUrl":  t.LogoURL(),
	}
}

func newPricesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prices [symbol...]",
		Short: "Show USD prices",
		Long: `Show USD prices from the configured price feed. Without arguments every
token on the network is priced.

Examples:
  aptos-dex prices
  aptos-dex prices APT USDC`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			a, err := bootstrap(ctx, bootOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			symbols := args
			if len(symbols) == 0 {
				symbols = a.mono.Registry().Symbols()
			}

			stop := startSpinner("Fetching prices...")
			prices, err := pricingDI.GetOracle(a.mono.Services()).GetPrices(ctx, symbols...)
			stop()
			if err != nil {
				return err
			}

			if flags.jsonOutput {
				out := make(map[string]string, len(prices))
				for sym, p := range prices {
					out[sym] = p.String()
				}
				printJSON(out)
				return nil
			}

			fmt.Println()
			for _, s := range symbols {
				sym := strings.ToUpper(s)
				fmt.Printf("  %-6s $%s\n", sym, prices[sym].StringFixed(4))
			}
			fmt.Println()
			return nil
		},
	}
}

func newQuoteCmd() *cobra.Command {
	var slippage string

	cmd := &cobra.Command{
		Use:   "quote <amount> <from> [to] <to>",
		Short: "Estimate a swap without submitting it",
		Long: `Estimate the output, minimum received, fee and price impact of a swap.

Examples:
  aptos-dex quote 1.5 APT USDC
  aptos-dex quote 100 USDC to APT --slippage 1`,
		Args: pairArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			a, err := bootstrap(ctx, bootOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			q, err := quote(ctx, a, args, slippage)
			if err != nil {
				return err
			}
			if flags.jsonOutput {
				printJSON(q)
				return nil
			}
			displayQuote(q)
			return nil
		},
	}
	cmd.Flags().StringVarP(&slippage, "slippage", "s", "", "Slippage tolerance in percent (default from config)")
	return cmd
}

// pairArgs accepts <amount> <from> <to> with an optional "to" before the
// output token.
func pairArgs(cmd *cobra.Command, args []string) error {
	switch {
	case len(args) == 3:
		return nil
	case len(args) == 4 && strings.EqualFold(args[2], "to"):
		return nil
	default:
		return fmt.Errorf("expected <amount> <from> [to] <to>, got %d args", len(args))
	}
}

// quote resolves args <amount> <from> [to] <to> and runs the estimator.
func quote(ctx context.Context, a *application, args []string, slippage string) (*swapdomain.Quote, error) {
	if len(args) == 4 {
		args = []string{args[0], args[1], args[3]}
	}
	registry := a.mono.Registry()
	in, err := resolveToken(registry, args[1])
	if err != nil {
		return nil, err
	}
	out, err := resolveToken(registry, args[2])
	if err != nil {
		return nil, err
	}
	slip, err := parseSlippage(slippage, a.cfg.Contract.DefaultSlippageDecimal())
	if err != nil {
		return nil, err
	}

	stop := startSpinner("Fetching quote...")
	q, err := swapDI.GetEstimator(a.mono.Services()).Quote(ctx, swapdomain.QuoteRequest{
		In:          in,
		Out:         out,
		Amount:      args[0],
		SlippagePct: slip,
	})
	stop()
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, apperror.Validation(apperror.CodeInvalidAmount, args[0])
	}
	return q, nil
}
