package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	accountDI "github.com/fd1az/aptos-dex/business/account/di"
	chainDI "github.com/fd1az/aptos-dex/business/chain/di"
	pricingDI "github.com/fd1az/aptos-dex/business/pricing/di"
	"github.com/fd1az/aptos-dex/internal/apperror"
	"github.com/fd1az/aptos-dex/internal/asset"
)

// resolveAddress returns the normalized argument, or the connected
// wallet's address when no argument is given.
func resolveAddress(ctx context.Context, a *application, args []string) (string, error) {
	if len(args) > 0 {
		addr, err := asset.NormalizeAddress(args[0])
		if err != nil {
			return "", apperror.Validation(apperror.CodeInvalidInput, args[0])
		}
		return addr, nil
	}
	acct, err := a.connectWallet(ctx)
	if err != nil {
		return "", err
	}
	return acct.Address, nil
}

func newBalancesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balances [address]",
		Short: "Show token balances of an address or the connected wallet",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			a, err := bootstrap(ctx, bootOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			address, err := resolveAddress(ctx, a, args)
			if err != nil {
				return err
			}

			stop := startSpinner("Fetching balances...")
			snap, err := accountDI.GetRefresher(a.mono.Services()).FetchAll(ctx, address)
			if err != nil {
				stop()
				return err
			}
			prices, perr := pricingDI.GetOracle(a.mono.Services()).GetPrices(ctx, a.mono.Registry().Symbols()...)
			stop()
			if perr != nil {
				a.log.Warn(ctx, "prices unavailable for balance valuation", "error", perr)
			}

			if flags.jsonOutput {
				out := map[string]any{"address": snap.Address, "network": a.cfg.Network.Name, "balances": snap.Displays()}
				printJSON(out)
				return nil
			}

			fmt.Printf("\nBalances of %s on %s:\n\n", color.CyanString(address), a.cfg.Network.Name)
			total := decimal.Zero
			for _, b := range snap.Balances {
				line := fmt.Sprintf("  %-6s %22s", b.Token.Symbol(), b.Display)
				if p, ok := prices[b.Token.Symbol()]; ok && p.IsPositive() {
					v := b.Amount.ToDecimal().Mul(p)
					total = total.Add(v)
					line += color.HiBlackString("  $%s", v.StringFixed(2))
				}
				fmt.Println(line)
			}
			if total.IsPositive() {
				fmt.Printf("  %s\n  %-6s %22s  $%s\n", strings.Repeat("─", 40), "Total", "", total.StringFixed(2))
			}
			fmt.Println()
			return nil
		},
	}
}

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history [address]",
		Short: "List recent DEX transactions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			a, err := bootstrap(ctx, bootOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			address, err := resolveAddress(ctx, a, args)
			if err != nil {
				return err
			}

			stop := startSpinner("Fetching transactions...")
			records, err := accountDI.GetHistory(a.mono.Services()).Recent(ctx, address)
			stop()
			if err != nil {
				return err
			}

			if flags.jsonOutput {
				printJSON(records)
				return nil
			}
			if len(records) == 0 {
				fmt.Println("\nNo DEX transactions yet.")
				return nil
			}

			fmt.Println()
			for _, r := range records {
				status := color.GreenString("%-8s", r.Status)
				if r.Status != "success" {
					status = color.RedString("%-8s", r.Status)
				}
				fmt.Printf("  %s  %-17s %s  %s\n",
					r.Timestamp.Local().Format("2006-01-02 15:04:05"), r.Type, status, r.Hash)
			}
			fmt.Println()
			return nil
		},
	}
}

func newFaucetCmd() *cobra.Command {
	var amount string

	cmd := &cobra.Command{
		Use:   "faucet [address]",
		Short: "Fund an address with test APT",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			a, err := bootstrap(ctx, bootOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			if a.cfg.Network.FaucetURL == "" {
				return apperror.New(apperror.CodeConfigurationError,
					apperror.WithMessage(fmt.Sprintf("No faucet on %s.", a.cfg.Network.Name)))
			}

			address, err := resolveAddress(ctx, a, args)
			if err != nil {
				return err
			}
			amt, err := asset.ParseString(asset.APT, amount)
			if err != nil || amt.IsZero() || !amt.Raw().IsUint64() {
				return apperror.Validation(apperror.CodeInvalidAmount, amount)
			}

			stop := startSpinner("Requesting funds...")
			hashes, err := chainDI.GetFaucet(a.mono.Services()).Fund(ctx, address, amt.Raw().Uint64())
			stop()
			if err != nil {
				return err
			}

			if flags.jsonOutput {
				printJSON(map[string]any{"address": address, "amount": amount, "hashes": hashes})
				return nil
			}
			color.Green("\n✔ Funded %s with %s APT", address, amount)
			for _, h := range hashes {
				fmt.Printf("  %s\n", h)
			}
			fmt.Println()
			return nil
		},
	}
	cmd.Flags().StringVarP(&amount, "amount", "a", "1", "Amount of APT to request")
	return cmd
}
