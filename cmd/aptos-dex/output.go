package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/shopspring/decimal"

	swapdomain "github.com/fd1az/aptos-dex/business/swap/domain"
	"github.com/fd1az/aptos-dex/internal/apperror"
	"github.com/fd1az/aptos-dex/internal/asset"
)

// startSpinner shows suffix until the returned stop func is called. It is
// silent in JSON mode.
func startSpinner(suffix string) func() {
	if flags.jsonOutput {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + suffix
	s.Start()
	return s.Stop
}

// resolveToken looks up symbol in the network registry.
func resolveToken(registry *asset.Registry, symbol string) (*asset.Token, error) {
	t, ok := registry.BySymbol(symbol)
	if !ok {
		return nil, apperror.New(apperror.CodeTokenNotFound,
			apperror.WithContext(symbol),
			apperror.WithMessage(fmt.Sprintf("Unknown token %q. Try: aptos-dex tokens", symbol)))
	}
	return t, nil
}

func parseSlippage(s string, fallback decimal.Decimal) (decimal.Decimal, error) {
	if s == "" {
		return fallback, nil
	}
	d, err := decimal.NewFromString(strings.TrimSuffix(s, "%"))
	if err != nil {
		return decimal.Zero, apperror.Validation(apperror.CodeInvalidSlippage, s)
	}
	return d, nil
}

func displayQuote(q *swapdomain.Quote) {
	label := color.New(color.FgHiBlack).SprintFunc()
	in, out := q.In.Symbol(), q.Out.Symbol()

	fmt.Println()
	color.New(color.Bold).Printf("  %s %s → %s %s\n", q.InputAmount, in, q.OutputAmount, out)
	fmt.Println()
	fmt.Printf("  %s 1 %s = %s %s\n", label("Rate:          "), in, q.ExchangeRate, out)
	fmt.Printf("  %s %s %s (%s%% slippage)\n", label("Minimum:       "), q.MinimumReceived, out, q.SlippagePct)

	impact := q.PriceImpact + "%"
	if d, err := decimal.NewFromString(q.PriceImpact); err == nil && d.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		impact = color.YellowString(impact)
	}
	fmt.Printf("  %s %s\n", label("Price impact:  "), impact)
	fmt.Printf("  %s %s %s\n", label("Fee:           "), q.Fee, in)
	fmt.Printf("  %s %s (%s)\n", label("Route:         "), strings.Join(q.Route, " → "), q.Model)
	fmt.Println()
}

// displayOutcome prints transaction details. The summary itself reaches
// the user through the console notifier.
func displayOutcome(o *swapdomain.Outcome) {
	if o == nil {
		return
	}
	var status string
	switch o.Status {
	case swapdomain.StatusConfirmed:
		status = color.GreenString(string(o.Status))
	case swapdomain.StatusFailed:
		status = color.RedString(string(o.Status))
	default:
		status = color.YellowString(string(o.Status))
	}

	fmt.Println()
	fmt.Printf("  Status:   %s\n", status)
	if o.Hash != "" && o.Hash != swapdomain.UnresolvedHash {
		fmt.Printf("  Hash:     %s\n", o.Hash)
	}
	if o.VMStatus != "" {
		fmt.Printf("  VM:       %s\n", o.VMStatus)
	}
	if o.ExplorerURL != "" {
		fmt.Printf("  Explorer: %s\n", color.CyanString(o.ExplorerURL))
	}
	fmt.Println()
}

// confirm asks a yes/no question on stdin.
func confirm(question string) bool {
	fmt.Printf("%s [y/N]: ", question)
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}
