package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fd1az/aptos-dex/internal/apperror"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	verbose    bool
	jsonOutput bool
	wallet     string
}

var flags globalFlags

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "aptos-dex",
		Short: "Swap tokens and manage liquidity on an Aptos DEX",
		Long: `aptos-dex quotes and submits swaps against an Aptos DEX module, shows
wallet balances and history, and manages pool liquidity.

Examples:
  aptos-dex quote 1.5 APT USDC
  aptos-dex swap 1.5 APT USDC --slippage 1
  aptos-dex balances 0x1
  aptos-dex liquidity reserves APT USDC
  aptos-dex watch`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to configuration file")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Log to stderr at debug level")
	root.PersistentFlags().BoolVarP(&flags.jsonOutput, "json", "j", false, "Output in JSON format")
	root.PersistentFlags().StringVarP(&flags.wallet, "wallet", "w", "", "Wallet adapter override: none, local or bridge")

	root.AddCommand(
		newTokensCmd(),
		newPricesCmd(),
		newQuoteCmd(),
		newSwapCmd(),
		newBalancesCmd(),
		newHistoryCmd(),
		newLiquidityCmd(),
		newFaucetCmd(),
		newServeCmd(),
		newWatchCmd(),
		newVersionCmd(),
	)

	// Errors are printed here so every subcommand reports them the same way.
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		printError(err)
		return err
	})
	wrapRunE(root)
	return root
}

// wrapRunE prints the user message of any error a command returns.
func wrapRunE(cmd *cobra.Command) {
	for _, sub := range cmd.Commands() {
		wrapRunE(sub)
	}
	if cmd.RunE == nil {
		return
	}
	run := cmd.RunE
	cmd.RunE = func(c *cobra.Command, args []string) error {
		err := run(c, args)
		if err != nil {
			printError(err)
		}
		return err
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("aptos-dex %s (commit: %s, built: %s)\n", version, commit, buildDate)
		},
	}
}

func printError(err error) {
	if flags.jsonOutput {
		appErr := apperror.Wrap(err, apperror.CodeInternalError, "")
		printJSON(appErr.ToResponse())
		return
	}
	msg := err.Error()
	if apperror.IsAppError(err) {
		msg = apperror.UserMessage(err)
	}
	fmt.Fprintf(os.Stderr, "\n%s %s\n", color.RedString("Error:"), msg)
	if flags.verbose {
		fmt.Fprintf(os.Stderr, "  %v\n", err)
	}
	fmt.Fprintln(os.Stderr)
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode output: %v\n", err)
		return
	}
	fmt.Println(string(data))
}
