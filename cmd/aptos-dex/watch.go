package main

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	accountDI "github.com/fd1az/aptos-dex/business/account/di"
	accountdomain "github.com/fd1az/aptos-dex/business/account/domain"
	chainDI "github.com/fd1az/aptos-dex/business/chain/di"
	pricingDI "github.com/fd1az/aptos-dex/business/pricing/di"
	swapapp "github.com/fd1az/aptos-dex/business/swap/app"
	swapDI "github.com/fd1az/aptos-dex/business/swap/di"
	swapdomain "github.com/fd1az/aptos-dex/business/swap/domain"
	"github.com/fd1az/aptos-dex/business/wallet"
	walletDI "github.com/fd1az/aptos-dex/business/wallet/di"
	walletdomain "github.com/fd1az/aptos-dex/business/wallet/domain"
	"github.com/fd1az/aptos-dex/internal/apperror"
	"github.com/fd1az/aptos-dex/internal/asset"
	"github.com/fd1az/aptos-dex/pkg/ui"
)

const (
	nodeProbeInterval  = 15 * time.Second
	priceFetchInterval = 30 * time.Second
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "watch",
		Aliases: []string{"ui"},
		Short:   "Open the interactive swap dashboard",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()
			return runTUI(ctx)
		},
	}
}

// tuiBackend adapts the services to the dashboard. Calls made before the
// modules are up fail with SERVICE_UNAVAILABLE.
type tuiBackend struct {
	app atomic.Pointer[application]
}

func (b *tuiBackend) ready() (*application, error) {
	a := b.app.Load()
	if a == nil {
		return nil, apperror.New(apperror.CodeServiceUnavailable, apperror.WithContext("still starting"))
	}
	return a, nil
}

func (b *tuiBackend) SetQuoteInput(req swapdomain.QuoteRequest) {
	if a, err := b.ready(); err == nil {
		swapDI.GetSession(a.mono.Services()).SetInput(req)
	}
}

func (b *tuiBackend) Swap(ctx context.Context, req swapdomain.SwapRequest) (*swapdomain.Outcome, error) {
	a, err := b.ready()
	if err != nil {
		return nil, err
	}
	return swapDI.GetSubmitter(a.mono.Services()).Swap(ctx, req)
}

func (b *tuiBackend) ConnectWallet(ctx context.Context) error {
	a, err := b.ready()
	if err != nil {
		return err
	}
	_, err = a.connectWallet(ctx)
	return err
}

func (b *tuiBackend) RefreshBalances(ctx context.Context) error {
	a, err := b.ready()
	if err != nil {
		return err
	}
	_, err = accountDI.GetRefresher(a.mono.Services()).Refresh(ctx)
	return err
}

func (b *tuiBackend) History(ctx context.Context, address string) ([]accountdomain.TxRecord, error) {
	a, err := b.ready()
	if err != nil {
		return nil, err
	}
	return accountDI.GetHistory(a.mono.Services()).Recent(ctx, address)
}

func runTUI(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	startSignal := make(chan struct{}, 1)
	ui.OnStartModules = func() {
		select {
		case startSignal <- struct{}{}:
		default:
		}
	}

	backend := &tuiBackend{}
	opts := ui.Options{
		Network:  cfg.Network.Name,
		Tokens:   asset.DefaultRegistry().ForNetwork(cfg.Network.Name).All(),
		Slippage: cfg.Contract.DefaultSlippageDecimal(),
		Backend:  backend,
	}

	errCh := make(chan error, 1)
	go func() {
		select {
		case <-startSignal:
		case <-ctx.Done():
			errCh <- nil
			return
		}

		ui.Send(ui.StartupMsg{Step: "node", Status: "connecting"})
		a, err := bootstrap(ctx, bootOptions{})
		if err != nil {
			ui.Send(ui.StartupMsg{Step: "node", Status: "failed", Err: err})
			ui.Send(ui.NodeStatusMsg{Connected: false})
			errCh <- err
			return
		}
		defer a.Close()
		backend.app.Store(a)

		unsubscribe := subscribeUI(a)
		defer unsubscribe()

		go probeNode(ctx, a)
		go pollPrices(ctx, a)

		if _, ok := walletDI.GetManager(a.mono.Services()).Selected(); ok && cfg.Wallet.Kind != wallet.KindNone {
			ui.Send(ui.StartupMsg{Step: "wallet", Status: "connecting"})
			if _, err := a.connectWallet(ctx); err != nil {
				ui.Send(ui.StartupMsg{Step: "wallet", Status: "failed", Err: err})
			}
		}

		<-ctx.Done()
		errCh <- nil
	}()

	runErr := ui.Run(opts)

	// Quitting the dashboard stops the modules too.
	cancel()
	err = <-errCh
	if runErr != nil {
		return fmt.Errorf("TUI error: %w", runErr)
	}
	return err
}

// subscribeUI forwards service events to the dashboard.
func subscribeUI(a *application) func() {
	sr := a.mono.Services()

	unsubs := []func(){
		walletDI.GetManager(sr).Subscribe(func(ev walletdomain.Event) {
			ui.Send(ui.WalletMsg{Event: ev})
		}),
		accountDI.GetRefresher(sr).Subscribe(func(s accountdomain.Snapshot) {
			ui.Send(ui.BalancesMsg{Snapshot: s})
		}),
		swapDI.GetSession(sr).Subscribe(func(u swapapp.QuoteUpdate) {
			ui.Send(ui.QuoteMsg{Update: u})
		}),
	}

	notes, cancel := a.notifications.Subscribe()
	done := make(chan struct{})
	go func() {
		for {
			select {
			case n, ok := <-notes:
				if !ok {
					return
				}
				ui.Send(ui.NotificationMsg{Notification: n})
			case <-done:
				return
			}
		}
	}()

	return func() {
		for _, u := range unsubs {
			u()
		}
		close(done)
		cancel()
	}
}

func probeNode(ctx context.Context, a *application) {
	node := chainDI.GetNode(a.mono.Services())
	ticker := time.NewTicker(nodeProbeInterval)
	defer ticker.Stop()

	for {
		probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		start := time.Now()
		info, err := node.LedgerInfo(probeCtx)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			a.log.Warn(ctx, "ledger probe failed", "error", err)
			ui.Send(ui.NodeStatusMsg{Connected: false})
		} else {
			ui.Send(ui.NodeStatusMsg{
				Connected:     true,
				Latency:       time.Since(start),
				LedgerVersion: uint64(info.LedgerVersion),
			})
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func pollPrices(ctx context.Context, a *application) {
	oracle := pricingDI.GetOracle(a.mono.Services())
	symbols := a.mono.Registry().Symbols()
	ticker := time.NewTicker(priceFetchInterval)
	defer ticker.Stop()

	first := true
	for {
		if first {
			ui.Send(ui.StartupMsg{Step: "prices", Status: "connecting"})
		}
		prices, err := oracle.GetPrices(ctx, symbols...)
		switch {
		case err == nil:
			ui.Send(ui.PricesMsg{Prices: prices})
			if first {
				ui.Send(ui.StartupMsg{Step: "prices", Status: "done"})
			}
		case ctx.Err() != nil:
			return
		case first:
			ui.Send(ui.StartupMsg{Step: "prices", Status: "failed", Err: err})
		default:
			a.log.Warn(ctx, "price refresh failed", "error", err)
		}
		first = false

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
