package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	accountDI "github.com/fd1az/aptos-dex/business/account/di"
	chainDI "github.com/fd1az/aptos-dex/business/chain/di"
	pricingDI "github.com/fd1az/aptos-dex/business/pricing/di"
	swapDI "github.com/fd1az/aptos-dex/business/swap/di"
	walletDI "github.com/fd1az/aptos-dex/business/wallet/di"
	"github.com/fd1az/aptos-dex/internal/health"
	"github.com/fd1az/aptos-dex/pkg/api"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with health and metrics endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			a, err := bootstrap(ctx, bootOptions{logOutput: os.Stderr, serveMetrics: true})
			if err != nil {
				return err
			}
			defer a.Close()

			if port == 0 {
				port = a.cfg.Server.Port
			}
			return serve(ctx, a, port)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "API port (default from config)")
	return cmd
}

func serve(ctx context.Context, a *application, port int) error {
	log := a.log
	sr := a.mono.Services()

	healthServer := health.NewServer(a.cfg.Server.HealthPort, version, log)
	registerHealthChecks(a, healthServer)
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	} else {
		log.Info(ctx, "health server started", "port", a.cfg.Server.HealthPort)
	}
	defer healthServer.Stop(context.Background())

	// A configured wallet is connected up front so balances are watched.
	if _, ok := walletDI.GetManager(sr).Selected(); ok {
		if acct, err := a.connectWallet(ctx); err != nil {
			log.Warn(ctx, "wallet connect failed, swaps will retry", "error", err)
		} else {
			log.Info(ctx, "wallet ready", "address", acct.Address)
		}
	}

	if a.cfg.App.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.Deps{
		Registry:        a.mono.Registry(),
		Prices:          pricingDI.GetOracle(sr),
		Quotes:          swapDI.GetEstimator(sr),
		Balances:        accountDI.GetRefresher(sr),
		History:         accountDI.GetHistory(sr),
		Swaps:           swapDI.GetSubmitter(sr),
		Reserves:        swapDI.GetLiquidity(sr),
		Notifications:   a.notifications,
		DefaultSlippage: a.cfg.Contract.DefaultSlippageDecimal(),
		Network:         a.cfg.Network.Name,
	}, log)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           otelhttp.NewHandler(router, "aptos-dex-api"),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "api server started", "port", port, "network", a.cfg.Network.Name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("api server: %w", err)
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func registerHealthChecks(a *application, s *health.Server) {
	sr := a.mono.Services()

	s.RegisterCheck("node", func(ctx context.Context) (bool, string) {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		info, err := chainDI.GetNode(sr).LedgerInfo(ctx)
		if err != nil {
			return false, err.Error()
		}
		return true, fmt.Sprintf("chain_id=%d ledger_version=%d", info.ChainID, uint64(info.LedgerVersion))
	})

	s.RegisterCheck("price_feed", func(ctx context.Context) (bool, string) {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		// Served from cache within the TTL.
		p, err := pricingDI.GetOracle(sr).GetPrice(ctx, "APT")
		if err != nil {
			return false, err.Error()
		}
		return true, "APT=" + p.String()
	})

	s.RegisterCheck("wallet", func(ctx context.Context) (bool, string) {
		w, ok := walletDI.GetManager(sr).Selected()
		switch {
		case !ok:
			return true, "none selected"
		case w.Connected():
			return true, w.Name() + " connected"
		default:
			return true, w.Name() + " disconnected"
		}
	})
}
