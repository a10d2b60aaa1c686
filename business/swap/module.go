// Package swap implements quoting, swap submission and liquidity.
package swap

import (
	"context"

	accountDI "github.com/fd1az/aptos-dex/business/account/di"
	chainDI "github.com/fd1az/aptos-dex/business/chain/di"
	pricingDI "github.com/fd1az/aptos-dex/business/pricing/di"
	"github.com/fd1az/aptos-dex/business/swap/app"
	swapDI "github.com/fd1az/aptos-dex/business/swap/di"
	"github.com/fd1az/aptos-dex/business/swap/domain"
	"github.com/fd1az/aptos-dex/business/swap/infra/kafka"
	"github.com/fd1az/aptos-dex/business/swap/infra/onchain"
	walletDI "github.com/fd1az/aptos-dex/business/wallet/di"
	"github.com/fd1az/aptos-dex/internal/config"
	"github.com/fd1az/aptos-dex/internal/di"
	"github.com/fd1az/aptos-dex/internal/logger"
	"github.com/fd1az/aptos-dex/internal/monolith"
	"github.com/fd1az/aptos-dex/internal/notify"
)

// Module implements the swap bounded context.
type Module struct{}

// SubmitterConfig maps configuration onto the submitter settings.
func SubmitterConfig(cfg *config.Config) app.SubmitterConfig {
	return app.SubmitterConfig{
		ContractAddress: cfg.Contract.Address,
		Module:          cfg.Contract.Module,
		SwapFunction:    cfg.Contract.SwapFunction,
		Network:         cfg.Network.Name,
		ExplorerURL:     cfg.Network.ExplorerURL,
		ConfirmTimeout:  cfg.Swap.ConfirmTimeout,
		RefreshDelay:    cfg.Swap.RefreshDelay,
	}
}

// RegisterServices registers all swap services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register reserve reader - private dependency
	di.RegisterToken(c, swapDI.Reserves, func(sr di.ServiceRegistry) app.ReserveReader {
		cfg := sr.Get("config").(*config.Config)
		return onchain.NewReserveReader(chainDI.GetNode(sr), cfg.Contract.FunctionID("get_reserves"))
	})

	// Register event publisher - Kafka when brokers are configured
	di.RegisterToken(c, swapDI.Publisher, func(sr di.ServiceRegistry) app.EventPublisher {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		if !cfg.Events.Enabled() {
			return app.NopPublisher{}
		}
		return kafka.New(cfg.Events.Brokers, cfg.Events.Topic, log)
	})

	di.RegisterToken(c, swapDI.Estimator, func(sr di.ServiceRegistry) *app.Estimator {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		var reserves app.ReserveReader
		if cfg.Contract.Address != "" {
			reserves = swapDI.GetReserves(sr)
		}
		return app.NewEstimator(pricingDI.GetOracle(sr), reserves, app.EstimatorConfig{
			FeeRateBps: cfg.Contract.FeeRateBps,
			Model:      domain.Model(cfg.Swap.QuoteModel),
		}, log)
	})

	di.RegisterToken(c, swapDI.Session, func(sr di.ServiceRegistry) *app.Session {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		notifier := sr.Get("notifier").(notify.Notifier)

		return app.NewSession(swapDI.GetEstimator(sr), cfg.Swap.QuoteDebounce, notifier, log)
	})

	di.RegisterToken(c, swapDI.Submitter, func(sr di.ServiceRegistry) *app.Submitter {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		notifier := sr.Get("notifier").(notify.Notifier)

		return app.NewSubmitter(
			walletDI.GetManager(sr),
			chainDI.GetNode(sr),
			notifier,
			swapDI.GetPublisher(sr),
			accountDI.GetRefresher(sr),
			SubmitterConfig(cfg),
			log,
		)
	})

	di.RegisterToken(c, swapDI.Liquidity, func(sr di.ServiceRegistry) *app.Liquidity {
		cfg := sr.Get("config").(*config.Config)
		return app.NewLiquidity(swapDI.GetReserves(sr), swapDI.GetSubmitter(sr), SubmitterConfig(cfg))
	})

	return nil
}

// Startup registers cleanup for the session and the event publisher.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	cfg := mono.Config()

	mono.OnClose(swapDI.GetSession(mono.Services()).Close)
	if closer, ok := swapDI.GetPublisher(mono.Services()).(interface{ Close() error }); ok {
		mono.OnClose(closer.Close)
	}

	model := cfg.Swap.QuoteModel
	if cfg.Contract.Address == "" {
		log.Warn(ctx, "no swap contract configured, swaps submit a demo transfer")
		model = string(domain.ModelOracle)
	}
	log.Info(ctx, "swap module started", "quote_model", model, "fee_bps", cfg.Contract.FeeRateBps)
	return nil
}
