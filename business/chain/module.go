// Package chain implements the Aptos node bounded context.
package chain

import (
	"context"

	"github.com/fd1az/aptos-dex/business/chain/app"
	chainDI "github.com/fd1az/aptos-dex/business/chain/di"
	"github.com/fd1az/aptos-dex/business/chain/infra/aptos"
	"github.com/fd1az/aptos-dex/business/chain/infra/faucet"
	"github.com/fd1az/aptos-dex/internal/config"
	"github.com/fd1az/aptos-dex/internal/di"
	"github.com/fd1az/aptos-dex/internal/logger"
	"github.com/fd1az/aptos-dex/internal/monolith"
	"github.com/fd1az/aptos-dex/internal/notify"
)

// Module implements the chain bounded context.
type Module struct{}

// RegisterServices registers all chain services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, chainDI.Node, func(sr di.ServiceRegistry) app.Node {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		nodeCfg := aptos.DefaultConfig(cfg.Network.NodeURL)
		nodeCfg.FallbackURL = cfg.Network.FallbackNodeURL
		if cfg.Network.RequestTimeout > 0 {
			nodeCfg.Timeout = cfg.Network.RequestTimeout
		}
		client, err := aptos.New(nodeCfg, log)
		if err != nil {
			panic("failed to create aptos node client: " + err.Error())
		}
		return client
	})

	di.RegisterToken(c, chainDI.Faucet, func(sr di.ServiceRegistry) app.Faucet {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		client, err := faucet.New(cfg.Network.FaucetURL, nil, log)
		if err != nil {
			panic("failed to create faucet client: " + err.Error())
		}
		return client
	})

	di.RegisterToken(c, chainDI.NetworkCheck, func(sr di.ServiceRegistry) *app.NetworkCheck {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		notifier := sr.Get("notifier").(notify.Notifier)

		return app.NewNetworkCheck(chainDI.GetNode(sr), cfg.Network.Name, cfg.Network.ChainID, notifier, log)
	})

	return nil
}

// Startup checks that the node serves the configured network.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	info, err := chainDI.GetNetworkCheck(mono.Services()).Check(ctx)
	if err != nil {
		// Mismatch is surfaced to the user; unreachable nodes recover later.
		log.Warn(ctx, "network check failed", "error", err)
	} else {
		log.Info(ctx, "chain module started",
			"network", mono.Config().Network.Name,
			"chain_id", info.ChainID,
			"ledger_version", uint64(info.LedgerVersion))
	}
	return nil
}
