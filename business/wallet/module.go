// Package wallet implements the wallet adapters bounded context.
package wallet

import (
	"context"

	chainDI "github.com/fd1az/aptos-dex/business/chain/di"
	"github.com/fd1az/aptos-dex/business/wallet/app"
	walletDI "github.com/fd1az/aptos-dex/business/wallet/di"
	"github.com/fd1az/aptos-dex/business/wallet/infra/bridge"
	"github.com/fd1az/aptos-dex/business/wallet/infra/localkey"
	"github.com/fd1az/aptos-dex/internal/config"
	"github.com/fd1az/aptos-dex/internal/di"
	"github.com/fd1az/aptos-dex/internal/logger"
	"github.com/fd1az/aptos-dex/internal/monolith"
)

// Wallet kinds accepted in configuration.
const (
	KindNone   = "none"
	KindLocal  = "local"
	KindBridge = "bridge"
)

// Module implements the wallet bounded context.
type Module struct{}

// RegisterServices registers the wallet manager with every configured adapter.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, walletDI.Manager, func(sr di.ServiceRegistry) *app.Manager {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		mgr := app.NewManager(log)

		if cfg.Wallet.PrivateKey != "" {
			w, err := localkey.New(cfg.Wallet.PrivateKey, chainDI.GetNode(sr), localkey.Config{
				MaxGasAmount: cfg.Swap.MaxGasAmount,
				Expiry:       cfg.Swap.TxExpiry,
			}, log)
			if err != nil {
				log.Error(context.Background(), "local key wallet unavailable", "error", err)
			} else {
				mgr.Register(w)
			}
		}
		if cfg.Wallet.BridgeURL != "" {
			mgr.Register(bridge.New(cfg.Wallet.BridgeURL, log))
		}

		return mgr
	})

	return nil
}

// Startup selects the configured wallet. Connecting is left to the first
// operation that needs it.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	mgr := walletDI.GetManager(mono.Services())

	var name string
	switch mono.Config().Wallet.Kind {
	case KindLocal:
		name = localkey.Name
	case KindBridge:
		name = bridge.Name
	}
	if name != "" {
		if err := mgr.Select(name); err != nil {
			log.Warn(ctx, "configured wallet unavailable", "wallet", name, "error", err)
		}
	}

	mono.OnClose(func() error { return mgr.Disconnect(context.Background()) })

	log.Info(ctx, "wallet module started", "available", mgr.Names(), "selected", name)
	return nil
}
