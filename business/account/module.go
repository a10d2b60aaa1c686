// Package account implements balances and transaction history for the connected account.
package account

import (
	"context"

	"github.com/fd1az/aptos-dex/business/account/app"
	accountDI "github.com/fd1az/aptos-dex/business/account/di"
	chainDI "github.com/fd1az/aptos-dex/business/chain/di"
	walletDI "github.com/fd1az/aptos-dex/business/wallet/di"
	walletdomain "github.com/fd1az/aptos-dex/business/wallet/domain"
	"github.com/fd1az/aptos-dex/internal/asset"
	"github.com/fd1az/aptos-dex/internal/config"
	"github.com/fd1az/aptos-dex/internal/di"
	"github.com/fd1az/aptos-dex/internal/logger"
	"github.com/fd1az/aptos-dex/internal/monolith"
)

// Module implements the account bounded context.
type Module struct{}

// RegisterServices registers the refresher and history reader.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, accountDI.Refresher, func(sr di.ServiceRegistry) *app.Refresher {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		registry := sr.Get("registry").(*asset.Registry)

		return app.NewRefresher(chainDI.GetNode(sr), registry, cfg.Balances.PollInterval, log)
	})

	di.RegisterToken(c, accountDI.History, func(sr di.ServiceRegistry) *app.History {
		cfg := sr.Get("config").(*config.Config)
		return app.NewHistory(chainDI.GetNode(sr), cfg.Balances.HistoryLimit)
	})

	return nil
}

// Startup ties the refresher to wallet sessions: a connect starts polling
// the account, a disconnect zeroes the balances.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	refresher := accountDI.GetRefresher(mono.Services())
	network := mono.Config().Network.Name

	unsubscribe := walletDI.GetManager(mono.Services()).Subscribe(func(ev walletdomain.Event) {
		switch ev.Type {
		case walletdomain.EventConnected:
			if ev.Account.Address != "" {
				refresher.Watch(ctx, ev.Account.Address, network)
			}
		case walletdomain.EventDisconnected:
			refresher.Reset()
		}
	})

	mono.OnClose(func() error {
		unsubscribe()
		return refresher.Close()
	})

	log.Info(ctx, "account module started")
	return nil
}
