// Package pricing implements the USD price oracle bounded context.
package pricing

import (
	"context"
	"time"

	"github.com/fd1az/aptos-dex/business/pricing/app"
	pricingDI "github.com/fd1az/aptos-dex/business/pricing/di"
	"github.com/fd1az/aptos-dex/business/pricing/infra/coingecko"
	"github.com/fd1az/aptos-dex/business/pricing/infra/memstore"
	"github.com/fd1az/aptos-dex/business/pricing/infra/redisstore"
	"github.com/fd1az/aptos-dex/internal/config"
	"github.com/fd1az/aptos-dex/internal/di"
	"github.com/fd1az/aptos-dex/internal/logger"
	"github.com/fd1az/aptos-dex/internal/monolith"
)

// Module implements the pricing bounded context.
type Module struct{}

// RegisterServices registers all pricing services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register PriceFeed (CoinGecko) - private dependency
	di.RegisterToken(c, pricingDI.PriceFeed, func(sr di.ServiceRegistry) app.PriceFeed {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		feedCfg := coingecko.DefaultConfig()
		feedCfg.BaseURL = cfg.PriceFeed.BaseURL
		feedCfg.Currency = cfg.PriceFeed.Currency
		feedCfg.APIKey = cfg.PriceFeed.APIKey
		feedCfg.RequestsPerMinute = cfg.PriceFeed.RequestsPerMinute

		feed, err := coingecko.New(feedCfg, log)
		if err != nil {
			panic("failed to create price feed: " + err.Error())
		}
		return feed
	})

	// Register PriceStore - Redis when configured, memory otherwise
	di.RegisterToken(c, pricingDI.PriceStore, func(sr di.ServiceRegistry) app.PriceStore {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		retention := 2 * cfg.PriceFeed.CacheTTL
		if cfg.PriceFeed.RedisAddr != "" {
			return redisstore.New(redisstore.Config{
				Addr:      cfg.PriceFeed.RedisAddr,
				Password:  cfg.PriceFeed.RedisPassword,
				DB:        cfg.PriceFeed.RedisDB,
				Retention: retention,
			}, log)
		}
		return memstore.New(retention)
	})

	// Register Oracle (public - exposed to other modules)
	di.RegisterToken(c, pricingDI.Oracle, func(sr di.ServiceRegistry) *app.Oracle {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		oracle, err := app.NewOracle(
			pricingDI.GetPriceFeed(sr),
			pricingDI.GetPriceStore(sr),
			app.OracleConfig{
				TTL:         cfg.PriceFeed.CacheTTL,
				MaxAttempts: cfg.PriceFeed.MaxAttempts,
				RetryDelay:  cfg.PriceFeed.RetryDelay,
			},
			log,
		)
		if err != nil {
			panic("failed to create price oracle: " + err.Error())
		}
		return oracle
	})

	return nil
}

// Startup checks the shared cache and registers cleanup.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	store := pricingDI.GetPriceStore(mono.Services())
	if pinger, ok := store.(interface{ Ping(context.Context) error }); ok {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := pinger.Ping(pingCtx); err != nil {
			log.Warn(ctx, "redis price cache unreachable, prices will not be shared", "error", err)
		}
	}
	if closer, ok := store.(interface{ Close() error }); ok {
		mono.OnClose(closer.Close)
	}

	log.Info(ctx, "pricing module started")
	return nil
}
