// Package di contains dependency injection tokens for the pricing context.
package di

import (
	"github.com/fd1az/aptos-dex/business/pricing/app"
	"github.com/fd1az/aptos-dex/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Oracle = di.NewToken[*app.Oracle]("pricing.Oracle")
)

// Private dependency tokens - internal to pricing module
var (
	PriceFeed  = di.NewToken[app.PriceFeed]("pricing:priceFeed")
	PriceStore = di.NewToken[app.PriceStore]("pricing:priceStore")
)

// Helper functions for type-safe access
func GetOracle(c di.ServiceRegistry) *app.Oracle {
	return di.GetToken(c, Oracle)
}

func GetPriceFeed(c di.ServiceRegistry) app.PriceFeed {
	return di.GetToken(c, PriceFeed)
}

func GetPriceStore(c di.ServiceRegistry) app.PriceStore {
	return di.GetToken(c, PriceStore)
}
