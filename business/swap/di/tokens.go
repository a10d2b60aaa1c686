// Package di contains dependency injection tokens for the swap context.
package di

import (
	"github.com/fd1az/aptos-dex/business/swap/app"
	"github.com/fd1az/aptos-dex/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Estimator = di.NewToken[*app.Estimator]("swap.Estimator")
	Session   = di.NewToken[*app.Session]("swap.Session")
	Submitter = di.NewToken[*app.Submitter]("swap.Submitter")
	Liquidity = di.NewToken[*app.Liquidity]("swap.Liquidity")
)

// Private dependency tokens - internal to swap module
var (
	Reserves  = di.NewToken[app.ReserveReader]("swap:reserves")
	Publisher = di.NewToken[app.EventPublisher]("swap:publisher")
)

// Helper functions for type-safe access
func GetEstimator(c di.ServiceRegistry) *app.Estimator {
	return di.GetToken(c, Estimator)
}

func GetSession(c di.ServiceRegistry) *app.Session {
	return di.GetToken(c, Session)
}

func GetSubmitter(c di.ServiceRegistry) *app.Submitter {
	return di.GetToken(c, Submitter)
}

func GetLiquidity(c di.ServiceRegistry) *app.Liquidity {
	return di.GetToken(c, Liquidity)
}

func GetReserves(c di.ServiceRegistry) app.ReserveReader {
	return di.GetToken(c, Reserves)
}

func GetPublisher(c di.ServiceRegistry) app.EventPublisher {
	return di.GetToken(c, Publisher)
}
