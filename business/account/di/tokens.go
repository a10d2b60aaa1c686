// Package di contains dependency injection tokens for the account context.
package di

import (
	"github.com/fd1az/aptos-dex/business/account/app"
	"github.com/fd1az/aptos-dex/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Refresher = di.NewToken[*app.Refresher]("account.Refresher")
	History   = di.NewToken[*app.History]("account.History")
)

// Helper functions for type-safe access
func GetRefresher(c di.ServiceRegistry) *app.Refresher {
	return di.GetToken(c, Refresher)
}

func GetHistory(c di.ServiceRegistry) *app.History {
	return di.GetToken(c, History)
}
