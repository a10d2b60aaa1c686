// Package di contains dependency injection tokens for the wallet context.
package di

import (
	"github.com/fd1az/aptos-dex/business/wallet/app"
	"github.com/fd1az/aptos-dex/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Manager = di.NewToken[*app.Manager]("wallet.Manager")
)

// Helper functions for type-safe access
func GetManager(c di.ServiceRegistry) *app.Manager {
	return di.GetToken(c, Manager)
}
