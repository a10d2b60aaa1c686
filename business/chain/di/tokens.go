// Package di contains dependency injection tokens for the chain context.
package di

import (
	"github.com/fd1az/aptos-dex/business/chain/app"
	"github.com/fd1az/aptos-dex/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Node         = di.NewToken[app.Node]("chain.Node")
	Faucet       = di.NewToken[app.Faucet]("chain.Faucet")
	NetworkCheck = di.NewToken[*app.NetworkCheck]("chain.NetworkCheck")
)

// Helper functions for type-safe access
func GetNode(c di.ServiceRegistry) app.Node {
	return di.GetToken(c, Node)
}

func GetFaucet(c di.ServiceRegistry) app.Faucet {
	return di.GetToken(c, Faucet)
}

func GetNetworkCheck(c di.ServiceRegistry) *app.NetworkCheck {
	return di.GetToken(c, NetworkCheck)
}
