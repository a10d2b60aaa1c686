// Package app contains the wallet ports and the session manager.
package app

import (
	"context"

	chaindomain "github.com/fd1az/aptos-dex/business/chain/domain"
	"github.com/fd1az/aptos-dex/business/wallet/domain"
)

// Wallet is a connectable wallet adapter.
type Wallet interface {
	Name() string
	Connected() bool
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Account() (domain.Account, bool)
}

// Signer is the optional capability to sign and submit transactions.
// Adapters report failures as app errors tagged with an apperror.Kind.
type Signer interface {
	SignAndSubmit(ctx context.Context, payload chaindomain.EntryFunctionPayload) (domain.SubmitResponse, error)
}

// DisconnectNotifier is implemented by adapters whose session can end on
// their own, such as a dropped bridge socket.
type DisconnectNotifier interface {
	OnDisconnect(fn func())
}
