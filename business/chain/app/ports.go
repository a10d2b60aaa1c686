// Package app contains application services and port definitions for the chain context.
package app

import (
	"context"
	"encoding/json"
	"math/big"

	"github.com/fd1az/aptos-dex/business/chain/domain"
	"github.com/fd1az/aptos-dex/internal/asset"
)

// Node is the Aptos full node REST API.
type Node interface {
	// LedgerInfo returns chain id and ledger version.
	LedgerInfo(ctx context.Context) (*domain.LedgerInfo, error)

	// Account returns the sequence number and auth key.
	Account(ctx context.Context, address string) (*domain.AccountInfo, error)

	// CoinBalance returns the raw balance of coinType held by address.
	// Missing stores surface as RESOURCE_NOT_FOUND.
	CoinBalance(ctx context.Context, address string, coinType asset.CoinType) (*big.Int, error)

	// AccountTransactions lists the latest transactions sent by address.
	AccountTransactions(ctx context.Context, address string, limit int) ([]domain.Transaction, error)

	// View calls a Move view function.
	View(ctx context.Context, req domain.ViewRequest) ([]json.RawMessage, error)

	// EncodeSubmission returns the signing message for a raw transaction.
	EncodeSubmission(ctx context.Context, txn domain.RawTransaction) ([]byte, error)

	// SubmitTransaction posts a signed transaction.
	SubmitTransaction(ctx context.Context, txn domain.SignedTransaction) (*domain.Transaction, error)

	// WaitForTransaction polls until hash is committed or ctx ends.
	WaitForTransaction(ctx context.Context, hash string) (*domain.Transaction, error)

	// TransactionByHash fetches a single transaction.
	TransactionByHash(ctx context.Context, hash string) (*domain.Transaction, error)

	// EstimateGasPrice returns the suggested gas unit price.
	EstimateGasPrice(ctx context.Context) (uint64, error)
}

// Faucet funds accounts on test networks.
type Faucet interface {
	Fund(ctx context.Context, address string, amount uint64) ([]string, error)
}
