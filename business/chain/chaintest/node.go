// Package chaintest provides an in-memory Node for tests.
package chaintest

import (
	"context"
	"encoding/json"
	"math/big"
	"sync"

	"github.com/fd1az/aptos-dex/business/chain/app"
	"github.com/fd1az/aptos-dex/business/chain/domain"
	"github.com/fd1az/aptos-dex/internal/apperror"
	"github.com/fd1az/aptos-dex/internal/asset"
)

// Node is a scriptable app.Node. Unset funcs return not-found errors or
// zero values. Submitted transactions are recorded.
type Node struct {
	ChainID  uint8
	GasPrice uint64

	AccountFn     func(ctx context.Context, address string) (*domain.AccountInfo, error)
	CoinBalanceFn func(ctx context.Context, address string, ct asset.CoinType) (*big.Int, error)
	ViewFn        func(ctx context.Context, req domain.ViewRequest) ([]json.RawMessage, error)
	SubmitFn      func(ctx context.Context, txn domain.SignedTransaction) (*domain.Transaction, error)
	WaitFn        func(ctx context.Context, hash string) (*domain.Transaction, error)
	TxByHashFn    func(ctx context.Context, hash string) (*domain.Transaction, error)
	AccountTxnsFn func(ctx context.Context, address string, limit int) ([]domain.Transaction, error)

	mu        sync.Mutex
	submitted []domain.SignedTransaction
	encoded   []domain.RawTransaction
}

// NotFound returns the error the real client gives for missing resources.
func NotFound(what string) error {
	return apperror.New(apperror.CodeResourceNotFound, apperror.WithContext(what))
}

func (n *Node) LedgerInfo(context.Context) (*domain.LedgerInfo, error) {
	return &domain.LedgerInfo{ChainID: n.ChainID}, nil
}

func (n *Node) Account(ctx context.Context, address string) (*domain.AccountInfo, error) {
	if n.AccountFn != nil {
		return n.AccountFn(ctx, address)
	}
	return &domain.AccountInfo{}, nil
}

func (n *Node) CoinBalance(ctx context.Context, address string, ct asset.CoinType) (*big.Int, error) {
	if n.CoinBalanceFn != nil {
		return n.CoinBalanceFn(ctx, address, ct)
	}
	return nil, NotFound("coin store")
}

func (n *Node) AccountTransactions(ctx context.Context, address string, limit int) ([]domain.Transaction, error) {
	if n.AccountTxnsFn != nil {
		return n.AccountTxnsFn(ctx, address, limit)
	}
	return nil, nil
}

func (n *Node) View(ctx context.Context, req domain.ViewRequest) ([]json.RawMessage, error) {
	if n.ViewFn != nil {
		return n.ViewFn(ctx, req)
	}
	return nil, NotFound(req.Function)
}

// EncodeSubmission returns the JSON encoding of txn as the signing message.
func (n *Node) EncodeSubmission(_ context.Context, txn domain.RawTransaction) ([]byte, error) {
	n.mu.Lock()
	n.encoded = append(n.encoded, txn)
	n.mu.Unlock()
	return json.Marshal(txn)
}

func (n *Node) SubmitTransaction(ctx context.Context, txn domain.SignedTransaction) (*domain.Transaction, error) {
	n.mu.Lock()
	n.submitted = append(n.submitted, txn)
	n.mu.Unlock()

	if n.SubmitFn != nil {
		return n.SubmitFn(ctx, txn)
	}
	return &domain.Transaction{Type: domain.TxTypePending, Hash: "0xfeed"}, nil
}

func (n *Node) WaitForTransaction(ctx context.Context, hash string) (*domain.Transaction, error) {
	if n.WaitFn != nil {
		return n.WaitFn(ctx, hash)
	}
	return &domain.Transaction{Type: domain.TxTypeUser, Hash: hash, Success: true}, nil
}

func (n *Node) TransactionByHash(ctx context.Context, hash string) (*domain.Transaction, error) {
	if n.TxByHashFn != nil {
		return n.TxByHashFn(ctx, hash)
	}
	return nil, NotFound(hash)
}

func (n *Node) EstimateGasPrice(context.Context) (uint64, error) {
	if n.GasPrice == 0 {
		return 100, nil
	}
	return n.GasPrice, nil
}

// Submitted returns the signed transactions posted so far.
func (n *Node) Submitted() []domain.SignedTransaction {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.SignedTransaction(nil), n.submitted...)
}

// Encoded returns the raw transactions passed to EncodeSubmission.
func (n *Node) Encoded() []domain.RawTransaction {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.RawTransaction(nil), n.encoded...)
}

var _ app.Node = (*Node)(nil)
