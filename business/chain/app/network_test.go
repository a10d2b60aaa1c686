package app

import (
	"context"
	"encoding/json"
	"io"
	"math/big"
	"testing"

	"github.com/fd1az/aptos-dex/business/chain/domain"
	"github.com/fd1az/aptos-dex/internal/apperror"
	"github.com/fd1az/aptos-dex/internal/asset"
	"github.com/fd1az/aptos-dex/internal/logger"
	"github.com/fd1az/aptos-dex/internal/notify"
)

type fakeNode struct {
	chainID uint8
}

func (f *fakeNode) LedgerInfo(context.Context) (*domain.LedgerInfo, error) {
	return &domain.LedgerInfo{ChainID: f.chainID}, nil
}
func (f *fakeNode) Account(context.Context, string) (*domain.AccountInfo, error) { return nil, nil }
func (f *fakeNode) CoinBalance(context.Context, string, asset.CoinType) (*big.Int, error) {
	return nil, nil
}
func (f *fakeNode) AccountTransactions(context.Context, string, int) ([]domain.Transaction, error) {
	return nil, nil
}
func (f *fakeNode) View(context.Context, domain.ViewRequest) ([]json.RawMessage, error) {
	return nil, nil
}
func (f *fakeNode) EncodeSubmission(context.Context, domain.RawTransaction) ([]byte, error) {
	return nil, nil
}
func (f *fakeNode) SubmitTransaction(context.Context, domain.SignedTransaction) (*domain.Transaction, error) {
	return nil, nil
}
func (f *fakeNode) WaitForTransaction(context.Context, string) (*domain.Transaction, error) {
	return nil, nil
}
func (f *fakeNode) TransactionByHash(context.Context, string) (*domain.Transaction, error) {
	return nil, nil
}
func (f *fakeNode) EstimateGasPrice(context.Context) (uint64, error) { return 100, nil }

func TestNetworkCheck(t *testing.T) {
	tests := []struct {
		name     string
		network  string
		expected uint8
		chainID  uint8
		wantErr  bool
	}{
		{"mainnet ok", "mainnet", 0, 1, false},
		{"testnet ok", "testnet", 0, 2, false},
		{"testnet node on mainnet", "mainnet", 0, 2, true},
		{"devnet any id", "devnet", 0, 147, false},
		{"devnet rejects testnet", "devnet", 0, 2, true},
		{"explicit id", "devnet", 58, 58, false},
		{"explicit id mismatch", "devnet", 58, 59, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := notify.NewChannel(1)
			sub, cancel := ch.Subscribe()
			defer cancel()

			check := NewNetworkCheck(&fakeNode{chainID: tt.chainID}, tt.network, tt.expected, ch,
				logger.New(io.Discard, logger.LevelError, "test", nil))

			_, err := check.Check(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Check() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}
			if apperror.GetCode(err) != apperror.CodeNetworkMismatch {
				t.Errorf("code = %v, want NETWORK_MISMATCH", apperror.GetCode(err))
			}
			select {
			case n := <-sub:
				if n.Level != notify.LevelWarning {
					t.Errorf("level = %v, want warning", n.Level)
				}
			default:
				t.Error("expected a notification")
			}
		})
	}
}
