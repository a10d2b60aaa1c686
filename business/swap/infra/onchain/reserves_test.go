package onchain

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/fd1az/aptos-dex/business/chain/chaintest"
	chaindomain "github.com/fd1az/aptos-dex/business/chain/domain"
	"github.com/fd1az/aptos-dex/internal/apperror"
	"github.com/fd1az/aptos-dex/internal/asset"
)

func TestReserves(t *testing.T) {
	const fn = "0xc0ffee::swap::get_reserves"

	tests := []struct {
		name     string
		view     func(context.Context, chaindomain.ViewRequest) ([]json.RawMessage, error)
		wantA    string
		wantB    string
		wantCode apperror.Code
	}{
		{
			name: "quoted u128",
			view: func(context.Context, chaindomain.ViewRequest) ([]json.RawMessage, error) {
				return []json.RawMessage{json.RawMessage(`"100000000000"`), json.RawMessage(`"8500000000"`)}, nil
			},
			wantA: "100000000000",
			wantB: "8500000000",
		},
		{
			name: "plain numbers",
			view: func(context.Context, chaindomain.ViewRequest) ([]json.RawMessage, error) {
				return []json.RawMessage{json.RawMessage(`5`), json.RawMessage(`7`)}, nil
			},
			wantA: "5",
			wantB: "7",
		},
		{
			name: "missing pool",
			view: func(context.Context, chaindomain.ViewRequest) ([]json.RawMessage, error) {
				return nil, chaintest.NotFound("pool")
			},
			wantA: "0",
			wantB: "0",
		},
		{
			name: "short result",
			view: func(context.Context, chaindomain.ViewRequest) ([]json.RawMessage, error) {
				return []json.RawMessage{json.RawMessage(`"1"`)}, nil
			},
			wantCode: apperror.CodeNodeRequestFailed,
		},
		{
			name: "garbage",
			view: func(context.Context, chaindomain.ViewRequest) ([]json.RawMessage, error) {
				return []json.RawMessage{json.RawMessage(`"x"`), json.RawMessage(`"1"`)}, nil
			},
			wantCode: apperror.CodeNodeRequestFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got chaindomain.ViewRequest
			node := &chaintest.Node{ViewFn: func(ctx context.Context, req chaindomain.ViewRequest) ([]json.RawMessage, error) {
				got = req
				return tt.view(ctx, req)
			}}
			r := NewReserveReader(node, fn)

			res, err := r.Reserves(context.Background(), asset.APT, asset.USDC)
			if tt.wantCode != "" {
				if apperror.GetCode(err) != tt.wantCode {
					t.Fatalf("code = %v, want %v", apperror.GetCode(err), tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("Reserves() error: %v", err)
			}
			if res.A.String() != tt.wantA || res.B.String() != tt.wantB {
				t.Errorf("reserves = %s/%s, want %s/%s", res.A, res.B, tt.wantA, tt.wantB)
			}
			if got.Function != fn || len(got.TypeArguments) != 2 || got.TypeArguments[0] != asset.APT.CoinType().String() {
				t.Errorf("view request = %+v", got)
			}
		})
	}
}

func TestReservesNodeError(t *testing.T) {
	boom := errors.New("node down")
	node := &chaintest.Node{ViewFn: func(context.Context, chaindomain.ViewRequest) ([]json.RawMessage, error) {
		return nil, boom
	}}

	_, err := NewReserveReader(node, "f").Reserves(context.Background(), asset.APT, asset.USDC)
	if !errors.Is(err, boom) {
		t.Errorf("expected node error, got %v", err)
	}
}
