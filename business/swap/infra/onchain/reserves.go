// Package onchain reads pool state through the node's view functions.
package onchain

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	chainapp "github.com/fd1az/aptos-dex/business/chain/app"
	chaindomain "github.com/fd1az/aptos-dex/business/chain/domain"
	"github.com/fd1az/aptos-dex/business/swap/app"
	"github.com/fd1az/aptos-dex/business/swap/domain"
	"github.com/fd1az/aptos-dex/internal/apperror"
	"github.com/fd1az/aptos-dex/internal/asset"
)

// ReserveReader calls <contract>::<module>::get_reserves<X, Y>.
type ReserveReader struct {
	node     chainapp.Node
	function string
}

// NewReserveReader creates a reader for the given get_reserves function id.
func NewReserveReader(node chainapp.Node, function string) *ReserveReader {
	return &ReserveReader{node: node, function: function}
}

// Reserves returns the pool balances ordered as (a, b). A missing pool
// reads as empty reserves.
func (r *ReserveReader) Reserves(ctx context.Context, a, b *asset.Token) (domain.Reserves, error) {
	out, err := r.node.View(ctx, chaindomain.ViewRequest{
		Function:      r.function,
		TypeArguments: []string{a.CoinType().String(), b.CoinType().String()},
		Arguments:     []any{},
	})
	if err != nil {
		if chainapp.IsNotFound(err) {
			return domain.Reserves{A: new(big.Int), B: new(big.Int)}, nil
		}
		return domain.Reserves{}, err
	}
	if len(out) < 2 {
		return domain.Reserves{}, apperror.New(apperror.CodeNodeRequestFailed,
			apperror.WithContext(fmt.Sprintf("get_reserves returned %d values", len(out))))
	}

	ra, err := parseU128(out[0])
	if err != nil {
		return domain.Reserves{}, err
	}
	rb, err := parseU128(out[1])
	if err != nil {
		return domain.Reserves{}, err
	}
	return domain.Reserves{A: ra, B: rb}, nil
}

// parseU128 accepts the node's quoted integers and plain JSON numbers.
func parseU128(raw json.RawMessage) (*big.Int, error) {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, apperror.New(apperror.CodeNodeRequestFailed,
			apperror.WithContext("invalid reserve value "+s))
	}
	return v, nil
}

// Ensure ReserveReader implements app.ReserveReader.
var _ app.ReserveReader = (*ReserveReader)(nil)
