package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	chaindomain "github.com/fd1az/aptos-dex/business/chain/domain"
	"github.com/fd1az/aptos-dex/business/swap/domain"
	walletdomain "github.com/fd1az/aptos-dex/business/wallet/domain"
	"github.com/fd1az/aptos-dex/internal/apperror"
	"github.com/fd1az/aptos-dex/internal/asset"
)

// LPDecimals is the precision of pool share amounts.
const LPDecimals = 8

// Liquidity adds and removes pool liquidity through the Submitter.
type Liquidity struct {
	reserves  ReserveReader
	submitter *Submitter
	cfg       SubmitterConfig
}

// NewLiquidity creates the liquidity service.
func NewLiquidity(reserves ReserveReader, submitter *Submitter, cfg SubmitterConfig) *Liquidity {
	return &Liquidity{reserves: reserves, submitter: submitter, cfg: cfg}
}

// Reserves reads the pool of a and b.
func (l *Liquidity) Reserves(ctx context.Context, a, b *asset.Token) (domain.Reserves, error) {
	if a.Equals(b) {
		return domain.Reserves{}, apperror.New(apperror.CodeSameToken, apperror.WithContext(a.Symbol()))
	}
	return l.reserves.Reserves(ctx, a, b)
}

// QuoteAmountB returns the amount of b matching amountA at the pool ratio.
func QuoteAmountB(a, b *asset.Token, amountA decimal.Decimal, r domain.Reserves) (decimal.Decimal, error) {
	if r.Empty() {
		return decimal.Zero, apperror.New(apperror.CodeInsufficientLiquidity,
			apperror.WithContext(a.Symbol()+"/"+b.Symbol()))
	}
	reserveA := asset.NewAmount(a, r.A).ToDecimal()
	reserveB := asset.NewAmount(b, r.B).ToDecimal()
	return domain.Round6(amountA.Mul(reserveB).Div(reserveA)), nil
}

// Add deposits amountA of a and amountB of b.
func (l *Liquidity) Add(ctx context.Context, a, b *asset.Token, amountA, amountB string) (*domain.Outcome, error) {
	if err := l.requireContract(); err != nil {
		return nil, err
	}
	if a.Equals(b) {
		return nil, apperror.New(apperror.CodeSameToken, apperror.WithContext(a.Symbol()))
	}
	rawA, err := parsePositive(a, amountA)
	if err != nil {
		return nil, err
	}
	rawB, err := parsePositive(b, amountB)
	if err != nil {
		return nil, err
	}

	build := func(walletdomain.Account) chaindomain.EntryFunctionPayload {
		return chaindomain.NewEntryFunctionPayload(
			l.cfg.FunctionID("add_liquidity"),
			[]string{a.CoinType().String(), b.CoinType().String()},
			rawA.Raw().String(),
			rawB.Raw().String(),
		)
	}
	summary := fmt.Sprintf("Successfully added liquidity to %s/%s pool!", a.Symbol(), b.Symbol())
	return l.submitter.SubmitPayload(ctx, domain.ActionAddLiquidity, build, summary)
}

// Remove burns lpAmount pool shares of the a/b pool.
func (l *Liquidity) Remove(ctx context.Context, a, b *asset.Token, lpAmount string) (*domain.Outcome, error) {
	if err := l.requireContract(); err != nil {
		return nil, err
	}
	if a.Equals(b) {
		return nil, apperror.New(apperror.CodeSameToken, apperror.WithContext(a.Symbol()))
	}
	lp, err := decimal.NewFromString(strings.TrimSpace(lpAmount))
	if err != nil || !lp.IsPositive() {
		return nil, apperror.New(apperror.CodeInvalidAmount,
			apperror.WithCause(err),
			apperror.WithContext(lpAmount))
	}
	shares := lp.Shift(LPDecimals).Truncate(0).BigInt()
	if shares.Sign() == 0 {
		return nil, apperror.New(apperror.CodeInvalidAmount,
			apperror.WithContext(fmt.Sprintf("%s is below one LP share", lpAmount)))
	}

	build := func(walletdomain.Account) chaindomain.EntryFunctionPayload {
		return chaindomain.NewEntryFunctionPayload(
			l.cfg.FunctionID("remove_liquidity"),
			[]string{a.CoinType().String(), b.CoinType().String()},
			shares.String(),
		)
	}
	summary := fmt.Sprintf("Successfully removed liquidity from %s/%s pool!", a.Symbol(), b.Symbol())
	return l.submitter.SubmitPayload(ctx, domain.ActionRemoveLiquidity, build, summary)
}

func (l *Liquidity) requireContract() error {
	if l.cfg.ContractAddress == "" {
		return apperror.New(apperror.CodeConfigurationError,
			apperror.WithMessage("Liquidity requires a deployed swap contract (contract.address)"))
	}
	return nil
}

func parsePositive(t *asset.Token, s string) (asset.Amount, error) {
	amt, err := asset.ParseString(t, s)
	if err != nil || amt.IsZero() {
		return asset.Amount{}, apperror.New(apperror.CodeInvalidAmount,
			apperror.WithCause(err),
			apperror.WithContext(t.Symbol()+" "+s))
	}
	return amt, nil
}
