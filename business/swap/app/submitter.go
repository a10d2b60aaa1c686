package app

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	chainapp "github.com/fd1az/aptos-dex/business/chain/app"
	chaindomain "github.com/fd1az/aptos-dex/business/chain/domain"
	"github.com/fd1az/aptos-dex/business/swap/domain"
	walletapp "github.com/fd1az/aptos-dex/business/wallet/app"
	walletdomain "github.com/fd1az/aptos-dex/business/wallet/domain"
	"github.com/fd1az/aptos-dex/internal/apm"
	"github.com/fd1az/aptos-dex/internal/apperror"
	"github.com/fd1az/aptos-dex/internal/asset"
	"github.com/fd1az/aptos-dex/internal/logger"
	"github.com/fd1az/aptos-dex/internal/notify"
)

// Used when no swap contract is configured.
const (
	FallbackFunction = "0x1::aptos_account::transfer"
	fallbackAmount   = "1"
)

// SubmitterConfig holds the contract and confirmation settings.
type SubmitterConfig struct {
	ContractAddress string
	Module          string
	SwapFunction    string
	Network         string
	ExplorerURL     string
	ConfirmTimeout  time.Duration
	RefreshDelay    time.Duration
}

// DefaultSubmitterConfig returns the devnet explorer, swap_x_to_y, a 15s
// confirmation wait and a 2s balance refresh delay.
func DefaultSubmitterConfig(contract string) SubmitterConfig {
	return SubmitterConfig{
		ContractAddress: contract,
		Module:          "swap",
		SwapFunction:    "swap_x_to_y",
		Network:         "devnet",
		ExplorerURL:     "https://explorer.aptoslabs.com",
		ConfirmTimeout:  15 * time.Second,
		RefreshDelay:    2 * time.Second,
	}
}

// FunctionID builds "<contract>::<module>::<name>".
func (c SubmitterConfig) FunctionID(name string) string {
	return fmt.Sprintf("%s::%s::%s", c.ContractAddress, c.Module, name)
}

// PayloadBuilder builds the entry function call for the signing account.
type PayloadBuilder func(acct walletdomain.Account) chaindomain.EntryFunctionPayload

type submitterMetrics struct {
	submissions metric.Int64Counter
	confirmWait metric.Float64Histogram
}

// Submitter runs the wallet pipeline shared by swaps and liquidity
// operations: preconditions, signing, hash normalization, confirmation,
// notification, event publication and balance refresh.
type Submitter struct {
	wallets   WalletSource
	node      chainapp.Node
	notifier  notify.Notifier
	publisher EventPublisher
	refresher BalanceRefresher
	cfg       SubmitterConfig
	now       func() time.Time
	log       logger.LoggerInterface
	tracer    trace.Tracer
	metrics   *submitterMetrics
}

// NewSubmitter creates a submitter. publisher and refresher may be nil.
func NewSubmitter(
	wallets WalletSource,
	node chainapp.Node,
	notifier notify.Notifier,
	publisher EventPublisher,
	refresher BalanceRefresher,
	cfg SubmitterConfig,
	log logger.LoggerInterface,
) *Submitter {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if cfg.ConfirmTimeout <= 0 {
		cfg.ConfirmTimeout = 15 * time.Second
	}

	s := &Submitter{
		wallets:   wallets,
		node:      node,
		notifier:  notifier,
		publisher: publisher,
		refresher: refresher,
		cfg:       cfg,
		now:       time.Now,
		log:       log,
		tracer:    otel.Tracer(tracerName),
	}

	meter := otel.Meter(meterName)
	s.metrics = &submitterMetrics{}
	s.metrics.submissions, _ = meter.Int64Counter("swap_submissions_total",
		metric.WithDescription("Transactions submitted through a wallet, by action and status"))
	s.metrics.confirmWait, _ = meter.Float64Histogram("swap_confirmation_seconds",
		metric.WithDescription("Time from submission to observed commit"),
		metric.WithUnit("s"))
	return s
}

// Swap submits req through the selected wallet.
func (s *Submitter) Swap(ctx context.Context, req domain.SwapRequest) (*domain.Outcome, error) {
	amountIn, minOut, err := s.parseSwap(req)
	if err != nil {
		s.notifyError(ctx, "Swap", err)
		return nil, err
	}

	expected := strings.TrimSpace(req.ExpectedOut)
	if expected == "" {
		expected = req.MinimumOut
	}
	summary := domain.SwapSummary(req.AmountIn, req.In.Symbol(), expected, req.Out.Symbol(), req.MinimumOut)

	build := func(acct walletdomain.Account) chaindomain.EntryFunctionPayload {
		if s.cfg.ContractAddress == "" {
			return chaindomain.NewEntryFunctionPayload(FallbackFunction, nil, acct.Address, fallbackAmount)
		}
		return chaindomain.NewEntryFunctionPayload(
			s.cfg.FunctionID(s.cfg.SwapFunction),
			[]string{req.In.CoinType().String(), req.Out.CoinType().String()},
			amountIn.Raw().String(),
			minOut.Raw().String(),
		)
	}

	guard := func(ctx context.Context, acct walletdomain.Account) error {
		return s.checkBalance(ctx, acct, req.In, amountIn)
	}
	return s.submit(ctx, domain.ActionSwap, guard, build, summary)
}

// checkBalance rejects a spend above the on-chain balance of token. A
// missing coin store counts as zero. Other read failures are logged and
// left for the chain to reject.
func (s *Submitter) checkBalance(ctx context.Context, acct walletdomain.Account, token *asset.Token, amount asset.Amount) error {
	bal, err := s.node.CoinBalance(ctx, acct.Address, token.CoinType())
	switch {
	case chainapp.IsNotFound(err):
		bal = new(big.Int)
	case err != nil:
		s.log.Warn(ctx, "balance check skipped", "symbol", token.Symbol(), "error", err)
		return nil
	}
	if amount.Raw().Cmp(bal) > 0 {
		return apperror.New(apperror.CodeInsufficientBalance,
			apperror.WithKind(apperror.KindInsufficientBalance),
			apperror.WithContext(fmt.Sprintf("%s: have %s, need %s", token.Symbol(), bal, amount.Raw())))
	}
	return nil
}

func (s *Submitter) parseSwap(req domain.SwapRequest) (asset.Amount, asset.Amount, error) {
	if req.In == nil || req.Out == nil {
		return asset.Amount{}, asset.Amount{}, apperror.New(apperror.CodeTokenNotFound)
	}
	if req.In.Equals(req.Out) {
		return asset.Amount{}, asset.Amount{}, apperror.New(apperror.CodeSameToken, apperror.WithContext(req.In.Symbol()))
	}
	amountIn, err := asset.ParseString(req.In, req.AmountIn)
	if err != nil || amountIn.IsZero() {
		return asset.Amount{}, asset.Amount{}, apperror.New(apperror.CodeInvalidAmount,
			apperror.WithCause(err),
			apperror.WithContext(req.AmountIn))
	}
	minDec, err := decimal.NewFromString(strings.TrimSpace(req.MinimumOut))
	if err != nil || minDec.IsNegative() {
		return asset.Amount{}, asset.Amount{}, apperror.New(apperror.CodeInvalidAmount,
			apperror.WithCause(err),
			apperror.WithContext("minimum "+req.MinimumOut))
	}
	minOut, err := asset.ParseDecimalTruncated(req.Out, minDec)
	if err != nil {
		return asset.Amount{}, asset.Amount{}, apperror.New(apperror.CodeInvalidAmount, apperror.WithCause(err))
	}
	return amountIn, minOut, nil
}

// SubmitPayload checks the wallet preconditions, signs the payload built
// for the wallet account and follows the transaction to an Outcome. A
// committed transaction that failed in the VM returns both the outcome
// and a TRANSACTION_FAILED error.
func (s *Submitter) SubmitPayload(ctx context.Context, action domain.Action, build PayloadBuilder, summary string) (*domain.Outcome, error) {
	return s.submit(ctx, action, nil, build, summary)
}

// submitGuard runs after the wallet preconditions and before signing.
type submitGuard func(ctx context.Context, acct walletdomain.Account) error

func (s *Submitter) submit(ctx context.Context, action domain.Action, guard submitGuard, build PayloadBuilder, summary string) (*domain.Outcome, error) {
	ctx, span := s.tracer.Start(ctx, "swap.submit",
		trace.WithAttributes(attribute.String("action", string(action))))
	defer span.End()

	title := actionTitle(action)

	acct, signer, err := s.preconditions(ctx)
	if err != nil {
		apm.NoticeError(span, err)
		s.notifyError(ctx, title, err)
		return nil, err
	}
	if guard != nil {
		if err := guard(ctx, acct); err != nil {
			apm.NoticeError(span, err)
			s.log.Warn(ctx, "transaction rejected before signing", "action", action, "error", err)
			s.notifyError(ctx, title, err)
			return nil, err
		}
	}

	payload := build(acct)
	span.SetAttributes(attribute.String("function", payload.Function))
	s.log.Info(ctx, "submitting transaction", "action", action, "function", payload.Function, "sender", acct.Address)

	resp, err := signer.SignAndSubmit(ctx, payload)
	if err != nil {
		err = asAppError(err)
		apm.NoticeError(span, err)
		s.metrics.submissions.Add(ctx, 1, metric.WithAttributes(
			attribute.String("action", string(action)),
			attribute.String("status", "error"),
			attribute.String("kind", apperror.KindOf(err).String()),
		))
		s.log.Error(ctx, "transaction submission failed", "action", action, "kind", apperror.KindOf(err), "error", err)
		s.notifyError(ctx, title, err)
		return nil, err
	}

	sub := domain.NormalizeSubmission(resp)
	outcome := &domain.Outcome{Action: action, Summary: summary, Sender: acct.Address}

	if !sub.Resolved {
		s.log.Warn(ctx, "transaction submitted but hash not available", "action", action, "response", fmt.Sprintf("%T", resp))
		outcome.Status = domain.StatusSubmittedNoHash
		outcome.Hash = domain.UnresolvedHash
		s.notifier.Notify(ctx, notify.New(notify.LevelSuccess, title, summary+" (Transaction submitted)"))
	} else {
		outcome.Hash = sub.Hash
		outcome.ExplorerURL = domain.ExplorerURL(s.cfg.ExplorerURL, sub.Hash, s.cfg.Network)
		span.SetAttributes(attribute.String("hash", sub.Hash))
		s.confirm(ctx, outcome)
	}

	s.metrics.submissions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", string(action)),
		attribute.String("status", string(outcome.Status)),
	))
	s.publish(ctx, outcome, payload)

	if s.refresher != nil && outcome.Status != domain.StatusFailed {
		s.refresher.RefreshAfter(s.cfg.RefreshDelay)
	}

	if outcome.Status == domain.StatusFailed {
		err := apperror.New(apperror.CodeTransactionFailed,
			apperror.WithContext(outcome.VMStatus),
			apperror.WithMessage(title+" failed on chain: "+outcome.VMStatus))
		apm.NoticeError(span, err)
		return outcome, err
	}
	return outcome, nil
}

// preconditions resolves the signing account. Checks run in order and the
// wallet gets exactly one connect attempt.
func (s *Submitter) preconditions(ctx context.Context) (walletdomain.Account, walletapp.Signer, error) {
	w, ok := s.wallets.Selected()
	if !ok || w == nil {
		return walletdomain.Account{}, nil, apperror.New(apperror.CodeWalletNotSelected)
	}

	if !w.Connected() {
		if err := w.Connect(ctx); err != nil {
			return walletdomain.Account{}, nil, apperror.New(apperror.CodeWalletConnectFailed,
				apperror.WithCause(err),
				apperror.WithContext(w.Name()))
		}
		s.wallets.NotifyConnected(w)
	}

	acct, ok := w.Account()
	if !ok || acct.Address == "" {
		return walletdomain.Account{}, nil, apperror.New(apperror.CodeAccountNotFound, apperror.WithContext(w.Name()))
	}

	signer, ok := w.(walletapp.Signer)
	if !ok {
		return walletdomain.Account{}, nil, apperror.New(apperror.CodeSigningUnsupported, apperror.WithContext(w.Name()))
	}
	return acct, signer, nil
}

// confirm waits for the commit. A timeout leaves the outcome submitted.
func (s *Submitter) confirm(ctx context.Context, outcome *domain.Outcome) {
	title := actionTitle(outcome.Action)
	started := s.now()

	wctx, cancel := context.WithTimeout(ctx, s.cfg.ConfirmTimeout)
	defer cancel()

	tx, err := s.node.WaitForTransaction(wctx, outcome.Hash)
	switch {
	case err != nil:
		s.log.Warn(ctx, "transaction confirmation not observed, transaction was submitted",
			"hash", outcome.Hash, "error", err)
		outcome.Status = domain.StatusSubmitted
		s.notifier.Notify(ctx, notify.New(notify.LevelSuccess, title, outcome.Summary+" (Transaction submitted)"))
	case !tx.Success:
		outcome.Status = domain.StatusFailed
		outcome.VMStatus = tx.VMStatus
		s.log.Error(ctx, "transaction failed on chain", "hash", outcome.Hash, "vm_status", tx.VMStatus)
		s.notifier.Notify(ctx, notify.New(notify.LevelError, title, "Transaction failed: "+tx.VMStatus).
			WithLink(outcome.ExplorerURL))
		return
	default:
		s.metrics.confirmWait.Record(ctx, s.now().Sub(started).Seconds())
		outcome.Status = domain.StatusConfirmed
		outcome.VMStatus = tx.VMStatus
		s.log.Info(ctx, "transaction confirmed", "hash", outcome.Hash, "version", uint64(tx.Version))
		s.notifier.Notify(ctx, notify.New(notify.LevelSuccess, title, outcome.Summary+" ✅"))
	}

	s.notifier.Notify(ctx, notify.New(notify.LevelInfo, "Explorer", "View on Explorer: "+outcome.ExplorerURL).
		WithLink(outcome.ExplorerURL))
}

func (s *Submitter) publish(ctx context.Context, outcome *domain.Outcome, payload chaindomain.EntryFunctionPayload) {
	ev := domain.Event{
		ID:        uuid.NewString(),
		Action:    outcome.Action,
		Status:    outcome.Status,
		Hash:      outcome.Hash,
		Sender:    outcome.Sender,
		Network:   s.cfg.Network,
		Function:  payload.Function,
		TypeArgs:  payload.TypeArguments,
		Arguments: payload.Arguments,
		At:        s.now(),
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.log.Warn(ctx, "failed to publish submission event", "hash", outcome.Hash, "error", err)
	}
}

func (s *Submitter) notifyError(ctx context.Context, title string, err error) {
	n := notify.New(notify.LevelError, title, apperror.UserMessage(err))
	if kind := apperror.KindOf(err); kind != apperror.KindUnknown {
		n = n.WithKind(kind.String())
	}
	s.notifier.Notify(ctx, n)
}

// asAppError keeps adapter errors as raised and wraps anything else.
func asAppError(err error) error {
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.New(apperror.CodeTransactionFailed, apperror.WithCause(err))
}

func actionTitle(a domain.Action) string {
	switch a {
	case domain.ActionAddLiquidity:
		return "Add liquidity"
	case domain.ActionRemoveLiquidity:
		return "Remove liquidity"
	default:
		return "Swap"
	}
}
