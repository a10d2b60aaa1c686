// Package localkey is a wallet backed by an ed25519 private key held in
// configuration. It signs through the node's encode_submission endpoint.
package localkey

import (
	"context"
	"crypto/ed25519"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/sha3"

	chainapp "github.com/fd1az/aptos-dex/business/chain/app"
	chaindomain "github.com/fd1az/aptos-dex/business/chain/domain"
	"github.com/fd1az/aptos-dex/business/wallet/app"
	"github.com/fd1az/aptos-dex/business/wallet/domain"
	"github.com/fd1az/aptos-dex/internal/apm"
	"github.com/fd1az/aptos-dex/internal/apperror"
	"github.com/fd1az/aptos-dex/internal/logger"
)

const (
	// Name is the adapter name shown to users.
	Name = "Local Key"

	tracerName = "github.com/fd1az/aptos-dex/business/wallet/infra/localkey"

	// ed25519 single-key authentication scheme.
	schemeEd25519 byte = 0x00

	// AIP-80 prefix some tools emit.
	aip80Prefix = "ed25519-priv-"
)

// Config holds transaction defaults.
type Config struct {
	MaxGasAmount uint64
	Expiry       time.Duration
}

// DefaultConfig returns 20000 gas units and a 60s expiry.
func DefaultConfig() Config {
	return Config{MaxGasAmount: 20000, Expiry: 60 * time.Second}
}

// Wallet signs with a local key.
type Wallet struct {
	priv    ed25519.PrivateKey
	account domain.Account
	node    chainapp.Node
	cfg     Config
	now     func() time.Time
	log     logger.LoggerInterface
	tracer  trace.Tracer

	mu        sync.RWMutex
	connected bool
}

// New parses a hex ed25519 seed (32 bytes, optional 0x or AIP-80 prefix).
func New(privateKey string, node chainapp.Node, cfg Config, log logger.LoggerInterface) (*Wallet, error) {
	priv, err := ParsePrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	if cfg.MaxGasAmount == 0 {
		cfg.MaxGasAmount = DefaultConfig().MaxGasAmount
	}
	if cfg.Expiry <= 0 {
		cfg.Expiry = DefaultConfig().Expiry
	}

	pub := priv.Public().(ed25519.PublicKey)
	return &Wallet{
		priv: priv,
		account: domain.Account{
			Address:   DeriveAddress(pub),
			PublicKey: hexutil.Encode(pub),
		},
		node:   node,
		cfg:    cfg,
		now:    time.Now,
		log:    log,
		tracer: otel.Tracer(tracerName),
	}, nil
}

// ParsePrivateKey decodes a hex ed25519 seed.
func ParsePrivateKey(s string) (ed25519.PrivateKey, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), aip80Prefix)
	if !strings.HasPrefix(s, "0x") {
		s = "0x" + s
	}
	seed, err := hexutil.Decode(s)
	if err != nil || len(seed) != ed25519.SeedSize {
		return nil, apperror.New(apperror.CodeInvalidPrivateKey,
			apperror.WithContext("expected 32-byte hex seed"))
	}
	return ed25519.NewKeyFromSeed(seed), nil
}

// DeriveAddress returns sha3-256(pubkey || scheme) as 0x hex.
func DeriveAddress(pub ed25519.PublicKey) string {
	h := sha3.New256()
	h.Write(pub)
	h.Write([]byte{schemeEd25519})
	return hexutil.Encode(h.Sum(nil))
}

// Name implements app.Wallet.
func (w *Wallet) Name() string { return Name }

// Connected implements app.Wallet.
func (w *Wallet) Connected() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.connected
}

// Connect implements app.Wallet. The key is local, so this only opens the session.
func (w *Wallet) Connect(ctx context.Context) error {
	w.mu.Lock()
	w.connected = true
	w.mu.Unlock()
	w.log.Debug(ctx, "local key wallet connected", "address", w.account.Address)
	return nil
}

// Disconnect implements app.Wallet.
func (w *Wallet) Disconnect(context.Context) error {
	w.mu.Lock()
	w.connected = false
	w.mu.Unlock()
	return nil
}

// Account implements app.Wallet.
func (w *Wallet) Account() (domain.Account, bool) {
	return w.account, w.Connected()
}

// SignAndSubmit builds, signs and posts a transaction. It returns the
// node's pending transaction shape, {"hash": ...}.
func (w *Wallet) SignAndSubmit(ctx context.Context, payload chaindomain.EntryFunctionPayload) (domain.SubmitResponse, error) {
	ctx, span := w.tracer.Start(ctx, "localkey.sign_and_submit",
		trace.WithAttributes(attribute.String("function", payload.Function)))
	defer span.End()

	resp, err := w.signAndSubmit(ctx, payload)
	if err != nil {
		apm.NoticeError(span, err)
		return nil, err
	}
	return resp, nil
}

func (w *Wallet) signAndSubmit(ctx context.Context, payload chaindomain.EntryFunctionPayload) (domain.SubmitResponse, error) {
	acct, err := w.node.Account(ctx, w.account.Address)
	if err != nil {
		if chainapp.IsNotFound(err) {
			// Unfunded accounts do not exist on chain yet.
			return nil, apperror.New(apperror.CodeTransactionFailed,
				apperror.WithCause(err),
				apperror.WithContext("account not funded"),
				apperror.WithKind(apperror.KindInsufficientBalance))
		}
		return nil, err
	}

	gasPrice, err := w.node.EstimateGasPrice(ctx)
	if err != nil {
		return nil, err
	}

	raw := chaindomain.RawTransaction{
		Sender:                  w.account.Address,
		SequenceNumber:          acct.SequenceNumber,
		MaxGasAmount:            chaindomain.U64(w.cfg.MaxGasAmount),
		GasUnitPrice:            chaindomain.U64(gasPrice),
		ExpirationTimestampSecs: chaindomain.U64(w.now().Add(w.cfg.Expiry).Unix()),
		Payload:                 payload,
	}

	msg, err := w.node.EncodeSubmission(ctx, raw)
	if err != nil {
		return nil, err
	}

	signed := chaindomain.SignedTransaction{
		RawTransaction: raw,
		Signature: chaindomain.Signature{
			Type:      "ed25519_signature",
			PublicKey: w.account.PublicKey,
			Signature: hexutil.Encode(ed25519.Sign(w.priv, msg)),
		},
	}

	tx, err := w.node.SubmitTransaction(ctx, signed)
	if err != nil {
		return nil, err
	}

	w.log.Info(ctx, "transaction submitted", "hash", tx.Hash, "sequence", uint64(acct.SequenceNumber))
	return map[string]any{"hash": tx.Hash}, nil
}

// Ensure Wallet implements app.Wallet and app.Signer.
var (
	_ app.Wallet = (*Wallet)(nil)
	_ app.Signer = (*Wallet)(nil)
)
