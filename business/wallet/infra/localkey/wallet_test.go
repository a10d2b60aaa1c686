package localkey

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/fd1az/aptos-dex/business/chain/chaintest"
	chaindomain "github.com/fd1az/aptos-dex/business/chain/domain"
	"github.com/fd1az/aptos-dex/internal/apperror"
	"github.com/fd1az/aptos-dex/internal/logger"
)

const testSeed = "0x9bf49a6a0755f953811fce125f2683d50429c3bb49e074147e0089a52eae155f"

func newTestWallet(t *testing.T, node *chaintest.Node) *Wallet {
	t.Helper()
	w, err := New(testSeed, node, DefaultConfig(), logger.New(io.Discard, logger.LevelError, "test", nil))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	w.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	return w
}

func TestParsePrivateKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"0x prefix", testSeed, false},
		{"bare hex", strings.TrimPrefix(testSeed, "0x"), false},
		{"aip-80", "ed25519-priv-" + testSeed, false},
		{"too short", "0x1234", true},
		{"not hex", "0xzz", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePrivateKey(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePrivateKey() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && apperror.GetCode(err) != apperror.CodeInvalidPrivateKey {
				t.Errorf("code = %v, want INVALID_PRIVATE_KEY", apperror.GetCode(err))
			}
		})
	}
}

func TestDeriveAddress(t *testing.T) {
	priv, _ := ParsePrivateKey(testSeed)
	addr := DeriveAddress(priv.Public().(ed25519.PublicKey))

	if len(addr) != 66 || !strings.HasPrefix(addr, "0x") {
		t.Fatalf("address %q is not 32-byte hex", addr)
	}
	if again := DeriveAddress(priv.Public().(ed25519.PublicKey)); again != addr {
		t.Errorf("derivation not deterministic: %s vs %s", addr, again)
	}
}

func TestWallet_SignAndSubmit(t *testing.T) {
	node := &chaintest.Node{
		GasPrice: 150,
		AccountFn: func(context.Context, string) (*chaindomain.AccountInfo, error) {
			return &chaindomain.AccountInfo{SequenceNumber: 12}, nil
		},
		SubmitFn: func(context.Context, chaindomain.SignedTransaction) (*chaindomain.Transaction, error) {
			return &chaindomain.Transaction{Type: chaindomain.TxTypePending, Hash: "0xabc123"}, nil
		},
	}
	w := newTestWallet(t, node)

	payload := chaindomain.NewEntryFunctionPayload("0x1::aptos_account::transfer", nil, "0x2", "1")
	resp, err := w.SignAndSubmit(context.Background(), payload)
	if err != nil {
		t.Fatalf("SignAndSubmit() error: %v", err)
	}

	m, ok := resp.(map[string]any)
	if !ok || m["hash"] != "0xabc123" {
		t.Fatalf("response = %#v, want {hash: 0xabc123}", resp)
	}

	submitted := node.Submitted()
	if len(submitted) != 1 {
		t.Fatalf("submitted %d txns, want 1", len(submitted))
	}
	txn := submitted[0]
	if txn.SequenceNumber != 12 || txn.GasUnitPrice != 150 {
		t.Errorf("seq %d gas %d", txn.SequenceNumber, txn.GasUnitPrice)
	}
	if txn.ExpirationTimestampSecs != 1_700_000_060 {
		t.Errorf("expiration = %d, want now+60s", txn.ExpirationTimestampSecs)
	}

	msg, _ := json.Marshal(txn.RawTransaction)
	pub, _ := hexutil.Decode(txn.Signature.PublicKey)
	sig, _ := hexutil.Decode(txn.Signature.Signature)
	if !ed25519.Verify(pub, msg, sig) {
		t.Error("signature does not verify against the encoded submission")
	}
}

func TestWallet_UnfundedAccount(t *testing.T) {
	node := &chaintest.Node{
		AccountFn: func(context.Context, string) (*chaindomain.AccountInfo, error) {
			return nil, chaintest.NotFound("account")
		},
	}
	w := newTestWallet(t, node)

	_, err := w.SignAndSubmit(context.Background(), chaindomain.NewEntryFunctionPayload("0x1::m::f", nil))
	if got := apperror.KindOf(err); got != apperror.KindInsufficientBalance {
		t.Errorf("kind = %v, want insufficient_balance", got)
	}
}

func TestWallet_ConnectLifecycle(t *testing.T) {
	w := newTestWallet(t, &chaintest.Node{})

	if _, ok := w.Account(); ok {
		t.Fatal("account available before connect")
	}
	if err := w.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	acct, ok := w.Account()
	if !ok || acct.Address == "" {
		t.Fatal("expected account after connect")
	}
	w.Disconnect(context.Background())
	if w.Connected() {
		t.Error("still connected after Disconnect")
	}
}
