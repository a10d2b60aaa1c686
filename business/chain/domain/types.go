// Package domain contains the Aptos node types shared by the other contexts.
package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Transaction type tags returned by the node.
const (
	TxTypePending = "pending_transaction"
	TxTypeUser    = "user_transaction"
)

// U64 decodes the node's string-encoded integers. Plain numbers are accepted too.
type U64 uint64

// UnmarshalJSON implements json.Unmarshaler.
func (u *U64) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*u = 0
		return nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("u64 %q: %w", s, err)
	}
	*u = U64(v)
	return nil
}

// MarshalJSON encodes as a decimal string, the form the node expects.
func (u U64) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatUint(uint64(u), 10))
}

// LedgerInfo is the response of GET /.
type LedgerInfo struct {
	ChainID         uint8  `json:"chain_id"`
	Epoch           U64    `json:"epoch"`
	LedgerVersion   U64    `json:"ledger_version"`
	BlockHeight     U64    `json:"block_height"`
	LedgerTimestamp U64    `json:"ledger_timestamp"` // microseconds
	NodeRole        string `json:"node_role"`
}

// Timestamp converts the ledger timestamp.
func (l LedgerInfo) Timestamp() time.Time {
	return time.UnixMicro(int64(l.LedgerTimestamp))
}

// AccountInfo is the response of GET /accounts/{address}.
type AccountInfo struct {
	SequenceNumber    U64    `json:"sequence_number"`
	AuthenticationKey string `json:"authentication_key"`
}

// EntryFunctionPayload calls a public entry function.
type EntryFunctionPayload struct {
	Type          string   `json:"type"`
	Function      string   `json:"function"`
	TypeArguments []string `json:"type_arguments"`
	Arguments     []any    `json:"arguments"`
}

// NewEntryFunctionPayload builds a payload with the entry function type tag.
func NewEntryFunctionPayload(function string, typeArgs []string, args ...any) EntryFunctionPayload {
	if typeArgs == nil {
		typeArgs = []string{}
	}
	if args == nil {
		args = []any{}
	}
	return EntryFunctionPayload{
		Type:          "entry_function_payload",
		Function:      function,
		TypeArguments: typeArgs,
		Arguments:     args,
	}
}

// RawTransaction is the unsigned body sent to encode_submission.
type RawTransaction struct {
	Sender                  string               `json:"sender"`
	SequenceNumber          U64                  `json:"sequence_number"`
	MaxGasAmount            U64                  `json:"max_gas_amount"`
	GasUnitPrice            U64                  `json:"gas_unit_price"`
	ExpirationTimestampSecs U64                  `json:"expiration_timestamp_secs"`
	Payload                 EntryFunctionPayload `json:"payload"`
}

// Signature is an ed25519 transaction authenticator.
type Signature struct {
	Type      string `json:"type"`
	PublicKey string `json:"public_key"`
	Signature string `json:"signature"`
}

// SignedTransaction is the body of POST /transactions.
type SignedTransaction struct {
	RawTransaction
	Signature Signature `json:"signature"`
}

// TxPayload is the payload as echoed back by the node.
type TxPayload struct {
	Type          string            `json:"type"`
	Function      string            `json:"function"`
	TypeArguments []string          `json:"type_arguments"`
	Arguments     []json.RawMessage `json:"arguments"`
}

// Transaction is a pending or committed transaction.
type Transaction struct {
	Type      string    `json:"type"`
	Hash      string    `json:"hash"`
	Version   U64       `json:"version"`
	Sender    string    `json:"sender"`
	Success   bool      `json:"success"`
	VMStatus  string    `json:"vm_status"`
	GasUsed   U64       `json:"gas_used"`
	Timestamp U64       `json:"timestamp"` // microseconds
	Payload   TxPayload `json:"payload"`
}

// IsPending reports whether the transaction has not been committed yet.
func (t Transaction) IsPending() bool {
	return t.Type == TxTypePending
}

// Time converts the commit timestamp.
func (t Transaction) Time() time.Time {
	return time.UnixMicro(int64(t.Timestamp))
}

// ViewRequest is the body of POST /view.
type ViewRequest struct {
	Function      string   `json:"function"`
	TypeArguments []string `json:"type_arguments"`
	Arguments     []any    `json:"arguments"`
}

// CoinStoreResource is the data of 0x1::coin::CoinStore<T>.
type CoinStoreResource struct {
	Type string `json:"type"`
	Data struct {
		Coin struct {
			Value string `json:"value"`
		} `json:"coin"`
	} `json:"data"`
}

// GasEstimate is the response of GET /estimate_gas_price.
type GasEstimate struct {
	GasEstimate            uint64 `json:"gas_estimate"`
	DeprioritizedEstimate  uint64 `json:"deprioritized_gas_estimate"`
	PrioritizedGasEstimate uint64 `json:"prioritized_gas_estimate"`
}

// APIError is the node's error body.
type APIError struct {
	Message     string `json:"message"`
	ErrorCode   string `json:"error_code"`
	VMErrorCode int    `json:"vm_error_code"`
}
