package domain

import (
	"fmt"
	"strings"
	"time"
)

// UnresolvedHash stands in for the identifier when a wallet accepted a
// transaction without reporting its hash.
const UnresolvedHash = "submitted"

// hashFields are probed in order on object-shaped wallet responses.
// Dotted names are nested lookups.
var hashFields = []string{
	"hash",
	"transactionHash",
	"signature",
	"result.hash",
	"data.hash",
	"txnHash",
	"transaction_hash",
}

// Submission is the normalized wallet response.
type Submission struct {
	Hash     string
	Resolved bool
}

// NormalizeSubmission extracts the transaction hash from a wallet
// response of unknown shape. The first candidate that is a string
// starting with 0x wins. Nothing usable yields Resolved=false.
func NormalizeSubmission(resp any) Submission {
	switch v := resp.(type) {
	case string:
		if isHash(v) {
			return Submission{Hash: v, Resolved: true}
		}
	case map[string]any:
		for _, field := range hashFields {
			if s, ok := lookup(v, field).(string); ok && isHash(s) {
				return Submission{Hash: s, Resolved: true}
			}
		}
	}
	return Submission{}
}

func lookup(m map[string]any, path string) any {
	var cur any = m
	for _, key := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = obj[key]
	}
	return cur
}

func isHash(s string) bool {
	return strings.HasPrefix(s, "0x") && len(s) > 2
}

// Status is the outcome of a submission.
type Status string

const (
	// StatusConfirmed means the transaction committed successfully.
	StatusConfirmed Status = "confirmed"
	// StatusFailed means the transaction committed with a VM error.
	StatusFailed Status = "failed"
	// StatusSubmitted means confirmation was not observed in time.
	StatusSubmitted Status = "submitted"
	// StatusSubmittedNoHash means the wallet reported no usable hash.
	StatusSubmittedNoHash Status = "submitted_no_hash"
)

// Action names what a submission does.
type Action string

const (
	ActionSwap            Action = "swap"
	ActionAddLiquidity    Action = "add_liquidity"
	ActionRemoveLiquidity Action = "remove_liquidity"
)

// Outcome is returned to the caller after a submission.
type Outcome struct {
	Action      Action `json:"action"`
	Status      Status `json:"status"`
	Hash        string `json:"hash"`
	ExplorerURL string `json:"explorerUrl,omitempty"`
	Summary     string `json:"summary"`
	VMStatus    string `json:"vmStatus,omitempty"`
	Sender      string `json:"sender"`
}

// ExplorerURL links a transaction on the block explorer.
func ExplorerURL(explorer, hash, network string) string {
	return fmt.Sprintf("%s/txn/%s?network=%s", strings.TrimSuffix(explorer, "/"), hash, network)
}

// SwapSummary is the user-facing description of a swap.
func SwapSummary(amountIn, symIn, amountOut, symOut, minimum string) string {
	return fmt.Sprintf("Swap executed: %s %s → %s %s (Min: %s)", amountIn, symIn, amountOut, symOut, minimum)
}

// Event is published after every submission.
type Event struct {
	ID        string    `json:"id"`
	Action    Action    `json:"action"`
	Status    Status    `json:"status"`
	Hash      string    `json:"hash"`
	Sender    string    `json:"sender"`
	Network   string    `json:"network"`
	Function  string    `json:"function"`
	TypeArgs  []string  `json:"typeArguments"`
	Arguments []any     `json:"arguments"`
	At        time.Time `json:"at"`
}
