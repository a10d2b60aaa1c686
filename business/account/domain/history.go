package domain

import (
	"strings"
	"time"
)

// TxType classifies history entries.
type TxType string

const (
	TxSwap            TxType = "swap"
	TxAddLiquidity    TxType = "add_liquidity"
	TxRemoveLiquidity TxType = "remove_liquidity"
)

// TxStatus is the on-chain outcome.
type TxStatus string

const (
	StatusSuccess TxStatus = "success"
	StatusFailed  TxStatus = "failed"
	StatusPending TxStatus = "pending"
)

// TxRecord is one history row.
type TxRecord struct {
	Hash      string    `json:"hash"`
	Type      TxType    `json:"type"`
	Status    TxStatus  `json:"status"`
	Function  string    `json:"function"`
	Version   uint64    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// Classify maps an entry function id to a TxType. Liquidity entry points
// live in the swap module, so they are matched on the function name first.
func Classify(function string) (TxType, bool) {
	name := function
	if i := strings.LastIndex(function, "::"); i >= 0 {
		name = function[i+2:]
	}
	switch {
	case strings.Contains(name, "remove_liquidity"):
		return TxRemoveLiquidity, true
	case strings.Contains(name, "add_liquidity"):
		return TxAddLiquidity, true
	case strings.Contains(function, "swap"):
		return TxSwap, true
	}
	return "", false
}
