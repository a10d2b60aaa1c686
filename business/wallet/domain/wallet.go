// Package domain contains wallet session types.
package domain

// Account is the connected on-chain account.
type Account struct {
	Address   string `json:"address"`
	PublicKey string `json:"publicKey,omitempty"`
}

// SubmitResponse is whatever the wallet returned from a submission. Its
// shape varies by adapter: a bare hash string or an object carrying the
// hash under one of several keys.
type SubmitResponse any

// EventType classifies wallet session changes.
type EventType string

const (
	EventConnected    EventType = "connected"
	EventDisconnected EventType = "disconnected"
	EventSelected     EventType = "selected"
)

// Event is broadcast by the wallet manager.
type Event struct {
	Type    EventType
	Wallet  string
	Account Account
}
