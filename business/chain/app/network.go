package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/fd1az/aptos-dex/business/chain/domain"
	"github.com/fd1az/aptos-dex/internal/apperror"
	"github.com/fd1az/aptos-dex/internal/logger"
	"github.com/fd1az/aptos-dex/internal/notify"
)

// Well-known chain ids. Devnet's id changes on every reset.
const (
	ChainIDMainnet uint8 = 1
	ChainIDTestnet uint8 = 2
)

// NetworkCheck verifies that the node serves the configured network.
type NetworkCheck struct {
	node     Node
	network  string
	expected uint8
	notifier notify.Notifier
	log      logger.LoggerInterface
}

// NewNetworkCheck creates a checker. expectedChainID 0 derives the
// expectation from the network name.
func NewNetworkCheck(node Node, network string, expectedChainID uint8, notifier notify.Notifier, log logger.LoggerInterface) *NetworkCheck {
	return &NetworkCheck{
		node:     node,
		network:  strings.ToLower(network),
		expected: expectedChainID,
		notifier: notifier,
		log:      log,
	}
}

// Check fetches the ledger info and warns on a chain id mismatch.
func (n *NetworkCheck) Check(ctx context.Context) (*domain.LedgerInfo, error) {
	info, err := n.node.LedgerInfo(ctx)
	if err != nil {
		return nil, err
	}

	if n.matches(info.ChainID) {
		return info, nil
	}

	msg := fmt.Sprintf("Node reports chain id %d but the app is configured for %s. Switch your wallet to %s.",
		info.ChainID, n.network, n.network)
	n.log.Warn(ctx, "network mismatch", "chain_id", info.ChainID, "network", n.network)
	n.notifier.Notify(ctx, notify.New(notify.LevelWarning, "Wrong network", msg))

	return info, apperror.New(apperror.CodeNetworkMismatch,
		apperror.WithContext(fmt.Sprintf("chain_id=%d network=%s", info.ChainID, n.network)))
}

func (n *NetworkCheck) matches(chainID uint8) bool {
	if n.expected != 0 {
		return chainID == n.expected
	}
	switch n.network {
	case "mainnet":
		return chainID == ChainIDMainnet
	case "testnet":
		return chainID == ChainIDTestnet
	default:
		return chainID != ChainIDMainnet && chainID != ChainIDTestnet
	}
}
