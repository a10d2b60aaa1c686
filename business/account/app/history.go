package app

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/aptos-dex/business/account/domain"
	chainapp "github.com/fd1az/aptos-dex/business/chain/app"
	chaindomain "github.com/fd1az/aptos-dex/business/chain/domain"
	"github.com/fd1az/aptos-dex/internal/apm"
)

// DefaultHistoryLimit is how many recent transactions are scanned.
const DefaultHistoryLimit = 20

// History lists the DEX transactions sent by an account.
type History struct {
	node   chainapp.Node
	limit  int
	tracer trace.Tracer
}

// NewHistory creates a history reader.
func NewHistory(node chainapp.Node, limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{node: node, limit: limit, tracer: otel.Tracer(tracerName)}
}

// Recent returns swap and liquidity transactions among the latest sent by
// address, newest first. An account that does not exist yet has no history.
func (h *History) Recent(ctx context.Context, address string) ([]domain.TxRecord, error) {
	ctx, span := h.tracer.Start(ctx, "account.history",
		trace.WithAttributes(attribute.String("address", address)))
	defer span.End()

	txns, err := h.node.AccountTransactions(ctx, address, h.limit)
	if err != nil {
		if chainapp.IsNotFound(err) {
			return []domain.TxRecord{}, nil
		}
		apm.NoticeError(span, err)
		return nil, err
	}

	records := make([]domain.TxRecord, 0, len(txns))
	for i := len(txns) - 1; i >= 0; i-- {
		if rec, ok := toRecord(txns[i]); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

func toRecord(tx chaindomain.Transaction) (domain.TxRecord, bool) {
	if tx.Type != chaindomain.TxTypeUser && tx.Type != chaindomain.TxTypePending {
		return domain.TxRecord{}, false
	}
	kind, ok := domain.Classify(tx.Payload.Function)
	if !ok {
		return domain.TxRecord{}, false
	}

	status := domain.StatusFailed
	switch {
	case tx.IsPending():
		status = domain.StatusPending
	case tx.Success:
		status = domain.StatusSuccess
	}

	return domain.TxRecord{
		Hash:      tx.Hash,
		Type:      kind,
		Status:    status,
		Function:  tx.Payload.Function,
		Version:   uint64(tx.Version),
		Timestamp: tx.Time(),
	}, true
}
