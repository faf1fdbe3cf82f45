package transports

import (
	"context"

	sluicev1 "github.com/rzbill/sluice/api/sluice/v1"
)

// ListRequest selects one party's streams.
type ListRequest struct {
	Sender    string
	Recipient string
	Expand    bool
	Filter    string
	Limit     int
}

// Settlement is the outcome of a cancel.
type Settlement struct {
	Available int64
	Leftover  int64
}

// LedgerTransport abstracts the transport used by the CLI (gRPC/HTTP).
type LedgerTransport interface {
	GetStream(ctx context.Context, id uint64) (*sluicev1.StreamView, error)
	ListStreams(ctx context.Context, req ListRequest) (ids []uint64, views []*sluicev1.StreamView, err error)
	Available(ctx context.Context, id uint64) (int64, error)
	Withdraw(ctx context.Context, id uint64, amount int64) error
	Cancel(ctx context.Context, id uint64) (Settlement, error)
	Pay(ctx context.Context, from string, amount int64, data []any) error
	Mint(ctx context.Context, address string, amount int64) (int64, error)
	Balance(ctx context.Context, address string) (int64, error)
	// WatchEvents calls onEvent for each journal entry until ctx ends,
	// onEvent fails or the server closes the stream.
	WatchEvents(ctx context.Context, from uint64, consumer string, onEvent func(*sluicev1.EventEnvelope) error) error
}
