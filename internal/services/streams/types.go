package streamsvc

import (
	"context"
	"time"

	"github.com/rzbill/sluice/internal/ledger"
)

// Clock yields the current time in milliseconds since the epoch.
type Clock interface {
	Now() int64
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() int64 { return time.Now().UnixMilli() }

// ClockFunc adapts a function to Clock.
type ClockFunc func() int64

func (f ClockFunc) Now() int64 { return f() }

// IdentityOracle reports whether the current caller controls addr.
type IdentityOracle interface {
	CheckWitness(ctx context.Context, addr ledger.Address) bool
}

// Rail moves value out of custody. Both calls are all-or-nothing.
type Rail interface {
	Transfer(ctx context.Context, to ledger.Address, amount int64) error
	// Reverse undoes a Transfer that could not be committed.
	Reverse(ctx context.Context, from ledger.Address, amount int64) error
}

// Notifier receives events after the ledger write commits.
type Notifier interface {
	Notify(ctx context.Context, ev ledger.Event) error
}

// Policy holds the configurable ledger rules.
type Policy struct {
	// RequireFutureStart rejects creation when start is before now.
	RequireFutureStart bool
	// AllowSenderWithdraw lets the sender trigger a withdrawal to the
	// recipient.
	AllowSenderWithdraw bool
	// ListLimit caps ListStreams results when the caller sets no limit.
	ListLimit int
}

// DefaultPolicy mirrors the configuration defaults.
func DefaultPolicy() Policy {
	return Policy{AllowSenderWithdraw: true, ListLimit: 100}
}

// Settlement summarizes a cancellation.
type Settlement struct {
	StreamID  uint64 `json:"stream_id"`
	Available int64  `json:"available"`
	Leftover  int64  `json:"leftover"`
}

// StreamView is a stream together with its derived amounts at AtMs.
type StreamView struct {
	ledger.Stream
	Vested    int64 `json:"vested"`
	Available int64 `json:"available"`
	AtMs      int64 `json:"at_ms"`
}

// ListOptions selects streams by one party.
type ListOptions struct {
	Sender    *ledger.Address
	Recipient *ledger.Address
	// Filter is a CEL expression evaluated against each stream.
	Filter string
	Limit  int
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, ledger.Event) error { return nil }
