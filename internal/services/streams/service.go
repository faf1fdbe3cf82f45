package streamsvc

import (
	"context"
	"errors"

	"github.com/rzbill/sluice/internal/ledger"
	"github.com/rzbill/sluice/internal/metrics"
	logpkg "github.com/rzbill/sluice/pkg/log"
)

// Deps are the collaborators of the ledger engine. Store, Oracle and Rail
// are required.
type Deps struct {
	Store    ledger.Store
	Oracle   IdentityOracle
	Rail     Rail
	Notifier Notifier
	Clock    Clock
	Policy   Policy
	Logger   logpkg.Logger
	// Custody is the rail address holding deposits. It can be neither
	// party of a stream. Zero takes it from Rail when the rail exposes it.
	Custody ledger.Address
}

// Service is the stream ledger engine. It creates streams from deposits,
// pays out vested value and settles cancellations, keeping the store,
// the rail and the event journal consistent.
type Service struct {
	store    ledger.Store
	oracle   IdentityOracle
	rail     Rail
	notifier Notifier
	clock    Clock
	policy   Policy
	logger   logpkg.Logger
	custody  ledger.Address
	locks    *idLocks
}

func New(d Deps) (*Service, error) {
	if d.Store == nil || d.Oracle == nil || d.Rail == nil {
		return nil, errors.New("streamsvc: store, oracle and rail are required")
	}
	if d.Notifier == nil {
		d.Notifier = noopNotifier{}
	}
	if d.Clock == nil {
		d.Clock = SystemClock{}
	}
	if d.Policy.ListLimit <= 0 {
		d.Policy.ListLimit = DefaultPolicy().ListLimit
	}
	if c, ok := d.Rail.(interface{ Custody() ledger.Address }); ok && d.Custody.IsZero() {
		d.Custody = c.Custody()
	}
	l := d.Logger
	if l == nil {
		l = logpkg.NewLogger()
	}
	return &Service{
		store:    d.Store,
		oracle:   d.Oracle,
		rail:     d.Rail,
		notifier: d.Notifier,
		clock:    d.Clock,
		policy:   d.Policy,
		custody:  d.Custody,
		logger:   l.With(logpkg.Component("streams")),
		locks:    newIDLocks(),
	}, nil
}

func (s *Service) Policy() Policy { return s.policy }

// observe records latency and outcome for op.
func observe(op string) func(err error) {
	done := metrics.TrackDuration(op)
	return func(err error) {
		done()
		metrics.TrackStatus(op, statusOf(err))
	}
}

func statusOf(err error) string {
	if err == nil {
		return "ok"
	}
	switch ledger.KindOf(err) {
	case ledger.KindValidation:
		return "invalid"
	case ledger.KindAuthorization:
		return "unauthorized"
	case ledger.KindInsufficientFunds:
		return "insufficient_funds"
	case ledger.KindNotFound:
		return "not_found"
	}
	return "error"
}

// notify publishes ev. Value has already moved, so failures are logged
// and counted rather than returned.
func (s *Service) notify(ctx context.Context, ev ledger.Event) {
	if err := s.notifier.Notify(context.WithoutCancel(ctx), ev); err != nil {
		metrics.EventNotifyFailed()
		s.logger.Error("streams.notify_failed",
			logpkg.Str("kind", string(ev.Kind)),
			logpkg.Uint64("stream_id", ev.StreamID),
			logpkg.Err(err))
	}
}

// authorize resolves the requester among the two parties of st. The
// recipient is checked first.
func (s *Service) authorize(ctx context.Context, op string, st ledger.Stream, senderAllowed bool) (ledger.Address, error) {
	if s.oracle.CheckWitness(ctx, st.Recipient) {
		return st.Recipient, nil
	}
	if s.oracle.CheckWitness(ctx, st.Sender) {
		if !senderAllowed {
			return ledger.Address{}, ledger.Unauthorized(op, "sender may not %s stream %d", op, st.ID)
		}
		return st.Sender, nil
	}
	return ledger.Address{}, ledger.Unauthorized(op, "caller is neither sender nor recipient of stream %d", st.ID)
}

// compensate reverses a transfer whose ledger write failed.
func (s *Service) compensate(ctx context.Context, op string, to ledger.Address, amount int64, cause error) error {
	if err := s.rail.Reverse(context.WithoutCancel(ctx), to, amount); err != nil {
		s.logger.Error("streams.compensation_failed",
			logpkg.Str("op", op),
			logpkg.Str("to", to.String()),
			logpkg.Int64("amount", amount),
			logpkg.Err(err))
		return errors.Join(cause, err)
	}
	s.logger.Warn("streams.compensated", logpkg.Str("op", op), logpkg.Int64("amount", amount), logpkg.Err(cause))
	return cause
}
