package streamsvc

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/rzbill/sluice/internal/ledger"
	"github.com/rzbill/sluice/internal/metrics"
	logpkg "github.com/rzbill/sluice/pkg/log"
)

// OpCreateStream is the only operation a deposit may carry.
const OpCreateStream = "createStream"

// CreateArgs are the decoded arguments of a createStream deposit.
type CreateArgs struct {
	Recipient ledger.Address
	Start     int64
	Stop      int64
}

// OnPayment handles value paid into custody. A returned error rejects the
// payment and the rail refunds it.
func (s *Service) OnPayment(ctx context.Context, p ledger.Payment) error {
	args, err := DecodeCreateArgs(p.Data)
	if err != nil {
		metrics.TrackStatus("create", statusOf(err))
		return err
	}
	_, err = s.CreateStream(ctx, p.From, p.Amount, args)
	return err
}

// CreateStream records a new stream funded with amount by sender.
func (s *Service) CreateStream(ctx context.Context, sender ledger.Address, amount int64, args CreateArgs) (st ledger.Stream, err error) {
	end := observe("create")
	defer func() { end(err) }()

	const op = "create"
	switch {
	case amount <= 0:
		return ledger.Stream{}, ledger.Validation(op, "deposit must be positive, got %d", amount)
	case args.Start <= 0:
		return ledger.Stream{}, ledger.Validation(op, "start must be positive, got %d", args.Start)
	case args.Stop <= args.Start:
		return ledger.Stream{}, ledger.Validation(op, "stop %d must be after start %d", args.Stop, args.Start)
	case !s.custody.IsZero() && (sender == s.custody || args.Recipient == s.custody):
		return ledger.Stream{}, ledger.Validation(op, "custody %s cannot be a stream party", s.custody)
	}
	if s.policy.RequireFutureStart {
		if now := s.clock.Now(); args.Start < now {
			return ledger.Stream{}, ledger.Validation(op, "start %d is in the past (now %d)", args.Start, now)
		}
	}

	st, err = s.store.Insert(ctx, ledger.Stream{
		Deposit:   amount,
		Remaining: amount,
		Sender:    sender,
		Recipient: args.Recipient,
		Start:     args.Start,
		Stop:      args.Stop,
	})
	if err != nil {
		return ledger.Stream{}, err
	}
	metrics.AddValueMoved("deposit", amount)
	s.logger.Info("streams.created",
		logpkg.Uint64("stream_id", st.ID),
		logpkg.Str("sender", st.Sender.String()),
		logpkg.Str("recipient", st.Recipient.String()),
		logpkg.Int64("deposit", st.Deposit))

	ev, err := ledger.StreamCreated(st)
	if err != nil {
		metrics.EventNotifyFailed()
		s.logger.Error("streams.notify_failed",
			logpkg.Str("kind", string(ledger.EventStreamCreated)),
			logpkg.Uint64("stream_id", st.ID),
			logpkg.Err(err))
		return st, nil
	}
	s.notify(ctx, ev)
	return st, nil
}

// DecodeCreateArgs parses ["createStream", recipient, start, stop] in any
// of the shapes a JSON or gRPC caller produces.
func DecodeCreateArgs(data []any) (CreateArgs, error) {
	const op = "create"
	if len(data) == 0 {
		return CreateArgs{}, ledger.Validation(op, "missing operation")
	}
	tag, _ := data[0].(string)
	if tag != OpCreateStream {
		return CreateArgs{}, ledger.Validation(op, "unsupported operation %v", data[0])
	}
	if len(data) != 4 {
		return CreateArgs{}, ledger.Validation(op, "%s takes 3 arguments, got %d", OpCreateStream, len(data)-1)
	}
	recipient, err := decodeAddress(data[1])
	if err != nil {
		return CreateArgs{}, err
	}
	start, err := decodeInt(op, "start", data[2])
	if err != nil {
		return CreateArgs{}, err
	}
	stop, err := decodeInt(op, "stop", data[3])
	if err != nil {
		return CreateArgs{}, err
	}
	return CreateArgs{Recipient: recipient, Start: start, Stop: stop}, nil
}

func decodeAddress(v any) (ledger.Address, error) {
	switch t := v.(type) {
	case ledger.Address:
		return t, nil
	case string:
		return ledger.ParseAddress(t)
	case []byte:
		return ledger.AddressFromBytes(t)
	case []any:
		raw := make([]byte, len(t))
		for i, e := range t {
			n, err := decodeInt("create", "recipient byte", e)
			if err != nil || n < 0 || n > 255 {
				return ledger.Address{}, ledger.Validation("create", "recipient byte %d is not in 0..255", i)
			}
			raw[i] = byte(n)
		}
		return ledger.AddressFromBytes(raw)
	}
	return ledger.Address{}, ledger.Validation("create", "recipient has unsupported type %T", v)
}

func decodeInt(op, name string, v any) (int64, error) {
	switch t := v.(type) {
	case int:
		return int64(t), nil
	case int64:
		return t, nil
	case uint64:
		if t > math.MaxInt64 {
			return 0, ledger.Validation(op, "%s out of range", name)
		}
		return int64(t), nil
	case float64:
		if t != math.Trunc(t) || t < math.MinInt64 || t >= math.MaxInt64 {
			return 0, ledger.Validation(op, "%s must be an integer, got %v", name, t)
		}
		return int64(t), nil
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0, ledger.Validation(op, "%s must be an integer: %v", name, err)
		}
		return n, nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0, ledger.Validation(op, "%s must be an integer: %v", name, err)
		}
		return n, nil
	}
	return 0, ledger.Validation(op, "%s has unsupported type %T", name, v)
}
